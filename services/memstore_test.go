package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory stand-in for the Postgres schema. Every repository
// fake below shares one store, so services see each other's writes the same
// way they would through the database.
type memStore struct {
	mu     sync.Mutex
	nextID int
	now    func() time.Time

	formats     map[int]*models.LeagueFormat
	leagues     map[int]*models.League
	leagueTeams map[int][]int
	teams       map[int]*models.Team
	playerTeams map[int][]int
	phases      map[int]*models.LeaguePhase
	groups      map[int]*models.LeagueGroup
	standings   map[int]*models.LeagueStanding
	matches     map[int]*models.Match
	rules       map[int]*models.DisciplineRule // by league
	invites     map[int]*models.LeagueInvite

	// failures makes the named repository method return the error.
	failures map[string]error
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:         now,
		formats:     map[int]*models.LeagueFormat{},
		leagues:     map[int]*models.League{},
		leagueTeams: map[int][]int{},
		teams:       map[int]*models.Team{},
		playerTeams: map[int][]int{},
		phases:      map[int]*models.LeaguePhase{},
		groups:      map[int]*models.LeagueGroup{},
		standings:   map[int]*models.LeagueStanding{},
		matches:     map[int]*models.Match{},
		rules:       map[int]*models.DisciplineRule{},
		invites:     map[int]*models.LeagueInvite{},
		failures:    map[string]error{},
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) failOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

func (s *memStore) failure(method string) error {
	return s.failures[method]
}

func cloneMap[T any](m map[int]*T) map[int]*T {
	out := make(map[int]*T, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func cloneSlices(m map[int][]int) map[int][]int {
	out := make(map[int][]int, len(m))
	for k, v := range m {
		out[k] = append([]int(nil), v...)
	}
	return out
}

type memSnapshot struct {
	nextID      int
	formats     map[int]*models.LeagueFormat
	leagues     map[int]*models.League
	leagueTeams map[int][]int
	phases      map[int]*models.LeaguePhase
	groups      map[int]*models.LeagueGroup
	standings   map[int]*models.LeagueStanding
	matches     map[int]*models.Match
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		nextID:      s.nextID,
		formats:     cloneMap(s.formats),
		leagues:     cloneMap(s.leagues),
		leagueTeams: cloneSlices(s.leagueTeams),
		phases:      cloneMap(s.phases),
		groups:      cloneMap(s.groups),
		standings:   cloneMap(s.standings),
		matches:     cloneMap(s.matches),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.formats = snap.formats
	s.leagues = snap.leagues
	s.leagueTeams = snap.leagueTeams
	s.phases = snap.phases
	s.groups = snap.groups
	s.standings = snap.standings
	s.matches = snap.matches
}

// memTx rolls the store back when fn fails.
type memTx struct{ *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	snap := t.snapshot()
	if err := fn(nil); err != nil {
		t.restore(snap)
		return err
	}
	return nil
}

func copyFormat(f *models.LeagueFormat) *models.LeagueFormat {
	c := *f
	c.Phases = make([]models.PhaseConfig, len(f.Phases))
	for i, p := range f.Phases {
		p.TiebreakRules = append([]models.TiebreakRuleConfig(nil), p.TiebreakRules...)
		c.Phases[i] = p
	}
	return &c
}

type memFormatRepo struct{ *memStore }

func (r memFormatRepo) Create(ctx context.Context, exec repositories.SQLExecutor, format *models.LeagueFormat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("FormatRepository.Create"); err != nil {
		return err
	}
	for _, f := range r.formats {
		if f.Slug == format.Slug {
			return repositories.ErrFormatSlugConflict
		}
	}
	format.ID = r.id()
	format.CreatedAt, format.UpdatedAt = r.now(), r.now()
	for i := range format.Phases {
		phase := &format.Phases[i]
		phase.ID = r.id()
		phase.FormatID = format.ID
		for j := range phase.TiebreakRules {
			phase.TiebreakRules[j].ID = r.id()
			phase.TiebreakRules[j].PhaseConfigID = phase.ID
		}
	}
	r.formats[format.ID] = copyFormat(format)
	return nil
}

func (r memFormatRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.LeagueFormat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.formats[id]
	if !ok {
		return nil, repositories.ErrFormatNotFound
	}
	return copyFormat(f), nil
}

func (r memFormatRepo) GetBySlug(ctx context.Context, slug string) (*models.LeagueFormat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.formats {
		if f.Slug == slug {
			return copyFormat(f), nil
		}
	}
	return nil, repositories.ErrFormatNotFound
}

func (r memFormatRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (r memFormatRepo) List(ctx context.Context, templatesOnly bool) ([]models.LeagueFormat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LeagueFormat, 0, len(r.formats))
	for _, f := range r.formats {
		if templatesOnly && !f.IsTemplate {
			continue
		}
		out = append(out, *copyFormat(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memFormatRepo) UpdateMetadata(ctx context.Context, format *models.LeagueFormat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.formats[format.ID]
	if !ok {
		return repositories.ErrFormatNotFound
	}
	f.Name, f.Description, f.IsTemplate = format.Name, format.Description, format.IsTemplate
	f.UpdatedAt = r.now()
	return nil
}

func (r memFormatRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("FormatRepository.Delete"); err != nil {
		return err
	}
	if _, ok := r.formats[id]; !ok {
		return repositories.ErrFormatNotFound
	}
	for _, l := range r.leagues {
		if l.FormatID != nil && *l.FormatID == id {
			return repositories.ErrFormatInUse
		}
	}
	delete(r.formats, id)
	return nil
}

func (r memFormatRepo) CountLeaguesUsing(ctx context.Context, id int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, l := range r.leagues {
		if l.FormatID != nil && *l.FormatID == id {
			count++
		}
	}
	return count, nil
}

func (r memFormatRepo) GetPhaseConfig(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.PhaseConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.formats {
		for _, p := range copyFormat(f).Phases {
			if p.ID == id {
				return &p, nil
			}
		}
	}
	return nil, repositories.ErrPhaseConfigNotFound
}

type memLeagueRepo struct{ *memStore }

func (r memLeagueRepo) Create(ctx context.Context, league *models.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leagues {
		if l.Slug == league.Slug {
			return repositories.ErrLeagueSlugConflict
		}
	}
	league.ID = r.id()
	league.CreatedAt = r.now()
	c := *league
	r.leagues[league.ID] = &c
	return nil
}

func (r memLeagueRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	c := *l
	return &c, nil
}

func (r memLeagueRepo) List(ctx context.Context) ([]models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.League, 0, len(r.leagues))
	for _, l := range r.leagues {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memLeagueRepo) SetFormat(ctx context.Context, exec repositories.SQLExecutor, leagueID, formatID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("LeagueRepository.SetFormat"); err != nil {
		return err
	}
	l, ok := r.leagues[leagueID]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	l.FormatID = intPtr(formatID)
	return nil
}

func (r memLeagueRepo) LinkTeam(ctx context.Context, leagueID, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leagues[leagueID]; !ok {
		return repositories.ErrLeagueTeamInvalid
	}
	if _, ok := r.teams[teamID]; !ok {
		return repositories.ErrLeagueTeamInvalid
	}
	for _, id := range r.leagueTeams[leagueID] {
		if id == teamID {
			return repositories.ErrLeagueTeamDuplicate
		}
	}
	r.leagueTeams[leagueID] = append(r.leagueTeams[leagueID], teamID)
	return nil
}

func (r memLeagueRepo) ListTeamIDs(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := append([]int{}, r.leagueTeams[leagueID]...)
	sort.Ints(ids)
	return ids, nil
}

func (r memLeagueRepo) CountTeams(ctx context.Context, leagueID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.leagueTeams[leagueID]), nil
}

type memTeamRepo struct{ *memStore }

func (r memTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team.ID = r.id()
	team.CreatedAt = r.now()
	c := *team
	r.teams[team.ID] = &c
	return nil
}

func (r memTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	c := *t
	return &c, nil
}

func (r memTeamRepo) ListByLeague(ctx context.Context, leagueID int) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Team, 0)
	for _, id := range r.leagueTeams[leagueID] {
		out = append(out, *r.teams[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memPlayerRepo struct{ *memStore }

func (r memPlayerRepo) AddToTeam(ctx context.Context, playerID, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[teamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	for _, id := range r.playerTeams[playerID] {
		if id == teamID {
			return nil
		}
	}
	r.playerTeams[playerID] = append(r.playerTeams[playerID], teamID)
	return nil
}

func (r memPlayerRepo) ListTeamIDs(ctx context.Context, playerID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int{}, r.playerTeams[playerID]...), nil
}

type memPhaseRepo struct{ *memStore }

func (r memPhaseRepo) Create(ctx context.Context, exec repositories.SQLExecutor, phase *models.LeaguePhase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.phases {
		if p.LeagueID == phase.LeagueID && p.Order == phase.Order {
			return repositories.ErrPhaseOrderConflict
		}
	}
	phase.ID = r.id()
	c := *phase
	r.phases[phase.ID] = &c
	return nil
}

func (r memPhaseRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.LeaguePhase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.phases[id]
	if !ok {
		return nil, repositories.ErrPhaseNotFound
	}
	c := *p
	return &c, nil
}

func (r memPhaseRepo) ListByLeague(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]models.LeaguePhase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LeaguePhase, 0)
	for _, p := range r.phases {
		if p.LeagueID == leagueID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r memPhaseRepo) UpdateStatus(ctx context.Context, id int, status models.PhaseStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.phases[id]
	if !ok {
		return repositories.ErrPhaseNotFound
	}
	p.Status = status
	return nil
}

type memGroupRepo struct{ *memStore }

func (r memGroupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, group *models.LeagueGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.phases[group.PhaseID]; !ok {
		return repositories.ErrPhaseNotFound
	}
	for _, g := range r.groups {
		if g.PhaseID == group.PhaseID && g.Name == group.Name {
			return repositories.ErrGroupNameConflict
		}
	}
	group.ID = r.id()
	c := *group
	c.TeamIDs = append([]int{}, group.TeamIDs...)
	r.groups[group.ID] = &c
	return nil
}

func (r memGroupRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.LeagueGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	c := *g
	c.TeamIDs = append([]int{}, g.TeamIDs...)
	return &c, nil
}

func (r memGroupRepo) ListByPhase(ctx context.Context, phaseID int) ([]models.LeagueGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LeagueGroup, 0)
	for _, g := range r.groups {
		if g.PhaseID == phaseID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sameGroup(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type memStandingRepo struct{ *memStore }

func (r memStandingRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, rows []*models.LeagueStanding) ([]*models.LeagueStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := make([]*models.LeagueStanding, 0, len(rows))
	for _, row := range rows {
		exists := false
		for _, s := range r.standings {
			if s.PhaseID == row.PhaseID && s.TeamID == row.TeamID && sameGroup(s.GroupID, row.GroupID) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		row.ID = r.id()
		row.UpdatedAt = r.now()
		c := *row
		r.standings[row.ID] = &c
		created = append(created, row)
	}
	return created, nil
}

func (r memStandingRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.LeagueStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.standings[id]
	if !ok {
		return nil, repositories.ErrStandingNotFound
	}
	c := *s
	return &c, nil
}

func (r memStandingRepo) FindRow(ctx context.Context, exec repositories.SQLExecutor, phaseID, teamID int, groupID *int) (*models.LeagueStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *models.LeagueStanding
	for _, s := range r.standings {
		if s.PhaseID != phaseID || s.TeamID != teamID {
			continue
		}
		if groupID != nil && !sameGroup(s.GroupID, groupID) {
			continue
		}
		if found == nil || s.ID < found.ID {
			found = s
		}
	}
	if found == nil {
		return nil, repositories.ErrStandingNotFound
	}
	c := *found
	return &c, nil
}

func (r memStandingRepo) ListByPhase(ctx context.Context, exec repositories.SQLExecutor, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.LeagueStanding, 0)
	for _, s := range r.standings {
		if s.PhaseID != phaseID {
			continue
		}
		if groupID != nil && !sameGroup(s.GroupID, groupID) {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
	return out, nil
}

func (r memStandingRepo) ApplyDelta(ctx context.Context, exec repositories.SQLExecutor, id int, delta models.StandingDelta) (*models.LeagueStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure("LeagueStandingRepository.ApplyDelta"); err != nil {
		return nil, err
	}
	s, ok := r.standings[id]
	if !ok {
		return nil, repositories.ErrStandingNotFound
	}
	delta.Apply(s)
	s.UpdatedAt = r.now()
	c := *s
	return &c, nil
}

func (r memStandingRepo) UpdatePositions(ctx context.Context, exec repositories.SQLExecutor, positions map[int]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, pos := range positions {
		if s, ok := r.standings[id]; ok {
			s.Position = intPtr(pos)
		}
	}
	return nil
}

func (r memStandingRepo) Update(ctx context.Context, exec repositories.SQLExecutor, standing *models.LeagueStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.standings[standing.ID]; !ok {
		return repositories.ErrStandingNotFound
	}
	standing.UpdatedAt = r.now()
	c := *standing
	r.standings[standing.ID] = &c
	return nil
}

func (r memStandingRepo) DeleteByPhase(ctx context.Context, phaseID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, s := range r.standings {
		if s.PhaseID == phaseID {
			delete(r.standings, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r memStandingRepo) ResetYellowCards(ctx context.Context, phaseIDs []int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := make(map[int]bool, len(phaseIDs))
	for _, id := range phaseIDs {
		in[id] = true
	}
	var touched int64
	for _, s := range r.standings {
		if in[s.PhaseID] {
			s.YellowCards = 0
			touched++
		}
	}
	return touched, nil
}

func (r memStandingRepo) SumCards(ctx context.Context, teamIDs, phaseIDs []int) (models.CardTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	teams := make(map[int]bool, len(teamIDs))
	for _, id := range teamIDs {
		teams[id] = true
	}
	phases := make(map[int]bool, len(phaseIDs))
	for _, id := range phaseIDs {
		phases[id] = true
	}
	var totals models.CardTotals
	for _, s := range r.standings {
		if teams[s.TeamID] && phases[s.PhaseID] {
			totals.YellowCards += s.YellowCards
			totals.RedCards += s.RedCards
		}
	}
	return totals, nil
}

func (r memStandingRepo) LockPhase(ctx context.Context, exec repositories.SQLExecutor, phaseID int) error {
	return nil
}

type memMatchRepo struct{ *memStore }

func (r memMatchRepo) Create(ctx context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[match.HomeTeamID]; !ok {
		return repositories.ErrMatchReferenceInvalid
	}
	if _, ok := r.teams[match.AwayTeamID]; !ok {
		return repositories.ErrMatchReferenceInvalid
	}
	match.ID = r.id()
	c := *match
	r.matches[match.ID] = &c
	return nil
}

func (r memMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	c := *m
	return &c, nil
}

func (r memMatchRepo) ClaimForStandings(ctx context.Context, exec repositories.SQLExecutor, id, homeScore, awayScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.StandingsApplied {
		return repositories.ErrMatchAlreadyApplied
	}
	m.StandingsApplied = true
	m.HomeScore, m.AwayScore = intPtr(homeScore), intPtr(awayScore)
	m.Status = models.MatchStatusFinished
	return nil
}

func (r memMatchRepo) ListFinishedByPhase(ctx context.Context, exec repositories.SQLExecutor, phaseID int) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range r.matches {
		if m.PhaseID == phaseID && m.Status == models.MatchStatusFinished && m.HomeScore != nil && m.AwayScore != nil {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memMatchRepo) CountByLeague(ctx context.Context, leagueID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.matches {
		if m.LeagueID == leagueID {
			count++
		}
	}
	return count, nil
}

type memDisciplineRepo struct{ *memStore }

func (r memDisciplineRepo) Create(ctx context.Context, rule *models.DisciplineRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.LeagueID]; ok {
		return repositories.ErrDisciplineRuleExists
	}
	rule.ID = r.id()
	rule.CreatedAt, rule.UpdatedAt = r.now(), r.now()
	c := *rule
	r.rules[rule.LeagueID] = &c
	return nil
}

func (r memDisciplineRepo) GetByLeagueID(ctx context.Context, leagueID int) (*models.DisciplineRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[leagueID]
	if !ok {
		return nil, repositories.ErrDisciplineRuleNotFound
	}
	c := *rule
	return &c, nil
}

func (r memDisciplineRepo) Update(ctx context.Context, rule *models.DisciplineRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.LeagueID]; !ok {
		return repositories.ErrDisciplineRuleNotFound
	}
	rule.UpdatedAt = r.now()
	c := *rule
	r.rules[rule.LeagueID] = &c
	return nil
}

func (r memDisciplineRepo) Upsert(ctx context.Context, rule *models.DisciplineRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rules[rule.LeagueID]; ok {
		rule.ID, rule.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		rule.ID = r.id()
		rule.CreatedAt = r.now()
	}
	rule.UpdatedAt = r.now()
	c := *rule
	r.rules[rule.LeagueID] = &c
	return nil
}

func (r memDisciplineRepo) Delete(ctx context.Context, leagueID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[leagueID]; !ok {
		return repositories.ErrDisciplineRuleNotFound
	}
	delete(r.rules, leagueID)
	return nil
}

type memInviteRepo struct{ *memStore }

func (r memInviteRepo) Create(ctx context.Context, invite *models.LeagueInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leagues[invite.LeagueID]; !ok {
		return repositories.ErrLeagueNotFound
	}
	for _, i := range r.invites {
		if i.Token == invite.Token {
			return repositories.ErrInviteTokenConflict
		}
	}
	invite.ID = r.id()
	invite.CreatedAt = r.now()
	c := *invite
	r.invites[invite.ID] = &c
	return nil
}

func (r memInviteRepo) GetByToken(ctx context.Context, token string) (*models.LeagueInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.invites {
		if i.Token == token {
			c := *i
			return &c, nil
		}
	}
	return nil, repositories.ErrInviteNotFound
}

func (r memInviteRepo) ListByLeague(ctx context.Context, leagueID int) ([]models.LeagueInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LeagueInvite, 0)
	for _, i := range r.invites {
		if i.LeagueID == leagueID {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memInviteRepo) CountActive(ctx context.Context, leagueID int, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, i := range r.invites {
		if i.LeagueID == leagueID && i.IsActive(now) {
			count++
		}
	}
	return count, nil
}

func (r memInviteRepo) MarkAccepted(ctx context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.invites[id]
	if !ok || i.AcceptedAt != nil {
		return repositories.ErrInviteNotFound
	}
	i.AcceptedAt = &at
	return nil
}

func (r memInviteRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[id]; !ok {
		return repositories.ErrInviteNotFound
	}
	delete(r.invites, id)
	return nil
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	m.Called(roomID, message)
}

// testEnv wires every service over one memStore.
type testEnv struct {
	store       *memStore
	clock       *clock.Mock
	broadcaster *mockBroadcaster

	formats       FormatService
	leagues       LeagueService
	standings     StandingService
	discipline    DisciplineService
	configuration ConfigurationService
	invites       InviteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2025, time.April, 6, 16, 0, 0, 0, time.UTC))
	store := newMemStore(mockClock.Now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	broadcaster := &mockBroadcaster{}
	broadcaster.On("BroadcastToRoom", mock.Anything, mock.Anything).Maybe()

	formatRepo := memFormatRepo{store}
	leagueRepo := memLeagueRepo{store}
	teamRepo := memTeamRepo{store}
	playerRepo := memPlayerRepo{store}
	phaseRepo := memPhaseRepo{store}
	groupRepo := memGroupRepo{store}
	standingRepo := memStandingRepo{store}
	matchRepo := memMatchRepo{store}
	ruleRepo := memDisciplineRepo{store}
	inviteRepo := memInviteRepo{store}
	tx := memTx{store}

	return &testEnv{
		store:         store,
		clock:         mockClock,
		broadcaster:   broadcaster,
		formats:       NewFormatService(formatRepo, leagueRepo, phaseRepo, tx),
		leagues:       NewLeagueService(leagueRepo, formatRepo, teamRepo, playerRepo, phaseRepo, groupRepo, matchRepo),
		standings:     NewStandingService(standingRepo, phaseRepo, leagueRepo, groupRepo, matchRepo, formatRepo, tx, broadcaster, logger),
		discipline:    NewDisciplineService(ruleRepo, leagueRepo, phaseRepo, playerRepo, standingRepo),
		configuration: NewConfigurationService(leagueRepo, formatRepo, phaseRepo, matchRepo, inviteRepo, mockClock),
		invites:       NewInviteService(inviteRepo, leagueRepo, mockClock, logger),
	}
}

func (e *testEnv) createLeague(t *testing.T, slug string) *models.League {
	t.Helper()
	league, err := e.leagues.CreateLeague(context.Background(), CreateLeagueInput{Name: slug, Slug: slug})
	if err != nil {
		t.Fatalf("create league %q: %v", slug, err)
	}
	return league
}

// createTeams creates teams with the given names and links them to the league.
func (e *testEnv) createTeams(t *testing.T, leagueID int, names ...string) []int {
	t.Helper()
	ctx := context.Background()
	ids := make([]int, 0, len(names))
	for _, name := range names {
		team, err := e.leagues.CreateTeam(ctx, CreateTeamInput{Name: name})
		if err != nil {
			t.Fatalf("create team %q: %v", name, err)
		}
		if err := e.leagues.LinkTeam(ctx, leagueID, team.ID); err != nil {
			t.Fatalf("link team %q: %v", name, err)
		}
		ids = append(ids, team.ID)
	}
	return ids
}

func (e *testEnv) createFormat(t *testing.T, input CreateFormatInput) *models.LeagueFormat {
	t.Helper()
	format, err := e.formats.CreateFormat(context.Background(), input)
	if err != nil {
		t.Fatalf("create format %q: %v", input.Slug, err)
	}
	return format
}

func roundRobinInput(slug string, criteria ...models.TiebreakCriterion) CreateFormatInput {
	rules := make([]TiebreakRuleInput, 0, len(criteria))
	for i, c := range criteria {
		rules = append(rules, TiebreakRuleInput{Order: i + 1, Criterion: c})
	}
	return CreateFormatInput{
		Name: "Format " + slug,
		Slug: slug,
		Type: models.CompetitionRoundRobin,
		Phases: []PhaseConfigInput{
			{Name: "Regular season", Order: 1, Type: models.PhaseLeague, TeamsCount: intPtr(4), HasHomeAway: true, TiebreakRules: rules},
		},
	}
}
