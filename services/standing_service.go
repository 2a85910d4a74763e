package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/tiebreak"
)

var (
	ErrStandingsCreationFailed = errors.New("failed to create standings")
	ErrMatchResultFailed       = errors.New("failed to process match result")
	ErrRecalculationFailed     = errors.New("failed to recalculate positions")
	ErrStandingUpdateFailed    = errors.New("failed to update standing")
)

type StandingService interface {
	CreateStandingsForPhase(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error)
	GetStandingsByPhase(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error)
	ProcessMatchResult(ctx context.Context, phaseID int, input MatchResultInput) (*ProcessedResult, error)
	RecalculatePositions(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error)
	RecalculatePositionsWithRules(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error)
	UpdateStanding(ctx context.Context, id int, input UpdateStandingInput) (*models.LeagueStanding, error)
	DeleteStandingsByPhase(ctx context.Context, phaseID int) (int64, error)
}

// MatchResultInput is a finished match as seen by the ledger. MatchID is an
// optional idempotency key: when set, the match can be counted only once.
// Without it, calling twice for the same match counts it twice.
type MatchResultInput struct {
	MatchID         *int `json:"match_id,omitempty"`
	HomeTeamID      int  `json:"home_team_id" validate:"required,gt=0"`
	AwayTeamID      int  `json:"away_team_id" validate:"required,gt=0,nefield=HomeTeamID"`
	HomeScore       int  `json:"home_score" validate:"min=0"`
	AwayScore       int  `json:"away_score" validate:"min=0"`
	HomeYellowCards int  `json:"home_yellow_cards" validate:"min=0"`
	AwayYellowCards int  `json:"away_yellow_cards" validate:"min=0"`
	HomeRedCards    int  `json:"home_red_cards" validate:"min=0"`
	AwayRedCards    int  `json:"away_red_cards" validate:"min=0"`
	GroupID         *int `json:"group_id,omitempty"`
}

type ProcessedResult struct {
	Home *models.LeagueStanding `json:"home"`
	Away *models.LeagueStanding `json:"away"`
}

// UpdateStandingInput is a manual correction. Points are recomputed from
// wins and draws whenever any of wins, draws or losses is patched, and the
// goal difference whenever goals are patched.
type UpdateStandingInput struct {
	Position     models.Nullable[int] `json:"position"`
	Played       *int                 `json:"played,omitempty"`
	Wins         *int                 `json:"wins,omitempty"`
	Draws        *int                 `json:"draws,omitempty"`
	Losses       *int                 `json:"losses,omitempty"`
	GoalsFor     *int                 `json:"goals_for,omitempty"`
	GoalsAgainst *int                 `json:"goals_against,omitempty"`
	Points       *int                 `json:"points,omitempty"`
	WinsHome     *int                 `json:"wins_home,omitempty"`
	WinsAway     *int                 `json:"wins_away,omitempty"`
	GoalsHome    *int                 `json:"goals_home,omitempty"`
	GoalsAway    *int                 `json:"goals_away,omitempty"`
	YellowCards  *int                 `json:"yellow_cards,omitempty"`
	RedCards     *int                 `json:"red_cards,omitempty"`
}

type standingService struct {
	standingRepo repositories.LeagueStandingRepository
	phaseRepo    repositories.PhaseRepository
	leagueRepo   repositories.LeagueRepository
	groupRepo    repositories.GroupRepository
	matchRepo    repositories.MatchRepository
	formatRepo   repositories.FormatRepository
	tx           repositories.Transactor
	broadcaster  live.Broadcaster
	logger       *slog.Logger
}

func NewStandingService(
	standingRepo repositories.LeagueStandingRepository,
	phaseRepo repositories.PhaseRepository,
	leagueRepo repositories.LeagueRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	formatRepo repositories.FormatRepository,
	tx repositories.Transactor,
	broadcaster live.Broadcaster,
	logger *slog.Logger,
) StandingService {
	return &standingService{
		standingRepo: standingRepo,
		phaseRepo:    phaseRepo,
		leagueRepo:   leagueRepo,
		groupRepo:    groupRepo,
		matchRepo:    matchRepo,
		formatRepo:   formatRepo,
		tx:           tx,
		broadcaster:  broadcaster,
		logger:       logger,
	}
}

func (s *standingService) getPhase(ctx context.Context, phaseID int) (*models.LeaguePhase, error) {
	phase, err := s.phaseRepo.GetByID(ctx, nil, phaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to get phase %d: %w", phaseID, err)
	}
	return phase, nil
}

func (s *standingService) CreateStandingsForPhase(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	phase, err := s.getPhase(ctx, phaseID)
	if err != nil {
		return nil, err
	}

	var teamIDs []int
	if groupID != nil {
		group, err := s.groupRepo.GetByID(ctx, nil, *groupID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, fmt.Errorf("%w: %w", ErrStandingsCreationFailed, err)
		}
		if group.PhaseID != phaseID {
			return nil, fmt.Errorf("%w: group %d is not part of phase %d", ErrGroupNotFound, group.ID, phaseID)
		}
		teamIDs = group.TeamIDs
	}
	if len(teamIDs) == 0 {
		teamIDs, err = s.leagueRepo.ListTeamIDs(ctx, nil, phase.LeagueID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStandingsCreationFailed, err)
		}
	}

	rows := make([]*models.LeagueStanding, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		rows = append(rows, &models.LeagueStanding{PhaseID: phaseID, TeamID: teamID, GroupID: groupID})
	}

	var created []*models.LeagueStanding
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var txErr error
		created, txErr = s.standingRepo.BatchCreate(ctx, exec, rows)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStandingsCreationFailed, err)
	}
	return created, nil
}

func (s *standingService) GetStandingsByPhase(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	if _, err := s.getPhase(ctx, phaseID); err != nil {
		return nil, err
	}
	standings, err := s.standingRepo.ListByPhase(ctx, nil, phaseID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get standings of phase %d: %w", phaseID, err)
	}
	return standings, nil
}

func validateMatchResult(input MatchResultInput) error {
	if input.HomeTeamID == input.AwayTeamID {
		return ErrSameTeam
	}
	for _, v := range []int{
		input.HomeScore, input.AwayScore,
		input.HomeYellowCards, input.AwayYellowCards,
		input.HomeRedCards, input.AwayRedCards,
	} {
		if v < 0 {
			return ErrInvalidScore
		}
	}
	return nil
}

// matchDeltas turns a final score into the increments of both standing rows.
func matchDeltas(input MatchResultInput) (home, away models.StandingDelta) {
	home = models.StandingDelta{
		Played:         1,
		GoalsFor:       input.HomeScore,
		GoalsAgainst:   input.AwayScore,
		GoalDifference: input.HomeScore - input.AwayScore,
		GoalsHome:      input.HomeScore,
		YellowCards:    input.HomeYellowCards,
		RedCards:       input.HomeRedCards,
	}
	away = models.StandingDelta{
		Played:         1,
		GoalsFor:       input.AwayScore,
		GoalsAgainst:   input.HomeScore,
		GoalDifference: input.AwayScore - input.HomeScore,
		GoalsAway:      input.AwayScore,
		YellowCards:    input.AwayYellowCards,
		RedCards:       input.AwayRedCards,
	}

	switch {
	case input.HomeScore > input.AwayScore:
		home.Wins, home.WinsHome, home.Points = 1, 1, models.PointsPerWin
		away.Losses, away.Points = 1, models.PointsPerLoss
	case input.HomeScore < input.AwayScore:
		away.Wins, away.WinsAway, away.Points = 1, 1, models.PointsPerWin
		home.Losses, home.Points = 1, models.PointsPerLoss
	default:
		home.Draws, home.Points = 1, models.PointsPerDraw
		away.Draws, away.Points = 1, models.PointsPerDraw
	}
	return home, away
}

func (s *standingService) ProcessMatchResult(ctx context.Context, phaseID int, input MatchResultInput) (*ProcessedResult, error) {
	if err := validateMatchResult(input); err != nil {
		return nil, err
	}
	phase, err := s.getPhase(ctx, phaseID)
	if err != nil {
		return nil, err
	}

	groupID := input.GroupID
	homeDelta, awayDelta := matchDeltas(input)
	result := &ProcessedResult{}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if input.MatchID != nil {
			match, err := s.matchRepo.GetByID(ctx, exec, *input.MatchID)
			if err != nil {
				return err
			}
			if match.PhaseID != phaseID {
				return fmt.Errorf("%w: match %d belongs to phase %d", ErrMatchPhaseMismatch, match.ID, match.PhaseID)
			}
			if match.HomeTeamID != input.HomeTeamID || match.AwayTeamID != input.AwayTeamID {
				return fmt.Errorf("%w: match %d is %d vs %d", ErrMatchTeamsMismatch, match.ID, match.HomeTeamID, match.AwayTeamID)
			}
			if groupID == nil {
				groupID = match.GroupID
			}
			if err := s.matchRepo.ClaimForStandings(ctx, exec, match.ID, input.HomeScore, input.AwayScore); err != nil {
				return err
			}
		}

		home, err := s.findRow(ctx, exec, phaseID, input.HomeTeamID, groupID)
		if err != nil {
			return err
		}
		away, err := s.findRow(ctx, exec, phaseID, input.AwayTeamID, groupID)
		if err != nil {
			return err
		}

		if result.Home, err = s.standingRepo.ApplyDelta(ctx, exec, home.ID, homeDelta); err != nil {
			return err
		}
		result.Away, err = s.standingRepo.ApplyDelta(ctx, exec, away.ID, awayDelta)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrStandingNotFound):
			return nil, ErrStandingNotFound
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		case errors.Is(err, repositories.ErrMatchAlreadyApplied):
			return nil, fmt.Errorf("%w: match %d", ErrMatchAlreadyProcessed, *input.MatchID)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidationFailed):
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrMatchResultFailed, err)
	}

	s.notify(phase, live.EventStandingsUpdated, groupID)
	return result, nil
}

// findRow requires an initialized row; results are never recorded against
// a team the phase does not know.
func (s *standingService) findRow(ctx context.Context, exec repositories.SQLExecutor, phaseID, teamID int, groupID *int) (*models.LeagueStanding, error) {
	row, err := s.standingRepo.FindRow(ctx, exec, phaseID, teamID, groupID)
	if errors.Is(err, repositories.ErrStandingNotFound) {
		return nil, fmt.Errorf("%w: team %d has no row in phase %d", ErrStandingNotFound, teamID, phaseID)
	}
	return row, err
}

func (s *standingService) RecalculatePositions(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	phase, err := s.getPhase(ctx, phaseID)
	if err != nil {
		return nil, err
	}
	return s.recalculate(ctx, phase, groupID, tiebreak.DefaultCriteria, nil)
}

func (s *standingService) RecalculatePositionsWithRules(ctx context.Context, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	phase, err := s.getPhase(ctx, phaseID)
	if err != nil {
		return nil, err
	}

	criteria := tiebreak.DefaultCriteria
	if phase.PhaseConfigID != nil {
		config, err := s.formatRepo.GetPhaseConfig(ctx, nil, *phase.PhaseConfigID)
		switch {
		case err == nil:
			if rules := config.Criteria(); len(rules) > 0 {
				criteria = rules
			}
		case errors.Is(err, repositories.ErrPhaseConfigNotFound):
		default:
			return nil, fmt.Errorf("%w: %w", ErrRecalculationFailed, err)
		}
	}

	matches, err := s.matchRepo.ListFinishedByPhase(ctx, nil, phaseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecalculationFailed, err)
	}
	return s.recalculate(ctx, phase, groupID, criteria, tiebreak.NewMatchHeadToHead(matches))
}

// recalculate ranks every group of the phase independently (or only the
// given group) and overwrites all positions. Concurrent recalculations of
// the same phase are serialized by the phase lock.
func (s *standingService) recalculate(
	ctx context.Context,
	phase *models.LeaguePhase,
	groupID *int,
	criteria []models.TiebreakCriterion,
	h2h tiebreak.HeadToHead,
) ([]*models.LeagueStanding, error) {
	var ranked []*models.LeagueStanding

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.standingRepo.LockPhase(ctx, exec, phase.ID); err != nil {
			return err
		}
		rows, err := s.standingRepo.ListByPhase(ctx, exec, phase.ID, groupID)
		if err != nil {
			return err
		}

		positions := make(map[int]int, len(rows))
		ranked = make([]*models.LeagueStanding, 0, len(rows))
		for _, partition := range partitionByGroup(rows) {
			sorted, groupPositions := tiebreak.Rank(partition, criteria, h2h)
			for id, pos := range groupPositions {
				positions[id] = pos
			}
			ranked = append(ranked, sorted...)
		}
		for _, row := range ranked {
			row.Position = intPtr(positions[row.ID])
		}
		return s.standingRepo.UpdatePositions(ctx, exec, positions)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecalculationFailed, err)
	}

	s.notify(phase, live.EventStandingsUpdated, groupID)
	return ranked, nil
}

// partitionByGroup splits rows by group, keeping first-seen group order and
// the arrival order inside each group.
func partitionByGroup(rows []*models.LeagueStanding) [][]*models.LeagueStanding {
	index := make(map[int]int)
	partitions := make([][]*models.LeagueStanding, 0, 1)
	for _, row := range rows {
		key := 0
		if row.GroupID != nil {
			key = *row.GroupID
		}
		i, ok := index[key]
		if !ok {
			i = len(partitions)
			index[key] = i
			partitions = append(partitions, nil)
		}
		partitions[i] = append(partitions[i], row)
	}
	return partitions
}

func (s *standingService) UpdateStanding(ctx context.Context, id int, input UpdateStandingInput) (*models.LeagueStanding, error) {
	var standing *models.LeagueStanding

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		standing, err = s.standingRepo.GetByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if err := applyStandingPatch(standing, input); err != nil {
			return err
		}
		return s.standingRepo.Update(ctx, exec, standing)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrStandingNotFound):
			return nil, ErrStandingNotFound
		case errors.Is(err, ErrValidationFailed):
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStandingUpdateFailed, err)
	}
	return standing, nil
}

func applyStandingPatch(s *models.LeagueStanding, in UpdateStandingInput) error {
	for _, v := range []*int{
		in.Played, in.Wins, in.Draws, in.Losses, in.GoalsFor, in.GoalsAgainst, in.Points,
		in.WinsHome, in.WinsAway, in.GoalsHome, in.GoalsAway, in.YellowCards, in.RedCards,
	} {
		if v != nil && *v < 0 {
			return ErrInvalidStandingValue
		}
	}
	if in.Position.Set && in.Position.Value != nil && *in.Position.Value < 1 {
		return fmt.Errorf("%w: position must be at least 1", ErrValidationFailed)
	}

	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	if in.Position.Set {
		s.Position = in.Position.Value
	}
	set(&s.Played, in.Played)
	set(&s.Wins, in.Wins)
	set(&s.Draws, in.Draws)
	set(&s.Losses, in.Losses)
	set(&s.GoalsFor, in.GoalsFor)
	set(&s.GoalsAgainst, in.GoalsAgainst)
	set(&s.Points, in.Points)
	set(&s.WinsHome, in.WinsHome)
	set(&s.WinsAway, in.WinsAway)
	set(&s.GoalsHome, in.GoalsHome)
	set(&s.GoalsAway, in.GoalsAway)
	set(&s.YellowCards, in.YellowCards)
	set(&s.RedCards, in.RedCards)

	if in.Wins != nil || in.Draws != nil || in.Losses != nil {
		s.Points = s.Wins*models.PointsPerWin + s.Draws*models.PointsPerDraw
	}
	if in.GoalsFor != nil || in.GoalsAgainst != nil {
		s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	}
	return nil
}

func (s *standingService) DeleteStandingsByPhase(ctx context.Context, phaseID int) (int64, error) {
	phase, err := s.getPhase(ctx, phaseID)
	if err != nil {
		return 0, err
	}
	deleted, err := s.standingRepo.DeleteByPhase(ctx, phaseID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete standings of phase %d: %w", phaseID, err)
	}
	s.notify(phase, live.EventStandingsReset, nil)
	return deleted, nil
}

type standingsEvent struct {
	LeagueID int  `json:"league_id"`
	PhaseID  int  `json:"phase_id"`
	GroupID  *int `json:"group_id,omitempty"`
}

func (s *standingService) notify(phase *models.LeaguePhase, eventType string, groupID *int) {
	if s.broadcaster == nil {
		return
	}
	room := live.LeagueRoom(phase.LeagueID)
	s.broadcaster.BroadcastToRoom(room, live.Message{
		Type:    eventType,
		Payload: standingsEvent{LeagueID: phase.LeagueID, PhaseID: phase.ID, GroupID: groupID},
		RoomID:  room,
	})
	if s.logger != nil {
		s.logger.Debug("Standings event broadcast",
			slog.String("type", eventType), slog.Int("league_id", phase.LeagueID), slog.Int("phase_id", phase.ID))
	}
}
