package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/itbasis/go-clock"
	"golang.org/x/sync/errgroup"
)

var ErrConfigurationStatusFailed = errors.New("failed to build configuration status")

// Team counts a format expects when its first phase does not name one.
var defaultTeamsByType = map[models.CompetitionType]int{
	models.CompetitionRoundRobin:  20,
	models.CompetitionKnockout:    64,
	models.CompetitionMixed:       32,
	models.CompetitionLeaguePhase: 36,
	models.CompetitionCustom:      8,
}

const (
	StepLeagueCreated         = "league_created"
	StepFormatSelected        = "format_selected"
	StepTeamsConfirmed        = "teams_confirmed"
	StepInvitesCreated        = "invites_created"
	StepPhasesCreated         = "phases_created"
	StepBracketCreated        = "bracket_created"
	StepGroupsCreated         = "groups_created"
	StepLeaguePhaseCreated    = "league_phase_created"
	StepFixturesGenerated     = "fixtures_generated"
	StepTiebreaksConfigured   = "tiebreaks_configured"
	StepAdvancementConfigured = "advancement_configured"
	StepPlayoffsDefined       = "playoffs_defined"
	StepStartLeague           = "start_league"
)

type ConfigurationService interface {
	GetConfigurationStatus(ctx context.Context, leagueID int) (*models.ConfigurationStatus, error)
}

type configurationService struct {
	leagueRepo repositories.LeagueRepository
	formatRepo repositories.FormatRepository
	phaseRepo  repositories.PhaseRepository
	matchRepo  repositories.MatchRepository
	inviteRepo repositories.InviteRepository
	clock      clock.Clock
}

func NewConfigurationService(
	leagueRepo repositories.LeagueRepository,
	formatRepo repositories.FormatRepository,
	phaseRepo repositories.PhaseRepository,
	matchRepo repositories.MatchRepository,
	inviteRepo repositories.InviteRepository,
	clock clock.Clock,
) ConfigurationService {
	return &configurationService{
		leagueRepo: leagueRepo,
		formatRepo: formatRepo,
		phaseRepo:  phaseRepo,
		matchRepo:  matchRepo,
		inviteRepo: inviteRepo,
		clock:      clock,
	}
}

// leagueSetup is everything the checklist is derived from.
type leagueSetup struct {
	LeagueID      int
	Format        *models.LeagueFormat
	Phases        []models.LeaguePhase
	TeamCount     int
	MatchCount    int
	ActiveInvites int
}

func (s *configurationService) GetConfigurationStatus(ctx context.Context, leagueID int) (*models.ConfigurationStatus, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrConfigurationStatusFailed, err)
	}

	setup := leagueSetup{LeagueID: leagueID}
	g, gctx := errgroup.WithContext(ctx)
	if league.FormatID != nil {
		formatID := *league.FormatID
		g.Go(func() error {
			var err error
			setup.Format, err = s.formatRepo.GetByID(gctx, nil, formatID)
			return err
		})
	}
	g.Go(func() error {
		var err error
		setup.Phases, err = s.phaseRepo.ListByLeague(gctx, nil, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		setup.TeamCount, err = s.leagueRepo.CountTeams(gctx, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		setup.MatchCount, err = s.matchRepo.CountByLeague(gctx, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		setup.ActiveInvites, err = s.inviteRepo.CountActive(gctx, leagueID, s.clock.Now())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigurationStatusFailed, err)
	}

	return buildConfigurationStatus(setup), nil
}

func requiredTeams(format *models.LeagueFormat) int {
	if len(format.Phases) > 0 && format.Phases[0].TeamsCount != nil {
		return *format.Phases[0].TeamsCount
	}
	return defaultTeamsByType[format.Type]
}

// buildConfigurationStatus is a pure function of the setup snapshot.
func buildConfigurationStatus(setup leagueSetup) *models.ConfigurationStatus {
	steps := []models.ConfigurationStep{
		{ID: StepLeagueCreated, Title: "League created", Description: "The league exists.", Completed: true, Required: true, Order: 1},
		{ID: StepFormatSelected, Title: "Format selected", Description: "A competition format is applied to the league.", Completed: setup.Format != nil, Required: true, Order: 2},
	}
	status := &models.ConfigurationStatus{LeagueID: setup.LeagueID}

	order := 3
	if setup.Format != nil {
		formatType := setup.Format.Type
		status.FormatType = &formatType

		needed := requiredTeams(setup.Format)
		teamsConfirmed := setup.TeamCount >= needed
		steps = append(steps, models.ConfigurationStep{
			ID:          StepTeamsConfirmed,
			Title:       "Teams confirmed",
			Description: fmt.Sprintf("%d of %d teams linked to the league.", setup.TeamCount, needed),
			Completed:   teamsConfirmed,
			Required:    true,
			Order:       3,
		})
		if !teamsConfirmed {
			steps = append(steps, models.ConfigurationStep{
				ID:          StepInvitesCreated,
				Title:       "Invites sent",
				Description: "Invite teams to join the league.",
				Completed:   setup.ActiveInvites > 0,
				Required:    false,
				Order:       4,
			})
		}

		order = 5
		for _, step := range typeSteps(setup) {
			step.Order = order
			step.Required = true
			steps = append(steps, step)
			order++
		}
	}

	steps = append(steps, models.ConfigurationStep{
		ID:          StepStartLeague,
		Title:       "Start league",
		Description: "Open the league for play.",
		Completed:   false,
		Required:    true,
		Order:       order,
	})

	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })

	totalRequired, completedRequired := 0, 0
	for _, step := range steps {
		if !step.Required {
			continue
		}
		totalRequired++
		if step.Completed {
			completedRequired++
		}
	}

	status.Steps = steps
	if totalRequired > 0 {
		status.CompletionPercentage = int(math.Round(100 * float64(completedRequired) / float64(totalRequired)))
	}
	status.IsConfigured = completedRequired == totalRequired
	return status
}

// typeSteps are coarse existence checks; they do not validate structure.
func typeSteps(setup leagueSetup) []models.ConfigurationStep {
	hasPhases := len(setup.Phases) > 0
	hasFixtures := setup.MatchCount > 0

	hasPlayoffs := false
	for _, p := range setup.Phases {
		if p.Type == models.PhaseKnockout || p.Type == models.PhasePlayoff {
			hasPlayoffs = true
			break
		}
	}

	hasTiebreaks := false
	for _, pc := range setup.Format.Phases {
		if len(pc.TiebreakRules) > 0 {
			hasTiebreaks = true
			break
		}
	}

	fixtures := models.ConfigurationStep{ID: StepFixturesGenerated, Title: "Fixtures generated", Description: "Matches are scheduled.", Completed: hasFixtures}
	playoffs := models.ConfigurationStep{ID: StepPlayoffsDefined, Title: "Playoffs defined", Description: "A knockout or playoff phase exists.", Completed: hasPlayoffs}

	switch setup.Format.Type {
	case models.CompetitionRoundRobin:
		return []models.ConfigurationStep{
			{ID: StepPhasesCreated, Title: "Phases created", Description: "The league phases exist.", Completed: hasPhases},
			fixtures,
			{ID: StepTiebreaksConfigured, Title: "Tiebreaks configured", Description: "The format defines tiebreak rules.", Completed: hasTiebreaks},
		}
	case models.CompetitionKnockout:
		return []models.ConfigurationStep{
			{ID: StepBracketCreated, Title: "Bracket created", Description: "The knockout phases exist.", Completed: hasPhases},
			fixtures,
		}
	case models.CompetitionMixed:
		return []models.ConfigurationStep{
			{ID: StepGroupsCreated, Title: "Groups created", Description: "The group stage exists.", Completed: hasPhases},
			fixtures,
			{ID: StepAdvancementConfigured, Title: "Advancement configured", Description: "Qualification from the groups is set up.", Completed: hasPhases},
			playoffs,
		}
	case models.CompetitionLeaguePhase:
		return []models.ConfigurationStep{
			{ID: StepLeaguePhaseCreated, Title: "League phase created", Description: "The league phase exists.", Completed: hasPhases},
			fixtures,
			playoffs,
		}
	default:
		return []models.ConfigurationStep{
			{ID: StepPhasesCreated, Title: "Phases created", Description: "The league phases exist.", Completed: hasPhases},
			fixtures,
		}
	}
}
