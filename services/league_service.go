package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

var (
	ErrLeagueCreationFailed = errors.New("failed to create league")
	ErrTeamCreationFailed   = errors.New("failed to create team")
	ErrGroupCreationFailed  = errors.New("failed to create group")
	ErrMatchCreationFailed  = errors.New("failed to create match")
	ErrInvalidStatusChange  = invalid("invalid phase status transition")
)

type LeagueService interface {
	CreateLeague(ctx context.Context, input CreateLeagueInput) (*models.League, error)
	GetLeague(ctx context.Context, id int) (*models.League, error)
	ListLeagues(ctx context.Context) ([]models.League, error)

	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	LinkTeam(ctx context.Context, leagueID, teamID int) error
	ListTeams(ctx context.Context, leagueID int) ([]models.Team, error)
	AddPlayerToTeam(ctx context.Context, teamID, playerID int) error

	ListPhases(ctx context.Context, leagueID int) ([]models.LeaguePhase, error)
	UpdatePhaseStatus(ctx context.Context, phaseID int, status models.PhaseStatus) (*models.LeaguePhase, error)
	CreateGroup(ctx context.Context, phaseID int, input CreateGroupInput) (*models.LeagueGroup, error)
	ListGroups(ctx context.Context, phaseID int) ([]models.LeagueGroup, error)

	CreateMatch(ctx context.Context, phaseID int, input CreateMatchInput) (*models.Match, error)
}

type CreateLeagueInput struct {
	Name      string     `json:"name" validate:"required,max=120"`
	Slug      string     `json:"slug" validate:"required,max=120"`
	IsPublic  *bool      `json:"is_public,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type CreateTeamInput struct {
	Name      string  `json:"name" validate:"required,max=120"`
	ShortName *string `json:"short_name,omitempty" validate:"omitempty,max=10"`
}

type CreateGroupInput struct {
	Name    string `json:"name" validate:"required,max=60"`
	TeamIDs []int  `json:"team_ids" validate:"dive,gt=0"`
}

type CreateMatchInput struct {
	HomeTeamID int        `json:"home_team_id" validate:"required,gt=0"`
	AwayTeamID int        `json:"away_team_id" validate:"required,gt=0,nefield=HomeTeamID"`
	GroupID    *int       `json:"group_id,omitempty"`
	MatchTime  *time.Time `json:"match_time,omitempty"`
}

type leagueService struct {
	leagueRepo repositories.LeagueRepository
	formatRepo repositories.FormatRepository
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	phaseRepo  repositories.PhaseRepository
	groupRepo  repositories.GroupRepository
	matchRepo  repositories.MatchRepository
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	formatRepo repositories.FormatRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	phaseRepo repositories.PhaseRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
) LeagueService {
	return &leagueService{
		leagueRepo: leagueRepo,
		formatRepo: formatRepo,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		phaseRepo:  phaseRepo,
		groupRepo:  groupRepo,
		matchRepo:  matchRepo,
	}
}

func (s *leagueService) CreateLeague(ctx context.Context, input CreateLeagueInput) (*models.League, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrLeagueNameRequired
	}
	slug := normalizeSlug(input.Slug)
	if slug == "" {
		return nil, ErrLeagueSlugRequired
	}
	if input.StartDate != nil && input.EndDate != nil && !input.StartDate.Before(*input.EndDate) {
		return nil, fmt.Errorf("%w: start %s, end %s", ErrInvalidDateRange,
			input.StartDate.Format(time.RFC3339), input.EndDate.Format(time.RFC3339))
	}

	league := &models.League{
		Name:      name,
		Slug:      slug,
		IsPublic:  true,
		IsActive:  true,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if input.IsPublic != nil {
		league.IsPublic = *input.IsPublic
	}

	if err := s.leagueRepo.Create(ctx, league); err != nil {
		if errors.Is(err, repositories.ErrLeagueSlugConflict) {
			return nil, fmt.Errorf("%w: %q", ErrLeagueSlugConflict, slug)
		}
		return nil, fmt.Errorf("%w: %w", ErrLeagueCreationFailed, err)
	}
	return league, nil
}

func (s *leagueService) GetLeague(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", id, err)
	}

	if league.FormatID != nil {
		format, err := s.formatRepo.GetByID(ctx, nil, *league.FormatID)
		if err != nil {
			return nil, fmt.Errorf("failed to get format of league %d: %w", id, err)
		}
		league.Format = format
	}
	league.Phases, err = s.phaseRepo.ListByLeague(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get phases of league %d: %w", id, err)
	}
	return league, nil
}

func (s *leagueService) ListLeagues(ctx context.Context) ([]models.League, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	return leagues, nil
}

func (s *leagueService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	team := &models.Team{Name: name, ShortName: input.ShortName}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTeamCreationFailed, err)
	}
	return team, nil
}

func (s *leagueService) LinkTeam(ctx context.Context, leagueID, teamID int) error {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return err
	}
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	if err := s.leagueRepo.LinkTeam(ctx, leagueID, teamID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueTeamDuplicate):
			return ErrTeamAlreadyInLeague
		case errors.Is(err, repositories.ErrLeagueTeamInvalid):
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to link team %d to league %d: %w", teamID, leagueID, err)
	}
	return nil
}

func (s *leagueService) ListTeams(ctx context.Context, leagueID int) ([]models.Team, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return s.teamRepo.ListByLeague(ctx, leagueID)
}

func (s *leagueService) AddPlayerToTeam(ctx context.Context, teamID, playerID int) error {
	if playerID <= 0 {
		return fmt.Errorf("%w: invalid player id", ErrValidationFailed)
	}
	if err := s.playerRepo.AddToTeam(ctx, playerID, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to add player %d to team %d: %w", playerID, teamID, err)
	}
	return nil
}

func (s *leagueService) ListPhases(ctx context.Context, leagueID int) ([]models.LeaguePhase, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return s.phaseRepo.ListByLeague(ctx, nil, leagueID)
}

func isValidPhaseTransition(current, next models.PhaseStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.PhaseStatus][]models.PhaseStatus{
		models.PhaseStatusNotStarted: {models.PhaseStatusInProgress},
		models.PhaseStatusInProgress: {models.PhaseStatusFinished},
		models.PhaseStatusFinished:   {},
	}
	for _, candidate := range allowed[current] {
		if next == candidate {
			return true
		}
	}
	return false
}

func (s *leagueService) UpdatePhaseStatus(ctx context.Context, phaseID int, status models.PhaseStatus) (*models.LeaguePhase, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPhaseStatus, status)
	}
	phase, err := s.phaseRepo.GetByID(ctx, nil, phaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	if !isValidPhaseTransition(phase.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, phase.Status, status)
	}
	if phase.Status == status {
		return phase, nil
	}

	if err := s.phaseRepo.UpdateStatus(ctx, phaseID, status); err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to update status of phase %d: %w", phaseID, err)
	}
	phase.Status = status
	return phase, nil
}

func (s *leagueService) CreateGroup(ctx context.Context, phaseID int, input CreateGroupInput) (*models.LeagueGroup, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	phase, err := s.phaseRepo.GetByID(ctx, nil, phaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}

	if len(input.TeamIDs) > 0 {
		linked, err := s.leagueRepo.ListTeamIDs(ctx, nil, phase.LeagueID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGroupCreationFailed, err)
		}
		inLeague := make(map[int]bool, len(linked))
		for _, id := range linked {
			inLeague[id] = true
		}
		for _, id := range input.TeamIDs {
			if !inLeague[id] {
				return nil, fmt.Errorf("%w: team %d is not linked to league %d", ErrValidationFailed, id, phase.LeagueID)
			}
		}
	}

	group := &models.LeagueGroup{PhaseID: phaseID, Name: name, TeamIDs: input.TeamIDs}
	if group.TeamIDs == nil {
		group.TeamIDs = []int{}
	}
	if err := s.groupRepo.Create(ctx, nil, group); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGroupNameConflict):
			return nil, ErrGroupNameConflict
		case errors.Is(err, repositories.ErrPhaseNotFound):
			return nil, ErrPhaseNotFound
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrGroupCreationFailed, err)
	}
	return group, nil
}

func (s *leagueService) ListGroups(ctx context.Context, phaseID int) ([]models.LeagueGroup, error) {
	if _, err := s.phaseRepo.GetByID(ctx, nil, phaseID); err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	return s.groupRepo.ListByPhase(ctx, phaseID)
}

// CreateMatch records a single fixture by hand. Fixtures are never generated.
func (s *leagueService) CreateMatch(ctx context.Context, phaseID int, input CreateMatchInput) (*models.Match, error) {
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrSameTeam
	}
	phase, err := s.phaseRepo.GetByID(ctx, nil, phaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	if input.GroupID != nil {
		group, err := s.groupRepo.GetByID(ctx, nil, *input.GroupID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, err
		}
		if group.PhaseID != phaseID {
			return nil, fmt.Errorf("%w: group %d is not part of phase %d", ErrGroupNotFound, group.ID, phaseID)
		}
	}

	match := &models.Match{
		LeagueID:   phase.LeagueID,
		PhaseID:    phaseID,
		GroupID:    input.GroupID,
		HomeTeamID: input.HomeTeamID,
		AwayTeamID: input.AwayTeamID,
		Status:     models.MatchStatusScheduled,
		MatchTime:  input.MatchTime,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchReferenceInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrMatchCreationFailed, err)
	}
	return match, nil
}
