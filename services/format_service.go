package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/tiebreak"
)

var (
	ErrFormatCreationFailed = errors.New("failed to create format")
	ErrFormatUpdateFailed   = errors.New("failed to update format")
	ErrFormatDeleteFailed   = errors.New("failed to delete format")
	ErrFormatApplyFailed    = errors.New("failed to apply format to league")
)

type FormatService interface {
	CreateFormat(ctx context.Context, input CreateFormatInput) (*models.LeagueFormat, error)
	GetFormatByID(ctx context.Context, id int) (*models.LeagueFormat, error)
	GetFormatBySlug(ctx context.Context, slug string) (*models.LeagueFormat, error)
	ListFormats(ctx context.Context, templatesOnly bool) ([]models.LeagueFormat, error)
	UpdateFormat(ctx context.Context, id int, input UpdateFormatInput) (*models.LeagueFormat, error)
	DeleteFormat(ctx context.Context, id int) error
	ApplyFormatToLeague(ctx context.Context, leagueID, formatID int) ([]models.LeaguePhase, error)
}

type CreateFormatInput struct {
	Name        string                 `json:"name" validate:"required,max=120"`
	Slug        string                 `json:"slug" validate:"required,max=120"`
	Type        models.CompetitionType `json:"type" validate:"required"`
	Description *string                `json:"description,omitempty"`
	IsTemplate  *bool                  `json:"is_template,omitempty"` // defaults to true
	Phases      []PhaseConfigInput     `json:"phases" validate:"dive"`
}

type PhaseConfigInput struct {
	Name           string              `json:"name" validate:"required"`
	Order          int                 `json:"order"`
	Type           models.PhaseType    `json:"type" validate:"required"`
	TeamsCount     *int                `json:"teams_count,omitempty" validate:"omitempty,min=2"`
	GroupsCount    *int                `json:"groups_count,omitempty" validate:"omitempty,min=1"`
	TeamsPerGroup  *int                `json:"teams_per_group,omitempty" validate:"omitempty,min=2"`
	HasHomeAway    bool                `json:"has_home_away"`
	HasExtraTime   bool                `json:"has_extra_time"`
	HasPenalties   bool                `json:"has_penalties"`
	HasAwayGoal    bool                `json:"has_away_goal"`
	AdvancingTeams *int                `json:"advancing_teams,omitempty" validate:"omitempty,min=1"`
	AdvancingFrom  *string             `json:"advancing_from,omitempty"`
	TiebreakRules  []TiebreakRuleInput `json:"tiebreak_rules" validate:"dive"`
}

type TiebreakRuleInput struct {
	Order     int                      `json:"order"`
	Criterion models.TiebreakCriterion `json:"criterion" validate:"required"`
}

// UpdateFormatInput changes metadata only. An omitted description is left
// untouched; an explicit null clears it.
type UpdateFormatInput struct {
	Name        *string                 `json:"name,omitempty" validate:"omitempty,max=120"`
	Description models.Nullable[string] `json:"description"`
	IsTemplate  *bool                   `json:"is_template,omitempty"`
}

type formatService struct {
	formatRepo repositories.FormatRepository
	leagueRepo repositories.LeagueRepository
	phaseRepo  repositories.PhaseRepository
	tx         repositories.Transactor
}

func NewFormatService(
	formatRepo repositories.FormatRepository,
	leagueRepo repositories.LeagueRepository,
	phaseRepo repositories.PhaseRepository,
	tx repositories.Transactor,
) FormatService {
	return &formatService{
		formatRepo: formatRepo,
		leagueRepo: leagueRepo,
		phaseRepo:  phaseRepo,
		tx:         tx,
	}
}

func (s *formatService) CreateFormat(ctx context.Context, input CreateFormatInput) (*models.LeagueFormat, error) {
	format, err := buildFormat(input)
	if err != nil {
		return nil, err
	}

	exists, err := s.formatRepo.SlugExists(ctx, format.Slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormatCreationFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrFormatSlugConflict, format.Slug)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.formatRepo.Create(ctx, exec, format)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrFormatSlugConflict) {
			return nil, fmt.Errorf("%w: %q", ErrFormatSlugConflict, format.Slug)
		}
		return nil, fmt.Errorf("%w: %w", ErrFormatCreationFailed, err)
	}
	return format, nil
}

// buildFormat validates the whole input before anything is written.
func buildFormat(input CreateFormatInput) (*models.LeagueFormat, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrFormatNameRequired
	}
	slug := normalizeSlug(input.Slug)
	if slug == "" {
		return nil, ErrFormatSlugRequired
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCompetitionType, input.Type)
	}

	orders := make([]int, 0, len(input.Phases))
	for _, p := range input.Phases {
		orders = append(orders, p.Order)
	}
	if err := checkSequentialOrders(orders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhaseOrder, err)
	}

	format := &models.LeagueFormat{
		Name:        name,
		Slug:        slug,
		Type:        input.Type,
		Description: input.Description,
		IsTemplate:  true,
		Phases:      make([]models.PhaseConfig, 0, len(input.Phases)),
	}
	if input.IsTemplate != nil {
		format.IsTemplate = *input.IsTemplate
	}

	for _, p := range input.Phases {
		phase, err := buildPhaseConfig(p)
		if err != nil {
			return nil, err
		}
		format.Phases = append(format.Phases, phase)
	}
	sortPhaseConfigs(format.Phases)
	return format, nil
}

func buildPhaseConfig(p PhaseConfigInput) (models.PhaseConfig, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return models.PhaseConfig{}, fmt.Errorf("%w: phase %d has no name", ErrValidationFailed, p.Order)
	}
	if !p.Type.Valid() {
		return models.PhaseConfig{}, fmt.Errorf("%w: phase %d: %q", ErrInvalidPhaseType, p.Order, p.Type)
	}
	if p.Type == models.PhaseGroupStage && (p.GroupsCount == nil || p.TeamsPerGroup == nil) {
		return models.PhaseConfig{}, fmt.Errorf("%w: phase %d (%s)", ErrGroupStageIncomplete, p.Order, name)
	}

	rules := make([]models.TiebreakRuleConfig, 0, len(p.TiebreakRules))
	if len(p.TiebreakRules) > 0 {
		ruleOrders := make([]int, 0, len(p.TiebreakRules))
		for _, r := range p.TiebreakRules {
			ruleOrders = append(ruleOrders, r.Order)
		}
		if err := checkSequentialOrders(ruleOrders); err != nil {
			return models.PhaseConfig{}, fmt.Errorf("%w: phase %d: %v", ErrInvalidTiebreakRules, p.Order, err)
		}
		for _, r := range p.TiebreakRules {
			rules = append(rules, models.TiebreakRuleConfig{Order: r.Order, Criterion: r.Criterion})
		}
		sortTiebreakRules(rules)

		criteria := make([]models.TiebreakCriterion, 0, len(rules))
		for _, r := range rules {
			criteria = append(criteria, r.Criterion)
		}
		if err := tiebreak.ValidateCriteria(criteria); err != nil {
			return models.PhaseConfig{}, fmt.Errorf("%w: phase %d: %v", ErrInvalidTiebreakRules, p.Order, err)
		}
	}

	return models.PhaseConfig{
		Name:           name,
		Order:          p.Order,
		Type:           p.Type,
		TeamsCount:     p.TeamsCount,
		GroupsCount:    p.GroupsCount,
		TeamsPerGroup:  p.TeamsPerGroup,
		HasHomeAway:    p.HasHomeAway,
		HasExtraTime:   p.HasExtraTime,
		HasPenalties:   p.HasPenalties,
		HasAwayGoal:    p.HasAwayGoal,
		AdvancingTeams: p.AdvancingTeams,
		AdvancingFrom:  p.AdvancingFrom,
		TiebreakRules:  rules,
	}, nil
}

func (s *formatService) GetFormatByID(ctx context.Context, id int) (*models.LeagueFormat, error) {
	format, err := s.formatRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return nil, ErrFormatNotFound
		}
		return nil, fmt.Errorf("failed to get format by id %d: %w", id, err)
	}
	return format, nil
}

func (s *formatService) GetFormatBySlug(ctx context.Context, slug string) (*models.LeagueFormat, error) {
	format, err := s.formatRepo.GetBySlug(ctx, normalizeSlug(slug))
	if err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return nil, ErrFormatNotFound
		}
		return nil, fmt.Errorf("failed to get format by slug %q: %w", slug, err)
	}
	return format, nil
}

func (s *formatService) ListFormats(ctx context.Context, templatesOnly bool) ([]models.LeagueFormat, error) {
	formats, err := s.formatRepo.List(ctx, templatesOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list formats: %w", err)
	}
	return formats, nil
}

func (s *formatService) UpdateFormat(ctx context.Context, id int, input UpdateFormatInput) (*models.LeagueFormat, error) {
	format, err := s.GetFormatByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := false
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrFormatNameRequired
		}
		if name != format.Name {
			format.Name = name
			updated = true
		}
	}
	if input.Description.Set {
		format.Description = input.Description.Value
		updated = true
	}
	if input.IsTemplate != nil && *input.IsTemplate != format.IsTemplate {
		format.IsTemplate = *input.IsTemplate
		updated = true
	}
	if !updated {
		return format, nil
	}

	if err := s.formatRepo.UpdateMetadata(ctx, format); err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return nil, ErrFormatNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrFormatUpdateFailed, err)
	}
	return format, nil
}

func (s *formatService) DeleteFormat(ctx context.Context, id int) error {
	if _, err := s.GetFormatByID(ctx, id); err != nil {
		return err
	}

	count, err := s.formatRepo.CountLeaguesUsing(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFormatDeleteFailed, err)
	}
	if count > 0 {
		return &FormatInUseError{FormatID: id, Count: count}
	}

	if err := s.formatRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrFormatNotFound):
			return ErrFormatNotFound
		case errors.Is(err, repositories.ErrFormatInUse):
			// a league picked the format after the first count
			if recount, countErr := s.formatRepo.CountLeaguesUsing(ctx, id); countErr == nil {
				count = recount
			}
			return &FormatInUseError{FormatID: id, Count: count}
		}
		return fmt.Errorf("%w: %w", ErrFormatDeleteFailed, err)
	}
	return nil
}

func (s *formatService) ApplyFormatToLeague(ctx context.Context, leagueID, formatID int) ([]models.LeaguePhase, error) {
	var created []models.LeaguePhase

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		league, err := s.leagueRepo.GetByID(ctx, exec, leagueID)
		if err != nil {
			return err
		}
		format, err := s.formatRepo.GetByID(ctx, exec, formatID)
		if err != nil {
			return err
		}
		if league.FormatID != nil {
			return fmt.Errorf("%w: league %d uses format %d", ErrLeagueAlreadyHasFormat, leagueID, *league.FormatID)
		}
		existing, err := s.phaseRepo.ListByLeague(ctx, exec, leagueID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: league %d has %d phase(s)", ErrLeagueAlreadyHasFormat, leagueID, len(existing))
		}

		created = make([]models.LeaguePhase, 0, len(format.Phases))
		for _, pc := range format.Phases {
			phase := models.LeaguePhase{
				LeagueID:      leagueID,
				Name:          pc.Name,
				Order:         pc.Order,
				Type:          pc.Type,
				Status:        models.PhaseStatusNotStarted,
				HasHomeAway:   pc.HasHomeAway,
				HasExtraTime:  pc.HasExtraTime,
				HasPenalties:  pc.HasPenalties,
				HasAwayGoal:   pc.HasAwayGoal,
				PhaseConfigID: intPtr(pc.ID),
			}
			if err := s.phaseRepo.Create(ctx, exec, &phase); err != nil {
				return err
			}
			created = append(created, phase)
		}

		return s.leagueRepo.SetFormat(ctx, exec, leagueID, formatID)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueNotFound):
			return nil, ErrLeagueNotFound
		case errors.Is(err, repositories.ErrFormatNotFound):
			return nil, ErrFormatNotFound
		case errors.Is(err, repositories.ErrPhaseOrderConflict):
			// a concurrent apply won the race
			return nil, ErrLeagueAlreadyHasFormat
		case errors.Is(err, ErrConflict):
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFormatApplyFailed, err)
	}
	return created, nil
}
