package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"golang.org/x/sync/errgroup"
)

var (
	ErrDisciplineRuleSaveFailed = errors.New("failed to save discipline rules")
	ErrSuspensionCheckFailed    = errors.New("failed to check player suspension")
	ErrYellowResetFailed        = errors.New("failed to reset yellow cards")
)

type DisciplineService interface {
	CreateRules(ctx context.Context, leagueID int, overrides RuleOverrides) (*models.DisciplineRule, error)
	GetRulesByLeagueID(ctx context.Context, leagueID int) (*models.DisciplineRule, error)
	UpdateRules(ctx context.Context, leagueID int, input UpdateRulesInput) (*models.DisciplineRule, error)
	UpsertRules(ctx context.Context, leagueID int, overrides RuleOverrides) (*models.DisciplineRule, error)
	DeleteRules(ctx context.Context, leagueID int) error
	CheckPlayerSuspension(ctx context.Context, playerID, leagueID int) (*models.SuspensionStatus, error)
	ResetYellowCardsAfterPhase(ctx context.Context, leagueID, phaseOrder int) (int64, error)
}

// RuleOverrides replaces the league defaults field by field; omitted fields
// keep their default.
type RuleOverrides struct {
	YellowCardsForSuspension    *int  `json:"yellow_cards_for_suspension,omitempty" validate:"omitempty,min=1"`
	YellowCardsAccumulation     *bool `json:"yellow_cards_accumulation,omitempty"`
	ResetYellowsAfterPhaseOrder *int  `json:"reset_yellows_after_phase_order,omitempty" validate:"omitempty,min=1"`
	RedCardMinimumGames         *int  `json:"red_card_minimum_games,omitempty" validate:"omitempty,min=1"`
	DoubleYellowGames           *int  `json:"double_yellow_games,omitempty" validate:"omitempty,min=1"`
}

// UpdateRulesInput patches an existing rule. An explicit null reset order
// disables the reset boundary; an omitted one leaves it as it is.
type UpdateRulesInput struct {
	YellowCardsForSuspension    *int                 `json:"yellow_cards_for_suspension,omitempty" validate:"omitempty,min=1"`
	YellowCardsAccumulation     *bool                `json:"yellow_cards_accumulation,omitempty"`
	ResetYellowsAfterPhaseOrder models.Nullable[int] `json:"reset_yellows_after_phase_order"`
	RedCardMinimumGames         *int                 `json:"red_card_minimum_games,omitempty" validate:"omitempty,min=1"`
	DoubleYellowGames           *int                 `json:"double_yellow_games,omitempty" validate:"omitempty,min=1"`
}

type disciplineService struct {
	ruleRepo     repositories.DisciplineRuleRepository
	leagueRepo   repositories.LeagueRepository
	phaseRepo    repositories.PhaseRepository
	playerRepo   repositories.PlayerRepository
	standingRepo repositories.LeagueStandingRepository
}

func NewDisciplineService(
	ruleRepo repositories.DisciplineRuleRepository,
	leagueRepo repositories.LeagueRepository,
	phaseRepo repositories.PhaseRepository,
	playerRepo repositories.PlayerRepository,
	standingRepo repositories.LeagueStandingRepository,
) DisciplineService {
	return &disciplineService{
		ruleRepo:     ruleRepo,
		leagueRepo:   leagueRepo,
		phaseRepo:    phaseRepo,
		playerRepo:   playerRepo,
		standingRepo: standingRepo,
	}
}

func (o RuleOverrides) apply(rule *models.DisciplineRule) {
	if o.YellowCardsForSuspension != nil {
		rule.YellowCardsForSuspension = *o.YellowCardsForSuspension
	}
	if o.YellowCardsAccumulation != nil {
		rule.YellowCardsAccumulation = *o.YellowCardsAccumulation
	}
	if o.ResetYellowsAfterPhaseOrder != nil {
		rule.ResetYellowsAfterPhaseOrder = o.ResetYellowsAfterPhaseOrder
	}
	if o.RedCardMinimumGames != nil {
		rule.RedCardMinimumGames = *o.RedCardMinimumGames
	}
	if o.DoubleYellowGames != nil {
		rule.DoubleYellowGames = *o.DoubleYellowGames
	}
}

func validateRule(rule *models.DisciplineRule) error {
	if rule.YellowCardsForSuspension < 1 {
		return fmt.Errorf("%w: yellow_cards_for_suspension=%d", ErrInvalidDisciplineValue, rule.YellowCardsForSuspension)
	}
	if rule.RedCardMinimumGames < 1 {
		return fmt.Errorf("%w: red_card_minimum_games=%d", ErrInvalidDisciplineValue, rule.RedCardMinimumGames)
	}
	if rule.DoubleYellowGames < 1 {
		return fmt.Errorf("%w: double_yellow_games=%d", ErrInvalidDisciplineValue, rule.DoubleYellowGames)
	}
	if rule.ResetYellowsAfterPhaseOrder != nil && *rule.ResetYellowsAfterPhaseOrder < 1 {
		return fmt.Errorf("%w: reset_yellows_after_phase_order=%d", ErrInvalidDisciplineValue, *rule.ResetYellowsAfterPhaseOrder)
	}
	return nil
}

func (s *disciplineService) ensureLeague(ctx context.Context, leagueID int) error {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	return nil
}

func (s *disciplineService) CreateRules(ctx context.Context, leagueID int, overrides RuleOverrides) (*models.DisciplineRule, error) {
	rule := models.DefaultDisciplineRule(leagueID)
	overrides.apply(&rule)
	if err := validateRule(&rule); err != nil {
		return nil, err
	}
	if err := s.ensureLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Create(ctx, &rule); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDisciplineRuleExists):
			return nil, ErrDisciplineRuleExists
		case errors.Is(err, repositories.ErrLeagueNotFound):
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrDisciplineRuleSaveFailed, err)
	}
	return &rule, nil
}

func (s *disciplineService) GetRulesByLeagueID(ctx context.Context, leagueID int) (*models.DisciplineRule, error) {
	rule, err := s.ruleRepo.GetByLeagueID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrDisciplineRuleNotFound) {
			return nil, ErrDisciplineRuleNotFound
		}
		return nil, fmt.Errorf("failed to get discipline rules of league %d: %w", leagueID, err)
	}
	return rule, nil
}

func (s *disciplineService) UpdateRules(ctx context.Context, leagueID int, input UpdateRulesInput) (*models.DisciplineRule, error) {
	rule, err := s.GetRulesByLeagueID(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	RuleOverrides{
		YellowCardsForSuspension: input.YellowCardsForSuspension,
		YellowCardsAccumulation:  input.YellowCardsAccumulation,
		RedCardMinimumGames:      input.RedCardMinimumGames,
		DoubleYellowGames:        input.DoubleYellowGames,
	}.apply(rule)
	if input.ResetYellowsAfterPhaseOrder.Set {
		rule.ResetYellowsAfterPhaseOrder = input.ResetYellowsAfterPhaseOrder.Value
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		if errors.Is(err, repositories.ErrDisciplineRuleNotFound) {
			return nil, ErrDisciplineRuleNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrDisciplineRuleSaveFailed, err)
	}
	return rule, nil
}

// UpsertRules writes the defaults merged with overrides, creating the rule
// or replacing the existing one.
func (s *disciplineService) UpsertRules(ctx context.Context, leagueID int, overrides RuleOverrides) (*models.DisciplineRule, error) {
	rule := models.DefaultDisciplineRule(leagueID)
	overrides.apply(&rule)
	if err := validateRule(&rule); err != nil {
		return nil, err
	}
	if err := s.ensureLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Upsert(ctx, &rule); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrDisciplineRuleSaveFailed, err)
	}
	return &rule, nil
}

func (s *disciplineService) DeleteRules(ctx context.Context, leagueID int) error {
	if err := s.ruleRepo.Delete(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrDisciplineRuleNotFound) {
			return ErrDisciplineRuleNotFound
		}
		return fmt.Errorf("failed to delete discipline rules of league %d: %w", leagueID, err)
	}
	return nil
}

// CheckPlayerSuspension attributes the card totals of every team the player
// has belonged to, across all phases of the league, to the player. A league
// without rules never suspends anyone.
func (s *disciplineService) CheckPlayerSuspension(ctx context.Context, playerID, leagueID int) (*models.SuspensionStatus, error) {
	status := &models.SuspensionStatus{PlayerID: playerID, LeagueID: leagueID}

	rule, err := s.ruleRepo.GetByLeagueID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrDisciplineRuleNotFound) {
			return status, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrSuspensionCheckFailed, err)
	}
	status.RulesConfigured = true

	var phases []models.LeaguePhase
	var teamIDs []int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		phases, err = s.phaseRepo.ListByLeague(gctx, nil, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		teamIDs, err = s.playerRepo.ListTeamIDs(gctx, playerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSuspensionCheckFailed, err)
	}

	totals, err := s.standingRepo.SumCards(ctx, teamIDs, phaseIDs(phases))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSuspensionCheckFailed, err)
	}

	status.YellowCards = totals.YellowCards
	status.RedCards = totals.RedCards
	status.WindowPhaseOrders = make([]int, 0, len(phases))
	for _, p := range phases {
		status.WindowPhaseOrders = append(status.WindowPhaseOrders, p.Order)
	}
	status.IsSuspended, status.Reason, status.SuspensionGames = suspensionVerdict(rule, totals)
	return status, nil
}

// suspensionVerdict checks red cards first: they suspend immediately and
// take precedence over accumulated yellows.
func suspensionVerdict(rule *models.DisciplineRule, totals models.CardTotals) (bool, string, int) {
	if totals.RedCards > 0 {
		return true, models.SuspensionReasonRedCard, rule.RedCardMinimumGames
	}
	if rule.YellowCardsAccumulation && totals.YellowCards >= rule.YellowCardsForSuspension {
		return true, models.SuspensionReasonYellowAccumulation, rule.DoubleYellowGames
	}
	return false, "", 0
}

// ResetYellowCardsAfterPhase zeroes yellow cards on every standing row of the
// phases up to and including phaseOrder. The update is unconditional, so a
// repeated call reports the same row count again.
func (s *disciplineService) ResetYellowCardsAfterPhase(ctx context.Context, leagueID, phaseOrder int) (int64, error) {
	if phaseOrder < 1 {
		return 0, fmt.Errorf("%w: phase order must be at least 1", ErrValidationFailed)
	}
	rule, err := s.GetRulesByLeagueID(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	if rule.ResetYellowsAfterPhaseOrder == nil {
		return 0, nil
	}

	phases, err := s.phaseRepo.ListByLeague(ctx, nil, leagueID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrYellowResetFailed, err)
	}
	ids := make([]int, 0, len(phases))
	for _, p := range phases {
		if p.Order <= phaseOrder {
			ids = append(ids, p.ID)
		}
	}

	touched, err := s.standingRepo.ResetYellowCards(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrYellowResetFailed, err)
	}
	return touched, nil
}
