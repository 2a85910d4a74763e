package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrDisciplineRuleNotFound = errors.New("discipline rule not found")
	ErrDisciplineRuleExists   = errors.New("discipline rule already exists for league")
)

type DisciplineRuleRepository interface {
	Create(ctx context.Context, rule *models.DisciplineRule) error
	GetByLeagueID(ctx context.Context, leagueID int) (*models.DisciplineRule, error)
	Update(ctx context.Context, rule *models.DisciplineRule) error
	// Upsert creates the league's rule or overwrites the existing one.
	Upsert(ctx context.Context, rule *models.DisciplineRule) error
	Delete(ctx context.Context, leagueID int) error
}

type postgresDisciplineRuleRepository struct {
	db *sql.DB
}

func NewPostgresDisciplineRuleRepository(db *sql.DB) DisciplineRuleRepository {
	return &postgresDisciplineRuleRepository{db: db}
}

const disciplineRuleColumns = `id, league_id, yellow_cards_for_suspension, yellow_cards_accumulation,
	reset_yellows_after_phase_order, red_card_minimum_games, double_yellow_games, created_at, updated_at`

func scanDisciplineRule(row rowScanner) (*models.DisciplineRule, error) {
	var rule models.DisciplineRule
	var resetAfter sql.NullInt64
	err := row.Scan(
		&rule.ID, &rule.LeagueID, &rule.YellowCardsForSuspension, &rule.YellowCardsAccumulation,
		&resetAfter, &rule.RedCardMinimumGames, &rule.DoubleYellowGames, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.ResetYellowsAfterPhaseOrder = nullIntPtr(resetAfter)
	return &rule, nil
}

func (r *postgresDisciplineRuleRepository) Create(ctx context.Context, rule *models.DisciplineRule) error {
	query := `
		INSERT INTO discipline_rules (league_id, yellow_cards_for_suspension, yellow_cards_accumulation,
			reset_yellows_after_phase_order, red_card_minimum_games, double_yellow_games)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rule.LeagueID, rule.YellowCardsForSuspension, rule.YellowCardsAccumulation,
		rule.ResetYellowsAfterPhaseOrder, rule.RedCardMinimumGames, rule.DoubleYellowGames,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		switch {
		case pqErrorIs(err, pqUniqueViolation, "discipline_rules_league_id_key"):
			return ErrDisciplineRuleExists
		case pqErrorIs(err, pqForeignKeyViolation, ""):
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to insert discipline rule: %w", err)
	}
	return nil
}

func (r *postgresDisciplineRuleRepository) GetByLeagueID(ctx context.Context, leagueID int) (*models.DisciplineRule, error) {
	rule, err := scanDisciplineRule(r.db.QueryRowContext(ctx,
		`SELECT `+disciplineRuleColumns+` FROM discipline_rules WHERE league_id = $1`, leagueID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisciplineRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

func (r *postgresDisciplineRuleRepository) Update(ctx context.Context, rule *models.DisciplineRule) error {
	query := `
		UPDATE discipline_rules SET
			yellow_cards_for_suspension = $1,
			yellow_cards_accumulation = $2,
			reset_yellows_after_phase_order = $3,
			red_card_minimum_games = $4,
			double_yellow_games = $5,
			updated_at = NOW()
		WHERE league_id = $6
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rule.YellowCardsForSuspension, rule.YellowCardsAccumulation, rule.ResetYellowsAfterPhaseOrder,
		rule.RedCardMinimumGames, rule.DoubleYellowGames, rule.LeagueID,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDisciplineRuleNotFound
		}
		return fmt.Errorf("failed to update discipline rule: %w", err)
	}
	return nil
}

func (r *postgresDisciplineRuleRepository) Upsert(ctx context.Context, rule *models.DisciplineRule) error {
	query := `
		INSERT INTO discipline_rules (league_id, yellow_cards_for_suspension, yellow_cards_accumulation,
			reset_yellows_after_phase_order, red_card_minimum_games, double_yellow_games)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT discipline_rules_league_id_key DO UPDATE SET
			yellow_cards_for_suspension = EXCLUDED.yellow_cards_for_suspension,
			yellow_cards_accumulation = EXCLUDED.yellow_cards_accumulation,
			reset_yellows_after_phase_order = EXCLUDED.reset_yellows_after_phase_order,
			red_card_minimum_games = EXCLUDED.red_card_minimum_games,
			double_yellow_games = EXCLUDED.double_yellow_games,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rule.LeagueID, rule.YellowCardsForSuspension, rule.YellowCardsAccumulation,
		rule.ResetYellowsAfterPhaseOrder, rule.RedCardMinimumGames, rule.DoubleYellowGames,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if pqErrorIs(err, pqForeignKeyViolation, "") {
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to upsert discipline rule: %w", err)
	}
	return nil
}

func (r *postgresDisciplineRuleRepository) Delete(ctx context.Context, leagueID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM discipline_rules WHERE league_id = $1`, leagueID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDisciplineRuleNotFound)
}
