package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrPhaseNotFound      = errors.New("phase not found")
	ErrPhaseOrderConflict = errors.New("league already has a phase with this order")
)

type PhaseRepository interface {
	Create(ctx context.Context, exec SQLExecutor, phase *models.LeaguePhase) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.LeaguePhase, error)
	// ListByLeague returns the phases of a league ordered by phase order.
	ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]models.LeaguePhase, error)
	UpdateStatus(ctx context.Context, id int, status models.PhaseStatus) error
}

type postgresPhaseRepository struct {
	db *sql.DB
}

func NewPostgresPhaseRepository(db *sql.DB) PhaseRepository {
	return &postgresPhaseRepository{db: db}
}

const leaguePhaseColumns = `id, league_id, name, phase_order, type, status, start_date, end_date,
	has_home_away, has_extra_time, has_penalties, has_away_goal, phase_config_id`

func scanLeaguePhase(row rowScanner) (*models.LeaguePhase, error) {
	var p models.LeaguePhase
	var startDate, endDate sql.NullTime
	var phaseConfigID sql.NullInt64
	err := row.Scan(
		&p.ID, &p.LeagueID, &p.Name, &p.Order, &p.Type, &p.Status, &startDate, &endDate,
		&p.HasHomeAway, &p.HasExtraTime, &p.HasPenalties, &p.HasAwayGoal, &phaseConfigID,
	)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if endDate.Valid {
		p.EndDate = &endDate.Time
	}
	p.PhaseConfigID = nullIntPtr(phaseConfigID)
	return &p, nil
}

func (r *postgresPhaseRepository) Create(ctx context.Context, exec SQLExecutor, phase *models.LeaguePhase) error {
	executor := executorOr(exec, r.db)
	if phase.Status == "" {
		phase.Status = models.PhaseStatusNotStarted
	}
	query := `
		INSERT INTO league_phases (league_id, name, phase_order, type, status, start_date, end_date,
			has_home_away, has_extra_time, has_penalties, has_away_goal, phase_config_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		phase.LeagueID, phase.Name, phase.Order, phase.Type, phase.Status, phase.StartDate, phase.EndDate,
		phase.HasHomeAway, phase.HasExtraTime, phase.HasPenalties, phase.HasAwayGoal, phase.PhaseConfigID,
	).Scan(&phase.ID)
	if err != nil {
		switch {
		case pqErrorIs(err, pqUniqueViolation, "league_phases_league_order_key"):
			return ErrPhaseOrderConflict
		case pqErrorIs(err, pqForeignKeyViolation, "league_phases_league_id_fkey"):
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to insert phase %q: %w", phase.Name, err)
	}
	return nil
}

func (r *postgresPhaseRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.LeaguePhase, error) {
	executor := executorOr(exec, r.db)
	phase, err := scanLeaguePhase(executor.QueryRowContext(ctx,
		`SELECT `+leaguePhaseColumns+` FROM league_phases WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	return phase, nil
}

func (r *postgresPhaseRepository) ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]models.LeaguePhase, error) {
	executor := executorOr(exec, r.db)
	rows, err := executor.QueryContext(ctx,
		`SELECT `+leaguePhaseColumns+` FROM league_phases WHERE league_id = $1 ORDER BY phase_order ASC`, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phases := make([]models.LeaguePhase, 0)
	for rows.Next() {
		p, scanErr := scanLeaguePhase(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		phases = append(phases, *p)
	}
	return phases, rows.Err()
}

func (r *postgresPhaseRepository) UpdateStatus(ctx context.Context, id int, status models.PhaseStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE league_phases SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}
