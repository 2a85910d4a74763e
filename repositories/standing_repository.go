package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrStandingNotFound    = errors.New("standing not found")
	ErrStandingTeamInvalid = errors.New("standing references a missing phase, team or group")
)

// standingsLockNamespace is the first key of the advisory locks taken on
// league_standings; the phase ID is the second.
const standingsLockNamespace = 7301

type LeagueStandingRepository interface {
	// BatchCreate inserts the rows that do not exist yet and returns only
	// those; rows already present for (phase, team, group) are skipped.
	BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.LeagueStanding) ([]*models.LeagueStanding, error)
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueStanding, error)
	// FindRow returns the row of a team in a phase. A nil groupID matches the
	// team's row in any group.
	FindRow(ctx context.Context, exec SQLExecutor, phaseID, teamID int, groupID *int) (*models.LeagueStanding, error)
	// ListByPhase returns rows in display order. A nil groupID lists every
	// group of the phase.
	ListByPhase(ctx context.Context, exec SQLExecutor, phaseID int, groupID *int) ([]*models.LeagueStanding, error)
	ApplyDelta(ctx context.Context, exec SQLExecutor, id int, delta models.StandingDelta) (*models.LeagueStanding, error)
	UpdatePositions(ctx context.Context, exec SQLExecutor, positions map[int]int) error
	Update(ctx context.Context, exec SQLExecutor, standing *models.LeagueStanding) error
	DeleteByPhase(ctx context.Context, phaseID int) (int64, error)
	ResetYellowCards(ctx context.Context, phaseIDs []int) (int64, error)
	SumCards(ctx context.Context, teamIDs, phaseIDs []int) (models.CardTotals, error)
	// LockPhase blocks until no other transaction holds the phase lock.
	// The lock is released when exec's transaction ends.
	LockPhase(ctx context.Context, exec SQLExecutor, phaseID int) error
}

type postgresLeagueStandingRepository struct {
	db *sql.DB
}

func NewPostgresLeagueStandingRepository(db *sql.DB) LeagueStandingRepository {
	return &postgresLeagueStandingRepository{db: db}
}

const standingColumns = `id, phase_id, team_id, group_id, position, played, wins, draws, losses,
	goals_for, goals_against, goal_difference, points, wins_home, wins_away, goals_home, goals_away,
	yellow_cards, red_cards, updated_at`

const standingDisplayOrder = ` ORDER BY points DESC, goal_difference DESC, goals_for DESC, team_id ASC`

func scanStanding(row rowScanner) (*models.LeagueStanding, error) {
	var s models.LeagueStanding
	var groupID, position sql.NullInt64
	err := row.Scan(
		&s.ID, &s.PhaseID, &s.TeamID, &groupID, &position, &s.Played, &s.Wins, &s.Draws, &s.Losses,
		&s.GoalsFor, &s.GoalsAgainst, &s.GoalDifference, &s.Points, &s.WinsHome, &s.WinsAway, &s.GoalsHome, &s.GoalsAway,
		&s.YellowCards, &s.RedCards, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.GroupID = nullIntPtr(groupID)
	s.Position = nullIntPtr(position)
	return &s, nil
}

func (r *postgresLeagueStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.LeagueStanding) ([]*models.LeagueStanding, error) {
	executor := executorOr(exec, r.db)
	created := make([]*models.LeagueStanding, 0, len(standings))
	query := `
		INSERT INTO league_standings (phase_id, team_id, group_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING ` + standingColumns

	for _, s := range standings {
		row, err := scanStanding(executor.QueryRowContext(ctx, query, s.PhaseID, s.TeamID, s.GroupID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if pqErrorIs(err, pqForeignKeyViolation, "") {
				return nil, fmt.Errorf("%w: team %d", ErrStandingTeamInvalid, s.TeamID)
			}
			return nil, fmt.Errorf("failed to create standing for team %d: %w", s.TeamID, err)
		}
		created = append(created, row)
	}
	return created, nil
}

func (r *postgresLeagueStandingRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueStanding, error) {
	executor := executorOr(exec, r.db)
	s, err := scanStanding(executor.QueryRowContext(ctx, `SELECT `+standingColumns+` FROM league_standings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresLeagueStandingRepository) FindRow(ctx context.Context, exec SQLExecutor, phaseID, teamID int, groupID *int) (*models.LeagueStanding, error) {
	executor := executorOr(exec, r.db)
	query := `SELECT ` + standingColumns + ` FROM league_standings WHERE phase_id = $1 AND team_id = $2`
	args := []interface{}{phaseID, teamID}
	if groupID != nil {
		query += ` AND group_id = $3`
		args = append(args, *groupID)
	}
	query += ` ORDER BY id LIMIT 1`

	s, err := scanStanding(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresLeagueStandingRepository) ListByPhase(ctx context.Context, exec SQLExecutor, phaseID int, groupID *int) ([]*models.LeagueStanding, error) {
	executor := executorOr(exec, r.db)
	query := `SELECT ` + standingColumns + ` FROM league_standings WHERE phase_id = $1`
	args := []interface{}{phaseID}
	if groupID != nil {
		query += ` AND group_id = $2`
		args = append(args, *groupID)
	}
	query += standingDisplayOrder

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings of phase %d: %w", phaseID, err)
	}
	defer rows.Close()

	standings := make([]*models.LeagueStanding, 0)
	for rows.Next() {
		s, scanErr := scanStanding(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func (r *postgresLeagueStandingRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, id int, d models.StandingDelta) (*models.LeagueStanding, error) {
	executor := executorOr(exec, r.db)
	query := `
		UPDATE league_standings SET
			played = played + $1,
			wins = wins + $2,
			draws = draws + $3,
			losses = losses + $4,
			goals_for = goals_for + $5,
			goals_against = goals_against + $6,
			goal_difference = goal_difference + $7,
			points = points + $8,
			wins_home = wins_home + $9,
			wins_away = wins_away + $10,
			goals_home = goals_home + $11,
			goals_away = goals_away + $12,
			yellow_cards = yellow_cards + $13,
			red_cards = red_cards + $14,
			updated_at = NOW()
		WHERE id = $15
		RETURNING ` + standingColumns
	s, err := scanStanding(executor.QueryRowContext(ctx, query,
		d.Played, d.Wins, d.Draws, d.Losses, d.GoalsFor, d.GoalsAgainst, d.GoalDifference, d.Points,
		d.WinsHome, d.WinsAway, d.GoalsHome, d.GoalsAway, d.YellowCards, d.RedCards, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, fmt.Errorf("failed to apply delta to standing %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresLeagueStandingRepository) UpdatePositions(ctx context.Context, exec SQLExecutor, positions map[int]int) error {
	if len(positions) == 0 {
		return nil
	}
	executor := executorOr(exec, r.db)
	ids := make([]int, 0, len(positions))
	values := make([]int, 0, len(positions))
	for id, position := range positions {
		ids = append(ids, id)
		values = append(values, position)
	}

	_, err := executor.ExecContext(ctx, `
		UPDATE league_standings AS s
		SET position = v.position, updated_at = NOW()
		FROM unnest($1::int[], $2::int[]) AS v(id, position)
		WHERE s.id = v.id`, int64s(ids), int64s(values))
	if err != nil {
		return fmt.Errorf("failed to update standing positions: %w", err)
	}
	return nil
}

func (r *postgresLeagueStandingRepository) Update(ctx context.Context, exec SQLExecutor, s *models.LeagueStanding) error {
	executor := executorOr(exec, r.db)
	query := `
		UPDATE league_standings SET
			position = $1, played = $2, wins = $3, draws = $4, losses = $5,
			goals_for = $6, goals_against = $7, goal_difference = $8, points = $9,
			wins_home = $10, wins_away = $11, goals_home = $12, goals_away = $13,
			yellow_cards = $14, red_cards = $15, updated_at = NOW()
		WHERE id = $16
		RETURNING updated_at`
	err := executor.QueryRowContext(ctx, query,
		s.Position, s.Played, s.Wins, s.Draws, s.Losses,
		s.GoalsFor, s.GoalsAgainst, s.GoalDifference, s.Points,
		s.WinsHome, s.WinsAway, s.GoalsHome, s.GoalsAway,
		s.YellowCards, s.RedCards, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStandingNotFound
		}
		return fmt.Errorf("failed to update standing %d: %w", s.ID, err)
	}
	return nil
}

func (r *postgresLeagueStandingRepository) DeleteByPhase(ctx context.Context, phaseID int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM league_standings WHERE phase_id = $1`, phaseID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresLeagueStandingRepository) ResetYellowCards(ctx context.Context, phaseIDs []int) (int64, error) {
	if len(phaseIDs) == 0 {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE league_standings SET yellow_cards = 0, updated_at = NOW() WHERE phase_id = ANY($1)`,
		int64s(phaseIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to reset yellow cards: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresLeagueStandingRepository) SumCards(ctx context.Context, teamIDs, phaseIDs []int) (models.CardTotals, error) {
	var totals models.CardTotals
	if len(teamIDs) == 0 || len(phaseIDs) == 0 {
		return totals, nil
	}
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(yellow_cards), 0), COALESCE(SUM(red_cards), 0)
		FROM league_standings
		WHERE team_id = ANY($1) AND phase_id = ANY($2)`,
		int64s(teamIDs), int64s(phaseIDs),
	).Scan(&totals.YellowCards, &totals.RedCards)
	if err != nil {
		return models.CardTotals{}, fmt.Errorf("failed to sum cards: %w", err)
	}
	return totals, nil
}

func (r *postgresLeagueStandingRepository) LockPhase(ctx context.Context, exec SQLExecutor, phaseID int) error {
	executor := executorOr(exec, r.db)
	if _, err := executor.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1::int, $2::int)`, standingsLockNamespace, phaseID); err != nil {
		return fmt.Errorf("failed to lock standings of phase %d: %w", phaseID, err)
	}
	return nil
}
