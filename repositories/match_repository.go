package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchAlreadyApplied   = errors.New("match result already applied to standings")
	ErrMatchReferenceInvalid = errors.New("match references a missing league, phase, group or team")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// ClaimForStandings records the final score of a match and marks it as
	// applied. It returns ErrMatchAlreadyApplied when the match was claimed
	// before.
	ClaimForStandings(ctx context.Context, exec SQLExecutor, id, homeScore, awayScore int) error
	ListFinishedByPhase(ctx context.Context, exec SQLExecutor, phaseID int) ([]models.Match, error)
	CountByLeague(ctx context.Context, leagueID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, league_id, phase_id, group_id, home_team_id, away_team_id,
	home_score, away_score, status, standings_applied, match_time`

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var groupID, homeScore, awayScore sql.NullInt64
	var matchTime sql.NullTime
	err := row.Scan(
		&m.ID, &m.LeagueID, &m.PhaseID, &groupID, &m.HomeTeamID, &m.AwayTeamID,
		&homeScore, &awayScore, &m.Status, &m.StandingsApplied, &matchTime,
	)
	if err != nil {
		return nil, err
	}
	m.GroupID = nullIntPtr(groupID)
	m.HomeScore = nullIntPtr(homeScore)
	m.AwayScore = nullIntPtr(awayScore)
	if matchTime.Valid {
		m.MatchTime = &matchTime.Time
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	if m.Status == "" {
		m.Status = models.MatchStatusScheduled
	}
	query := `
		INSERT INTO matches (league_id, phase_id, group_id, home_team_id, away_team_id, home_score, away_score, status, match_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		m.LeagueID, m.PhaseID, m.GroupID, m.HomeTeamID, m.AwayTeamID, m.HomeScore, m.AwayScore, m.Status, m.MatchTime,
	).Scan(&m.ID)
	if err != nil {
		if pqErrorIs(err, pqForeignKeyViolation, "") {
			return ErrMatchReferenceInvalid
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := executorOr(exec, r.db)
	m, err := scanMatch(executor.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ClaimForStandings(ctx context.Context, exec SQLExecutor, id, homeScore, awayScore int) error {
	executor := executorOr(exec, r.db)
	result, err := executor.ExecContext(ctx, `
		UPDATE matches
		SET standings_applied = TRUE, home_score = $1, away_score = $2, status = $3
		WHERE id = $4 AND standings_applied = FALSE`,
		homeScore, awayScore, models.MatchStatusFinished, id)
	if err != nil {
		return fmt.Errorf("failed to claim match %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 1 {
		return nil
	}

	// zero rows: either the match is missing or it was applied already
	if _, err := r.GetByID(ctx, executor, id); err != nil {
		return err
	}
	return ErrMatchAlreadyApplied
}

func (r *postgresMatchRepository) ListFinishedByPhase(ctx context.Context, exec SQLExecutor, phaseID int) ([]models.Match, error) {
	executor := executorOr(exec, r.db)
	rows, err := executor.QueryContext(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE phase_id = $1 AND status = $2 AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY id`, phaseID, models.MatchStatusFinished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) CountByLeague(ctx context.Context, leagueID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE league_id = $1`, leagueID).Scan(&count)
	return count, err
}
