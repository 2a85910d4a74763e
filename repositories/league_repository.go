package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrLeagueNotFound      = errors.New("league not found")
	ErrLeagueSlugConflict  = errors.New("league slug conflict")
	ErrLeagueTeamDuplicate = errors.New("team already linked to league")
	ErrLeagueTeamInvalid   = errors.New("league or team does not exist")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error)
	List(ctx context.Context) ([]models.League, error)
	SetFormat(ctx context.Context, exec SQLExecutor, leagueID, formatID int) error
	LinkTeam(ctx context.Context, leagueID, teamID int) error
	ListTeamIDs(ctx context.Context, exec SQLExecutor, leagueID int) ([]int, error)
	CountTeams(ctx context.Context, leagueID int) (int, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

const leagueColumns = `id, name, slug, is_public, is_active, start_date, end_date, format_id, created_at`

func scanLeague(row rowScanner) (*models.League, error) {
	var l models.League
	var startDate, endDate sql.NullTime
	var formatID sql.NullInt64
	err := row.Scan(&l.ID, &l.Name, &l.Slug, &l.IsPublic, &l.IsActive, &startDate, &endDate, &formatID, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		l.StartDate = &startDate.Time
	}
	if endDate.Valid {
		l.EndDate = &endDate.Time
	}
	l.FormatID = nullIntPtr(formatID)
	return &l, nil
}

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (name, slug, is_public, is_active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		league.Name, league.Slug, league.IsPublic, league.IsActive, league.StartDate, league.EndDate,
	).Scan(&league.ID, &league.CreatedAt)
	if err != nil {
		if pqErrorIs(err, pqUniqueViolation, "leagues_slug_key") {
			return ErrLeagueSlugConflict
		}
		return fmt.Errorf("failed to insert league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error) {
	executor := executorOr(exec, r.db)
	league, err := scanLeague(executor.QueryRowContext(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]models.League, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+leagueColumns+` FROM leagues ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := make([]models.League, 0)
	for rows.Next() {
		l, scanErr := scanLeague(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

func (r *postgresLeagueRepository) SetFormat(ctx context.Context, exec SQLExecutor, leagueID, formatID int) error {
	executor := executorOr(exec, r.db)
	result, err := executor.ExecContext(ctx,
		`UPDATE leagues SET format_id = $1 WHERE id = $2`, formatID, leagueID)
	if err != nil {
		return fmt.Errorf("failed to set format of league %d: %w", leagueID, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) LinkTeam(ctx context.Context, leagueID, teamID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO league_teams (league_id, team_id) VALUES ($1, $2)`, leagueID, teamID)
	if err != nil {
		switch {
		case pqErrorIs(err, pqUniqueViolation, ""):
			return ErrLeagueTeamDuplicate
		case pqErrorIs(err, pqForeignKeyViolation, ""):
			return ErrLeagueTeamInvalid
		}
		return err
	}
	return nil
}

func (r *postgresLeagueRepository) ListTeamIDs(ctx context.Context, exec SQLExecutor, leagueID int) ([]int, error) {
	executor := executorOr(exec, r.db)
	var ids []int64
	rows, err := executor.QueryContext(ctx,
		`SELECT team_id FROM league_teams WHERE league_id = $1 ORDER BY team_id`, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return intsFromInt64(ids), nil
}

func (r *postgresLeagueRepository) CountTeams(ctx context.Context, leagueID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM league_teams WHERE league_id = $1`, leagueID).Scan(&count)
	return count, err
}
