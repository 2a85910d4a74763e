package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupNameConflict = errors.New("phase already has a group with this name")
)

type GroupRepository interface {
	// Create inserts the group and its member teams.
	Create(ctx context.Context, exec SQLExecutor, group *models.LeagueGroup) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueGroup, error)
	ListByPhase(ctx context.Context, phaseID int) ([]models.LeagueGroup, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.LeagueGroup) error {
	executor := executorOr(exec, r.db)
	err := executor.QueryRowContext(ctx,
		`INSERT INTO league_groups (phase_id, name) VALUES ($1, $2) RETURNING id`,
		group.PhaseID, group.Name,
	).Scan(&group.ID)
	if err != nil {
		switch {
		case pqErrorIs(err, pqUniqueViolation, "league_groups_phase_name_key"):
			return ErrGroupNameConflict
		case pqErrorIs(err, pqForeignKeyViolation, ""):
			return ErrPhaseNotFound
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if len(group.TeamIDs) == 0 {
		return nil
	}
	_, err = executor.ExecContext(ctx, `
		INSERT INTO league_group_teams (group_id, team_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT DO NOTHING`, group.ID, int64s(group.TeamIDs))
	if err != nil {
		if pqErrorIs(err, pqForeignKeyViolation, "") {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to insert members of group %d: %w", group.ID, err)
	}
	return nil
}

const groupSelect = `
	SELECT g.id, g.phase_id, g.name,
		COALESCE(array_agg(gt.team_id ORDER BY gt.team_id) FILTER (WHERE gt.team_id IS NOT NULL), '{}')
	FROM league_groups g
	LEFT JOIN league_group_teams gt ON gt.group_id = g.id`

func scanGroup(row rowScanner) (*models.LeagueGroup, error) {
	var g models.LeagueGroup
	var teamIDs pq.Int64Array
	if err := row.Scan(&g.ID, &g.PhaseID, &g.Name, &teamIDs); err != nil {
		return nil, err
	}
	g.TeamIDs = intsFromInt64(teamIDs)
	return &g, nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueGroup, error) {
	executor := executorOr(exec, r.db)
	group, err := scanGroup(executor.QueryRowContext(ctx, groupSelect+` WHERE g.id = $1 GROUP BY g.id`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (r *postgresGroupRepository) ListByPhase(ctx context.Context, phaseID int) ([]models.LeagueGroup, error) {
	rows, err := r.db.QueryContext(ctx, groupSelect+` WHERE g.phase_id = $1 GROUP BY g.id ORDER BY g.name ASC`, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.LeagueGroup, 0)
	for rows.Next() {
		g, scanErr := scanGroup(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}
