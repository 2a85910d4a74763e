package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// PlayerRepository reads team membership history. A player keeps counting
// towards a team's cards after leaving it, so memberships are never deleted.
type PlayerRepository interface {
	AddToTeam(ctx context.Context, playerID, teamID int) error
	ListTeamIDs(ctx context.Context, playerID int) ([]int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) AddToTeam(ctx context.Context, playerID, teamID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO team_players (team_id, player_id) VALUES ($1, $2)
		ON CONFLICT (team_id, player_id) DO UPDATE SET left_at = NULL`, teamID, playerID)
	if err != nil {
		if pqErrorIs(err, pqForeignKeyViolation, "") {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

// ListTeamIDs returns every team the player has belonged to, current or past.
func (r *postgresPlayerRepository) ListTeamIDs(ctx context.Context, playerID int) ([]int, error) {
	var ids pq.Int64Array
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(array_agg(team_id ORDER BY team_id), '{}') FROM team_players WHERE player_id = $1`,
		playerID).Scan(&ids)
	if err != nil {
		return nil, err
	}
	return intsFromInt64(ids), nil
}
