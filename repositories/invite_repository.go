package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrInviteNotFound      = errors.New("invite not found")
	ErrInviteTokenConflict = errors.New("invite token conflict")
)

type InviteRepository interface {
	// Create fills ID and CreatedAt. ExpiresAt and Token are set by the caller.
	Create(ctx context.Context, invite *models.LeagueInvite) error
	GetByToken(ctx context.Context, token string) (*models.LeagueInvite, error)
	ListByLeague(ctx context.Context, leagueID int) ([]models.LeagueInvite, error)
	// CountActive counts invites that are neither accepted nor expired at now.
	CountActive(ctx context.Context, leagueID int, now time.Time) (int, error)
	MarkAccepted(ctx context.Context, id int, at time.Time) error
	Delete(ctx context.Context, id int) error
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

const inviteColumns = `id, league_id, token, email, expires_at, accepted_at, created_at`

func scanInvite(row rowScanner) (*models.LeagueInvite, error) {
	var inv models.LeagueInvite
	var email sql.NullString
	var acceptedAt sql.NullTime
	err := row.Scan(&inv.ID, &inv.LeagueID, &inv.Token, &email, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		inv.Email = &email.String
	}
	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	return &inv, nil
}

func (r *postgresInviteRepository) Create(ctx context.Context, invite *models.LeagueInvite) error {
	query := `
		INSERT INTO league_invites (league_id, token, email, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		invite.LeagueID, invite.Token, invite.Email, invite.ExpiresAt,
	).Scan(&invite.ID, &invite.CreatedAt)
	if err != nil {
		switch {
		case pqErrorIs(err, pqUniqueViolation, "league_invites_token_key"):
			return ErrInviteTokenConflict
		case pqErrorIs(err, pqForeignKeyViolation, ""):
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

func (r *postgresInviteRepository) GetByToken(ctx context.Context, token string) (*models.LeagueInvite, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM league_invites WHERE token = $1`, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *postgresInviteRepository) ListByLeague(ctx context.Context, leagueID int) ([]models.LeagueInvite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM league_invites WHERE league_id = $1 ORDER BY created_at DESC, id DESC`, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]models.LeagueInvite, 0)
	for rows.Next() {
		inv, scanErr := scanInvite(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

func (r *postgresInviteRepository) CountActive(ctx context.Context, leagueID int, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM league_invites
		WHERE league_id = $1 AND accepted_at IS NULL AND expires_at > $2`, leagueID, now).Scan(&count)
	return count, err
}

func (r *postgresInviteRepository) MarkAccepted(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE league_invites SET accepted_at = $1 WHERE id = $2 AND accepted_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}

func (r *postgresInviteRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM league_invites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}
