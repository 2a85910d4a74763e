package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/itbasis/go-clock"
)

const (
	inviteTokenLength     = 16 // bytes, 32 hex characters
	defaultInviteLifetime = 7 * 24 * time.Hour
	maxTokenAttempts      = 3
)

var (
	ErrInviteCreationFailed  = errors.New("failed to create invite")
	ErrInviteAcceptFailed    = errors.New("failed to accept invite")
	ErrInviteTokenGeneration = errors.New("failed to generate unique invite token")
)

type InviteService interface {
	CreateInvite(ctx context.Context, leagueID int, input CreateInviteInput) (*CreatedInvite, error)
	ListLeagueInvites(ctx context.Context, leagueID int) ([]models.LeagueInvite, error)
	GetInviteByToken(ctx context.Context, token string) (*models.LeagueInvite, error)
	// AcceptInvite links the team to the invite's league and consumes the invite.
	// userID is the account that redeemed the token.
	AcceptInvite(ctx context.Context, token string, teamID, userID int) (*models.LeagueInvite, error)
	DeleteInvite(ctx context.Context, inviteID int) error
}

type CreateInviteInput struct {
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	LifetimeDays *int    `json:"lifetime_days,omitempty" validate:"omitempty,min=1,max=90"`
}

// CreatedInvite exposes the token once, at creation time.
type CreatedInvite struct {
	models.LeagueInvite
	Token string `json:"token"`
}

type inviteService struct {
	inviteRepo repositories.InviteRepository
	leagueRepo repositories.LeagueRepository
	clock      clock.Clock
	logger     *slog.Logger
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	leagueRepo repositories.LeagueRepository,
	clock clock.Clock,
	logger *slog.Logger,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		leagueRepo: leagueRepo,
		clock:      clock,
		logger:     logger,
	}
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *inviteService) CreateInvite(ctx context.Context, leagueID int, input CreateInviteInput) (*CreatedInvite, error) {
	lifetime := defaultInviteLifetime
	if input.LifetimeDays != nil {
		if *input.LifetimeDays < 1 {
			return nil, ErrInvalidInviteTTL
		}
		lifetime = time.Duration(*input.LifetimeDays) * 24 * time.Hour
	}
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrInviteCreationFailed, err)
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := generateSecureToken(inviteTokenLength)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInviteTokenGeneration, err)
		}

		invite := &models.LeagueInvite{
			LeagueID:  leagueID,
			Token:     token,
			Email:     input.Email,
			ExpiresAt: s.clock.Now().Add(lifetime),
		}
		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			return &CreatedInvite{LeagueInvite: *invite, Token: invite.Token}, nil
		}
		if !errors.Is(err, repositories.ErrInviteTokenConflict) {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return nil, ErrLeagueNotFound
			}
			return nil, fmt.Errorf("%w: %w", ErrInviteCreationFailed, err)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrInviteTokenGeneration, maxTokenAttempts)
}

func (s *inviteService) ListLeagueInvites(ctx context.Context, leagueID int) ([]models.LeagueInvite, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	invites, err := s.inviteRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites of league %d: %w", leagueID, err)
	}
	return invites, nil
}

func (s *inviteService) GetInviteByToken(ctx context.Context, token string) (*models.LeagueInvite, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite by token: %w", err)
	}
	if invite.AcceptedAt != nil {
		return nil, ErrInviteAlreadyAccepted
	}
	if !invite.IsActive(s.clock.Now()) {
		return nil, ErrInviteExpired
	}
	return invite, nil
}

func (s *inviteService) AcceptInvite(ctx context.Context, token string, teamID, userID int) (*models.LeagueInvite, error) {
	invite, err := s.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.leagueRepo.LinkTeam(ctx, invite.LeagueID, teamID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueTeamDuplicate):
			return nil, ErrTeamAlreadyInLeague
		case errors.Is(err, repositories.ErrLeagueTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrInviteAcceptFailed, err)
	}

	now := s.clock.Now()
	if err := s.inviteRepo.MarkAccepted(ctx, invite.ID, now); err != nil {
		// the team is linked already; a stale invite only inflates the active count
		s.logger.WarnContext(ctx, "Failed to mark invite accepted",
			slog.Int("invite_id", invite.ID), slog.Int("team_id", teamID), slog.Any("error", err))
		return invite, nil
	}
	invite.AcceptedAt = &now

	s.logger.InfoContext(ctx, "Invite accepted",
		slog.Int("invite_id", invite.ID), slog.Int("league_id", invite.LeagueID),
		slog.Int("team_id", teamID), slog.Int("user_id", userID))
	return invite, nil
}

func (s *inviteService) DeleteInvite(ctx context.Context, inviteID int) error {
	if err := s.inviteRepo.Delete(ctx, inviteID); err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to delete invite %d: %w", inviteID, err)
	}
	return nil
}
