package models

import "time"

// LeagueInvite invites a team to join a league.
type LeagueInvite struct {
	ID         int        `json:"id" db:"id"`
	LeagueID   int        `json:"league_id" db:"league_id"`
	Token      string     `json:"-" db:"token"`
	Email      *string    `json:"email,omitempty" db:"email"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

func (i *LeagueInvite) IsActive(now time.Time) bool {
	return i.AcceptedAt == nil && now.Before(i.ExpiresAt)
}
