package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	league := env.createLeague(t, "invites")
	email := "coach@example.com"

	invite, err := env.invites.CreateInvite(ctx, league.ID, CreateInviteInput{Email: &email})
	require.NoError(t, err)
	assert.Len(t, invite.Token, 2*inviteTokenLength)
	assert.Equal(t, invite.Token, invite.LeagueInvite.Token)
	assert.Equal(t, env.clock.Now().Add(defaultInviteLifetime), invite.ExpiresAt)
	assert.Equal(t, &email, invite.Email)

	short, err := env.invites.CreateInvite(ctx, league.ID, CreateInviteInput{LifetimeDays: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now().Add(48*time.Hour), short.ExpiresAt)
	assert.NotEqual(t, invite.Token, short.Token)

	invites, err := env.invites.ListLeagueInvites(ctx, league.ID)
	require.NoError(t, err)
	assert.Len(t, invites, 2)
}

func TestCreateInvite_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.invites.CreateInvite(ctx, 404, CreateInviteInput{})
	assert.ErrorIs(t, err, ErrLeagueNotFound)

	league := env.createLeague(t, "bad-ttl")
	_, err = env.invites.CreateInvite(ctx, league.ID, CreateInviteInput{LifetimeDays: intPtr(0)})
	assert.ErrorIs(t, err, ErrInvalidInviteTTL)
}

func TestAcceptInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	league := env.createLeague(t, "accept")
	team, err := env.leagues.CreateTeam(ctx, CreateTeamInput{Name: "Fortaleza"})
	require.NoError(t, err)

	invite, err := env.invites.CreateInvite(ctx, league.ID, CreateInviteInput{})
	require.NoError(t, err)

	accepted, err := env.invites.AcceptInvite(ctx, invite.Token, team.ID, 77)
	require.NoError(t, err)
	require.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, env.clock.Now(), *accepted.AcceptedAt)

	teams, err := env.leagues.ListTeams(ctx, league.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, team.ID, teams[0].ID)

	_, err = env.invites.AcceptInvite(ctx, invite.Token, team.ID, 77)
	assert.ErrorIs(t, err, ErrInviteAlreadyAccepted)
}

func TestAcceptInvite_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	league := env.createLeague(t, "expired")
	team, err := env.leagues.CreateTeam(ctx, CreateTeamInput{Name: "Ceara"})
	require.NoError(t, err)

	invite, err := env.invites.CreateInvite(ctx, league.ID, CreateInviteInput{LifetimeDays: intPtr(1)})
	require.NoError(t, err)
	env.clock.Add(25 * time.Hour)

	_, err = env.invites.AcceptInvite(ctx, invite.Token, team.ID, 77)
	assert.ErrorIs(t, err, ErrInviteExpired)
	assert.ErrorIs(t, err, ErrValidationFailed)

	teams, err := env.leagues.ListTeams(ctx, league.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestAcceptInvite_TeamAlreadyLinked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	league := env.createLeague(t, "linked")
	teams := env.createTeams(t, league.ID, "Vasco")

	invite, err := env.invites.CreateInvite(ctx, league.ID, CreateInviteInput{})
	require.NoError(t, err)

	_, err = env.invites.AcceptInvite(ctx, invite.Token, teams[0], 77)
	assert.ErrorIs(t, err, ErrTeamAlreadyInLeague)

	_, err = env.invites.AcceptInvite(ctx, invite.Token, 4040, 77)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = env.invites.GetInviteByToken(ctx, invite.Token)
	assert.NoError(t, err, "a failed accept leaves the invite usable")
}

func TestDeleteInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	league := env.createLeague(t, "delete-invite")
	invite, err := env.invites.CreateInvite(ctx, league.ID, CreateInviteInput{})
	require.NoError(t, err)

	require.NoError(t, env.invites.DeleteInvite(ctx, invite.ID))
	_, err = env.invites.GetInviteByToken(ctx, invite.Token)
	assert.ErrorIs(t, err, ErrInviteNotFound)
	assert.ErrorIs(t, env.invites.DeleteInvite(ctx, invite.ID), ErrInviteNotFound)
}
