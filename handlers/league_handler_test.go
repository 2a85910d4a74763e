package handlers

import (
	"net/http"
	"testing"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLeagueHandler_CreateLeague(t *testing.T) {
	ls := &mockLeagueService{}
	h := NewLeagueHandler(ls)
	ls.On("CreateLeague", mock.Anything, mock.MatchedBy(func(in services.CreateLeagueInput) bool {
		return in.Slug == "brasileirao-2025" && in.StartDate != nil && in.StartDate.Month() == 3
	})).Return(&models.League{ID: 1, Slug: "brasileirao-2025"}, nil).Once()

	body := `{"name": "Brasileirao", "slug": "brasileirao-2025", "start_date": "2025-03-29T00:00:00Z"}`
	rec := serve(http.MethodPost, "/leagues", "/leagues", body, h.CreateLeague)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(http.MethodPost, "/leagues", "/leagues", `{"slug": "x"}`, h.CreateLeague)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "name")
	ls.AssertExpectations(t)
}

func TestLeagueHandler_GetLeague(t *testing.T) {
	ls := &mockLeagueService{}
	ls.On("GetLeague", mock.Anything, 404).Return(nil, services.ErrLeagueNotFound)

	rec := serve(http.MethodGet, "/leagues/{leagueID}", "/leagues/404", "", NewLeagueHandler(ls).GetLeague)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "league not found")
}

func TestLeagueHandler_LinkTeam(t *testing.T) {
	ls := &mockLeagueService{}
	h := NewLeagueHandler(ls)
	ls.On("LinkTeam", mock.Anything, 1, 10).Return(nil).Once()
	ls.On("LinkTeam", mock.Anything, 1, 11).Return(services.ErrTeamAlreadyInLeague).Once()

	rec := serve(http.MethodPost, "/leagues/{leagueID}/teams", "/leagues/1/teams", `{"team_id": 10}`, h.LinkTeam)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(http.MethodPost, "/leagues/{leagueID}/teams", "/leagues/1/teams", `{"team_id": 11}`, h.LinkTeam)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(http.MethodPost, "/leagues/{leagueID}/teams", "/leagues/0/teams", `{"team_id": 11}`, h.LinkTeam)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ls.AssertExpectations(t)
}

func TestLeagueHandler_UpdatePhaseStatus(t *testing.T) {
	ls := &mockLeagueService{}
	h := NewLeagueHandler(ls)
	ls.On("UpdatePhaseStatus", mock.Anything, 3, models.PhaseStatusInProgress).
		Return(&models.LeaguePhase{ID: 3, Status: models.PhaseStatusInProgress}, nil).Once()
	ls.On("UpdatePhaseStatus", mock.Anything, 3, models.PhaseStatusNotStarted).
		Return(nil, services.ErrInvalidStatusChange).Once()

	rec := serve(http.MethodPatch, "/phases/{phaseID}/status", "/phases/3/status", `{"status": "IN_PROGRESS"}`, h.UpdatePhaseStatus)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.MethodPatch, "/phases/{phaseID}/status", "/phases/3/status", `{"status": "NOT_STARTED"}`, h.UpdatePhaseStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	ls.AssertExpectations(t)
}

func TestLeagueHandler_CreateGroupAndMatch(t *testing.T) {
	ls := &mockLeagueService{}
	h := NewLeagueHandler(ls)
	ls.On("CreateGroup", mock.Anything, 3, services.CreateGroupInput{Name: "Group A", TeamIDs: []int{1, 2}}).
		Return(&models.LeagueGroup{ID: 8, PhaseID: 3, Name: "Group A", TeamIDs: []int{1, 2}}, nil).Once()
	ls.On("CreateMatch", mock.Anything, 3, mock.MatchedBy(func(in services.CreateMatchInput) bool {
		return in.HomeTeamID == 1 && in.AwayTeamID == 2 && in.GroupID != nil && *in.GroupID == 8
	})).Return(&models.Match{ID: 50}, nil).Once()

	rec := serve(http.MethodPost, "/phases/{phaseID}/groups", "/phases/3/groups", `{"name": "Group A", "team_ids": [1, 2]}`, h.CreateGroup)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(http.MethodPost, "/phases/{phaseID}/groups", "/phases/3/groups", `{"name": "Group B", "team_ids": [0]}`, h.CreateGroup)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(http.MethodPost, "/phases/{phaseID}/matches", "/phases/3/matches", `{"home_team_id": 1, "away_team_id": 2, "group_id": 8}`, h.CreateMatch)
	assert.Equal(t, http.StatusCreated, rec.Code)
	ls.AssertExpectations(t)
}

func TestLeagueHandler_AddPlayerToTeam(t *testing.T) {
	ls := &mockLeagueService{}
	ls.On("AddPlayerToTeam", mock.Anything, 6, 99).Return(nil).Once()

	rec := serve(http.MethodPost, "/teams/{teamID}/players", "/teams/6/players", `{"player_id": 99}`, NewLeagueHandler(ls).AddPlayerToTeam)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	ls.AssertExpectations(t)
}

func TestConfigurationHandler_GetConfigurationStatus(t *testing.T) {
	cs := &mockConfigurationService{}
	formatType := models.CompetitionKnockout
	cs.On("GetConfigurationStatus", mock.Anything, 2).Return(&models.ConfigurationStatus{
		LeagueID:             2,
		FormatType:           &formatType,
		CompletionPercentage: 50,
		Steps: []models.ConfigurationStep{
			{ID: services.StepLeagueCreated, Order: 1, Completed: true, Required: true},
			{ID: services.StepFormatSelected, Order: 2, Completed: true, Required: true},
		},
	}, nil).Once()
	cs.On("GetConfigurationStatus", mock.Anything, 404).Return(nil, services.ErrLeagueNotFound).Once()

	h := NewConfigurationHandler(cs)
	rec := serve(http.MethodGet, "/leagues/{leagueID}/configuration-status", "/leagues/2/configuration-status", "", h.GetConfigurationStatus)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["steps"], 2)

	rec = serve(http.MethodGet, "/leagues/{leagueID}/configuration-status", "/leagues/404/configuration-status", "", h.GetConfigurationStatus)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	cs.AssertExpectations(t)
}
