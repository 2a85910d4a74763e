package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/services"
)

type LeagueHandler struct {
	leagueService services.LeagueService
}

func NewLeagueHandler(ls services.LeagueService) *LeagueHandler {
	return &LeagueHandler{leagueService: ls}
}

type linkTeamRequest struct {
	TeamID int `json:"team_id" validate:"required,gt=0"`
}

type addPlayerRequest struct {
	PlayerID int `json:"player_id" validate:"required,gt=0"`
}

type phaseStatusRequest struct {
	Status models.PhaseStatus `json:"status" validate:"required"`
}

// CreateLeague godoc
// @Summary Create a league
// @Tags leagues
// @Accept json
// @Produce json
// @Param body body services.CreateLeagueInput true "League data"
// @Success 201 {object} map[string]interface{} "League created"
// @Failure 409 {object} map[string]string "Slug already taken"
// @Failure 422 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /leagues [post]
func (h *LeagueHandler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	var input services.CreateLeagueInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	league, err := h.leagueService.CreateLeague(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetLeague godoc
// @Summary Get a league
// @Tags leagues
// @Produce json
// @Param leagueID path int true "League ID"
// @Success 200 {object} map[string]interface{} "League"
// @Failure 404 {object} map[string]string "League not found"
// @Router /leagues/{leagueID} [get]
func (h *LeagueHandler) GetLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.GetLeague(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListLeagues godoc
// @Summary List leagues
// @Tags leagues
// @Produce json
// @Success 200 {object} map[string]interface{} "Leagues"
// @Router /leagues [get]
func (h *LeagueHandler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.leagueService.ListLeagues(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leagues": leagues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateTeam godoc
// @Summary Create a team
// @Tags teams
// @Accept json
// @Produce json
// @Param body body services.CreateTeamInput true "Team data"
// @Success 201 {object} map[string]interface{} "Team created"
// @Failure 422 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /teams [post]
func (h *LeagueHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	team, err := h.leagueService.CreateTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LinkTeam godoc
// @Summary Link a team to a league
// @Tags leagues
// @Accept json
// @Param leagueID path int true "League ID"
// @Param body body linkTeamRequest true "Team to link"
// @Success 204 "Linked"
// @Failure 404 {object} map[string]string "League or team not found"
// @Failure 409 {object} map[string]string "Team already linked"
// @Security BearerAuth
// @Router /leagues/{leagueID}/teams [post]
func (h *LeagueHandler) LinkTeam(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req linkTeamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.leagueService.LinkTeam(r.Context(), leagueID, req.TeamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTeams godoc
// @Summary List the teams of a league
// @Tags leagues
// @Produce json
// @Param leagueID path int true "League ID"
// @Success 200 {object} map[string]interface{} "Teams"
// @Failure 404 {object} map[string]string "League not found"
// @Router /leagues/{leagueID}/teams [get]
func (h *LeagueHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.leagueService.ListTeams(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddPlayerToTeam godoc
// @Summary Add a player to a team roster
// @Tags teams
// @Accept json
// @Param teamID path int true "Team ID"
// @Param body body addPlayerRequest true "Player"
// @Success 204 "Added"
// @Failure 404 {object} map[string]string "Team not found"
// @Security BearerAuth
// @Router /teams/{teamID}/players [post]
func (h *LeagueHandler) AddPlayerToTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req addPlayerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.leagueService.AddPlayerToTeam(r.Context(), teamID, req.PlayerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPhases godoc
// @Summary List the phases of a league
// @Tags phases
// @Produce json
// @Param leagueID path int true "League ID"
// @Success 200 {object} map[string]interface{} "Phases ordered by phase order"
// @Failure 404 {object} map[string]string "League not found"
// @Router /leagues/{leagueID}/phases [get]
func (h *LeagueHandler) ListPhases(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phases, err := h.leagueService.ListPhases(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"phases": phases}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePhaseStatus godoc
// @Summary Move a phase to a new status
// @Tags phases
// @Accept json
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Param body body phaseStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{} "Updated phase"
// @Failure 404 {object} map[string]string "Phase not found"
// @Failure 422 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /phases/{phaseID}/status [patch]
func (h *LeagueHandler) UpdatePhaseStatus(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req phaseStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	phase, err := h.leagueService.UpdatePhaseStatus(r.Context(), phaseID, req.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"phase": phase}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateGroup godoc
// @Summary Create a group inside a phase
// @Tags phases
// @Accept json
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Param body body services.CreateGroupInput true "Group name and member teams"
// @Success 201 {object} map[string]interface{} "Group created"
// @Failure 404 {object} map[string]string "Phase not found"
// @Failure 409 {object} map[string]string "Group name taken"
// @Security BearerAuth
// @Router /phases/{phaseID}/groups [post]
func (h *LeagueHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateGroupInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	group, err := h.leagueService.CreateGroup(r.Context(), phaseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListGroups godoc
// @Summary List the groups of a phase
// @Tags phases
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Success 200 {object} map[string]interface{} "Groups"
// @Router /phases/{phaseID}/groups [get]
func (h *LeagueHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.leagueService.ListGroups(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateMatch godoc
// @Summary Schedule a match in a phase
// @Tags phases
// @Accept json
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Param body body services.CreateMatchInput true "Fixture"
// @Success 201 {object} map[string]interface{} "Match created"
// @Failure 404 {object} map[string]string "Phase, team or group not found"
// @Failure 422 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /phases/{phaseID}/matches [post]
func (h *LeagueHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateMatchInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	match, err := h.leagueService.CreateMatch(r.Context(), phaseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
