package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/services"
	"github.com/go-chi/chi/v5"
)

type InviteHandler struct {
	inviteService services.InviteService
}

func NewInviteHandler(is services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: is}
}

type acceptInviteRequest struct {
	TeamID int `json:"team_id" validate:"required,gt=0"`
}

// CreateInvite godoc
// @Summary Invite a team to a league
// @Tags invites
// @Description The token is returned once; only its owner can accept the invite.
// @Accept json
// @Produce json
// @Param leagueID path int true "League ID"
// @Param body body services.CreateInviteInput false "Recipient and lifetime"
// @Success 201 {object} services.CreatedInvite "Invite with token"
// @Failure 404 {object} map[string]string "League not found"
// @Failure 422 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /leagues/{leagueID}/invites [post]
func (h *InviteHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateInviteInput
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &input) {
		return
	}

	invite, err := h.inviteService.CreateInvite(r.Context(), leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"invite": invite}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListLeagueInvites godoc
// @Summary List the invites of a league
// @Tags invites
// @Produce json
// @Param leagueID path int true "League ID"
// @Success 200 {object} map[string]interface{} "Invites without tokens"
// @Failure 404 {object} map[string]string "League not found"
// @Security BearerAuth
// @Router /leagues/{leagueID}/invites [get]
func (h *InviteHandler) ListLeagueInvites(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	invites, err := h.inviteService.ListLeagueInvites(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invites": invites}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetInvite godoc
// @Summary Look up an invite by token
// @Tags invites
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} map[string]interface{} "Invite"
// @Failure 404 {object} map[string]string "Invite not found"
// @Router /invites/{token} [get]
func (h *InviteHandler) GetInvite(w http.ResponseWriter, r *http.Request) {
	invite, err := h.inviteService.GetInviteByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invite": invite}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AcceptInvite godoc
// @Summary Accept an invite for a team
// @Tags invites
// @Accept json
// @Produce json
// @Param token path string true "Invite token"
// @Param body body acceptInviteRequest true "Team joining the league"
// @Success 200 {object} map[string]interface{} "Accepted invite"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 404 {object} map[string]string "Invite or team not found"
// @Failure 409 {object} map[string]string "Already accepted or team already linked"
// @Failure 422 {object} map[string]string "Invite expired"
// @Security BearerAuth
// @Router /invites/{token}/accept [post]
func (h *InviteHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req acceptInviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invite, err := h.inviteService.AcceptInvite(r.Context(), chi.URLParam(r, "token"), req.TeamID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invite": invite}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteInvite godoc
// @Summary Revoke an invite
// @Tags invites
// @Param inviteID path int true "Invite ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Invite not found"
// @Security BearerAuth
// @Router /invites/id/{inviteID} [delete]
func (h *InviteHandler) DeleteInvite(w http.ResponseWriter, r *http.Request) {
	inviteID, err := getIDFromURL(r, "inviteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.inviteService.DeleteInvite(r.Context(), inviteID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
