package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type DisciplineHandler struct {
	disciplineService services.DisciplineService
}

func NewDisciplineHandler(ds services.DisciplineService) *DisciplineHandler {
	return &DisciplineHandler{disciplineService: ds}
}

type resetYellowsRequest struct {
	PhaseOrder int `json:"phase_order" validate:"required,min=1"`
}

// GetRules godoc
// @Summary Get the discipline rules of a league
// @Tags discipline
// @Produce json
// @Param leagueID path int true "League ID"
// @Success 200 {object} map[string]interface{} "Rules"
// @Failure 404 {object} map[string]string "No rules for league"
// @Router /leagues/{leagueID}/discipline-rules [get]
func (h *DisciplineHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rules, err := h.disciplineService.GetRulesByLeagueID(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rules": rules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateRules godoc
// @Summary Create discipline rules for a league
// @Tags discipline
// @Description Omitted fields take the defaults: 3 yellows, accumulation on, 1 game for red and double yellow.
// @Accept json
// @Produce json
// @Param leagueID path int true "League ID"
// @Param body body services.RuleOverrides false "Overrides"
// @Success 201 {object} map[string]interface{} "Rules created"
// @Failure 404 {object} map[string]string "League not found"
// @Failure 409 {object} map[string]string "Rules already exist"
// @Security BearerAuth
// @Router /leagues/{leagueID}/discipline-rules [post]
func (h *DisciplineHandler) CreateRules(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var overrides services.RuleOverrides
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &overrides) {
		return
	}

	rules, err := h.disciplineService.CreateRules(r.Context(), leagueID, overrides)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"rules": rules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpsertRules godoc
// @Summary Replace the discipline rules of a league
// @Tags discipline
// @Description Creates the rules when missing; otherwise resets them to defaults plus the given overrides.
// @Accept json
// @Produce json
// @Param leagueID path int true "League ID"
// @Param body body services.RuleOverrides true "Overrides"
// @Success 200 {object} map[string]interface{} "Rules"
// @Failure 404 {object} map[string]string "League not found"
// @Security BearerAuth
// @Router /leagues/{leagueID}/discipline-rules [put]
func (h *DisciplineHandler) UpsertRules(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var overrides services.RuleOverrides
	if !decodeAndValidate(w, r, &overrides) {
		return
	}

	rules, err := h.disciplineService.UpsertRules(r.Context(), leagueID, overrides)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rules": rules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateRules godoc
// @Summary Update some discipline settings
// @Tags discipline
// @Accept json
// @Produce json
// @Param leagueID path int true "League ID"
// @Param body body services.UpdateRulesInput true "Fields to change"
// @Success 200 {object} map[string]interface{} "Rules"
// @Failure 404 {object} map[string]string "No rules for league"
// @Failure 422 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /leagues/{leagueID}/discipline-rules [patch]
func (h *DisciplineHandler) UpdateRules(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateRulesInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	rules, err := h.disciplineService.UpdateRules(r.Context(), leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rules": rules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteRules godoc
// @Summary Delete the discipline rules of a league
// @Tags discipline
// @Param leagueID path int true "League ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "No rules for league"
// @Security BearerAuth
// @Router /leagues/{leagueID}/discipline-rules [delete]
func (h *DisciplineHandler) DeleteRules(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.disciplineService.DeleteRules(r.Context(), leagueID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckPlayerSuspension godoc
// @Summary Check whether a player is suspended
// @Tags discipline
// @Produce json
// @Param leagueID path int true "League ID"
// @Param playerID path int true "Player ID"
// @Success 200 {object} models.SuspensionStatus "Suspension status"
// @Router /leagues/{leagueID}/players/{playerID}/suspension [get]
func (h *DisciplineHandler) CheckPlayerSuspension(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := h.disciplineService.CheckPlayerSuspension(r.Context(), playerID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, status, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetYellowCards godoc
// @Summary Clear yellow cards after a phase
// @Tags discipline
// @Description Zeroes yellow cards on every standings row of phases up to phase_order. A league without a reset boundary is left untouched.
// @Accept json
// @Produce json
// @Param leagueID path int true "League ID"
// @Param body body resetYellowsRequest true "Completed phase order"
// @Success 200 {object} map[string]interface{} "Number of rows reset"
// @Failure 404 {object} map[string]string "No rules for league"
// @Failure 422 {object} map[string]string "Invalid phase order"
// @Security BearerAuth
// @Router /leagues/{leagueID}/discipline-rules/reset-yellows [post]
func (h *DisciplineHandler) ResetYellowCards(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req resetYellowsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reset, err := h.disciplineService.ResetYellowCardsAfterPhase(r.Context(), leagueID, req.PhaseOrder)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reset": reset}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
