package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type StandingHandler struct {
	standingService services.StandingService
	exportService   services.ExportService
}

func NewStandingHandler(ss services.StandingService, es services.ExportService) *StandingHandler {
	return &StandingHandler{
		standingService: ss,
		exportService:   es,
	}
}

type groupScopedRequest struct {
	GroupID *int `json:"group_id,omitempty" validate:"omitempty,gt=0"`
}

// GetStandings godoc
// @Summary Get the standings table of a phase
// @Tags standings
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Param group_id query int false "Restrict to one group"
// @Success 200 {object} map[string]interface{} "Rows in display order"
// @Failure 404 {object} map[string]string "Phase not found"
// @Router /phases/{phaseID}/standings [get]
func (h *StandingHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	phaseID, groupID, ok := phaseAndGroup(w, r)
	if !ok {
		return
	}

	standings, err := h.standingService.GetStandingsByPhase(r.Context(), phaseID, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// InitializeStandings godoc
// @Summary Create zeroed standings rows for a phase
// @Tags standings
// @Description Creates one row per league team (or per group member) that does not have one yet.
// @Accept json
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Param body body groupScopedRequest false "Optional group"
// @Success 201 {object} map[string]interface{} "Created rows"
// @Failure 404 {object} map[string]string "Phase or group not found"
// @Security BearerAuth
// @Router /phases/{phaseID}/standings [post]
func (h *StandingHandler) InitializeStandings(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req groupScopedRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.standingService.CreateStandingsForPhase(r.Context(), phaseID, req.GroupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"standings": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetStandings godoc
// @Summary Delete every standings row of a phase
// @Tags standings
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Success 200 {object} map[string]interface{} "Number of deleted rows"
// @Failure 404 {object} map[string]string "Phase not found"
// @Security BearerAuth
// @Router /phases/{phaseID}/standings [delete]
func (h *StandingHandler) ResetStandings(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	deleted, err := h.standingService.DeleteStandingsByPhase(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ProcessMatchResult godoc
// @Summary Apply a match result to the standings
// @Tags standings
// @Description Adds the result to both teams' rows. A match_id makes the call idempotent.
// @Accept json
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Param body body services.MatchResultInput true "Result"
// @Success 200 {object} services.ProcessedResult "Updated rows"
// @Failure 404 {object} map[string]string "Phase, match or standing not found"
// @Failure 409 {object} map[string]string "Match already applied"
// @Failure 422 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /phases/{phaseID}/results [post]
func (h *StandingHandler) ProcessMatchResult(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchResultInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	result, err := h.standingService.ProcessMatchResult(r.Context(), phaseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecalculatePositions godoc
// @Summary Recompute positions
// @Tags standings
// @Description Without rules=true the fixed ladder is used (points, goal difference, goals for, wins).
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Param group_id query int false "Restrict to one group"
// @Param rules query bool false "Use the phase's configured tiebreak rules"
// @Success 200 {object} map[string]interface{} "Ranked rows"
// @Failure 404 {object} map[string]string "Phase not found"
// @Security BearerAuth
// @Router /phases/{phaseID}/standings/recalculate [post]
func (h *StandingHandler) RecalculatePositions(w http.ResponseWriter, r *http.Request) {
	phaseID, groupID, ok := phaseAndGroup(w, r)
	if !ok {
		return
	}
	withRules, err := boolQuery(r, "rules")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	recalculate := h.standingService.RecalculatePositions
	if withRules {
		recalculate = h.standingService.RecalculatePositionsWithRules
	}

	standings, err := recalculate(r.Context(), phaseID, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportStandings godoc
// @Summary Export the standings table to object storage
// @Tags standings
// @Produce json
// @Param phaseID path int true "Phase ID"
// @Param group_id query int false "Restrict to one group"
// @Success 201 {object} services.StandingsExport "Uploaded snapshot"
// @Failure 404 {object} map[string]string "Phase not found"
// @Failure 503 {object} map[string]string "Export not configured"
// @Security BearerAuth
// @Router /phases/{phaseID}/standings/export [post]
func (h *StandingHandler) ExportStandings(w http.ResponseWriter, r *http.Request) {
	phaseID, groupID, ok := phaseAndGroup(w, r)
	if !ok {
		return
	}

	export, err := h.exportService.ExportPhaseStandings(r.Context(), phaseID, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, export, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStanding godoc
// @Summary Manually correct a standings row
// @Tags standings
// @Accept json
// @Produce json
// @Param standingID path int true "Standing ID"
// @Param body body services.UpdateStandingInput true "Counters to overwrite"
// @Success 200 {object} map[string]interface{} "Updated row"
// @Failure 404 {object} map[string]string "Standing not found"
// @Failure 422 {object} map[string]string "Negative counter"
// @Security BearerAuth
// @Router /standings/{standingID} [patch]
func (h *StandingHandler) UpdateStanding(w http.ResponseWriter, r *http.Request) {
	standingID, err := getIDFromURL(r, "standingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateStandingInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	standing, err := h.standingService.UpdateStanding(r.Context(), standingID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standing": standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func phaseAndGroup(w http.ResponseWriter, r *http.Request) (int, *int, bool) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, nil, false
	}
	groupID, err := optionalIntQuery(r, "group_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, nil, false
	}
	return phaseID, groupID, true
}
