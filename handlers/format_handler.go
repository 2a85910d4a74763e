package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/services"
	"github.com/go-chi/chi/v5"
)

type FormatHandler struct {
	formatService services.FormatService
	broadcaster   live.Broadcaster
}

func NewFormatHandler(fs services.FormatService, broadcaster live.Broadcaster) *FormatHandler {
	return &FormatHandler{
		formatService: fs,
		broadcaster:   broadcaster,
	}
}

type applyFormatRequest struct {
	FormatID int `json:"format_id" validate:"required,gt=0"`
}

// CreateFormat godoc
// @Summary Create a competition format
// @Tags formats
// @Description Creates a format with its phase configs and tiebreak rules in one transaction.
// @Accept json
// @Produce json
// @Param body body services.CreateFormatInput true "Format definition"
// @Success 201 {object} map[string]interface{} "Format created"
// @Failure 400 {object} map[string]string "Malformed body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Slug already taken"
// @Failure 422 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /formats [post]
func (h *FormatHandler) CreateFormat(w http.ResponseWriter, r *http.Request) {
	var input services.CreateFormatInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	format, err := h.formatService.CreateFormat(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"format": format}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetFormatByID godoc
// @Summary Get a format by ID
// @Tags formats
// @Produce json
// @Param formatID path int true "Format ID"
// @Success 200 {object} map[string]interface{} "Format with phases and tiebreak rules"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Format not found"
// @Router /formats/{formatID} [get]
func (h *FormatHandler) GetFormatByID(w http.ResponseWriter, r *http.Request) {
	formatID, err := getIDFromURL(r, "formatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	format, err := h.formatService.GetFormatByID(r.Context(), formatID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"format": format}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetFormatBySlug godoc
// @Summary Get a format by slug
// @Tags formats
// @Produce json
// @Param slug path string true "Format slug"
// @Success 200 {object} map[string]interface{} "Format with phases and tiebreak rules"
// @Failure 404 {object} map[string]string "Format not found"
// @Router /formats/slug/{slug} [get]
func (h *FormatHandler) GetFormatBySlug(w http.ResponseWriter, r *http.Request) {
	format, err := h.formatService.GetFormatBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"format": format}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListFormats godoc
// @Summary List formats
// @Tags formats
// @Produce json
// @Param templates query bool false "Only reusable templates"
// @Success 200 {object} map[string]interface{} "Formats"
// @Failure 400 {object} map[string]string "Invalid query"
// @Router /formats [get]
func (h *FormatHandler) ListFormats(w http.ResponseWriter, r *http.Request) {
	templatesOnly, err := boolQuery(r, "templates")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	formats, err := h.formatService.ListFormats(r.Context(), templatesOnly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"formats": formats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateFormat godoc
// @Summary Update format metadata
// @Tags formats
// @Accept json
// @Produce json
// @Param formatID path int true "Format ID"
// @Param body body services.UpdateFormatInput true "Fields to change"
// @Success 200 {object} map[string]interface{} "Updated format"
// @Failure 404 {object} map[string]string "Format not found"
// @Failure 422 {object} map[string]string "Validation failed"
// @Security BearerAuth
// @Router /formats/{formatID} [patch]
func (h *FormatHandler) UpdateFormat(w http.ResponseWriter, r *http.Request) {
	formatID, err := getIDFromURL(r, "formatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateFormatInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	format, err := h.formatService.UpdateFormat(r.Context(), formatID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"format": format}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteFormat godoc
// @Summary Delete a format
// @Tags formats
// @Description Fails with 409 while any league still uses the format.
// @Param formatID path int true "Format ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Format not found"
// @Failure 409 {object} map[string]interface{} "Format in use"
// @Security BearerAuth
// @Router /formats/{formatID} [delete]
func (h *FormatHandler) DeleteFormat(w http.ResponseWriter, r *http.Request) {
	formatID, err := getIDFromURL(r, "formatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.formatService.DeleteFormat(r.Context(), formatID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ApplyFormatToLeague godoc
// @Summary Apply a format to a league
// @Tags formats
// @Description Creates one league phase per phase config and binds the format to the league.
// @Accept json
// @Produce json
// @Param leagueID path int true "League ID"
// @Param body body applyFormatRequest true "Format to apply"
// @Success 201 {object} map[string]interface{} "Created phases"
// @Failure 404 {object} map[string]string "League or format not found"
// @Failure 409 {object} map[string]string "League already has a format"
// @Security BearerAuth
// @Router /leagues/{leagueID}/format [post]
func (h *FormatHandler) ApplyFormatToLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req applyFormatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	phases, err := h.formatService.ApplyFormatToLeague(r.Context(), leagueID, req.FormatID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastToRoom(live.LeagueRoom(leagueID), live.Message{
			Type:    live.EventPhasesCreated,
			Payload: jsonResponse{"league_id": leagueID, "format_id": req.FormatID, "phases": len(phases)},
			RoomID:  live.LeagueRoom(leagueID),
		})
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"phases": phases}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
