package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type ConfigurationHandler struct {
	configurationService services.ConfigurationService
}

func NewConfigurationHandler(cs services.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{configurationService: cs}
}

// GetConfigurationStatus godoc
// @Summary Get the setup checklist of a league
// @Tags leagues
// @Description Ordered steps for the league's format type with completion flags and percentage.
// @Produce json
// @Param leagueID path int true "League ID"
// @Success 200 {object} models.ConfigurationStatus "Configuration status"
// @Failure 404 {object} map[string]string "League not found"
// @Router /leagues/{leagueID}/configuration-status [get]
func (h *ConfigurationHandler) GetConfigurationStatus(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := h.configurationService.GetConfigurationStatus(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, status, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
