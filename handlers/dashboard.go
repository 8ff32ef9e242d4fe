package handlers

import (
	"net/http"

	"fulltechlicense/models"
	"fulltechlicense/services"
)

// DashboardHandler contadores de la portada del panel.
type DashboardHandler struct {
	dashboard services.DashboardService
}

// NewDashboardHandler crea el handler del dashboard.
func NewDashboardHandler(dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary contadores agregados
// @Summary Resumen del panel
// @Description Licencias activas, próximas a expirar, activaciones de hoy y reparto por tipo
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=services.DashboardSummary}
// @Router /api/admin/dashboard [get]
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", summary))
}
