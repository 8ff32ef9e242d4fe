package handlers

import (
	"net/http"
	"strconv"

	"fulltechlicense/models"
	"fulltechlicense/services"
)

// AttemptHandler consulta del log de intentos de activación.
type AttemptHandler struct {
	attempts services.AttemptService
}

// NewAttemptHandler crea el handler de intentos.
func NewAttemptHandler(attempts services.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// List lista intentos de activación
// @Summary Listar intentos de activación
// @Description Log de auditoría de activaciones y revalidaciones, más reciente primero
// @Tags Auditoría
// @Produce json
// @Security BearerAuth
// @Param license_id query string false "Filtrar por licencia"
// @Param limit query int false "Máximo de filas"
// @Success 200 {object} models.APIResponse{data=[]models.ActivationAttempt}
// @Router /api/admin/attempts [get]
func (h *AttemptHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	attempts, err := h.attempts.List(r.Context(), r.URL.Query().Get("license_id"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", attempts))
}
