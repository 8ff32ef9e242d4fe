package handlers

import (
	"net/http"

	"fulltechlicense/middleware"
	"fulltechlicense/models"
	"fulltechlicense/services"
)

// ActivationHandler expone el protocolo de activación online que consumen
// los clientes instalados.
type ActivationHandler struct {
	activation *services.ActivationService
}

// NewActivationHandler crea el handler de activación.
func NewActivationHandler(activation *services.ActivationService) *ActivationHandler {
	return &ActivationHandler{activation: activation}
}

// ActivateOnline activa una licencia en un dispositivo
// @Summary Activación online
// @Description Valida la licencia, admite el dispositivo y emite el activation token
// @Tags Activación
// @Accept json
// @Produce json
// @Param request body models.OnlineActivationRequest true "Datos de activación"
// @Success 200 {object} models.APIResponse{data=models.ActivationResult} "Activación correcta"
// @Failure 403 {object} models.APIResponse "Licencia no activa, expirada o límites alcanzados"
// @Failure 404 {object} models.APIResponse "Licencia no encontrada"
// @Failure 500 {object} models.APIResponse "Error de servidor"
// @Router /api/activation/online [post]
func (h *ActivationHandler) ActivateOnline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.OnlineActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LicenseKey == "" || req.ProductID == "" || req.DeviceFingerprint == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("licenseKey, productId y deviceFingerprint son obligatorios", nil))
		return
	}

	result, err := h.activation.ActivateOnline(r.Context(), req, middleware.GetClientIP(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Activación correcta", result))
}

// Revalidate reemite el activation token de un dispositivo ya activado
// @Summary Revalidación periódica
// @Description Verifica el token vigente y reemite uno nuevo con el estado actual de la licencia
// @Tags Activación
// @Accept json
// @Produce json
// @Param request body models.RevalidationRequest true "Token y fingerprint"
// @Success 200 {object} models.APIResponse{data=models.ActivationResult} "Revalidación correcta"
// @Failure 401 {object} models.APIResponse "Activation token inválido"
// @Failure 403 {object} models.APIResponse "Licencia no activa o dispositivo revocado"
// @Failure 500 {object} models.APIResponse "Error de servidor"
// @Router /api/activation/revalidate [post]
func (h *ActivationHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.RevalidationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ActivationToken == "" || req.DeviceFingerprint == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("activationToken y deviceFingerprint son obligatorios", nil))
		return
	}

	result, err := h.activation.Revalidate(r.Context(), req, middleware.GetClientIP(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Revalidación correcta", result))
}
