package handlers

import (
	"net/http"

	"fulltechlicense/logger"
	"fulltechlicense/middleware"
	"fulltechlicense/models"
	"fulltechlicense/services"
)

// AuthHandler maneja el login y la sesión del backoffice.
type AuthHandler struct {
	auth services.AuthService
}

// NewAuthHandler crea el handler de autenticación.
func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login autentica a un operador
// @Summary Login de operador
// @Description Autentica al operador y devuelve un access token
// @Tags Autenticación
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credenciales"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse} "Login correcto"
// @Failure 401 {object} models.APIResponse "Credenciales inválidas"
// @Failure 500 {object} models.APIResponse "Error de servidor"
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"email":      resp.Email,
	}).Info("Admin login")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Login correcto", resp))
}

// Me devuelve el operador autenticado
// @Summary Operador actual
// @Description Devuelve la cuenta del operador autenticado
// @Tags Autenticación
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.Admin}
// @Failure 401 {object} models.APIResponse "No autenticado"
// @Router /api/admin/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	admin, err := h.auth.FindByID(r.Context(), middleware.AdminID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", admin))
}
