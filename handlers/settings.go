package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"fulltechlicense/logger"
	"fulltechlicense/middleware"
	"fulltechlicense/models"
	"fulltechlicense/services"
)

// SettingsHandler lectura y escritura de los settings globales.
type SettingsHandler struct {
	settings services.SettingsService
}

// NewSettingsHandler crea el handler de settings.
func NewSettingsHandler(settings services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// List devuelve todos los settings
// @Summary Listar settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/admin/settings [get]
func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	all, err := h.settings.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", all))
}

// Detail maneja /api/admin/settings/{key} (GET lee, PUT escribe).
func (h *SettingsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/admin/settings/")
	if key == "" || strings.Contains(key, "/") {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse("Not found", nil))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, key)
	case http.MethodPut:
		h.put(w, r, key)
	default:
		methodNotAllowed(w)
	}
}

// get lee un setting
// @Summary Leer setting
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param key path string true "Clave del setting"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse "Setting no encontrado"
// @Router /api/admin/settings/{key} [get]
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.settings.Get(r.Context(), key)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse("Setting no encontrado", nil))
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", value))
}

// put escribe un setting
// @Summary Escribir setting
// @Description Guarda el valor JSON del setting; el de revalidación valida offlineDays positivo
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Clave del setting"
// @Success 200 {object} models.APIResponse "Setting guardado"
// @Failure 400 {object} models.APIResponse "Valor inválido"
// @Router /api/admin/settings/{key} [put]
func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("Invalid request body", err))
		return
	}

	if key == models.SettingKeyRevalidation {
		var rv models.RevalidationSetting
		if err := json.Unmarshal(body, &rv); err != nil || rv.OfflineDays <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse("offlineDays debe ser positivo", nil))
			return
		}
	}

	if err := h.settings.Put(r.Context(), key, body); err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"admin_id":   middleware.AdminID(r),
		"key":        key,
	}).Info("Setting updated")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Setting guardado", json.RawMessage(body)))
}
