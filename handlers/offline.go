package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fulltechlicense/logger"
	"fulltechlicense/middleware"
	"fulltechlicense/models"
	"fulltechlicense/services"
)

// OfflineHandler expone el flujo air-gapped: validación de request files,
// emisión de archivos de licencia firmados y su descarga.
type OfflineHandler struct {
	offline services.OfflineService
}

// NewOfflineHandler crea el handler offline.
func NewOfflineHandler(offline services.OfflineService) *OfflineHandler {
	return &OfflineHandler{offline: offline}
}

// ValidateRequest valida un request file offline
// @Summary Validar request file
// @Description Comprueba checksum, firma del producto y nonce de un request file offline
// @Tags Offline
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.OfflineRequestFile true "Request file"
// @Success 200 {object} models.APIResponse{data=models.OfflineRequest} "Request válido"
// @Failure 400 {object} models.APIResponse "Request file inválido"
// @Failure 409 {object} models.APIResponse "Nonce ya fue usado"
// @Failure 500 {object} models.APIResponse "Error de servidor"
// @Router /api/activation/offline/request/validate [post]
func (h *OfflineHandler) ValidateRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var file models.OfflineRequestFile
	if !decodeJSON(w, r, &file) {
		return
	}

	request, err := h.offline.ValidateRequest(r.Context(), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Request válido", request))
}

// GenerateLicenseFile emite el archivo de licencia firmado
// @Summary Generar licencia offline
// @Description Emite el archivo de licencia Ed25519 para un request file validado; consume el nonce
// @Tags Offline
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.GenerateOfflineLicenseRequest true "Request file y licencia"
// @Success 201 {object} models.APIResponse{data=models.OfflineLicenseArtifact} "Archivo emitido"
// @Failure 403 {object} models.APIResponse "Licencia no permite offline"
// @Failure 404 {object} models.APIResponse "Licencia no encontrada"
// @Failure 409 {object} models.APIResponse "Nonce ya fue usado"
// @Failure 500 {object} models.APIResponse "Error de servidor"
// @Router /api/admin/offline/license/generate [post]
func (h *OfflineHandler) GenerateLicenseFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.GenerateOfflineLicenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LicenseID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("licenseId es obligatorio", nil))
		return
	}

	artifact, err := h.offline.GenerateLicenseFile(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"admin_id":   middleware.AdminID(r),
		"license_id": req.LicenseID,
		"file":       artifact.FileName,
	}).Info("Offline license file generated")
	writeJSON(w, http.StatusCreated, models.SuccessResponse("Archivo de licencia emitido", artifact))
}

// ListRequests lista los request files recibidos
// @Summary Listar requests offline
// @Tags Offline
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Máximo de filas"
// @Success 200 {object} models.APIResponse{data=[]models.OfflineRequest}
// @Router /api/admin/offline/requests [get]
func (h *OfflineHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	requests, err := h.offline.ListRequests(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", requests))
}

// ListFiles lista los archivos de licencia emitidos
// @Summary Listar archivos de licencia offline
// @Tags Offline
// @Produce json
// @Security BearerAuth
// @Param license_id query string false "Filtrar por licencia"
// @Param limit query int false "Máximo de filas"
// @Success 200 {object} models.APIResponse{data=[]models.OfflineLicenseFile}
// @Router /api/admin/offline/files [get]
func (h *OfflineHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	files, err := h.offline.ListLicenseFiles(r.Context(), r.URL.Query().Get("license_id"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", files))
}

// Download descarga un archivo de licencia emitido
// @Summary Descargar archivo de licencia
// @Description Devuelve el artefacto completo (payload, firma y clave pública) como descarga
// @Tags Offline
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del archivo"
// @Success 200 {object} models.OfflineLicenseArtifact
// @Failure 404 {object} models.APIResponse "Archivo no encontrado"
// @Router /api/admin/offline/files/{id} [get]
func (h *OfflineHandler) Download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/admin/offline/files/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("ID de archivo inválido", nil))
		return
	}

	artifact, err := h.offline.GetArtifact(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.FileName))
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", artifact))
}

// PublicKey devuelve la clave pública de verificación
// @Summary Clave pública Ed25519
// @Description Clave con la que los clientes verifican los archivos de licencia offline
// @Tags Offline
// @Produce json
// @Success 200 {object} models.APIResponse{data=string}
// @Router /api/admin/offline/public-key [get]
func (h *OfflineHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	key, err := h.offline.PublicKey()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", key))
}
