package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"fulltechlicense/logger"
	"fulltechlicense/middleware"
	"fulltechlicense/models"
	"fulltechlicense/services"
)

// LicenseAdminHandler CRUD y transiciones de licencias desde el panel.
type LicenseAdminHandler struct {
	licenses services.LicenseService
	devices  services.DeviceService
	products services.ProductService
}

// NewLicenseAdminHandler crea el handler administrativo de licencias.
func NewLicenseAdminHandler(licenses services.LicenseService, devices services.DeviceService, products services.ProductService) *LicenseAdminHandler {
	return &LicenseAdminHandler{licenses: licenses, devices: devices, products: products}
}

// Collection maneja /api/admin/licenses (GET lista, POST crea).
func (h *LicenseAdminHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w)
	}
}

// list lista licencias
// @Summary Listar licencias
// @Tags Licencias
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filtrar por estado"
// @Param product_id query string false "Filtrar por producto"
// @Param q query string false "Buscar por clave"
// @Param limit query int false "Máximo de filas"
// @Success 200 {object} models.APIResponse{data=[]models.License}
// @Router /api/admin/licenses [get]
func (h *LicenseAdminHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	licenses, err := h.licenses.List(r.Context(), services.LicenseFilter{
		Status:    r.URL.Query().Get("status"),
		ProductID: r.URL.Query().Get("product_id"),
		Query:     r.URL.Query().Get("q"),
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", licenses))
}

// create emite una licencia
// @Summary Crear licencia
// @Description Genera la clave y emite la licencia para un tenant y producto existentes
// @Tags Licencias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateLicenseRequest true "Datos de la licencia"
// @Success 201 {object} models.APIResponse{data=models.License} "Licencia creada"
// @Failure 400 {object} models.APIResponse "Producto inválido"
// @Failure 500 {object} models.APIResponse "Error de servidor"
// @Router /api/admin/licenses [post]
func (h *LicenseAdminHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLicenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TenantID == "" || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("tenant_id y product_id son obligatorios", nil))
		return
	}
	if req.MaxDevices <= 0 {
		req.MaxDevices = 1
	}
	if req.MaxActivations <= 0 {
		req.MaxActivations = req.MaxDevices
	}
	if req.Type == "" {
		req.Type = models.LicenseTypeFull
	}
	if req.PlanType == "" {
		req.PlanType = models.PlanSubscription
	}

	product, err := h.products.FindByID(r.Context(), req.ProductID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	lic, err := h.licenses.Create(r.Context(), req, product.Slug)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"admin_id":   middleware.AdminID(r),
		"license_id": lic.ID,
		"key":        lic.Key,
	}).Info("License created")
	writeJSON(w, http.StatusCreated, models.SuccessResponse("Licencia creada", lic))
}

// Detail despacha /api/admin/licenses/{id}[/acción].
//
//	GET    /api/admin/licenses/{id}            detalle
//	PUT    /api/admin/licenses/{id}            actualización
//	GET    /api/admin/licenses/{id}/devices    dispositivos
//	POST   /api/admin/licenses/{id}/suspend    suspender
//	POST   /api/admin/licenses/{id}/resume     reanudar
//	POST   /api/admin/licenses/{id}/revoke     revocar
//	POST   /api/admin/licenses/{id}/renew      renovar
func (h *LicenseAdminHandler) Detail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/licenses/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse("Not found", nil))
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "" && r.Method == http.MethodPut:
		h.update(w, r, id)
	case action == "devices" && r.Method == http.MethodGet:
		h.listDevices(w, r, id)
	case action == "suspend" && r.Method == http.MethodPost:
		h.transition(w, r, id, "suspend")
	case action == "resume" && r.Method == http.MethodPost:
		h.transition(w, r, id, "resume")
	case action == "revoke" && r.Method == http.MethodPost:
		h.transition(w, r, id, "revoke")
	case action == "renew" && r.Method == http.MethodPost:
		h.renew(w, r, id)
	case action == "":
		methodNotAllowed(w)
	default:
		writeJSON(w, http.StatusNotFound, models.ErrorResponse("Not found", nil))
	}
}

// get detalle de licencia
// @Summary Detalle de licencia
// @Tags Licencias
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la licencia"
// @Success 200 {object} models.APIResponse{data=models.License}
// @Failure 404 {object} models.APIResponse "Licencia no encontrada"
// @Router /api/admin/licenses/{id} [get]
func (h *LicenseAdminHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	lic, err := h.licenses.FindByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", lic))
}

// update modifica límites y entitlements
// @Summary Actualizar licencia
// @Tags Licencias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la licencia"
// @Param request body models.UpdateLicenseRequest true "Campos a modificar"
// @Success 200 {object} models.APIResponse{data=models.License}
// @Failure 404 {object} models.APIResponse "Licencia no encontrada"
// @Router /api/admin/licenses/{id} [put]
func (h *LicenseAdminHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req models.UpdateLicenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lic, err := h.licenses.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Licencia actualizada", lic))
}

// transition aplica suspend/resume/revoke
// @Summary Transición de estado de licencia
// @Tags Licencias
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la licencia"
// @Success 200 {object} models.APIResponse{data=models.License}
// @Failure 409 {object} models.APIResponse "Transición no permitida"
// @Router /api/admin/licenses/{id}/suspend [post]
func (h *LicenseAdminHandler) transition(w http.ResponseWriter, r *http.Request, id, action string) {
	var (
		lic models.License
		err error
	)
	switch action {
	case "suspend":
		lic, err = h.licenses.Suspend(r.Context(), id)
	case "resume":
		lic, err = h.licenses.Resume(r.Context(), id)
	case "revoke":
		lic, err = h.licenses.Revoke(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"admin_id":   middleware.AdminID(r),
		"license_id": id,
		"action":     action,
		"status":     lic.Status,
	}).Info("License state transition")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Estado actualizado", lic))
}

// renew extiende la expiración
// @Summary Renovar licencia
// @Description Suma días desde max(ahora, expiración actual) y reactiva la licencia
// @Tags Licencias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la licencia"
// @Param request body models.RenewLicenseRequest true "Días a añadir"
// @Success 200 {object} models.APIResponse{data=models.License}
// @Failure 409 {object} models.APIResponse "Licencia revocada"
// @Router /api/admin/licenses/{id}/renew [post]
func (h *LicenseAdminHandler) renew(w http.ResponseWriter, r *http.Request, id string) {
	var req models.RenewLicenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AddDays <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse("add_days debe ser positivo", nil))
		return
	}

	lic, err := h.licenses.Renew(r.Context(), id, req.AddDays)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"admin_id":   middleware.AdminID(r),
		"license_id": id,
		"add_days":   req.AddDays,
	}).Info("License renewed")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Licencia renovada", lic))
}

// listDevices dispositivos de una licencia
// @Summary Dispositivos de una licencia
// @Tags Licencias
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la licencia"
// @Success 200 {object} models.APIResponse{data=[]models.DeviceActivation}
// @Router /api/admin/licenses/{id}/devices [get]
func (h *LicenseAdminHandler) listDevices(w http.ResponseWriter, r *http.Request, id string) {
	devices, err := h.devices.ListByLicense(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", devices))
}

// RevokeDevice revoca un dispositivo
// @Summary Revocar dispositivo
// @Description Libera el cupo de max_devices; la fila se conserva para el conteo histórico
// @Tags Dispositivos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AdminDeviceRequest true "Licencia y hash del dispositivo"
// @Success 200 {object} models.APIResponse "Dispositivo revocado"
// @Failure 403 {object} models.APIResponse "Dispositivo no activo"
// @Router /api/admin/devices/revoke [post]
func (h *LicenseAdminHandler) RevokeDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.AdminDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.devices.Revoke(r.Context(), req.LicenseID, req.DeviceIDHash); err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id":     middleware.RequestID(r),
		"admin_id":       middleware.AdminID(r),
		"license_id":     req.LicenseID,
		"device_id_hash": req.DeviceIDHash,
	}).Info("Device revoked")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Dispositivo revocado", nil))
}

// ReactivateDevice reactiva un dispositivo revocado
// @Summary Reactivar dispositivo
// @Tags Dispositivos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AdminDeviceRequest true "Licencia y hash del dispositivo"
// @Success 200 {object} models.APIResponse "Dispositivo reactivado"
// @Router /api/admin/devices/reactivate [post]
func (h *LicenseAdminHandler) ReactivateDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.AdminDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.devices.Reactivate(r.Context(), req.LicenseID, req.DeviceIDHash); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Dispositivo reactivado", nil))
}
