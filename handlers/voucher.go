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

// VoucherHandler expone el canje público de códigos y la gestión de lotes.
type VoucherHandler struct {
	vouchers services.VoucherService
}

// NewVoucherHandler crea el handler de vouchers.
func NewVoucherHandler(vouchers services.VoucherService) *VoucherHandler {
	return &VoucherHandler{vouchers: vouchers}
}

// Redeem canjea un código por una licencia
// @Summary Canje de voucher
// @Description Consume el código, resuelve el tenant y emite la licencia en una sola transacción
// @Tags Vouchers
// @Accept json
// @Produce json
// @Param request body models.RedeemRequest true "Código y datos del comercio"
// @Success 200 {object} models.APIResponse{data=models.RedeemResult} "Canje correcto"
// @Failure 404 {object} models.APIResponse "Código no encontrado"
// @Failure 409 {object} models.APIResponse "Código no disponible"
// @Failure 500 {object} models.APIResponse "Error de servidor"
// @Router /api/public/redeem [post]
func (h *VoucherHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req models.RedeemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.vouchers.Redeem(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("Canje correcto", result))
}

// Batch maneja /api/admin/vouchers (GET lista, POST crea lote).
func (h *VoucherHandler) Batch(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.createBatch(w, r)
	default:
		methodNotAllowed(w)
	}
}

// createBatch crea un lote de vouchers
// @Summary Crear lote de vouchers
// @Description Genera N códigos con la misma plantilla de licencia
// @Tags Vouchers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.VoucherBatchRequest true "Plantilla del lote"
// @Success 201 {object} models.APIResponse{data=[]models.Voucher} "Lote creado"
// @Failure 400 {object} models.APIResponse "Lote inválido"
// @Failure 500 {object} models.APIResponse "Error de servidor"
// @Router /api/admin/vouchers [post]
func (h *VoucherHandler) createBatch(w http.ResponseWriter, r *http.Request) {
	var req models.VoucherBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vouchers, err := h.vouchers.CreateBatch(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"admin_id":   middleware.AdminID(r),
		"count":      len(vouchers),
		"product_id": req.ProductID,
	}).Info("Voucher batch created")
	writeJSON(w, http.StatusCreated, models.SuccessResponse("Lote creado", vouchers))
}

// list lista vouchers
// @Summary Listar vouchers
// @Tags Vouchers
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filtrar por estado"
// @Param product_id query string false "Filtrar por producto"
// @Param batch query string false "Filtrar por lote"
// @Param limit query int false "Máximo de filas"
// @Success 200 {object} models.APIResponse{data=[]models.Voucher}
// @Router /api/admin/vouchers [get]
func (h *VoucherHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	vouchers, err := h.vouchers.List(r.Context(), services.VoucherFilter{
		Status:    r.URL.Query().Get("status"),
		ProductID: r.URL.Query().Get("product_id"),
		BatchName: r.URL.Query().Get("batch"),
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", vouchers))
}

// Cancel anula un voucher sin usar
// @Summary Cancelar voucher
// @Description Pasa un voucher UNUSED a CANCELLED; cualquier otro estado produce conflicto
// @Tags Vouchers
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del voucher"
// @Success 200 {object} models.APIResponse{data=models.Voucher} "Voucher cancelado"
// @Failure 404 {object} models.APIResponse "Código no encontrado"
// @Failure 409 {object} models.APIResponse "Código no disponible"
// @Router /api/admin/vouchers/{id}/cancel [post]
func (h *VoucherHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/vouchers/")
	id := strings.TrimSuffix(rest, "/cancel")
	if id == "" || id == rest || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse("Not found", nil))
		return
	}

	v, err := h.vouchers.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"admin_id":   middleware.AdminID(r),
		"voucher_id": v.ID,
	}).Info("Voucher cancelled")
	writeJSON(w, http.StatusOK, models.SuccessResponse("Voucher cancelado", v))
}
