package handlers

import (
	"net/http"
	"strings"

	"fulltechlicense/logger"
	"fulltechlicense/middleware"
	"fulltechlicense/models"
	"fulltechlicense/services"
)

// ProductHandler altas y consultas del catálogo de productos.
type ProductHandler struct {
	products services.ProductService
}

// NewProductHandler crea el handler de productos.
func NewProductHandler(products services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Collection maneja /api/admin/products (GET lista, POST crea).
func (h *ProductHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w)
	}
}

// create registra un producto
// @Summary Crear producto
// @Tags Productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateProductRequest true "Datos del producto"
// @Success 201 {object} models.APIResponse{data=models.Product} "Producto creado"
// @Failure 400 {object} models.APIResponse "Producto inválido"
// @Router /api/admin/products [post]
func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": middleware.RequestID(r),
		"admin_id":   middleware.AdminID(r),
		"product_id": product.ID,
		"slug":       product.Slug,
	}).Info("Product created")
	writeJSON(w, http.StatusCreated, models.SuccessResponse("Producto creado", product))
}

// list lista productos
// @Summary Listar productos
// @Tags Productos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.Product}
// @Router /api/admin/products [get]
func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", products))
}

// Detail detalle de producto
// @Summary Detalle de producto
// @Tags Productos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del producto"
// @Success 200 {object} models.APIResponse{data=models.Product}
// @Failure 400 {object} models.APIResponse "Producto inválido"
// @Router /api/admin/products/{id} [get]
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/admin/products/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse("Not found", nil))
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse("OK", product))
}
