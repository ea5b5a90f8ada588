package handlers

import (
	"net/http"

	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/isdelr/inventory-manager-be/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service services.ProductServiceProvider
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service services.ProductServiceProvider) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetAllProducts(r.Context())
	if err != nil {
		writeError(w, r, err, "list products")
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "get product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.Product
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		badRequest(w, err)
		return
	}
	payload.ID = 0
	product, err := h.service.CreateProduct(r.Context(), payload)
	if err != nil {
		writeError(w, r, err, "create product")
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload models.ProductUpdate
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		badRequest(w, err)
		return
	}
	product, err := h.service.UpdateProduct(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err, "update product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err, "delete product")
		return
	}
	httpx.NoContent(w)
}
