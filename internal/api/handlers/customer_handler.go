package handlers

import (
	"net/http"

	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/isdelr/inventory-manager-be/internal/services"
)

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	service services.CustomerServiceProvider
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service services.CustomerServiceProvider) *CustomerHandler {
	return &CustomerHandler{service: service}
}

func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.GetAllCustomers(r.Context())
	if err != nil {
		writeError(w, r, err, "list customers")
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	customer, err := h.service.GetCustomerByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "get customer")
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.Customer
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		badRequest(w, err)
		return
	}
	payload.ID = 0
	customer, err := h.service.CreateCustomer(r.Context(), payload)
	if err != nil {
		writeError(w, r, err, "create customer")
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload models.CustomerUpdate
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		badRequest(w, err)
		return
	}
	customer, err := h.service.UpdateCustomer(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err, "update customer")
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		writeError(w, r, err, "delete customer")
		return
	}
	httpx.NoContent(w)
}
