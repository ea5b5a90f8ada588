package handlers

import (
	"net/http"

	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/isdelr/inventory-manager-be/internal/services"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// GetAll lists every user.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, r, err, "list users")
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "get user")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Create provisions a new user account.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.UserCreate
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		badRequest(w, err)
		return
	}
	user, err := h.service.CreateUser(r.Context(), payload)
	if err != nil {
		writeError(w, r, err, "create user")
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

// Update applies a partial update to a user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload models.UserUpdate
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		badRequest(w, err)
		return
	}
	user, err := h.service.UpdateUser(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err, "update user")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err, "delete user")
		return
	}
	httpx.NoContent(w)
}
