package handlers

import (
	"net/http"

	"github.com/isdelr/inventory-manager-be/internal/auth"
	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/isdelr/inventory-manager-be/internal/services"
)

// AuthHandler handles login, logout and the current-user profile.
type AuthHandler struct {
	service services.AuthServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login exchanges a username and password for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload models.LoginRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		badRequest(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, r, err, "log in")
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		auth.WriteError(w, auth.ErrUnauthenticated)
		return
	}
	user, err := h.service.Me(r.Context(), p)
	if err != nil {
		writeError(w, r, err, "load current user")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Logout revokes the token used for this request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		auth.WriteError(w, auth.ErrUnauthenticated)
		return
	}
	if err := h.service.Logout(r.Context(), p); err != nil {
		writeError(w, r, err, "log out")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
