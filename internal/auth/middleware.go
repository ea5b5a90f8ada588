package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/rs/zerolog/hlog"
)

// UserChecker confirms that a token's user still exists and is active.
type UserChecker interface {
	IsActiveUser(ctx context.Context, id int64) (bool, error)
}

// MiddlewareOptions configures Authenticate.
type MiddlewareOptions struct {
	// Revoker, when set, rejects tokens revoked through logout.
	Revoker Revoker
	// Users, when set, rejects tokens whose user was deleted or deactivated.
	Users UserChecker
}

// WriteError writes an auth error with its status and reason code.
func WriteError(w http.ResponseWriter, err error) {
	status, reason, ok := Classify(err)
	if !ok {
		httpx.Error(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	var msg string
	switch reason {
	case ReasonAuthenticationFailed:
		msg = "Invalid username or password"
	case ReasonExpiredCredential:
		msg = "Token has expired"
	case ReasonUnauthenticated:
		msg = "Not authenticated"
	case ReasonForbidden:
		msg = "You do not have permission to access this resource"
	default:
		msg = "Invalid token"
	}
	httpx.Error(w, status, reason, msg)
}

// TokenFromRequest extracts the bearer token from the Authorization header.
// Websocket upgrades may pass it as the access_token query parameter instead.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

// Authenticate creates a middleware that verifies the bearer token and
// stores the resulting Principal in the request context.
func Authenticate(verifier *Verifier, opts MiddlewareOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := hlog.FromRequest(r)

			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				WriteError(w, ErrUnauthenticated)
				return
			}

			principal, err := verifier.Verify(tokenStr)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected bearer token")
				WriteError(w, err)
				return
			}

			if opts.Revoker != nil {
				revoked, err := opts.Revoker.IsRevoked(ctx, principal.TokenID)
				if err != nil {
					logger.Error().Err(err).Msg("Failed to check token revocation")
					httpx.Error(w, http.StatusInternalServerError, "internal_error", "Internal server error")
					return
				}
				if revoked {
					WriteError(w, ErrInvalidCredential)
					return
				}
			}

			if opts.Users != nil {
				active, err := opts.Users.IsActiveUser(ctx, principal.ID)
				if err != nil {
					logger.Error().Err(err).Int64("user_id", principal.ID).Msg("Failed to recheck token user")
					httpx.Error(w, http.StatusInternalServerError, "internal_error", "Internal server error")
					return
				}
				if !active {
					WriteError(w, ErrInvalidCredential)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

// RequireRoles creates a middleware that lets a request through only when
// its principal holds one of the listed roles.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := Authorize(r.Context(), roles...)
			if err != nil {
				if p.Username != "" {
					hlog.FromRequest(r).Warn().
						Str("username", p.Username).
						Str("role", string(p.Role)).
						Str("path", r.URL.Path).
						Msg("Role gate denied request")
				}
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
