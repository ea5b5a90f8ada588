package auth

import (
	"errors"
	"net/http"
)

// Sentinel errors for the authentication and authorization flow.
var (
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrExpiredCredential    = errors.New("token has expired")
	ErrInvalidCredential    = errors.New("invalid token")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("insufficient role for this resource")

	// ErrInvalidRole is returned when issuing a token for a role outside the
	// enumerated set.
	ErrInvalidRole = errors.New("invalid role")
)

// Reason codes surfaced to clients alongside the HTTP status.
const (
	ReasonAuthenticationFailed = "authentication_failed"
	ReasonExpiredCredential    = "expired_credential"
	ReasonInvalidCredential    = "invalid_credential"
	ReasonUnauthenticated      = "unauthenticated"
	ReasonForbidden            = "forbidden"
)

// Classify maps an auth error to its HTTP status and reason code. ok is false
// when err is not part of the auth taxonomy.
func Classify(err error) (status int, reason string, ok bool) {
	switch {
	case errors.Is(err, ErrAuthenticationFailed):
		return http.StatusUnauthorized, ReasonAuthenticationFailed, true
	case errors.Is(err, ErrExpiredCredential):
		return http.StatusUnauthorized, ReasonExpiredCredential, true
	case errors.Is(err, ErrInvalidCredential):
		return http.StatusUnauthorized, ReasonInvalidCredential, true
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, ReasonUnauthenticated, true
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ReasonForbidden, true
	}
	return 0, "", false
}
