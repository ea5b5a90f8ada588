package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRevoker map[string]bool

func (m memRevoker) Revoke(_ context.Context, id string, _ time.Time) error {
	m[id] = true
	return nil
}

func (m memRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	return m[id], nil
}

type stubUsers struct {
	active bool
	err    error
}

func (s stubUsers) IsActiveUser(context.Context, int64) (bool, error) {
	return s.active, s.err
}

func issueFor(t *testing.T, role models.Role) (string, Principal) {
	t.Helper()
	cfg := TokenConfig{Secret: testSecret, TTL: time.Hour}
	u := models.User{ID: 3, Username: "someone", Role: role}
	issued, err := NewIssuer(cfg).Issue(u)
	require.NoError(t, err)
	p, err := NewVerifier(cfg).Verify(issued.Token)
	require.NoError(t, err)
	return issued.Token, p
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		httpx.JSON(w, http.StatusOK, p)
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorBody {
	t.Helper()
	var body httpx.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthenticate(t *testing.T) {
	verifier := NewVerifier(TokenConfig{Secret: testSecret})
	token, _ := issueFor(t, models.RoleUser)

	expired, err := NewIssuer(TokenConfig{
		Secret: testSecret, TTL: time.Hour, Now: fixedClock(time.Now().Add(-2 * time.Hour)),
	}).Issue(models.User{ID: 3, Username: "someone", Role: models.RoleUser})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantReason string
	}{
		{"valid token", "Bearer " + token, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + token, http.StatusOK, ""},
		{"no header", "", http.StatusUnauthorized, ReasonUnauthenticated},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ReasonUnauthenticated},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, ReasonInvalidCredential},
		{"expired token", "Bearer " + expired.Token, http.StatusUnauthorized, ReasonExpiredCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(verifier, MiddlewareOptions{})(principalEcho()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, decodeError(t, rec).Reason)
			}
		})
	}
}

func TestAuthenticate_PutsPrincipalInContext(t *testing.T) {
	verifier := NewVerifier(TokenConfig{Secret: testSecret})
	token, want := issueFor(t, models.RoleManager)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Authenticate(verifier, MiddlewareOptions{})(principalEcho()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got Principal
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Username, got.Username)
	assert.Equal(t, want.Role, got.Role)
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	verifier := NewVerifier(TokenConfig{Secret: testSecret})
	token, p := issueFor(t, models.RoleUser)
	revoker := memRevoker{}
	require.NoError(t, revoker.Revoke(context.Background(), p.TokenID, p.ExpiresAt))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Authenticate(verifier, MiddlewareOptions{Revoker: revoker})(principalEcho()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ReasonInvalidCredential, decodeError(t, rec).Reason)
}

func TestAuthenticate_UserRecheck(t *testing.T) {
	verifier := NewVerifier(TokenConfig{Secret: testSecret})
	token, _ := issueFor(t, models.RoleUser)

	tests := []struct {
		name       string
		users      stubUsers
		wantStatus int
	}{
		{"active user", stubUsers{active: true}, http.StatusOK},
		{"inactive or deleted user", stubUsers{active: false}, http.StatusUnauthorized},
		{"store failure", stubUsers{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			Authenticate(verifier, MiddlewareOptions{Users: tt.users})(principalEcho()).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestTokenFromRequest_WebsocketQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ws?access_token=abc", nil)
	assert.Empty(t, TokenFromRequest(req), "query token only counts for websocket upgrades")

	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	assert.Equal(t, "abc", TokenFromRequest(req))
}

func TestRequireRoles(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name       string
		principal  *Principal
		allowed    []models.Role
		wantStatus int
		wantReason string
	}{
		{"admin allowed", &Principal{ID: 1, Username: "admin", Role: models.RoleAdmin}, []models.Role{models.RoleAdmin}, http.StatusOK, ""},
		{"manager forbidden from admin route", &Principal{ID: 2, Username: "manager", Role: models.RoleManager}, []models.Role{models.RoleAdmin}, http.StatusForbidden, ReasonForbidden},
		{"no hierarchy", &Principal{ID: 1, Username: "admin", Role: models.RoleAdmin}, []models.Role{models.RoleManager}, http.StatusForbidden, ReasonForbidden},
		{"user in list", &Principal{ID: 3, Username: "johndoe", Role: models.RoleUser}, []models.Role{models.RoleAdmin, models.RoleManager, models.RoleUser}, http.StatusOK, ""},
		{"no principal", nil, []models.Role{models.RoleAdmin}, http.StatusUnauthorized, ReasonUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()
			RequireRoles(tt.allowed...)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, decodeError(t, rec).Reason)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	status, reason, ok := Classify(ErrForbidden)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, ReasonForbidden, reason)

	_, _, ok = Classify(errors.New("other"))
	assert.False(t, ok)
}
