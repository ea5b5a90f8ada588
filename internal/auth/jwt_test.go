package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-for-unit-tests")

func testUser() models.User {
	return models.User{ID: 7, Username: "manager", Role: models.RoleManager, IsActive: true}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	cfg := TokenConfig{Secret: testSecret, TTL: 24 * time.Hour}
	issued, err := NewIssuer(cfg).Issue(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), issued.ExpiresAt, 2*time.Second)

	p, err := NewVerifier(cfg).Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "manager", p.Username)
	assert.Equal(t, models.RoleManager, p.Role)
	assert.NotEmpty(t, p.TokenID)
	assert.True(t, issued.ExpiresAt.Equal(p.ExpiresAt))
}

func TestIssue_ClaimSet(t *testing.T) {
	now := time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC)
	cfg := TokenConfig{Secret: testSecret, TTL: 24 * time.Hour, Now: fixedClock(now)}
	issued, err := NewIssuer(cfg).Issue(testUser())
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(issued.Token, claims)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "manager", claims.Username)
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.True(t, now.Add(24*time.Hour).Equal(claims.ExpiresAt.Time))
	assert.True(t, now.Equal(claims.IssuedAt.Time))
}

func TestIssue_RejectsInvalidRole(t *testing.T) {
	issuer := NewIssuer(TokenConfig{Secret: testSecret, TTL: time.Hour})

	for _, role := range []models.Role{"", "root", "Admin"} {
		u := testUser()
		u.Role = role
		_, err := issuer.Issue(u)
		assert.ErrorIs(t, err, ErrInvalidRole, string(role))
	}
}

func TestIssue_RejectsUnsavedUser(t *testing.T) {
	u := testUser()
	u.ID = 0
	_, err := NewIssuer(TokenConfig{Secret: testSecret, TTL: time.Hour}).Issue(u)
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	past := time.Now().Add(-25 * time.Hour)
	issued, err := NewIssuer(TokenConfig{Secret: testSecret, TTL: 24 * time.Hour, Now: fixedClock(past)}).Issue(testUser())
	require.NoError(t, err)

	_, err = NewVerifier(TokenConfig{Secret: testSecret}).Verify(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredCredential)
}

func TestVerify_ClockSkewMakesValidTokenExpire(t *testing.T) {
	cfg := TokenConfig{Secret: testSecret, TTL: time.Hour}
	issued, err := NewIssuer(cfg).Issue(testUser())
	require.NoError(t, err)

	skewed := TokenConfig{Secret: testSecret, Now: fixedClock(time.Now().Add(2 * time.Hour))}
	_, err = NewVerifier(skewed).Verify(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredCredential)
}

func TestVerify_TamperedSignature(t *testing.T) {
	cfg := TokenConfig{Secret: testSecret, TTL: time.Hour}
	issued, err := NewIssuer(cfg).Issue(testUser())
	require.NoError(t, err)

	// Flip a character in the middle of the signature segment so the decoded
	// bytes change.
	idx := strings.LastIndex(issued.Token, ".") + 10
	b := []byte(issued.Token)
	if b[idx] == 'A' {
		b[idx] = 'B'
	} else {
		b[idx] = 'A'
	}

	_, err = NewVerifier(cfg).Verify(string(b))
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_WrongSecret(t *testing.T) {
	issued, err := NewIssuer(TokenConfig{Secret: []byte("secret1"), TTL: time.Hour}).Issue(testUser())
	require.NoError(t, err)

	_, err = NewVerifier(TokenConfig{Secret: []byte("secret2")}).Verify(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_Malformed(t *testing.T) {
	v := NewVerifier(TokenConfig{Secret: testSecret})

	_, err := v.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = v.Verify("")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key interface{}) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	v := NewVerifier(TokenConfig{Secret: testSecret})
	claims := &Claims{
		Username: "admin",
		Role:     models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	_, err := v.Verify(signRaw(t, jwt.SigningMethodHS384, claims, testSecret))
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = v.Verify(signRaw(t, jwt.SigningMethodNone, claims, jwt.UnsafeAllowNoneSignatureType))
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_MissingClaims(t *testing.T) {
	v := NewVerifier(TokenConfig{Secret: testSecret})
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		claims *Claims
	}{
		{"no expiry", &Claims{Username: "admin", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}},
		{"no subject", &Claims{Username: "admin", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}},
		{"non numeric subject", &Claims{Username: "admin", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "abc", ExpiresAt: exp}}},
		{"no username", &Claims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}}},
		{"unknown role", &Claims{Username: "admin", Role: "root", RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(signRaw(t, jwt.SigningMethodHS256, tt.claims, testSecret))
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}
