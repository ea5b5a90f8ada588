package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/isdelr/inventory-manager-be/internal/models"
)

// TokenConfig carries the signing secret and token lifetime. It is passed to
// the issuer and verifier explicitly so each environment can use its own key.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (c TokenConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Claims defines the JWT claims structure. The user id travels in the
// registered "sub" claim.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs access tokens for verified users.
type Issuer struct {
	cfg TokenConfig
}

// NewIssuer creates an Issuer.
func NewIssuer(cfg TokenConfig) *Issuer {
	return &Issuer{cfg: cfg}
}

// IssuedToken is a signed token together with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Issue creates a new JWT for a user whose credentials were already checked.
func (i *Issuer) Issue(user models.User) (IssuedToken, error) {
	if !user.Role.Valid() {
		return IssuedToken{}, fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}
	if user.ID <= 0 || user.Username == "" {
		return IssuedToken{}, errors.New("cannot issue token for an unsaved user")
	}

	now := i.cfg.now()
	expirationTime := now.Add(i.cfg.TTL)
	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.cfg.Secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	// NumericDate truncates to whole seconds; report what the token carries.
	return IssuedToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verifier validates bearer tokens and rebuilds the Principal from claims.
type Verifier struct {
	cfg    TokenConfig
	parser *jwt.Parser
}

// NewVerifier creates a Verifier that only accepts HS256 tokens carrying an
// expiry.
func NewVerifier(cfg TokenConfig) *Verifier {
	return &Verifier{
		cfg: cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(cfg.now),
		),
	}
}

// Verify parses and validates tokenStr. It returns ErrExpiredCredential for
// a correctly signed but expired token and ErrInvalidCredential for anything
// else that fails.
func (v *Verifier) Verify(tokenStr string) (Principal, error) {
	if tokenStr == "" {
		return Principal{}, ErrUnauthenticated
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return v.cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrExpiredCredential
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !token.Valid {
		return Principal{}, ErrInvalidCredential
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidCredential)
	}
	if claims.Username == "" {
		return Principal{}, fmt.Errorf("%w: missing username", ErrInvalidCredential)
	}
	if !claims.Role.Valid() {
		return Principal{}, fmt.Errorf("%w: bad role", ErrInvalidCredential)
	}

	return Principal{
		ID:        id,
		Username:  claims.Username,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
