package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/isdelr/inventory-manager-be/internal/auth"
	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/rs/zerolog/log"
)

// AuthServiceProvider defines the interface for login, logout and profile
// lookups.
type AuthServiceProvider interface {
	Login(ctx context.Context, username, password string) (models.TokenResponse, error)
	Logout(ctx context.Context, p auth.Principal) error
	Me(ctx context.Context, p auth.Principal) (models.User, error)
}

// AuthService checks credentials and hands out tokens.
type AuthService struct {
	users   UserServiceProvider
	hasher  PasswordHasher
	issuer  *auth.Issuer
	revoker auth.Revoker
	events  EventServiceProvider

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. revoker and events may be nil.
func NewAuthService(users UserServiceProvider, hasher PasswordHasher, issuer *auth.Issuer, revoker auth.Revoker, events EventServiceProvider) *AuthService {
	return &AuthService{users: users, hasher: hasher, issuer: issuer, revoker: revoker, events: events}
}

// burnHash spends the same hashing work as a real check so unknown usernames
// cannot be told apart by response time.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			log.Error().Err(err).Msg("Failed to prepare dummy password hash")
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		s.hasher.Verify(password, s.dummyHash)
	}
}

// Login verifies username and password and issues an access token. Unknown
// users, wrong passwords and inactive accounts all fail with
// auth.ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.TokenResponse, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return models.TokenResponse{}, err
		}
		s.burnHash(password)
		s.loginFailed(ctx, username, "unknown username")
		return models.TokenResponse{}, auth.ErrAuthenticationFailed
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(ctx, username, "wrong password")
		return models.TokenResponse{}, auth.ErrAuthenticationFailed
	}
	if !user.IsActive {
		s.loginFailed(ctx, username, "inactive account")
		return models.TokenResponse{}, auth.ErrAuthenticationFailed
	}

	issued, err := s.issuer.Issue(user)
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User logged in")
	record(ctx, s.events, "auth.login", "info", fmt.Sprintf("User '%s' logged in", user.Username), &user.Username)

	user.PasswordHash = ""
	return models.TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "bearer",
		ExpiresAt:   issued.ExpiresAt,
		User:        user,
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, username, cause string) {
	log.Warn().Str("username", username).Str("cause", cause).Msg("Login rejected")
	record(ctx, s.events, "auth.login.fail", "warn", fmt.Sprintf("Failed login for '%s'", username), nil)
}

// Logout revokes the principal's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, p auth.Principal) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, p.TokenID, p.ExpiresAt); err != nil {
		return err
	}
	record(ctx, s.events, "auth.logout", "info", fmt.Sprintf("User '%s' logged out", p.Username), &p.Username)
	return nil
}

// Me returns the stored profile of the principal. A principal whose user is
// gone gets auth.ErrInvalidCredential.
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (models.User, error) {
	user, err := s.users.GetUserByID(ctx, p.ID)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, auth.ErrInvalidCredential
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
