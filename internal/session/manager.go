package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/volunteermap/internal/api"
	"github.com/mmynk/volunteermap/internal/auth"
	"github.com/mmynk/volunteermap/internal/models"
	"github.com/mmynk/volunteermap/internal/storage"
)

// Cache keys for the persisted login.
const (
	UserInfoKey    = "userInfo"
	AccessTokenKey = "accessToken"
)

// Authenticator exchanges credentials for a user and token. *api.Client implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.AuthResponse, error)
}

// Manager restores, creates, and ends logins, keeping the Session and the
// persistent cache in step.
type Manager struct {
	cache   storage.Cache
	authn   Authenticator
	session *Session
	logger  *slog.Logger
}

// NewManager creates a manager that drives sess. logger may be nil.
func NewManager(cache storage.Cache, authn Authenticator, sess *Session, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cache: cache, authn: authn, session: sess, logger: logger}
}

// Session returns the session the manager drives.
func (m *Manager) Session() *Session {
	return m.session
}

// Restore loads a previous login from the cache. It reports false, leaving the
// session empty, when there is no cached login or its token has expired.
func (m *Manager) Restore(ctx context.Context, now time.Time) (bool, error) {
	var token string
	found, err := m.cache.Get(ctx, AccessTokenKey, &token)
	if err != nil {
		return false, fmt.Errorf("failed to read access token: %w", err)
	}
	if !found || auth.TokenExpired(token, now) {
		m.session.Clear()
		return false, nil
	}

	var user models.User
	found, err = m.cache.Get(ctx, UserInfoKey, &user)
	if err != nil {
		return false, fmt.Errorf("failed to read user info: %w", err)
	}
	if !found || user.ID == "" {
		m.session.Clear()
		return false, nil
	}

	m.session.Set(&user, token)
	m.logger.Debug("Session restored", "user_id", user.ID)
	return true, nil
}

// Login validates the form input, authenticates, and persists the result.
// Validation failures are api.KindValidation; everything else is
// api.KindAuthentication, carrying the server's message when it sent one.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = auth.SanitizeEmail(email)
	if err := auth.ValidateLogin(email, password); err != nil {
		return nil, api.NewError(api.KindValidation, err)
	}

	resp, err := m.authn.Authenticate(ctx, email, password)
	if err != nil {
		m.logger.Warn("Login failed", "email", email, "status", api.StatusOf(err), "error", err)
		apiErr := api.NewError(api.KindAuthentication, err)
		if msg := api.MessageOf(err); msg != "" {
			apiErr.WithMessage(msg)
		}
		return nil, apiErr
	}

	// Both keys are written together so a restart never pairs one user's
	// record with another user's token.
	login := map[string]any{
		UserInfoKey:    resp.User,
		AccessTokenKey: resp.AccessToken,
	}
	if err := m.cache.SetMany(ctx, login); err != nil {
		return nil, api.NewError(api.KindAuthentication, fmt.Errorf("failed to persist login: %w", err))
	}

	m.session.Set(&resp.User, resp.AccessToken)
	m.logger.Info("Login successful", "user_id", resp.User.ID)
	return m.session.User(), nil
}

// Logout forgets the cached login and clears the session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.cache.Remove(ctx, UserInfoKey, AccessTokenKey); err != nil {
		return fmt.Errorf("failed to clear cached login: %w", err)
	}
	m.session.Clear()
	m.logger.Info("Logged out")
	return nil
}
