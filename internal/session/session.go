// Package session tracks the logged-in user and persists it across restarts.
package session

import (
	"sync"

	"github.com/mmynk/volunteermap/internal/models"
)

// Session holds at most one logged-in user and their access token.
// It is passed explicitly to the workflows that need an identity.
type Session struct {
	mu    sync.RWMutex
	user  *models.User
	token string
}

// New returns a session for user, or an empty one if user is nil.
func New(user *models.User, token string) *Session {
	s := &Session{}
	if user != nil {
		s.Set(user, token)
	}
	return s
}

// User returns a copy of the current user, or nil when logged out.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID returns the current user's ID, or "" when logged out.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// AccessToken implements api.TokenSource.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the user and token.
func (s *Session) Set(user *models.User, token string) {
	u := *user
	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()
}

// Clear logs the session out.
func (s *Session) Clear() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}
