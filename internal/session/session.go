package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/cinehint/internal/models"
)

// Session pairs the persisted token with the in-memory user profile.
//
// Token reads go to the store on every call so a token written by another process is picked up.
type Session struct {
	mu    sync.RWMutex
	store Store
	user  *models.UserProfile
}

// New creates a Session over store.
func New(store Store) *Session {
	return &Session{store: store}
}

// Token returns the stored token, or "" when signed out.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.store.Get(ctx)
}

// HasToken reports whether a token is stored. Storage errors count as no token.
func (s *Session) HasToken(ctx context.Context) bool {
	token, err := s.store.Get(ctx)
	return err == nil && token != ""
}

// User returns a copy of the current profile, or nil when none is loaded.
func (s *Session) User() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a profile is loaded.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// SetUser replaces the in-memory profile.
func (s *Session) SetUser(u *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	c := *u
	s.user = &c
}

// Establish persists token and then sets user. The profile is left untouched when the write fails.
func (s *Session) Establish(ctx context.Context, token string, user models.UserProfile) error {
	if token == "" {
		return fmt.Errorf("cannot establish session without a token")
	}
	if err := s.store.Set(ctx, token); err != nil {
		return err
	}
	s.SetUser(&user)
	return nil
}

// Destroy clears the token and the profile. The profile is cleared even when the store fails.
func (s *Session) Destroy(ctx context.Context) error {
	s.SetUser(nil)
	return s.store.Clear(ctx)
}
