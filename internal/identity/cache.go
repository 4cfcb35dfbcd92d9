package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// CachedSession is the provider-side session kept between runs so the prompt can sign in silently.
type CachedSession struct {
	Token   *oauth2.Token `json:"token"`
	IDToken string        `json:"id_token,omitempty"`
}

// Hint returns the email (or subject) claim of the cached id token, for display only.
//
// The token is not verified here; the backend verifies it during the credential exchange.
func (c *CachedSession) Hint() string {
	if c == nil || c.IDToken == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.IDToken, claims); err != nil {
		return ""
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	sub, _ := claims.GetSubject()
	return sub
}

// TokenCache persists a [CachedSession].
type TokenCache interface {
	Load() (*CachedSession, error)
	Save(s *CachedSession) error
	Clear() error
}

// FileTokenCache stores the cached session as JSON readable only by the current user.
type FileTokenCache struct {
	Path string
}

// Load returns nil with no error when nothing is cached.
func (f FileTokenCache) Load() (*CachedSession, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	var s CachedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse token cache: %w", err)
	}
	if s.Token == nil || s.Token.RefreshToken == "" {
		return nil, nil
	}
	return &s, nil
}

// Save writes s, creating the parent directory.
func (f FileTokenCache) Save(s *CachedSession) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create token cache directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token cache: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// Clear removes the cache file. A missing file is not an error.
func (f FileTokenCache) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token cache: %w", err)
	}
	return nil
}
