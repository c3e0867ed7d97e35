package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/hirepath/admin-console/pkg/errors"
)

// Store holds the persisted client credentials. It is written exactly at
// login/signup/logout time and read by the API client at dispatch time.
type Store interface {
	Token() string
	UserID() string
	AdminName() string
	SetCredentials(token, userID, adminName string) error
	Clear() error
}

type state struct {
	Token     string `json:"token,omitempty"`
	UserID    string `json:"userId,omitempty"`
	AdminName string `json:"adminName,omitempty"`
}

// FileStore persists credentials as a JSON file with 0600 permissions.
type FileStore struct {
	path string

	mu    sync.RWMutex
	cache state
}

// NewFileStore loads any existing session file at path. A missing file is a
// valid logged-out state, not an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session file")
	}
	if err := json.Unmarshal(raw, &s.cache); err != nil {
		// A corrupt session file degrades to logged-out rather than failing startup.
		s.cache = state{}
	}
	return s, nil
}

// Token returns the persisted bearer credential, empty when logged out.
func (s *FileStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Token
}

// UserID returns the persisted secondary identifier header value.
func (s *FileStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.UserID
}

// AdminName returns the display name shown in the console header.
func (s *FileStore) AdminName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.AdminName
}

// SetCredentials persists a new session atomically.
func (s *FileStore) SetCredentials(token, userID, adminName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = state{Token: token, UserID: userID, AdminName: adminName}
	return s.flush()
}

// Clear removes the persisted session.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = state{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove session file")
	}
	return nil
}

func (s *FileStore) flush() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session directory")
		}
	}
	raw, err := json.Marshal(s.cache)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode session")
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write session file")
	}
	return nil
}

// TokenExpiry reads the expiry claim of a bearer token without verifying the
// signature. The console uses it to warn about stale sessions before a call
// round-trips just to fail with 401.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
