package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// FileStore persists cookies to a JSON file so a session survives restarts.
type FileStore struct {
	mu      sync.Mutex
	path    string
	cookies map[string]cookie
	now     func() time.Time
}

// NewFileStore loads path, creating an empty store when it does not exist.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session file path is required")
	}
	s := &FileStore{path: path, cookies: make(map[string]cookie), now: time.Now}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.cookies); err != nil {
			return nil, fmt.Errorf("decode session file: %w", err)
		}
	}
	return s, nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cookies[key]
	if !ok || c.expired(s.now()) {
		return "", appErrors.ErrCacheMiss
	}
	return c.Value, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cookie{Value: value}
	if ttl > 0 {
		c.Expires = s.now().Add(ttl)
	}
	s.cookies[key] = c
	return s.flush()
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.cookies, key)
	}
	return s.flush()
}

func (s *FileStore) flush() error {
	now := s.now()
	for key, c := range s.cookies {
		if c.expired(now) {
			delete(s.cookies, key)
		}
	}
	payload, err := json.MarshalIndent(s.cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("prepare session directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
