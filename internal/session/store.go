package session

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// Store is a cookie-like key/value store with per-key expiry. Get returns
// errors.ErrCacheMiss for absent or expired keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type cookie struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

func (c cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// MemoryStore keeps cookies in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	cookies map[string]cookie
	now     func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cookies: make(map[string]cookie), now: time.Now}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cookies[key]
	if !ok {
		return "", appErrors.ErrCacheMiss
	}
	if c.expired(s.now()) {
		delete(s.cookies, key)
		return "", appErrors.ErrCacheMiss
	}
	return c.Value, nil
}

// Set implements Store. A non-positive ttl keeps the cookie until deleted.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cookie{Value: value}
	if ttl > 0 {
		c.Expires = s.now().Add(ttl)
	}
	s.cookies[key] = c
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.cookies, key)
	}
	return nil
}
