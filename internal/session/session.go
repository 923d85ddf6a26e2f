package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// Cookie keys holding the session.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// DefaultTTL is the cookie lifetime used when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// State is the authentication state of the session.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Credentials are what a successful login or register returns.
type Credentials struct {
	Token        string
	RefreshToken string
	User         *models.User
}

// Claims is the decoded, unverified content of the bearer token.
type Claims struct {
	Subject   string          `json:"subject"`
	Role      models.UserRole `json:"role,omitempty"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
}

type tokenClaims struct {
	ID   string          `json:"id"`
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Session owns the credential cookies. It is the token source of the
// transport client.
type Session struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	onClear []func()
}

// New constructs a Session over store.
func New(store Store, ttl time.Duration, logger *zap.Logger) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: store, ttl: ttl, logger: logger}
}

// OnClear registers fn to run whenever the session is cleared.
func (s *Session) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// BearerToken returns the token to send. When the primary token is missing it
// falls back to the refresh token and persists it as the primary.
func (s *Session) BearerToken(ctx context.Context) string {
	if token := s.read(ctx, KeyToken); usable(token) {
		return token
	}
	refresh := s.read(ctx, KeyRefreshToken)
	if !usable(refresh) {
		return ""
	}
	if err := s.store.Set(ctx, KeyToken, refresh, s.ttl); err != nil {
		s.logger.Warn("failed to persist fallback token", zap.Error(err))
	}
	return refresh
}

// Token returns the stored primary token.
func (s *Session) Token(ctx context.Context) string {
	return s.read(ctx, KeyToken)
}

// RefreshToken returns the stored refresh token.
func (s *Session) RefreshToken(ctx context.Context) string {
	return s.read(ctx, KeyRefreshToken)
}

// State reports whether a usable credential is held.
func (s *Session) State(ctx context.Context) State {
	if usable(s.read(ctx, KeyToken)) || usable(s.read(ctx, KeyRefreshToken)) {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Establish persists freshly issued credentials. A missing refresh token
// removes any stored one.
func (s *Session) Establish(ctx context.Context, creds Credentials) error {
	if !usable(creds.Token) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "no token issued")
	}
	if err := s.store.Set(ctx, KeyToken, creds.Token, s.ttl); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if usable(creds.RefreshToken) {
		if err := s.store.Set(ctx, KeyRefreshToken, creds.RefreshToken, s.ttl); err != nil {
			return fmt.Errorf("persist refresh token: %w", err)
		}
	} else if err := s.store.Delete(ctx, KeyRefreshToken); err != nil {
		return fmt.Errorf("drop refresh token: %w", err)
	}
	if creds.User != nil {
		return s.SetUser(ctx, creds.User)
	}
	return nil
}

// User returns the last-known profile stored in the user cookie.
func (s *Session) User(ctx context.Context) (*models.User, error) {
	raw, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode user cookie: %w", err)
	}
	return &user, nil
}

// SetUser writes the profile into the user cookie.
func (s *Session) SetUser(ctx context.Context, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user cookie: %w", err)
	}
	return s.store.Set(ctx, KeyUser, string(payload), s.ttl)
}

// Clear removes every credential cookie and notifies listeners.
func (s *Session) Clear(ctx context.Context) error {
	err := s.store.Delete(ctx, KeyToken, KeyRefreshToken, KeyUser)

	s.mu.Lock()
	listeners := append([]func(){}, s.onClear...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	return err
}

// Claims decodes the bearer token without verifying its signature; the
// backend remains the authority on validity.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	token := s.BearerToken(ctx)
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "malformed token")
	}
	claims := &Claims{Subject: tc.Subject, Role: tc.Role}
	if claims.Subject == "" {
		claims.Subject = tc.ID
	}
	if tc.ExpiresAt != nil {
		exp := tc.ExpiresAt.Time
		claims.ExpiresAt = &exp
	}
	return claims, nil
}

func (s *Session) read(ctx context.Context, key string) string {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("session store read failed", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	return value
}

func usable(token string) bool {
	return token != "" && token != "undefined" && token != "null"
}
