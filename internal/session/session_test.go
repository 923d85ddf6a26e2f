package session

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

type recordingNavigator struct{ paths []string }

func (r *recordingNavigator) Navigate(path string) { r.paths = append(r.paths, path) }

func TestBearerTokenFallsBackToRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyToken, "undefined", time.Hour))
	require.NoError(t, store.Set(ctx, KeyRefreshToken, "refresh-1", time.Hour))
	sess := New(store, time.Hour, zap.NewNop())

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()

	client, err := transport.New(transport.Config{BaseURL: srv.URL}, sess)
	require.NoError(t, err)
	_, err = client.Do(ctx, transport.Request{Path: "/api/auth/profile"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer refresh-1", gotAuth)
	assert.Equal(t, "refresh-1", sess.Token(ctx))
}

func TestBearerTokenIgnoresSentinels(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyToken, "null", time.Hour))
	sess := New(store, time.Hour, nil)

	assert.Empty(t, sess.BearerToken(ctx))
	assert.Equal(t, StateAnonymous, sess.State(ctx))
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	ctx := context.Background()
	sess := New(NewMemoryStore(), time.Hour, nil)
	require.NoError(t, sess.Establish(ctx, Credentials{Token: "tok", RefreshToken: "ref", User: &models.User{ID: "u1"}}))

	cleared := false
	sess.OnClear(func() { cleared = true })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	nav := &recordingNavigator{}
	client, err := transport.New(transport.Config{BaseURL: srv.URL, Navigator: nav}, sess)
	require.NoError(t, err)
	_, err = client.Do(ctx, transport.Request{Path: "/api/users"})
	require.Error(t, err)

	assert.Empty(t, sess.Token(ctx))
	assert.Empty(t, sess.RefreshToken(ctx))
	_, userErr := sess.User(ctx)
	assert.True(t, stdErrors.Is(userErr, appErrors.ErrCacheMiss))
	assert.Equal(t, []string{"/login"}, nav.paths)
	assert.True(t, cleared)
	assert.Equal(t, StateAnonymous, sess.State(ctx))
}

func TestEstablishPersistsUser(t *testing.T) {
	ctx := context.Background()
	sess := New(NewMemoryStore(), time.Hour, nil)
	require.NoError(t, sess.Establish(ctx, Credentials{Token: "tok", User: &models.User{ID: "u1", Role: models.RoleAdmin}}))

	user, err := sess.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, StateAuthenticated, sess.State(ctx))
	assert.Empty(t, sess.RefreshToken(ctx))

	assert.Error(t, sess.Establish(ctx, Credentials{Token: "undefined"}))
}

func TestEstablishWithoutRefreshTokenDropsStoredOne(t *testing.T) {
	ctx := context.Background()
	sess := New(NewMemoryStore(), time.Hour, nil)
	require.NoError(t, sess.Establish(ctx, Credentials{Token: "tok-a", RefreshToken: "ref-a"}))
	require.Equal(t, "ref-a", sess.RefreshToken(ctx))

	require.NoError(t, sess.Establish(ctx, Credentials{Token: "tok-b"}))
	assert.Equal(t, "tok-b", sess.Token(ctx))
	assert.Empty(t, sess.RefreshToken(ctx))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, KeyToken, "tok", time.Hour))

	value, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", value)

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, KeyToken)
	assert.True(t, stdErrors.Is(err, appErrors.ErrCacheMiss))
}

func TestFileStoreSurvivesReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyToken, "tok", time.Hour))
	require.NoError(t, store.Set(ctx, KeyUser, `{"id":"u1"}`, time.Hour))

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	value, err := reloaded.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", value)

	require.NoError(t, reloaded.Delete(ctx, KeyToken, KeyUser))
	again, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = again.Get(ctx, KeyToken)
	assert.True(t, stdErrors.Is(err, appErrors.ErrCacheMiss))
}

func TestClaimsDecodesToken(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": "teacher",
		"exp":  exp.Unix(),
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	sess := New(NewMemoryStore(), time.Hour, nil)
	require.NoError(t, sess.Establish(ctx, Credentials{Token: token}))

	claims, err := sess.Claims(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, exp.Equal(*claims.ExpiresAt))
}

func TestClaimsRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	sess := New(NewMemoryStore(), time.Hour, nil)
	_, err := sess.Claims(ctx)
	assert.Error(t, err)

	require.NoError(t, sess.Establish(ctx, Credentials{Token: "not-a-jwt"}))
	_, err = sess.Claims(ctx)
	assert.True(t, stdErrors.Is(err, appErrors.ErrUnauthorized))
}
