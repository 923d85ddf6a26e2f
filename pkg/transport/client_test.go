package transport

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	cleared bool
}

func (f *fakeTokens) BearerToken(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared = true
	return nil
}

type fakeNavigator struct{ paths []string }

func (f *fakeNavigator) Navigate(path string) { f.paths = append(f.paths, path) }

type fakeObserver struct {
	routes   []string
	statuses []int
}

func (f *fakeObserver) ObserveAPIRequest(_, route string, status int, _ time.Duration) {
	f.routes = append(f.routes, route)
	f.statuses = append(f.statuses, status)
}

func newTestClient(t *testing.T, srv *httptest.Server, tokens TokenSource, nav Navigator, obs Observer) *Client {
	t.Helper()
	client, err := New(Config{BaseURL: srv.URL, Timeout: time.Second, Navigator: nav, Observer: obs}, tokens)
	require.NoError(t, err)
	return client
}

func TestNormalizeMessageJoinsValidationIssues(t *testing.T) {
	body := `{"message":"Validation failed","errors":[{"path":"email","message":"Invalid"},{"path":"password","message":"Too short"}]}`
	assert.Equal(t, "Validation failed - email: Invalid; password: Too short", NormalizeMessage([]byte(body)))
}

func TestNormalizeMessageVariants(t *testing.T) {
	cases := map[string]string{
		``:                                    DefaultFailureMessage,
		`not json`:                            DefaultFailureMessage,
		`{}`:                                  DefaultFailureMessage,
		`{"message":"Email already exists"}`:  "Email already exists",
		`{"error":"boom"}`:                    "boom",
		`{"error":{"code":"X","message":"y"}}`: "y",
		`{"errors":["first","second"]}`:       "first; second",
		`{"message":"Bad","errors":[{"path":["address","city"],"message":"Required"},{"message":"General"}]}`: "Bad - address.city: Required; General",
		`{"message":"Bad","errors":{"name":"Required","email":"Invalid"}}`:                                    "Bad - email: Invalid; name: Required",
	}
	for body, want := range cases {
		assert.Equal(t, want, NormalizeMessage([]byte(body)), body)
	}
}

func TestDecodeShapes(t *testing.T) {
	type item struct {
		ID string `json:"id"`
	}

	got, err := Decode[item](Enveloped, []byte(`{"success":true,"data":{"id":"1"},"message":"ok"}`))
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	got, err = Decode[item](Bare, []byte(`{"id":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, "2", got.ID)

	_, err = Decode[item](Enveloped, []byte(`{"success":false,"message":"nope"}`))
	require.Error(t, err)
	assert.Equal(t, "nope", appErrors.Message(err))
	assert.True(t, stdErrors.Is(err, appErrors.ErrRequestFailed))
	assert.True(t, appErrors.HasStatus(err, http.StatusBadGateway))

	_, err = Decode[item](Bare, []byte(`{"id":`))
	require.Error(t, err)
	assert.True(t, appErrors.HasStatus(err, http.StatusBadGateway))

	empty, err := Decode[*item](Bare, nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestFetchRejectedEnvelopeIsNotSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Fee already paid"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, &fakeTokens{token: "tok"}, nil, nil)
	_, err := Fetch[map[string]string](context.Background(), client, Enveloped, Request{Method: http.MethodPost, Path: "/api/fees/f1/payments", Body: struct{}{}})
	require.Error(t, err)
	assert.Equal(t, "Fee already paid", appErrors.Message(err))
	assert.True(t, appErrors.HasStatus(err, http.StatusBadGateway))
}

func TestClientAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"success":true,"data":["a"]}`))
	}))
	defer srv.Close()

	obs := &fakeObserver{}
	client := newTestClient(t, srv, &fakeTokens{token: "tok"}, nil, obs)
	out, err := Fetch[[]string](context.Background(), client, Enveloped, Request{
		Method: http.MethodGet,
		Path:   "/api/users",
		Query:  url.Values{"role": {"student"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "role=student", gotQuery)
	assert.Equal(t, []string{"/api/users"}, obs.routes)
	assert.Equal(t, []int{http.StatusOK}, obs.statuses)
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, &fakeTokens{}, nil, nil)
	_, err := client.Do(context.Background(), Request{Path: "/api/auth/login", Method: http.MethodPost, Body: map[string]string{"email": "a"}})
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestClientUnauthorizedClearsSessionAndNavigates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale"}
	nav := &fakeNavigator{}
	client := newTestClient(t, srv, tokens, nav, nil)

	_, err := client.Do(context.Background(), Request{Path: "/api/fees"})
	require.Error(t, err)
	assert.True(t, stdErrors.Is(err, appErrors.ErrUnauthorized))
	assert.True(t, tokens.cleared)
	assert.Equal(t, []string{"/login"}, nav.paths)
}

func TestClientConflictKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"message":"Email already exists"}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "tok"}
	nav := &fakeNavigator{}
	client := newTestClient(t, srv, tokens, nav, nil)

	_, err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/students", Body: struct{}{}})
	require.Error(t, err)
	assert.True(t, appErrors.HasStatus(err, http.StatusConflict))
	assert.Equal(t, "Email already exists", appErrors.Message(err))
	assert.False(t, tokens.cleared)
	assert.Empty(t, nav.paths)
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(t, srv, nil, nil, nil)
	_, err := client.Do(context.Background(), Request{Path: "/api/settings"})
	require.Error(t, err)
	assert.True(t, stdErrors.Is(err, appErrors.ErrRequestFailed))
	assert.Equal(t, "request failed", appErrors.Message(err))
}

func TestClientSendsMultipart(t *testing.T) {
	var field, fileBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		field = r.FormValue("notes")
		f, _, err := r.FormFile("attachment")
		require.NoError(t, err)
		raw, _ := io.ReadAll(f)
		fileBody = string(raw)
		_, _ = w.Write([]byte(`{"id":"b1"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil, nil, nil)
	_, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/library/borrows/b1/return",
		Form: &Multipart{
			Fields: map[string]string{"notes": "late"},
			Files:  []FilePart{{Field: "attachment", Filename: "receipt.txt", Content: strings.NewReader("paid")}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "late", field)
	assert.Equal(t, "paid", fileBody)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "::nope"}, nil)
	assert.Error(t, err)
}
