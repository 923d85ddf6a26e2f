package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/service"
	"github.com/noah-isme/sma-adp-console/internal/session"
)

type stubSession struct{ info service.SessionInfo }

func (s stubSession) Session(context.Context) service.SessionInfo { return s.info }

type recordedRequest struct {
	method, path string
	status       int
}

type stubObserver struct{ requests []recordedRequest }

func (o *stubObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	o.requests = append(o.requests, recordedRequest{method: method, path: path, status: status})
}

func newRouter(info service.SessionInfo, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireSession(stubSession{info: info}))
	r.GET("/users/:id", RBAC(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
	})
	return r
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	r := newRouter(service.SessionInfo{State: session.StateAnonymous}, "admin")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireSessionFallsBackToClaims(t *testing.T) {
	r := newRouter(service.SessionInfo{
		State:  session.StateAuthenticated,
		Claims: &session.Claims{Subject: "u9", Role: models.RoleAdmin},
	}, "admin")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u9", body["id"])
}

func TestRBACAllowsSelfAndRejectsOthers(t *testing.T) {
	info := service.SessionInfo{State: session.StateAuthenticated, User: &models.User{ID: "u1", Role: models.RoleStudent}}
	r := newRouter(info, "admin", "SELF")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u2", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &stubObserver{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/fees/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fees/f1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, observer.requests, 2)
	assert.Equal(t, recordedRequest{method: http.MethodGet, path: "/fees/:id", status: http.StatusNoContent}, observer.requests[0])
	assert.Equal(t, "unmatched", observer.requests[1].path)
	assert.Equal(t, http.StatusNotFound, observer.requests[1].status)
}

func TestExtractMetaStampsProcessingTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/", func(c *gin.Context) {
		SetMeta(c, "source", "cache")
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "cache", meta["source"])
	assert.Contains(t, meta, processingTimeMs)
}
