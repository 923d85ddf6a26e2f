package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewarePropagatesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	var fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromCtx = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderKey, "abc")
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get(HeaderKey))
	assert.Equal(t, "abc", fromCtx)
}

func TestFromContextGeneratesWhenMissing(t *testing.T) {
	assert.NotEmpty(t, FromContext(context.Background()))
}
