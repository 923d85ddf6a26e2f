package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/service"
	"github.com/noah-isme/sma-adp-console/internal/session"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/response"
)

// ContextUserKey is the gin context key storing the signed-in user.
const ContextUserKey = "currentUser"

type sessionReporter interface {
	Session(ctx context.Context) service.SessionInfo
}

// RequireSession rejects requests while the console holds no usable
// credential. The signed-in user is stored under ContextUserKey.
func RequireSession(auth sessionReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := auth.Session(c.Request.Context())
		if info.State != session.StateAuthenticated {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user := info.User
		if user == nil && info.Claims != nil {
			user = &models.User{ID: info.Claims.Subject, Role: info.Claims.Role}
		}
		if user == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session has no user"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireSession.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
