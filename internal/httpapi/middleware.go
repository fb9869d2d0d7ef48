package httpapi

import (
	"errors"
	"net/http"

	"gateway-dashboard/internal/auth"
	"gateway-dashboard/internal/session"
	"gateway-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// requireSession runs after auth.RequireAccessToken. A token is only as good
// as the session it names: once logout or expiry removes the session, the
// request is refused. The role seen by later handlers and rbac is the one in
// session state, not the one signed into the token.
func (h Handlers) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Sessions == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sessions not configured"})
			return
		}
		ctx := c.Request.Context()
		sid, err := auth.SessionID(ctx)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session required"})
			return
		}

		role, err := session.ReadRole(ctx, h.Sessions, sid)
		switch {
		case err == nil:
		case errors.Is(err, session.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session ended"})
			return
		default:
			logger.FromGin(c).Error("session lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
			return
		}

		uid, _ := auth.UserID(ctx)
		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, uid, sid, role))
		c.Set("role", role)
		c.Next()
	}
}
