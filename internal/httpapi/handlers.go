package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gateway-dashboard/internal/audit"
	"gateway-dashboard/internal/auth"
	"gateway-dashboard/internal/metrics"
	"gateway-dashboard/internal/nav"
	"gateway-dashboard/internal/rbac"
	"gateway-dashboard/internal/session"
	"gateway-dashboard/internal/users"
	"gateway-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authenticator verifies dashboard credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (users.User, error)
}

// UserLister lists dashboard accounts.
type UserLister interface {
	List(ctx context.Context) ([]users.User, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth       *auth.Manager
	Users      Authenticator
	UserList   UserLister
	Sessions   session.Store
	SessionTTL time.Duration
	Metrics    *metrics.Metrics
	Audit      *audit.Service // optional

	// Now and NewSessionID are overridable in tests.
	Now          func() time.Time
	NewSessionID func() string
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h Handlers) newSessionID() string {
	if h.NewSessionID != nil {
		return h.NewSessionID()
	}
	return uuid.NewString()
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	Role             string    `json:"role"`
}

func newTokenResponse(p auth.TokenPair, role string) tokenResponse {
	return tokenResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		ExpiresAt:        p.ExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
		Role:             role,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login verifies credentials, records the user's role in a fresh session and
// issues a token pair bound to that session.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.Users == nil || h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	log := logger.FromGin(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.audit(c, func(ctx context.Context, a *audit.Service) error {
				return a.LogLoginFailed(ctx, req.Username, c.ClientIP())
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error("login lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	sid := h.newSessionID()
	if err := h.Sessions.Set(c.Request.Context(), sid, session.KeyRole, u.Role, h.SessionTTL); err != nil {
		log.Error("session write failed", "err", err, "user_id", u.ID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	pair, err := h.Auth.IssuePair(h.now(), auth.Subject{UserID: u.ID, SessionID: sid, Role: u.Role})
	if err != nil {
		log.Error("token issuance failed", "err", err, "user_id", u.ID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	h.audit(c, func(ctx context.Context, a *audit.Service) error {
		return a.LogLogin(ctx, u.ID, u.Role, sid, c.ClientIP())
	})
	log.Info("login", "user_id", u.ID, "role", u.Role)
	c.JSON(http.StatusOK, newTokenResponse(pair, u.Role))
}

// Refresh rotates a token pair. The session must still exist; the new access
// token carries the role currently stored for it, and the session TTL is
// extended to match.
func (h Handlers) Refresh(c *gin.Context) {
	if h.Auth == nil || h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	log := logger.FromGin(c)

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}

	ctx := c.Request.Context()
	pair, subj, err := h.Auth.Refresh(req.RefreshToken, h.now(), func(sid string) (string, error) {
		return session.ReadRole(ctx, h.Sessions, sid)
	})
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, session.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	default:
		log.Error("token refresh failed", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		return
	}

	if err := h.Sessions.Set(ctx, subj.SessionID, session.KeyRole, subj.Role, h.SessionTTL); err != nil {
		log.Error("session extend failed", "err", err, "user_id", subj.UserID)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		return
	}

	h.audit(c, func(ctx context.Context, a *audit.Service) error {
		return a.LogRefresh(ctx, subj.UserID, subj.Role, subj.SessionID, c.ClientIP())
	})
	c.JSON(http.StatusOK, newTokenResponse(pair, subj.Role))
}

// Logout drops the caller's session state. Every token bound to the session is
// refused by requireSession from then on, and the menu falls back to the base
// entries.
func (h Handlers) Logout(c *gin.Context) {
	if h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sessions not configured"})
		return
	}
	sid, err := auth.SessionID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}
	if err := h.Sessions.Delete(c.Request.Context(), sid); err != nil {
		logger.FromGin(c).Error("session delete failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	h.audit(c, func(ctx context.Context, a *audit.Service) error {
		return a.LogLogout(ctx, uid, role, sid, c.ClientIP())
	})
	c.Status(http.StatusNoContent)
}

// audit records an event without failing the request.
func (h Handlers) audit(c *gin.Context, fn func(context.Context, *audit.Service) error) {
	if h.Audit == nil {
		return
	}
	if err := fn(c.Request.Context(), h.Audit); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}

func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	sid, _ := auth.SessionID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "session_id": sid, "role": role})
}

// --- Navigation ---

// Navigation returns the sidebar for the caller.
//
// The role is read once from session state and handed to nav.Build. Anonymous
// callers, missing sessions and storage failures all get the base menu; this
// endpoint always answers 200.
func (h Handlers) Navigation(c *gin.Context) {
	role := h.readRole(c)
	menu := nav.Build(role)
	h.Metrics.ObserveNavigation(rbac.IsPrivileged(role))
	c.JSON(http.StatusOK, gin.H{"items": menu})
}

func (h Handlers) readRole(c *gin.Context) string {
	sid, _ := auth.SessionID(c.Request.Context())
	if sid == "" {
		h.Metrics.ObserveRoleRead(metrics.RoleReadAnonymous)
		return ""
	}

	role, err := session.ReadRole(c.Request.Context(), h.Sessions, sid)
	switch {
	case err == nil:
		h.Metrics.ObserveRoleRead(metrics.RoleReadHit)
		return role
	case errors.Is(err, session.ErrNotFound):
		h.Metrics.ObserveRoleRead(metrics.RoleReadMiss)
	default:
		h.Metrics.ObserveRoleRead(metrics.RoleReadError)
		logger.FromGin(c).Warn("role read failed; serving base menu", "err", err)
	}
	return ""
}

// --- Admin ---

type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsers backs the User page. RBAC: admin.
func (h Handlers) ListUsers(c *gin.Context) {
	if h.UserList == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "users not configured"})
		return
	}
	list, err := h.UserList.List(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("user list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user list failed"})
		return
	}
	out := make([]userView, 0, len(list))
	for _, u := range list {
		out = append(out, userView{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}
