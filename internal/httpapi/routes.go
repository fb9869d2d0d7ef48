package httpapi

import (
	"gateway-dashboard/internal/auth"
	"gateway-dashboard/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterV1 wires the /v1 API. h.Auth must be set.
func RegisterV1(r gin.IRouter, h Handlers) {
	requireToken := auth.RequireAccessToken(h.Auth)
	requireSession := h.requireSession()
	// protected chains handlers behind a valid access token and a live session.
	protected := func(hs ...gin.HandlerFunc) []gin.HandlerFunc {
		return append([]gin.HandlerFunc{requireToken, requireSession}, hs...)
	}

	v1 := r.Group("/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", protected(h.Logout)...)
	}

	// Anonymous callers get the base menu.
	v1.GET("/navigation", auth.OptionalAccessToken(h.Auth), h.Navigation)

	v1.GET("/me", protected(h.Me)...)

	admin := v1.Group("/admin")
	admin.Use(protected(rbac.RequireAnyRole(rbac.RoleAdmin))...)
	{
		admin.GET("/users", h.ListUsers)
	}
}
