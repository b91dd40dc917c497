package users

import (
	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/auth"
)

// RegisterRoutes registers auth routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/auth")

	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/admin-login", h.AdminLogin)
	g.GET("/me", h.Me, authMiddleware.RequireAuth())
}
