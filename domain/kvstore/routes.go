package kvstore

import (
	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/auth"
)

// RegisterRoutes registers key-value store routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/storage")
	g.Use(authMiddleware.RequireAuth())

	g.GET("", h.ListKeys)
	g.GET("/:key", h.Get)
	g.PUT("/:key", h.Put)
	g.DELETE("/:key", h.Delete)
}
