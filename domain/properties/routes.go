package properties

import (
	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/auth"
)

// RegisterRoutes registers property routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/properties")

	// Public browse endpoints
	g.GET("", h.List)

	g.GET("/mine", h.ListMine, authMiddleware.RequireAuth())
	g.GET("/:id", h.Get)
	g.POST("", h.Upsert, authMiddleware.RequireAuth())
	g.DELETE("/:id", h.Delete, authMiddleware.RequireAuth())
}
