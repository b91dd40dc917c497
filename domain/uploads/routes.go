package uploads

import (
	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/auth"
)

// RegisterRoutes registers upload routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/uploads")
	g.Use(authMiddleware.RequireAuth())

	g.POST("/photos", h.UploadPhotos)
}
