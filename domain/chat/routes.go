package chat

import (
	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/auth"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/chat")
	g.Use(authMiddleware.RequireAuth())

	// User side: one implicit conversation per account
	g.GET("/conversation", h.GetConversation)
	g.POST("/messages", h.SendMessage)
	g.GET("/conversations/:id/messages", h.ListMessages)

	// Admin side
	g.GET("/conversations", h.ListConversations, authMiddleware.RequireAdmin())
	g.POST("/conversations/:id/messages", h.AdminReply, authMiddleware.RequireAdmin())
}
