package notifications

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/apperror"
)

// Handler handles HTTP requests for notifications
type Handler struct {
	svc *Service
}

// NewHandler creates a new notifications handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/notifications
func (h *Handler) List(c echo.Context) error {
	params := ListParams{
		Category:   c.QueryParam("category"),
		UnreadOnly: c.QueryParam("unread_only") == "true",
	}
	if v := c.QueryParam("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("offset"); v != "" {
		params.Offset, _ = strconv.Atoi(v)
	}

	items, err := h.svc.List(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ListResponse{Data: items})
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *Handler) UnreadCount(c echo.Context) error {
	count, err := h.svc.UnreadCount(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkRead handles PATCH /api/notifications/:id/read
func (h *Handler) MarkRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("notification id must be numeric")
	}

	if err := h.svc.MarkRead(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead handles POST /api/notifications/mark-all-read
func (h *Handler) MarkAllRead(c echo.Context) error {
	count, err := h.svc.MarkAllRead(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "marked_all_read",
		"count":  count,
	})
}
