package kvstore

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/auth"
)

const maxValueBytes = 64 * 1024

// Handler handles HTTP requests for the key-value store
type Handler struct {
	repo *Repository
}

// NewHandler creates a new kvstore handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func callerID(c echo.Context) (uuid.UUID, error) {
	user := auth.GetUser(c)
	if user == nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return uuid.Nil, apperror.ErrInvalidToken
	}
	return id, nil
}

// Get handles GET /api/storage/:key
func (h *Handler) Get(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	e, err := h.repo.Get(c.Request().Context(), userID, c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

// Put handles PUT /api/storage/:key. The body is stored verbatim as JSON.
func (h *Handler) Put(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxValueBytes+1))
	if err != nil {
		return apperror.ErrBadRequest.WithInternal(err)
	}
	if len(body) > maxValueBytes {
		return apperror.ErrBadRequest.WithMessage("value exceeds the 64KB limit")
	}
	if !json.Valid(body) {
		return apperror.ErrBadRequest.WithMessage("value must be valid JSON")
	}

	e, err := h.repo.Put(c.Request().Context(), userID, c.Param("key"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

// Delete handles DELETE /api/storage/:key
func (h *Handler) Delete(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(c.Request().Context(), userID, c.Param("key")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// ListKeys handles GET /api/storage
func (h *Handler) ListKeys(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	keys, err := h.repo.ListKeys(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"keys": keys})
}
