package properties

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/auth"
)

// Handler handles HTTP requests for properties
type Handler struct {
	svc *Service
}

// NewHandler creates a new properties handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upsert handles POST /api/properties
func (h *Handler) Upsert(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return apperror.ErrInvalidToken
	}

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body").WithInternal(err)
	}

	resp, err := h.svc.Upsert(c.Request().Context(), userID, UpsertRequestFromBody(body))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// List handles GET /api/properties
func (h *Handler) List(c echo.Context) error {
	params := ListParams{
		Type:     c.QueryParam("type"),
		SaleRent: c.QueryParam("sale_rent"),
		Query:    c.QueryParam("q"),
	}
	if v := c.QueryParam("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MinPrice = &f
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MaxPrice = &f
		}
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
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

// Get handles GET /api/properties/:id
func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("property id must be numeric")
	}

	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// ListMine handles GET /api/properties/mine
func (h *Handler) ListMine(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return apperror.ErrInvalidToken
	}

	items, err := h.svc.ListMine(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

// Delete handles DELETE /api/properties/:id
func (h *Handler) Delete(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return apperror.ErrInvalidToken
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("property id must be numeric")
	}

	if err := h.svc.Delete(c.Request().Context(), id, userID, user.IsAdmin()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
