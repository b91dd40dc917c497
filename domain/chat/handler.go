package chat

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/auth"
)

// Handler handles HTTP requests for chat
type Handler struct {
	svc *Service
}

// NewHandler creates a new chat handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func callerID(c echo.Context) (uuid.UUID, *auth.AuthUser, error) {
	user := auth.GetUser(c)
	if user == nil {
		return uuid.Nil, nil, apperror.ErrUnauthorized
	}
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return uuid.Nil, nil, apperror.ErrInvalidToken
	}
	return id, user, nil
}

// GetConversation handles GET /api/chat/conversation
func (h *Handler) GetConversation(c echo.Context) error {
	id, _, err := callerID(c)
	if err != nil {
		return err
	}

	conv, err := h.svc.Conversation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conv)
}

// SendMessage handles POST /api/chat/messages
func (h *Handler) SendMessage(c echo.Context) error {
	id, _, err := callerID(c)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body").WithInternal(err)
	}

	msg, err := h.svc.SendAsUser(c.Request().Context(), id, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// ListMessages handles GET /api/chat/conversations/:id/messages
func (h *Handler) ListMessages(c echo.Context) error {
	id, user, err := callerID(c)
	if err != nil {
		return err
	}

	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("conversation id must be a UUID")
	}

	messages, err := h.svc.Messages(c.Request().Context(), convID, id, user.IsAdmin())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageListResponse{Data: messages})
}

// ListConversations handles GET /api/chat/conversations (admin)
func (h *Handler) ListConversations(c echo.Context) error {
	items, err := h.svc.ListConversations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ConversationListResponse{Data: items})
}

// AdminReply handles POST /api/chat/conversations/:id/messages (admin)
func (h *Handler) AdminReply(c echo.Context) error {
	id, _, err := callerID(c)
	if err != nil {
		return err
	}

	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("conversation id must be a UUID")
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body").WithInternal(err)
	}

	msg, err := h.svc.SendAsAdmin(c.Request().Context(), id, convID, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}
