package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
)

// store is the repository surface the service runs against; the bun
// repository is the production implementation.
type store interface {
	GetOrCreateConversation(ctx context.Context, userID uuid.UUID) (*Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListConversations(ctx context.Context) ([]Conversation, error)
	CreateMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
	MarkMessagesRead(ctx context.Context, conversationID uuid.UUID, readerRole string) (int64, error)
}

// Service handles business logic for the support chat.
type Service struct {
	repo store
	log  *slog.Logger
}

// NewService creates a new chat service
func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(logger.Scope("chat.svc")),
	}
}

// Conversation returns the user's support conversation, creating it lazily.
func (s *Service) Conversation(ctx context.Context, userID uuid.UUID) (*Conversation, error) {
	return s.repo.GetOrCreateConversation(ctx, userID)
}

// SendAsUser appends a message from the user to their own conversation.
func (s *Service) SendAsUser(ctx context.Context, userID uuid.UUID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ErrValidation.WithMessage("Message body is required")
	}

	conv, err := s.repo.GetOrCreateConversation(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       userID,
		SenderRole:     SenderUser,
		Body:           body,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendAsAdmin appends an admin reply to an arbitrary conversation.
func (s *Service) SendAsAdmin(ctx context.Context, adminID, conversationID uuid.UUID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ErrValidation.WithMessage("Message body is required")
	}

	if _, err := s.repo.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	msg := &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       adminID,
		SenderRole:     SenderAdmin,
		Body:           body,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Messages returns a conversation's history after checking the caller may
// see it: users only their own thread, admins any.
func (s *Service) Messages(ctx context.Context, conversationID, callerID uuid.UUID, admin bool) ([]Message, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !admin && conv.UserID != callerID {
		return nil, apperror.ErrForbidden
	}

	role := SenderUser
	if admin {
		role = SenderAdmin
	}
	if _, err := s.repo.MarkMessagesRead(ctx, conversationID, role); err != nil {
		s.log.Warn("failed to mark messages read", logger.Error(err))
	}
	return s.repo.ListMessages(ctx, conversationID, 0)
}

// ListConversations returns the admin overview of all threads.
func (s *Service) ListConversations(ctx context.Context) ([]Conversation, error) {
	return s.repo.ListConversations(ctx)
}
