package chat

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
)

// Repository handles database operations for chat
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new chat repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("chat.repo")),
	}
}

// GetOrCreateConversation returns the user's conversation, creating it on
// first use. The unique constraint on user_id keeps concurrent creates to a
// single row.
func (r *Repository) GetOrCreateConversation(ctx context.Context, userID uuid.UUID) (*Conversation, error) {
	conv := &Conversation{UserID: userID}
	_, err := r.db.NewInsert().
		Model(conv).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to create conversation", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	found := new(Conversation)
	err = r.db.NewSelect().
		Model(found).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to load conversation", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return found, nil
}

// GetConversation returns a conversation by id.
func (r *Repository) GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	conv := new(Conversation)
	err := r.db.NewSelect().
		Model(conv).
		Where("cc.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNotFound.WithMessage("Conversation not found")
		}
		r.log.Error("failed to get conversation", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return conv, nil
}

// ListConversations returns all conversations, most recently active first.
func (r *Repository) ListConversations(ctx context.Context) ([]Conversation, error) {
	items := []Conversation{}
	err := r.db.NewSelect().
		Model(&items).
		OrderExpr("last_message_at DESC NULLS LAST").
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to list conversations", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return items, nil
}

// CreateMessage appends a message and refreshes the conversation preview.
func (r *Repository) CreateMessage(ctx context.Context, msg *Message) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(msg).Exec(ctx); err != nil {
			return err
		}
		now := time.Now()
		_, err := tx.NewUpdate().
			Model((*Conversation)(nil)).
			Set("last_message = ?", msg.Body).
			Set("last_message_at = ?", now).
			Set("updated_at = ?", now).
			Where("id = ?", msg.ConversationID).
			Exec(ctx)
		return err
	})
	if err != nil {
		r.log.Error("failed to create message", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// ListMessages returns a conversation's messages in chronological order.
func (r *Repository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	items := []Message{}
	q := r.db.NewSelect().
		Model(&items).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		r.log.Error("failed to list messages", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return items, nil
}

// MarkMessagesRead marks messages sent by the other side as read.
func (r *Repository) MarkMessagesRead(ctx context.Context, conversationID uuid.UUID, readerRole string) (int64, error) {
	result, err := r.db.NewUpdate().
		Model((*Message)(nil)).
		Set("is_read = ?", true).
		Where("conversation_id = ?", conversationID).
		Where("sender_role != ?", readerRole).
		Where("is_read = ?", false).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to mark messages read", logger.Error(err))
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
