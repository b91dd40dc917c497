package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Conversation is the single support thread between a user and the admin
// team. One per user, created lazily on first use.
type Conversation struct {
	bun.BaseModel `bun:"table:chat_conversations,alias:cc"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"userId"`
	LastMessage   string     `bun:"last_message,notnull,default:''" json:"lastMessage"`
	LastMessageAt *time.Time `bun:"last_message_at" json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,notnull,default:now()" json:"updatedAt"`

	// Relations (for eager loading)
	Messages []Message `bun:"rel:has-many,join:id=conversation_id" json:"messages,omitempty"`
}

// Message represents a row in chat_messages.
type Message struct {
	bun.BaseModel `bun:"table:chat_messages,alias:cm"`

	ID             uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	ConversationID uuid.UUID `bun:"conversation_id,notnull,type:uuid" json:"conversationId"`
	SenderID       uuid.UUID `bun:"sender_id,notnull,type:uuid" json:"senderId"`
	SenderRole     string    `bun:"sender_role,notnull,default:'user'" json:"senderRole"`
	Body           string    `bun:"body,notnull" json:"body"`
	IsRead         bool      `bun:"is_read,notnull,default:false" json:"isRead"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
}

// Sender roles stored on chat_messages.sender_role.
const (
	SenderUser  = "user"
	SenderAdmin = "admin"
)

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// ConversationListResponse wraps the admin conversation overview.
type ConversationListResponse struct {
	Data []Conversation `json:"data"`
}

// MessageListResponse wraps a conversation's messages.
type MessageListResponse struct {
	Data []Message `json:"data"`
}
