package chat

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/casafind/casafind-server/pkg/apperror"
)

// fakeChatStore is an in-memory store used to exercise the service's access
// rules without a database.
type fakeChatStore struct {
	conversations map[uuid.UUID]*Conversation
	messages      map[uuid.UUID][]Message

	readCalls []string
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		conversations: map[uuid.UUID]*Conversation{},
		messages:      map[uuid.UUID][]Message{},
	}
}

func (f *fakeChatStore) GetOrCreateConversation(ctx context.Context, userID uuid.UUID) (*Conversation, error) {
	for _, conv := range f.conversations {
		if conv.UserID == userID {
			return conv, nil
		}
	}
	conv := &Conversation{ID: uuid.New(), UserID: userID}
	f.conversations[conv.ID] = conv
	return conv, nil
}

func (f *fakeChatStore) GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	conv, ok := f.conversations[id]
	if !ok {
		return nil, apperror.ErrNotFound.WithMessage("Conversation not found")
	}
	return conv, nil
}

func (f *fakeChatStore) ListConversations(ctx context.Context) ([]Conversation, error) {
	out := []Conversation{}
	for _, conv := range f.conversations {
		out = append(out, *conv)
	}
	return out, nil
}

func (f *fakeChatStore) CreateMessage(ctx context.Context, msg *Message) error {
	conv, ok := f.conversations[msg.ConversationID]
	if !ok {
		return apperror.ErrNotFound.WithMessage("Conversation not found")
	}
	f.messages[msg.ConversationID] = append(f.messages[msg.ConversationID], *msg)
	now := time.Now()
	conv.LastMessage = msg.Body
	conv.LastMessageAt = &now
	return nil
}

func (f *fakeChatStore) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	return f.messages[conversationID], nil
}

func (f *fakeChatStore) MarkMessagesRead(ctx context.Context, conversationID uuid.UUID, readerRole string) (int64, error) {
	f.readCalls = append(f.readCalls, readerRole)
	var n int64
	msgs := f.messages[conversationID]
	for i := range msgs {
		if msgs[i].SenderRole != readerRole && !msgs[i].IsRead {
			msgs[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func newTestChatService(f *fakeChatStore) *Service {
	return &Service{repo: f, log: slog.New(slog.DiscardHandler)}
}

var (
	chatUser  = uuid.MustParse("7a1d2b3c-0000-4c44-9f51-000000000001")
	otherUser = uuid.MustParse("7a1d2b3c-0000-4c44-9f51-000000000002")
	adminUser = uuid.MustParse("7a1d2b3c-0000-4c44-9f51-00000000000a")
)

func TestSendAsUser(t *testing.T) {
	f := newFakeChatStore()
	svc := newTestChatService(f)
	ctx := context.Background()

	if _, err := svc.SendAsUser(ctx, chatUser, "   "); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("blank body err = %v, want ErrValidation", err)
	}

	msg, err := svc.SendAsUser(ctx, chatUser, "  hello  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Body != "hello" || msg.SenderRole != SenderUser || msg.SenderID != chatUser {
		t.Errorf("message = %+v", msg)
	}

	// the conversation is created lazily and carries the preview
	conv, err := svc.Conversation(ctx, chatUser)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if conv.LastMessage != "hello" || conv.LastMessageAt == nil {
		t.Errorf("preview = %q / %v", conv.LastMessage, conv.LastMessageAt)
	}
	if len(f.conversations) != 1 {
		t.Errorf("conversations = %d, want 1", len(f.conversations))
	}
}

func TestSendAsAdmin_RequiresExistingConversation(t *testing.T) {
	f := newFakeChatStore()
	svc := newTestChatService(f)
	ctx := context.Background()

	if _, err := svc.SendAsAdmin(ctx, adminUser, uuid.New(), "hi"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown conversation err = %v, want ErrNotFound", err)
	}

	conv, _ := f.GetOrCreateConversation(ctx, chatUser)
	msg, err := svc.SendAsAdmin(ctx, adminUser, conv.ID, "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.SenderRole != SenderAdmin || msg.ConversationID != conv.ID {
		t.Errorf("message = %+v", msg)
	}
}

func TestMessages_UserCannotReadForeignConversation(t *testing.T) {
	f := newFakeChatStore()
	svc := newTestChatService(f)
	ctx := context.Background()

	conv, _ := f.GetOrCreateConversation(ctx, chatUser)

	if _, err := svc.Messages(ctx, conv.ID, otherUser, false); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("foreign caller err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Messages(ctx, conv.ID, chatUser, false); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := svc.Messages(ctx, conv.ID, otherUser, true); err != nil {
		t.Errorf("admin read: %v", err)
	}
}

func TestMessages_MarksOtherSideRead(t *testing.T) {
	f := newFakeChatStore()
	svc := newTestChatService(f)
	ctx := context.Background()

	if _, err := svc.SendAsUser(ctx, chatUser, "question"); err != nil {
		t.Fatalf("user send: %v", err)
	}
	conv, _ := f.GetOrCreateConversation(ctx, chatUser)
	if _, err := svc.SendAsAdmin(ctx, adminUser, conv.ID, "answer"); err != nil {
		t.Fatalf("admin send: %v", err)
	}

	msgs, err := svc.Messages(ctx, conv.ID, chatUser, false)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if len(f.readCalls) != 1 || f.readCalls[0] != SenderUser {
		t.Fatalf("read calls = %v, want one as %q", f.readCalls, SenderUser)
	}
	for _, m := range f.messages[conv.ID] {
		if m.SenderRole == SenderAdmin && !m.IsRead {
			t.Errorf("admin message %q not marked read", m.Body)
		}
		if m.SenderRole == SenderUser && m.IsRead {
			t.Errorf("own message %q must not be marked read", m.Body)
		}
	}
}
