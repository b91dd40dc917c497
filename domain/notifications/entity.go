package notifications

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Category values map onto the notification_category Postgres enum. The
// properties value may be missing on older databases; EnsureCategory adds it.
const (
	CategorySystem     = "system"
	CategoryChat       = "chat"
	CategoryProperties = "properties"
)

// Notification represents a row in the notifications table.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        int64           `bun:"id,pk,autoincrement" json:"id"`
	Category  string          `bun:"category,notnull" json:"category"`
	Title     string          `bun:"title,notnull" json:"title"`
	Body      string          `bun:"body,notnull,default:''" json:"body"`
	Target    *string         `bun:"target" json:"target,omitempty"`
	Data      json.RawMessage `bun:"data,type:jsonb" json:"data,omitempty"`
	IsRead    bool            `bun:"is_read,notnull,default:false" json:"isRead"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:now()" json:"updatedAt"`
}

// NewPropertyNotification builds the record emitted when the upsert engine
// inserts a brand-new property row.
func NewPropertyNotification(propertyID int64, title string) *Notification {
	data, _ := json.Marshal(map[string]any{
		"propertyId": propertyID,
		"title":      title,
	})
	return &Notification{
		Category: CategoryProperties,
		Title:    "New property listed",
		Body:     title,
		Data:     data,
	}
}

// ListParams contains filters for the notification feed.
type ListParams struct {
	Category   string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// ListResponse wraps the notification feed.
type ListResponse struct {
	Data []Notification `json:"data"`
}

// UnreadCountResponse wraps the unread counter.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
