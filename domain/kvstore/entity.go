package kvstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry is one per-user key with an arbitrary JSON value, used by clients to
// persist small bits of state server-side.
type Entry struct {
	bun.BaseModel `bun:"table:kv_entries,alias:kv"`

	UserID    uuid.UUID       `bun:"user_id,pk,type:uuid" json:"-"`
	Key       string          `bun:"key,pk" json:"key"`
	Value     json.RawMessage `bun:"value,type:jsonb" json:"value"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:now()" json:"updatedAt"`
}
