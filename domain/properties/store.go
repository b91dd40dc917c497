package properties

import "context"

// Store is the persistence surface the upsert engine drives. The bun-backed
// Repository implements it; tests use an in-memory fake. Everything outside
// Begin runs on the pool, not inside the engine's transaction, and backs the
// best-effort paths whose failure must never affect the committed result.
type Store interface {
	Begin(ctx context.Context) (TxStore, error)

	// Post-commit notification path, used when the category enum had to be
	// extended and the in-transaction insert could not succeed.
	InsertNewPropertyNotification(ctx context.Context, propertyID int64, title string) error
	ExtendNotificationCategories(ctx context.Context) error

	// Post-commit consistency aids.
	ResyncIDSequence(ctx context.Context) error
	CountProperties(ctx context.Context) (int, error)
	PropertyVisible(ctx context.Context, id int64) (bool, error)
	Reinsert(ctx context.Context, id int64, in *PropertyInput) error
}

// TxStore is one upsert transaction. All mutations between Begin and Commit
// are atomic; Rollback after Commit is a no-op.
type TxStore interface {
	// TryAdvisoryLock serializes concurrent submissions sharing a dedup key.
	// It is best-effort: false means the store could not take the lock, and
	// the caller proceeds without it.
	TryAdvisoryLock(ctx context.Context, key string) bool

	UpdateByID(ctx context.Context, id int64, in *PropertyInput) (bool, error)
	FindIDByDedupKey(ctx context.Context, key DedupKey) (int64, bool, error)
	IDExists(ctx context.Context, id int64) (bool, error)
	Insert(ctx context.Context, id int64, in *PropertyInput) error
	Get(ctx context.Context, id int64) (*Property, error)

	// ReplacePhotos deletes the property's photo rows and inserts one row per
	// non-empty URL, preserving order. Returns the number inserted.
	ReplacePhotos(ctx context.Context, id int64, urls []string) (int, error)
	SetImageURL(ctx context.Context, id int64, url string) error

	InsertNewPropertyNotification(ctx context.Context, propertyID int64, title string) error

	Commit() error
	Rollback() error
}
