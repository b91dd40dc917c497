package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
)

// Repository handles database operations for kv entries
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new kvstore repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("kvstore.repo")),
	}
}

// Get returns the entry for (user, key).
func (r *Repository) Get(ctx context.Context, userID uuid.UUID, key string) (*Entry, error) {
	e := new(Entry)
	err := r.db.NewSelect().
		Model(e).
		Where("user_id = ?", userID).
		Where("kv.key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNotFound.WithMessage("Key not found")
		}
		r.log.Error("failed to get kv entry", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return e, nil
}

// Put upserts the value for (user, key).
func (r *Repository) Put(ctx context.Context, userID uuid.UUID, key string, value json.RawMessage) (*Entry, error) {
	e := &Entry{
		UserID:    userID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(e).
		On("CONFLICT (user_id, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to put kv entry", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return e, nil
}

// Delete removes the entry for (user, key).
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID, key string) error {
	result, err := r.db.NewDelete().
		Model((*Entry)(nil)).
		Where("user_id = ?", userID).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to delete kv entry", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperror.ErrNotFound.WithMessage("Key not found")
	}
	return nil
}

// ListKeys returns all keys stored for a user.
func (r *Repository) ListKeys(ctx context.Context, userID uuid.UUID) ([]string, error) {
	keys := []string{}
	err := r.db.NewSelect().
		Model((*Entry)(nil)).
		Column("key").
		Where("user_id = ?", userID).
		Order("key ASC").
		Scan(ctx, &keys)
	if err != nil {
		r.log.Error("failed to list kv keys", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return keys, nil
}
