package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
	"github.com/casafind/casafind-server/pkg/pgutils"
)

// ErrUnknownCategory is returned when an insert fails because the
// notification_category enum does not yet contain the requested value.
var ErrUnknownCategory = errors.New("notifications: unknown category value")

// Repository handles database operations for notifications
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new notifications repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("notifications.repo")),
	}
}

// Create inserts a notification on the pool connection.
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	return r.CreateIn(ctx, r.db, n)
}

// CreateIn inserts a notification using the given handle, which may be a
// transaction owned by the caller. Enum mismatches surface as
// ErrUnknownCategory so callers can extend the enum and retry.
func (r *Repository) CreateIn(ctx context.Context, db bun.IDB, n *Notification) error {
	if _, err := db.NewInsert().Model(n).Exec(ctx); err != nil {
		return r.classifyCreateError(err)
	}
	return nil
}

// classifyCreateError maps driver errors from a notification insert. A
// missing enum value becomes ErrUnknownCategory; everything else is a
// database error.
func (r *Repository) classifyCreateError(err error) error {
	if pgutils.IsInvalidEnumValue(err) {
		return ErrUnknownCategory
	}
	r.log.Error("failed to create notification", logger.Error(err))
	return apperror.ErrDatabase.WithInternal(err)
}

// EnsureCategory adds a value to the notification_category enum. Must run
// outside any transaction that intends to use the new value.
func (r *Repository) EnsureCategory(ctx context.Context, category string) error {
	// ALTER TYPE does not support bind parameters for the value.
	if strings.ContainsAny(category, "'\"; ") {
		return apperror.ErrBadRequest.WithMessage("invalid category name")
	}
	_, err := r.db.NewRaw(
		"ALTER TYPE notification_category ADD VALUE IF NOT EXISTS '" + category + "'",
	).Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// List returns notifications, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Notification, error) {
	items := []Notification{}

	q := r.db.NewSelect().Model(&items)
	if params.Category != "" && params.Category != "all" {
		q = q.Where("category = ?", params.Category)
	}
	if params.UnreadOnly {
		q = q.Where("is_read = false")
	}
	q = q.Order("created_at DESC")
	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}
	if params.Offset > 0 {
		q = q.Offset(params.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		r.log.Error("failed to list notifications", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return items, nil
}

// UnreadCount returns the number of unread notifications.
func (r *Repository) UnreadCount(ctx context.Context) (int64, error) {
	count, err := r.db.NewSelect().
		Model((*Notification)(nil)).
		Where("is_read = false").
		Count(ctx)
	if err != nil {
		r.log.Error("failed to count unread notifications", logger.Error(err))
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return int64(count), nil
}

// MarkRead marks a notification as read
func (r *Repository) MarkRead(ctx context.Context, id int64) error {
	result, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("is_read = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to mark notification as read", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperror.ErrNotFound.WithMessage("Notification not found")
	}
	return nil
}

// MarkAllRead marks every unread notification as read and returns the count.
func (r *Repository) MarkAllRead(ctx context.Context) (int64, error) {
	result, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("is_read = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("is_read = ?", false).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to mark all notifications as read", logger.Error(err))
		return 0, apperror.ErrDatabase.WithInternal(err)
	}

	count, _ := result.RowsAffected()
	return count, nil
}
