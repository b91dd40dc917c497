package properties

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/casafind/casafind-server/domain/notifications"
	"github.com/casafind/casafind-server/internal/database"
	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
)

// Repository handles database operations for properties. It implements both
// the Store surface the upsert engine runs against and the Reader surface
// behind the plain read endpoints.
type Repository struct {
	db    bun.IDB
	notif *notifications.Repository
	log   *slog.Logger
}

func NewRepository(db bun.IDB, notif *notifications.Repository, log *slog.Logger) *Repository {
	return &Repository{
		db:    db,
		notif: notif,
		log:   log.With(logger.Scope("properties.repo")),
	}
}

// Begin starts an upsert transaction.
func (r *Repository) Begin(ctx context.Context) (TxStore, error) {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, repo: r}, nil
}

// InsertNewPropertyNotification writes the new-property notification on the
// pool connection, used by the post-commit retry after the category enum was
// extended.
func (r *Repository) InsertNewPropertyNotification(ctx context.Context, propertyID int64, title string) error {
	return r.notif.CreateIn(ctx, r.db, notifications.NewPropertyNotification(propertyID, title))
}

// ExtendNotificationCategories makes sure the properties enum value exists.
func (r *Repository) ExtendNotificationCategories(ctx context.Context) error {
	return r.notif.EnsureCategory(ctx, notifications.CategoryProperties)
}

// ResyncIDSequence bumps the id sequence past the highest row so ids handed
// out by the sequence cannot collide with engine-generated ones.
func (r *Repository) ResyncIDSequence(ctx context.Context) error {
	_, err := r.db.NewRaw(
		"SELECT setval('properties_id_seq', (SELECT COALESCE(MAX(id), 10000000) FROM properties))",
	).Exec(ctx)
	return err
}

// CountProperties returns the total row count.
func (r *Repository) CountProperties(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Property)(nil)).Count(ctx)
}

// PropertyVisible reports whether the row can be seen on a pool connection.
func (r *Repository) PropertyVisible(ctx context.Context, id int64) (bool, error) {
	return r.db.NewSelect().Model((*Property)(nil)).Where("p.id = ?", id).Exists(ctx)
}

// Reinsert writes the row again, tolerating its presence.
func (r *Repository) Reinsert(ctx context.Context, id int64, in *PropertyInput) error {
	_, err := r.db.NewInsert().
		Model(rowFromInput(id, in)).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	return err
}

// GetByID returns a property with its photos.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Property, error) {
	p := new(Property)
	err := r.db.NewSelect().
		Model(p).
		Relation("Photos", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		}).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrPropertyNotFound
		}
		r.log.Error("failed to get property", logger.Error(err), slog.Int64("id", id))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return p, nil
}

// List returns properties matching the filters, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Property, error) {
	items := []Property{}

	q := r.db.NewSelect().
		Model(&items).
		Relation("Photos", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		})

	if params.Type != "" {
		q = q.Where("p.type = ?", params.Type)
	}
	if params.SaleRent != "" {
		q = q.Where("p.sale_rent = ?", params.SaleRent)
	}
	if params.Query != "" {
		pattern := "%" + params.Query + "%"
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("p.title ILIKE ?", pattern).
				WhereOr("p.address ILIKE ?", pattern).
				WhereOr("p.description ILIKE ?", pattern)
		})
	}
	if params.MinPrice != nil {
		q = q.Where("p.price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		q = q.Where("p.price <= ?", *params.MaxPrice)
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q = q.Order("created_at DESC").Limit(limit)
	if params.Offset > 0 {
		q = q.Offset(params.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		r.log.Error("failed to list properties", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return items, nil
}

// ListByUser returns all listings owned by the given user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Property, error) {
	items := []Property{}
	err := r.db.NewSelect().
		Model(&items).
		Relation("Photos", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		}).
		Where("p.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		r.log.Error("failed to list user properties", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return items, nil
}

// DeleteByID removes a property; photo rows go with it via ON DELETE CASCADE.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*Property)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to delete property", logger.Error(err), slog.Int64("id", id))
		return apperror.ErrDatabase.WithInternal(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperror.ErrPropertyNotFound
	}
	return nil
}

// txStore runs the upsert engine's statements inside one transaction.
type txStore struct {
	tx   *database.SafeTx
	repo *Repository
}

// TryAdvisoryLock takes a transaction-scoped advisory lock derived from the
// key. Returns false when the lock statement fails; the engine proceeds
// without serialization in that case.
func (s *txStore) TryAdvisoryLock(ctx context.Context, key string) bool {
	_, err := s.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?)::bigint)", key)
	if err != nil {
		s.repo.log.Warn("advisory lock failed", logger.Error(err))
		return false
	}
	return true
}

func (s *txStore) UpdateByID(ctx context.Context, id int64, in *PropertyInput) (bool, error) {
	q := s.tx.NewUpdate().
		Model((*Property)(nil)).
		Set("price = ?", in.Price).
		Set("bedrooms = ?", in.Bedrooms).
		Set("bathrooms = ?", in.Bathrooms).
		Set("area = ?", in.Area)

	if in.Title != nil {
		q = q.Set("title = ?", *in.Title)
	}
	if in.Description != nil {
		q = q.Set("description = ?", *in.Description)
	}
	if in.Address != nil {
		q = q.Set("address = ?", *in.Address)
	}
	if in.ImageURL != nil {
		q = q.Set("image_url = ?", *in.ImageURL)
	}
	if in.Type != nil {
		q = q.Set("type = ?", *in.Type)
	}
	if in.SaleRent != nil {
		q = q.Set("sale_rent = ?", *in.SaleRent)
	}
	if in.PostTo != nil {
		q = q.Set("post_to = ?", *in.PostTo)
	}

	result, err := q.Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

func (s *txStore) FindIDByDedupKey(ctx context.Context, key DedupKey) (int64, bool, error) {
	var id int64
	err := s.tx.NewSelect().
		Model((*Property)(nil)).
		Column("id").
		Where("lower(btrim(coalesce(title, ''))) = ?", key.Title).
		Where("lower(btrim(coalesce(address, ''))) = ?", key.Address).
		Where("coalesce(price, 0) = ?", key.Price).
		Limit(1).
		Scan(ctx, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (s *txStore) IDExists(ctx context.Context, id int64) (bool, error) {
	return s.tx.NewSelect().Model((*Property)(nil)).Where("p.id = ?", id).Exists(ctx)
}

func (s *txStore) Insert(ctx context.Context, id int64, in *PropertyInput) error {
	_, err := s.tx.NewInsert().Model(rowFromInput(id, in)).Exec(ctx)
	return err
}

func (s *txStore) Get(ctx context.Context, id int64) (*Property, error) {
	p := new(Property)
	err := s.tx.NewSelect().
		Model(p).
		Relation("Photos", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		}).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *txStore) ReplacePhotos(ctx context.Context, id int64, urls []string) (int, error) {
	if _, err := s.tx.NewDelete().
		Model((*Photo)(nil)).
		Where("property_id = ?", id).
		Exec(ctx); err != nil {
		return 0, err
	}

	photos := make([]Photo, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		photos = append(photos, Photo{PropertyID: id, PhotoURL: u})
	}
	if len(photos) == 0 {
		return 0, nil
	}

	if _, err := s.tx.NewInsert().Model(&photos).Exec(ctx); err != nil {
		return 0, err
	}
	return len(photos), nil
}

func (s *txStore) SetImageURL(ctx context.Context, id int64, url string) error {
	_, err := s.tx.NewUpdate().
		Model((*Property)(nil)).
		Set("image_url = ?", url).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// InsertNewPropertyNotification writes the notification inside the upsert
// transaction, guarded by a savepoint so an enum mismatch does not poison
// the transaction.
func (s *txStore) InsertNewPropertyNotification(ctx context.Context, propertyID int64, title string) error {
	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT new_property_notification"); err != nil {
		return err
	}
	err := s.repo.notif.CreateIn(ctx, s.tx.Tx, notifications.NewPropertyNotification(propertyID, title))
	if err != nil {
		_, _ = s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT new_property_notification")
		return err
	}
	_, _ = s.tx.ExecContext(ctx, "RELEASE SAVEPOINT new_property_notification")
	return nil
}

func (s *txStore) Commit() error {
	return s.tx.Commit()
}

func (s *txStore) Rollback() error {
	return s.tx.Rollback()
}

func rowFromInput(id int64, in *PropertyInput) *Property {
	return &Property{
		ID:          id,
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Address:     in.Address,
		ImageURL:    in.ImageURL,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Type:        in.Type,
		Area:        in.Area,
		SaleRent:    in.SaleRent,
		PostTo:      in.PostTo,
	}
}
