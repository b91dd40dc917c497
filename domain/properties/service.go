package properties

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/casafind/casafind-server/domain/notifications"
	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
)

const (
	idMin         = 10_000_000
	idSpan        = 90_000_000
	maxIDAttempts = 20
)

// Reader covers the read and delete paths used by the HTTP handlers. The
// upsert path goes through Store exclusively.
type Reader interface {
	GetByID(ctx context.Context, id int64) (*Property, error)
	List(ctx context.Context, params ListParams) ([]Property, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Property, error)
	DeleteByID(ctx context.Context, id int64) error
}

type Service struct {
	store  Store
	reader Reader
	log    *slog.Logger

	// randID is swappable for deterministic tests.
	randID func() int64
}

func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		store:  repo,
		reader: repo,
		log:    log.With(logger.Scope("properties.service")),
		randID: randomID,
	}
}

func randomID() int64 {
	return idMin + rand.Int64N(idSpan)
}

// Upsert resolves a loosely-typed submission to exactly one property row:
// explicit-id update first, then fuzzy dedup on normalized (title, address,
// price), then insert under a fresh random 8-digit id. Photo replacement,
// canonical-image backfill and the new-property notification all happen in
// the same transaction.
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, req *UpsertRequest) (*UpsertResponse, error) {
	// Malformed input is normalized, never rejected: a wholly unusable
	// payload still resolves to an insert with mostly-null fields.
	if req == nil {
		req = &UpsertRequest{}
	}

	in, explicit := NormalizeInput(req.Property)
	in.UserID = &userID

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	defer tx.Rollback()

	var (
		id       int64
		resolved bool
		inserted bool
	)

	if explicit != nil {
		updated, err := tx.UpdateByID(ctx, *explicit, in)
		if err != nil {
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		if updated {
			id, resolved = *explicit, true
		}
	}

	if !resolved {
		if key, ok := in.DedupKey(); ok {
			if !tx.TryAdvisoryLock(ctx, key.LockKey()) {
				s.log.Warn("advisory lock unavailable, continuing without it")
			}
			existingID, found, err := tx.FindIDByDedupKey(ctx, key)
			if err != nil {
				return nil, apperror.ErrDatabase.WithInternal(err)
			}
			if found {
				if _, err := tx.UpdateByID(ctx, existingID, in); err != nil {
					return nil, apperror.ErrDatabase.WithInternal(err)
				}
				id, resolved = existingID, true
			}
		}
	}

	if !resolved {
		newID, err := s.allocateID(ctx, tx)
		if err != nil {
			return nil, err
		}
		if err := tx.Insert(ctx, newID, in); err != nil {
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		id = newID
		inserted = true
	}

	// Any supplied list, even one of only blank entries, replaces the photo
	// set wholesale; blank entries are skipped at insert time. Only an
	// omitted or empty list leaves the prior set alone.
	photosInserted := 0
	if len(req.PhotoURLs) > 0 {
		photosInserted, err = tx.ReplacePhotos(ctx, id, req.PhotoURLs)
		if err != nil {
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
	}

	row, err := tx.Get(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	if photosInserted > 0 && (row.ImageURL == nil || *row.ImageURL == "") {
		first := nonEmpty(req.PhotoURLs)[0]
		if err := tx.SetImageURL(ctx, id, first); err != nil {
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		row.ImageURL = &first
	}

	notifyPending := false
	if inserted {
		if err := tx.InsertNewPropertyNotification(ctx, id, titleOrDefault(in)); err != nil {
			if errors.Is(err, notifications.ErrUnknownCategory) {
				notifyPending = true
			} else {
				s.log.Warn("new-property notification failed", logger.Error(err), slog.Int64("propertyId", id))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	if notifyPending {
		// ALTER TYPE ... ADD VALUE takes effect only for later transactions,
		// so the retry has to happen after commit.
		if err := s.store.ExtendNotificationCategories(ctx); err != nil {
			s.log.Warn("extending notification categories failed", logger.Error(err))
		} else if err := s.store.InsertNewPropertyNotification(ctx, id, titleOrDefault(in)); err != nil {
			s.log.Warn("new-property notification retry failed", logger.Error(err), slog.Int64("propertyId", id))
		}
	}

	if inserted {
		s.reconcileAfterInsert(ctx, id, in)
	}

	return &UpsertResponse{Property: mergeResult(row, in), PropertyID: id}, nil
}

// allocateID draws random 8-digit ids until one is unused. The point query is
// a pre-check only; the primary key constraint is what ultimately guarantees
// uniqueness under concurrency.
func (s *Service) allocateID(ctx context.Context, tx TxStore) (int64, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := s.randID()
		taken, err := tx.IDExists(ctx, candidate)
		if err != nil {
			return 0, apperror.ErrDatabase.WithInternal(err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return 0, apperror.ErrIDExhausted
}

// reconcileAfterInsert runs the post-commit safety nets for misconfigured
// environments. Failures are logged and swallowed.
func (s *Service) reconcileAfterInsert(ctx context.Context, id int64, in *PropertyInput) {
	if err := s.store.ResyncIDSequence(ctx); err != nil {
		s.log.Warn("id sequence resync failed", logger.Error(err))
	}

	visible, err := s.store.PropertyVisible(ctx, id)
	if err != nil {
		s.log.Warn("post-commit visibility check failed", logger.Error(err), slog.Int64("propertyId", id))
		return
	}
	if visible {
		return
	}

	count, err := s.store.CountProperties(ctx)
	if err != nil {
		s.log.Warn("post-commit count check failed", logger.Error(err))
		return
	}
	if count == 0 {
		s.log.Warn("inserted row not visible and table reads empty, re-inserting", slog.Int64("propertyId", id))
		if err := s.store.Reinsert(ctx, id, in); err != nil {
			s.log.Warn("defensive re-insert failed", logger.Error(err), slog.Int64("propertyId", id))
		}
	}
}

// Get returns a property with its photos.
func (s *Service) Get(ctx context.Context, id int64) (*Property, error) {
	return s.reader.GetByID(ctx, id)
}

// List returns properties matching the given filters, newest first.
func (s *Service) List(ctx context.Context, params ListParams) ([]Property, error) {
	return s.reader.List(ctx, params)
}

// ListMine returns the caller's own listings.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]Property, error) {
	return s.reader.ListByUser(ctx, userID)
}

// Delete removes a property. Non-admin callers may only delete their own rows.
func (s *Service) Delete(ctx context.Context, id int64, userID uuid.UUID, admin bool) error {
	row, err := s.reader.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !admin && (row.UserID == nil || *row.UserID != userID) {
		return apperror.ErrForbidden
	}
	return s.reader.DeleteByID(ctx, id)
}

// mergeResult overlays the caller's normalized fields on the stored row, so
// the response reflects the submission even if a stale read raced the update.
func mergeResult(row *Property, in *PropertyInput) *Property {
	merged := *row
	merged.Price = in.Price
	if in.Title != nil {
		merged.Title = in.Title
	}
	if in.Description != nil {
		merged.Description = in.Description
	}
	if in.Address != nil {
		merged.Address = in.Address
	}
	if in.ImageURL != nil {
		merged.ImageURL = in.ImageURL
	}
	if in.Bedrooms != nil {
		merged.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		merged.Bathrooms = in.Bathrooms
	}
	if in.Area != nil {
		merged.Area = in.Area
	}
	if in.Type != nil {
		merged.Type = in.Type
	}
	if in.SaleRent != nil {
		merged.SaleRent = in.SaleRent
	}
	if in.PostTo != nil {
		merged.PostTo = in.PostTo
	}
	return &merged
}

func titleOrDefault(in *PropertyInput) string {
	if in.Title != nil && *in.Title != "" {
		return *in.Title
	}
	return "New property"
}

func nonEmpty(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
