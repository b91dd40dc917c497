package users

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
	"github.com/casafind/casafind-server/pkg/pgutils"
)

// Repository handles database operations for users
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new users repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("users.repo")),
	}
}

// Create inserts a new user row.
func (r *Repository) Create(ctx context.Context, u *User) error {
	_, err := r.db.NewInsert().Model(u).Exec(ctx)
	if err != nil {
		if pgutils.IsUniqueViolation(err) || strings.Contains(err.Error(), "duplicate key") {
			return apperror.ErrConflict.WithMessage("An account with this email already exists")
		}
		r.log.Error("failed to create user", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// FindByEmail finds a user by exact email match. Returns nil when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u := new(User)
	err := r.db.NewSelect().
		Model(u).
		Where("lower(u.email) = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to find user by email", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return u, nil
}

// FindByID returns a user by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u := new(User)
	err := r.db.NewSelect().
		Model(u).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		r.log.Error("failed to find user by id", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return u, nil
}
