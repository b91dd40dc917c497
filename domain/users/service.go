package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/auth"
	"github.com/casafind/casafind-server/pkg/logger"
)

// Service handles signup and login flows.
type Service struct {
	repo   *Repository
	issuer *auth.TokenIssuer
	log    *slog.Logger
}

// NewService creates a new users service
func NewService(repo *Repository, issuer *auth.TokenIssuer, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		issuer: issuer,
		log:    log.With(logger.Scope("users.svc")),
	}
}

// Signup registers a new user account and issues a token for it.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ErrValidation.WithMessage("Name and a valid email are required")
	}
	if len(req.Password) < 6 {
		return nil, apperror.ErrValidation.WithMessage("Password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.ErrInternal.WithInternal(err)
	}

	u := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(u.ID.String(), u.Role)
	if err != nil {
		return nil, apperror.ErrInternal.WithInternal(err)
	}

	s.log.Info("user signed up", slog.String("userId", u.ID.String()))
	return &AuthResponse{Token: token, User: u}, nil
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	return s.login(ctx, req, false)
}

// AdminLogin is Login restricted to accounts with the admin role.
func (s *Service) AdminLogin(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	return s.login(ctx, req, true)
}

func (s *Service) login(ctx context.Context, req *LoginRequest, adminOnly bool) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	// Check the password even for unknown accounts to keep timing uniform.
	hash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if u != nil {
		hash = u.PasswordHash
	}
	if !auth.CheckPassword(req.Password, hash) || u == nil {
		return nil, apperror.ErrUnauthorized.WithMessage("Invalid email or password")
	}
	if adminOnly && u.Role != RoleAdmin {
		return nil, apperror.ErrForbidden.WithMessage("Admin access required")
	}

	token, err := s.issuer.Issue(u.ID.String(), u.Role)
	if err != nil {
		return nil, apperror.ErrInternal.WithInternal(err)
	}
	return &AuthResponse{Token: token, User: u}, nil
}

// Me returns the account for the given user id.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
