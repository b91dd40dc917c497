package notifications

import (
	"context"
	"log/slog"

	"github.com/casafind/casafind-server/pkg/logger"
)

// Service handles business logic for notifications
type Service struct {
	repo *Repository
	log  *slog.Logger
}

// NewService creates a new notifications service
func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(logger.Scope("notifications.svc")),
	}
}

// List returns notifications with filters
func (s *Service) List(ctx context.Context, params ListParams) ([]Notification, error) {
	return s.repo.List(ctx, params)
}

// UnreadCount returns the number of unread notifications
func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.UnreadCount(ctx)
}

// MarkRead marks a notification as read
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks all notifications as read
func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}
