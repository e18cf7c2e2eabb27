package services

import (
	"context"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationService stores direct notifications and pushes them to the recipient.
type NotificationService struct {
	notificationRepo ports.NotificationRepository
	fanOut           ports.FanOut
}

var _ ports.NotificationService = (*NotificationService)(nil)

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo ports.NotificationRepository, fanOut ports.FanOut) ports.NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		fanOut:           fanOut,
	}
}

// Send persists the notification, then delivers it to the user's private room.
// Offline users read it later through ListForUser.
func (s *NotificationService) Send(ctx context.Context, params ports.SendNotificationParams) (*domain.Notification, error) {
	notification, err := domain.NewNotification(domain.NotificationParams{
		UserID:  params.UserID,
		Kind:    params.Kind,
		Title:   params.Title,
		Message: params.Message,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.notificationRepo.Create(ctx, notification)
	if err != nil {
		return nil, err
	}

	s.fanOut.SendNotification(created.UserID, created)
	return created, nil
}

// ListForUser returns the most recent notifications of a user.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, apperrors.ErrUserIDRequired
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	limit = min(limit, maxNotificationLimit)
	return s.notificationRepo.ListByUser(ctx, userID, limit)
}
