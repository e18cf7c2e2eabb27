package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
)

const maxNotificationMessageLength = 2000

// NotificationKind classifies a direct notification for client rendering.
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationBooking NotificationKind = "booking"
	NotificationBilling NotificationKind = "billing"
	NotificationMessage NotificationKind = "message"
)

// Notification is a direct message delivered to a single user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotificationParams holds the parameters for creating a notification.
type NotificationParams struct {
	UserID  string
	Kind    NotificationKind
	Title   string
	Message string
}

// NewNotification is a factory function to create a valid notification.
func NewNotification(params NotificationParams) (*Notification, error) {
	if params.UserID == "" {
		return nil, apperrors.ErrUserIDRequired
	}
	if !ValidIdentifier(params.UserID) {
		return nil, apperrors.ErrInvalidIdentifier
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, apperrors.ErrNotificationTitleRequired
	}
	if len(params.Message) > maxNotificationMessageLength {
		return nil, apperrors.ErrNotificationTooLong
	}

	kind := params.Kind
	if kind == "" {
		kind = NotificationInfo
	}

	return &Notification{
		ID:        uuid.NewString(),
		UserID:    params.UserID,
		Kind:      kind,
		Title:     title,
		Message:   params.Message,
		CreatedAt: time.Now().UTC(),
	}, nil
}
