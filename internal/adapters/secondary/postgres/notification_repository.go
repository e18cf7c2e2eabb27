package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

const (
	notificationColumns      = `id, user_id, kind, title, message, created_at`
	defaultNotificationLimit = 50
)

// NotificationRepository is the secondary adapter for direct notifications.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(pool *pgxpool.Pool) ports.NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n       domain.Notification
		message pgtype.Text
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &message, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Message = fromText(message)
	n.CreatedAt = n.CreatedAt.UTC()
	return &n, nil
}

// Create persists a notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	const query = `
INSERT INTO notifications (id, user_id, kind, title, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + notificationColumns

	return scanNotification(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Kind,
		notification.Title,
		toText(notification.Message),
		notification.CreatedAt,
	))
}

// ListByUser returns a user's most recent notifications, newest first.
// A non-positive limit falls back to defaultNotificationLimit.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	const query = `
SELECT ` + notificationColumns + `
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC, id
LIMIT $2`

	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
