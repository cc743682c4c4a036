package notifications

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	// MarkRead flags a single notification as read. It reports
	// pgx.ErrNoRows when the notification does not exist or belongs
	// to a different user.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
