package repository

import (
	"context"
	"time"

	"crmapi/internal/model"
)

// NotificationRepository is always scoped to the recipient.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	List(ctx context.Context, tenantID, userID string, unreadOnly bool, pq PageQuery) (*PageResult[model.Notification], error)
	CountUnread(ctx context.Context, tenantID, userID string) (int, error)
	// MarkRead is a no-op for already read notifications; sql.ErrNoRows if the id is unknown.
	MarkRead(ctx context.Context, tenantID, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, tenantID, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, tenantID, userID, id string) error
}
