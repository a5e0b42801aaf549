package service

import (
	"context"
	"time"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

// NotificationService serves the caller's own notifications. Clients poll;
// there is no push channel.
type NotificationService interface {
	List(ctx context.Context, p auth.Principal, unreadOnly bool, page Page) (*ListResult[model.Notification], error)
	UnreadCount(ctx context.Context, p auth.Principal) (int, error)
	MarkRead(ctx context.Context, p auth.Principal, id string) error
	MarkAllRead(ctx context.Context, p auth.Principal) (int64, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type notificationService struct {
	notifications repository.NotificationRepository
	now           func() time.Time
}

func NewNotificationService(notifications repository.NotificationRepository) NotificationService {
	return &notificationService{notifications: notifications, now: time.Now}
}

func (s *notificationService) List(ctx context.Context, p auth.Principal, unreadOnly bool, page Page) (*ListResult[model.Notification], error) {
	res, err := s.notifications.List(ctx, p.TenantID, p.UserID, unreadOnly, page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, page), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, p auth.Principal) (int, error) {
	return s.notifications.CountUnread(ctx, p.TenantID, p.UserID)
}

func (s *notificationService) MarkRead(ctx context.Context, p auth.Principal, id string) error {
	return notFound(s.notifications.MarkRead(ctx, p.TenantID, p.UserID, id, s.now().UTC()), "notification")
}

func (s *notificationService) MarkAllRead(ctx context.Context, p auth.Principal) (int64, error) {
	return s.notifications.MarkAllRead(ctx, p.TenantID, p.UserID, s.now().UTC())
}

func (s *notificationService) Delete(ctx context.Context, p auth.Principal, id string) error {
	return notFound(s.notifications.Delete(ctx, p.TenantID, p.UserID, id), "notification")
}
