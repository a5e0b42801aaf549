package repository

import (
	"context"
	"time"

	"crmapi/internal/model"
)

type CalendarRepository interface {
	Create(ctx context.Context, ev *model.CalendarEvent) (*model.CalendarEvent, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.CalendarEvent, error)
	// ListRange returns events overlapping [from, to].
	ListRange(ctx context.Context, tenantID string, from, to time.Time) ([]model.CalendarEvent, error)
	Update(ctx context.Context, ev *model.CalendarEvent) (*model.CalendarEvent, error)
	Delete(ctx context.Context, tenantID, id string) error
}
