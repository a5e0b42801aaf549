package repository

import (
	"context"
	"time"

	"crmapi/internal/model"
)

// TimeEntryFilter narrows a time entry listing. Zero values are ignored.
type TimeEntryFilter struct {
	TenantID  string
	UserID    string
	ProjectID string
	From      time.Time
	To        time.Time
}

type TimeEntryRepository interface {
	Create(ctx context.Context, e *model.TimeEntry) (*model.TimeEntry, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.TimeEntry, error)
	// FindRunning returns the user's open timer or sql.ErrNoRows.
	FindRunning(ctx context.Context, tenantID, userID string) (*model.TimeEntry, error)
	List(ctx context.Context, f TimeEntryFilter, pq PageQuery) (*PageResult[model.TimeEntry], error)
	// Summary totals finished entries grouped by project.
	Summary(ctx context.Context, f TimeEntryFilter) ([]model.TimeSummary, error)
	Update(ctx context.Context, e *model.TimeEntry) (*model.TimeEntry, error)
	Delete(ctx context.Context, tenantID, id string) error
}
