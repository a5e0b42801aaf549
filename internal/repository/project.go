package repository

import (
	"context"

	"crmapi/internal/model"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) (*model.Project, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.Project, error)
	List(ctx context.Context, tenantID, status string, pq PageQuery) (*PageResult[model.Project], error)
	Update(ctx context.Context, p *model.Project) (*model.Project, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// TaskFilter narrows a task listing. Empty values are ignored.
type TaskFilter struct {
	TenantID   string
	ProjectID  string
	Status     string
	AssigneeID string
	RecordID   string
}

type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.Task, error)
	// List orders by status, position, created_at so boards render column by column.
	List(ctx context.Context, f TaskFilter, pq PageQuery) (*PageResult[model.Task], error)
	Update(ctx context.Context, t *model.Task) (*model.Task, error)
	Delete(ctx context.Context, tenantID, id string) error
}
