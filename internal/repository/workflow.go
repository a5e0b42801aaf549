package repository

import (
	"context"

	"crmapi/internal/model"
)

// WorkflowRepository defines data access for automations and their run log.
type WorkflowRepository interface {
	Create(ctx context.Context, wf *model.Workflow) (*model.Workflow, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.Workflow, error)
	List(ctx context.Context, tenantID string, pq PageQuery) (*PageResult[model.Workflow], error)
	// ListActive returns active workflows for a trigger type scoped to objectID
	// or to no object at all.
	ListActive(ctx context.Context, tenantID, objectID, triggerType string) ([]model.Workflow, error)
	Update(ctx context.Context, wf *model.Workflow) (*model.Workflow, error)
	Delete(ctx context.Context, tenantID, id string) error

	CreateRun(ctx context.Context, run *model.WorkflowRun) error
	ListRuns(ctx context.Context, tenantID, workflowID string, pq PageQuery) (*PageResult[model.WorkflowRun], error)
}
