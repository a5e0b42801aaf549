package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const workflowColumns = `id, tenant_id, name, description, object_id, active, trigger, conditions, actions, created_at, updated_at`

const workflowRunColumns = `id, tenant_id, workflow_id, record_id, status, error, started_at, finished_at`

// WorkflowPostgres is a PostgreSQL implementation of repository.WorkflowRepository.
// Trigger, conditions and actions are stored as JSONB.
type WorkflowPostgres struct {
	db *sql.DB
}

// NewWorkflowPostgres creates a new WorkflowPostgres repository.
func NewWorkflowPostgres(db *sql.DB) *WorkflowPostgres {
	return &WorkflowPostgres{db: db}
}

var _ repository.WorkflowRepository = (*WorkflowPostgres)(nil)

func scanWorkflow(s scanner) (*model.Workflow, error) {
	var (
		wf                           model.Workflow
		trigger, conditions, actions []byte
	)
	if err := s.Scan(
		&wf.ID,
		&wf.TenantID,
		&wf.Name,
		&wf.Description,
		&wf.ObjectID,
		&wf.Active,
		&trigger,
		&conditions,
		&actions,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(trigger, &wf.Trigger); err != nil {
		return nil, err
	}
	if err := decodeJSON(conditions, &wf.Conditions); err != nil {
		return nil, err
	}
	if err := decodeJSON(actions, &wf.Actions); err != nil {
		return nil, err
	}
	if wf.Conditions == nil {
		wf.Conditions = []model.Condition{}
	}
	if wf.Actions == nil {
		wf.Actions = []model.Action{}
	}
	return &wf, nil
}

func encodeDefinition(def model.Definition) (trigger, conditions, actions []byte, err error) {
	if trigger, err = jsonb(def.Trigger, "{}"); err != nil {
		return nil, nil, nil, err
	}
	if conditions, err = jsonb(def.Conditions, "[]"); err != nil {
		return nil, nil, nil, err
	}
	if actions, err = jsonb(def.Actions, "[]"); err != nil {
		return nil, nil, nil, err
	}
	return trigger, conditions, actions, nil
}

// Create inserts a new workflow.
func (r *WorkflowPostgres) Create(ctx context.Context, wf *model.Workflow) (*model.Workflow, error) {
	trigger, conditions, actions, err := encodeDefinition(wf.Definition)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO crm_workflows (id, tenant_id, name, description, object_id, active, trigger, conditions, actions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + workflowColumns
	row := r.db.QueryRowContext(ctx, q,
		wf.ID,
		wf.TenantID,
		wf.Name,
		wf.Description,
		wf.ObjectID,
		wf.Active,
		trigger,
		conditions,
		actions,
		wf.CreatedAt,
		wf.UpdatedAt,
	)
	out, err := scanWorkflow(row)
	return out, mapError(err)
}

// FindByID fetches a single workflow by its ID.
func (r *WorkflowPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Workflow, error) {
	const q = `SELECT ` + workflowColumns + ` FROM crm_workflows WHERE tenant_id = $1 AND id = $2`
	return scanWorkflow(r.db.QueryRowContext(ctx, q, tenantID, id))
}

// List returns workflows newest first.
func (r *WorkflowPostgres) List(ctx context.Context, tenantID string, pq repository.PageQuery) (*repository.PageResult[model.Workflow], error) {
	const qCount = `SELECT COUNT(*) FROM crm_workflows WHERE tenant_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tenantID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + workflowColumns + `
		FROM crm_workflows
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, qList, tenantID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanWorkflow)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Workflow]{Items: items, Total: total}, nil
}

// ListActive returns active workflows for triggerType, scoped to objectID or unscoped.
func (r *WorkflowPostgres) ListActive(ctx context.Context, tenantID, objectID, triggerType string) ([]model.Workflow, error) {
	const q = `
		SELECT ` + workflowColumns + `
		FROM crm_workflows
		WHERE tenant_id = $1
		  AND active = true
		  AND trigger->>'type' = $2
		  AND (object_id IS NULL OR object_id::text = $3)
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, tenantID, triggerType, objectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWorkflow)
}

// Update overwrites the workflow definition and metadata.
func (r *WorkflowPostgres) Update(ctx context.Context, wf *model.Workflow) (*model.Workflow, error) {
	trigger, conditions, actions, err := encodeDefinition(wf.Definition)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE crm_workflows
		SET name = $3, description = $4, object_id = $5, active = $6, trigger = $7, conditions = $8, actions = $9, updated_at = $10
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + workflowColumns
	row := r.db.QueryRowContext(ctx, q,
		wf.TenantID,
		wf.ID,
		wf.Name,
		wf.Description,
		wf.ObjectID,
		wf.Active,
		trigger,
		conditions,
		actions,
		wf.UpdatedAt,
	)
	out, err := scanWorkflow(row)
	return out, mapError(err)
}

// Delete removes a workflow and, by cascade, its runs.
func (r *WorkflowPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM crm_workflows WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CreateRun appends an entry to the run log.
func (r *WorkflowPostgres) CreateRun(ctx context.Context, run *model.WorkflowRun) error {
	const q = `
		INSERT INTO crm_workflow_runs (id, tenant_id, workflow_id, record_id, status, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q,
		run.ID,
		run.TenantID,
		run.WorkflowID,
		run.RecordID,
		run.Status,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)
	return mapError(err)
}

// ListRuns returns the run log of one workflow, newest first.
func (r *WorkflowPostgres) ListRuns(ctx context.Context, tenantID, workflowID string, pq repository.PageQuery) (*repository.PageResult[model.WorkflowRun], error) {
	const qCount = `SELECT COUNT(*) FROM crm_workflow_runs WHERE tenant_id = $1 AND workflow_id = $2`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tenantID, workflowID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + workflowRunColumns + `
		FROM crm_workflow_runs
		WHERE tenant_id = $1 AND workflow_id = $2
		ORDER BY started_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, qList, tenantID, workflowID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, func(s scanner) (*model.WorkflowRun, error) {
		var run model.WorkflowRun
		if err := s.Scan(
			&run.ID,
			&run.TenantID,
			&run.WorkflowID,
			&run.RecordID,
			&run.Status,
			&run.Error,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, err
		}
		return &run, nil
	})
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.WorkflowRun]{Items: items, Total: total}, nil
}
