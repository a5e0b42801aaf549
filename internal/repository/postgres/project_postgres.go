package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const projectColumns = `id, tenant_id, name, description, status, record_id, owner_id, start_date, due_date, budget, created_at, updated_at`

type ProjectPostgres struct {
	db *sql.DB
}

func NewProjectPostgres(db *sql.DB) *ProjectPostgres {
	return &ProjectPostgres{db: db}
}

var _ repository.ProjectRepository = (*ProjectPostgres)(nil)

func scanProject(s scanner) (*model.Project, error) {
	var p model.Project
	if err := s.Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.RecordID,
		&p.OwnerID,
		&p.StartDate,
		&p.DueDate,
		&p.Budget,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectPostgres) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	const q = `
		INSERT INTO projects (id, tenant_id, name, description, status, record_id, owner_id, start_date, due_date, budget, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + projectColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.TenantID,
		p.Name,
		p.Description,
		p.Status,
		p.RecordID,
		p.OwnerID,
		p.StartDate,
		p.DueDate,
		p.Budget,
		p.CreatedAt,
		p.UpdatedAt,
	)
	out, err := scanProject(row)
	return out, mapError(err)
}

func (r *ProjectPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE tenant_id = $1 AND id = $2`
	return scanProject(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *ProjectPostgres) List(ctx context.Context, tenantID, status string, pq repository.PageQuery) (*repository.PageResult[model.Project], error) {
	var w whereBuilder
	w.add("tenant_id = $%d", tenantID)
	if status != "" {
		w.add("status = $%d", status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + projectColumns + ` FROM projects` + w.String() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + w.next(pq.Limit) + ` OFFSET ` + w.next(pq.Offset)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanProject)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Project]{Items: items, Total: total}, nil
}

func (r *ProjectPostgres) Update(ctx context.Context, p *model.Project) (*model.Project, error) {
	const q = `
		UPDATE projects
		SET name = $3, description = $4, status = $5, record_id = $6, owner_id = $7, start_date = $8, due_date = $9, budget = $10, updated_at = $11
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + projectColumns
	row := r.db.QueryRowContext(ctx, q,
		p.TenantID,
		p.ID,
		p.Name,
		p.Description,
		p.Status,
		p.RecordID,
		p.OwnerID,
		p.StartDate,
		p.DueDate,
		p.Budget,
		p.UpdatedAt,
	)
	out, err := scanProject(row)
	return out, mapError(err)
}

func (r *ProjectPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM projects WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const taskColumns = `id, tenant_id, project_id, record_id, title, description, status, priority, assignee_id, due_date, position, created_at, updated_at`

type TaskPostgres struct {
	db *sql.DB
}

func NewTaskPostgres(db *sql.DB) *TaskPostgres {
	return &TaskPostgres{db: db}
}

var _ repository.TaskRepository = (*TaskPostgres)(nil)

func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	if err := s.Scan(
		&t.ID,
		&t.TenantID,
		&t.ProjectID,
		&t.RecordID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssigneeID,
		&t.DueDate,
		&t.Position,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskPostgres) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	const q = `
		INSERT INTO tasks (id, tenant_id, project_id, record_id, title, description, status, priority, assignee_id, due_date, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + taskColumns
	row := r.db.QueryRowContext(ctx, q,
		t.ID,
		t.TenantID,
		t.ProjectID,
		t.RecordID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssigneeID,
		t.DueDate,
		t.Position,
		t.CreatedAt,
		t.UpdatedAt,
	)
	out, err := scanTask(row)
	return out, mapError(err)
}

func (r *TaskPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE tenant_id = $1 AND id = $2`
	return scanTask(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *TaskPostgres) List(ctx context.Context, f repository.TaskFilter, pq repository.PageQuery) (*repository.PageResult[model.Task], error) {
	var w whereBuilder
	w.add("tenant_id = $%d", f.TenantID)
	if f.ProjectID != "" {
		w.add("project_id = $%d", f.ProjectID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.AssigneeID != "" {
		w.add("assignee_id = $%d", f.AssigneeID)
	}
	if f.RecordID != "" {
		w.add("record_id = $%d", f.RecordID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + taskColumns + ` FROM tasks` + w.String() +
		` ORDER BY status, position, created_at LIMIT ` + w.next(pq.Limit) + ` OFFSET ` + w.next(pq.Offset)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanTask)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Task]{Items: items, Total: total}, nil
}

func (r *TaskPostgres) Update(ctx context.Context, t *model.Task) (*model.Task, error) {
	const q = `
		UPDATE tasks
		SET project_id = $3, record_id = $4, title = $5, description = $6, status = $7, priority = $8, assignee_id = $9, due_date = $10, position = $11, updated_at = $12
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + taskColumns
	row := r.db.QueryRowContext(ctx, q,
		t.TenantID,
		t.ID,
		t.ProjectID,
		t.RecordID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssigneeID,
		t.DueDate,
		t.Position,
		t.UpdatedAt,
	)
	out, err := scanTask(row)
	return out, mapError(err)
}

func (r *TaskPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM tasks WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
