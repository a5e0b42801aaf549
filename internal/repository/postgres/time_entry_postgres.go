package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const timeEntryColumns = `id, tenant_id, user_id, project_id, task_id, description, started_at, ended_at, duration_seconds, billable, created_at`

// TimeEntryPostgres is a PostgreSQL implementation of repository.TimeEntryRepository.
type TimeEntryPostgres struct {
	db *sql.DB
}

func NewTimeEntryPostgres(db *sql.DB) *TimeEntryPostgres {
	return &TimeEntryPostgres{db: db}
}

var _ repository.TimeEntryRepository = (*TimeEntryPostgres)(nil)

func scanTimeEntry(s scanner) (*model.TimeEntry, error) {
	var e model.TimeEntry
	if err := s.Scan(
		&e.ID,
		&e.TenantID,
		&e.UserID,
		&e.ProjectID,
		&e.TaskID,
		&e.Description,
		&e.StartedAt,
		&e.EndedAt,
		&e.DurationSeconds,
		&e.Billable,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an entry. A second running timer for the same user violates
// idx_time_entries_running and surfaces as repository.ErrDuplicate.
func (r *TimeEntryPostgres) Create(ctx context.Context, e *model.TimeEntry) (*model.TimeEntry, error) {
	const q = `
		INSERT INTO time_entries (id, tenant_id, user_id, project_id, task_id, description, started_at, ended_at, duration_seconds, billable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + timeEntryColumns
	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		e.TenantID,
		e.UserID,
		e.ProjectID,
		e.TaskID,
		e.Description,
		e.StartedAt,
		e.EndedAt,
		e.DurationSeconds,
		e.Billable,
		e.CreatedAt,
	)
	out, err := scanTimeEntry(row)
	return out, mapError(err)
}

func (r *TimeEntryPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.TimeEntry, error) {
	const q = `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE tenant_id = $1 AND id = $2`
	return scanTimeEntry(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *TimeEntryPostgres) FindRunning(ctx context.Context, tenantID, userID string) (*model.TimeEntry, error) {
	const q = `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE tenant_id = $1 AND user_id = $2 AND ended_at IS NULL`
	return scanTimeEntry(r.db.QueryRowContext(ctx, q, tenantID, userID))
}

func timeEntryWhere(f repository.TimeEntryFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("tenant_id = $%d", f.TenantID)
	if f.UserID != "" {
		w.add("user_id = $%d", f.UserID)
	}
	if f.ProjectID != "" {
		w.add("project_id = $%d", f.ProjectID)
	}
	if !f.From.IsZero() {
		w.add("started_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		w.add("started_at < $%d", f.To)
	}
	return w
}

func (r *TimeEntryPostgres) List(ctx context.Context, f repository.TimeEntryFilter, pq repository.PageQuery) (*repository.PageResult[model.TimeEntry], error) {
	w := timeEntryWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM time_entries`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + timeEntryColumns + ` FROM time_entries` + w.String() +
		` ORDER BY started_at DESC, id DESC LIMIT ` + w.next(pq.Limit) + ` OFFSET ` + w.next(pq.Offset)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanTimeEntry)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.TimeEntry]{Items: items, Total: total}, nil
}

// Summary totals finished entries grouped by project.
func (r *TimeEntryPostgres) Summary(ctx context.Context, f repository.TimeEntryFilter) ([]model.TimeSummary, error) {
	w := timeEntryWhere(f)
	w.addRaw("ended_at IS NOT NULL")
	q := `
		SELECT project_id,
		       COALESCE(SUM(duration_seconds), 0),
		       COALESCE(SUM(duration_seconds) FILTER (WHERE billable), 0)
		FROM time_entries` + w.String() + `
		GROUP BY project_id
		ORDER BY project_id NULLS LAST`
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (*model.TimeSummary, error) {
		var ts model.TimeSummary
		if err := s.Scan(&ts.ProjectID, &ts.TotalSeconds, &ts.BillableSeconds); err != nil {
			return nil, err
		}
		return &ts, nil
	})
}

func (r *TimeEntryPostgres) Update(ctx context.Context, e *model.TimeEntry) (*model.TimeEntry, error) {
	const q = `
		UPDATE time_entries
		SET project_id = $3, task_id = $4, description = $5, started_at = $6, ended_at = $7, duration_seconds = $8, billable = $9
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + timeEntryColumns
	row := r.db.QueryRowContext(ctx, q,
		e.TenantID,
		e.ID,
		e.ProjectID,
		e.TaskID,
		e.Description,
		e.StartedAt,
		e.EndedAt,
		e.DurationSeconds,
		e.Billable,
	)
	out, err := scanTimeEntry(row)
	return out, mapError(err)
}

func (r *TimeEntryPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM time_entries WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
