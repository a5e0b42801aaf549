package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const objectColumns = `id, tenant_id, name, label, plural_label, description, icon, position, stages, is_system, archived, created_at, updated_at`

// ObjectPostgres is a PostgreSQL implementation of repository.ObjectRepository.
type ObjectPostgres struct {
	db *sql.DB
}

// NewObjectPostgres creates a new ObjectPostgres repository.
func NewObjectPostgres(db *sql.DB) *ObjectPostgres {
	return &ObjectPostgres{db: db}
}

var _ repository.ObjectRepository = (*ObjectPostgres)(nil)

func scanObject(s scanner) (*model.CrmObject, error) {
	var (
		o      model.CrmObject
		stages []byte
	)
	if err := s.Scan(
		&o.ID,
		&o.TenantID,
		&o.Name,
		&o.Label,
		&o.PluralLabel,
		&o.Description,
		&o.Icon,
		&o.Position,
		&stages,
		&o.IsSystem,
		&o.Archived,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(stages, &o.Stages); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts a new object definition.
func (r *ObjectPostgres) Create(ctx context.Context, o *model.CrmObject) (*model.CrmObject, error) {
	return insertObject(ctx, r.db, o)
}

func insertObject(ctx context.Context, q querier, o *model.CrmObject) (*model.CrmObject, error) {
	stages, err := jsonb(o.Stages, "[]")
	if err != nil {
		return nil, err
	}
	const stmt = `
		INSERT INTO crm_objects (id, tenant_id, name, label, plural_label, description, icon, position, stages, is_system, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + objectColumns
	row := q.QueryRowContext(ctx, stmt,
		o.ID,
		o.TenantID,
		o.Name,
		o.Label,
		o.PluralLabel,
		o.Description,
		o.Icon,
		o.Position,
		stages,
		o.IsSystem,
		o.Archived,
		o.CreatedAt,
		o.UpdatedAt,
	)
	out, err := scanObject(row)
	return out, mapError(err)
}

// FindByID fetches a single object by its ID.
func (r *ObjectPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.CrmObject, error) {
	const q = `SELECT ` + objectColumns + ` FROM crm_objects WHERE tenant_id = $1 AND id = $2`
	return scanObject(r.db.QueryRowContext(ctx, q, tenantID, id))
}

// FindByName fetches a single object by its identifier name.
func (r *ObjectPostgres) FindByName(ctx context.Context, tenantID, name string) (*model.CrmObject, error) {
	const q = `SELECT ` + objectColumns + ` FROM crm_objects WHERE tenant_id = $1 AND name = $2`
	return scanObject(r.db.QueryRowContext(ctx, q, tenantID, name))
}

// List returns the tenant's objects.
func (r *ObjectPostgres) List(ctx context.Context, tenantID string, includeArchived bool) ([]model.CrmObject, error) {
	q := `SELECT ` + objectColumns + ` FROM crm_objects WHERE tenant_id = $1`
	if !includeArchived {
		q += ` AND archived = false`
	}
	q += ` ORDER BY position, name`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanObject)
}

// Update overwrites the mutable columns of an object.
func (r *ObjectPostgres) Update(ctx context.Context, o *model.CrmObject) (*model.CrmObject, error) {
	stages, err := jsonb(o.Stages, "[]")
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE crm_objects
		SET label = $3, plural_label = $4, description = $5, icon = $6, position = $7, stages = $8, archived = $9, updated_at = $10
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + objectColumns
	row := r.db.QueryRowContext(ctx, q,
		o.TenantID,
		o.ID,
		o.Label,
		o.PluralLabel,
		o.Description,
		o.Icon,
		o.Position,
		stages,
		o.Archived,
		o.UpdatedAt,
	)
	out, err := scanObject(row)
	return out, mapError(err)
}

// Delete removes an object by ID.
func (r *ObjectPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM crm_objects WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// CountRecords counts records (archived included) that belong to an object.
func (r *ObjectPostgres) CountRecords(ctx context.Context, tenantID, objectID string) (int, error) {
	const q = `SELECT COUNT(*) FROM crm_records WHERE tenant_id = $1 AND object_id = $2`
	var n int
	if err := r.db.QueryRowContext(ctx, q, tenantID, objectID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
