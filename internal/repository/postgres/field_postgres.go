package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const fieldColumns = `id, tenant_id, object_id, name, label, type, required, position, config, created_at, updated_at`

// FieldPostgres is a PostgreSQL implementation of repository.FieldRepository.
type FieldPostgres struct {
	db *sql.DB
}

func NewFieldPostgres(db *sql.DB) *FieldPostgres {
	return &FieldPostgres{db: db}
}

var _ repository.FieldRepository = (*FieldPostgres)(nil)

func scanField(s scanner) (*model.Field, error) {
	var (
		f      model.Field
		typ    string
		config []byte
	)
	if err := s.Scan(
		&f.ID,
		&f.TenantID,
		&f.ObjectID,
		&f.Name,
		&f.Label,
		&typ,
		&f.Required,
		&f.Position,
		&config,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	f.Type = model.FieldType(typ)
	if err := decodeJSON(config, &f.Config); err != nil {
		return nil, err
	}
	if f.Config == nil {
		f.Config = map[string]any{}
	}
	return &f, nil
}

func (r *FieldPostgres) Create(ctx context.Context, f *model.Field) (*model.Field, error) {
	return insertField(ctx, r.db, f)
}

func insertField(ctx context.Context, q querier, f *model.Field) (*model.Field, error) {
	config, err := jsonb(f.Config, "{}")
	if err != nil {
		return nil, err
	}
	const stmt = `
		INSERT INTO crm_fields (id, tenant_id, object_id, name, label, type, required, position, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + fieldColumns
	row := q.QueryRowContext(ctx, stmt,
		f.ID,
		f.TenantID,
		f.ObjectID,
		f.Name,
		f.Label,
		string(f.Type),
		f.Required,
		f.Position,
		config,
		f.CreatedAt,
		f.UpdatedAt,
	)
	out, err := scanField(row)
	return out, mapError(err)
}

func (r *FieldPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Field, error) {
	const q = `SELECT ` + fieldColumns + ` FROM crm_fields WHERE tenant_id = $1 AND id = $2`
	return scanField(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *FieldPostgres) ListByObject(ctx context.Context, tenantID, objectID string) ([]model.Field, error) {
	const q = `SELECT ` + fieldColumns + ` FROM crm_fields WHERE tenant_id = $1 AND object_id = $2 ORDER BY position, name`
	rows, err := r.db.QueryContext(ctx, q, tenantID, objectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanField)
}

// Update changes label, required, position and config. Name and type are immutable.
func (r *FieldPostgres) Update(ctx context.Context, f *model.Field) (*model.Field, error) {
	config, err := jsonb(f.Config, "{}")
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE crm_fields
		SET label = $3, required = $4, position = $5, config = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + fieldColumns
	row := r.db.QueryRowContext(ctx, q,
		f.TenantID,
		f.ID,
		f.Label,
		f.Required,
		f.Position,
		config,
		f.UpdatedAt,
	)
	out, err := scanField(row)
	return out, mapError(err)
}

func (r *FieldPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM crm_fields WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
