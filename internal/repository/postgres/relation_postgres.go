package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const relationColumns = `id, tenant_id, type, from_record_id, to_record_id, created_at`

type RelationPostgres struct {
	db *sql.DB
}

func NewRelationPostgres(db *sql.DB) *RelationPostgres {
	return &RelationPostgres{db: db}
}

var _ repository.RelationRepository = (*RelationPostgres)(nil)

func scanRelation(s scanner) (*model.Relation, error) {
	var rel model.Relation
	if err := s.Scan(
		&rel.ID,
		&rel.TenantID,
		&rel.Type,
		&rel.FromRecordID,
		&rel.ToRecordID,
		&rel.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *RelationPostgres) Create(ctx context.Context, rel *model.Relation) (*model.Relation, error) {
	const q = `
		INSERT INTO crm_relations (id, tenant_id, type, from_record_id, to_record_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + relationColumns
	row := r.db.QueryRowContext(ctx, q,
		rel.ID,
		rel.TenantID,
		rel.Type,
		rel.FromRecordID,
		rel.ToRecordID,
		rel.CreatedAt,
	)
	out, err := scanRelation(row)
	return out, mapError(err)
}

func (r *RelationPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Relation, error) {
	const q = `SELECT ` + relationColumns + ` FROM crm_relations WHERE tenant_id = $1 AND id = $2`
	return scanRelation(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *RelationPostgres) ListByRecord(ctx context.Context, tenantID, recordID string) ([]model.Relation, error) {
	const q = `
		SELECT ` + relationColumns + `
		FROM crm_relations
		WHERE tenant_id = $1 AND (from_record_id = $2 OR to_record_id = $2)
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, tenantID, recordID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRelation)
}

func (r *RelationPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM crm_relations WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
