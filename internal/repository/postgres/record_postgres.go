package postgres

import (
	"context"
	"database/sql"
	"strings"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const recordColumns = `id, tenant_id, object_id, data, owner_id, stage, archived, created_at, updated_at`

// RecordPostgres is a PostgreSQL implementation of repository.RecordRepository.
// Record values are stored in a single JSONB column keyed by field name.
type RecordPostgres struct {
	db *sql.DB
}

// NewRecordPostgres creates a new RecordPostgres repository.
func NewRecordPostgres(db *sql.DB) *RecordPostgres {
	return &RecordPostgres{db: db}
}

var _ repository.RecordRepository = (*RecordPostgres)(nil)

// sortable record columns; anything else falls back to created_at.
var recordSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
	"stage":      "stage",
}

func scanRecord(s scanner) (*model.Record, error) {
	var (
		rec  model.Record
		data []byte
	)
	if err := s.Scan(
		&rec.ID,
		&rec.TenantID,
		&rec.ObjectID,
		&data,
		&rec.OwnerID,
		&rec.Stage,
		&rec.Archived,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(data, &rec.Data); err != nil {
		return nil, err
	}
	if rec.Data == nil {
		rec.Data = map[string]any{}
	}
	return &rec, nil
}

// Create inserts a new record row and returns the stored record.
func (r *RecordPostgres) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	data, err := jsonb(rec.Data, "{}")
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO crm_records (id, tenant_id, object_id, data, owner_id, stage, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.TenantID,
		rec.ObjectID,
		data,
		rec.OwnerID,
		rec.Stage,
		rec.Archived,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	out, err := scanRecord(row)
	return out, mapError(err)
}

// FindByID fetches a single record by its ID.
func (r *RecordPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM crm_records WHERE tenant_id = $1 AND id = $2`
	return scanRecord(r.db.QueryRowContext(ctx, q, tenantID, id))
}

// List returns records matching f using LIMIT/OFFSET pagination and a total count.
func (r *RecordPostgres) List(ctx context.Context, f repository.RecordFilter, pq repository.PageQuery) (*repository.PageResult[model.Record], error) {
	var w whereBuilder
	w.add("tenant_id = $%d", f.TenantID)
	if f.ObjectID != "" {
		w.add("object_id = $%d", f.ObjectID)
	}
	if f.Stage != "" {
		w.add("stage = $%d", f.Stage)
	}
	if f.OwnerID != "" {
		w.add("owner_id = $%d", f.OwnerID)
	}
	if f.Archived != nil {
		w.add("archived = $%d", *f.Archived)
	}
	if f.Search != "" {
		// Matches field values only; key names and JSON punctuation never match.
		w.add(`EXISTS (SELECT 1 FROM jsonb_each_text(data) AS kv WHERE kv.value ILIKE '%%' || $%d || '%%' ESCAPE '\')`, escapeLike(f.Search))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM crm_records`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	col, ok := recordSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	q := `SELECT ` + recordColumns + ` FROM crm_records` + w.String() +
		` ORDER BY ` + col + ` ` + dir + `, id ` + dir +
		` LIMIT ` + w.next(pq.Limit) + ` OFFSET ` + w.next(pq.Offset)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanRecord)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Record]{Items: items, Total: total}, nil
}

// Update overwrites data, owner, stage and archived flag.
func (r *RecordPostgres) Update(ctx context.Context, rec *model.Record) (*model.Record, error) {
	data, err := jsonb(rec.Data, "{}")
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE crm_records
		SET data = $3, owner_id = $4, stage = $5, archived = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.TenantID,
		rec.ID,
		data,
		rec.OwnerID,
		rec.Stage,
		rec.Archived,
		rec.UpdatedAt,
	)
	out, err := scanRecord(row)
	return out, mapError(err)
}

// Delete removes a record by ID; relations cascade.
func (r *RecordPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM crm_records WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the LIKE wildcards in s so it matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
