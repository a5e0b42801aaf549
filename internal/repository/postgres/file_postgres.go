package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const fileColumns = `id, tenant_id, entity_type, entity_id, filename, original_name, storage_path, size, content_type, uploaded_by, created_at`

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

func scanFile(s scanner) (*model.File, error) {
	var f model.File
	if err := s.Scan(
		&f.ID,
		&f.TenantID,
		&f.EntityType,
		&f.EntityID,
		&f.Filename,
		&f.OriginalName,
		&f.StoragePath,
		&f.Size,
		&f.ContentType,
		&f.UploadedBy,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, tenant_id, entity_type, entity_id, filename, original_name, storage_path, size, content_type, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.TenantID,
		f.EntityType,
		f.EntityID,
		f.Filename,
		f.OriginalName,
		f.StoragePath,
		f.Size,
		f.ContentType,
		f.UploadedBy,
		f.CreatedAt,
	)
	out, err := scanFile(row)
	return out, mapError(err)
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, tenantID, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE tenant_id = $1 AND id = $2`
	return scanFile(r.db.QueryRowContext(ctx, q, tenantID, id))
}

// List returns files using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) List(ctx context.Context, tenantID, entityType, entityID string, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	var w whereBuilder
	w.add("tenant_id = $%d", tenantID)
	if entityType != "" {
		w.add("entity_type = $%d", entityType)
	}
	if entityID != "" {
		w.add("entity_id = $%d", entityID)
	}

	// Count total rows
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	q := `SELECT ` + fileColumns + ` FROM files` + w.String() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + w.next(pq.Limit) + ` OFFSET ` + w.next(pq.Offset)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanFile)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.File]{Items: items, Total: total}, nil
}

// Delete removes a file row by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM files WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.ExecContext(ctx, q, tenantID, id)
	return err
}
