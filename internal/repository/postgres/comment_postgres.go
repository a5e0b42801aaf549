package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const commentColumns = `id, tenant_id, entity_type, entity_id, author_id, body, created_at, updated_at`

type CommentPostgres struct {
	db *sql.DB
}

func NewCommentPostgres(db *sql.DB) *CommentPostgres {
	return &CommentPostgres{db: db}
}

var _ repository.CommentRepository = (*CommentPostgres)(nil)

func scanComment(s scanner) (*model.Comment, error) {
	var c model.Comment
	if err := s.Scan(&c.ID, &c.TenantID, &c.EntityType, &c.EntityID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentPostgres) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `
		INSERT INTO comments (id, tenant_id, entity_type, entity_id, author_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + commentColumns
	row := r.db.QueryRowContext(ctx, q, c.ID, c.TenantID, c.EntityType, c.EntityID, c.AuthorID, c.Body, c.CreatedAt, c.UpdatedAt)
	out, err := scanComment(row)
	return out, mapError(err)
}

func (r *CommentPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Comment, error) {
	const q = `SELECT ` + commentColumns + ` FROM comments WHERE tenant_id = $1 AND id = $2`
	return scanComment(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *CommentPostgres) ListByEntity(ctx context.Context, tenantID, entityType, entityID string, pq repository.PageQuery) (*repository.PageResult[model.Comment], error) {
	const qCount = `SELECT COUNT(*) FROM comments WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tenantID, entityType, entityID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at, id
		LIMIT $4 OFFSET $5`
	rows, err := r.db.QueryContext(ctx, qList, tenantID, entityType, entityID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanComment)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Comment]{Items: items, Total: total}, nil
}

func (r *CommentPostgres) Update(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `
		UPDATE comments SET body = $3, updated_at = $4
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + commentColumns
	return scanComment(r.db.QueryRowContext(ctx, q, c.TenantID, c.ID, c.Body, c.UpdatedAt))
}

func (r *CommentPostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM comments WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
