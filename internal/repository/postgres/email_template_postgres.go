package postgres

import (
	"context"
	"database/sql"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

const emailTemplateColumns = `id, tenant_id, name, subject, body, created_at, updated_at`

type EmailTemplatePostgres struct {
	db *sql.DB
}

func NewEmailTemplatePostgres(db *sql.DB) *EmailTemplatePostgres {
	return &EmailTemplatePostgres{db: db}
}

var _ repository.EmailTemplateRepository = (*EmailTemplatePostgres)(nil)

func scanEmailTemplate(s scanner) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	if err := s.Scan(&t.ID, &t.TenantID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *EmailTemplatePostgres) Create(ctx context.Context, t *model.EmailTemplate) (*model.EmailTemplate, error) {
	const q = `
		INSERT INTO email_templates (id, tenant_id, name, subject, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + emailTemplateColumns
	out, err := scanEmailTemplate(r.db.QueryRowContext(ctx, q, t.ID, t.TenantID, t.Name, t.Subject, t.Body, t.CreatedAt, t.UpdatedAt))
	return out, mapError(err)
}

func (r *EmailTemplatePostgres) FindByID(ctx context.Context, tenantID, id string) (*model.EmailTemplate, error) {
	const q = `SELECT ` + emailTemplateColumns + ` FROM email_templates WHERE tenant_id = $1 AND id = $2`
	return scanEmailTemplate(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *EmailTemplatePostgres) List(ctx context.Context, tenantID string, pq repository.PageQuery) (*repository.PageResult[model.EmailTemplate], error) {
	const qCount = `SELECT COUNT(*) FROM email_templates WHERE tenant_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tenantID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + emailTemplateColumns + `
		FROM email_templates
		WHERE tenant_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, qList, tenantID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanEmailTemplate)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.EmailTemplate]{Items: items, Total: total}, nil
}

func (r *EmailTemplatePostgres) Update(ctx context.Context, t *model.EmailTemplate) (*model.EmailTemplate, error) {
	const q = `
		UPDATE email_templates
		SET name = $3, subject = $4, body = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + emailTemplateColumns
	out, err := scanEmailTemplate(r.db.QueryRowContext(ctx, q, t.TenantID, t.ID, t.Name, t.Subject, t.Body, t.UpdatedAt))
	return out, mapError(err)
}

func (r *EmailTemplatePostgres) Delete(ctx context.Context, tenantID, id string) error {
	const q = `DELETE FROM email_templates WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
