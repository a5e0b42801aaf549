package repository

import (
	"context"

	"crmapi/internal/model"
)

type EmailTemplateRepository interface {
	Create(ctx context.Context, t *model.EmailTemplate) (*model.EmailTemplate, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.EmailTemplate, error)
	List(ctx context.Context, tenantID string, pq PageQuery) (*PageResult[model.EmailTemplate], error)
	Update(ctx context.Context, t *model.EmailTemplate) (*model.EmailTemplate, error)
	Delete(ctx context.Context, tenantID, id string) error
}
