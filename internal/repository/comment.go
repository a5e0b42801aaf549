package repository

import (
	"context"

	"crmapi/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.Comment, error)
	// ListByEntity returns comments oldest first.
	ListByEntity(ctx context.Context, tenantID, entityType, entityID string, pq PageQuery) (*PageResult[model.Comment], error)
	Update(ctx context.Context, c *model.Comment) (*model.Comment, error)
	Delete(ctx context.Context, tenantID, id string) error
}
