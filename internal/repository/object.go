package repository

import (
	"context"

	"crmapi/internal/model"
)

// ObjectRepository defines data access for object definitions.
type ObjectRepository interface {
	Create(ctx context.Context, obj *model.CrmObject) (*model.CrmObject, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.CrmObject, error)
	FindByName(ctx context.Context, tenantID, name string) (*model.CrmObject, error)
	// List returns objects ordered by position then name.
	List(ctx context.Context, tenantID string, includeArchived bool) ([]model.CrmObject, error)
	Update(ctx context.Context, obj *model.CrmObject) (*model.CrmObject, error)
	// Delete removes an object; sql.ErrNoRows when nothing matched.
	Delete(ctx context.Context, tenantID, id string) error
	CountRecords(ctx context.Context, tenantID, objectID string) (int, error)
}

// FieldRepository defines data access for field definitions.
type FieldRepository interface {
	Create(ctx context.Context, f *model.Field) (*model.Field, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.Field, error)
	// ListByObject returns fields ordered by position then name.
	ListByObject(ctx context.Context, tenantID, objectID string) ([]model.Field, error)
	Update(ctx context.Context, f *model.Field) (*model.Field, error)
	Delete(ctx context.Context, tenantID, id string) error
}
