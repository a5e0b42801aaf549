package repository

import (
	"context"

	"crmapi/internal/model"
)

// RecordFilter narrows a record listing. Empty strings and nil pointers are ignored.
type RecordFilter struct {
	TenantID string
	ObjectID string
	Stage    string
	OwnerID  string
	Archived *bool
	// Search matches case-insensitively against the JSON text of data.
	Search string
	// SortBy is created_at or updated_at.
	SortBy string
	Desc   bool
}

// RecordRepository defines data access for generic records.
type RecordRepository interface {
	Create(ctx context.Context, rec *model.Record) (*model.Record, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.Record, error)
	List(ctx context.Context, f RecordFilter, pq PageQuery) (*PageResult[model.Record], error)
	Update(ctx context.Context, rec *model.Record) (*model.Record, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// RelationRepository defines data access for record relations.
type RelationRepository interface {
	Create(ctx context.Context, rel *model.Relation) (*model.Relation, error)
	FindByID(ctx context.Context, tenantID, id string) (*model.Relation, error)
	// ListByRecord returns relations where the record is on either end.
	ListByRecord(ctx context.Context, tenantID, recordID string) ([]model.Relation, error)
	Delete(ctx context.Context, tenantID, id string) error
}
