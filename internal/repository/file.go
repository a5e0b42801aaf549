package repository

import (
	"context"

	"crmapi/internal/model"
)

// FileRepository defines data access for file metadata using SQL queries only.
// No business logic here — strictly persistence operations.
type FileRepository interface {
	// Create inserts a new file row and returns the stored record.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its ID within a tenant.
	FindByID(ctx context.Context, tenantID, id string) (*model.File, error)

	// List returns a page of files, optionally restricted to one entity.
	List(ctx context.Context, tenantID, entityType, entityID string, pq PageQuery) (*PageResult[model.File], error)

	// Delete removes a file row by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, tenantID, id string) error
}
