package repository

import (
	"context"
	"time"

	"crmapi/internal/model"
)

// UserRepository persists tenants and their users.
type UserRepository interface {
	// CreateTenantWithUser inserts the tenant and its first user in one transaction.
	CreateTenantWithUser(ctx context.Context, tenant *model.Tenant, user *model.User) (*model.User, error)

	// FindByEmail looks a user up across tenants; emails are globally unique.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	FindByID(ctx context.Context, tenantID, id string) (*model.User, error)

	// DeleteTenant removes a tenant and, by cascade, everything it owns.
	DeleteTenant(ctx context.Context, tenantID string) error
}

// EmailCodeRepository persists one-time sign-in codes.
type EmailCodeRepository interface {
	Create(ctx context.Context, code *model.EmailCode) error

	// Latest returns the newest unconsumed code for email.
	Latest(ctx context.Context, email string) (*model.EmailCode, error)

	IncrementAttempts(ctx context.Context, id string) error
	Consume(ctx context.Context, id string, at time.Time) error
}
