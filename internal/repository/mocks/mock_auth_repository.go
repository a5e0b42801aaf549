package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateTenantWithUser(ctx context.Context, tenant *model.Tenant, user *model.User) (*model.User, error) {
	args := m.Called(ctx, tenant, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id string) (*model.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) DeleteTenant(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

type MockEmailCodeRepository struct {
	mock.Mock
}

func (m *MockEmailCodeRepository) Create(ctx context.Context, code *model.EmailCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockEmailCodeRepository) Latest(ctx context.Context, email string) (*model.EmailCode, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailCode), args.Error(1)
}

func (m *MockEmailCodeRepository) IncrementAttempts(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmailCodeRepository) Consume(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
