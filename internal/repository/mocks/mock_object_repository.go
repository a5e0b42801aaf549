package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/model"
)

type MockObjectRepository struct {
	mock.Mock
}

func (m *MockObjectRepository) Create(ctx context.Context, obj *model.CrmObject) (*model.CrmObject, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrmObject), args.Error(1)
}

func (m *MockObjectRepository) FindByID(ctx context.Context, tenantID, id string) (*model.CrmObject, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrmObject), args.Error(1)
}

func (m *MockObjectRepository) FindByName(ctx context.Context, tenantID, name string) (*model.CrmObject, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrmObject), args.Error(1)
}

func (m *MockObjectRepository) List(ctx context.Context, tenantID string, includeArchived bool) ([]model.CrmObject, error) {
	args := m.Called(ctx, tenantID, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CrmObject), args.Error(1)
}

func (m *MockObjectRepository) Update(ctx context.Context, obj *model.CrmObject) (*model.CrmObject, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrmObject), args.Error(1)
}

func (m *MockObjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockObjectRepository) CountRecords(ctx context.Context, tenantID, objectID string) (int, error) {
	args := m.Called(ctx, tenantID, objectID)
	return args.Int(0), args.Error(1)
}

type MockFieldRepository struct {
	mock.Mock
}

func (m *MockFieldRepository) Create(ctx context.Context, f *model.Field) (*model.Field, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Field), args.Error(1)
}

func (m *MockFieldRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Field, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Field), args.Error(1)
}

func (m *MockFieldRepository) ListByObject(ctx context.Context, tenantID, objectID string) ([]model.Field, error) {
	args := m.Called(ctx, tenantID, objectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Field), args.Error(1)
}

func (m *MockFieldRepository) Update(ctx context.Context, f *model.Field) (*model.Field, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Field), args.Error(1)
}

func (m *MockFieldRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}
