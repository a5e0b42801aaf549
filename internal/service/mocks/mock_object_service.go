package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
)

type MockObjectService struct {
	mock.Mock
}

func (m *MockObjectService) List(ctx context.Context, p auth.Principal, includeArchived bool) ([]model.CrmObject, error) {
	args := m.Called(ctx, p, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CrmObject), args.Error(1)
}

func (m *MockObjectService) Get(ctx context.Context, p auth.Principal, id string) (*model.CrmObject, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrmObject), args.Error(1)
}

func (m *MockObjectService) Create(ctx context.Context, p auth.Principal, in service.CreateObjectInput) (*model.CrmObject, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrmObject), args.Error(1)
}

func (m *MockObjectService) Update(ctx context.Context, p auth.Principal, id string, in service.UpdateObjectInput) (*model.CrmObject, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CrmObject), args.Error(1)
}

func (m *MockObjectService) Delete(ctx context.Context, p auth.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}
