package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
)

type MockFieldService struct {
	mock.Mock
}

func (m *MockFieldService) List(ctx context.Context, p auth.Principal, objectID string) ([]model.Field, error) {
	args := m.Called(ctx, p, objectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Field), args.Error(1)
}

func (m *MockFieldService) Get(ctx context.Context, p auth.Principal, id string) (*model.Field, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Field), args.Error(1)
}

func (m *MockFieldService) Create(ctx context.Context, p auth.Principal, in service.CreateFieldInput) (*model.Field, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Field), args.Error(1)
}

func (m *MockFieldService) Update(ctx context.Context, p auth.Principal, id string, in service.UpdateFieldInput) (*model.Field, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Field), args.Error(1)
}

func (m *MockFieldService) Delete(ctx context.Context, p auth.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}
