package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
)

type MockRelationService struct {
	mock.Mock
}

func (m *MockRelationService) ListByRecord(ctx context.Context, p auth.Principal, recordID string) ([]model.Relation, error) {
	args := m.Called(ctx, p, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Relation), args.Error(1)
}

func (m *MockRelationService) Create(ctx context.Context, p auth.Principal, in service.CreateRelationInput) (*model.Relation, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Relation), args.Error(1)
}

func (m *MockRelationService) Delete(ctx context.Context, p auth.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}
