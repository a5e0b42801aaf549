package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

type MockTimeEntryRepository struct {
	mock.Mock
}

func (m *MockTimeEntryRepository) Create(ctx context.Context, e *model.TimeEntry) (*model.TimeEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) FindByID(ctx context.Context, tenantID, id string) (*model.TimeEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) FindRunning(ctx context.Context, tenantID, userID string) (*model.TimeEntry, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) List(ctx context.Context, f repository.TimeEntryFilter, pq repository.PageQuery) (*repository.PageResult[model.TimeEntry], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.TimeEntry]), args.Error(1)
}

func (m *MockTimeEntryRepository) Summary(ctx context.Context, f repository.TimeEntryFilter) ([]model.TimeSummary, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TimeSummary), args.Error(1)
}

func (m *MockTimeEntryRepository) Update(ctx context.Context, e *model.TimeEntry) (*model.TimeEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}
