package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
)

type MockTimeEntryService struct {
	mock.Mock
}

func (m *MockTimeEntryService) List(ctx context.Context, p auth.Principal, q service.TimeEntryQuery) (*service.ListResult[model.TimeEntry], error) {
	args := m.Called(ctx, p, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.TimeEntry]), args.Error(1)
}

func (m *MockTimeEntryService) Get(ctx context.Context, p auth.Principal, id string) (*model.TimeEntry, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryService) Create(ctx context.Context, p auth.Principal, in service.TimeEntryInput) (*model.TimeEntry, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryService) Update(ctx context.Context, p auth.Principal, id string, in service.UpdateTimeEntryInput) (*model.TimeEntry, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryService) Delete(ctx context.Context, p auth.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

func (m *MockTimeEntryService) Start(ctx context.Context, p auth.Principal, in service.StartTimerInput) (*model.TimeEntry, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryService) Stop(ctx context.Context, p auth.Principal) (*model.TimeEntry, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryService) Running(ctx context.Context, p auth.Principal) (*model.TimeEntry, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryService) Summary(ctx context.Context, p auth.Principal, from time.Time, to time.Time) ([]model.TimeSummary, error) {
	args := m.Called(ctx, p, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TimeSummary), args.Error(1)
}
