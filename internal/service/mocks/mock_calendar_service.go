package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
)

type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) List(ctx context.Context, p auth.Principal, from time.Time, to time.Time) ([]model.CalendarEvent, error) {
	args := m.Called(ctx, p, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CalendarEvent), args.Error(1)
}

func (m *MockCalendarService) Get(ctx context.Context, p auth.Principal, id string) (*model.CalendarEvent, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CalendarEvent), args.Error(1)
}

func (m *MockCalendarService) Create(ctx context.Context, p auth.Principal, in service.CalendarEventInput) (*model.CalendarEvent, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CalendarEvent), args.Error(1)
}

func (m *MockCalendarService) Update(ctx context.Context, p auth.Principal, id string, in service.UpdateCalendarEventInput) (*model.CalendarEvent, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CalendarEvent), args.Error(1)
}

func (m *MockCalendarService) Delete(ctx context.Context, p auth.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}
