package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
)

type MockEmailTemplateService struct {
	mock.Mock
}

func (m *MockEmailTemplateService) List(ctx context.Context, p auth.Principal, page service.Page) (*service.ListResult[model.EmailTemplate], error) {
	args := m.Called(ctx, p, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.EmailTemplate]), args.Error(1)
}

func (m *MockEmailTemplateService) Get(ctx context.Context, p auth.Principal, id string) (*model.EmailTemplate, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateService) Create(ctx context.Context, p auth.Principal, in service.EmailTemplateInput) (*model.EmailTemplate, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateService) Update(ctx context.Context, p auth.Principal, id string, in service.UpdateEmailTemplateInput) (*model.EmailTemplate, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailTemplate), args.Error(1)
}

func (m *MockEmailTemplateService) Delete(ctx context.Context, p auth.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

func (m *MockEmailTemplateService) Preview(ctx context.Context, p auth.Principal, id string, data map[string]any) (*service.RenderedEmail, error) {
	args := m.Called(ctx, p, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RenderedEmail), args.Error(1)
}

func (m *MockEmailTemplateService) Send(ctx context.Context, p auth.Principal, id string, in service.SendTemplateInput) (*service.RenderedEmail, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RenderedEmail), args.Error(1)
}
