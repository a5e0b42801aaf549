package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
	"crmapi/internal/workflow"
)

type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) List(ctx context.Context, p auth.Principal, page service.Page) (*service.ListResult[model.Workflow], error) {
	args := m.Called(ctx, p, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Workflow]), args.Error(1)
}

func (m *MockWorkflowService) Get(ctx context.Context, p auth.Principal, id string) (*model.Workflow, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowService) Create(ctx context.Context, p auth.Principal, in service.WorkflowInput) (*model.Workflow, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowService) Update(ctx context.Context, p auth.Principal, id string, in service.UpdateWorkflowInput) (*model.Workflow, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowService) Delete(ctx context.Context, p auth.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

func (m *MockWorkflowService) Compile(ctx context.Context, g workflow.Graph) (*model.Definition, error) {
	args := m.Called(ctx, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Definition), args.Error(1)
}

func (m *MockWorkflowService) Graph(ctx context.Context, p auth.Principal, id string) (*workflow.Graph, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Graph), args.Error(1)
}

func (m *MockWorkflowService) Run(ctx context.Context, p auth.Principal, id string, in service.RunWorkflowInput) (*model.WorkflowRun, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowRun), args.Error(1)
}

func (m *MockWorkflowService) Runs(ctx context.Context, p auth.Principal, id string, page service.Page) (*service.ListResult[model.WorkflowRun], error) {
	args := m.Called(ctx, p, id, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.WorkflowRun]), args.Error(1)
}
