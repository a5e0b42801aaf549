package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) Create(ctx context.Context, wf *model.Workflow) (*model.Workflow, error) {
	args := m.Called(ctx, wf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Workflow, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) List(ctx context.Context, tenantID string, pq repository.PageQuery) (*repository.PageResult[model.Workflow], error) {
	args := m.Called(ctx, tenantID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Workflow]), args.Error(1)
}

func (m *MockWorkflowRepository) ListActive(ctx context.Context, tenantID, objectID, triggerType string) ([]model.Workflow, error) {
	args := m.Called(ctx, tenantID, objectID, triggerType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) Update(ctx context.Context, wf *model.Workflow) (*model.Workflow, error) {
	args := m.Called(ctx, wf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockWorkflowRepository) CreateRun(ctx context.Context, run *model.WorkflowRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockWorkflowRepository) ListRuns(ctx context.Context, tenantID, workflowID string, pq repository.PageQuery) (*repository.PageResult[model.WorkflowRun], error) {
	args := m.Called(ctx, tenantID, workflowID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.WorkflowRun]), args.Error(1)
}
