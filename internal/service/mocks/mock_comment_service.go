package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/service"
)

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) List(ctx context.Context, p auth.Principal, entityType string, entityID string, page service.Page) (*service.ListResult[model.Comment], error) {
	args := m.Called(ctx, p, entityType, entityID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Comment]), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, p auth.Principal, in service.CommentInput) (*model.Comment, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, p auth.Principal, id string, in service.UpdateCommentInput) (*model.Comment, error) {
	args := m.Called(ctx, p, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, p auth.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}
