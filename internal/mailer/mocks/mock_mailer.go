package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crmapi/internal/mailer"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
