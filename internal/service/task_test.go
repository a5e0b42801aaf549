package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crmapi/internal/model"
	repoMocks "crmapi/internal/repository/mocks"
)

type taskFixture struct {
	tasks         *repoMocks.MockTaskRepository
	projects      *repoMocks.MockProjectRepository
	notifications *repoMocks.MockNotificationRepository
	hook          *logtest.Hook
	svc           TaskService
}

func newTaskFixture() *taskFixture {
	log, hook := logtest.NewNullLogger()
	f := &taskFixture{
		tasks:         new(repoMocks.MockTaskRepository),
		projects:      new(repoMocks.MockProjectRepository),
		notifications: new(repoMocks.MockNotificationRepository),
		hook:          hook,
	}
	f.svc = NewTaskService(f.tasks, f.projects, f.notifications, log)
	return f
}

func strPtr(s string) *string { return &s }

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      TaskInput
		setupMocks func(f *taskFixture)
		wantErr    error
	}{
		{
			name:  "defaults status and priority",
			input: TaskInput{Title: "Call back"},
			setupMocks: func(f *taskFixture) {
				f.tasks.On("Create", ctx, mock.MatchedBy(func(tk *model.Task) bool {
					return tk.Status == model.TaskTodo && tk.Priority == "medium" && tk.AssigneeID == nil
				})).Return(&model.Task{ID: "k1", TenantID: "t1", Title: "Call back"}, nil)
			},
		},
		{
			name:  "notifies another assignee",
			input: TaskInput{Title: "Send quote", AssigneeID: strPtr("u2")},
			setupMocks: func(f *taskFixture) {
				f.tasks.On("Create", ctx, mock.Anything).
					Return(&model.Task{ID: "k1", TenantID: "t1", Title: "Send quote", AssigneeID: strPtr("u2")}, nil)
				f.notifications.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
					return n.UserID == "u2" &&
						n.Type == model.NotificationTaskAssigned &&
						n.Link == "/tasks/k1" &&
						n.Title == "You were assigned: Send quote"
				})).Return(&model.Notification{ID: "n1"}, nil).Once()
			},
		},
		{
			name:  "self assignment is silent",
			input: TaskInput{Title: "Mine", AssigneeID: strPtr("u1")},
			setupMocks: func(f *taskFixture) {
				f.tasks.On("Create", ctx, mock.Anything).
					Return(&model.Task{ID: "k1", TenantID: "t1", AssigneeID: strPtr("u1")}, nil)
			},
		},
		{
			name:  "unknown project",
			input: TaskInput{Title: "x", ProjectID: strPtr("p9")},
			setupMocks: func(f *taskFixture) {
				f.projects.On("FindByID", ctx, "t1", "p9").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTaskFixture()
			tt.setupMocks(f)

			_, err := f.svc.Create(ctx, principal, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			f.tasks.AssertExpectations(t)
			f.notifications.AssertExpectations(t)
			if len(f.notifications.ExpectedCalls) == 0 {
				f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestTaskService_UpdateReassign(t *testing.T) {
	ctx := context.Background()

	t.Run("unchanged assignee is not notified again", func(t *testing.T) {
		f := newTaskFixture()
		f.tasks.On("FindByID", ctx, "t1", "k1").Return(&model.Task{ID: "k1", TenantID: "t1", AssigneeID: strPtr("u2")}, nil)
		f.tasks.On("Update", ctx, mock.Anything).Return(&model.Task{ID: "k1", TenantID: "t1", AssigneeID: strPtr("u2")}, nil)

		_, err := f.svc.Update(ctx, principal, "k1", UpdateTaskInput{Title: strPtr("renamed")})
		require.NoError(t, err)
		f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("failed notification does not fail the update", func(t *testing.T) {
		f := newTaskFixture()
		f.tasks.On("FindByID", ctx, "t1", "k1").Return(&model.Task{ID: "k1", TenantID: "t1"}, nil)
		f.tasks.On("Update", ctx, mock.Anything).Return(&model.Task{ID: "k1", TenantID: "t1", AssigneeID: strPtr("u3")}, nil)
		f.notifications.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))

		tk, err := f.svc.Update(ctx, principal, "k1", UpdateTaskInput{AssigneeID: strPtr("u3")})
		require.NoError(t, err)
		assert.Equal(t, "u3", *tk.AssigneeID)
		require.NotNil(t, f.hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, f.hook.LastEntry().Level)
		assert.Equal(t, "k1", f.hook.LastEntry().Data["task_id"])
	})
}

func TestTaskService_Move(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture()
	f.svc.(*taskService).now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	f.tasks.On("FindByID", ctx, "t1", "k1").Return(&model.Task{ID: "k1", Status: model.TaskTodo}, nil)
	f.tasks.On("Update", ctx, mock.MatchedBy(func(tk *model.Task) bool {
		return tk.Status == "done" && tk.Position == 2 && tk.UpdatedAt.Year() == 2026
	})).Return(&model.Task{ID: "k1", Status: "done", Position: 2}, nil)

	tk, err := f.svc.Move(ctx, principal, "k1", MoveTaskInput{Status: "done", Position: 2})
	require.NoError(t, err)
	assert.Equal(t, "done", tk.Status)
}
