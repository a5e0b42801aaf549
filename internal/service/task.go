package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

// TaskQuery narrows and pages a task listing.
type TaskQuery struct {
	Page       Page
	ProjectID  string
	Status     string
	AssigneeID string
	RecordID   string
}

type TaskInput struct {
	ProjectID   *string    `json:"projectId" validate:"omitempty,uuid"`
	RecordID    *string    `json:"recordId" validate:"omitempty,uuid"`
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description" validate:"max=10000"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo in_progress review done"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *string    `json:"assigneeId" validate:"omitempty,uuid"`
	DueDate     *time.Time `json:"dueDate"`
	Position    int        `json:"position" validate:"gte=0"`
}

type UpdateTaskInput struct {
	ProjectID   *string    `json:"projectId" validate:"omitempty,uuid"`
	RecordID    *string    `json:"recordId" validate:"omitempty,uuid"`
	Title       *string    `json:"title" validate:"omitempty,min=1,max=300"`
	Description *string    `json:"description" validate:"omitempty,max=10000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=todo in_progress review done"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *string    `json:"assigneeId" validate:"omitempty,uuid"`
	DueDate     *time.Time `json:"dueDate"`
	Position    *int       `json:"position" validate:"omitempty,gte=0"`
}

// MoveTaskInput places a task on a board column.
type MoveTaskInput struct {
	Status   string `json:"status" validate:"required,oneof=todo in_progress review done"`
	Position int    `json:"position" validate:"gte=0"`
}

type TaskService interface {
	List(ctx context.Context, p auth.Principal, q TaskQuery) (*ListResult[model.Task], error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.Task, error)
	Create(ctx context.Context, p auth.Principal, in TaskInput) (*model.Task, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateTaskInput) (*model.Task, error)
	Move(ctx context.Context, p auth.Principal, id string, in MoveTaskInput) (*model.Task, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type taskService struct {
	tasks         repository.TaskRepository
	projects      repository.ProjectRepository
	notifications repository.NotificationRepository
	log           logrus.FieldLogger
	now           func() time.Time
}

// NewTaskService constructs a TaskService. Assigning a task to someone other
// than the caller notifies the assignee.
func NewTaskService(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	notifications repository.NotificationRepository,
	log logrus.FieldLogger,
) TaskService {
	return &taskService{
		tasks:         tasks,
		projects:      projects,
		notifications: notifications,
		log:           log.WithField("component", "tasks"),
		now:           time.Now,
	}
}

func (s *taskService) checkProject(ctx context.Context, tenantID string, projectID *string) error {
	if projectID == nil {
		return nil
	}
	if _, err := s.projects.FindByID(ctx, tenantID, *projectID); err != nil {
		return notFound(err, "project")
	}
	return nil
}

func (s *taskService) List(ctx context.Context, p auth.Principal, q TaskQuery) (*ListResult[model.Task], error) {
	res, err := s.tasks.List(ctx, repository.TaskFilter{
		TenantID:   p.TenantID,
		ProjectID:  q.ProjectID,
		Status:     q.Status,
		AssigneeID: q.AssigneeID,
		RecordID:   q.RecordID,
	}, q.Page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, q.Page), nil
}

func (s *taskService) Get(ctx context.Context, p auth.Principal, id string) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, p.TenantID, id)
	return t, notFound(err, "task")
}

func (s *taskService) Create(ctx context.Context, p auth.Principal, in TaskInput) (*model.Task, error) {
	projectID := optionalString(in.ProjectID)
	if err := s.checkProject(ctx, p.TenantID, projectID); err != nil {
		return nil, err
	}
	status, priority := in.Status, in.Priority
	if status == "" {
		status = model.TaskTodo
	}
	if priority == "" {
		priority = "medium"
	}
	now := s.now().UTC()
	t, err := s.tasks.Create(ctx, &model.Task{
		ID:          uuid.NewString(),
		TenantID:    p.TenantID,
		ProjectID:   projectID,
		RecordID:    optionalString(in.RecordID),
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  optionalString(in.AssigneeID),
		DueDate:     in.DueDate,
		Position:    in.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, notFound(err, "task")
	}
	s.notifyAssignee(ctx, p, t, "")
	return t, nil
}

func (s *taskService) Update(ctx context.Context, p auth.Principal, id string, in UpdateTaskInput) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "task")
	}
	prevAssignee := ""
	if t.AssigneeID != nil {
		prevAssignee = *t.AssigneeID
	}
	if in.ProjectID != nil {
		t.ProjectID = optionalString(in.ProjectID)
		if err := s.checkProject(ctx, p.TenantID, t.ProjectID); err != nil {
			return nil, err
		}
	}
	if in.RecordID != nil {
		t.RecordID = optionalString(in.RecordID)
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.AssigneeID != nil {
		t.AssigneeID = optionalString(in.AssigneeID)
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Position != nil {
		t.Position = *in.Position
	}
	t.UpdatedAt = s.now().UTC()
	updated, err := s.tasks.Update(ctx, t)
	if err != nil {
		return nil, notFound(err, "task")
	}
	s.notifyAssignee(ctx, p, updated, prevAssignee)
	return updated, nil
}

func (s *taskService) Move(ctx context.Context, p auth.Principal, id string, in MoveTaskInput) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "task")
	}
	t.Status = in.Status
	t.Position = in.Position
	t.UpdatedAt = s.now().UTC()
	updated, err := s.tasks.Update(ctx, t)
	return updated, notFound(err, "task")
}

func (s *taskService) Delete(ctx context.Context, p auth.Principal, id string) error {
	return notFound(s.tasks.Delete(ctx, p.TenantID, id), "task")
}

// notifyAssignee is best effort; a failed notification does not fail the write.
func (s *taskService) notifyAssignee(ctx context.Context, p auth.Principal, t *model.Task, prevAssignee string) {
	if t.AssigneeID == nil || *t.AssigneeID == prevAssignee || *t.AssigneeID == p.UserID {
		return
	}
	_, err := s.notifications.Create(ctx, &model.Notification{
		ID:        uuid.NewString(),
		TenantID:  t.TenantID,
		UserID:    *t.AssigneeID,
		Type:      model.NotificationTaskAssigned,
		Title:     "You were assigned: " + t.Title,
		Link:      "/tasks/" + t.ID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.log.WithError(err).WithField("task_id", t.ID).Warn("failed to notify assignee")
	}
}
