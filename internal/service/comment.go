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

// Entity types comments and files can attach to.
const (
	EntityRecord  = "record"
	EntityTask    = "task"
	EntityProject = "project"
)

type CommentInput struct {
	EntityType string `json:"entityType" validate:"required,oneof=record task project"`
	EntityID   string `json:"entityId" validate:"required,uuid"`
	Body       string `json:"body" validate:"required,max=10000"`
}

type UpdateCommentInput struct {
	Body string `json:"body" validate:"required,max=10000"`
}

type CommentService interface {
	List(ctx context.Context, p auth.Principal, entityType, entityID string, page Page) (*ListResult[model.Comment], error)
	Create(ctx context.Context, p auth.Principal, in CommentInput) (*model.Comment, error)

	// Update and Delete are restricted to the comment's author.
	Update(ctx context.Context, p auth.Principal, id string, in UpdateCommentInput) (*model.Comment, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type commentService struct {
	comments      repository.CommentRepository
	records       repository.RecordRepository
	tasks         repository.TaskRepository
	projects      repository.ProjectRepository
	notifications repository.NotificationRepository
	log           logrus.FieldLogger
	now           func() time.Time
}

// NewCommentService constructs a CommentService. A comment on an entity owned
// by or assigned to someone else notifies that user.
func NewCommentService(
	comments repository.CommentRepository,
	records repository.RecordRepository,
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	notifications repository.NotificationRepository,
	log logrus.FieldLogger,
) CommentService {
	return &commentService{
		comments:      comments,
		records:       records,
		tasks:         tasks,
		projects:      projects,
		notifications: notifications,
		log:           log.WithField("component", "comments"),
		now:           time.Now,
	}
}

// entity resolves the user responsible for an entity and a link to it.
func (s *commentService) entity(ctx context.Context, tenantID, typ, id string) (responsible *string, link string, err error) {
	switch typ {
	case EntityRecord:
		r, err := s.records.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, "", notFound(err, "record")
		}
		return r.OwnerID, "/records/" + id, nil
	case EntityTask:
		t, err := s.tasks.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, "", notFound(err, "task")
		}
		return t.AssigneeID, "/tasks/" + id, nil
	case EntityProject:
		pr, err := s.projects.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, "", notFound(err, "project")
		}
		return pr.OwnerID, "/projects/" + id, nil
	}
	return nil, "", invalid("entityType", "must be one of: record, task, project")
}

func (s *commentService) List(ctx context.Context, p auth.Principal, entityType, entityID string, page Page) (*ListResult[model.Comment], error) {
	if entityType == "" || entityID == "" {
		return nil, invalid("entityId", "entityType and entityId are required")
	}
	res, err := s.comments.ListByEntity(ctx, p.TenantID, entityType, entityID, page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, page), nil
}

func (s *commentService) Create(ctx context.Context, p auth.Principal, in CommentInput) (*model.Comment, error) {
	responsible, link, err := s.entity(ctx, p.TenantID, in.EntityType, in.EntityID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c, err := s.comments.Create(ctx, &model.Comment{
		ID:         uuid.NewString(),
		TenantID:   p.TenantID,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		AuthorID:   p.UserID,
		Body:       in.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, notFound(err, "comment")
	}
	if responsible != nil && *responsible != p.UserID {
		_, err := s.notifications.Create(ctx, &model.Notification{
			ID:        uuid.NewString(),
			TenantID:  p.TenantID,
			UserID:    *responsible,
			Type:      model.NotificationComment,
			Title:     "New comment on your " + in.EntityType,
			Body:      excerpt(in.Body, 140),
			Link:      link,
			CreatedAt: now,
		})
		if err != nil {
			s.log.WithError(err).WithField("comment_id", c.ID).Warn("failed to notify about comment")
		}
	}
	return c, nil
}

func (s *commentService) authored(ctx context.Context, p auth.Principal, id string) (*model.Comment, error) {
	c, err := s.comments.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	if c.AuthorID != p.UserID {
		return nil, newError(ErrForbidden, "only the author can change this comment")
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, p auth.Principal, id string, in UpdateCommentInput) (*model.Comment, error) {
	c, err := s.authored(ctx, p, id)
	if err != nil {
		return nil, err
	}
	c.Body = in.Body
	c.UpdatedAt = s.now().UTC()
	updated, err := s.comments.Update(ctx, c)
	return updated, notFound(err, "comment")
}

func (s *commentService) Delete(ctx context.Context, p auth.Principal, id string) error {
	if _, err := s.authored(ctx, p, id); err != nil {
		return err
	}
	return notFound(s.comments.Delete(ctx, p.TenantID, id), "comment")
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
