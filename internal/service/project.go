package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

type ProjectInput struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Status      string     `json:"status" validate:"omitempty,oneof=planned active on_hold completed cancelled"`
	RecordID    *string    `json:"recordId" validate:"omitempty,uuid"`
	OwnerID     *string    `json:"ownerId" validate:"omitempty,uuid"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
	Budget      *float64   `json:"budget" validate:"omitempty,gte=0"`
}

type UpdateProjectInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=planned active on_hold completed cancelled"`
	RecordID    *string    `json:"recordId" validate:"omitempty,uuid"`
	OwnerID     *string    `json:"ownerId" validate:"omitempty,uuid"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
	Budget      *float64   `json:"budget" validate:"omitempty,gte=0"`
}

type ProjectService interface {
	List(ctx context.Context, p auth.Principal, status string, page Page) (*ListResult[model.Project], error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.Project, error)
	Create(ctx context.Context, p auth.Principal, in ProjectInput) (*model.Project, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type projectService struct {
	projects repository.ProjectRepository
	now      func() time.Time
}

func NewProjectService(projects repository.ProjectRepository) ProjectService {
	return &projectService{projects: projects, now: time.Now}
}

func checkDates(start, due *time.Time) error {
	if start != nil && due != nil && due.Before(*start) {
		return invalid("dueDate", "must not be before startDate")
	}
	return nil
}

func (s *projectService) List(ctx context.Context, p auth.Principal, status string, page Page) (*ListResult[model.Project], error) {
	res, err := s.projects.List(ctx, p.TenantID, status, page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, page), nil
}

func (s *projectService) Get(ctx context.Context, p auth.Principal, id string) (*model.Project, error) {
	pr, err := s.projects.FindByID(ctx, p.TenantID, id)
	return pr, notFound(err, "project")
}

func (s *projectService) Create(ctx context.Context, p auth.Principal, in ProjectInput) (*model.Project, error) {
	if err := checkDates(in.StartDate, in.DueDate); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = model.ProjectPlanned
	}
	owner := optionalString(in.OwnerID)
	if owner == nil {
		owner = &p.UserID
	}
	now := s.now().UTC()
	pr, err := s.projects.Create(ctx, &model.Project{
		ID:          uuid.NewString(),
		TenantID:    p.TenantID,
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		RecordID:    optionalString(in.RecordID),
		OwnerID:     owner,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
		Budget:      in.Budget,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return pr, notFound(err, "project")
}

func (s *projectService) Update(ctx context.Context, p auth.Principal, id string, in UpdateProjectInput) (*model.Project, error) {
	pr, err := s.projects.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if in.Name != nil {
		pr.Name = *in.Name
	}
	if in.Description != nil {
		pr.Description = *in.Description
	}
	if in.Status != nil {
		pr.Status = *in.Status
	}
	if in.RecordID != nil {
		pr.RecordID = optionalString(in.RecordID)
	}
	if in.OwnerID != nil {
		pr.OwnerID = optionalString(in.OwnerID)
	}
	if in.StartDate != nil {
		pr.StartDate = in.StartDate
	}
	if in.DueDate != nil {
		pr.DueDate = in.DueDate
	}
	if in.Budget != nil {
		pr.Budget = in.Budget
	}
	if err := checkDates(pr.StartDate, pr.DueDate); err != nil {
		return nil, err
	}
	pr.UpdatedAt = s.now().UTC()
	updated, err := s.projects.Update(ctx, pr)
	return updated, notFound(err, "project")
}

func (s *projectService) Delete(ctx context.Context, p auth.Principal, id string) error {
	return notFound(s.projects.Delete(ctx, p.TenantID, id), "project")
}
