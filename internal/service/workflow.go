package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/model"
	"crmapi/internal/repository"
	"crmapi/internal/validation"
	"crmapi/internal/workflow"
)

// WorkflowInput accepts a definition either directly or as an editor graph.
// When Graph is set it is compiled and the direct fields are ignored.
type WorkflowInput struct {
	Name        string            `json:"name" validate:"required,max=120"`
	Description string            `json:"description" validate:"max=1000"`
	ObjectID    *string           `json:"objectId" validate:"omitempty,uuid"`
	Active      *bool             `json:"active"`
	Trigger     *model.Trigger    `json:"trigger" validate:"required_without=Graph"`
	Conditions  []model.Condition `json:"conditions" validate:"dive"`
	Actions     []model.Action    `json:"actions" validate:"dive"`
	Graph       *workflow.Graph   `json:"graph"`
}

// UpdateWorkflowInput changes only the fields that are set.
type UpdateWorkflowInput struct {
	Name        *string            `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	ObjectID    *string            `json:"objectId" validate:"omitempty,uuid"`
	Active      *bool              `json:"active"`
	Trigger     *model.Trigger     `json:"trigger"`
	Conditions  *[]model.Condition `json:"conditions" validate:"omitempty,dive"`
	Actions     *[]model.Action    `json:"actions" validate:"omitempty,dive"`
	Graph       *workflow.Graph    `json:"graph"`
}

type RunWorkflowInput struct {
	RecordID string `json:"recordId" validate:"required,uuid"`
}

type WorkflowService interface {
	List(ctx context.Context, p auth.Principal, page Page) (*ListResult[model.Workflow], error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.Workflow, error)
	Create(ctx context.Context, p auth.Principal, in WorkflowInput) (*model.Workflow, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateWorkflowInput) (*model.Workflow, error)
	Delete(ctx context.Context, p auth.Principal, id string) error

	// Compile converts an editor graph to a definition without storing it.
	Compile(ctx context.Context, g workflow.Graph) (*model.Definition, error)

	// Graph lays out a stored workflow for the editor.
	Graph(ctx context.Context, p auth.Principal, id string) (*workflow.Graph, error)

	// Run executes a workflow against one record now, ignoring its trigger.
	Run(ctx context.Context, p auth.Principal, id string, in RunWorkflowInput) (*model.WorkflowRun, error)
	Runs(ctx context.Context, p auth.Principal, id string, page Page) (*ListResult[model.WorkflowRun], error)
}

type workflowService struct {
	workflows repository.WorkflowRepository
	objects   repository.ObjectRepository
	records   repository.RecordRepository
	runner    WorkflowRunner
	validate  *validation.Validator
	now       func() time.Time
}

func NewWorkflowService(
	workflows repository.WorkflowRepository,
	objects repository.ObjectRepository,
	records repository.RecordRepository,
	runner WorkflowRunner,
	v *validation.Validator,
) WorkflowService {
	return &workflowService{
		workflows: workflows,
		objects:   objects,
		records:   records,
		runner:    runner,
		validate:  v,
		now:       time.Now,
	}
}

func (s *workflowService) compile(g workflow.Graph) (*model.Definition, error) {
	def, err := workflow.Compile(g)
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidGraph) {
			return nil, invalid("graph", err.Error())
		}
		return nil, err
	}
	return def, nil
}

// checkDefinition runs the struct rules on a definition that may have come
// from a graph rather than the request body.
func (s *workflowService) checkDefinition(def *model.Definition) error {
	if errs := s.validate.Struct(def); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func (s *workflowService) checkObject(ctx context.Context, tenantID string, objectID *string) error {
	if objectID == nil {
		return nil
	}
	if _, err := s.objects.FindByID(ctx, tenantID, *objectID); err != nil {
		return notFound(err, "object")
	}
	return nil
}

func (s *workflowService) List(ctx context.Context, p auth.Principal, page Page) (*ListResult[model.Workflow], error) {
	res, err := s.workflows.List(ctx, p.TenantID, page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, page), nil
}

func (s *workflowService) Get(ctx context.Context, p auth.Principal, id string) (*model.Workflow, error) {
	wf, err := s.workflows.FindByID(ctx, p.TenantID, id)
	return wf, notFound(err, "workflow")
}

func (s *workflowService) Create(ctx context.Context, p auth.Principal, in WorkflowInput) (*model.Workflow, error) {
	var def model.Definition
	if in.Graph != nil {
		compiled, err := s.compile(*in.Graph)
		if err != nil {
			return nil, err
		}
		def = *compiled
	} else {
		def = model.Definition{Trigger: *in.Trigger, Conditions: in.Conditions, Actions: in.Actions}
	}
	def.Conditions = nonNil(def.Conditions)
	def.Actions = nonNil(def.Actions)
	if err := s.checkDefinition(&def); err != nil {
		return nil, err
	}
	objectID := optionalString(in.ObjectID)
	if err := s.checkObject(ctx, p.TenantID, objectID); err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := s.now().UTC()
	wf, err := s.workflows.Create(ctx, &model.Workflow{
		ID:          uuid.NewString(),
		TenantID:    p.TenantID,
		Name:        in.Name,
		Description: in.Description,
		ObjectID:    objectID,
		Active:      active,
		Definition:  def,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return wf, notFound(err, "workflow")
}

func (s *workflowService) Update(ctx context.Context, p auth.Principal, id string, in UpdateWorkflowInput) (*model.Workflow, error) {
	wf, err := s.workflows.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "workflow")
	}
	if in.Name != nil {
		wf.Name = *in.Name
	}
	if in.Description != nil {
		wf.Description = *in.Description
	}
	if in.ObjectID != nil {
		wf.ObjectID = optionalString(in.ObjectID)
		if err := s.checkObject(ctx, p.TenantID, wf.ObjectID); err != nil {
			return nil, err
		}
	}
	if in.Active != nil {
		wf.Active = *in.Active
	}
	switch {
	case in.Graph != nil:
		def, err := s.compile(*in.Graph)
		if err != nil {
			return nil, err
		}
		wf.Definition = *def
	default:
		if in.Trigger != nil {
			wf.Trigger = *in.Trigger
		}
		if in.Conditions != nil {
			wf.Conditions = *in.Conditions
		}
		if in.Actions != nil {
			wf.Actions = *in.Actions
		}
	}
	wf.Conditions = nonNil(wf.Conditions)
	wf.Actions = nonNil(wf.Actions)
	if err := s.checkDefinition(&wf.Definition); err != nil {
		return nil, err
	}
	wf.UpdatedAt = s.now().UTC()
	updated, err := s.workflows.Update(ctx, wf)
	return updated, notFound(err, "workflow")
}

func (s *workflowService) Delete(ctx context.Context, p auth.Principal, id string) error {
	return notFound(s.workflows.Delete(ctx, p.TenantID, id), "workflow")
}

func (s *workflowService) Compile(_ context.Context, g workflow.Graph) (*model.Definition, error) {
	def, err := s.compile(g)
	if err != nil {
		return nil, err
	}
	if err := s.checkDefinition(def); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *workflowService) Graph(ctx context.Context, p auth.Principal, id string) (*workflow.Graph, error) {
	wf, err := s.workflows.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "workflow")
	}
	g, err := workflow.Layout(wf.Definition)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *workflowService) Run(ctx context.Context, p auth.Principal, id string, in RunWorkflowInput) (*model.WorkflowRun, error) {
	wf, err := s.workflows.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "workflow")
	}
	rec, err := s.records.FindByID(ctx, p.TenantID, in.RecordID)
	if err != nil {
		return nil, notFound(err, "record")
	}
	if wf.ObjectID != nil && *wf.ObjectID != rec.ObjectID {
		return nil, invalid("recordId", "record does not belong to the workflow's object")
	}
	return s.runner.Execute(ctx, wf, workflow.Event{
		Type:     model.TriggerManual,
		TenantID: p.TenantID,
		ObjectID: rec.ObjectID,
		ActorID:  p.UserID,
		Record:   rec,
	}), nil
}

func (s *workflowService) Runs(ctx context.Context, p auth.Principal, id string, page Page) (*ListResult[model.WorkflowRun], error) {
	if _, err := s.workflows.FindByID(ctx, p.TenantID, id); err != nil {
		return nil, notFound(err, "workflow")
	}
	res, err := s.workflows.ListRuns(ctx, p.TenantID, id, page.query())
	if err != nil {
		return nil, err
	}
	return newListResult(res, page), nil
}
