package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/cache"
	"crmapi/internal/model"
	"crmapi/internal/repository"
)

type CreateObjectInput struct {
	Name        string   `json:"name" validate:"required,max=63,identifier"`
	Label       string   `json:"label" validate:"required,max=100"`
	PluralLabel string   `json:"pluralLabel" validate:"max=100"`
	Description string   `json:"description" validate:"max=500"`
	Icon        string   `json:"icon" validate:"max=50"`
	Position    int      `json:"position" validate:"gte=0"`
	Stages      []string `json:"stages" validate:"max=50,dive,required,max=60"`
}

// UpdateObjectInput changes only the fields that are set. Name is immutable.
type UpdateObjectInput struct {
	Label       *string   `json:"label" validate:"omitempty,min=1,max=100"`
	PluralLabel *string   `json:"pluralLabel" validate:"omitempty,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Icon        *string   `json:"icon" validate:"omitempty,max=50"`
	Position    *int      `json:"position" validate:"omitempty,gte=0"`
	Stages      *[]string `json:"stages" validate:"omitempty,max=50,dive,required,max=60"`
	Archived    *bool     `json:"archived"`
}

// ObjectService manages the object definitions records are stored under.
type ObjectService interface {
	List(ctx context.Context, p auth.Principal, includeArchived bool) ([]model.CrmObject, error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.CrmObject, error)
	Create(ctx context.Context, p auth.Principal, in CreateObjectInput) (*model.CrmObject, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateObjectInput) (*model.CrmObject, error)

	// Delete removes a custom object that holds no records.
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type objectService struct {
	objects repository.ObjectRepository
	fields  *cache.FieldCache
	now     func() time.Time
}

// NewObjectService constructs an ObjectService.
func NewObjectService(objects repository.ObjectRepository, fields *cache.FieldCache) ObjectService {
	return &objectService{objects: objects, fields: fields, now: time.Now}
}

func checkStages(stages []string) error {
	seen := make(map[string]struct{}, len(stages))
	for i, st := range stages {
		key := strings.ToLower(strings.TrimSpace(st))
		if _, dup := seen[key]; dup {
			return invalid(fmt.Sprintf("stages[%d]", i), "duplicates an earlier stage")
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (s *objectService) List(ctx context.Context, p auth.Principal, includeArchived bool) ([]model.CrmObject, error) {
	objs, err := s.objects.List(ctx, p.TenantID, includeArchived)
	if err != nil {
		return nil, err
	}
	return nonNil(objs), nil
}

func (s *objectService) Get(ctx context.Context, p auth.Principal, id string) (*model.CrmObject, error) {
	obj, err := s.objects.FindByID(ctx, p.TenantID, id)
	return obj, notFound(err, "object")
}

func (s *objectService) Create(ctx context.Context, p auth.Principal, in CreateObjectInput) (*model.CrmObject, error) {
	if err := checkStages(in.Stages); err != nil {
		return nil, err
	}
	plural := strings.TrimSpace(in.PluralLabel)
	if plural == "" {
		plural = strings.TrimSpace(in.Label)
	}
	now := s.now().UTC()
	obj, err := s.objects.Create(ctx, &model.CrmObject{
		ID:          uuid.NewString(),
		TenantID:    p.TenantID,
		Name:        in.Name,
		Label:       strings.TrimSpace(in.Label),
		PluralLabel: plural,
		Description: in.Description,
		Icon:        in.Icon,
		Position:    in.Position,
		Stages:      nonNil(in.Stages),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return obj, notFound(err, "object "+in.Name)
}

func (s *objectService) Update(ctx context.Context, p auth.Principal, id string, in UpdateObjectInput) (*model.CrmObject, error) {
	obj, err := s.objects.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "object")
	}
	if in.Label != nil {
		obj.Label = strings.TrimSpace(*in.Label)
	}
	if in.PluralLabel != nil {
		obj.PluralLabel = strings.TrimSpace(*in.PluralLabel)
	}
	if in.Description != nil {
		obj.Description = *in.Description
	}
	if in.Icon != nil {
		obj.Icon = *in.Icon
	}
	if in.Position != nil {
		obj.Position = *in.Position
	}
	if in.Stages != nil {
		if err := checkStages(*in.Stages); err != nil {
			return nil, err
		}
		obj.Stages = nonNil(*in.Stages)
	}
	if in.Archived != nil {
		obj.Archived = *in.Archived
	}
	obj.UpdatedAt = s.now().UTC()
	updated, err := s.objects.Update(ctx, obj)
	return updated, notFound(err, "object")
}

func (s *objectService) Delete(ctx context.Context, p auth.Principal, id string) error {
	obj, err := s.objects.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return notFound(err, "object")
	}
	if obj.IsSystem {
		return newError(ErrConflict, "system objects cannot be deleted")
	}
	n, err := s.objects.CountRecords(ctx, p.TenantID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return newError(ErrConflict, "object still has %d records", n)
	}
	if err := s.objects.Delete(ctx, p.TenantID, id); err != nil {
		return notFound(err, "object")
	}
	s.fields.Invalidate(p.TenantID, id)
	return nil
}
