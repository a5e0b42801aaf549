package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"crmapi/internal/auth"
	"crmapi/internal/cache"
	"crmapi/internal/model"
	"crmapi/internal/repository"
	"crmapi/internal/schema"
)

type CreateFieldInput struct {
	ObjectID string         `json:"objectId" validate:"required,uuid"`
	Name     string         `json:"name" validate:"required,max=63,identifier"`
	Label    string         `json:"label" validate:"required,max=100"`
	Type     string         `json:"type" validate:"required,oneof=text textarea email phone url number currency boolean date datetime select multiselect relation formula"`
	Required bool           `json:"required"`
	Position int            `json:"position" validate:"gte=0"`
	Config   map[string]any `json:"config"`
}

// UpdateFieldInput changes only the fields that are set. Name and type are fixed.
type UpdateFieldInput struct {
	Label    *string         `json:"label" validate:"omitempty,min=1,max=100"`
	Required *bool           `json:"required"`
	Position *int            `json:"position" validate:"omitempty,gte=0"`
	Config   *map[string]any `json:"config"`
}

type FieldService interface {
	// List returns the fields of an object ordered by position.
	List(ctx context.Context, p auth.Principal, objectID string) ([]model.Field, error)
	Get(ctx context.Context, p auth.Principal, id string) (*model.Field, error)
	Create(ctx context.Context, p auth.Principal, in CreateFieldInput) (*model.Field, error)
	Update(ctx context.Context, p auth.Principal, id string, in UpdateFieldInput) (*model.Field, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

type fieldService struct {
	objects repository.ObjectRepository
	fields  repository.FieldRepository
	cache   *cache.FieldCache
	now     func() time.Time
}

// NewFieldService constructs a FieldService. Every mutation drops the cached
// definitions of the affected object.
func NewFieldService(objects repository.ObjectRepository, fields repository.FieldRepository, c *cache.FieldCache) FieldService {
	return &fieldService{objects: objects, fields: fields, cache: c, now: time.Now}
}

// checkFieldConfig enforces the config keys a field type depends on.
func checkFieldConfig(f *model.Field) error {
	switch f.Type {
	case model.FieldSelect, model.FieldMultiselect:
		if len(f.Options()) == 0 {
			return invalid("config.options", "must list at least one option")
		}
	case model.FieldRelation:
		if f.ConfigString("target") == "" {
			return invalid("config.target", "is required")
		}
	case model.FieldFormula:
		if f.ConfigString("expression") == "" {
			return invalid("config.expression", "is required")
		}
	case model.FieldNumber, model.FieldCurrency:
		lo, hasLo := f.ConfigNumber("min")
		hi, hasHi := f.ConfigNumber("max")
		if hasLo && hasHi && lo > hi {
			return invalid("config.max", "must not be less than min")
		}
	case model.FieldText, model.FieldTextarea:
		if n, ok := f.ConfigNumber("maxLength"); ok && n < 1 {
			return invalid("config.maxLength", "must be at least 1")
		}
	}
	return nil
}

func (s *fieldService) List(ctx context.Context, p auth.Principal, objectID string) ([]model.Field, error) {
	if _, err := s.objects.FindByID(ctx, p.TenantID, objectID); err != nil {
		return nil, notFound(err, "object")
	}
	return schema.LoadFields(ctx, s.fields, s.cache, p.TenantID, objectID)
}

func (s *fieldService) Get(ctx context.Context, p auth.Principal, id string) (*model.Field, error) {
	f, err := s.fields.FindByID(ctx, p.TenantID, id)
	return f, notFound(err, "field")
}

func (s *fieldService) Create(ctx context.Context, p auth.Principal, in CreateFieldInput) (*model.Field, error) {
	if _, err := s.objects.FindByID(ctx, p.TenantID, in.ObjectID); err != nil {
		return nil, notFound(err, "object")
	}
	cfg := in.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	now := s.now().UTC()
	f := &model.Field{
		ID:        uuid.NewString(),
		TenantID:  p.TenantID,
		ObjectID:  in.ObjectID,
		Name:      in.Name,
		Label:     in.Label,
		Type:      model.FieldType(in.Type),
		Required:  in.Required,
		Position:  in.Position,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := checkFieldConfig(f); err != nil {
		return nil, err
	}
	created, err := s.fields.Create(ctx, f)
	if err != nil {
		return nil, notFound(err, "field "+in.Name)
	}
	s.cache.Invalidate(p.TenantID, in.ObjectID)
	return created, nil
}

func (s *fieldService) Update(ctx context.Context, p auth.Principal, id string, in UpdateFieldInput) (*model.Field, error) {
	f, err := s.fields.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, notFound(err, "field")
	}
	if in.Label != nil {
		f.Label = *in.Label
	}
	if in.Required != nil {
		f.Required = *in.Required
	}
	if in.Position != nil {
		f.Position = *in.Position
	}
	if in.Config != nil {
		f.Config = *in.Config
		if f.Config == nil {
			f.Config = map[string]any{}
		}
	}
	if err := checkFieldConfig(f); err != nil {
		return nil, err
	}
	f.UpdatedAt = s.now().UTC()
	updated, err := s.fields.Update(ctx, f)
	if err != nil {
		return nil, notFound(err, "field")
	}
	s.cache.Invalidate(p.TenantID, f.ObjectID)
	return updated, nil
}

func (s *fieldService) Delete(ctx context.Context, p auth.Principal, id string) error {
	f, err := s.fields.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return notFound(err, "field")
	}
	if err := s.fields.Delete(ctx, p.TenantID, id); err != nil {
		return notFound(err, "field")
	}
	s.cache.Invalidate(p.TenantID, f.ObjectID)
	return nil
}
