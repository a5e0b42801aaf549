// Package seed provisions the default CRM objects of a new workspace.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"crmapi/internal/model"
	"crmapi/internal/repository"
	"crmapi/internal/validation"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ObjectSpec is one object of the defaults catalog.
type ObjectSpec struct {
	Name        string      `yaml:"name"`
	Label       string      `yaml:"label"`
	PluralLabel string      `yaml:"plural_label"`
	Icon        string      `yaml:"icon"`
	Stages      []string    `yaml:"stages"`
	Fields      []FieldSpec `yaml:"fields"`
}

// FieldSpec is one field of an ObjectSpec.
type FieldSpec struct {
	Name     string         `yaml:"name"`
	Label    string         `yaml:"label"`
	Type     string         `yaml:"type"`
	Required bool           `yaml:"required"`
	Config   map[string]any `yaml:"config"`
}

type catalog struct {
	Objects []ObjectSpec `yaml:"objects"`
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) ([]ObjectSpec, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	seen := map[string]bool{}
	for _, o := range c.Objects {
		if !validation.IsIdentifier(o.Name) {
			return nil, fmt.Errorf("seed object %q: invalid name", o.Name)
		}
		if seen[o.Name] {
			return nil, fmt.Errorf("seed object %q: duplicate", o.Name)
		}
		seen[o.Name] = true
		fields := map[string]bool{}
		for _, f := range o.Fields {
			if !validation.IsIdentifier(f.Name) {
				return nil, fmt.Errorf("seed field %s.%s: invalid name", o.Name, f.Name)
			}
			if fields[f.Name] {
				return nil, fmt.Errorf("seed field %s.%s: duplicate", o.Name, f.Name)
			}
			fields[f.Name] = true
			if !model.FieldType(f.Type).Valid() {
				return nil, fmt.Errorf("seed field %s.%s: unknown type %q", o.Name, f.Name, f.Type)
			}
		}
	}
	return c.Objects, nil
}

// Defaults returns the built-in catalog.
func Defaults() ([]ObjectSpec, error) {
	return Parse(defaultsYAML)
}

// Seeder writes a catalog into a tenant.
type Seeder struct {
	objects repository.ObjectRepository
	fields  repository.FieldRepository
	catalog []ObjectSpec
	now     func() time.Time
}

// NewSeeder creates a Seeder for the built-in catalog.
func NewSeeder(objects repository.ObjectRepository, fields repository.FieldRepository) (*Seeder, error) {
	specs, err := Defaults()
	if err != nil {
		return nil, err
	}
	return &Seeder{objects: objects, fields: fields, catalog: specs, now: time.Now}, nil
}

// SeedTenant creates every catalog object as a system object with its fields.
func (s *Seeder) SeedTenant(ctx context.Context, tenantID string) error {
	for i, def := range s.catalog {
		now := s.now().UTC()
		stages := def.Stages
		if stages == nil {
			stages = []string{}
		}
		obj, err := s.objects.Create(ctx, &model.CrmObject{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			Name:        def.Name,
			Label:       def.Label,
			PluralLabel: def.PluralLabel,
			Icon:        def.Icon,
			Position:    i,
			Stages:      stages,
			IsSystem:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("seed object %s: %w", def.Name, err)
		}
		for j, fs := range def.Fields {
			cfg := fs.Config
			if cfg == nil {
				cfg = map[string]any{}
			}
			if _, err := s.fields.Create(ctx, &model.Field{
				ID:        uuid.NewString(),
				TenantID:  tenantID,
				ObjectID:  obj.ID,
				Name:      fs.Name,
				Label:     fs.Label,
				Type:      model.FieldType(fs.Type),
				Required:  fs.Required,
				Position:  j,
				Config:    cfg,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("seed field %s.%s: %w", def.Name, fs.Name, err)
			}
		}
	}
	return nil
}
