// Package schema checks record data against the field definitions of its
// object. Record writes from the API and from workflow actions both go
// through it.
package schema

import (
	"context"
	"fmt"
	"strings"

	"crmapi/internal/cache"
	"crmapi/internal/model"
	"crmapi/internal/repository"
	"crmapi/internal/validation"
)

// Schema loads field definitions through a cache and normalizes data with them.
type Schema struct {
	fields repository.FieldRepository
	cache  *cache.FieldCache
	coerce Coercer
}

func New(fields repository.FieldRepository, c *cache.FieldCache, v *validation.Validator) *Schema {
	return &Schema{fields: fields, cache: c, coerce: NewCoercer(v)}
}

// LoadFields reads an object's fields through the cache.
func LoadFields(ctx context.Context, repo repository.FieldRepository, c *cache.FieldCache, tenantID, objectID string) ([]model.Field, error) {
	if fields, ok := c.Get(tenantID, objectID); ok {
		return fields, nil
	}
	fields, err := repo.ListByObject(ctx, tenantID, objectID)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []model.Field{}
	}
	c.Set(tenantID, objectID, fields)
	return fields, nil
}

// Normalize returns the canonical form of data for the object. Keys of patch
// that name no field are rejected before any value is coerced. The error is
// set only when the fields could not be loaded.
func (s *Schema) Normalize(ctx context.Context, tenantID, objectID string, data, patch map[string]any) (map[string]any, []validation.FieldError, error) {
	fields, err := LoadFields(ctx, s.fields, s.cache, tenantID, objectID)
	if err != nil {
		return nil, nil, err
	}
	if errs := UnknownKeys(fields, patch); len(errs) > 0 {
		return nil, errs, nil
	}
	out, errs := s.coerce.Normalize(fields, data)
	if len(errs) > 0 {
		return nil, errs, nil
	}
	return out, nil, nil
}

// Describe joins field errors into one line, e.g. "data.amount must be a number".
func Describe(errs []validation.FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}
