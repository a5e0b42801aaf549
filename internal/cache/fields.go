// Package cache holds in-process caches for hot, rarely changing lookups.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"crmapi/internal/model"
)

// FieldCache keeps field definitions per object. Safe for concurrent use.
type FieldCache struct {
	entries *lru.Cache
}

// NewFieldCache creates a cache holding at most size objects.
func NewFieldCache(size int) (*FieldCache, error) {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create field cache: %w", err)
	}
	return &FieldCache{entries: c}, nil
}

func key(tenantID, objectID string) string {
	return tenantID + "/" + objectID
}

// Get returns a copy of the cached fields for an object.
func (c *FieldCache) Get(tenantID, objectID string) ([]model.Field, bool) {
	v, ok := c.entries.Get(key(tenantID, objectID))
	if !ok {
		return nil, false
	}
	fields := v.([]model.Field)
	return append([]model.Field(nil), fields...), true
}

// Set stores the fields of an object.
func (c *FieldCache) Set(tenantID, objectID string, fields []model.Field) {
	c.entries.Add(key(tenantID, objectID), append([]model.Field(nil), fields...))
}

// Invalidate drops the entry of one object.
func (c *FieldCache) Invalidate(tenantID, objectID string) {
	c.entries.Remove(key(tenantID, objectID))
}

// Len reports the number of cached objects.
func (c *FieldCache) Len() int {
	return c.entries.Len()
}
