package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmapi/internal/model"
)

func TestFieldCache(t *testing.T) {
	c, err := NewFieldCache(2)
	require.NoError(t, err)

	_, ok := c.Get("t1", "o1")
	assert.False(t, ok)

	c.Set("t1", "o1", []model.Field{{ID: "f1", Name: "email"}})
	got, ok := c.Get("t1", "o1")
	assert.True(t, ok)
	assert.Equal(t, "email", got[0].Name)

	got[0].Name = "mutated"
	again, _ := c.Get("t1", "o1")
	assert.Equal(t, "email", again[0].Name)

	_, ok = c.Get("t2", "o1")
	assert.False(t, ok)

	c.Invalidate("t1", "o1")
	_, ok = c.Get("t1", "o1")
	assert.False(t, ok)
}

func TestFieldCache_Evicts(t *testing.T) {
	c, err := NewFieldCache(2)
	require.NoError(t, err)

	c.Set("t", "a", nil)
	c.Set("t", "b", nil)
	c.Set("t", "c", nil)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("t", "a")
	assert.False(t, ok)
}

func TestNewFieldCache_NonPositiveSize(t *testing.T) {
	c, err := NewFieldCache(0)
	require.NoError(t, err)
	c.Set("t", "a", nil)
	assert.Equal(t, 1, c.Len())
}
