package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type objectInput struct {
	Name  string   `json:"name" validate:"required,identifier,max=63"`
	Label string   `json:"label" validate:"required"`
	Email string   `json:"email,omitempty" validate:"omitempty,email"`
	Kind  string   `json:"kind" validate:"omitempty,oneof=a b"`
	Tags  []string `json:"tags" validate:"max=2"`
	Steps []step   `json:"steps" validate:"dive"`
}

type step struct {
	Type string `json:"type" validate:"required"`
}

func TestIsIdentifier(t *testing.T) {
	valid := []string{"a", "contacts", "deal_stage", "x1", "a_b_c_2"}
	for _, s := range valid {
		assert.True(t, IsIdentifier(s), s)
	}

	invalid := []string{"", "Contacts", "1deal", "_deal", "deal stage", "deal-stage", "déal", "deal!", "DEAL"}
	for _, s := range invalid {
		assert.False(t, IsIdentifier(s), s)
	}
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	errs := v.Struct(objectInput{Name: "deals", Label: "Deals", Kind: "a"})
	assert.Nil(t, errs)
}

func TestStruct_FieldErrors(t *testing.T) {
	v := New()
	errs := v.Struct(objectInput{
		Name:  "Bad Name",
		Email: "nope",
		Kind:  "z",
		Tags:  []string{"1", "2", "3"},
		Steps: []step{{Type: "ok"}, {}},
	})

	byField := map[string]string{}
	for _, fe := range errs {
		byField[fe.Field] = fe.Message
	}

	assert.Contains(t, byField["name"], "lowercase letter")
	assert.Equal(t, "is required", byField["label"])
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "must be one of: a, b", byField["kind"])
	assert.Equal(t, "must contain at most 2 items", byField["tags"])
	assert.Equal(t, "is required", byField["steps[1].type"])
	assert.Len(t, errs, 6)
}

func TestStruct_MaxLength(t *testing.T) {
	v := New()
	long := "a"
	for len(long) < 64 {
		long += "a"
	}
	errs := v.Struct(objectInput{Name: long, Label: "x"})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "name", errs[0].Field)
		assert.Equal(t, "must be at most 63 characters", errs[0].Message)
	}
}

func TestVar(t *testing.T) {
	v := New()
	assert.True(t, v.Var("ada@example.com", "email"))
	assert.False(t, v.Var("ada@", "email"))
	assert.True(t, v.Var("https://example.com/a", "url"))
	assert.False(t, v.Var("not a url", "url"))
}
