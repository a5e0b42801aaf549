package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crmapi/internal/model"
	"crmapi/internal/repository/mocks"
)

func TestDefaults(t *testing.T) {
	specs, err := Defaults()
	require.NoError(t, err)

	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"contacts", "companies", "deals"}, names)
	assert.Equal(t, []string{"lead", "qualified", "proposal", "negotiation", "won", "lost"}, specs[2].Stages)
	assert.Equal(t, "companies", specs[0].Fields[4].Config["target"])
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":        "objects: [",
		"bad object name": "objects:\n  - name: Deals\n",
		"duplicate":       "objects:\n  - name: a\n  - name: a\n",
		"bad field":       "objects:\n  - name: a\n    fields:\n      - {name: 1x, type: text}\n",
		"unknown type":    "objects:\n  - name: a\n    fields:\n      - {name: x, type: blob}\n",
		"duplicate field": "objects:\n  - name: a\n    fields:\n      - {name: x, type: text}\n      - {name: x, type: text}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeeder_SeedTenant(t *testing.T) {
	objects := new(mocks.MockObjectRepository)
	fields := new(mocks.MockFieldRepository)

	s, err := NewSeeder(objects, fields)
	require.NoError(t, err)

	objects.On("Create", mock.Anything, mock.MatchedBy(func(o *model.CrmObject) bool {
		return o.TenantID == "t1" && o.IsSystem
	})).Return(&model.CrmObject{ID: "o1"}, nil)
	fields.On("Create", mock.Anything, mock.AnythingOfType("*model.Field")).
		Return(&model.Field{}, nil)

	require.NoError(t, s.SeedTenant(context.Background(), "t1"))
	objects.AssertNumberOfCalls(t, "Create", 3)
	fields.AssertNumberOfCalls(t, "Create", 15)
}

func TestSeeder_StopsOnError(t *testing.T) {
	objects := new(mocks.MockObjectRepository)
	fields := new(mocks.MockFieldRepository)
	s, err := NewSeeder(objects, fields)
	require.NoError(t, err)

	objects.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	err = s.SeedTenant(context.Background(), "t1")
	assert.ErrorContains(t, err, "seed object contacts")
	fields.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
