package service

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"crmapi/internal/model"
	"crmapi/internal/repository"
)

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 25}, Page{}.Normalize())
	assert.Equal(t, Page{Page: 3, Limit: 100}, Page{Page: 3, Limit: 1000}.Normalize())
	assert.Equal(t, repository.PageQuery{Limit: 50, Offset: 50}, Page{Page: 2, Limit: 50}.query())
	assert.Equal(t, Page{Page: MaxPage, Limit: 25}, Page{Page: MaxPage + 1}.Normalize())
	assert.Equal(t, repository.PageQuery{Limit: 100, Offset: (MaxPage - 1) * 100}, Page{Page: MaxPage * 1000, Limit: 100}.query())
}

func TestNewListResult(t *testing.T) {
	items := make([]model.Record, 50)
	res := newListResult(&repository.PageResult[model.Record]{Items: items, Total: 120}, Page{Page: 2, Limit: 50})
	assert.Len(t, res.Items, 50)
	assert.Equal(t, 120, res.Total)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 50, res.Limit)
	assert.Equal(t, 3, res.TotalPages)

	empty := newListResult(&repository.PageResult[model.Record]{}, Page{})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestNotFound(t *testing.T) {
	assert.NoError(t, notFound(nil, "record"))

	err := notFound(sql.ErrNoRows, "record")
	assert.ErrorIs(t, err, ErrNotFound)
	msg, ok := PublicMessage(fmt.Errorf("wrapped: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "record not found", msg)

	assert.ErrorIs(t, notFound(repository.ErrDuplicate, "object deals"), ErrConflict)

	var verr *ValidationError
	assert.True(t, errors.As(notFound(repository.ErrInvalidReference, "task"), &verr))

	other := errors.New("boom")
	assert.Same(t, other, notFound(other, "x"))
	_, ok = PublicMessage(other)
	assert.False(t, ok)
}
