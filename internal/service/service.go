// Package service holds the use cases behind the HTTP handlers. Every call is
// scoped to the tenant of the authenticated principal.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"crmapi/internal/model"
	"crmapi/internal/repository"
	"crmapi/internal/validation"
	"crmapi/internal/workflow"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrReaderNil    = errors.New("reader is nil")
)

// ValidationError reports input that is well formed but violates a domain rule.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, message string) error {
	return &ValidationError{Fields: []validation.FieldError{{Field: field, Message: message}}}
}

// Error is a sentinel kind paired with a message that is safe to show clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// PublicMessage returns the client-safe message carried by err, if any.
func PublicMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

// notFound translates a repository miss into ErrNotFound naming what was missing.
// Constraint violations become ErrConflict or a validation error.
func notFound(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return newError(ErrNotFound, "%s not found", what)
	case errors.Is(err, repository.ErrDuplicate):
		return newError(ErrConflict, "%s already exists", what)
	case errors.Is(err, repository.ErrInvalidReference):
		return invalid("", "references a resource that does not exist")
	}
	return err
}

// Pagination defaults.
const (
	DefaultLimit = 25
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize applies the defaults and clamps page and limit to their maximums.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) query() repository.PageQuery {
	p = p.Normalize()
	return repository.PageQuery{Limit: p.Limit, Offset: (p.Page - 1) * p.Limit}
}

// ListResult is the paginated response envelope.
type ListResult[T any] struct {
	Items      []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func newListResult[T any](res *repository.PageResult[T], p Page) *ListResult[T] {
	p = p.Normalize()
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{
		Items:      items,
		Total:      res.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (res.Total + p.Limit - 1) / p.Limit,
	}
}

// EventPublisher receives record mutations for workflow dispatch.
type EventPublisher interface {
	Publish(ctx context.Context, ev workflow.Event)
}

// WorkflowRunner executes a single workflow synchronously.
type WorkflowRunner interface {
	Execute(ctx context.Context, wf *model.Workflow, ev workflow.Event) *model.WorkflowRun
}

func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
