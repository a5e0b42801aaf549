package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
// Lookups of missing rows return sql.ErrNoRows; constraint violations are
// translated to the sentinel errors below.

import "errors"

var (
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate value")
	// ErrInvalidReference reports a foreign key violation.
	ErrInvalidReference = errors.New("invalid reference")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
