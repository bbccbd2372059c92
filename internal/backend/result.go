// Package backend is the single entry point both the CLI and the dashboard
// talk to. It orchestrates source loading and transformation, memoizes
// derived views for the process lifetime, and normalizes every failure
// into a QueryResult error descriptor so no error kind leaks past it.
package backend

import (
	"errors"

	"fairmatch/internal/source"
	"fairmatch/internal/transform"
)

// ErrorKind classifies a normalized failure.
type ErrorKind string

const (
	KindSourceUnavailable ErrorKind = "source_unavailable"
	KindSchemaMismatch    ErrorKind = "schema_mismatch"
	KindUnknownOperation  ErrorKind = "unknown_operation"
	KindInvalidParameters ErrorKind = "invalid_parameters"
	KindInternal          ErrorKind = "internal"
)

// ErrorDescriptor is the presentation-agnostic failure form consumers see.
type ErrorDescriptor struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// QueryResult wraps either a derived view or an error descriptor, never
// both. It is created per request and not retained by the facade.
type QueryResult struct {
	View *transform.DerivedView
	Err  *ErrorDescriptor
}

// OK reports whether the query produced a view.
func (r QueryResult) OK() bool { return r.Err == nil }

// describe maps component errors onto the descriptor taxonomy. Anything
// unrecognised is an internal error, which should not happen in practice.
func describe(err error) *ErrorDescriptor {
	kind := KindInternal
	switch {
	case errors.Is(err, source.ErrUnavailable):
		kind = KindSourceUnavailable
	case errors.Is(err, source.ErrSchemaMismatch):
		kind = KindSchemaMismatch
	case errors.Is(err, transform.ErrUnknownOperation):
		kind = KindUnknownOperation
	case errors.Is(err, transform.ErrInvalidParameters):
		kind = KindInvalidParameters
	}
	return &ErrorDescriptor{Kind: kind, Message: err.Error()}
}
