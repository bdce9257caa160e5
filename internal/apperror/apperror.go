// Package apperror classifies failures so the HTTP layer can map them to
// status codes without inspecting messages.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries a client-safe message and, for validation failures, the
// offending fields. Kind is one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(message string, fields ...FieldError) error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(message string) error {
	return &Error{Kind: ErrUnauthenticated, Message: message}
}

// InvalidReferenceError reports a request that names a product which does not
// exist. It is a validation failure, not a lookup failure.
type InvalidReferenceError struct {
	ProductID int64
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("Product %d not found", e.ProductID)
}

func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrValidation
}
