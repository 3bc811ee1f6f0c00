package models

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable error category
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInUse        ErrorCode = "IN_USE"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
)

// ValidationError describes a single invalid field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error is the typed error returned by the catalog core.
// Kind and ID are set for NOT_FOUND, Details for VALIDATION.
type Error struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Kind    string            `json:"kind,omitempty"`
	ID      string            `json:"id,omitempty"`
	Details []ValidationError `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code, so errors.Is(err, ErrConflict) works
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause returns a copy of e wrapping err
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is
var (
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInUse        = &Error{Code: CodeInUse, Message: "in use"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
)

// NewValidationError reports one invalid field
func NewValidationError(field, reason string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: reason,
		Details: []ValidationError{{Field: field, Message: reason}},
	}
}

// NewValidationErrors bundles several invalid fields; the first one becomes the message
func NewValidationErrors(details []ValidationError) *Error {
	msg := "validation failed"
	if len(details) > 0 {
		msg = details[0].Message
	}
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NewReferenceNotFound reports a referenced id of the given kind that does not resolve
func NewReferenceNotFound(kind string, id interface{}) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v not found", kind, id),
		Kind:    kind,
		ID:      fmt.Sprint(id),
	}
}

func NewConflictError(reason string) *Error {
	return &Error{Code: CodeConflict, Message: reason}
}

func NewInUseError(reason string) *Error {
	return &Error{Code: CodeInUse, Message: reason}
}

func NewUnauthorized(reason string) *Error {
	return &Error{Code: CodeUnauthorized, Message: reason}
}

func NewForbidden(reason string) *Error {
	return &Error{Code: CodeForbidden, Message: reason}
}
