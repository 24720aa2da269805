package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes shared by the workflow engine and the HTTP layer.
const (
	CodeNotFound                  = "NOT_FOUND"
	CodeInvalidTransition         = "INVALID_TRANSITION"
	CodeInvalidPrecondition       = "INVALID_PRECONDITION"
	CodeClosurePreconditionNotMet = "CLOSURE_PRECONDITION_NOT_MET"
	CodeNoHandlerAvailable        = "NO_HANDLER_AVAILABLE"
	CodeConflict                  = "CONFLICT"
	CodeValidationFailed          = "VALIDATION_FAILED"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeForbidden                 = "FORBIDDEN"
	CodeInternal                  = "INTERNAL_ERROR"
)

// postgres SQLSTATEs that signal a concurrent writer on the same row.
var conflictStates = map[string]struct{}{
	"55P03": {}, // lock_not_available
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
}

// invalid_text_representation: a request value postgres could not cast.
const sqlStateInvalidText = "22P02"

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewInvalidTransition(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidTransition, message, http.StatusConflict, details)
}

func NewInvalidPrecondition(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidPrecondition, message, http.StatusConflict, details)
}

func NewClosurePreconditionNotMet(reason string, details map[string]any) error {
	return NewDomainError(CodeClosurePreconditionNotMet, reason, http.StatusUnprocessableEntity, details)
}

func NewNoHandlerAvailable(poolID string) error {
	return NewDomainError(CodeNoHandlerAvailable, "no handler available in pool", http.StatusServiceUnavailable,
		map[string]any{"pool_id": poolID})
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := conflictStates[pgErr.Code]; ok {
			de := NewConflict("concurrent update on the same case", map[string]any{"sqlstate": pgErr.Code})
			de.(*DomainError).Err = err
			return de.(*DomainError)
		}
		if pgErr.Code == sqlStateInvalidText {
			de := NewDomainError(CodeValidationFailed, "malformed identifier", http.StatusBadRequest, map[string]any{"sqlstate": pgErr.Code})
			de.Err = err
			return de
		}
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts err to a DomainError, preserving nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
