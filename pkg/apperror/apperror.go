package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrTooManyReqs  = errors.New("too many requests")
	ErrInternal     = errors.New("internal server error")
)

type AppError struct {
	BaseError error
	Message   string
	Details   string
	// Fields maps a request field to the reasons it was rejected. Only set
	// for ErrValidation.
	Fields map[string][]string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

// NewMissingParam reports a required request parameter that was absent or empty.
func NewMissingParam(name string) *AppError {
	return NewAppError(ErrInvalidInput, fmt.Sprintf("%s is required", name), fmt.Sprintf("parameter '%s' is missing or empty", name), nil)
}

func NewValidation(fields map[string][]string) *AppError {
	e := NewAppError(ErrValidation, "Validation failed", fmt.Sprintf("%d field(s) rejected", len(fields)), nil)
	e.Fields = fields
	return e
}

func NewConflict(resource, field, value string) *AppError {
	msg := fmt.Sprintf("%s conflict", resource)
	details := fmt.Sprintf("%s with %s '%s' already exists", resource, field, value)
	return NewAppError(ErrConflict, msg, details, nil)
}

func NewTooManyRequests(details string) *AppError {
	return NewAppError(ErrTooManyReqs, "Rate limit exceeded", details, nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyReqs):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// ToJSON renders validation errors as a bare field map and everything else
// as an error/message pair.
func (e *AppError) ToJSON() gin.H {
	if errors.Is(e.BaseError, ErrValidation) {
		body := gin.H{}
		for field, msgs := range e.Fields {
			body[field] = msgs
		}
		return body
	}
	return gin.H{
		"error":   e.BaseError.Error(),
		"message": e.Message,
	}
}
