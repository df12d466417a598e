// File: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIError represents a standard structure for API errors.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Is matches API errors by code, so errors.Is(err, ErrNotFound) holds for any
// NOT_FOUND error regardless of its details.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details. The receiver is left untouched.
func (e *APIError) WithDetails(details interface{}) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrBadRequest          = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "Malformed request.")
	ErrUnauthorized        = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "A valid bearer token is required.")
	ErrForbidden           = NewAPIError(http.StatusForbidden, "FORBIDDEN", "You are not allowed to act on this resource.")
	ErrNotFound            = NewAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found.")
	ErrConflict            = NewAPIError(http.StatusConflict, "CONFLICT", "The resource changed or is in use.")
	ErrUnprocessableEntity = NewAPIError(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "The request cannot be applied.")
	ErrInternalServer      = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Something went wrong on our side.")
	ErrServiceUnavailable  = NewAPIError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable.")

	// Borrowing lifecycle outcomes.
	ErrInvalidActor     = NewAPIError(http.StatusUnprocessableEntity, "INVALID_ACTOR", "This party cannot perform the requested action.")
	ErrInvalidState     = NewAPIError(http.StatusConflict, "INVALID_STATE", "The action is not valid for the current status.")
	ErrStoreUnavailable = NewAPIError(http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "The data store is temporarily unavailable. Please try again.")
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewValidationAPIError reports rejected input. details is usually the
// field map from FormatValidationErrors.
func NewValidationAPIError(details interface{}) *APIError {
	return NewAPIError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Some fields are invalid.").WithDetails(details)
}

var validationMessages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be an email address",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
	"gte":      "%s must be >= %s",
	"lte":      "%s must be <= %s",
	"oneof":    "%s must be one of: %s",
	"isbn":     "%s must be an ISBN-10 or ISBN-13",
	"url":      "%s must be a URL",
}

// FormatValidationErrors maps each rejected field to a readable message.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		name := strings.ToLower(e.Field())
		tmpl, ok := validationMessages[e.Tag()]
		switch {
		case !ok:
			out[e.Field()] = fmt.Sprintf("%s failed the %q check", name, e.Tag())
		case strings.Count(tmpl, "%s") == 2:
			out[e.Field()] = fmt.Sprintf(tmpl, name, e.Param())
		default:
			out[e.Field()] = fmt.Sprintf(tmpl, name)
		}
	}
	return out
}
