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
	return fmt.Sprintf("APIError: StatusCode=%d, Code=%s, Message=%s", e.StatusCode, e.Code, e.Message)
}

// Is reports whether target is an APIError with the same code, so that
// errors.Is(err, common.ErrNotFound) works on copies produced by WithDetails.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.StatusCode == t.StatusCode
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// WithDetails returns a copy of the error carrying details. Sentinels are never mutated.
func (e *APIError) WithDetails(details interface{}) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrBadRequest          = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "The request is invalid.")
	ErrUnauthorized        = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required and has failed or has not yet been provided.")
	ErrForbidden           = NewAPIError(http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this resource.")
	ErrNotFound            = NewAPIError(http.StatusNotFound, "NOT_FOUND", "The requested resource could not be found.")
	ErrConflict            = NewAPIError(http.StatusConflict, "CONFLICT", "A conflict occurred with the current state of the resource.")
	ErrTooManyRequests     = NewAPIError(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please slow down.")
	ErrInternalServer      = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred on the server.")
	ErrUpstreamUnavailable = NewAPIError(http.StatusInternalServerError, "UPSTREAM_UNAVAILABLE", "A required downstream service failed.")
	ErrServiceUnavailable  = NewAPIError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "The server is currently unable to handle the request.")
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewValidationAPIError(details interface{}) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    "Input validation failed.",
		Details:    details,
	}
}

// ValidationFailure builds a validation error for a single field.
func ValidationFailure(field, message string) *APIError {
	return NewValidationAPIError(map[string]string{field: message})
}

// FormatValidationErrors converts validator.ValidationErrors into a map.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMap := make(map[string]string)
	for _, e := range errs {
		field := e.Field()
		name := strings.ToLower(field)
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("The %s field is required.", name)
		case "email":
			message = fmt.Sprintf("The %s field must be a valid email address.", name)
		case "min":
			message = fmt.Sprintf("The %s field must be at least %s characters long.", name, e.Param())
		case "max":
			message = fmt.Sprintf("The %s field may not be greater than %s characters.", name, e.Param())
		case "oneof":
			message = fmt.Sprintf("The %s field must be one of the following values: %s.", name, e.Param())
		case "gte":
			message = fmt.Sprintf("The %s field must be greater than or equal to %s.", name, e.Param())
		case "datetime":
			message = fmt.Sprintf("The %s field must be a valid date in the format %s.", name, e.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", field, e.Tag())
		}
		errorMap[field] = message
	}
	return errorMap
}

// BindingError maps a gin binding error to an APIError.
func BindingError(err error) *APIError {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return NewValidationAPIError(FormatValidationErrors(ve))
	}
	return ErrBadRequest.WithDetails(err.Error())
}
