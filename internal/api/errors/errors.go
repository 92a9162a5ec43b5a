package errors

import (
	"fmt"
	"net/http"

	apperrors "meeting-summarizer/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Kind:    KindServiceUnavailable,
		Message: message,
	}
}

// FromDomain maps a pipeline or store error onto an API error, preserving
// the message for client-caused failures and hiding internals otherwise.
func FromDomain(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return &APIError{Kind: KindNotFound, Message: err.Error()}
	case apperrors.KindModelNotFound:
		return &APIError{Kind: KindBadRequest, Message: err.Error()}
	case apperrors.KindServiceUnavailable:
		return &APIError{Kind: KindServiceUnavailable, Message: "summarization service unavailable"}
	case apperrors.KindExternalTool:
		return &APIError{Kind: KindInternal, Message: "audio processing failed"}
	case apperrors.KindMalformedResponse:
		return &APIError{Kind: KindServiceUnavailable, Message: "summarization service returned an invalid response"}
	case apperrors.KindPersistence:
		return &APIError{Kind: KindInternal, Message: "storage operation failed"}
	default:
		return &APIError{Kind: KindInternal, Message: "internal server error"}
	}
}
