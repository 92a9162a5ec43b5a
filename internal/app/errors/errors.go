package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline or store failure so callers can tell which
// stage broke without parsing messages.
type Kind string

const (
	// KindExternalTool covers non-zero exits and missing binaries of the
	// ffmpeg/whisper subprocesses.
	KindExternalTool Kind = "external_tool"

	// KindModelNotFound means a requested model id has no backing artifact.
	KindModelNotFound Kind = "model_not_found"

	// KindServiceUnavailable covers connection failures and non-2xx
	// responses from the summarization or model-listing service.
	KindServiceUnavailable Kind = "service_unavailable"

	// KindMalformedResponse means a streamed response line was not valid JSON.
	KindMalformedResponse Kind = "malformed_response"

	// KindPersistence covers store read/write failures.
	KindPersistence Kind = "persistence"

	// KindNotFound means a query referenced an unknown record id.
	KindNotFound Kind = "not_found"
)

// Error is a classified error with an optional cause.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Is matches two classified errors by kind, so sentinel-style checks work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), cause: err}
}

// ExternalTool reports a subprocess failure.
func ExternalTool(err error, format string, args ...interface{}) *Error {
	return wrap(KindExternalTool, err, format, args...)
}

// ModelNotFound reports a model id with no backing artifact.
func ModelNotFound(modelID string) *Error {
	return newf(KindModelNotFound, "model not found: %s", modelID)
}

// ServiceUnavailable reports an unreachable or failing external service.
func ServiceUnavailable(err error, format string, args ...interface{}) *Error {
	return wrap(KindServiceUnavailable, err, format, args...)
}

// MalformedResponse reports an unparsable streamed response line.
func MalformedResponse(err error, format string, args ...interface{}) *Error {
	return wrap(KindMalformedResponse, err, format, args...)
}

// Persistence reports a store read/write failure.
func Persistence(err error, format string, args ...interface{}) *Error {
	return wrap(KindPersistence, err, format, args...)
}

// NotFound reports a lookup for an unknown record.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// IsKind reports whether err or anything it wraps carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == kind
	}
	return false
}

// KindOf returns the kind of the outermost classified error, or "" when err
// carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ""
}
