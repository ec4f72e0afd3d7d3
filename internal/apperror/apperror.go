// Package apperror defines the request-scoped failures the API reports and
// the HTTP status each one maps to.
package apperror

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind is the machine-stable identifier sent to clients as err.kind.
type Kind string

const (
	KindAuthTokenInvalid Kind = "AuthTokenInvalid"
	KindInsufficientRole Kind = "InsufficientRole"
	KindNotFound         Kind = "NotFound"
	KindCategoryNotFound Kind = "CategoryNotFound"
	KindProductNotFound  Kind = "ProductNotFound"
	KindValidation       Kind = "ValidationError"
	KindStore            Kind = "StoreError"
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindAuthTokenInvalid, KindInsufficientRole:
		return http.StatusUnauthorized
	case KindNotFound, KindCategoryNotFound, KindProductNotFound, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application error. Fields are echoed to the client next to
// kind and message.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	cause   error
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status code for the error.
func (e *Error) Status() int { return e.Kind.Status() }

// With returns a copy of e carrying an extra diagnostic field.
func (e *Error) With(key string, value any) *Error {
	fields := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &Error{Kind: e.Kind, Message: e.Message, Fields: fields, cause: e.cause}
}

// Body renders the err object of the failure envelope.
func (e *Error) Body() map[string]any {
	body := make(map[string]any, len(e.Fields)+2)
	for k, v := range e.Fields {
		body[k] = v
	}
	body["kind"] = e.Kind
	body["message"] = e.Message
	return body
}

// Validation is shorthand for a ValidationError.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Store wraps an unexpected store failure. The cause keeps its stack trace
// for logging; the client only sees the generic message.
func Store(err error, op string) *Error {
	return &Error{
		Kind:    KindStore,
		Message: "unexpected store failure",
		cause:   errors.Wrap(err, op),
	}
}

// As extracts an *Error from err. Anything else becomes a StoreError.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Store(err, "unclassified")
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
