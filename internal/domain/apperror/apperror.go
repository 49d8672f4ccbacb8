// Package apperror defines the tagged errors shared by every layer of the service
package apperror

import (
	"context"
	"errors"
	"net/http"
)

// Kind classifies an error for callers and for the HTTP boundary
type Kind string

const (
	// InvalidInput is a malformed request (bad file type, missing file)
	InvalidInput Kind = "InvalidInput"
	// IOFailure is a read or write failure on the upload directory
	IOFailure Kind = "IOFailure"
	// NoDataFound means no upload matches the requested category
	NoDataFound Kind = "NoDataFound"
	// NoLaneData means the lane filter produced no rows
	NoLaneData Kind = "NoLaneData"
	// ModelFitFailure covers malformed observations and failing models
	ModelFitFailure Kind = "ModelFitFailure"
	// Timeout means the request deadline expired
	Timeout Kind = "Timeout"
	// RateLimited means the request was refused by admission control
	RateLimited Kind = "RateLimited"
	// Internal is any error without a kind
	Internal Kind = "Internal"
)

// Error is an error carrying a Kind and a human-readable message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates a tagged error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a tagged error around a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperror.New(kind, ""))
// can be used as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first tagged error in the chain.
// Context deadline errors map to Timeout.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}

	return Internal
}

// IsKind reports whether the error chain carries the kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to the response status used by the API
func HTTPStatus(kind Kind) int {
	switch kind {
	case InvalidInput:
		return http.StatusBadRequest
	case NoDataFound, NoLaneData:
		return http.StatusNotFound
	case ModelFitFailure:
		return http.StatusUnprocessableEntity
	case RateLimited:
		return http.StatusTooManyRequests
	case Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
