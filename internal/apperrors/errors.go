// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for HTTP mapping. Retry guidance:
// Conflict and TransferTimeout are retryable after re-reading state;
// InvalidInput and Unauthorized never are.
type Kind string

const (
	KindInvalidInput          Kind = "INVALID_INPUT"
	KindUnauthorized          Kind = "UNAUTHORIZED"
	KindNotFound              Kind = "NOT_FOUND"
	KindConflict              Kind = "CONFLICT"
	KindInsufficientFunds     Kind = "INSUFFICIENT_FUNDS"
	KindDuplicateDisbursement Kind = "DUPLICATE_DISBURSEMENT"
	KindReviewRequired        Kind = "REVIEW_REQUIRED"
	KindTransferTimeout       Kind = "TRANSFER_TIMEOUT"
	KindInternal              Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	// Details carries the context a caller needs to retry (ids, expected vs
	// actual version or state).
	Details map[string]interface{}
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, wrapped: err}
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// KindOf returns the Kind carried by err, or KindInternal for errors outside
// the taxonomy.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether the caller may retry after re-reading state.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindConflict, KindTransferTimeout:
		return true
	}
	return false
}
