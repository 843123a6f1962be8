package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorKind separates rejections made by a local invariant from rejections made by the
// system of record.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAlreadySettled
	KindNotFound
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAlreadySettled:
		return "already_settled"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Standard error codes for API responses
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeAlreadySettled    = "ALREADY_SETTLED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUpstreamFailure   = "UPSTREAM_FAILURE"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is an error carrying a kind, a stable code and an optional cause.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
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

// Is matches any DomainError with the same code. The kind sentinels below also match
// every error of their kind.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return isKindSentinel(t) && t.Kind == e.Kind
}

func isKindSentinel(e *DomainError) bool {
	return e == ErrValidation || e == ErrAlreadySettled || e == ErrNotFound || e == ErrUpstreamFailure
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Sentinels, one per error kind.
var (
	ErrValidation      = NewDomainError(KindValidation, ErrCodeValidation, "validation failed")
	ErrAlreadySettled  = NewDomainError(KindAlreadySettled, ErrCodeAlreadySettled, "payment already settled")
	ErrNotFound        = NewDomainError(KindNotFound, ErrCodeNotFound, "not found")
	ErrUpstreamFailure = NewDomainError(KindUpstream, ErrCodeUpstreamFailure, "upstream request failed")
)

// InvalidTransitionError reports a status change the configured policy forbids.
func InvalidTransitionError(from, to OrderStatus) error {
	return NewDomainError(KindValidation, ErrCodeInvalidTransition,
		fmt.Sprintf("transition from %s to %s is not allowed", from, to))
}

// ValidationError reports missing or malformed input.
func ValidationError(format string, args ...any) error {
	return NewDomainError(KindValidation, ErrCodeValidation, fmt.Sprintf(format, args...))
}

// AlreadySettledError reports a repeated transition on a paid revenue month.
func AlreadySettledError(pharmacyID, month string) error {
	return NewDomainError(KindAlreadySettled, ErrCodeAlreadySettled,
		fmt.Sprintf("revenue for pharmacy %s month %s is already paid", pharmacyID, month))
}

// NotFoundError reports a missing order, pharmacy or month.
func NotFoundError(what, id string) error {
	return NewDomainError(KindNotFound, ErrCodeNotFound, fmt.Sprintf("%s %s not found", what, id))
}

// UpstreamError wraps a failure reported by the system of record.
func UpstreamError(message string, err error) error {
	return &DomainError{
		Kind:    KindUpstream,
		Code:    ErrCodeUpstreamFailure,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first DomainError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsLocalRejection reports whether err was raised by a local invariant.
func IsLocalRejection(err error) bool {
	k := KindOf(err)
	return k == KindValidation || k == KindAlreadySettled
}

// IsRemoteRejection reports whether err was raised by the system of record.
func IsRemoteRejection(err error) bool {
	k := KindOf(err)
	return k == KindNotFound || k == KindUpstream
}
