package domain

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every error returned by services unwraps to at most one of these,
// and the delivery layer maps each kind to a stable status code.
var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrInvalidTransition   = errors.New("invalid payment status transition")
)

// Error is a specific, human-readable failure reason of a given kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Specific failure reasons.
var (
	ErrEventNotFound       = newError(ErrNotFound, "event not found")
	ErrGuestNotFound       = newError(ErrNotFound, "guest not found")
	ErrInterestNotFound    = newError(ErrNotFound, "interest not found")
	ErrUserNotFound        = newError(ErrNotFound, "user not found")
	ErrInviteNotFound      = newError(ErrNotFound, "invitation not found")
	ErrWrongInviteCode     = newError(ErrForbidden, "wrong invite code")
	ErrNotEventHost        = newError(ErrForbidden, "only the host can do this")
	ErrHostCannotJoin      = newError(ErrInvalidInput, "host cannot join own event as guest")
	ErrAlreadyJoined       = newError(ErrConflict, "already joined")
	ErrEventFull           = newError(ErrConflict, "event full")
	ErrMonthlyLimitReached = newError(ErrConflict, "host already has an event this month")
	ErrCapacityBelowGuests = newError(ErrConflict, "max guests cannot be lower than the number of joined guests")
	ErrDuplicateInviteCode = newError(ErrConflict, "invite code already in use")
	ErrDuplicateTicket     = newError(ErrConflict, "ticket number already in use")
	ErrAlreadyPaid         = newError(ErrConflict, "already paid")
	ErrPaymentCanceled     = newError(ErrConflict, "payment canceled")
	ErrFreeEvent           = newError(ErrInvalidInput, "event has no ticket fee")
	ErrGatewayUnconfigured = newError(ErrUpstreamUnavailable, "payment provider is not configured")
	ErrInvalidSignature    = newError(ErrInvalidInput, "invalid notification signature")
	ErrMalformedPayload    = newError(ErrInvalidInput, "malformed notification payload")
)

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a message for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no field was rejected.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
