package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Decline reasons surfaced to callers after mapping processor codes.
const (
	DeclineGeneric           = "declined"
	DeclineExpiredCard       = "expired_card"
	DeclineBadCVC            = "bad_cvc"
	DeclineInsufficientFunds = "insufficient_funds"
	DeclineUnknown           = "unknown"
)

// ValidationError carries every violated intake field at once, so the caller
// can highlight all of them instead of fixing one per round trip.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields[field] = reason
}

func (e *ValidationError) HasViolations() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// AccountError means the tourist account lookup/creation call failed.
// It is a hard stop: no payment step proceeds without an account reference.
type AccountError struct {
	Err error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("account resolution failed: %v", e.Err)
}

func (e *AccountError) Unwrap() error { return e.Err }

// OperatorResolutionError means no operator could be resolved for the occurrence.
type OperatorResolutionError struct {
	OccurrenceID int64
}

func (e *OperatorResolutionError) Error() string {
	return fmt.Sprintf("no operator resolved for occurrence %d", e.OccurrenceID)
}

// CapacityExceededError means the atomic capacity reservation was refused.
type CapacityExceededError struct {
	OccurrenceID int64
	Requested    int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("occurrence %d cannot take %d more participants", e.OccurrenceID, e.Requested)
}

// PaymentDeclinedError carries the mapped decline reason. At most one reason
// is surfaced at a time.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}

// IllegalTransitionError indicates a programming or integration bug, never a
// user mistake. It must be logged, never silently swallowed.
type IllegalTransitionError struct {
	BookingID     int64
	Event         string
	Status        string
	PaymentStatus string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %q for booking %d in state %s/%s",
		e.Event, e.BookingID, e.Status, e.PaymentStatus)
}

// GatewayUnavailableError wraps transient processor transport failures.
// Only the authorize step is safe to retry, and only after confirming no
// prior authorization succeeded.
type GatewayUnavailableError struct {
	Op  string
	Err error
}

func (e *GatewayUnavailableError) Error() string {
	return fmt.Sprintf("payment gateway unavailable during %s: %v", e.Op, e.Err)
}

func (e *GatewayUnavailableError) Unwrap() error { return e.Err }

// ErrConcurrentAction rejects the losing writer of a per-booking race.
var ErrConcurrentAction = errors.New("another action is in progress for this booking")

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsCapacityExceeded(err error) bool {
	var c *CapacityExceededError
	return errors.As(err, &c)
}

func IsPaymentDeclined(err error) (*PaymentDeclinedError, bool) {
	var p *PaymentDeclinedError
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}

func IsIllegalTransition(err error) bool {
	var i *IllegalTransitionError
	return errors.As(err, &i)
}

func IsGatewayUnavailable(err error) bool {
	var g *GatewayUnavailableError
	return errors.As(err, &g)
}
