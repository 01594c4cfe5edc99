package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrDuplicateJob        = errors.New("duplicate job id")
	ErrRefundAlreadyIssued = errors.New("refund already issued")
)

// InsufficientCreditsError is returned synchronously when an organization
// cannot cover the reservation. No state is mutated when it is returned.
type InsufficientCreditsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

// ErrorClass is the machine classification of an asynchronous failure. It is
// the sole input to the refund decision.
type ErrorClass string

const (
	ClassRateLimited          ErrorClass = "RATE_LIMITED"
	ClassProviderServerError  ErrorClass = "PROVIDER_SERVER_ERROR"
	ClassProviderRejected     ErrorClass = "PROVIDER_REJECTED"
	ClassGenerationFailed     ErrorClass = "GENERATION_FAILED"
	ClassPollTimeout          ErrorClass = "POLL_TIMEOUT"
	ClassMaterializeFailure   ErrorClass = "MATERIALIZE_FAILURE"
	ClassUnknownResponseShape ErrorClass = "UNKNOWN_RESPONSE_SHAPE"
	ClassCancelled            ErrorClass = "CANCELLED"
)

// Refundable reports whether reserved credits are returned for this class.
// Only pre-acceptance transient failures qualify; once provider compute has
// been spent (timeouts, generation or materialize failures) nothing comes
// back, and malformed requests are the caller's to fix.
func (c ErrorClass) Refundable() bool {
	switch c {
	case ClassRateLimited, ClassProviderServerError:
		return true
	default:
		return false
	}
}
