package delivery

import (
	"errors"

	"github.com/sony/gobreaker"

	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/structs"
	"github.com/studyhub/collab/validation"
)

// Outcome is the classification of a send result.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeRetryable
	OutcomePermanent
)

// Status returns the message status an outcome leads to.
func (o Outcome) Status() structs.MessageStatus {
	switch o {
	case OutcomeSent:
		return structs.MessageSent
	case OutcomeRetryable:
		return structs.MessageFailedRetryable
	default:
		return structs.MessageFailedPermanent
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeRetryable:
		return "retryable"
	default:
		return "permanent"
	}
}

// Classify decides whether a send error is worth retrying. Transient store and
// network errors are retryable, as is an open circuit. Validation, authorization
// and unknown errors are permanent.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSent
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return OutcomePermanent
	}
	if breakerRejected(err) {
		return OutcomeRetryable
	}
	if data.IsRetryable(err) {
		return OutcomeRetryable
	}
	return OutcomePermanent
}

// breakerRejected reports whether err came from the circuit breaker refusing
// the call, in which case the transport was never reached.
func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
