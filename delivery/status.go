package delivery

import (
	"errors"
	"fmt"

	"github.com/studyhub/collab/structs"
)

// ErrInvalidTransition is wrapped by Transition for a disallowed status change.
var ErrInvalidTransition = errors.New("invalid message status transition")

var transitions = map[structs.MessageStatus][]structs.MessageStatus{
	"": {structs.MessageSending},
	structs.MessageSending: {
		structs.MessageSent,
		structs.MessageFailed,
		structs.MessageFailedRetryable,
		structs.MessageFailedPermanent,
	},
	structs.MessageSent:            {structs.MessageDelivered, structs.MessageRead},
	structs.MessageDelivered:       {structs.MessageRead},
	structs.MessageFailed:          {structs.MessageSending},
	structs.MessageFailedRetryable: {structs.MessageSending, structs.MessageFailedPermanent},
}

// Transition checks that a message may move from one status to another.
// READ and FAILED_PERMANENT are terminal.
func Transition(from, to structs.MessageStatus) error {
	for _, s := range transitions[from] {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
}

// StatusListener observes every status change of a message.
// It runs on the goroutine performing the send and must not block.
type StatusListener func(msg structs.Message, from structs.MessageStatus)

// setStatus validates and applies a transition, then notifies listeners.
func setStatus(msg *structs.Message, to structs.MessageStatus, listeners []StatusListener) error {
	from := msg.Status
	if err := Transition(from, to); err != nil {
		return err
	}
	msg.Status = to
	for _, l := range listeners {
		l(*msg, from)
	}
	return nil
}
