package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studyhub/collab/ctxutil"
	"github.com/studyhub/collab/logging/logger"
	"github.com/studyhub/collab/queue"
	"github.com/studyhub/collab/structs"
	"github.com/studyhub/collab/utils/nanoid"
)

// Sender performs the first delivery attempt of new messages.
type Sender struct {
	transport Transport
	queue     *queue.Queue
	opts      *options
}

// NewSender creates a sender that parks retryable failures in q.
func NewSender(t Transport, q *queue.Queue, opts ...Option) *Sender {
	return &Sender{transport: t, queue: q, opts: newOptions(opts)}
}

// Send validates msg and delivers it once. It returns the message in its final
// status. A message without an id gets one.
//
// Invalid messages are rejected with a *validation.Error before any status
// change. A retryable failure leaves the message FAILED_RETRYABLE in the
// offline queue; a permanent one marks it FAILED_PERMANENT and never queues it.
func (s *Sender) Send(ctx context.Context, msg structs.Message) (structs.Message, error) {
	if strings.TrimSpace(msg.ID) == "" {
		msg.ID = nanoid.MessageID()
	}
	if res := s.opts.validator.ValidateMessage(msg); !res.Valid {
		return msg, res.Err()
	}
	ctx = ctxutil.SetChatID(ctx, msg.ChatID)
	if msg.Status == structs.MessageSending {
		// freshly composed
		msg.Status = ""
	}
	if err := setStatus(&msg, structs.MessageSending, s.opts.listeners); err != nil {
		return msg, err
	}

	outcome, sendErr := s.opts.attempt(ctx, s.transport, msg)
	if err := setStatus(&msg, outcome.Status(), s.opts.listeners); err != nil {
		return msg, err
	}

	// bookkeeping must not be lost when the send failed because ctx ended
	qctx, cancel := s.opts.bookkeeping(ctx)
	defer cancel()

	switch outcome {
	case OutcomeSent:
		if _, err := s.queue.Remove(qctx, msg.ID); err != nil {
			logger.Warnf(ctx, "message %s sent but queue removal failed: %v", msg.ID, err)
		}
		return msg, nil
	case OutcomeRetryable:
		logger.Infof(ctx, "message %s failed, queued for retry: %v", msg.ID, sendErr)
		if _, err := s.queue.Enqueue(qctx, msg, sendErr); err != nil {
			logger.Errorf(ctx, "failed to queue message %s: %v", msg.ID, err)
			return msg, errors.Join(sendErr, err)
		}
		return msg, fmt.Errorf("send %s: %w", msg.ID, sendErr)
	default:
		logger.Warnf(ctx, "message %s failed permanently: %v", msg.ID, sendErr)
		if _, err := s.queue.Remove(qctx, msg.ID); err != nil {
			logger.Warnf(ctx, "failed to drop message %s from queue: %v", msg.ID, err)
		}
		return msg, fmt.Errorf("send %s: %w", msg.ID, sendErr)
	}
}
