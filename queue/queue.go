// Package queue holds chat messages that could not be delivered yet.
//
// Entries are keyed by message id, so concurrent enqueue and removal never shift
// other entries. Re-enqueueing a queued message keeps its original position.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/studyhub/collab/data/metrics"
	"github.com/studyhub/collab/structs"
)

// ErrMissingID is returned when enqueueing a message without an id.
var ErrMissingID = errors.New("queue: message id is required")

// Metrics tracks queue operations
type Metrics struct {
	EnqueueCount atomic.Int64
	RemoveCount  atomic.Int64
	AttemptCount atomic.Int64
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock sets the time source for enqueue timestamps.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// WithCollector reports queue depth to c.
func WithCollector(c metrics.Collector) Option {
	return func(q *Queue) {
		q.collector = c
	}
}

// Queue is the offline message queue.
type Queue struct {
	store     Store
	now       func() time.Time
	collector metrics.Collector
	metrics   Metrics
}

// New creates a queue over store.
func New(store Store, opts ...Option) *Queue {
	q := &Queue{store: store, now: time.Now, collector: metrics.NoOpCollector{}}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue stores msg as FAILED_RETRYABLE with cause as its last error.
// An already queued message keeps its position and attempt count.
func (q *Queue) Enqueue(ctx context.Context, msg structs.Message, cause error) (Entry, error) {
	if strings.TrimSpace(msg.ID) == "" {
		return Entry{}, ErrMissingID
	}
	msg.Status = structs.MessageFailedRetryable
	lastErr := errString(cause)

	e, err := q.store.Update(ctx, msg.ID, func(e *Entry) {
		e.Message = msg
		e.LastError = lastErr
	})
	if errors.Is(err, ErrNotFound) {
		e, err = q.store.Put(ctx, Entry{Message: msg, EnqueuedAt: q.now().UTC(), LastError: lastErr})
	}
	if err != nil {
		return Entry{}, fmt.Errorf("enqueue %s: %w", msg.ID, err)
	}

	q.metrics.EnqueueCount.Add(1)
	q.reportDepth(ctx)
	return e, nil
}

// Get returns the entry for a message id.
func (q *Queue) Get(ctx context.Context, id string) (Entry, error) {
	return q.store.Get(ctx, id)
}

// Contains reports whether id is queued.
func (q *Queue) Contains(ctx context.Context, id string) (bool, error) {
	_, err := q.store.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Remove drops a message from the queue and reports whether it was queued.
func (q *Queue) Remove(ctx context.Context, id string) (bool, error) {
	ok, err := q.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", id, err)
	}
	if ok {
		q.metrics.RemoveCount.Add(1)
		q.reportDepth(ctx)
	}
	return ok, nil
}

// RecordAttempt counts one failed delivery attempt. A message removed meanwhile
// fails with ErrNotFound.
func (q *Queue) RecordAttempt(ctx context.Context, id string, cause error) (Entry, error) {
	q.metrics.AttemptCount.Add(1)
	lastErr := errString(cause)
	return q.store.Update(ctx, id, func(e *Entry) {
		e.Attempts++
		e.LastError = lastErr
	})
}

// Pending returns every queued entry in enqueue order.
func (q *Queue) Pending(ctx context.Context) ([]Entry, error) {
	return q.store.List(ctx)
}

// PendingForChat returns one chat's entries in enqueue order.
func (q *Queue) PendingForChat(ctx context.Context, chatID string) ([]Entry, error) {
	return q.store.ListByChat(ctx, chatID)
}

// Len returns the number of queued entries.
func (q *Queue) Len(ctx context.Context) (int, error) {
	entries, err := q.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// GetMetrics returns the current metrics
func (q *Queue) GetMetrics() map[string]int64 {
	return map[string]int64{
		"enqueue_count": q.metrics.EnqueueCount.Load(),
		"remove_count":  q.metrics.RemoveCount.Load(),
		"attempt_count": q.metrics.AttemptCount.Load(),
	}
}

// Close closes the underlying store.
func (q *Queue) Close() error {
	return q.store.Close()
}

func (q *Queue) reportDepth(ctx context.Context) {
	if n, err := q.Len(ctx); err == nil {
		q.collector.QueueDepth(n)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
