package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studyhub/collab/data/metrics"
	"github.com/studyhub/collab/queue"
	"github.com/studyhub/collab/queue/queuetest"
	"github.com/studyhub/collab/structs"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newQueue() (*queue.Queue, *metrics.DataCollector) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := metrics.NewDataCollector()
	return queue.New(queue.NewMemoryStore(), queue.WithClock(clock.now), queue.WithCollector(c)), c
}

func TestEnqueue(t *testing.T) {
	q, c := newQueue()
	ctx := context.Background()

	msg := queuetest.Message("m1", "c1")
	msg.Status = structs.MessageSending
	e, err := q.Enqueue(ctx, msg, errors.New("network down"))
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if e.Message.Status != structs.MessageFailedRetryable {
		t.Errorf("Status = %s, want FAILED_RETRYABLE", e.Message.Status)
	}
	if e.LastError != "network down" || e.Attempts != 0 {
		t.Errorf("Enqueue() = %+v", e)
	}
	if c.Stats().QueueDepth != 1 {
		t.Errorf("QueueDepth = %d, want 1", c.Stats().QueueDepth)
	}

	if _, err := q.Enqueue(ctx, structs.Message{ChatID: "c1"}, nil); !errors.Is(err, queue.ErrMissingID) {
		t.Errorf("Enqueue(no id) error = %v, want ErrMissingID", err)
	}
}

func TestEnqueueKeepsPositionAndAttempts(t *testing.T) {
	q, _ := newQueue()
	ctx := context.Background()

	first, _ := q.Enqueue(ctx, queuetest.Message("m1", "c1"), nil)
	q.Enqueue(ctx, queuetest.Message("m2", "c1"), nil)
	q.RecordAttempt(ctx, "m1", errors.New("timeout"))

	again, err := q.Enqueue(ctx, queuetest.Message("m1", "c1"), errors.New("offline"))
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if !again.EnqueuedAt.Equal(first.EnqueuedAt) || again.Attempts != 1 {
		t.Errorf("re-enqueue = %+v, want original position and 1 attempt", again)
	}
	pending, _ := q.Pending(ctx)
	if len(pending) != 2 || pending[0].ID() != "m1" {
		t.Errorf("Pending() = %v", pending)
	}
}

func TestRemoveAndRecordAttempt(t *testing.T) {
	q, c := newQueue()
	ctx := context.Background()
	q.Enqueue(ctx, queuetest.Message("m1", "c1"), nil)
	q.Enqueue(ctx, queuetest.Message("m2", "c2"), nil)

	e, err := q.RecordAttempt(ctx, "m1", errors.New("timeout"))
	if err != nil || e.Attempts != 1 || e.LastError != "timeout" {
		t.Fatalf("RecordAttempt() = %+v, %v", e, err)
	}

	ok, err := q.Remove(ctx, "m1")
	if err != nil || !ok {
		t.Fatalf("Remove() = %v, %v", ok, err)
	}
	if _, err := q.RecordAttempt(ctx, "m1", nil); !errors.Is(err, queue.ErrNotFound) {
		t.Errorf("RecordAttempt(removed) error = %v, want ErrNotFound", err)
	}
	if ok, _ := q.Contains(ctx, "m1"); ok {
		t.Error("Contains(m1) = true after Remove")
	}
	if n, _ := q.Len(ctx); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
	if c.Stats().QueueDepth != 1 {
		t.Errorf("QueueDepth = %d, want 1", c.Stats().QueueDepth)
	}
	c2, _ := q.PendingForChat(ctx, "c2")
	if len(c2) != 1 || c2[0].ID() != "m2" {
		t.Errorf("PendingForChat(c2) = %v", c2)
	}

	m := q.GetMetrics()
	if m["enqueue_count"] != 2 || m["remove_count"] != 1 || m["attempt_count"] != 2 {
		t.Errorf("GetMetrics() = %v", m)
	}
}
