// Package queuetest checks queue.Store implementations against the shared contract.
package queuetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/studyhub/collab/queue"
	"github.com/studyhub/collab/structs"
)

// Message returns a queued-looking message for tests.
func Message(id, chat string) structs.Message {
	return structs.Message{
		ID:        id,
		ChatID:    chat,
		SenderID:  "u1",
		Text:      "hello " + id,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Status:    structs.MessageFailedRetryable,
	}
}

// Entry wraps Message in an entry enqueued at t.
func Entry(id, chat string, t time.Time) queue.Entry {
	return queue.Entry{Message: Message(id, chat), EnqueuedAt: t}
}

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) queue.Store) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("PutGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if _, err := s.Put(ctx, Entry("m1", "c1", base)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get(ctx, "m1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Message.Text != "hello m1" || got.ChatID() != "c1" {
			t.Errorf("Get() = %+v", got)
		}
		if !got.EnqueuedAt.Equal(base) {
			t.Errorf("EnqueuedAt = %v, want %v", got.EnqueuedAt, base)
		}
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, queue.ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("PutKeepsPosition", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		first, _ := s.Put(ctx, Entry("m1", "c1", base))
		s.Put(ctx, Entry("m2", "c1", base.Add(time.Second)))

		again := Entry("m1", "c1", base.Add(time.Hour))
		again.Message.Text = "edited"
		got, err := s.Put(ctx, again)
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if got.Seq != first.Seq || !got.EnqueuedAt.Equal(base) {
			t.Errorf("re-Put moved entry: seq %d -> %d, at %v", first.Seq, got.Seq, got.EnqueuedAt)
		}
		list, _ := s.List(ctx)
		if ids(list) != "[m1 m2]" {
			t.Errorf("List() = %s, want [m1 m2]", ids(list))
		}
		if list[0].Message.Text != "edited" {
			t.Errorf("payload not replaced: %q", list[0].Message.Text)
		}
	})

	t.Run("Ordering", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		s.Put(ctx, Entry("late", "c1", base.Add(2*time.Second)))
		s.Put(ctx, Entry("tie-a", "c2", base))
		s.Put(ctx, Entry("tie-b", "c1", base))
		s.Put(ctx, Entry("mid", "c2", base.Add(time.Second)))

		all, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if got := ids(all); got != "[tie-a tie-b mid late]" {
			t.Errorf("List() = %s", got)
		}
		c1, err := s.ListByChat(ctx, "c1")
		if err != nil {
			t.Fatalf("ListByChat() error = %v", err)
		}
		if got := ids(c1); got != "[tie-b late]" {
			t.Errorf("ListByChat(c1) = %s", got)
		}
	})

	t.Run("Update", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		s.Put(ctx, Entry("m1", "c1", base))
		got, err := s.Update(ctx, "m1", func(e *queue.Entry) {
			e.Attempts++
			e.LastError = "timeout"
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.Attempts != 1 || got.LastError != "timeout" {
			t.Errorf("Update() = %+v", got)
		}
		stored, _ := s.Get(ctx, "m1")
		if stored.Attempts != 1 {
			t.Errorf("stored Attempts = %d, want 1", stored.Attempts)
		}
		if _, err := s.Update(ctx, "missing", func(*queue.Entry) {}); !errors.Is(err, queue.ErrNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		s.Put(ctx, Entry("m1", "c1", base))
		s.Put(ctx, Entry("m2", "c1", base))
		ok, err := s.Remove(ctx, "m1")
		if err != nil || !ok {
			t.Fatalf("Remove() = %v, %v", ok, err)
		}
		ok, err = s.Remove(ctx, "m1")
		if err != nil || ok {
			t.Errorf("second Remove() = %v, %v, want false, nil", ok, err)
		}
		c1, _ := s.ListByChat(ctx, "c1")
		if ids(c1) != "[m2]" {
			t.Errorf("ListByChat() = %s, want [m2]", ids(c1))
		}
	})

	t.Run("ConcurrentUpdate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		s.Put(ctx, Entry("m1", "c1", base))
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Update(ctx, "m1", func(e *queue.Entry) { e.Attempts++ }); err != nil {
					t.Errorf("Update() error = %v", err)
				}
			}()
		}
		wg.Wait()
		got, _ := s.Get(ctx, "m1")
		if got.Attempts != 20 {
			t.Errorf("Attempts = %d, want 20", got.Attempts)
		}
	})
}

func ids(entries []queue.Entry) string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID()
	}
	return fmt.Sprint(out)
}
