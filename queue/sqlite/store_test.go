package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/queue"
	"github.com/studyhub/collab/queue/queuetest"
)

func openTemp(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), &config.SQLite{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestStore(t *testing.T) {
	queuetest.Run(t, func(t *testing.T) queue.Store {
		s := openTemp(t, filepath.Join(t.TempDir(), "queue.db"))
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	for _, cfg := range []*config.SQLite{nil, {}} {
		if _, err := Open(context.Background(), cfg); err == nil {
			t.Errorf("Open(%v) error = nil", cfg)
		}
	}
}

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := openTemp(t, path)
	q := queue.New(s, queue.WithClock(func() time.Time { return at }))
	if _, err := q.Enqueue(ctx, queuetest.Message("m1", "c1"), nil); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if _, err := q.RecordAttempt(ctx, "m1", context.DeadlineExceeded); err != nil {
		t.Fatalf("RecordAttempt() error = %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := openTemp(t, path)
	defer reopened.Close()
	e, err := reopened.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if e.Attempts != 1 || e.LastError != context.DeadlineExceeded.Error() {
		t.Errorf("entry = %+v", e)
	}
	if !e.EnqueuedAt.Equal(at) || e.Message.Text != "hello m1" {
		t.Errorf("entry lost data: %+v", e)
	}
}
