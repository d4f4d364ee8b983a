package concurrency

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewManager(t *testing.T) {
	if _, err := NewManager(0); err == nil {
		t.Error("NewManager(0) should return error")
	}
}

func TestTryAcquire(t *testing.T) {
	m, err := NewManager(2)
	if err != nil {
		t.Fatal(err)
	}

	if !m.TryAcquire() || !m.TryAcquire() {
		t.Fatal("TryAcquire() failed below the limit")
	}
	if m.TryAcquire() {
		t.Error("TryAcquire() succeeded past the limit")
	}
	if m.Available() != 0 {
		t.Errorf("Available() = %d", m.Available())
	}

	if err := m.Release(); err != nil {
		t.Fatal(err)
	}
	if !m.TryAcquire() {
		t.Error("TryAcquire() failed after release")
	}

	metrics := m.GetMetrics()
	if metrics["total_executions"] != 3 || metrics["rejected_count"] != 1 {
		t.Errorf("metrics = %v", metrics)
	}
}

func TestAcquireTimeout(t *testing.T) {
	m, _ := NewManager(1)
	if err := m.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want deadline exceeded", err)
	}
}

func TestOverRelease(t *testing.T) {
	m, _ := NewManager(1)
	if err := m.Release(); !errors.Is(err, ErrOverRelease) {
		t.Errorf("Release() error = %v, want ErrOverRelease", err)
	}
}
