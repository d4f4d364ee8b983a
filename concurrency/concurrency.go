// Package concurrency bounds how many operations of one kind run at once.
package concurrency

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrOverRelease is returned when Release is called without a matching acquire.
var ErrOverRelease = errors.New("attempting to release more slots than acquired")

// Manager manages concurrent executions
type Manager struct {
	maxConcurrent int32
	current       atomic.Int32
	semaphore     chan struct{}

	totalExecutions atomic.Int64
	rejectedCount   atomic.Int64
}

// NewManager creates a new concurrency manager
//
// Usage:
//
//	cm, err := concurrency.NewManager(8)
//	if err != nil {
//	    return err
//	}
//
//	if cm.TryAcquire() {
//	    defer cm.Release()
//	    // Do work...
//	} else {
//	    // Busy: drop or defer the work
//	}
func NewManager(max int32) (*Manager, error) {
	if max <= 0 {
		return nil, fmt.Errorf("max concurrent must be positive, got: %d", max)
	}

	return &Manager{
		maxConcurrent: max,
		semaphore:     make(chan struct{}, max),
	}, nil
}

// Acquire waits for a concurrency slot
func (m *Manager) Acquire(ctx context.Context) error {
	select {
	case m.semaphore <- struct{}{}:
		m.current.Add(1)
		m.totalExecutions.Add(1)
		return nil
	case <-ctx.Done():
		m.rejectedCount.Add(1)
		return fmt.Errorf("failed to acquire concurrency slot: %w", ctx.Err())
	}
}

// TryAcquire attempts to acquire without blocking
func (m *Manager) TryAcquire() bool {
	select {
	case m.semaphore <- struct{}{}:
		m.current.Add(1)
		m.totalExecutions.Add(1)
		return true
	default:
		m.rejectedCount.Add(1)
		return false
	}
}

// Release releases a concurrency slot
func (m *Manager) Release() error {
	select {
	case <-m.semaphore:
		m.current.Add(-1)
		return nil
	default:
		return ErrOverRelease
	}
}

// GetMetrics returns current metrics
func (m *Manager) GetMetrics() map[string]int64 {
	return map[string]int64{
		"current":          int64(m.current.Load()),
		"total_executions": m.totalExecutions.Load(),
		"rejected_count":   m.rejectedCount.Load(),
	}
}

// Available returns the number of available slots
func (m *Manager) Available() int32 {
	return m.maxConcurrent - m.current.Load()
}
