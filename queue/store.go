package queue

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/studyhub/collab/structs"
)

// ErrNotFound is returned for a message id that is not queued.
var ErrNotFound = errors.New("queue: entry not found")

// Entry is one queued message awaiting delivery.
type Entry struct {
	Message    structs.Message `json:"message"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	Attempts   int             `json:"attempts"`
	LastError  string          `json:"lastError,omitempty"`
	// Seq breaks ties between entries enqueued at the same instant.
	Seq int64 `json:"seq"`
}

// ID returns the message id the entry is keyed by.
func (e Entry) ID() string {
	return e.Message.ID
}

// ChatID returns the chat the message belongs to.
func (e Entry) ChatID() string {
	return e.Message.ChatID
}

// Store persists queue entries keyed by message id.
//
// List and ListByChat return entries ordered by EnqueuedAt then Seq.
type Store interface {
	// Put inserts e, or replaces an entry with the same id while keeping its
	// EnqueuedAt and Seq.
	Put(ctx context.Context, e Entry) (Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	// Update applies fn to the stored entry atomically. Missing ids fail with ErrNotFound.
	Update(ctx context.Context, id string, fn func(*Entry)) (Entry, error)
	// Remove deletes the entry and reports whether it existed.
	Remove(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]Entry, error)
	ListByChat(ctx context.Context, chatID string) ([]Entry, error)
	Close() error
}

// SortEntries orders entries by enqueue time then sequence.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.EnqueuedAt.Equal(b.EnqueuedAt) {
			return a.EnqueuedAt.Before(b.EnqueuedAt)
		}
		return a.Seq < b.Seq
	})
}
