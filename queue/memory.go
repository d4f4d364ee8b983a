package queue

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory. It does not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	seq     int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Put(ctx context.Context, e Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[e.ID()]; ok {
		e.Seq = old.Seq
		e.EnqueuedAt = old.EnqueuedAt
	} else {
		s.seq++
		e.Seq = s.seq
	}
	s.entries[e.ID()] = e
	return e, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Entry)) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	fn(&e)
	s.entries[id] = e
	return e, nil
}

func (s *MemoryStore) Remove(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	return s.filter(ctx, func(Entry) bool { return true })
}

func (s *MemoryStore) ListByChat(ctx context.Context, chatID string) ([]Entry, error) {
	return s.filter(ctx, func(e Entry) bool { return e.ChatID() == chatID })
}

func (s *MemoryStore) filter(ctx context.Context, keep func(Entry) bool) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()
	SortEntries(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
