// Package memory provides an in-process data.DocumentStore.
//
// It is goroutine safe and supports fault injection through hooks, which makes it the
// store of choice for tests and for running the CLI without a database.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/studyhub/collab/data"
)

// Hook may fail an operation before it is applied. Returning nil lets it proceed.
type Hook func(op, collection string) error

// Store keeps documents in nested maps keyed by collection and id.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	hook        Hook

	queries int
	commits int
}

// New creates an empty store.
func New() *Store {
	return &Store{collections: make(map[string]map[string]map[string]any)}
}

// SetHook installs a fault injection hook. Ops are "query", "get", "set", "delete" and "commit".
func (s *Store) SetHook(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = h
}

func (s *Store) fire(op, collection string) error {
	s.mu.RLock()
	h := s.hook
	s.mu.RUnlock()
	if h == nil {
		return nil
	}
	return h(op, collection)
}

// Query returns up to limit matching documents ordered by id.
func (s *Store) Query(ctx context.Context, collection string, filter data.Filter, limit int) ([]data.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.fire("query", collection); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.queries++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.collections[collection]))
	for id := range s.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []data.Document
	for _, id := range ids {
		fields := s.collections[collection][id]
		if !matches(fields, filter) {
			continue
		}
		out = append(out, data.Document{ID: id, Fields: clone(fields)})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func matches(fields map[string]any, f data.Filter) bool {
	if f.Field == "" {
		return true
	}
	v, ok := fields[f.Field]
	if !ok {
		return false
	}
	switch f.Op {
	case data.OpArrayContains:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if reflect.DeepEqual(rv.Index(i).Interface(), f.Value) {
				return true
			}
		}
		return false
	default:
		return reflect.DeepEqual(v, f.Value)
	}
}

// Get returns a document or a not-found error.
func (s *Store) Get(ctx context.Context, collection, id string) (*data.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.fire("get", collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, data.NewError(data.CodeNotFound, "get", fmt.Errorf("%s/%s", collection, id))
	}
	return &data.Document{ID: id, Fields: clone(fields)}, nil
}

// Set creates or replaces a document.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fire("set", collection); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	s.collections[collection][id] = clone(fields)
	return nil
}

// Delete removes a document or reports not-found.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fire("delete", collection); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return data.NewError(data.CodeNotFound, "delete", fmt.Errorf("%s/%s", collection, id))
	}
	delete(s.collections[collection], id)
	return nil
}

// Batch starts a new write batch.
func (s *Store) Batch() data.WriteBatch {
	return &batch{store: s}
}

// Count returns the number of documents in a collection.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Commits returns how many batches were committed successfully.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Queries returns how many queries were served.
func (s *Store) Queries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries
}

type ref struct {
	collection string
	id         string
}

type batch struct {
	store *Store
	ops   []ref
}

func (b *batch) Delete(collection, id string) error {
	if len(b.ops) >= data.MaxBatchSize {
		return data.ErrBatchFull
	}
	b.ops = append(b.ops, ref{collection: collection, id: id})
	return nil
}

func (b *batch) Len() int {
	return len(b.ops)
}

// Commit applies all deletes atomically. Missing documents are skipped and not counted.
func (b *batch) Commit(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for _, collection := range b.collectionNames() {
		if err := b.store.fire("commit", collection); err != nil {
			return 0, err
		}
	}

	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	deleted := 0
	for _, op := range b.ops {
		docs := b.store.collections[op.collection]
		if _, ok := docs[op.id]; ok {
			delete(docs, op.id)
			deleted++
		}
	}
	b.store.commits++
	b.ops = nil
	return deleted, nil
}

func (b *batch) collectionNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, op := range b.ops {
		if !seen[op.collection] {
			seen[op.collection] = true
			names = append(names, op.collection)
		}
	}
	return names
}

func clone(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
