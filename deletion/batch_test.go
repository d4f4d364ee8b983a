package deletion

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/studyhub/collab/consts"
	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/data/memory"
	"github.com/studyhub/collab/data/metrics"
)

func seedMessages(t *testing.T, s *memory.Store, sender string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-msg-%05d", sender, i)
		err := s.Set(ctx, consts.MessagesCollection, id, map[string]any{
			consts.FieldSenderID: sender,
			consts.FieldChatID:   "chat-1",
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestDeleteMatchingCommitCount(t *testing.T) {
	tests := []struct {
		n           int
		wantBatches int
	}{
		{0, 0},
		{1, 1},
		{499, 1},
		{500, 1},
		{501, 2},
		{1000, 2},
		{1200, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			store := memory.New()
			seedMessages(t, store, "u1", tt.n)
			seedMessages(t, store, "u2", 3)

			res := NewBatchDeleter(store).DeleteMatching(context.Background(),
				consts.MessagesCollection, data.Eq(consts.FieldSenderID, "u1"))

			if res.Err != nil {
				t.Fatalf("DeleteMatching() error = %v", res.Err)
			}
			if res.Deleted != tt.n {
				t.Errorf("Deleted = %d, want %d", res.Deleted, tt.n)
			}
			if res.Batches != tt.wantBatches || store.Commits() != tt.wantBatches {
				t.Errorf("Batches = %d commits = %d, want %d", res.Batches, store.Commits(), tt.wantBatches)
			}
			if left := store.Count(consts.MessagesCollection); left != 3 {
				t.Errorf("%d messages left, want the 3 from another sender", left)
			}
		})
	}
}

func TestDeleteMatchingTwelveHundred(t *testing.T) {
	store := memory.New()
	seedMessages(t, store, "u1", 1200)
	collector := metrics.NewDataCollector()

	res := NewBatchDeleter(store, WithCollector(collector)).DeleteMatching(context.Background(),
		consts.MessagesCollection, data.Eq(consts.FieldSenderID, "u1"))

	if res.Err != nil || res.Deleted != 1200 || store.Commits() != 3 {
		t.Fatalf("result = %+v commits = %d, want 1200 deletes in 3 commits", res, store.Commits())
	}
	if s := collector.Stats(); s.BatchCommits != 3 || s.DeletedDocs != 1200 {
		t.Errorf("collector = %+v", s)
	}
}

func TestDeleteMatchingMidLoopFailure(t *testing.T) {
	store := memory.New()
	seedMessages(t, store, "u1", 1200)

	commits := 0
	store.SetHook(func(op, collection string) error {
		if op != "commit" {
			return nil
		}
		commits++
		if commits == 2 {
			return data.NewError(data.CodeUnavailable, "commit", errors.New("backend unavailable"))
		}
		return nil
	})

	res := NewBatchDeleter(store).DeleteMatching(context.Background(),
		consts.MessagesCollection, data.Eq(consts.FieldSenderID, "u1"))

	if !errors.Is(res.Err, data.ErrUnavailable) {
		t.Fatalf("Err = %v, want unavailable", res.Err)
	}
	if res.Deleted != 500 || res.Batches != 1 {
		t.Errorf("Deleted = %d Batches = %d, want 500 and 1", res.Deleted, res.Batches)
	}
	if left := store.Count(consts.MessagesCollection); left != 700 {
		t.Errorf("%d messages left, want 700", left)
	}
	if commits != 2 {
		t.Errorf("attempted %d commits, want loop to stop after the failure", commits)
	}
}

func TestDeleteMatchingQueryFailure(t *testing.T) {
	store := memory.New()
	seedMessages(t, store, "u1", 10)
	store.SetHook(func(op, _ string) error {
		if op == "query" {
			return data.ErrPermissionDenied
		}
		return nil
	})

	res := NewBatchDeleter(store).DeleteMatching(context.Background(),
		consts.MessagesCollection, data.Eq(consts.FieldSenderID, "u1"))
	if !errors.Is(res.Err, data.ErrPermissionDenied) || res.Deleted != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestDeleteMatchingCanceled(t *testing.T) {
	store := memory.New()
	seedMessages(t, store, "u1", 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewBatchDeleter(store).DeleteMatching(ctx, consts.MessagesCollection, data.Eq(consts.FieldSenderID, "u1"))
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", res.Err)
	}
}

func TestWithBatchSize(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1},
		{-5, 1},
		{100, 100},
		{500, 500},
		{5000, data.MaxBatchSize},
	}
	for _, tt := range tests {
		if got := NewBatchDeleter(memory.New(), WithBatchSize(tt.in)).BatchSize(); got != tt.want {
			t.Errorf("WithBatchSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	store := memory.New()
	seedMessages(t, store, "u1", 250)
	res := NewBatchDeleter(store, WithBatchSize(100)).DeleteMatching(context.Background(),
		consts.MessagesCollection, data.Eq(consts.FieldSenderID, "u1"))
	if res.Deleted != 250 || res.Batches != 3 {
		t.Errorf("result = %+v, want 250 deletes in 3 batches", res)
	}
}

// laggingStore serves reads that do not ask for the primary from a replica
// that still holds the first page after it was deleted.
type laggingStore struct {
	*memory.Store
	stale        []data.Document
	replicaReads int
}

func (s *laggingStore) Query(ctx context.Context, collection string, filter data.Filter, limit int) ([]data.Document, error) {
	if data.ReadsPrimary(ctx) {
		return s.Store.Query(ctx, collection, filter, limit)
	}
	s.replicaReads++
	if s.stale == nil {
		docs, err := s.Store.Query(ctx, collection, filter, limit)
		s.stale = docs
		return docs, err
	}
	stale := s.stale
	s.stale = []data.Document{}
	if len(stale) > 0 {
		return stale, nil
	}
	return s.Store.Query(ctx, collection, filter, limit)
}

func TestDeleteMatchingReadsPrimary(t *testing.T) {
	store := &laggingStore{Store: memory.New()}
	seedMessages(t, store.Store, "u1", 700)
	collector := metrics.NewDataCollector()

	res := NewBatchDeleter(store, WithCollector(collector)).DeleteMatching(context.Background(),
		consts.MessagesCollection, data.Eq(consts.FieldSenderID, "u1"))

	if res.Err != nil || res.Deleted != 700 || res.Batches != 2 {
		t.Fatalf("result = %+v, want 700 deletes in 2 batches", res)
	}
	if store.replicaReads != 0 {
		t.Errorf("%d queries went to the replica", store.replicaReads)
	}
	if s := collector.Stats(); s.DeletedDocs != 700 {
		t.Errorf("collector counted %d deletes, want 700", s.DeletedDocs)
	}
}

// staleStore returns already deleted ids along with every page.
type staleStore struct {
	*memory.Store
}

func (s staleStore) Query(ctx context.Context, collection string, filter data.Filter, limit int) ([]data.Document, error) {
	docs, err := s.Store.Query(ctx, collection, filter, limit-1)
	if err != nil || len(docs) == 0 {
		return docs, err
	}
	return append(docs, data.Document{ID: "already-gone"}), nil
}

func TestDeleteMatchingCountsCommittedDeletes(t *testing.T) {
	store := staleStore{Store: memory.New()}
	seedMessages(t, store.Store, "u1", 10)

	res := NewBatchDeleter(store, WithBatchSize(4)).DeleteMatching(context.Background(),
		consts.MessagesCollection, data.Eq(consts.FieldSenderID, "u1"))

	if res.Err != nil || res.Deleted != 10 {
		t.Fatalf("result = %+v, want 10 deletes", res)
	}
	if left := store.Count(consts.MessagesCollection); left != 0 {
		t.Errorf("%d messages left", left)
	}
}
