package delivery

import (
	"context"
	"testing"

	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/consts"
	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/data/memory"
	"github.com/studyhub/collab/data/metrics"
)

func TestStoreTransport(t *testing.T) {
	store := memory.New()
	tr := NewStoreTransport(store)
	msg := testMessage("m1", "c1")
	msg.ImageURL = "https://firebasestorage.googleapis.com/img.png"

	ctx := context.Background()
	if err := tr.Send(ctx, msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := tr.Send(ctx, msg); err != nil {
		t.Fatalf("second Send() error = %v", err)
	}
	if n := store.Count(consts.MessagesCollection); n != 1 {
		t.Errorf("stored %d documents, want 1", n)
	}
	doc, err := store.Get(ctx, consts.MessagesCollection, "m1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.Fields["status"] != "SENT" || doc.Fields["imageUrl"] != msg.ImageURL || doc.Fields[consts.FieldChatID] != "c1" {
		t.Errorf("fields = %v", doc.Fields)
	}
	if _, ok := doc.Fields["audioUrl"]; ok {
		t.Error("empty attachment written")
	}
}

func TestStoreTransportClassifiesFailures(t *testing.T) {
	store := memory.New()
	store.SetHook(func(op, _ string) error {
		if op == "set" {
			return data.NewError(data.CodePermissionDenied, op, nil)
		}
		return nil
	})
	err := NewStoreTransport(store).Send(context.Background(), testMessage("m1", "c1"))
	if Classify(err) != OutcomePermanent {
		t.Errorf("Classify(%v) = %v, want permanent", err, Classify(err))
	}
}

func TestSideChannelSwallowsFailures(t *testing.T) {
	store := memory.New()
	store.SetHook(func(op, _ string) error {
		return data.NewError(data.CodeUnavailable, op, nil)
	})
	c := metrics.NewDataCollector()
	sc := NewSideChannel(store, &config.Delivery{TypingConcurrency: 2})
	sc.SetCollector(c)

	ctx := context.Background()
	sc.MarkRead(ctx, "c1", "m1", "u2")
	sc.SetTyping(ctx, "c1", "u2", true)

	if got := c.Stats().StoreErrors; got != 2 {
		t.Errorf("StoreErrors = %d, want 2", got)
	}
}

func TestSideChannelWrites(t *testing.T) {
	store := memory.New()
	sc := NewSideChannel(store, &config.Delivery{TypingConcurrency: 1})
	ctx := context.Background()

	sc.MarkRead(ctx, "c1", "m1", "u2")
	if n := store.Count(consts.ReceiptsCollection); n != 1 {
		t.Errorf("receipts = %d, want 1", n)
	}

	if !sc.limiter.TryAcquire() {
		t.Fatal("limiter unexpectedly saturated")
	}
	sc.SetTyping(ctx, "c1", "u2", true)
	if n := store.Count(consts.TypingCollection); n != 0 {
		t.Errorf("typing update written while saturated: %d", n)
	}
	sc.limiter.Release()

	sc.SetTyping(ctx, "c1", "u2", true)
	if n := store.Count(consts.TypingCollection); n != 1 {
		t.Errorf("typing docs = %d, want 1", n)
	}
}

func TestSideChannelTypingLimitFromConfig(t *testing.T) {
	tests := []struct {
		cfg  *config.Delivery
		want int32
	}{
		{nil, 8},
		{&config.Delivery{}, 8},
		{&config.Delivery{TypingConcurrency: 3}, 3},
	}
	for _, tt := range tests {
		sc := NewSideChannel(memory.New(), tt.cfg)
		if got := sc.limiter.Available(); got != tt.want {
			t.Errorf("NewSideChannel(%+v) limit = %d, want %d", tt.cfg, got, tt.want)
		}
	}
}
