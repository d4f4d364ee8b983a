package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/deletion"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishFollowUp(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, time.Second)
	job := deletion.Job{
		ID:          "job-1",
		UserID:      "u1",
		Collections: []string{"messages"},
		RequestedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := p.PublishFollowUp(context.Background(), job); err != nil {
		t.Fatalf("PublishFollowUp() error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	m := w.msgs[0]
	if string(m.Key) != "u1" || !m.Time.Equal(job.RequestedAt) {
		t.Errorf("message key=%q time=%v", m.Key, m.Time)
	}
	var got deletion.Job
	if err := json.Unmarshal(m.Value, &got); err != nil || got.ID != "job-1" {
		t.Errorf("payload = %s, %v", m.Value, err)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}

func TestPublishFollowUpError(t *testing.T) {
	p := newPublisher(&fakeWriter{err: errors.New("leader not available")}, 0)
	if err := p.PublishFollowUp(context.Background(), deletion.Job{ID: "job-1"}); err == nil {
		t.Error("PublishFollowUp() error = nil")
	}
}

func TestNewPublisherConfig(t *testing.T) {
	tests := []*config.Kafka{
		nil,
		{Topic: "t"},
		{Brokers: []string{"localhost:9092"}},
	}
	for _, cfg := range tests {
		if _, err := NewPublisher(cfg); err == nil {
			t.Errorf("NewPublisher(%+v) error = nil", cfg)
		}
	}
	p, err := NewPublisher(&config.Kafka{Brokers: []string{"localhost:9092"}, Topic: "t"})
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	p.Close()
}
