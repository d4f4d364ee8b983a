package delivery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/queue"
	"github.com/studyhub/collab/structs"
	"github.com/studyhub/collab/validation"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func networkErr() error {
	return data.NewError(data.CodeNetwork, "set", nil)
}

func deniedErr() error {
	return data.NewError(data.CodePermissionDenied, "set", nil)
}

func testMessage(id, chat string) structs.Message {
	return structs.Message{
		ID:        id,
		ChatID:    chat,
		SenderID:  "u1",
		Text:      "hi",
		Timestamp: testNow,
		Status:    structs.MessageSending,
	}
}

func testValidator() *validation.Validator {
	return validation.New(validation.WithClock(func() time.Time { return testNow }))
}

// fakeTransport fails each message id with its scripted errors in order, then succeeds.
type fakeTransport struct {
	mu     sync.Mutex
	script map[string][]error
	calls  map[string]int
	sent   []string
	before func(msg structs.Message)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{script: make(map[string][]error), calls: make(map[string]int)}
}

func (f *fakeTransport) fail(id string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[id] = append(f.script[id], errs...)
}

func (f *fakeTransport) Send(_ context.Context, msg structs.Message) error {
	if f.before != nil {
		f.before(msg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[msg.ID]++
	if errs := f.script[msg.ID]; len(errs) > 0 {
		f.script[msg.ID] = errs[1:]
		return errs[0]
	}
	f.sent = append(f.sent, msg.ID)
	return nil
}

func (f *fakeTransport) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *fakeTransport) sentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// statusLog records every transition a listener sees.
type statusLog struct {
	mu   sync.Mutex
	seen map[string][]structs.MessageStatus
}

func newStatusLog() *statusLog {
	return &statusLog{seen: make(map[string][]structs.MessageStatus)}
}

func (l *statusLog) listen(msg structs.Message, _ structs.MessageStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[msg.ID] = append(l.seen[msg.ID], msg.Status)
}

func (l *statusLog) of(id string) []structs.MessageStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]structs.MessageStatus(nil), l.seen[id]...)
}

// delayLog is a sleep replacement that records the requested delays.
type delayLog struct {
	mu     sync.Mutex
	delays []time.Duration
	hook   func()
}

func (d *delayLog) sleep(ctx context.Context, delay time.Duration) error {
	d.mu.Lock()
	d.delays = append(d.delays, delay)
	hook := d.hook
	d.mu.Unlock()
	if hook != nil {
		hook()
	}
	return ctx.Err()
}

func (d *delayLog) got() []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Duration(nil), d.delays...)
}

func newTestQueue() *queue.Queue {
	return queue.New(queue.NewMemoryStore(), queue.WithClock(func() time.Time { return testNow }))
}

func queueLen(t *testing.T, q *queue.Queue) int {
	t.Helper()
	n, err := q.Len(context.Background())
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	return n
}
