package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/studyhub/collab/concurrency/worker"
	"github.com/studyhub/collab/connectivity"
	"github.com/studyhub/collab/ctxutil"
	"github.com/studyhub/collab/logging/logger"
	"github.com/studyhub/collab/queue"
	"github.com/studyhub/collab/structs"
)

var (
	// ErrNotQueued is returned by Retry for a message that is not in the queue.
	ErrNotQueued = errors.New("message is not queued")
	// ErrInFlight is returned by Retry while the message is being replayed.
	ErrInFlight = errors.New("message delivery already in progress")
)

// ReplayResult summarizes one Replay call.
type ReplayResult struct {
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
	// Deferred counts entries left queued, attempts untouched, because the
	// circuit breaker was open.
	Deferred int `json:"deferred"`
	Passes   int `json:"passes"`
	// Coalesced is set when another replay was running and absorbed this request.
	Coalesced bool `json:"coalesced"`
}

func (r *ReplayResult) add(o ReplayResult) {
	r.Sent += o.Sent
	r.Failed += o.Failed
	r.Removed += o.Removed
	r.Deferred += o.Deferred
	r.Passes += o.Passes
}

// Replayer resends queued messages.
type Replayer struct {
	transport Transport
	queue     *queue.Queue
	opts      *options
	pool      *worker.Pool
	ownsPool  bool

	mu      sync.Mutex
	running bool
	rerun   bool

	inflight sync.Map
}

// NewReplayer creates a replayer draining q through t. Without WithPool it
// starts its own worker pool, released by Close.
func NewReplayer(t Transport, q *queue.Queue, opts ...Option) *Replayer {
	o := newOptions(opts)
	r := &Replayer{transport: t, queue: q, opts: o, pool: o.pool}
	if r.pool == nil {
		r.pool = worker.NewPool(&worker.Config{MaxWorkers: o.workers, QueueSize: 256})
		r.pool.Start()
		r.ownsPool = true
	}
	return r
}

// Close stops the owned worker pool.
func (r *Replayer) Close(ctx context.Context) {
	if r.ownsPool {
		r.pool.Stop(ctx)
	}
}

// Replay delivers every queued message. Chats are replayed in parallel, the
// messages of one chat strictly in enqueue order.
//
// A call made while a replay is running returns at once with Coalesced set; the
// running replay makes one more pass when it finishes so the request is not lost.
func (r *Replayer) Replay(ctx context.Context) (ReplayResult, error) {
	r.mu.Lock()
	if r.running {
		r.rerun = true
		r.mu.Unlock()
		return ReplayResult{Coalesced: true}, nil
	}
	r.running = true
	r.mu.Unlock()

	var (
		total ReplayResult
		errs  []error
	)
	for {
		res, err := r.pass(ctx)
		total.add(res)
		if err != nil {
			errs = append(errs, err)
		}

		r.mu.Lock()
		again := r.rerun && ctx.Err() == nil
		r.rerun = false
		if !again {
			r.running = false
		}
		r.mu.Unlock()
		if !again {
			break
		}
	}

	if n, err := r.queue.Len(ctx); err == nil {
		total.Remaining = n
	}
	return total, errors.Join(errs...)
}

func (r *Replayer) pass(ctx context.Context) (ReplayResult, error) {
	ctx, span := r.opts.tracer.Start(ctx, "delivery.Replay")
	defer span.End()

	entries, err := r.queue.Pending(ctx)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("list queue: %w", err)
	}

	var (
		order  []string
		byChat = make(map[string][]queue.Entry)
	)
	for _, e := range entries {
		if _, ok := byChat[e.ChatID()]; !ok {
			order = append(order, e.ChatID())
		}
		byChat[e.ChatID()] = append(byChat[e.ChatID()], e)
	}
	span.SetAttributes(attribute.Int("queue.entries", len(entries)), attribute.Int("queue.chats", len(order)))

	var (
		mu  sync.Mutex
		res = ReplayResult{Passes: 1}
	)
	tasks := make([]worker.Task, 0, len(order))
	for _, chat := range order {
		chatEntries := byChat[chat]
		tasks = append(tasks, func(ctx context.Context) error {
			ctx = ctxutil.SetChatID(ctx, chat)
			for i, e := range chatEntries {
				out, err := r.deliver(ctx, e)
				mu.Lock()
				switch out {
				case replaySent:
					res.Sent++
				case replayFailed:
					res.Failed++
				case replayRemoved:
					res.Removed++
				case replayDeferred:
					// later messages of the chat wait too, keeping enqueue order
					res.Deferred += len(chatEntries) - i
				}
				mu.Unlock()
				if err != nil {
					return fmt.Errorf("chat %s: %w", chat, err)
				}
				if out == replayDeferred {
					return nil
				}
			}
			return nil
		})
	}
	err = r.pool.RunAll(ctx, tasks)
	return res, err
}

type replayOutcome int

const (
	replayPending replayOutcome = iota
	replaySent
	replayFailed
	replayRemoved
	replayDeferred
)

// deliver retries one entry until it is sent, fails permanently, runs out of
// attempts or disappears from the queue. An open circuit breaker defers the
// entry without spending an attempt. An error means ctx ended and the entry
// stays queued.
func (r *Replayer) deliver(ctx context.Context, e queue.Entry) (replayOutcome, error) {
	id := e.ID()
	if _, busy := r.inflight.LoadOrStore(id, struct{}{}); busy {
		return replayPending, nil
	}
	defer r.inflight.Delete(id)

	ctx, span := r.opts.tracer.Start(ctx, "delivery.deliver", trace.WithAttributes(attribute.String("message.id", id)))
	defer span.End()

	msg := e.Message
	attempts := e.Attempts
	for {
		if attempts < r.opts.maxRetries && r.opts.breaker.State() == gobreaker.StateOpen {
			logger.Debugf(ctx, "queued message %s deferred, circuit open", id)
			return replayDeferred, nil
		}
		if attempts > 0 && attempts < r.opts.maxRetries {
			if err := r.opts.sleep(ctx, r.opts.backoff.Delay(attempts)); err != nil {
				return replayPending, err
			}
		}
		queued, err := r.queue.Contains(ctx, id)
		if err != nil {
			return replayPending, err
		}
		if !queued {
			// delivered by someone else
			return replayRemoved, nil
		}
		if attempts >= r.opts.maxRetries {
			r.exhaust(ctx, &msg, attempts)
			return replayFailed, nil
		}

		out, sendErr := r.send(ctx, &msg)
		switch {
		case out == OutcomeSent:
			r.drop(ctx, id)
			return replaySent, nil
		case out == OutcomePermanent:
			logger.Warnf(ctx, "queued message %s failed permanently: %v", id, sendErr)
			r.drop(ctx, id)
			return replayFailed, nil
		case breakerRejected(sendErr):
			logger.Debugf(ctx, "queued message %s deferred: %v", id, sendErr)
			return replayDeferred, nil
		}

		qctx, cancel := r.opts.bookkeeping(ctx)
		updated, err := r.queue.RecordAttempt(qctx, id, sendErr)
		cancel()
		if errors.Is(err, queue.ErrNotFound) {
			return replayRemoved, nil
		}
		if err != nil {
			return replayPending, fmt.Errorf("record attempt %s: %w", id, err)
		}
		attempts = updated.Attempts
		logger.Debugf(ctx, "queued message %s attempt %d failed: %v", id, attempts, sendErr)
		if ctx.Err() != nil {
			return replayPending, ctx.Err()
		}
	}
}

// Retry makes one immediate delivery attempt for a queued message, without
// backoff or an attempt limit.
func (r *Replayer) Retry(ctx context.Context, id string) (structs.Message, error) {
	e, err := r.queue.Get(ctx, id)
	if errors.Is(err, queue.ErrNotFound) {
		return structs.Message{}, fmt.Errorf("%w: %s", ErrNotQueued, id)
	}
	if err != nil {
		return structs.Message{}, err
	}
	if _, busy := r.inflight.LoadOrStore(id, struct{}{}); busy {
		return e.Message, fmt.Errorf("%w: %s", ErrInFlight, id)
	}
	defer r.inflight.Delete(id)

	ctx = ctxutil.SetChatID(ctx, e.ChatID())
	msg := e.Message
	out, sendErr := r.send(ctx, &msg)
	switch out {
	case OutcomeSent:
		r.drop(ctx, id)
		return msg, nil
	case OutcomePermanent:
		r.drop(ctx, id)
		return msg, fmt.Errorf("retry %s: %w", id, sendErr)
	}
	if breakerRejected(sendErr) {
		return msg, fmt.Errorf("retry %s: %w", id, sendErr)
	}

	qctx, cancel := r.opts.bookkeeping(ctx)
	defer cancel()
	if _, err := r.queue.RecordAttempt(qctx, id, sendErr); err != nil && !errors.Is(err, queue.ErrNotFound) {
		logger.Warnf(ctx, "failed to record attempt for %s: %v", id, err)
	}
	return msg, fmt.Errorf("retry %s: %w", id, sendErr)
}

// Watch replays the queue now if online and again on every offline to online
// transition, until ctx ends or src closes the subscription. When the circuit
// breaker deferred messages, the replay repeats once the breaker may close.
func (r *Replayer) Watch(ctx context.Context, src connectivity.Source) error {
	ch, cancel := src.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()

	trigger := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				res, err := r.Replay(ctx)
				if err != nil {
					logger.Warnf(ctx, "replay stopped: %v", err)
					return
				}
				if res.Coalesced {
					return
				}
				logger.Infof(ctx, "replay done: sent=%d failed=%d removed=%d deferred=%d remaining=%d",
					res.Sent, res.Failed, res.Removed, res.Deferred, res.Remaining)
				if res.Deferred == 0 {
					return
				}
				if err := r.opts.sleep(ctx, r.opts.reopen); err != nil {
					return
				}
			}
		}()
	}

	if src.Online() {
		trigger()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case online, ok := <-ch:
			if !ok {
				return nil
			}
			if online {
				trigger()
			}
		}
	}
}

// send moves msg through SENDING and applies the classified outcome.
func (r *Replayer) send(ctx context.Context, msg *structs.Message) (Outcome, error) {
	if err := setStatus(msg, structs.MessageSending, r.opts.listeners); err != nil {
		return OutcomePermanent, err
	}
	out, err := r.opts.attempt(ctx, r.transport, *msg)
	if serr := setStatus(msg, out.Status(), r.opts.listeners); serr != nil {
		return OutcomePermanent, serr
	}
	return out, err
}

// exhaust marks a message that used all its attempts as permanently failed.
func (r *Replayer) exhaust(ctx context.Context, msg *structs.Message, attempts int) {
	logger.Warnf(ctx, "queued message %s gave up after %d attempts", msg.ID, attempts)
	msg.Status = structs.MessageFailedRetryable
	if err := setStatus(msg, structs.MessageFailedPermanent, r.opts.listeners); err != nil {
		logger.Errorf(ctx, "mark %s permanent: %v", msg.ID, err)
	}
	r.drop(ctx, msg.ID)
}

func (r *Replayer) drop(ctx context.Context, id string) {
	qctx, cancel := r.opts.bookkeeping(ctx)
	defer cancel()
	if _, err := r.queue.Remove(qctx, id); err != nil {
		logger.Errorf(ctx, "failed to remove %s from queue: %v", id, err)
	}
}
