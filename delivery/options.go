package delivery

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/studyhub/collab/concurrency/worker"
	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/ctxutil"
	"github.com/studyhub/collab/data/metrics"
	"github.com/studyhub/collab/structs"
	"github.com/studyhub/collab/validation"
)

const tracerName = "github.com/studyhub/collab/delivery"

// DefaultMaxRetries is how many failed attempts a queued message gets before it
// is marked FAILED_PERMANENT.
const DefaultMaxRetries = 5

// Option configures a Sender or Replayer.
type Option func(*options)

type options struct {
	validator  *validation.Validator
	listeners  []StatusListener
	collector  metrics.Collector
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
	reopen     time.Duration
	bookkeep   time.Duration
	backoff    Backoff
	maxRetries int
	workers    int
	pool       *worker.Pool
	sleep      func(ctx context.Context, d time.Duration) error
}

func newOptions(opts []Option) *options {
	o := &options{
		validator:  validation.Default(),
		collector:  metrics.NoOpCollector{},
		tracer:     otel.Tracer(tracerName),
		backoff:    DefaultBackoff,
		maxRetries: DefaultMaxRetries,
		reopen:     defaultBreaker.Timeout,
		workers:    4,
		sleep:      sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.breaker == nil {
		o.breaker = NewBreaker("delivery", nil)
	}
	return o
}

// WithConfig applies the delivery section of the configuration.
func WithConfig(cfg *config.Delivery) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		if cfg.MaxRetries > 0 {
			o.maxRetries = cfg.MaxRetries
		}
		if cfg.BackoffBase > 0 {
			o.backoff = Backoff{Base: cfg.BackoffBase, Max: cfg.BackoffMax}
		}
		if cfg.Workers > 0 {
			o.workers = cfg.Workers
		}
		if cfg.BookkeepingTimeout > 0 {
			o.bookkeep = cfg.BookkeepingTimeout
		}
		if cfg.Breaker != nil {
			o.breaker = NewBreaker("delivery", cfg.Breaker)
			if cfg.Breaker.Timeout > 0 {
				o.reopen = cfg.Breaker.Timeout
			}
		}
	}
}

// WithValidator sets the validator run before a send.
func WithValidator(v *validation.Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithStatusListener adds a listener for status transitions.
func WithStatusListener(l StatusListener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

// WithCollector records send attempts on c.
func WithCollector(c metrics.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithBreaker shares a circuit breaker, typically between a Sender and a Replayer.
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(o *options) {
		o.breaker = cb
	}
}

// WithBackoff sets the delay schedule between replay attempts.
func WithBackoff(b Backoff) Option {
	return func(o *options) {
		o.backoff = b
	}
}

// WithMaxRetries sets how many failed attempts a queued message gets.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

// WithPool runs replays on p instead of a pool owned by the Replayer.
func WithPool(p *worker.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithSleep replaces the backoff wait.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) {
		o.sleep = fn
	}
}

var defaultBreaker = config.Breaker{MaxRequests: 1, Interval: time.Minute, Timeout: 30 * time.Second, FailureThreshold: 5}

// NewBreaker creates the circuit breaker guarding the transport. Permanent
// failures do not count against it.
func NewBreaker(name string, cfg *config.Breaker) *gobreaker.CircuitBreaker {
	if cfg == nil {
		cfg = &defaultBreaker
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || Classify(err) == OutcomePermanent
		},
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// bookkeeping bounds the queue write that records a send outcome. It is not
// canceled with ctx, so a send interrupted by the caller still lands in the queue.
func (o *options) bookkeeping(ctx context.Context) (context.Context, context.CancelFunc) {
	return ctxutil.Bookkeeping(ctx, o.bookkeep)
}

// attempt runs one transport call through the breaker and classifies it.
func (o *options) attempt(ctx context.Context, t Transport, msg structs.Message) (Outcome, error) {
	ctx, span := o.tracer.Start(ctx, "delivery.attempt", trace.WithAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("chat.id", msg.ChatID),
	))
	defer span.End()

	_, err := o.breaker.Execute(func() (any, error) {
		return nil, t.Send(ctx, msg)
	})
	out := Classify(err)
	o.collector.SendAttempt(out.String())
	span.SetAttributes(attribute.String("delivery.outcome", out.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}
