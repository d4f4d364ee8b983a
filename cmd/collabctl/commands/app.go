package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/data/memory"
	"github.com/studyhub/collab/data/metrics"
	"github.com/studyhub/collab/data/mongodb"
	"github.com/studyhub/collab/deletion"
	"github.com/studyhub/collab/logging/logger"
	"github.com/studyhub/collab/messaging/kafka"
	"github.com/studyhub/collab/messaging/rabbitmq"
	"github.com/studyhub/collab/observes"
	"github.com/studyhub/collab/queue"
	redisqueue "github.com/studyhub/collab/queue/redis"
	sqlitequeue "github.com/studyhub/collab/queue/sqlite"
	"github.com/studyhub/collab/validation"
	"github.com/studyhub/collab/version"
)

// app holds what the subcommands share: configuration and lazily opened backends.
type app struct {
	confPath    string
	storeDriver string
	queueDriver string

	cfg       *config.Config
	collector *metrics.DataCollector
	closers   []func(context.Context) error
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.LoadConfig(a.confPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.storeDriver != "" {
		cfg.Data.Driver = a.storeDriver
	}
	if a.queueDriver != "" {
		cfg.Queue.Driver = a.queueDriver
	}
	a.cfg = cfg
	a.collector = metrics.NewDataCollector()

	info := version.GetVersionInfo()
	logger.SetVersion(info.Version)
	cleanup, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	a.onClose(func(context.Context) error {
		cleanup()
		return nil
	})

	if s := cfg.Observes.Sentry; s != nil && s.Release == "" {
		s.Release = info.Release(cfg.AppName)
	}
	if err := observes.NewSentry(cfg.AppName, cfg.Observes.Sentry); err != nil {
		logger.Warnf(ctx, "sentry disabled: %v", err)
	}
	a.onClose(func(context.Context) error {
		observes.FlushSentry(2 * time.Second)
		return nil
	})

	shutdown, err := observes.NewTracer(ctx, cfg.Observes.Tracer)
	if err != nil {
		logger.Warnf(ctx, "tracing disabled: %v", err)
	} else {
		a.onClose(shutdown)
	}
	return nil
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) validator() *validation.Validator {
	opts := []validation.Option{}
	if v := a.cfg.Validation; v != nil {
		opts = append(opts, validation.WithFreshnessWindow(v.FreshnessWindow), validation.WithMediaPrefixes(v.MediaPrefixes...))
	}
	return validation.New(opts...)
}

func (a *app) documentStore(ctx context.Context) (data.DocumentStore, error) {
	switch a.cfg.Data.Driver {
	case "", "memory":
		return memory.New(), nil
	case "mongodb", "mongo":
		m, err := mongodb.NewManager(ctx, a.cfg.Data.MongoDB)
		if err != nil {
			return nil, err
		}
		a.onClose(m.Close)
		return mongodb.New(m, a.cfg.Data.MongoDB.Database, mongodb.WithCollector(a.collector)), nil
	default:
		return nil, fmt.Errorf("unknown data driver %q", a.cfg.Data.Driver)
	}
}

func (a *app) offlineQueue(ctx context.Context) (*queue.Queue, error) {
	var (
		store queue.Store
		err   error
	)
	switch a.cfg.Queue.Driver {
	case "", "memory":
		store = queue.NewMemoryStore()
	case "sqlite":
		store, err = sqlitequeue.Open(ctx, a.cfg.Queue.SQLite)
	case "redis":
		store, err = redisqueue.Open(ctx, a.cfg.Queue.Redis)
	default:
		err = fmt.Errorf("unknown queue driver %q", a.cfg.Queue.Driver)
	}
	if err != nil {
		return nil, err
	}
	q := queue.New(store, queue.WithCollector(a.collector))
	a.onClose(func(context.Context) error { return q.Close() })
	return q, nil
}

// followUp connects the erasure follow-up publisher, or returns nil when it is
// disabled or the broker is unreachable.
func (a *app) followUp(ctx context.Context) deletion.FollowUp {
	mc := a.cfg.Messaging
	if a.cfg.Deletion == nil || !a.cfg.Deletion.FollowUp || mc == nil {
		return nil
	}

	switch mc.Driver {
	case "kafka":
		p, err := kafka.NewPublisher(mc.Kafka)
		if err != nil {
			logger.Warnf(ctx, "erasure follow-ups disabled: %v", err)
			return nil
		}
		a.onClose(func(context.Context) error { return p.Close() })
		return p
	case "", "rabbitmq":
		if mc.RabbitMQ == nil || mc.RabbitMQ.URL == "" {
			return nil
		}
		conn, err := rabbitmq.Dial(mc.RabbitMQ)
		if err != nil {
			logger.Warnf(ctx, "erasure follow-ups disabled: %v", err)
			return nil
		}
		a.onClose(func(context.Context) error { return conn.Close() })
		return rabbitmq.NewPublisher(conn, mc.RabbitMQ)
	default:
		logger.Warnf(ctx, "unknown messaging driver %q, erasure follow-ups disabled", mc.Driver)
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
