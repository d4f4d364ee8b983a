package deletion

import (
	"context"
	"fmt"

	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/data/metrics"
	"github.com/studyhub/collab/logging/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/studyhub/collab/deletion"

// CollectionResult is the outcome of deleting from one collection.
type CollectionResult struct {
	Collection string
	Deleted    int
	Batches    int
	Err        error
}

// Option configures a BatchDeleter.
type Option func(*BatchDeleter)

// WithBatchSize sets the page and batch size, clamped to [1, data.MaxBatchSize].
func WithBatchSize(n int) Option {
	return func(d *BatchDeleter) {
		switch {
		case n < 1:
			d.batchSize = 1
		case n > data.MaxBatchSize:
			d.batchSize = data.MaxBatchSize
		default:
			d.batchSize = n
		}
	}
}

// WithCollector records every commit on c.
func WithCollector(c metrics.Collector) Option {
	return func(d *BatchDeleter) {
		d.collector = c
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(d *BatchDeleter) {
		d.tracer = t
	}
}

// BatchDeleter deletes every document matching a filter.
type BatchDeleter struct {
	store     data.DocumentStore
	batchSize int
	collector metrics.Collector
	tracer    trace.Tracer
}

// NewBatchDeleter returns a deleter over store.
func NewBatchDeleter(store data.DocumentStore, opts ...Option) *BatchDeleter {
	d := &BatchDeleter{
		store:     store,
		batchSize: data.MaxBatchSize,
		collector: metrics.NoOpCollector{},
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BatchSize returns the configured page and batch size.
func (d *BatchDeleter) BatchSize() int {
	return d.batchSize
}

// DeleteMatching deletes every document of collection matching filter.
// A failed query or commit stops this collection. Deletes already committed stay counted.
func (d *BatchDeleter) DeleteMatching(ctx context.Context, collection string, filter data.Filter) CollectionResult {
	ctx, span := d.tracer.Start(ctx, "deletion.DeleteMatching", trace.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("filter.field", filter.Field),
	))
	defer span.End()

	// each page must not return documents an earlier commit already removed
	ctx = data.WithPrimary(ctx)

	res := CollectionResult{Collection: collection}
	defer func() {
		span.SetAttributes(attribute.Int("deleted", res.Deleted), attribute.Int("batches", res.Batches))
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		docs, err := d.store.Query(ctx, collection, filter, d.batchSize)
		if err != nil {
			logger.Warnf(ctx, "deletion: query %s stopped after %d deletes: %v", collection, res.Deleted, err)
			res.Err = fmt.Errorf("query %s: %w", collection, err)
			return res
		}
		if len(docs) == 0 {
			return res
		}

		n, err := d.commit(ctx, collection, docs)
		res.Deleted += n
		if err != nil {
			logger.Warnf(ctx, "deletion: commit %s stopped after %d deletes: %v", collection, res.Deleted, err)
			res.Err = fmt.Errorf("commit %s: %w", collection, err)
			return res
		}
		res.Batches++

		if len(docs) < d.batchSize {
			return res
		}
	}
}

func (d *BatchDeleter) commit(ctx context.Context, collection string, docs []data.Document) (int, error) {
	batch := d.store.Batch()
	for _, doc := range docs {
		if err := batch.Delete(collection, doc.ID); err != nil {
			return 0, err
		}
	}
	n, err := batch.Commit(ctx)
	d.collector.BatchCommit(collection, n, err)
	return n, err
}
