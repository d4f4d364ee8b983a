package data

import (
	"context"
	"errors"
)

// MaxBatchSize is the most write operations one batch commit accepts.
const MaxBatchSize = 500

// ErrBatchFull is returned when a batch already holds MaxBatchSize operations.
var ErrBatchFull = errors.New("batch already holds the maximum number of operations")

// Op is a filter comparison.
type Op string

const (
	// OpEqual matches documents whose field equals the value.
	OpEqual Op = "=="
	// OpArrayContains matches documents whose array field contains the value.
	OpArrayContains Op = "array-contains"
)

// Filter selects documents of a collection.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq returns an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// ArrayContains returns an array membership filter.
func ArrayContains(field string, value any) Filter {
	return Filter{Field: field, Op: OpArrayContains, Value: value}
}

// Document is one stored document.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is the remote document database the core writes through.
// Every method may fail with an *Error carrying a classifiable Code.
type DocumentStore interface {
	// Query returns up to limit documents of collection matching filter.
	Query(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Batch starts a new write batch bounded to MaxBatchSize operations.
	Batch() WriteBatch
}

// WriteBatch groups delete operations into one commit.
type WriteBatch interface {
	// Delete adds a delete operation, failing with ErrBatchFull past MaxBatchSize.
	Delete(collection, id string) error
	Len() int
	// Commit applies the batch and returns how many documents it removed.
	// Ids that no longer exist are not counted.
	Commit(ctx context.Context) (int, error)
}

type primaryKey struct{}

// WithPrimary asks stores with read replicas to serve reads made with ctx from
// the primary, so a read sees every write committed before it.
func WithPrimary(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryKey{}, true)
}

// ReadsPrimary reports whether ctx was marked by WithPrimary.
func ReadsPrimary(ctx context.Context) bool {
	v, _ := ctx.Value(primaryKey{}).(bool)
	return v
}
