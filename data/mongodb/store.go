// Package mongodb implements data.DocumentStore on MongoDB.
//
// Reads go to a replica chosen by the Manager's balancer unless the context is
// marked with data.WithPrimary. Writes go to the master.
// Both filter operators translate to a plain field match, which MongoDB applies to
// arrays as membership:
//
//	m, err := mongodb.NewManager(ctx, cfg.Data.MongoDB)
//	if err != nil {
//	    return err
//	}
//	store := mongodb.New(m, cfg.Data.MongoDB.Database)
package mongodb

import (
	"context"
	"fmt"

	"github.com/studyhub/collab/data"
	"github.com/studyhub/collab/data/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const driverName = "mongodb"

// Store is a MongoDB backed document store.
type Store struct {
	manager   *Manager
	database  string
	collector metrics.Collector
}

// Option configures a Store.
type Option func(*Store)

// WithCollector records every operation on c.
func WithCollector(c metrics.Collector) Option {
	return func(s *Store) {
		s.collector = c
	}
}

// New returns a store over the given database.
func New(m *Manager, database string, opts ...Option) *Store {
	s := &Store{manager: m, database: database, collector: metrics.NoOpCollector{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) readClient(ctx context.Context) *mongo.Client {
	if data.ReadsPrimary(ctx) {
		return s.manager.Master()
	}
	return s.manager.Slave()
}

func (s *Store) read(ctx context.Context, collection string) *mongo.Collection {
	return s.readClient(ctx).Database(s.database).Collection(collection)
}

func (s *Store) write(collection string) *mongo.Collection {
	return s.manager.Master().Database(s.database).Collection(collection)
}

func (s *Store) record(op string, err error) error {
	s.collector.StoreOperation(driverName, op, err)
	if err == nil {
		return nil
	}
	return classify(op, err)
}

// Query returns up to limit matching documents ordered by id.
func (s *Store) Query(ctx context.Context, collection string, filter data.Filter, limit int) ([]data.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.read(ctx, collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, s.record("find", err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, s.record("find", err)
	}

	docs := make([]data.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, toDocument(m))
	}
	return docs, s.record("find", nil)
}

// Get returns one document by id.
func (s *Store) Get(ctx context.Context, collection, id string) (*data.Document, error) {
	var m bson.M
	if err := s.read(ctx, collection).FindOne(ctx, idFilter(id)).Decode(&m); err != nil {
		return nil, s.record("find_one", err)
	}
	doc := toDocument(m)
	return &doc, s.record("find_one", nil)
}

// Set upserts a document under id.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	doc["_id"] = id

	_, err := s.write(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return s.record("replace_one", err)
}

// Delete removes one document, reporting not-found when nothing matched.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.write(collection).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return s.record("delete_one", err)
	}
	if res.DeletedCount == 0 {
		return s.record("delete_one", mongo.ErrNoDocuments)
	}
	return s.record("delete_one", nil)
}

// Batch starts a new bulk delete.
func (s *Store) Batch() data.WriteBatch {
	return &batch{store: s, models: make(map[string][]mongo.WriteModel)}
}

type batch struct {
	store  *Store
	order  []string
	models map[string][]mongo.WriteModel
	n      int
}

func (b *batch) Delete(collection, id string) error {
	if b.n >= data.MaxBatchSize {
		return data.ErrBatchFull
	}
	if _, ok := b.models[collection]; !ok {
		b.order = append(b.order, collection)
	}
	b.models[collection] = append(b.models[collection], mongo.NewDeleteOneModel().SetFilter(idFilter(id)))
	b.n++
	return nil
}

func (b *batch) Len() int {
	return b.n
}

// Commit runs one unordered bulk write per collection and sums the server's
// deleted counts.
func (b *batch) Commit(ctx context.Context) (int, error) {
	deleted := 0
	for _, collection := range b.order {
		models := b.models[collection]
		res, err := b.store.write(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
		if res != nil {
			deleted += int(res.DeletedCount)
		}
		if err != nil {
			return deleted, b.store.record("bulk_write", fmt.Errorf("%s: %w", collection, err))
		}
		b.store.record("bulk_write", nil)
		delete(b.models, collection)
	}
	b.order = nil
	b.n = 0
	return deleted, nil
}

func toBSON(f data.Filter) bson.M {
	if f.Field == "" {
		return bson.M{}
	}
	return bson.M{f.Field: f.Value}
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func toDocument(m bson.M) data.Document {
	doc := data.Document{Fields: make(map[string]any, len(m))}
	for k, v := range m {
		if k == "_id" {
			doc.ID = idString(v)
			continue
		}
		doc.Fields[k] = normalize(v)
	}
	return doc
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// normalize converts driver array types so callers see plain slices.
func normalize(v any) any {
	arr, ok := v.(primitive.A)
	if !ok {
		return v
	}
	out := make([]any, len(arr))
	for i, item := range arr {
		out[i] = normalize(item)
	}
	return out
}
