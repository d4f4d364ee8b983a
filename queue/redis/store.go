// Package redis keeps the offline queue in Redis so several processes of one
// client installation can share it.
//
// Each entry is a JSON string under prefix:entry:{id}. The sorted sets
// prefix:all and prefix:chat:{chatID} index entries by their sequence number.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/queue"
)

const maxTxRetries = 10

// Store is a queue.Store backed by Redis.
type Store struct {
	client *redis.Client
	prefix string
}

var _ queue.Store = (*Store)(nil)

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg *config.Redis) (*Store, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, fmt.Errorf("redis: address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.Db,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		DialTimeout:  cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}
	return New(client, cfg.Prefix), nil
}

// New wraps an existing client. Keys are namespaced under prefix.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "collab:offline"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) entryKey(id string) string { return s.prefix + ":entry:" + id }
func (s *Store) chatKey(chat string) string { return s.prefix + ":chat:" + chat }
func (s *Store) allKey() string { return s.prefix + ":all" }
func (s *Store) seqKey() string { return s.prefix + ":seq" }

func (s *Store) Put(ctx context.Context, e queue.Entry) (queue.Entry, error) {
	key := s.entryKey(e.ID())
	err := s.watch(ctx, func(tx *redis.Tx) error {
		old, err := readEntry(ctx, tx, key)
		switch {
		case err == nil:
			e.Seq = old.Seq
			e.EnqueuedAt = old.EnqueuedAt
		case errors.Is(err, queue.ErrNotFound):
			seq, err := tx.Incr(ctx, s.seqKey()).Result()
			if err != nil {
				return err
			}
			e.Seq = seq
		default:
			return err
		}
		return s.write(ctx, tx, key, old, e)
	}, key)
	if err != nil {
		return queue.Entry{}, fmt.Errorf("redis: put %s: %w", e.ID(), err)
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, id string) (queue.Entry, error) {
	e, err := readEntry(ctx, s.client, s.entryKey(id))
	if err != nil && !errors.Is(err, queue.ErrNotFound) {
		return queue.Entry{}, fmt.Errorf("redis: get %s: %w", id, err)
	}
	return e, err
}

func (s *Store) Update(ctx context.Context, id string, fn func(*queue.Entry)) (queue.Entry, error) {
	key := s.entryKey(id)
	var updated queue.Entry
	err := s.watch(ctx, func(tx *redis.Tx) error {
		old, err := readEntry(ctx, tx, key)
		if err != nil {
			return err
		}
		updated = old
		fn(&updated)
		updated.Message.ID = id
		updated.Seq = old.Seq
		return s.write(ctx, tx, key, old, updated)
	}, key)
	if errors.Is(err, queue.ErrNotFound) {
		return queue.Entry{}, err
	}
	if err != nil {
		return queue.Entry{}, fmt.Errorf("redis: update %s: %w", id, err)
	}
	return updated, nil
}

func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	key := s.entryKey(id)
	removed := false
	err := s.watch(ctx, func(tx *redis.Tx) error {
		old, err := readEntry(ctx, tx, key)
		if errors.Is(err, queue.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, s.allKey(), id)
			pipe.ZRem(ctx, s.chatKey(old.ChatID()), id)
			return nil
		})
		removed = err == nil
		return err
	}, key)
	if err != nil {
		return false, fmt.Errorf("redis: remove %s: %w", id, err)
	}
	return removed, nil
}

func (s *Store) List(ctx context.Context) ([]queue.Entry, error) {
	return s.list(ctx, s.allKey())
}

func (s *Store) ListByChat(ctx context.Context, chatID string) ([]queue.Entry, error) {
	return s.list(ctx, s.chatKey(chatID))
}

func (s *Store) list(ctx context.Context, index string) ([]queue.Entry, error) {
	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.entryKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list: %w", err)
	}

	out := make([]queue.Entry, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// removed between ZRANGE and MGET
			continue
		}
		var e queue.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("redis: decode entry: %w", err)
		}
		out = append(out, e)
	}
	queue.SortEntries(out)
	return out, nil
}

// Close closes the client.
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis: failed to close connection: %w", err)
	}
	return nil
}

// write stores e and moves its index entries if the chat changed. old is the
// zero Entry for a new message.
func (s *Store) write(ctx context.Context, tx *redis.Tx, key string, old, e queue.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, payload, 0)
		z := redis.Z{Score: float64(e.Seq), Member: e.ID()}
		pipe.ZAdd(ctx, s.allKey(), z)
		if old.ChatID() != "" && old.ChatID() != e.ChatID() {
			pipe.ZRem(ctx, s.chatKey(old.ChatID()), e.ID())
		}
		pipe.ZAdd(ctx, s.chatKey(e.ChatID()), z)
		return nil
	})
	return err
}

func (s *Store) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readEntry(ctx context.Context, c getter, key string) (queue.Entry, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return queue.Entry{}, queue.ErrNotFound
	}
	if err != nil {
		return queue.Entry{}, err
	}
	var e queue.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return queue.Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}
