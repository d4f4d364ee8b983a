// Package sqlite persists the offline queue in a local SQLite file so queued
// messages survive a restart.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/queue"
	"github.com/studyhub/collab/structs"
)

const schema = `
CREATE TABLE IF NOT EXISTS offline_messages (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id  TEXT NOT NULL UNIQUE,
	chat_id     TEXT NOT NULL,
	payload     TEXT NOT NULL,
	attempts    INTEGER NOT NULL DEFAULT 0,
	last_error  TEXT NOT NULL DEFAULT '',
	enqueued_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_offline_messages_order ON offline_messages (enqueued_at, seq);
CREATE INDEX IF NOT EXISTS idx_offline_messages_chat ON offline_messages (chat_id, enqueued_at, seq);`

const selectColumns = `SELECT seq, payload, attempts, last_error, enqueued_at FROM offline_messages`

// row is one offline_messages record.
type row struct {
	Seq        int64  `db:"seq"`
	Payload    string `db:"payload"`
	Attempts   int    `db:"attempts"`
	LastError  string `db:"last_error"`
	EnqueuedAt int64  `db:"enqueued_at"`
}

func (r row) entry() (queue.Entry, error) {
	var msg structs.Message
	if err := json.Unmarshal([]byte(r.Payload), &msg); err != nil {
		return queue.Entry{}, fmt.Errorf("decode message: %w", err)
	}
	return queue.Entry{
		Message:    msg,
		EnqueuedAt: time.Unix(0, r.EnqueuedAt).UTC(),
		Attempts:   r.Attempts,
		LastError:  r.LastError,
		Seq:        r.Seq,
	}, nil
}

// Store is a queue.Store backed by SQLite.
type Store struct {
	db *sqlx.DB
}

var _ queue.Store = (*Store)(nil)

// Open opens or creates the queue database at cfg.Path.
func Open(ctx context.Context, cfg *config.SQLite) (*Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: queue path is empty")
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", cfg.Path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open connection: %w", err)
	}
	// SQLite serializes writers; a single connection keeps Update transactions simple.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Put(ctx context.Context, e queue.Entry) (queue.Entry, error) {
	payload, err := json.Marshal(e.Message)
	if err != nil {
		return queue.Entry{}, fmt.Errorf("sqlite: encode message: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO offline_messages (message_id, chat_id, payload, attempts, last_error, enqueued_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(message_id) DO UPDATE SET
	chat_id = excluded.chat_id,
	payload = excluded.payload,
	attempts = excluded.attempts,
	last_error = excluded.last_error`,
		e.ID(), e.ChatID(), string(payload), e.Attempts, e.LastError, e.EnqueuedAt.UnixNano())
	if err != nil {
		return queue.Entry{}, fmt.Errorf("sqlite: put %s: %w", e.ID(), err)
	}
	return s.Get(ctx, e.ID())
}

func (s *Store) Get(ctx context.Context, id string) (queue.Entry, error) {
	e, err := getEntry(ctx, s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return queue.Entry{}, queue.ErrNotFound
	}
	if err != nil {
		return queue.Entry{}, fmt.Errorf("sqlite: get %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) Update(ctx context.Context, id string, fn func(*queue.Entry)) (queue.Entry, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return queue.Entry{}, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	e, err := getEntry(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return queue.Entry{}, queue.ErrNotFound
	}
	if err != nil {
		return queue.Entry{}, fmt.Errorf("sqlite: get %s: %w", id, err)
	}

	fn(&e)
	e.Message.ID = id
	payload, err := json.Marshal(e.Message)
	if err != nil {
		return queue.Entry{}, fmt.Errorf("sqlite: encode message: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE offline_messages SET chat_id = ?, payload = ?, attempts = ?, last_error = ? WHERE message_id = ?`,
		e.ChatID(), string(payload), e.Attempts, e.LastError, id)
	if err != nil {
		return queue.Entry{}, fmt.Errorf("sqlite: update %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return queue.Entry{}, fmt.Errorf("sqlite: commit: %w", err)
	}
	return e, nil
}

func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM offline_messages WHERE message_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: remove %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: remove %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) List(ctx context.Context) ([]queue.Entry, error) {
	return s.list(ctx, selectColumns+` ORDER BY enqueued_at, seq`)
}

func (s *Store) ListByChat(ctx context.Context, chatID string) ([]queue.Entry, error) {
	return s.list(ctx, selectColumns+` WHERE chat_id = ? ORDER BY enqueued_at, seq`, chatID)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]queue.Entry, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	out := make([]queue.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("sqlite: failed to close connection: %w", err)
	}
	return nil
}

func getEntry(ctx context.Context, q sqlx.QueryerContext, id string) (queue.Entry, error) {
	var r row
	if err := sqlx.GetContext(ctx, q, &r, selectColumns+` WHERE message_id = ?`, id); err != nil {
		return queue.Entry{}, err
	}
	return r.entry()
}
