// Package sqlkv is a kv.Backend over a single SQL table, on PostgreSQL or SQLite.
package sqlkv

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	_ "modernc.org/sqlite"

	"github.com/trezcool/schoolportal/storage/kv"
)

// Table is the table holding the values. On PostgreSQL it is created by the goose migrations.
const Table = "kv_entries"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NULL
)`

type entryRow struct {
	Key       string    `db:"key"`
	Size      int       `db:"size"`
	UpdatedAt null.Time `db:"updated_at"`
}

type Backend struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ kv.Backend = (*Backend)(nil)

// New wraps an open database whose kv_entries table exists.
func New(db *sqlx.DB) *Backend {
	return &Backend{db: db, now: time.Now}
}

// OpenSQLite opens (or creates) the SQLite database at dsn and its table.
func OpenSQLite(ctx context.Context, dsn string) (*Backend, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite")
	}
	// one connection: keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging sqlite")
	}
	if _, err = db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating kv table")
	}
	return New(db), nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	q := b.db.Rebind("SELECT value FROM kv_entries WHERE key = ?")
	if err := b.db.GetContext(ctx, &value, q, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, kv.ErrNotFound
		}
		return nil, errors.Wrap(err, "selecting value")
	}
	return []byte(value), nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	q := b.db.Rebind(`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	_, err := b.db.ExecContext(ctx, q, key, string(value), null.TimeFrom(b.now().UTC()))
	return errors.Wrap(err, "upserting value")
}

func (b *Backend) List(ctx context.Context) ([]kv.Entry, error) {
	var rows []entryRow
	q := "SELECT key, length(value) AS size, updated_at FROM kv_entries ORDER BY key"
	if err := b.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting entries")
	}
	entries := make([]kv.Entry, len(rows))
	for i, r := range rows {
		entries[i] = kv.Entry{Key: r.Key, Size: r.Size, UpdatedAt: r.UpdatedAt.Time}
	}
	return entries, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}
