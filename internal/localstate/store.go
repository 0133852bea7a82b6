// Package localstate provides the SDK's durable local key-value state,
// backed by a single-table SQLite database. It plays the role browser
// local storage plays for the web client: a small blob per key, read at
// session start, overwritten on every mutation.
package localstate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/paperleaf/storefront-go/apperr"
)

// entry is one stored blob.
type entry struct {
	bun.BaseModel `bun:"table:local_state"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// Store is the durable local state database.
type Store struct {
	db *bun.DB
}

// Open creates or opens the state database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, apperr.Validation("localstate: path is required")
	}

	sqldb, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, apperr.Storage("localstate: cannot open database", err)
	}
	// SQLite handles one writer at a time; a larger pool only produces
	// SQLITE_BUSY churn.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*entry)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return apperr.Storage("localstate: cannot create table", err)
	}
	return nil
}

// Get returns the blob stored under key, or nil when the key was never
// written.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var e entry
	err := s.db.NewSelect().
		Model(&e).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage("localstate: read failed", err)
	}
	return e.Value, nil
}

// Put overwrites the blob stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	e := entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(&e).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return apperr.Storage("localstate: write failed", err)
	}
	return nil
}

// Delete removes the blob stored under key; absent keys are a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*entry)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return apperr.Storage("localstate: delete failed", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Slot scopes the store to a single key, matching the cart.Storage
// contract.
type Slot struct {
	store *Store
	key   string
}

// Slot returns a single-key view of the store.
func (s *Store) Slot(key string) *Slot {
	return &Slot{store: s, key: key}
}

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	return s.store.Get(ctx, s.key)
}

func (s *Slot) Save(ctx context.Context, data []byte) error {
	return s.store.Put(ctx, s.key, data)
}
