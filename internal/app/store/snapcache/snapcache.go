// internal/app/store/snapcache/snapcache.go
package snapcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/folio/internal/app/system/docstore"
	"go.mongodb.org/mongo-driver/bson"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key      TEXT PRIMARY KEY,
	docs     BLOB NOT NULL,
	saved_at INTEGER NOT NULL
)`

// Store keeps the last server snapshot of each subscription in a local
// SQLite file. It implements docstore.Cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
// Use ":memory:" for a throwaway cache.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}
	// One writer; also keeps ":memory:" to a single shared database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type entry struct {
	Docs []bson.Raw `bson:"docs"`
}

// Load returns the cached documents for key. ok is false when nothing has
// been saved for key.
func (s *Store) Load(ctx context.Context, key string) ([]docstore.Document, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT docs FROM snapshots WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %q: %w", key, err)
	}

	var e entry
	if err := bson.Unmarshal(blob, &e); err != nil {
		return nil, false, fmt.Errorf("decode snapshot %q: %w", key, err)
	}
	docs := make([]docstore.Document, 0, len(e.Docs))
	for _, raw := range e.Docs {
		id, _ := raw.Lookup("_id").StringValueOK()
		docs = append(docs, docstore.Document{ID: id, Raw: raw})
	}
	return docs, true, nil
}

// Save replaces the cached documents for key.
func (s *Store) Save(ctx context.Context, key string, docs []docstore.Document) error {
	e := entry{Docs: make([]bson.Raw, 0, len(docs))}
	for _, d := range docs {
		e.Docs = append(e.Docs, d.Raw)
	}
	blob, err := bson.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, docs, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET docs = excluded.docs, saved_at = excluded.saved_at`,
		key, blob, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

// SavedAt reports when key was last saved. ok is false if it never was.
func (s *Store) SavedAt(ctx context.Context, key string) (t time.Time, ok bool, err error) {
	var unix int64
	err = s.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshots WHERE key = ?`, key).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return time.Unix(unix, 0), true, nil
}

// Clear removes every cached snapshot.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("clear snapshot cache: %w", err)
	}
	return nil
}
