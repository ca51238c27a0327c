// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

// Package sqlite implements the durable, single-process embedded backend.
// Records and their serialized vectors live in one SQLite file; cosine
// similarity is computed in-process so scoring is identical to the
// in-memory backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vecgate-dev/vecgate/internal/store"
	"github.com/vecgate-dev/vecgate/internal/vector"
)

func init() {
	sqlite_vec.Auto()
}

// defaultSlot names the embedding slot a record's vector is stored under.
// The embeddings table is keyed by (record_id, slot) so additional named
// slots, such as a secondary-language embedding, fit the same schema.
const defaultSlot = "primary"

const dimsMetaKey = "dimensions"

// Compile-time interface check.
var _ store.Backend = (*Store)(nil)

// Store is the embedded-file backend. The mutex serializes writers; WAL
// mode lets readers run concurrently without observing partial batches.
type Store struct {
	db   *sql.DB
	path string

	mu   sync.RWMutex
	dims int
}

// New opens (or creates) the database at path, creating parent directories
// as needed. dims fixes the dimensionality up front when > 0; it must agree
// with what a pre-existing file established.
func New(path string, dims int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating vector tables: %w", err)
	}

	established, err := loadDims(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	switch {
	case established == 0 && dims > 0:
		if err := saveDims(db, dims); err != nil {
			_ = db.Close()
			return nil, err
		}
		established = dims
	case established > 0 && dims > 0 && established != dims:
		_ = db.Close()
		return nil, fmt.Errorf("%w: store at %s holds %d-dimensional vectors, configured for %d",
			store.ErrDimensionMismatch, path, established, dims)
	}

	return &Store{db: db, path: path, dims: established}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS embeddings (
	record_id TEXT NOT NULL,
	slot      TEXT NOT NULL,
	vector    BLOB NOT NULL,
	PRIMARY KEY (record_id, slot)
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	if _, err := db.Exec(ddl); err != nil {
		return err
	}
	return nil
}

func loadDims(db *sql.DB) (int, error) {
	var raw string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, dimsMetaKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("loading dimensionality: %w", err)
	}
	dims, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing stored dimensionality %q: %w", raw, err)
	}
	return dims, nil
}

func saveDims(db *sql.DB, dims int) error {
	_, err := db.Exec(`INSERT INTO meta(key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, dimsMetaKey, strconv.Itoa(dims))
	if err != nil {
		return fmt.Errorf("persisting dimensionality: %w", err)
	}
	return nil
}

func (s *Store) Name() string { return "embedded" }

// Available holds whenever the store was constructed; the factory probe
// checks the configured path instead.
func (s *Store) Available() bool { return true }

func (s *Store) Close() error { return s.db.Close() }

// Insert writes the whole batch in one transaction: the record row and its
// vector row either both land or neither does. Duplicate IDs overwrite
// (last-write-wins); the original created_at survives an overwrite.
func (s *Store) Insert(ctx context.Context, records []store.VectorRecord) (*store.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dims, err := store.PrepareRecords(records, s.dims)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for _, rec := range records {
		meta := store.StampCreatedAt(rec.Metadata, now)
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("marshalling metadata for %s: %w", rec.ID, err)
		}

		const recQ = `INSERT INTO records(id, metadata, created_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET metadata = excluded.metadata`
		if _, err := tx.ExecContext(ctx, recQ, rec.ID, string(metaJSON), now.UTC().Format(time.RFC3339)); err != nil {
			return nil, fmt.Errorf("upserting record %s: %w", rec.ID, err)
		}

		blob, err := sqlite_vec.SerializeFloat32(rec.Values)
		if err != nil {
			return nil, fmt.Errorf("serializing vector for %s: %w", rec.ID, err)
		}

		const vecQ = `INSERT INTO embeddings(record_id, slot, vector) VALUES (?, ?, ?)
ON CONFLICT(record_id, slot) DO UPDATE SET vector = excluded.vector`
		if _, err := tx.ExecContext(ctx, vecQ, rec.ID, defaultSlot, blob); err != nil {
			return nil, fmt.Errorf("upserting vector for %s: %w", rec.ID, err)
		}
	}

	if dims != s.dims {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, dimsMetaKey, strconv.Itoa(dims)); err != nil {
			return nil, fmt.Errorf("persisting dimensionality: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing insert: %w", err)
	}

	s.dims = dims
	return &store.InsertResult{MutationID: uuid.NewString()}, nil
}

// identRe limits which metadata fields may be pushed into the SQL predicate.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Search reads all candidate rows, deserializes each stored vector, and
// scores it in-process. One equality constraint is pushed down as a
// json_extract predicate when its field name is a plain identifier; the
// full filter is still applied in-process. Rows whose stored vector cannot
// be decoded or has the wrong length are skipped and counted, never fatal.
func (s *Store) Search(ctx context.Context, query []float32, opts store.SearchOptions) (*store.SearchResponse, error) {
	s.mu.RLock()
	dims := s.dims
	s.mu.RUnlock()

	if dims > 0 && len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d values, store dimensionality is %d",
			store.ErrDimensionMismatch, len(query), dims)
	}

	q := `SELECT r.id, r.metadata, e.vector FROM records r
JOIN embeddings e ON e.record_id = r.id AND e.slot = ?`
	args := []any{defaultSlot}

	if field, value, ok := pushdown(opts.Filter); ok {
		q += fmt.Sprintf(` WHERE json_extract(r.metadata, '$.%s') = ?`, field)
		args = append(args, value)
	}
	q += ` ORDER BY r.rowid`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		results []store.SearchResult
		skipped int
	)
	for rows.Next() {
		var (
			id      string
			metaStr string
			blob    []byte
		)
		if err := rows.Scan(&id, &metaStr, &blob); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}

		values, err := vector.DecodeFloat32(blob)
		if err != nil || len(values) != len(query) {
			skipped++
			slog.Warn("skipping record with unusable stored vector",
				"record_id", id, "blob_bytes", len(blob), "error", err)
			continue
		}

		var meta map[string]any
		if err := json.Unmarshal([]byte(metaStr), &meta); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", id, err)
		}

		if !opts.Filter.Matches(meta) {
			continue
		}

		score, err := vector.CosineSimilarity(query, values)
		if err != nil {
			skipped++
			continue
		}
		results = append(results, store.SearchResult{ID: id, Score: score, Metadata: meta})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record rows: %w", err)
	}

	return &store.SearchResponse{Results: store.Rank(results, opts), Skipped: skipped}, nil
}

// pushdown picks one equality constraint usable as a storage-layer
// predicate. Field names that are not plain identifiers stay in-process.
func pushdown(f *store.SearchFilter) (field, value string, ok bool) {
	if f == nil {
		return "", "", false
	}
	for k, v := range f.Equals {
		if identRe.MatchString(k) {
			return k, v, true
		}
	}
	return "", "", false
}
