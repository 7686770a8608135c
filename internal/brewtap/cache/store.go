// Package cache persists upstream formula version lookups in SQLite so
// repeated tap comparisons stay off the network inside the TTL window.
package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"scriptkit/internal/brewtap"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases are discarded and rebuilt.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store is a SQLite-backed formula version cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		if errors.Is(err, ErrSchemaMismatch) {
			// The cache is disposable; rebuild it instead of failing.
			db.Close()
			if removeErr := os.Remove(path); removeErr != nil {
				return nil, fmt.Errorf("reset stale cache: %w", removeErr)
			}
			return Open(ctx, path)
		}
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		_, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		if err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// Get returns the cached upstream version when it is younger than maxAge.
func (s *Store) Get(ctx context.Context, name string, maxAge time.Duration) (brewtap.Formula, bool, error) {
	if s == nil || s.db == nil {
		return brewtap.Formula{}, false, errors.New("cache not open")
	}

	var (
		formula   brewtap.Formula
		fetchedAt int64
	)
	err := s.queryRowWithRetry(ctx,
		"SELECT name, version, revision, fetched_at FROM formula_versions WHERE name = ?",
		[]any{name},
		&formula.Name, &formula.Version, &formula.Revision, &fetchedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return brewtap.Formula{}, false, nil
	case err != nil:
		return brewtap.Formula{}, false, fmt.Errorf("read cache entry %s: %w", name, err)
	}

	// A zero maxAge disables expiry; a negative one expires everything.
	if maxAge != 0 && time.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return brewtap.Formula{}, false, nil
	}
	return formula, true, nil
}

// Put upserts an upstream lookup result.
func (s *Store) Put(ctx context.Context, formula brewtap.Formula) error {
	if s == nil || s.db == nil {
		return errors.New("cache not open")
	}
	if strings.TrimSpace(formula.Name) == "" {
		return errors.New("formula name is required")
	}
	return s.execWithRetry(ctx,
		`INSERT INTO formula_versions (name, version, revision, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   version = excluded.version,
		   revision = excluded.revision,
		   fetched_at = excluded.fetched_at`,
		formula.Name, formula.Version, formula.Revision, time.Now().Unix(),
	)
}

// Prune removes entries older than maxAge.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) error {
	if s == nil || s.db == nil {
		return errors.New("cache not open")
	}
	cutoff := time.Now().Add(-maxAge).Unix()
	return s.execWithRetry(ctx, "DELETE FROM formula_versions WHERE fetched_at < ?", cutoff)
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func (s *Store) queryRowWithRetry(ctx context.Context, query string, args []any, dest ...any) error {
	return retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	})
}
