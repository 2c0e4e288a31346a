package refbank

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Reference is one stored reference curve. R is the model grid.
type Reference struct {
	Label string
	Name  string
	R     []float64
	G     []float64
}

// Store is a reference bank backed by SQLite.
type Store struct {
	db   *sqlx.DB
	path string

	mu    sync.Mutex
	cache *btree.BTreeG[cacheEntry]
}

type cacheEntry struct {
	label string
	refs  []Reference
}

func lessEntry(a, b cacheEntry) bool { return a.label < b.label }

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	cacheDegree             = 8
)

// Open connects to the bank at path, creating the database when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("open reference bank: path not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bank directory: %w", err)
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:    db,
		path:  path,
		cache: btree.NewG(cacheDegree, lessEntry),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
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

func (s *Store) cached(label string) ([]Reference, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache.Get(cacheEntry{label: label})
	return entry.refs, ok
}

func (s *Store) remember(label string, refs []Reference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.ReplaceOrInsert(cacheEntry{label: label, refs: refs})
}

func (s *Store) forget(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(cacheEntry{label: label})
}
