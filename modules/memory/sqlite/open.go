package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// Options tunes Open.
type Options struct {
	// WAL enables write-ahead logging.
	WAL bool

	// BusyTimeout is the milliseconds to wait on a busy lock.
	BusyTimeout int
}

// DefaultOptions enables WAL with a 5 s busy timeout.
func DefaultOptions() Options {
	return Options{WAL: true, BusyTimeout: defaultBusyTimeout}
}

// Open opens (or creates) a SQLite database at path and returns a Store
// backed by it. The caller must Close the store when done.
//
// The database uses a single connection since SQLite serialises writes.
// The schema is migrated automatically.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if opts.WAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", opts.BusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, wal: opts.WAL}, nil
}
