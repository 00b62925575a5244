package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldscope/vztrack/pkg/types"
)

// openDB opens (creating if needed) a SQLite file and applies the given
// schema statements. Connectivity failures are wrapped with
// types.ErrStoreUnavailable so callers can tell them apart from validation
// errors.
func openDB(path string, schema []string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating store directory: %v", types.ErrStoreUnavailable, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrStoreUnavailable, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: pinging %s: %v", types.ErrStoreUnavailable, path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	return db, nil
}

// now returns the current UTC time truncated to second precision, matching
// the RFC3339 column format.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a stored timestamp. Zero time on empty input.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// nullStr maps an empty string to SQL NULL.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullInt maps a nil pointer to SQL NULL.
func nullInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// strOf reads a nullable text column.
func strOf(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// intPtrOf reads a nullable integer column.
func intPtrOf(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
