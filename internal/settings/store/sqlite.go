package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const (
	sqliteTimeout = 5 * time.Second

	schema = `
		CREATE TABLE IF NOT EXISTS settings (
			store_key TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			kind TEXT NOT NULL,
			record TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			PRIMARY KEY (store_key, id)
		);`
)

// SQLite keeps one row per setting, grouped by store key and ordered by position.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:" is accepted for tests.
func OpenSQLite(path string, busyTimeout time.Duration) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
			path, busyTimeout.Milliseconds())
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: a single writer, and ":memory:" stays one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), sqliteTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("creating settings schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

func (s *SQLite) Store(key string, records []settings.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM settings WHERE store_key = ?`, key); err != nil {
		return fmt.Errorf("clear %q: %w", key, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO settings (store_key, position, id, kind, record) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %q: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, key, i, rec.ID, string(rec.Kind), string(b)); err != nil {
			return fmt.Errorf("insert %q: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLite) Retrieve(key string) ([]settings.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM settings WHERE store_key = ? ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", key, err)
	}
	defer rows.Close()

	var out []settings.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var rec settings.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", settings.ErrNoData, key)
	}
	return out, nil
}
