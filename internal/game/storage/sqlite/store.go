// Package sqlite provides a SQLite-backed implementation of the game store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage/sqlite/migrations"
	sqlitemigrate "github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx so store methods run
// unchanged inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists the event ledger and all projections in one SQLite database
// so a dispatch commits or rolls back as a single transaction.
type Store struct {
	sqlDB *sql.DB
	q     querier
	inTx  bool
}

var _ storage.GameStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite game store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, q: sqlDB}, nil
}

// Close closes the SQLite handle.
//
// Close is intentionally nil-safe so callers can defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// InTx runs fn against a transaction-scoped clone of the store. A nested call
// on a store already inside a transaction reuses the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(storage.GameStore) error) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if fn == nil {
		return fmt.Errorf("transaction func is required")
	}
	if s.inTx {
		return fn(s)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	cloned := *s
	cloned.q = tx
	cloned.inTx = true

	if err := fn(&cloned); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ready() error {
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}
