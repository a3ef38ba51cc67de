package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "migrate.db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsRunsOnce(t *testing.T) {
	sqlDB := openTestDB(t)
	migrations := fstest.MapFS{
		"0001_init.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
CREATE TABLE samples (id TEXT PRIMARY KEY);
-- +migrate Down
DROP TABLE samples;
`)},
	}

	if err := ApplyMigrations(sqlDB, migrations, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	// A second run must be a no-op thanks to schema_migrations bookkeeping.
	if err := ApplyMigrations(sqlDB, migrations, ""); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", count)
	}
	if _, err := sqlDB.Exec("INSERT INTO samples (id) VALUES ('a')"); err != nil {
		t.Fatalf("expected samples table to exist: %v", err)
	}
}

func TestApplyMigrationsOrdersLexicographically(t *testing.T) {
	sqlDB := openTestDB(t)
	migrations := fstest.MapFS{
		"0002_add_column.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
ALTER TABLE samples ADD COLUMN label TEXT NOT NULL DEFAULT '';
`)},
		"0001_init.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
CREATE TABLE samples (id TEXT PRIMARY KEY);
`)},
	}

	if err := ApplyMigrations(sqlDB, migrations, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := sqlDB.Exec("INSERT INTO samples (id, label) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("expected label column to exist: %v", err)
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := `-- +migrate Up
CREATE TABLE a (id TEXT);
-- +migrate Down
DROP TABLE a;`

	up := ExtractUpMigration(content)
	if up != "\nCREATE TABLE a (id TEXT);\n" {
		t.Fatalf("unexpected up migration: %q", up)
	}
}

func TestExtractUpMigrationWithoutMarkers(t *testing.T) {
	content := "CREATE TABLE b (id TEXT);"
	if up := ExtractUpMigration(content); up != content {
		t.Fatalf("expected content unchanged, got %q", up)
	}
}
