package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	_ "modernc.org/sqlite" // Register sqlite driver
)

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := openInstrumented(ctx, "sqlite", dsn, semconv.DBSystemSqlite)
	if err != nil {
		return nil, err
	}
	// One writer at a time; the store rewrites whole tables.
	db.SetMaxOpenConns(1)
	return db, nil
}
