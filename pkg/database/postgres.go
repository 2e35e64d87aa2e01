package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"timeclock.kiosk/internal/config"
)

// PostgresDSN builds the connection URL from the DB_* settings.
func PostgresDSN(cfg config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     cfg.DBHost + ":" + cfg.DBPort,
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// OpenPostgres creates and verifies an instrumented PostgreSQL connection pool.
func OpenPostgres(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := openInstrumented(ctx, "pgx", PostgresDSN(cfg), semconv.DBSystemPostgreSQL,
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return db, nil
}
