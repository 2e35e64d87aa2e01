package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
)

// openInstrumented creates a database connection with OpenTelemetry
// instrumentation and checks that it is alive.
func openInstrumented(ctx context.Context, driver, dsn string, system attribute.KeyValue, opts ...otelsql.Option) (*sql.DB, error) {
	// otelsql.Open wraps the driver to intercept queries and create spans
	opts = append([]otelsql.Option{otelsql.WithAttributes(system)}, opts...)
	db, err := otelsql.Open(driver, dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}
