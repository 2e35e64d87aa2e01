// Package store builds the repository for the configured backend.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timeclock.kiosk/internal/adapters/breaker"
	"timeclock.kiosk/internal/adapters/sqltable"
	"timeclock.kiosk/internal/adapters/xlsx"
	"timeclock.kiosk/internal/config"
	"timeclock.kiosk/internal/ports/repository"
	"timeclock.kiosk/internal/ports/table"
	"timeclock.kiosk/pkg/database"
)

// Table names used by the SQL backends.
const (
	EmployeesTable = "empleados"
	RecordsTable   = "registros"
)

// Backends opens the employee and record tables for cfg. The returned
// close function releases any database connection.
func Backends(ctx context.Context, cfg config.Config) (employees, records table.Backend, closeFn func() error, err error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.BackendXLSX:
		return xlsx.NewBackend(cfg.EmployeesPath, ""), xlsx.NewBackend(cfg.RecordsPath, ""), noop, nil

	case config.BackendSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		employees, records = sqlBackends(db, sqltable.SQLite)
		return employees, records, db.Close, nil

	case config.BackendPostgres:
		db, err := database.OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		employees, records = sqlBackends(db, sqltable.Postgres)
		employees = breaker.New(employees, breaker.Settings("postgres-"+EmployeesTable))
		records = breaker.New(records, breaker.Settings("postgres-"+RecordsTable))
		return employees, records, db.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func sqlBackends(db *sql.DB, d sqltable.Dialect) (employees, records table.Backend) {
	return sqltable.NewBackend(db, d, EmployeesTable), sqltable.NewBackend(db, d, RecordsTable)
}

// Open builds the repository for cfg and runs the schema upgrade. Any error
// here is a startup failure.
func Open(ctx context.Context, cfg config.Config, loc *time.Location) (repository.Repository, func() error, error) {
	employees, records, closeFn, err := Backends(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewTimesheetRepository(employees, records, loc)
	if err := repo.Ensure(ctx); err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return repo, closeFn, nil
}
