// Package sqltable stores a table in a SQL database with the same
// whole-table semantics as the spreadsheet backend: a read selects every
// row, a write replaces the table inside one transaction.
package sqltable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"timeclock.kiosk/internal/ports/table"
)

// Dialect captures the few statements that differ between engines.
type Dialect struct {
	Name string
	// ExistsQuery takes the table name as its only argument and returns one row when the table exists.
	ExistsQuery string
	Placeholder func(n int) string
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		ExistsQuery: `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,
		Placeholder: func(int) string { return "?" },
	}
	Postgres = Dialect{
		Name:        "postgres",
		ExistsQuery: `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`,
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case SQLite.Name:
		return SQLite, nil
	case Postgres.Name:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
}

// rowColumn keeps the on-disk row order; it is never exposed as a table column.
const rowColumn = "_row"

// Backend is a table.Backend over one SQL table.
type Backend struct {
	db      *sql.DB
	dialect Dialect
	name    string
}

// NewBackend returns a backend for the SQL table called name.
func NewBackend(db *sql.DB, dialect Dialect, name string) *Backend {
	return &Backend{db: db, dialect: dialect, name: name}
}

func (b *Backend) Location() string { return b.dialect.Name + ":" + b.name }

func (b *Backend) exists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}) (bool, error) {
	var found string
	err := q.QueryRowContext(ctx, b.dialect.ExistsQuery, b.name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", b.name, err)
	}
	return true, nil
}

// Read selects the whole table in stored order.
func (b *Backend) Read(ctx context.Context) (*table.Table, error) {
	ok, err := b.exists(ctx, b.db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, table.ErrNotExist
	}

	rows, err := b.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY %s`, quote(b.name), quote(rowColumn)))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", b.name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", b.name, err)
	}

	t := &table.Table{}
	skip := -1
	for i, c := range cols {
		if c == rowColumn {
			skip = i
			continue
		}
		t.Columns = append(t.Columns, c)
	}

	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", b.name, err)
		}
		row := make([]string, 0, len(t.Columns))
		for i, v := range values {
			if i == skip {
				continue
			}
			row = append(row, v.String)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", b.name, err)
	}
	return t, nil
}

// Write drops and recreates the table with t's header and rows. Nothing is
// visible to readers until the transaction commits.
func (b *Backend) Write(ctx context.Context, t *table.Table) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quote(b.name)); err != nil {
		return fmt.Errorf("drop %s: %w", b.name, err)
	}

	defs := []string{quote(rowColumn) + " INTEGER NOT NULL"}
	for _, c := range t.Columns {
		defs = append(defs, quote(c)+" TEXT")
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s (%s)`, quote(b.name), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", b.name, err)
	}

	if len(t.Rows) > 0 {
		names := []string{quote(rowColumn)}
		marks := []string{b.dialect.Placeholder(1)}
		for i, c := range t.Columns {
			names = append(names, quote(c))
			marks = append(marks, b.dialect.Placeholder(i+2))
		}
		insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quote(b.name), strings.Join(names, ", "), strings.Join(marks, ", "))

		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert %s: %w", b.name, err)
		}
		defer stmt.Close()

		for i, r := range t.Rows {
			args := make([]any, 0, len(t.Columns)+1)
			args = append(args, i)
			for j := range t.Columns {
				var v string
				if j < len(r) {
					v = r[j]
				}
				args = append(args, v)
			}
			if _, err = stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert %s row %d: %w", b.name, i, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", b.name, err)
	}
	return nil
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
