package sqltable

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"timeclock.kiosk/internal/ports/table"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "timeclock.db")

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=rwc")
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBackend_ReadMissing(t *testing.T) {
	b := NewBackend(openTestDB(t), SQLite, "registros")

	if _, err := b.Read(context.Background()); !errors.Is(err, table.ErrNotExist) {
		t.Fatalf("read missing: err = %v, want ErrNotExist", err)
	}
}

func TestBackend_RoundTripKeepsOrderAndColumns(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(openTestDB(t), SQLite, "registros")

	in := &table.Table{
		Columns: []string{"id empleado", "fecha", "hora entrada", `odd "name"`},
		Rows: [][]string{
			{"E2", "2026-03-02", "09:00:00", "x"},
			{"E1", "2026-03-02", "08:00:00"},
			{"E3", "2026-03-03", "", ""},
		},
	}
	if err := b.Write(ctx, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got.Columns, in.Columns) {
		t.Fatalf("columns = %v, want %v", got.Columns, in.Columns)
	}
	want := [][]string{
		{"E2", "2026-03-02", "09:00:00", "x"},
		{"E1", "2026-03-02", "08:00:00", ""},
		{"E3", "2026-03-03", "", ""},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}

func TestBackend_WriteReplacesSchema(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(openTestDB(t), SQLite, "empleados")

	if err := b.Write(ctx, &table.Table{Columns: []string{"id_empleado"}, Rows: [][]string{{"E1"}}}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := b.Write(ctx, &table.Table{Columns: []string{"id empleado", "cargo"}, Rows: [][]string{{"E1", ""}}}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := []string{"id empleado", "cargo"}; !reflect.DeepEqual(got.Columns, want) {
		t.Fatalf("columns = %v, want %v", got.Columns, want)
	}
	if len(got.Rows) != 1 || got.Rows[0][0] != "E1" {
		t.Fatalf("rows = %v", got.Rows)
	}
}

func TestDialectFor(t *testing.T) {
	if d, err := DialectFor("postgres"); err != nil || d.Placeholder(3) != "$3" {
		t.Fatalf("postgres dialect = %v, %v", d.Name, err)
	}
	if d, err := DialectFor("sqlite"); err != nil || d.Placeholder(3) != "?" {
		t.Fatalf("sqlite dialect = %v, %v", d.Name, err)
	}
	if _, err := DialectFor("oracle"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}
