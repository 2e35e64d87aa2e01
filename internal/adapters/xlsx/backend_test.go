package xlsx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"timeclock.kiosk/internal/ports/table"
)

func TestBackend_ReadMissing(t *testing.T) {
	b := NewBackend(filepath.Join(t.TempDir(), "missing.xlsx"), "")

	if _, err := b.Read(context.Background()); !errors.Is(err, table.ErrNotExist) {
		t.Fatalf("read missing: err = %v, want ErrNotExist", err)
	}
}

func TestBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "registro.xlsx")
	b := NewBackend(path, "Registros")

	in := &table.Table{
		Columns: []string{"id empleado", "fecha", "hora entrada", "hora salida"},
		Rows: [][]string{
			{"E1", "2026-03-02", "08:00:00", "13:00:00"},
			{"E2", "2026-03-02", "09:15:30", ""},
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
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.Rows))
	}
	if !reflect.DeepEqual(got.Rows[0], in.Rows[0]) {
		t.Fatalf("row 0 = %v, want %v", got.Rows[0], in.Rows[0])
	}
	// Trailing empty cells are not materialized by the reader.
	if table.Cell(got.Rows[1], 3) != "" || table.Cell(got.Rows[1], 2) != "09:15:30" {
		t.Fatalf("row 1 = %v", got.Rows[1])
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp workbook left behind: %d entries", len(entries))
	}
}

func TestBackend_HeaderOnly(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(filepath.Join(t.TempDir(), "empleados.xlsx"), "")

	if err := b.Write(ctx, &table.Table{Columns: []string{"id empleado", "nombre completo"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Rows) != 0 || len(got.Columns) != 2 {
		t.Fatalf("table = %#v", got)
	}
}

func TestBackend_ReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := NewBackend(path, "").Read(context.Background())
	if err == nil || errors.Is(err, table.ErrNotExist) {
		t.Fatalf("read corrupt: err = %v, want open failure", err)
	}
}
