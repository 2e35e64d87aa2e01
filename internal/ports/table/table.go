// Package table describes the flat, string-typed tables the time clock
// persists, independent of the file format that stores them.
package table

import (
	"context"
	"errors"
	"strings"
)

// ErrNotExist is returned by Backend.Read when the table has never been written.
var ErrNotExist = errors.New("table does not exist")

// Table is a header row plus data rows. Rows may be shorter than Columns;
// missing trailing cells read as empty.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Backend stores exactly one table and always reads or writes it whole.
type Backend interface {
	Read(ctx context.Context) (*Table, error)
	Write(ctx context.Context, t *Table) error
	// Location names the table for logs and error messages.
	Location() string
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// ColumnIndex maps each column name to its position.
func (t *Table) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return idx
}

// Cell returns row[i] trimmed, or "" when the row is too short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// IsBlank reports whether every cell of the row is empty.
func IsBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
