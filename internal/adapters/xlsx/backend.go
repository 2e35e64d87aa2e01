// Package xlsx stores a table as the first worksheet of an Excel workbook,
// header in the first row.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"timeclock.kiosk/internal/ports/table"
)

const defaultSheet = "Sheet1"

// Backend is a table.Backend over a single .xlsx file.
type Backend struct {
	path  string
	sheet string
}

// NewBackend returns a backend for the workbook at path. Sheet names the
// worksheet created on write; reads always use the first worksheet.
func NewBackend(path, sheet string) *Backend {
	if sheet == "" {
		sheet = defaultSheet
	}
	return &Backend{path: path, sheet: sheet}
}

func (b *Backend) Location() string { return b.path }

// Read loads the whole first worksheet.
func (b *Backend) Read(ctx context.Context) (*table.Table, error) {
	if _, err := os.Stat(b.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, table.ErrNotExist
		}
		return nil, fmt.Errorf("stat workbook: %w", err)
	}

	f, err := excelize.OpenFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook %s has no worksheet", b.path)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheetName, err)
	}

	t := &table.Table{}
	if len(rows) == 0 {
		return t, nil
	}
	t.Columns = append([]string(nil), rows[0]...)
	for _, r := range rows[1:] {
		t.Rows = append(t.Rows, append([]string(nil), r...))
	}
	return t, nil
}

// Write replaces the workbook. The new file is written next to the old one
// and renamed over it, so a failed write leaves the previous table intact.
func (b *Backend) Write(ctx context.Context, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if b.sheet != defaultSheet {
		idx, err := f.NewSheet(b.sheet)
		if err != nil {
			return fmt.Errorf("create worksheet %q: %w", b.sheet, err)
		}
		f.SetActiveSheet(idx)
		f.DeleteSheet(defaultSheet)
	}

	if err := f.SetSheetRow(b.sheet, "A1", toCells(t.Columns)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(b.sheet, cell, toCells(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create workbook dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".timeclock-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
