package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/ports/table"
)

// TimesheetRepository keeps the employee directory and the daily records in
// two table backends, each read and written whole.
type TimesheetRepository struct {
	Employees table.Backend
	Records   table.Backend
	dec       decoder
}

// NewTimesheetRepository create new instance. Times are read and written in loc.
func NewTimesheetRepository(employees, records table.Backend, loc *time.Location) Repository {
	if loc == nil {
		loc = time.Local
	}
	return &TimesheetRepository{Employees: employees, Records: records, dec: decoder{loc: loc}}
}

// Ensure runs the one-way schema upgrade for both tables.
func (r *TimesheetRepository) Ensure(ctx context.Context) error {
	if err := ensureTable(ctx, r.Employees, EmployeeSchema); err != nil {
		return err
	}
	return ensureTable(ctx, r.Records, RecordSchema)
}

func ensureTable(ctx context.Context, b table.Backend, s table.Schema) error {
	logger := log.Ctx(ctx).With().Str("table", s.Name).Str("location", b.Location()).Logger()

	t, err := b.Read(ctx)
	if errors.Is(err, table.ErrNotExist) {
		if err := b.Write(ctx, s.Empty()); err != nil {
			return &model.StorageError{Op: "init", Location: b.Location(), Err: err}
		}
		logger.Info().Msg("created empty table")
		return nil
	}
	if err != nil {
		return &model.StorageError{Op: "init", Location: b.Location(), Err: err}
	}

	res := s.Conform(t)
	if !res.Changed {
		return nil
	}
	for _, col := range res.Added {
		logger.Info().Str("column", col).Msg("added missing column")
	}
	if err := b.Write(ctx, res.Table); err != nil {
		return &model.StorageError{Op: "init", Location: b.Location(), Err: err}
	}
	logger.Info().Int("rows", len(res.Table.Rows)).Msg("rewrote table with canonical header")
	return nil
}

// LoadEmployees reads the directory. Rows without an id are skipped.
func (r *TimesheetRepository) LoadEmployees(ctx context.Context) ([]model.Employee, error) {
	t, err := load(ctx, r.Employees, EmployeeSchema)
	if err != nil {
		return nil, err
	}
	employees := make([]model.Employee, 0, len(t.Rows))
	for _, row := range t.Rows {
		if e, ok := decodeEmployee(row); ok {
			employees = append(employees, e)
		}
	}
	return employees, nil
}

// LoadRecords reads every daily record.
func (r *TimesheetRepository) LoadRecords(ctx context.Context) (*RecordSet, error) {
	t, err := load(ctx, r.Records, RecordSchema)
	if err != nil {
		return nil, err
	}
	recs := make([]model.DailyRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		recs = append(recs, r.dec.record(row))
	}
	return NewRecordSet(recs), nil
}

// SaveRecords replaces the record table with records.
func (r *TimesheetRepository) SaveRecords(ctx context.Context, records *RecordSet) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("app.records", records.Len()))

	t := RecordSchema.Empty()
	for _, rec := range records.records {
		t.Rows = append(t.Rows, r.dec.encode(rec))
	}
	if err := r.Records.Write(ctx, t); err != nil {
		return &model.StorageError{Op: "write", Location: r.Records.Location(), Err: err}
	}
	return nil
}

func load(ctx context.Context, b table.Backend, s table.Schema) (*table.Table, error) {
	t, err := b.Read(ctx)
	if err != nil {
		return nil, &model.StorageError{Op: "read", Location: b.Location(), Err: err}
	}
	return s.Conform(t).Table, nil
}
