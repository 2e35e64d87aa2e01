package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/ports/table"
)

var testLoc = time.FixedZone("test", -5*3600)

func at(date, clock string) *time.Time {
	t, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+clock, testLoc)
	if err != nil {
		panic(err)
	}
	return &t
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestEnsure_CreatesMissingTables(t *testing.T) {
	ctx := context.Background()
	employees := table.NewMemory("employees", nil)
	records := table.NewMemory("records", nil)
	repo := NewTimesheetRepository(employees, records, testLoc)

	if err := repo.Ensure(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got := employees.Snapshot().Columns; !reflect.DeepEqual(got, EmployeeSchema.Columns) {
		t.Fatalf("employee columns = %v", got)
	}
	if got := records.Snapshot().Columns; !reflect.DeepEqual(got, RecordSchema.Columns) {
		t.Fatalf("record columns = %v", got)
	}

	if err := repo.Ensure(ctx); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if employees.Writes() != 1 || records.Writes() != 1 {
		t.Fatalf("writes = %d/%d, want 1/1", employees.Writes(), records.Writes())
	}
}

func TestEnsure_BackfillsMissingColumnOnce(t *testing.T) {
	ctx := context.Background()
	legacy := &table.Table{
		Columns: []string{
			"id_empleado", "nombre_completo", "cargo", "fecha", "hora_entrada", "jornada_horas",
			"hora_inicio_almuerzo", "hora_fin_almuerzo", "hora_salida", "horas_trabajadas", "tiempo_extra_minutos",
		},
		Rows: [][]string{
			{"e1", "Ana Ruiz", "Cook", "2026-03-02", "08:00:00", "7", "", "", "15:00:00", "7", "0"},
			{"E2", "Luis Mora", "Driver", "2026-03-02", "09:00:00", "4"},
		},
	}
	employees := table.NewMemory("employees", EmployeeSchema.Empty())
	records := table.NewMemory("records", legacy)
	repo := NewTimesheetRepository(employees, records, testLoc)

	if err := repo.Ensure(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if records.Writes() != 1 {
		t.Fatalf("record writes = %d, want 1", records.Writes())
	}
	if employees.Writes() != 0 {
		t.Fatalf("canonical employee table was rewritten")
	}

	stored := records.Snapshot()
	if !reflect.DeepEqual(stored.Columns, RecordSchema.Columns) {
		t.Fatalf("columns = %v", stored.Columns)
	}
	for i, row := range stored.Rows {
		if len(row) != len(RecordSchema.Columns) || row[recLunchMinutes] != "" {
			t.Fatalf("row %d not backfilled: %v", i, row)
		}
	}

	if err := repo.Ensure(ctx); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if records.Writes() != 1 {
		t.Fatalf("second ensure rewrote the table")
	}

	set, err := repo.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rec, ok := set.Find("E1", "2026-03-02")
	if !ok {
		t.Fatalf("E1 not found")
	}
	if rec.LunchMinutes != nil || !rec.IsTerminal() || *rec.WorkedHours != 7 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestRecords_RoundTrip(t *testing.T) {
	ctx := context.Background()
	records := table.NewMemory("records", nil)
	repo := NewTimesheetRepository(table.NewMemory("employees", nil), records, testLoc)
	if err := repo.Ensure(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	want := []model.DailyRecord{
		{
			EmployeeID: "E1", FullName: "Ana Ruiz", Title: "Cook", Date: "2026-03-02",
			EntryTime: at("2026-03-02", "08:00:00"), ShiftHours: 4,
			ExitTime:        at("2026-03-02", "13:00:00"),
			WorkedHours:     floatPtr(5), OvertimeMinutes: intPtr(60),
		},
		{
			EmployeeID: "E2", FullName: "Luis Mora", Title: "Driver", Date: "2026-03-02",
			EntryTime: at("2026-03-02", "09:15:30"), ShiftHours: 7.5,
			LunchStartTime: at("2026-03-02", "12:00:00"),
			LunchEndTime:   at("2026-03-02", "12:45:00"),
			LunchMinutes:   intPtr(45),
		},
		{
			EmployeeID: "E1", FullName: "Ana Ruiz", Title: "Cook", Date: "2026-03-03",
			EntryTime: at("2026-03-03", "07:59:59"), ShiftHours: 6,
		},
	}
	set := NewRecordSet(nil)
	for _, rec := range want {
		if err := set.Insert(rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := repo.SaveRecords(ctx, set); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := loaded.Records()
	if len(got) != len(want) {
		t.Fatalf("records = %d, want %d", len(got), len(want))
	}
	for i := range want {
		assertSameRecord(t, got[i], want[i])
	}
}

func TestRecords_UnparsedCellsSurviveRewrite(t *testing.T) {
	ctx := context.Background()
	stored := RecordSchema.Empty()
	stored.Rows = [][]string{
		{"E1", "Ana Ruiz", "Cook", "2026-03-02", "8h", "siete", "", "", "", "", "", ""},
	}
	records := table.NewMemory("records", stored)
	repo := NewTimesheetRepository(table.NewMemory("employees", nil), records, testLoc)

	set, err := repo.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rec, _ := set.Find("e1", "2026-03-02")
	if rec.EntryTime != nil || rec.Unparsed[model.FieldEntryTime] != "8h" {
		t.Fatalf("entry = %v, unparsed = %v", rec.EntryTime, rec.Unparsed)
	}
	if !rec.IsSet(model.FieldEntryTime) || !rec.IsSet(model.FieldShiftHours) {
		t.Fatalf("unparsed cells should count as set")
	}

	if err := repo.SaveRecords(ctx, set); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !reflect.DeepEqual(records.Snapshot().Rows, stored.Rows) {
		t.Fatalf("rows = %v, want %v", records.Snapshot().Rows, stored.Rows)
	}
}

func TestLoadEmployees(t *testing.T) {
	stored := &table.Table{
		Columns: []string{"ID_EMPLEADO", "Nombre_Completo", "edad", "cargo", "jornada_laboral_horas"},
		Rows: [][]string{
			{" e1 ", "Ana Ruiz", "30", "Cook", "6"},
			{"", "nobody", "", "", ""},
			{"E2", "Luis Mora", "41.0", "Driver", "n/a"},
		},
	}
	repo := NewTimesheetRepository(table.NewMemory("employees", stored), table.NewMemory("records", nil), testLoc)

	got, err := repo.LoadEmployees(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []model.Employee{
		{ID: "E1", FullName: "Ana Ruiz", Age: 30, Title: "Cook", DefaultShiftHours: 6},
		{ID: "E2", FullName: "Luis Mora", Age: 41, Title: "Driver"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("employees = %+v, want %+v", got, want)
	}
}

func TestStorageErrors(t *testing.T) {
	ctx := context.Background()
	records := table.NewMemory("records", RecordSchema.Empty())
	repo := NewTimesheetRepository(table.NewMemory("employees", nil), records, testLoc)

	records.FailWrite = errors.New("disk full")
	err := repo.SaveRecords(ctx, NewRecordSet(nil))
	var storageErr *model.StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "write" {
		t.Fatalf("save: err = %v, want write StorageError", err)
	}

	records.FailRead = errors.New("locked")
	if _, err := repo.LoadRecords(ctx); !errors.As(err, &storageErr) || storageErr.Op != "read" {
		t.Fatalf("load: err = %v, want read StorageError", err)
	}
	if err := repo.Ensure(ctx); !errors.As(err, &storageErr) {
		t.Fatalf("ensure: err = %v, want StorageError", err)
	}
}

func TestRecordSet_FirstDuplicateWins(t *testing.T) {
	set := NewRecordSet([]model.DailyRecord{
		{EmployeeID: "E1", Date: "2026-03-02", FullName: "first"},
		{EmployeeID: "e1", Date: "2026-03-02", FullName: "second"},
	})
	if set.Len() != 2 {
		t.Fatalf("len = %d, want 2", set.Len())
	}
	rec, ok := set.Find(" e1", "2026-03-02")
	if !ok || rec.FullName != "first" {
		t.Fatalf("find = %+v, %v", rec, ok)
	}
	if err := set.Insert(model.DailyRecord{EmployeeID: "E1", Date: "2026-03-02"}); err == nil {
		t.Fatalf("duplicate insert succeeded")
	}

	rec.FullName = "updated"
	if err := set.Replace(rec); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := set.Records(); got[0].FullName != "updated" || got[1].FullName != "second" {
		t.Fatalf("records = %+v", got)
	}
	if err := set.Replace(model.DailyRecord{EmployeeID: "E9", Date: "2026-03-02"}); err == nil {
		t.Fatalf("replace of missing record succeeded")
	}
}

func assertSameRecord(t *testing.T, got, want model.DailyRecord) {
	t.Helper()
	if got.EmployeeID != want.EmployeeID || got.FullName != want.FullName || got.Title != want.Title ||
		got.Date != want.Date || got.ShiftHours != want.ShiftHours {
		t.Fatalf("record = %+v, want %+v", got, want)
	}
	for _, pair := range [][2]*time.Time{
		{got.EntryTime, want.EntryTime},
		{got.LunchStartTime, want.LunchStartTime},
		{got.LunchEndTime, want.LunchEndTime},
		{got.ExitTime, want.ExitTime},
	} {
		if (pair[0] == nil) != (pair[1] == nil) || (pair[0] != nil && !pair[0].Equal(*pair[1])) {
			t.Fatalf("time mismatch in %s: got %v, want %v", want.EmployeeID, pair[0], pair[1])
		}
	}
	if !reflect.DeepEqual(got.WorkedHours, want.WorkedHours) ||
		!reflect.DeepEqual(got.OvertimeMinutes, want.OvertimeMinutes) ||
		!reflect.DeepEqual(got.LunchMinutes, want.LunchMinutes) {
		t.Fatalf("derived mismatch: got %+v, want %+v", got, want)
	}
	if len(got.Unparsed) != 0 {
		t.Fatalf("unexpected unparsed cells: %v", got.Unparsed)
	}
}
