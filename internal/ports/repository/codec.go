package repository

import (
	"math"
	"strconv"
	"strings"
	"time"

	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/ports/table"
)

// dateTimeLayouts are tried in order when a date cell is read; spreadsheet
// editors sometimes turn a plain date into a timestamp.
var dateTimeLayouts = []string{model.DateLayout, "2006-01-02 15:04:05", time.RFC3339}

func decodeEmployee(row []string) (model.Employee, bool) {
	id := model.NormalizeEmployeeID(table.Cell(row, empID))
	if id == "" {
		return model.Employee{}, false
	}
	e := model.Employee{
		ID:       id,
		FullName: table.Cell(row, empFullName),
		Title:    table.Cell(row, empTitle),
	}
	if n, ok := parseNumber(table.Cell(row, empAge)); ok {
		e.Age = int(n)
	}
	if h, ok := parseNumber(table.Cell(row, empDefaultShift)); ok && h > 0 {
		e.DefaultShiftHours = h
	}
	return e, true
}

// EncodeEmployee renders a directory row in EmployeeSchema column order.
func EncodeEmployee(e model.Employee) []string {
	row := make([]string, empColumns)
	row[empID] = model.NormalizeEmployeeID(e.ID)
	row[empFullName] = e.FullName
	row[empTitle] = e.Title
	if e.Age > 0 {
		row[empAge] = strconv.Itoa(e.Age)
	}
	if e.DefaultShiftHours > 0 {
		row[empDefaultShift] = formatNumber(e.DefaultShiftHours)
	}
	return row
}

type decoder struct {
	loc *time.Location
}

// record turns one conformed row into a DailyRecord. It never fails: a cell
// that does not parse is kept in Unparsed.
func (d decoder) record(row []string) model.DailyRecord {
	rec := model.DailyRecord{
		EmployeeID: model.NormalizeEmployeeID(table.Cell(row, recEmployeeID)),
		FullName:   table.Cell(row, recFullName),
		Title:      table.Cell(row, recTitle),
		Date:       normalizeDate(table.Cell(row, recDate)),
	}

	keep := func(f model.Field, raw string) {
		if rec.Unparsed == nil {
			rec.Unparsed = make(map[model.Field]string)
		}
		rec.Unparsed[f] = raw
	}

	for _, tf := range []struct {
		field model.Field
		col   int
		dst   **time.Time
	}{
		{model.FieldEntryTime, recEntryTime, &rec.EntryTime},
		{model.FieldLunchStartTime, recLunchStartTime, &rec.LunchStartTime},
		{model.FieldLunchEndTime, recLunchEndTime, &rec.LunchEndTime},
		{model.FieldExitTime, recExitTime, &rec.ExitTime},
	} {
		raw := table.Cell(row, tf.col)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, rec.Date+" "+raw, d.loc)
		if err != nil {
			keep(tf.field, raw)
			continue
		}
		*tf.dst = &t
	}

	if raw := table.Cell(row, recShiftHours); raw != "" {
		if h, ok := parseNumber(raw); ok && h > 0 {
			rec.ShiftHours = h
		} else {
			keep(model.FieldShiftHours, raw)
		}
	}
	if raw := table.Cell(row, recWorkedHours); raw != "" {
		if h, ok := parseNumber(raw); ok {
			rec.WorkedHours = &h
		} else {
			keep(model.FieldWorkedHours, raw)
		}
	}
	for _, nf := range []struct {
		field model.Field
		col   int
		dst   **int
	}{
		{model.FieldOvertimeMinutes, recOvertimeMinutes, &rec.OvertimeMinutes},
		{model.FieldLunchMinutes, recLunchMinutes, &rec.LunchMinutes},
	} {
		raw := table.Cell(row, nf.col)
		if raw == "" {
			continue
		}
		n, ok := parseNumber(raw)
		if !ok || n != math.Trunc(n) {
			keep(nf.field, raw)
			continue
		}
		v := int(n)
		*nf.dst = &v
	}
	return rec
}

func (d decoder) encode(rec model.DailyRecord) []string {
	row := make([]string, recColumns)
	row[recEmployeeID] = rec.EmployeeID
	row[recFullName] = rec.FullName
	row[recTitle] = rec.Title
	row[recDate] = rec.Date

	clock := func(f model.Field, t *time.Time) string {
		if t == nil {
			return rec.Unparsed[f]
		}
		return t.In(d.loc).Format(model.TimeLayout)
	}
	row[recEntryTime] = clock(model.FieldEntryTime, rec.EntryTime)
	row[recLunchStartTime] = clock(model.FieldLunchStartTime, rec.LunchStartTime)
	row[recLunchEndTime] = clock(model.FieldLunchEndTime, rec.LunchEndTime)
	row[recExitTime] = clock(model.FieldExitTime, rec.ExitTime)

	row[recShiftHours] = rec.Unparsed[model.FieldShiftHours]
	if rec.ShiftHours != 0 {
		row[recShiftHours] = formatNumber(rec.ShiftHours)
	}
	row[recWorkedHours] = rec.Unparsed[model.FieldWorkedHours]
	if rec.WorkedHours != nil {
		row[recWorkedHours] = formatNumber(*rec.WorkedHours)
	}
	row[recOvertimeMinutes] = rec.Unparsed[model.FieldOvertimeMinutes]
	if rec.OvertimeMinutes != nil {
		row[recOvertimeMinutes] = strconv.Itoa(*rec.OvertimeMinutes)
	}
	row[recLunchMinutes] = rec.Unparsed[model.FieldLunchMinutes]
	if rec.LunchMinutes != nil {
		row[recLunchMinutes] = strconv.Itoa(*rec.LunchMinutes)
	}
	return row
}

// parseNumber accepts integers and decimals, with a comma as the decimal
// separator too.
func parseNumber(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func normalizeDate(raw string) string {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(model.DateLayout)
		}
	}
	return raw
}
