package model

import (
	"strings"
	"time"
)

// DateLayout and TimeLayout are the persisted formats for a record's date and its event times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// DayStatus describes how far an employee got through today's record.
type DayStatus string

const (
	StatusNone     DayStatus = "NONE"
	StatusPartial  DayStatus = "PARTIAL"
	StatusComplete DayStatus = "COMPLETE"
)

// EventKind names the four clock events.
type EventKind string

const (
	EventClockIn    EventKind = "clock_in"
	EventStartLunch EventKind = "start_lunch"
	EventEndLunch   EventKind = "end_lunch"
	EventClockOut   EventKind = "clock_out"
)

// Field identifies a DailyRecord value that is parsed from storage.
type Field string

const (
	FieldEntryTime       Field = "entry_time"
	FieldShiftHours      Field = "shift_hours"
	FieldLunchStartTime  Field = "lunch_start_time"
	FieldLunchEndTime    Field = "lunch_end_time"
	FieldExitTime        Field = "exit_time"
	FieldWorkedHours     Field = "worked_hours"
	FieldOvertimeMinutes Field = "overtime_minutes"
	FieldLunchMinutes    Field = "lunch_minutes"
)

// NormalizeEmployeeID upper-cases and trims an id so lookups are case-insensitive.
func NormalizeEmployeeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Employee is a directory entry. The core never writes it.
type Employee struct {
	ID                string  `json:"id"`
	FullName          string  `json:"fullName"`
	Age               int     `json:"age,omitempty"`
	Title             string  `json:"title"`
	DefaultShiftHours float64 `json:"defaultShiftHours,omitempty"`
}

// DailyRecord is one employee's row for one calendar day.
//
// Event times are full timestamps anchored to Date in the store's location.
// A nil pointer means the value is unset. Cells that were present on disk
// but could not be parsed are kept verbatim in Unparsed so that a rewrite
// of the table preserves them.
type DailyRecord struct {
	EmployeeID      string           `json:"employeeId"`
	FullName        string           `json:"fullName"`
	Title           string           `json:"title"`
	Date            string           `json:"date"`
	EntryTime       *time.Time       `json:"entryTime,omitempty"`
	ShiftHours      float64          `json:"shiftHours"`
	LunchStartTime  *time.Time       `json:"lunchStartTime,omitempty"`
	LunchEndTime    *time.Time       `json:"lunchEndTime,omitempty"`
	ExitTime        *time.Time       `json:"exitTime,omitempty"`
	WorkedHours     *float64         `json:"workedHours,omitempty"`
	OvertimeMinutes *int             `json:"overtimeMinutes,omitempty"`
	LunchMinutes    *int             `json:"lunchMinutes,omitempty"`
	Unparsed        map[Field]string `json:"unparsed,omitempty"`
}

// IsSet reports whether the field holds a value, parsed or not.
func (r DailyRecord) IsSet(f Field) bool {
	if r.Unparsed[f] != "" {
		return true
	}
	switch f {
	case FieldEntryTime:
		return r.EntryTime != nil
	case FieldShiftHours:
		return r.ShiftHours != 0
	case FieldLunchStartTime:
		return r.LunchStartTime != nil
	case FieldLunchEndTime:
		return r.LunchEndTime != nil
	case FieldExitTime:
		return r.ExitTime != nil
	case FieldWorkedHours:
		return r.WorkedHours != nil
	case FieldOvertimeMinutes:
		return r.OvertimeMinutes != nil
	case FieldLunchMinutes:
		return r.LunchMinutes != nil
	}
	return false
}

// IsTerminal reports whether the record has been clocked out.
func (r DailyRecord) IsTerminal() bool {
	return r.IsSet(FieldExitTime)
}

// Status maps the record onto PARTIAL or COMPLETE.
func (r DailyRecord) Status() DayStatus {
	if r.IsTerminal() {
		return StatusComplete
	}
	return StatusPartial
}

// Clone returns a copy that shares no pointers with r.
func (r DailyRecord) Clone() DailyRecord {
	out := r
	out.EntryTime = cloneTime(r.EntryTime)
	out.LunchStartTime = cloneTime(r.LunchStartTime)
	out.LunchEndTime = cloneTime(r.LunchEndTime)
	out.ExitTime = cloneTime(r.ExitTime)
	if r.WorkedHours != nil {
		v := *r.WorkedHours
		out.WorkedHours = &v
	}
	if r.OvertimeMinutes != nil {
		v := *r.OvertimeMinutes
		out.OvertimeMinutes = &v
	}
	if r.LunchMinutes != nil {
		v := *r.LunchMinutes
		out.LunchMinutes = &v
	}
	if r.Unparsed != nil {
		out.Unparsed = make(map[Field]string, len(r.Unparsed))
		for k, v := range r.Unparsed {
			out.Unparsed[k] = v
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// TodayStatus is the answer to "where is this employee today".
type TodayStatus struct {
	Status DayStatus    `json:"status"`
	Record *DailyRecord `json:"record,omitempty"`
}

// Session is the explicit login session shared by the engine and the tracker.
// It is created at login and dropped at logout or clock-out.
type Session struct {
	Employee  Employee
	Record    DailyRecord
	StartedAt time.Time
}

// EmployeeID returns the normalized id of the logged-in employee.
func (s *Session) EmployeeID() string {
	return s.Record.EmployeeID
}

// Apply replaces the session's snapshot with a record returned by the engine.
func (s *Session) Apply(rec DailyRecord) {
	s.Record = rec
}

// LoginResult is returned by the login flow. When NeedsShift is set the
// caller collects a shift length and calls ClockIn with it.
type LoginResult struct {
	Employee     Employee
	Session      *Session
	NeedsShift   bool
	DefaultShift float64
	ShiftChoices []float64
}
