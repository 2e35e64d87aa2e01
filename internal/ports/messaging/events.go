package messaging

import (
	"time"

	"timeclock.kiosk/internal/core/model"
)

// ClockEvent is the JSON line appended to the event journal for every
// committed clock event.
type ClockEvent struct {
	EmployeeID      string          `json:"employeeId"`
	Event           model.EventKind `json:"event"`
	Date            string          `json:"date"`
	OccurredAt      time.Time       `json:"occurredAt"`
	ShiftHours      float64         `json:"shiftHours,omitempty"`
	WorkedHours     *float64        `json:"workedHours,omitempty"`
	OvertimeMinutes *int            `json:"overtimeMinutes,omitempty"`
	LunchMinutes    *int            `json:"lunchMinutes,omitempty"`
	TraceID         string          `json:"traceId,omitempty"`
}

// NewClockEvent describes kind as applied to rec at the given time.
func NewClockEvent(kind model.EventKind, rec model.DailyRecord, at time.Time) ClockEvent {
	return ClockEvent{
		EmployeeID:      rec.EmployeeID,
		Event:           kind,
		Date:            rec.Date,
		OccurredAt:      at,
		ShiftHours:      rec.ShiftHours,
		WorkedHours:     rec.WorkedHours,
		OvertimeMinutes: rec.OvertimeMinutes,
		LunchMinutes:    rec.LunchMinutes,
	}
}
