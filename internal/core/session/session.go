// Package session derives the live figures shown while an employee is
// logged in: time left in the shift, lunch countdown and total time worked.
// Tick is pure; Display adds the little state the screen needs between ticks.
package session

import (
	"errors"
	"sync"
	"time"

	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/core/timecalc"
)

// LunchState is the lunch indicator's state.
type LunchState string

const (
	LunchNotStarted LunchState = "NOT_STARTED"
	LunchInProgress LunchState = "IN_PROGRESS"
	LunchOverrun    LunchState = "OVERRUN"
	LunchCompleted  LunchState = "COMPLETED"
)

var errUnusable = errors.New("value is missing or could not be parsed")

// LiveSnapshot is one tick's worth of derived figures.
type LiveSnapshot struct {
	LunchState     LunchState
	LunchElapsed   time.Duration
	LunchRemaining time.Duration
	// Overrun is raised only while the lunch is still open.
	Overrun bool
	// OverrunBy is how far the lunch has gone past the allowance; for a
	// completed lunch it is kept as the final excess.
	OverrunBy      time.Duration
	ShiftRemaining time.Duration
	TotalWorked    time.Duration
	// ClockedOut is set once the record has an exit time; figures are then
	// frozen at that time.
	ClockedOut bool
}

// Tick derives the live figures for rec at now. After clock-out the figures
// are those of the clock-out computation, so an unfinished lunch counts as
// no lunch.
func Tick(rec model.DailyRecord, now time.Time, allowance time.Duration) (LiveSnapshot, error) {
	var snap LiveSnapshot
	if rec.EntryTime == nil {
		return snap, unusable(rec, model.FieldEntryTime)
	}
	if rec.ShiftHours <= 0 {
		return snap, unusable(rec, model.FieldShiftHours)
	}

	until := now
	if rec.IsSet(model.FieldExitTime) {
		if rec.ExitTime == nil {
			return snap, unusable(rec, model.FieldExitTime)
		}
		until = *rec.ExitTime
		snap.ClockedOut = true
	}

	var deducted time.Duration
	switch {
	case !rec.IsSet(model.FieldLunchStartTime):
		snap.LunchState = LunchNotStarted
		snap.LunchRemaining = allowance
	case rec.LunchStartTime == nil:
		return snap, unusable(rec, model.FieldLunchStartTime)
	case rec.IsSet(model.FieldLunchEndTime):
		if rec.LunchEndTime == nil {
			return snap, unusable(rec, model.FieldLunchEndTime)
		}
		snap.LunchState = LunchCompleted
		snap.LunchElapsed = timecalc.LunchDuration(rec.LunchStartTime, rec.LunchEndTime)
		snap.LunchRemaining, _ = timecalc.FloorZero(allowance - snap.LunchElapsed)
		snap.OverrunBy, _ = timecalc.FloorZero(snap.LunchElapsed - allowance)
		deducted = snap.LunchElapsed
	default:
		snap.LunchElapsed = until.Sub(*rec.LunchStartTime)
		snap.LunchRemaining, snap.Overrun = timecalc.FloorZero(allowance - snap.LunchElapsed)
		snap.OverrunBy, _ = timecalc.FloorZero(snap.LunchElapsed - allowance)
		snap.LunchState = LunchInProgress
		if snap.Overrun {
			snap.LunchState = LunchOverrun
		}
		if !snap.ClockedOut {
			deducted = snap.LunchElapsed
		}
	}

	snap.TotalWorked = timecalc.NetWorked(*rec.EntryTime, until, deducted)
	snap.ShiftRemaining, _ = timecalc.FloorZero(timecalc.ShiftDuration(rec.ShiftHours) - snap.TotalWorked)
	return snap, nil
}

func unusable(rec model.DailyRecord, f model.Field) error {
	return &model.CalculationError{Field: f, Value: rec.Unparsed[f], Err: errUnusable}
}

// View is what the dashboard renders on one tick.
type View struct {
	LiveSnapshot
	// Blink alternates while the lunch is overrun.
	Blink bool
	// OverrunStarted is set on the first update that sees an overrun.
	OverrunStarted bool
}

// Display keeps the dashboard state that outlives a single tick. It is safe
// for use by the tick task and the blink task at the same time.
type Display struct {
	mu        sync.Mutex
	allowance time.Duration
	view      View
	latched   bool
	notified  bool
}

func NewDisplay(allowance time.Duration) *Display {
	return &Display{allowance: allowance}
}

// Update recomputes the view for rec at now. Once the lunch has been seen
// overrun it stays OVERRUN until the lunch is completed.
func (d *Display) Update(rec model.DailyRecord, now time.Time) (View, error) {
	snap, err := Tick(rec, now, d.allowance)
	if err != nil {
		return View{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch snap.LunchState {
	case LunchOverrun:
		d.latched = true
	case LunchInProgress:
		if d.latched {
			snap.LunchState = LunchOverrun
			snap.Overrun = true
		}
	case LunchCompleted, LunchNotStarted:
		d.latched = false
		d.view.Blink = false
	}

	d.view.LiveSnapshot = snap
	d.view.OverrunStarted = false
	if d.latched && !d.notified {
		d.notified = true
		d.view.OverrunStarted = true
	}
	return d.view, nil
}

// Blink flips the blink phase while an overrun is latched and returns it.
func (d *Display) Blink() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.latched {
		d.view.Blink = false
		return false
	}
	d.view.Blink = !d.view.Blink
	return d.view.Blink
}

// View returns the most recent view.
func (d *Display) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}
