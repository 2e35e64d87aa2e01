package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/core/timecalc"
	"timeclock.kiosk/internal/ports/messaging"
	"timeclock.kiosk/internal/ports/repository"
	"timeclock.kiosk/pkg/logger"
	"timeclock.kiosk/pkg/telemetry"
)

const tracerName = "timeclock.kiosk/core"

var (
	errUnparsable = errors.New("value could not be parsed")
	errMissing    = errors.New("value is missing")
	errNegative   = errors.New("time is earlier than the event it closes")
)

// Options tunes a ClockService. Zero values fall back to the defaults below.
type Options struct {
	Location          *time.Location
	Now               func() time.Time
	LunchAllowance    time.Duration
	DefaultShiftHours float64
	ShiftChoices      []float64
}

// Defaults used when Options leaves a value unset.
const (
	DefaultLunchAllowance = 60 * time.Minute
	DefaultShiftHours     = 7.0
)

// DefaultShiftChoices are the shift lengths offered at login.
var DefaultShiftChoices = []float64{4, 5, 6, 7}

// ClockService is the event engine. Every operation performs one
// read-modify-write cycle against the repository while holding the
// service lock, so operations within one process never interleave.
// Separate processes sharing the same tables are not coordinated: the
// last writer wins.
type ClockService struct {
	mu        sync.Mutex
	repo      repository.Repository
	publisher messaging.Publisher

	now            func() time.Time
	loc            *time.Location
	lunchAllowance time.Duration
	defaultShift   float64
	shiftChoices   []float64
}

// NewClockService creates the event engine on top of the repository. Each
// committed event is handed to publisher; a nil publisher drops them.
func NewClockService(repo repository.Repository, publisher messaging.Publisher, opts Options) *ClockService {
	s := &ClockService{
		repo:           repo,
		publisher:      publisher,
		now:            opts.Now,
		loc:            opts.Location,
		lunchAllowance: opts.LunchAllowance,
		defaultShift:   opts.DefaultShiftHours,
		shiftChoices:   append([]float64(nil), opts.ShiftChoices...),
	}
	if s.publisher == nil {
		s.publisher = messaging.NopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.lunchAllowance <= 0 {
		s.lunchAllowance = DefaultLunchAllowance
	}
	if s.defaultShift <= 0 {
		s.defaultShift = DefaultShiftHours
	}
	if len(s.shiftChoices) == 0 {
		s.shiftChoices = append([]float64(nil), DefaultShiftChoices...)
	}
	return s
}

// LunchAllowance is the lunch length before the tracker reports an overrun.
func (s *ClockService) LunchAllowance() time.Duration { return s.lunchAllowance }

// Now returns the service clock in the store's location, truncated to the
// second precision that is persisted.
func (s *ClockService) Now() time.Time {
	return s.now().In(s.loc).Truncate(time.Second)
}

// GetEmployee looks an employee up in the directory.
func (s *ClockService) GetEmployee(ctx context.Context, employeeID string) (model.Employee, error) {
	id := model.NormalizeEmployeeID(employeeID)
	if id == "" {
		return model.Employee{}, &model.ValidationError{Reason: "employee id is required"}
	}
	return s.findEmployee(ctx, id)
}

func (s *ClockService) findEmployee(ctx context.Context, id string) (model.Employee, error) {
	employees, err := s.repo.LoadEmployees(ctx)
	if err != nil {
		return model.Employee{}, err
	}
	for _, e := range employees {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Employee{}, &model.NotFoundError{EmployeeID: id}
}

// GetTodayStatus reports whether the employee has no record today, an open
// one, or a completed one.
func (s *ClockService) GetTodayStatus(ctx context.Context, employeeID string) (model.TodayStatus, error) {
	id := model.NormalizeEmployeeID(employeeID)
	set, err := s.repo.LoadRecords(ctx)
	if err != nil {
		return model.TodayStatus{}, err
	}
	rec, ok := set.Find(id, s.Now().Format(model.DateLayout))
	if !ok {
		return model.TodayStatus{Status: model.StatusNone}, nil
	}
	return model.TodayStatus{Status: rec.Status(), Record: &rec}, nil
}

// Login runs the kiosk login flow. An employee with an open record gets a
// resumed session. One with no record today gets NeedsShift and the shift
// choices; the caller then calls ClockIn and StartSession.
func (s *ClockService) Login(ctx context.Context, employeeID string) (*model.LoginResult, error) {
	id := model.NormalizeEmployeeID(employeeID)
	ctx, span := traced(ctx, "login", id)

	res, err := s.login(ctx, id)
	s.logOutcome(ctx, "login", err)
	telemetry.EndSpan(span, err)
	return res, err
}

func (s *ClockService) login(ctx context.Context, id string) (*model.LoginResult, error) {
	if id == "" {
		return nil, &model.ValidationError{Reason: "employee id is required"}
	}
	emp, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	status, err := s.GetTodayStatus(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &model.LoginResult{Employee: emp}
	switch status.Status {
	case model.StatusComplete:
		return nil, &model.ValidationError{EmployeeID: id, Reason: "the work day is already complete"}
	case model.StatusPartial:
		res.Session = s.StartSession(emp, *status.Record)
	default:
		res.NeedsShift = true
		res.DefaultShift = s.defaultShift
		if emp.DefaultShiftHours > 0 {
			res.DefaultShift = emp.DefaultShiftHours
		}
		res.ShiftChoices = append([]float64(nil), s.shiftChoices...)
	}
	return res, nil
}

// StartSession opens a session for a record returned by ClockIn or Login.
func (s *ClockService) StartSession(emp model.Employee, rec model.DailyRecord) *model.Session {
	return &model.Session{Employee: emp, Record: rec.Clone(), StartedAt: s.Now()}
}

// ClockIn creates today's record. When a record already exists and is still
// open, it is returned unchanged so that a resumed session can call ClockIn
// again safely.
func (s *ClockService) ClockIn(ctx context.Context, employeeID string, shiftHours float64) (model.DailyRecord, error) {
	return s.run(ctx, model.EventClockIn, employeeID, func(ctx context.Context, id string, now time.Time) (model.DailyRecord, error) {
		set, err := s.repo.LoadRecords(ctx)
		if err != nil {
			return model.DailyRecord{}, err
		}
		today := now.Format(model.DateLayout)
		if existing, ok := set.Find(id, today); ok {
			if existing.IsTerminal() {
				return model.DailyRecord{}, &model.ValidationError{EmployeeID: id, Event: model.EventClockIn, Reason: "already clocked out today"}
			}
			log.Ctx(ctx).Info().Msg("clock-in already recorded today; returning existing record")
			return existing, errUnchanged
		}

		if !(shiftHours > 0) || math.IsInf(shiftHours, 0) {
			return model.DailyRecord{}, &model.ValidationError{EmployeeID: id, Event: model.EventClockIn, Reason: fmt.Sprintf("shift length must be a positive number of hours, got %v", shiftHours)}
		}
		emp, err := s.findEmployee(ctx, id)
		if err != nil {
			return model.DailyRecord{}, err
		}

		entry := now
		rec := model.DailyRecord{
			EmployeeID: id,
			FullName:   emp.FullName,
			Title:      emp.Title,
			Date:       today,
			EntryTime:  &entry,
			ShiftHours: shiftHours,
		}
		if err := set.Insert(rec); err != nil {
			return model.DailyRecord{}, err
		}
		if err := s.repo.SaveRecords(ctx, set); err != nil {
			return model.DailyRecord{}, err
		}
		return rec, nil
	})
}

// StartLunch stamps the start of lunch on today's record.
func (s *ClockService) StartLunch(ctx context.Context, employeeID string) (model.DailyRecord, error) {
	return s.mutateToday(ctx, model.EventStartLunch, employeeID, func(rec *model.DailyRecord, now time.Time) error {
		if !rec.IsSet(model.FieldEntryTime) {
			return &model.ValidationError{EmployeeID: rec.EmployeeID, Event: model.EventStartLunch, Reason: "not clocked in today"}
		}
		if rec.IsSet(model.FieldLunchStartTime) {
			return &model.ValidationError{EmployeeID: rec.EmployeeID, Event: model.EventStartLunch, Reason: "lunch has already started"}
		}
		rec.LunchStartTime = &now
		return nil
	})
}

// EndLunch stamps the end of lunch and records its length in minutes.
func (s *ClockService) EndLunch(ctx context.Context, employeeID string) (model.DailyRecord, error) {
	return s.mutateToday(ctx, model.EventEndLunch, employeeID, func(rec *model.DailyRecord, now time.Time) error {
		if !rec.IsSet(model.FieldLunchStartTime) {
			return &model.ValidationError{EmployeeID: rec.EmployeeID, Event: model.EventEndLunch, Reason: "lunch has not started"}
		}
		if rec.IsSet(model.FieldLunchEndTime) {
			return &model.ValidationError{EmployeeID: rec.EmployeeID, Event: model.EventEndLunch, Reason: "lunch has already ended"}
		}
		rec.LunchEndTime = &now

		if rec.LunchStartTime == nil {
			return calcError(*rec, model.FieldLunchStartTime)
		}
		lunch := timecalc.LunchDuration(rec.LunchStartTime, rec.LunchEndTime)
		if lunch < 0 {
			return negativeError(model.FieldLunchEndTime, now)
		}
		minutes := timecalc.RoundMinutes(lunch)
		rec.LunchMinutes = &minutes
		return nil
	})
}

// ClockOut stamps the exit time and computes worked hours and overtime. The
// record is terminal afterwards.
func (s *ClockService) ClockOut(ctx context.Context, employeeID string) (model.DailyRecord, error) {
	return s.mutateToday(ctx, model.EventClockOut, employeeID, func(rec *model.DailyRecord, now time.Time) error {
		if !rec.IsSet(model.FieldEntryTime) {
			return &model.ValidationError{EmployeeID: rec.EmployeeID, Event: model.EventClockOut, Reason: "not clocked in today"}
		}
		rec.ExitTime = &now
		return ComputeTotals(rec)
	})
}

// ComputeTotals fills WorkedHours and OvertimeMinutes of a clocked-out
// record. A lunch counts only when both its ends are recorded. Times that
// run backwards leave the totals unset.
func ComputeTotals(rec *model.DailyRecord) error {
	if rec.EntryTime == nil {
		return calcError(*rec, model.FieldEntryTime)
	}
	if rec.ExitTime == nil {
		return calcError(*rec, model.FieldExitTime)
	}
	var lunch time.Duration
	if rec.IsSet(model.FieldLunchStartTime) && rec.IsSet(model.FieldLunchEndTime) {
		if rec.LunchStartTime == nil {
			return calcError(*rec, model.FieldLunchStartTime)
		}
		if rec.LunchEndTime == nil {
			return calcError(*rec, model.FieldLunchEndTime)
		}
		lunch = timecalc.LunchDuration(rec.LunchStartTime, rec.LunchEndTime)
		if lunch < 0 {
			return negativeError(model.FieldLunchEndTime, *rec.LunchEndTime)
		}
	}
	if rec.ShiftHours <= 0 {
		return calcError(*rec, model.FieldShiftHours)
	}

	net := timecalc.NetWorked(*rec.EntryTime, *rec.ExitTime, lunch)
	if net < 0 {
		return negativeError(model.FieldExitTime, *rec.ExitTime)
	}
	hours := timecalc.WorkedHours(net)
	overtime := timecalc.OvertimeMinutes(net, rec.ShiftHours)
	rec.WorkedHours = &hours
	rec.OvertimeMinutes = &overtime
	return nil
}

func negativeError(f model.Field, at time.Time) *model.CalculationError {
	return &model.CalculationError{Field: f, Value: at.Format(model.TimeLayout), Err: errNegative}
}

func calcError(rec model.DailyRecord, f model.Field) *model.CalculationError {
	if raw, ok := rec.Unparsed[f]; ok {
		return &model.CalculationError{Field: f, Value: raw, Err: errUnparsable}
	}
	return &model.CalculationError{Field: f, Err: errMissing}
}

// traced starts the operation span and attaches a logger tagged with the
// employee and the trace.
func traced(ctx context.Context, op, id string) (context.Context, trace.Span) {
	ctx, span := telemetry.StartEmployeeSpan(ctx, tracerName, op, id)
	ctx = logger.WithEmployee(ctx, telemetry.GetEmployeeIDFromContext(ctx))
	return logger.EnrichContextWithLogger(ctx), span
}

// errUnchanged tells run that the operation succeeded without writing.
var errUnchanged = errors.New("unchanged")

type operation func(ctx context.Context, id string, now time.Time) (model.DailyRecord, error)

// run serializes op, wraps it in a span and a tagged logger, and publishes
// the committed record.
func (s *ClockService) run(ctx context.Context, kind model.EventKind, employeeID string, op operation) (model.DailyRecord, error) {
	id := model.NormalizeEmployeeID(employeeID)
	ctx, span := traced(ctx, string(kind), id)

	var (
		rec model.DailyRecord
		err error
	)
	if id == "" {
		err = &model.ValidationError{Event: kind, Reason: "employee id is required"}
	} else {
		s.mu.Lock()
		now := s.Now()
		rec, err = op(ctx, id, now)
		s.mu.Unlock()

		committed := err == nil
		var calcErr *model.CalculationError
		if errors.As(err, &calcErr) {
			committed = true
		}
		if errors.Is(err, errUnchanged) {
			err = nil
		} else if committed {
			s.publish(ctx, kind, rec, now)
		}
	}

	s.logOutcome(ctx, string(kind), err)
	telemetry.EndSpan(span, err)
	return rec, err
}

// mutateToday loads today's record for the employee, applies step and saves
// the table. A CalculationError from step still saves the record.
func (s *ClockService) mutateToday(ctx context.Context, kind model.EventKind, employeeID string, step func(rec *model.DailyRecord, now time.Time) error) (model.DailyRecord, error) {
	return s.run(ctx, kind, employeeID, func(ctx context.Context, id string, now time.Time) (model.DailyRecord, error) {
		set, err := s.repo.LoadRecords(ctx)
		if err != nil {
			return model.DailyRecord{}, err
		}
		rec, ok := set.Find(id, now.Format(model.DateLayout))
		if !ok {
			return model.DailyRecord{}, &model.ValidationError{EmployeeID: id, Event: kind, Reason: "not clocked in today"}
		}
		if rec.IsTerminal() {
			return model.DailyRecord{}, &model.ValidationError{EmployeeID: id, Event: kind, Reason: "already clocked out today"}
		}

		stepErr := step(&rec, now)
		var validationErr *model.ValidationError
		if errors.As(stepErr, &validationErr) {
			return model.DailyRecord{}, stepErr
		}

		if err := set.Replace(rec); err != nil {
			return model.DailyRecord{}, err
		}
		if err := s.repo.SaveRecords(ctx, set); err != nil {
			return model.DailyRecord{}, err
		}
		return rec, stepErr
	})
}

func (s *ClockService) publish(ctx context.Context, kind model.EventKind, rec model.DailyRecord, at time.Time) {
	if err := s.publisher.Publish(ctx, messaging.NewClockEvent(kind, rec, at)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event", string(kind)).Msg("failed to journal event")
	}
}

func (s *ClockService) logOutcome(ctx context.Context, op string, err error) {
	var (
		validationErr *model.ValidationError
		notFoundErr   *model.NotFoundError
	)
	var evt *zerolog.Event
	switch {
	case err == nil:
		evt = log.Ctx(ctx).Info()
	case errors.As(err, &validationErr), errors.As(err, &notFoundErr):
		evt = log.Ctx(ctx).Warn().Err(err)
	default:
		evt = log.Ctx(ctx).Error().Err(err)
	}
	evt.Str("op", op).Msg("clock operation finished")
}
