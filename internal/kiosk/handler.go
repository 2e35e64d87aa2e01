package kiosk

import (
	"context"
	"fmt"
	"strings"

	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/core/session"
	"timeclock.kiosk/internal/core/timecalc"
)

func startLunch(ctx context.Context, d *dashboard) (bool, error) {
	rec, err := d.k.engine.StartLunch(ctx, d.session.EmployeeID())
	if err != nil {
		return false, err
	}
	d.apply(rec)
	d.k.printf("Lunch started at %s. Enjoy your meal.\n", rec.LunchStartTime.Format(model.TimeLayout))
	return false, nil
}

func endLunch(ctx context.Context, d *dashboard) (bool, error) {
	rec, err := d.k.engine.EndLunch(ctx, d.session.EmployeeID())
	d.apply(rec)
	if err != nil {
		return false, err
	}
	d.k.printf("Lunch ended at %s after %d minutes.\n", rec.LunchEndTime.Format(model.TimeLayout), *rec.LunchMinutes)
	return false, nil
}

func clockOut(ctx context.Context, d *dashboard) (bool, error) {
	rec, err := d.k.engine.ClockOut(ctx, d.session.EmployeeID())
	d.apply(rec)
	if err != nil {
		// The exit time is saved even when totals could not be computed.
		return rec.IsTerminal(), err
	}
	d.k.printf("Clocked out at %s. Worked %.2f h, overtime %d min",
		rec.ExitTime.Format(model.TimeLayout), *rec.WorkedHours, *rec.OvertimeMinutes)
	if rec.LunchMinutes != nil {
		d.k.printf(", lunch %d min", *rec.LunchMinutes)
	}
	d.k.printf(". Goodbye, %s.\n", d.session.Employee.FullName)
	return true, nil
}

func showStatus(ctx context.Context, d *dashboard) (bool, error) {
	view, err := d.refresh()
	if err != nil {
		return false, err
	}
	d.k.printf("%s", render(d.session, view))
	return false, nil
}

func logout(ctx context.Context, d *dashboard) (bool, error) {
	d.k.printf("Session closed for %s.\n", d.session.Employee.FullName)
	return true, nil
}

func help(ctx context.Context, d *dashboard) (bool, error) {
	d.k.printf("Commands: %s\n", strings.Join(d.k.router.names(), ", "))
	return false, nil
}

// render formats the dashboard for one view.
func render(s *model.Session, v session.View) string {
	var b strings.Builder
	rec := s.Record

	fmt.Fprintf(&b, "%s (%s), %s\n", s.Employee.FullName, s.Employee.Title, rec.Date)
	if rec.EntryTime != nil {
		fmt.Fprintf(&b, "  Entry            %s   shift %gh\n", rec.EntryTime.Format(model.TimeLayout), rec.ShiftHours)
	}
	fmt.Fprintf(&b, "  Shift remaining  %s\n", timecalc.Clock(v.ShiftRemaining))
	fmt.Fprintf(&b, "  Worked so far    %s\n", timecalc.Clock(v.TotalWorked))

	switch v.LunchState {
	case session.LunchNotStarted:
		fmt.Fprintf(&b, "  Lunch            not started\n")
	case session.LunchInProgress:
		fmt.Fprintf(&b, "  Lunch            %s left\n", timecalc.Clock(v.LunchRemaining))
	case session.LunchOverrun:
		marker := "  "
		if v.Blink {
			marker = "!!"
		}
		fmt.Fprintf(&b, "  Lunch         %s OVERRUN by %s\n", marker, timecalc.Clock(v.OverrunBy))
	case session.LunchCompleted:
		fmt.Fprintf(&b, "  Lunch            done, %s\n", timecalc.Clock(v.LunchElapsed))
	}
	if v.ClockedOut {
		fmt.Fprintf(&b, "  Clocked out      %s\n", rec.ExitTime.Format(model.TimeLayout))
	}
	return b.String()
}
