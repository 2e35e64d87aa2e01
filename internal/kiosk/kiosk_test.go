package kiosk

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"timeclock.kiosk/internal/core"
	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/core/session"
	"timeclock.kiosk/internal/ports/repository"
	"timeclock.kiosk/internal/ports/table"
)

func newEngine(t *testing.T, now time.Time) (*core.ClockService, *table.Memory) {
	t.Helper()
	directory := repository.EmployeeSchema.Empty()
	directory.Rows = [][]string{{"E1", "Ana Ruiz", "30", "Cook", "6"}}
	records := table.NewMemory("records", nil)

	repo := repository.NewTimesheetRepository(table.NewMemory("employees", directory), records, time.UTC)
	if err := repo.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	svc := core.NewClockService(repo, nil, core.Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	return svc, records
}

func runKiosk(t *testing.T, engine Engine, input string) string {
	t.Helper()
	var out bytes.Buffer
	k := New(engine, strings.NewReader(input), &out, Options{TickInterval: time.Hour, BlinkInterval: time.Hour})
	if err := k.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestKiosk_FullDay(t *testing.T) {
	svc, records := newEngine(t, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	out := runKiosk(t, svc, "e1\n\nstatus\nlunch\nback\nout\nexit\n")

	for _, want := range []string{
		"Shift length in hours [4/5/6/7] (default 6",
		"Entry recorded at 08:00:00",
		"Ana Ruiz (Cook), 2026-03-02",
		"Lunch started at 08:00:00",
		"Lunch ended at 08:00:00 after 0 minutes",
		"Clocked out at 08:00:00. Worked 0.00 h, overtime 0 min, lunch 0 min",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	rows := records.Snapshot().Rows
	if len(rows) != 1 || rows[0][5] != "6" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestKiosk_ResumeAndErrors(t *testing.T) {
	svc, _ := newEngine(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	if _, err := svc.ClockIn(context.Background(), "E1", 4); err != nil {
		t.Fatalf("clock in: %v", err)
	}

	out := runKiosk(t, svc, "nobody\nE1\nback\ndance\nhelp\nlogout\n")

	for _, want := range []string{
		"Employee ID NOBODY was not found.",
		"Welcome back, Ana Ruiz.",
		"Not allowed: lunch has not started.",
		`Unknown command "dance"`,
		"Commands: back, help, logout, lunch, out, status",
		"Session closed for Ana Ruiz.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestKiosk_ShiftPrompt(t *testing.T) {
	svc, records := newEngine(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	out := runKiosk(t, svc, "E1\nabc\n-2\ncancel\n")
	if strings.Count(out, "Please enter a positive number of hours.") != 2 {
		t.Fatalf("output:\n%s", out)
	}
	if len(records.Snapshot().Rows) != 0 {
		t.Fatalf("cancelled login created a record")
	}

	out = runKiosk(t, svc, "E1\n4,5\nout\n")
	if !strings.Contains(out, "Worked 0.00 h") {
		t.Fatalf("output:\n%s", out)
	}
	status, err := svc.GetTodayStatus(context.Background(), "E1")
	if err != nil || status.Status != model.StatusComplete || status.Record.ShiftHours != 4.5 {
		t.Fatalf("status = %+v, %v", status, err)
	}

	out = runKiosk(t, svc, "E1\n")
	if !strings.Contains(out, "already complete") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestRender_Overrun(t *testing.T) {
	svc, _ := newEngine(t, time.Date(2026, 3, 2, 13, 5, 0, 0, time.UTC))
	start := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	entry := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	s := svc.StartSession(model.Employee{ID: "E1", FullName: "Ana Ruiz", Title: "Cook"},
		model.DailyRecord{EmployeeID: "E1", Date: "2026-03-02", EntryTime: &entry, ShiftHours: 6, LunchStartTime: &start})

	k := New(svc, strings.NewReader(""), &bytes.Buffer{}, Options{})
	d := &dashboard{k: k, session: s, display: session.NewDisplay(svc.LunchAllowance())}
	view, err := d.refresh()
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !view.OverrunStarted {
		t.Fatalf("overrun not detected")
	}
	d.display.Blink()
	text := render(s, d.display.View())
	if !strings.Contains(text, "!! OVERRUN by 00:05:00") {
		t.Fatalf("render:\n%s", text)
	}
}
