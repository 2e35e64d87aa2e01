package messaging

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"timeclock.kiosk/internal/core/model"
)

func TestJournal_AppendsOneLinePerEvent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "events.jsonl")
	journal := NewJournal(path)

	entry := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	exit := entry.Add(5 * time.Hour)
	worked, overtime := 5.0, 60
	rec := model.DailyRecord{
		EmployeeID: "E1", Date: "2026-03-02", ShiftHours: 4,
		EntryTime: &entry, ExitTime: &exit, WorkedHours: &worked, OvertimeMinutes: &overtime,
	}

	if err := journal.Publish(ctx, NewClockEvent(model.EventClockIn, rec, entry)); err != nil {
		t.Fatalf("publish clock_in: %v", err)
	}
	if err := journal.Publish(ctx, NewClockEvent(model.EventClockOut, rec, exit)); err != nil {
		t.Fatalf("publish clock_out: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	var events []ClockEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev ClockEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Event != model.EventClockIn || events[1].Event != model.EventClockOut {
		t.Fatalf("events = %+v", events)
	}
	last := events[1]
	if last.EmployeeID != "E1" || !last.OccurredAt.Equal(exit) || *last.WorkedHours != 5 || *last.OvertimeMinutes != 60 {
		t.Fatalf("clock_out event = %+v", last)
	}
	if last.TraceID != "" {
		t.Fatalf("trace id set without a span: %q", last.TraceID)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), ClockEvent{}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
