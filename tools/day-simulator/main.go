package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"timeclock.kiosk/internal/adapters/xlsx"
	"timeclock.kiosk/internal/core"
	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/core/session"
	"timeclock.kiosk/internal/ports/messaging"
	"timeclock.kiosk/internal/ports/repository"
	"timeclock.kiosk/internal/ports/table"
	"timeclock.kiosk/pkg/logger"
)

// simClock is the virtual wall clock shared by every simulated employee.
type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// phase is one instant of the simulated day at which every employee
// selected by who performs the same event.
type phase struct {
	at  time.Duration
	who func(i int) bool
	run func(ctx context.Context, i int) (model.DailyRecord, error)
}

func employeeID(i int) string { return fmt.Sprintf("SIM-%04d", i) }

func everyone(int) bool { return true }

func main() {
	// Configuration
	numEmployees := 200
	concurrency := 20 // Number of employees acting at the same instant
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	logger.Setup(true, "warn")
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "timeclock-sim-*")
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create work dir")
	}
	defer os.RemoveAll(dir)

	directory := repository.EmployeeSchema.Empty()
	for i := 0; i < numEmployees; i++ {
		directory.Rows = append(directory.Rows, repository.EncodeEmployee(model.Employee{
			ID: employeeID(i), FullName: fmt.Sprintf("Employee %d", i), Title: "Simulated",
		}))
	}
	records := xlsx.NewBackend(filepath.Join(dir, "registro_personal.xlsx"), "")
	repo := repository.NewTimesheetRepository(table.NewMemory("employees", directory), records, time.Local)
	if err := repo.Ensure(ctx); err != nil {
		log.Fatal().Err(err).Msg("Could not initialize store")
	}

	clock := &simClock{now: day}
	journalPath := filepath.Join(dir, "eventos.jsonl")
	svc := core.NewClockService(repo, messaging.NewJournal(journalPath), core.Options{Location: time.Local, Now: clock.Now})

	event := func(op func(context.Context, string) (model.DailyRecord, error)) func(context.Context, int) (model.DailyRecord, error) {
		return func(ctx context.Context, i int) (model.DailyRecord, error) { return op(ctx, employeeID(i)) }
	}
	// Every fifth employee comes back late from lunch.
	late := func(i int) bool { return i%5 == 0 }
	phases := []phase{
		{8 * time.Hour, everyone, func(ctx context.Context, i int) (model.DailyRecord, error) {
			choices := core.DefaultShiftChoices
			return svc.ClockIn(ctx, employeeID(i), choices[i%len(choices)])
		}},
		{12 * time.Hour, everyone, event(svc.StartLunch)},
		{12*time.Hour + 50*time.Minute, func(i int) bool { return !late(i) }, event(svc.EndLunch)},
		{13*time.Hour + 10*time.Minute, late, event(svc.EndLunch)},
		{15*time.Hour + 30*time.Minute, everyone, event(svc.ClockOut)},
	}

	fmt.Printf("Simulating a day for %d employees with concurrency %d in %s\n", numEmployees, concurrency, dir)

	var failCount int64
	startTime := time.Now()
	for _, p := range phases {
		clock.Set(day.Add(p.at))

		var wg sync.WaitGroup
		sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency
		for i := 0; i < numEmployees; i++ {
			if !p.who(i) {
				continue
			}
			wg.Add(1)
			sem <- struct{}{} // Acquire token
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }() // Release token
				if _, err := p.run(ctx, i); err != nil {
					atomic.AddInt64(&failCount, 1)
					fmt.Printf("%s: %s\n", employeeID(i), model.Describe(err))
				}
			}(i)
		}
		wg.Wait()
	}
	duration := time.Since(startTime)

	set, err := repo.LoadRecords(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not reload records")
	}

	journal, err := os.ReadFile(journalPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not read journal")
	}

	var totalHours float64
	var totalOvertime, overruns int
	for _, rec := range set.Records() {
		if rec.WorkedHours != nil {
			totalHours += *rec.WorkedHours
		}
		if rec.OvertimeMinutes != nil {
			totalOvertime += *rec.OvertimeMinutes
		}
		snap, err := session.Tick(rec, clock.Now(), svc.LunchAllowance())
		if err == nil && snap.OverrunBy > 0 {
			overruns++
		}
	}

	fmt.Println("\n--- Day Simulation Results ---")
	fmt.Printf("Wall Duration:   %v\n", duration)
	fmt.Printf("Records:         %d (expected %d)\n", set.Len(), numEmployees)
	fmt.Printf("Failed events:   %d\n", failCount)
	fmt.Printf("Hours worked:    %.2f\n", totalHours)
	fmt.Printf("Overtime (min):  %d\n", totalOvertime)
	fmt.Printf("Lunch overruns:  %d\n", overruns)
	fmt.Printf("Journal lines:   %d\n", bytes.Count(journal, []byte("\n")))
}
