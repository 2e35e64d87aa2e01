// Package kiosk is the line-oriented terminal front end of the time clock.
// It only collects input and renders results; every rule lives in the
// clock service.
package kiosk

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/core/session"
	"timeclock.kiosk/internal/worker"
)

// Engine is the part of the clock service the kiosk drives.
type Engine interface {
	Login(ctx context.Context, employeeID string) (*model.LoginResult, error)
	ClockIn(ctx context.Context, employeeID string, shiftHours float64) (model.DailyRecord, error)
	StartLunch(ctx context.Context, employeeID string) (model.DailyRecord, error)
	EndLunch(ctx context.Context, employeeID string) (model.DailyRecord, error)
	ClockOut(ctx context.Context, employeeID string) (model.DailyRecord, error)
	StartSession(emp model.Employee, rec model.DailyRecord) *model.Session
	Now() time.Time
	LunchAllowance() time.Duration
}

// Options sets the dashboard refresh rates.
type Options struct {
	TickInterval  time.Duration
	BlinkInterval time.Duration
}

// Kiosk reads commands from in and writes prompts and results to out.
type Kiosk struct {
	engine Engine
	router *router
	opts   Options

	in *bufio.Scanner

	outMu sync.Mutex
	out   io.Writer
}

func New(engine Engine, in io.Reader, out io.Writer, opts Options) *Kiosk {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.BlinkInterval <= 0 {
		opts.BlinkInterval = 500 * time.Millisecond
	}
	return &Kiosk{
		engine: engine,
		router: newRouter(),
		opts:   opts,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (k *Kiosk) printf(format string, args ...any) {
	k.outMu.Lock()
	defer k.outMu.Unlock()
	fmt.Fprintf(k.out, format, args...)
}

// readLine prompts and reads one line. ok is false at end of input.
func (k *Kiosk) readLine(prompt string) (string, bool) {
	k.printf("%s", prompt)
	if !k.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(k.in.Text()), true
}

// Run serves one employee after another until the input ends, "exit" is
// entered at the login prompt, or ctx is cancelled.
func (k *Kiosk) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		id, ok := k.readLine("\nEmployee ID (or 'exit'): ")
		if !ok {
			return k.in.Err()
		}
		if id == "" {
			continue
		}
		if strings.EqualFold(id, "exit") {
			return nil
		}

		s, ok := k.login(ctx, id)
		if !ok {
			continue
		}
		if !k.serve(ctx, s) {
			return k.in.Err()
		}
	}
	return ctx.Err()
}

// login runs the login flow and returns the session to serve.
func (k *Kiosk) login(ctx context.Context, id string) (*model.Session, bool) {
	res, err := k.engine.Login(ctx, id)
	if err != nil {
		k.printf("%s\n", model.Describe(err))
		return nil, false
	}
	if res.Session != nil {
		k.printf("Welcome back, %s.\n", res.Employee.FullName)
		return res.Session, true
	}

	shift, ok := k.askShift(res)
	if !ok {
		return nil, false
	}
	rec, err := k.engine.ClockIn(ctx, res.Employee.ID, shift)
	if err != nil {
		k.printf("%s\n", model.Describe(err))
		return nil, false
	}
	k.printf("Good morning, %s. Entry recorded at %s.\n", res.Employee.FullName, rec.EntryTime.Format(model.TimeLayout))
	return k.engine.StartSession(res.Employee, rec), true
}

// askShift collects the shift length. An empty answer takes the default,
// "cancel" goes back to the login prompt.
func (k *Kiosk) askShift(res *model.LoginResult) (float64, bool) {
	choices := make([]string, len(res.ShiftChoices))
	for i, c := range res.ShiftChoices {
		choices[i] = strconv.FormatFloat(c, 'f', -1, 64)
	}
	prompt := fmt.Sprintf("Shift length in hours [%s] (default %g, 'cancel' to go back): ",
		strings.Join(choices, "/"), res.DefaultShift)

	for {
		answer, ok := k.readLine(prompt)
		if !ok || strings.EqualFold(answer, "cancel") {
			return 0, false
		}
		if answer == "" {
			return res.DefaultShift, true
		}
		h, err := strconv.ParseFloat(strings.Replace(answer, ",", ".", 1), 64)
		if err == nil && h > 0 {
			return h, true
		}
		k.printf("Please enter a positive number of hours.\n")
	}
}

// dashboard is the state of one logged-in session.
type dashboard struct {
	k       *Kiosk
	mu      sync.Mutex
	session *model.Session
	display *session.Display
}

func (d *dashboard) apply(rec model.DailyRecord) {
	if rec.EmployeeID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.session.Apply(rec)
}

func (d *dashboard) record() model.DailyRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Record.Clone()
}

func (d *dashboard) refresh() (session.View, error) {
	return d.display.Update(d.record(), d.k.engine.Now())
}

// serve runs the dashboard for s until the session ends. It returns false
// when the input ran out.
func (k *Kiosk) serve(ctx context.Context, s *model.Session) bool {
	d := &dashboard{k: k, session: s, display: session.NewDisplay(k.engine.LunchAllowance())}

	ctx, cancel := context.WithCancel(ctx)
	w := worker.NewWorker().
		Every("tick", k.opts.TickInterval, func(ctx context.Context) error {
			view, err := d.refresh()
			if err != nil {
				return err
			}
			if view.OverrunStarted {
				k.printf("\n*** Lunch time is over: %s past the allowance. Type 'back' to end lunch. ***\n", formatMinutes(view.OverrunBy))
			}
			return nil
		}).
		Every("blink", k.opts.BlinkInterval, func(ctx context.Context) error {
			d.display.Blink()
			return nil
		})
	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()
	defer func() {
		cancel()
		<-stopped
	}()

	if view, err := d.refresh(); err == nil {
		k.printf("%s", render(s, view))
	}
	k.printf("Type 'help' for commands.\n")

	for ctx.Err() == nil {
		line, ok := k.readLine("> ")
		if !ok {
			return false
		}
		if line == "" {
			continue
		}
		cmd, found := k.router.lookup(line)
		if !found {
			k.printf("Unknown command %q. Type 'help' for commands.\n", line)
			continue
		}
		done, err := cmd(ctx, d)
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("command", line).Msg("command failed")
			k.printf("%s\n", model.Describe(err))
		}
		if done {
			return true
		}
	}
	return true
}

func formatMinutes(d time.Duration) string {
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
