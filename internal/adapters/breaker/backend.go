// Package breaker guards a table backend with a circuit breaker so a
// database that is down fails fast instead of stalling every kiosk action.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"timeclock.kiosk/internal/ports/table"
)

// Backend wraps another table.Backend. Reads and writes share one breaker.
type Backend struct {
	next table.Backend
	cb   *gobreaker.CircuitBreaker
}

// Settings returns the breaker settings used for a storage backend.
func Settings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is 50% or more after at least 4 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 4 && failureRatio >= 0.5
		},
		// A missing table is an answer, not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, table.ErrNotExist)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("storage breaker state changed")
		},
	}
}

// New wraps next with a breaker built from settings.
func New(next table.Backend, settings gobreaker.Settings) *Backend {
	return &Backend{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Backend) Read(ctx context.Context) (*table.Table, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Read(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*table.Table), nil
}

func (b *Backend) Write(ctx context.Context, t *table.Table) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Write(ctx, t)
	})
	return err
}

func (b *Backend) Location() string { return b.next.Location() }

// State reports the breaker's current state.
func (b *Backend) State() gobreaker.State { return b.cb.State() }
