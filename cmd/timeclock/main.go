// Entry point for the time clock kiosk
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"timeclock.kiosk/internal/adapters/store"
	"timeclock.kiosk/internal/config"
	"timeclock.kiosk/internal/core"
	"timeclock.kiosk/internal/kiosk"
	"timeclock.kiosk/internal/ports/messaging"
	"timeclock.kiosk/pkg/logger"
	"timeclock.kiosk/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging; stdout belongs to the kiosk prompts
	logger.Setup(cfg.IsLocalDev, cfg.LogLevel)

	// Configure OpenTelemetry Tracing
	var traceOut io.Writer = os.Stderr
	if cfg.TraceFile != "" {
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open trace file")
		}
		defer f.Close()
		traceOut = f
	}
	shutdownTracer, err := telemetry.InitTracer("timeclock-kiosk", cfg.TraceExporter, cfg.TraceEndpoint, traceOut)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid time zone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the tables; the kiosk has no degraded mode without them
	repo, closeStore, err := store.Open(ctx, cfg, loc)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Could not initialize the time sheet")
	}
	defer closeStore()
	log.Info().Str("backend", cfg.StoreBackend).Msg("Time sheet ready")

	// Initialize dependencies
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.JournalPath != "" {
		publisher = messaging.NewJournal(cfg.JournalPath)
	}
	service := core.NewClockService(repo, publisher, core.Options{
		Location:          loc,
		LunchAllowance:    cfg.LunchAllowance,
		DefaultShiftHours: cfg.DefaultShiftHours,
		ShiftChoices:      cfg.ShiftChoices,
	})

	k := kiosk.New(service, os.Stdin, os.Stdout, kiosk.Options{
		TickInterval:  cfg.TickInterval,
		BlinkInterval: cfg.BlinkInterval,
	})

	// The kiosk blocks on stdin, so a signal ends the process from here
	done := make(chan error, 1)
	go func() { done <- k.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("Kiosk stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down kiosk...")
	}
	log.Info().Msg("Kiosk exiting")
}
