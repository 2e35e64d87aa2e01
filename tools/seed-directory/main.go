package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"timeclock.kiosk/internal/adapters/store"
	"timeclock.kiosk/internal/config"
	"timeclock.kiosk/internal/core/model"
	"timeclock.kiosk/internal/ports/repository"
	"timeclock.kiosk/internal/ports/table"
	"timeclock.kiosk/pkg/logger"
)

// A small directory for trying the kiosk locally
var sampleEmployees = []model.Employee{
	{ID: "E001", FullName: "Ana Ruiz", Age: 34, Title: "Cook", DefaultShiftHours: 7},
	{ID: "E002", FullName: "Luis Mora", Age: 41, Title: "Driver", DefaultShiftHours: 6},
	{ID: "E003", FullName: "Marta Gil", Age: 27, Title: "Cashier", DefaultShiftHours: 5},
	{ID: "E004", FullName: "Pedro Sanz", Age: 52, Title: "Warehouse", DefaultShiftHours: 7},
	{ID: "E005", FullName: "Lucia Vega", Age: 23, Title: "Intern", DefaultShiftHours: 4},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup(true, cfg.LogLevel)

	ctx := context.Background()
	employees, _, closeStore, err := store.Backends(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not open the store")
	}
	defer closeStore()

	existing, err := employees.Read(ctx)
	switch {
	case errors.Is(err, table.ErrNotExist):
	case err != nil:
		log.Fatal().Err(err).Str("location", employees.Location()).Msg("Could not read the directory")
	case len(repository.EmployeeSchema.Conform(existing).Table.Rows) > 0:
		log.Warn().Str("location", employees.Location()).Msg("Directory already has employees; leaving it alone")
		return
	}

	t := repository.EmployeeSchema.Empty()
	for _, e := range sampleEmployees {
		t.Rows = append(t.Rows, repository.EncodeEmployee(e))
	}
	if err := employees.Write(ctx, t); err != nil {
		log.Fatal().Err(err).Msg("Could not write the directory")
	}
	log.Info().Int("employees", len(sampleEmployees)).Str("location", employees.Location()).Msg("Directory seeded")
}
