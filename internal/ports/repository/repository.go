package repository

import (
	"context"

	"timeclock.kiosk/internal/core/model"
)

// Repository contract
type Repository interface {
	// Ensure creates missing tables and upgrades existing ones to the
	// canonical column set. It is safe to call on every start.
	Ensure(ctx context.Context) error
	LoadEmployees(ctx context.Context) ([]model.Employee, error)
	LoadRecords(ctx context.Context) (*RecordSet, error)
	SaveRecords(ctx context.Context, records *RecordSet) error
}
