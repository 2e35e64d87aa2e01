package model

import (
	"errors"
	"fmt"
)

// StorageError reports that a table could not be read or written. Any
// in-memory change made by the failed operation has been discarded.
type StorageError struct {
	Op       string
	Location string
	Err      error
}

func (e *StorageError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError reports an event that the record's current state forbids.
type ValidationError struct {
	EmployeeID string
	Event      EventKind
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.Event == "" {
		return fmt.Sprintf("invalid request for %s: %s", e.EmployeeID, e.Reason)
	}
	return fmt.Sprintf("%s rejected for %s: %s", e.Event, e.EmployeeID, e.Reason)
}

// NotFoundError reports an employee id that is not in the directory.
type NotFoundError struct {
	EmployeeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %q not found", e.EmployeeID)
}

// CalculationError reports a derived value that could not be computed
// because a stored value is missing or malformed. The event itself has
// already been saved when this error is returned.
type CalculationError struct {
	Field Field
	Value string
	Err   error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("cannot compute from %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }

// Describe renders an error as the message shown to the person at the terminal.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		storageErr    *StorageError
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		calcErr       *CalculationError
	)
	switch {
	case errors.As(err, &validationErr):
		return "Not allowed: " + validationErr.Reason + "."
	case errors.As(err, &notFoundErr):
		return fmt.Sprintf("Employee ID %s was not found.", notFoundErr.EmployeeID)
	case errors.As(err, &calcErr):
		return fmt.Sprintf("The event was saved, but totals could not be computed (%s: %v).", calcErr.Field, calcErr.Err)
	case errors.As(err, &storageErr):
		return fmt.Sprintf("The time sheet could not be %s: %v", storageVerb(storageErr.Op), storageErr.Err)
	default:
		return "Unexpected error: " + err.Error()
	}
}

func storageVerb(op string) string {
	switch op {
	case "write", "save":
		return "saved"
	case "init":
		return "initialized"
	default:
		return "read"
	}
}
