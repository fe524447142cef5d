/*
errors.go - Centralized error types shared by the registry layers

PURPOSE:
  All error types in one place for consistency and discoverability.
  The audit engine itself never returns errors (unparsable fields are
  "no opinion"); these are for the store, factory and api packages.

ERROR CATEGORIES:
  1. Lookup errors - Employee or cadre does not exist
  2. Validation errors - Malformed input that cannot be assembled into a snapshot
  3. Store errors - Uniqueness conflicts

USAGE:
  if errors.Is(err, generic.ErrEmployeeNotFound) {
      writeError(w, http.StatusNotFound, "Employee not found", err)
  }

SEE ALSO:
  - store/sqlite/sqlite.go: Returns lookup and conflict errors
  - factory/cadre.go: Returns validation errors
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrCadreNotFound is returned when a referenced cadre configuration doesn't exist.
	ErrCadreNotFound = errors.New("cadre not found")

	// ErrDuplicateEmployee is returned when creating an employee whose ID is taken.
	ErrDuplicateEmployee = errors.New("employee already exists")

	// ErrStaleRecord is returned when a record changed since it was read.
	ErrStaleRecord = errors.New("employee record changed since it was read")

	// ErrInvalidSnapshot is returned when a request cannot be assembled into a snapshot.
	ErrInvalidSnapshot = errors.New("invalid employee snapshot")

	// ErrInvalidDate is returned when a date string is neither YYYY-MM-DD nor RFC3339.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidConfig is returned when a cadre or salary configuration is malformed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
	Err     error // sentinel this error unwraps to; defaults to ErrInvalidSnapshot
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidSnapshot
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSnapshot) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrCadreNotFound)
}

// IsConflict returns true if the error indicates a uniqueness violation
// or a lost race with a concurrent write.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmployee) ||
		errors.Is(err, ErrStaleRecord)
}
