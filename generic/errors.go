/*
errors.go - Centralized error types for the timesheet engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these (or wrap them) so that transports can map
  any failure to a status code with errors.Is.

ERROR CATEGORIES:
  1. Validation errors - Rejected user input (duplicate day, missing field,
     reversed break, invalid/overlapping/gapped period). Nothing is written.
  2. Not-found errors - Unknown entry or period.
  3. Store errors - Backend failures, wrapped with context.

Silent degradation (open intervals, malformed CSV rows) and fallbacks
(no pay periods, no pinned period) are NOT errors and never surface here.

SEE ALSO:
  - payperiod/manager.go: Period validation errors
  - tracker/tracker.go: Entry validation errors
  - api/handlers.go: Status code mapping
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateEntry is returned when a (date, type, duration) entry already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrMissingField is returned when a required input field is blank.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidInterval is returned when an interval ends at or before its start.
	ErrInvalidInterval = errors.New("invalid interval: end must be after start")

	// ErrInvalidPeriod is returned when a period is malformed (end not after start).
	ErrInvalidPeriod = errors.New("invalid period: end must be after start")

	// ErrPeriodOverlap is returned when a period shares days with another one.
	ErrPeriodOverlap = errors.New("period overlaps an existing period")

	// ErrPeriodGap is returned when a period change would leave days uncovered.
	ErrPeriodGap = errors.New("period leaves a gap")

	// ErrPeriodNotFound is returned when a referenced period doesn't exist.
	ErrPeriodNotFound = errors.New("period not found")

	// ErrEntryNotFound is returned when a referenced day entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrAlreadyCheckedIn is returned when checking in with an open interval.
	ErrAlreadyCheckedIn = errors.New("already checked in")

	// ErrNotCheckedIn is returned when checking out without an open interval.
	ErrNotCheckedIn = errors.New("no active check-in")

	// ErrKeyNotFound is returned by stores for absent keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidRules is returned when a rules configuration cannot be used.
	ErrInvalidRules = errors.New("invalid rules")

	// ErrConfirmationRequired is returned when a destructive call lacks confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrInvalidValue is returned for malformed or out-of-range input values.
	ErrInvalidValue = errors.New("invalid value")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateEntryError names the clashing entry key.
type DuplicateEntryError struct {
	Date     Date
	Type     string
	Duration string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("%s (%s) already exists for %s", e.Type, e.Duration, e.Date)
}

func (e *DuplicateEntryError) Unwrap() error { return ErrDuplicateEntry }

// MissingFieldError names the blank fields.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// PeriodOverlapError names the existing period that would be overlapped.
type PeriodOverlapError struct {
	Requested  Period
	Existing   Period
	ExistingID string
}

func (e *PeriodOverlapError) Error() string {
	return fmt.Sprintf("period %s overlaps existing period %s", e.Requested, e.Existing)
}

func (e *PeriodOverlapError) Unwrap() error { return ErrPeriodOverlap }

// PeriodGapError names the uncovered days a change would introduce.
type PeriodGapError struct {
	Requested Period
	Gap       Period
}

func (e *PeriodGapError) Error() string {
	days := DaysBetween(e.Gap.Start, e.Gap.End) + 1
	return fmt.Sprintf("period %s leaves a gap of %d day(s) from %s to %s; periods must be contiguous",
		e.Requested, days, e.Gap.Start, e.Gap.End)
}

func (e *PeriodGapError) Unwrap() error { return ErrPeriodGap }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidRules) ||
		errors.Is(err, ErrConfirmationRequired) ||
		errors.Is(err, ErrInvalidValue) ||
		IsConflict(err)
}

// IsConflict returns true if the input clashes with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEntry) ||
		errors.Is(err, ErrPeriodOverlap) ||
		errors.Is(err, ErrPeriodGap) ||
		errors.Is(err, ErrAlreadyCheckedIn) ||
		errors.Is(err, ErrNotCheckedIn)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPeriodNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrKeyNotFound)
}
