/*
errors.go - Centralized error types for the consolidation workflow

PURPOSE:
  All expected workflow outcomes in one place. Callers branch on these with
  errors.Is / errors.As; anything not listed here is a storage failure and
  propagates unchanged.

ERROR CATEGORIES:
  1. Lookup errors    - referenced report/absence has no data
  2. Gate errors      - mutation or approval refused by the day's state
  3. Concurrency      - transaction lost a race and may be retried

USAGE:
  if errors.Is(err, consolidation.ErrDateLocked) { ... }

  var dup *consolidation.DuplicatesPresentError
  if errors.As(err, &dup) {
      render(dup.Groups)
  }
*/
package consolidation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced absence, report, or day has
	// no data.
	ErrNotFound = errors.New("not found")

	// ErrDateLocked is returned when a mutation is attempted on a LOCKED day.
	ErrDateLocked = errors.New("date is locked")

	// ErrUnauthorized is returned when the actor lacks approval capability.
	ErrUnauthorized = errors.New("actor lacks approval capability")

	// ErrNothingToApprove is returned when approving a day with no submitted
	// reports.
	ErrNothingToApprove = errors.New("no submitted reports for date")

	// ErrDuplicatesPresent blocks approval while duplicate groups exist.
	ErrDuplicatesPresent = errors.New("duplicates present")

	// ErrConflict is returned when a transaction lost a concurrency race
	// after the bounded retries were exhausted. The caller may retry.
	ErrConflict = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which entity was missing.
type NotFoundError struct {
	Kind string // "report", "absence", "employee absence"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DateLockedError carries the day whose lock refused a mutation.
type DateLockedError struct {
	Day Day
}

func (e *DateLockedError) Error() string {
	return fmt.Sprintf("date %s is locked", e.Day)
}

func (e *DateLockedError) Unwrap() error { return ErrDateLocked }

// DuplicatesPresentError carries the duplicate groups that blocked an
// approval, so the caller can render the remediation list.
type DuplicatesPresentError struct {
	Day    Day
	Groups []DuplicateGroup
}

func (e *DuplicatesPresentError) Error() string {
	return fmt.Sprintf("date %s has %d duplicated employee(s)", e.Day, len(e.Groups))
}

func (e *DuplicatesPresentError) Unwrap() error { return ErrDuplicatesPresent }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true for expected workflow outcomes the caller must
// branch on, as opposed to storage failures.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDateLocked) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNothingToApprove) ||
		errors.Is(err, ErrDuplicatesPresent)
}
