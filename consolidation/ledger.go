/*
ledger.go - Absence ledger mutations with the lock write-guard

PURPOSE:
  The write side of the ledger: report submission, adding an absence to an
  existing report, and cancellation. Every mutation runs inside one store
  transaction that also evaluates the day's lock, so a write cannot sneak in
  between a reader observing OPEN and a concurrent approval committing.

INVARIANTS:
  1. A LOCKED day refuses recordAbsence and cancelAbsence until unlocked.
  2. Reports are never mutated after creation; only their absences change
     status.
  3. Absences are cancelled, never deleted. The trail of who reported what
     survives consolidation.

SEE ALSO:
  - gate.go: the approval that flips the lock this guard consults
*/
package consolidation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// REPORT SUBMISSION
// =============================================================================

// SubmitReport files one officer's absence list for a day: one new report
// owning one RECORDED absence per entry, created atomically. An empty entry
// list is a valid "nobody absent" submission.
//
// Fails with DateLockedError when the day is LOCKED.
func (w *Workflow) SubmitReport(ctx context.Context, day Day, officerID OfficerID, entries []ReportEntry) (*Report, error) {
	if day.IsZero() {
		return nil, fmt.Errorf("submit report: day is required")
	}
	if officerID == "" {
		return nil, fmt.Errorf("submit report: officer id is required")
	}

	now := time.Now().UTC()
	report := Report{
		ID:        ReportID(uuid.NewString()),
		Day:       day,
		Status:    ReportSubmitted,
		CreatedBy: officerID,
		CreatedAt: now,
	}

	err := w.store.WithTx(ctx, func(tx Store) error {
		locked, err := tx.IsLocked(ctx, day)
		if err != nil {
			return err
		}
		if locked {
			return &DateLockedError{Day: day}
		}

		if err := tx.CreateReport(ctx, report); err != nil {
			return err
		}
		for _, e := range entries {
			a := Absence{
				ID:         AbsenceID(uuid.NewString()),
				ReportID:   report.ID,
				EmployeeID: e.EmployeeID,
				Day:        day,
				Status:     AbsenceRecorded,
				Reason:     e.Reason,
				CreatedAt:  now,
			}
			if err := tx.InsertAbsence(ctx, a); err != nil {
				return err
			}
			report.Absences = append(report.Absences, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// =============================================================================
// SINGLE-ABSENCE MUTATIONS
// =============================================================================

// AddAbsence records one more employee under an existing report. The lock
// guard runs in the same transaction as the insert.
func (w *Workflow) AddAbsence(ctx context.Context, reportID ReportID, employeeID EmployeeID, reason string) (*Absence, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("add absence: employee id is required")
	}

	var created Absence
	err := w.store.WithTx(ctx, func(tx Store) error {
		report, err := tx.GetReport(ctx, reportID)
		if err != nil {
			return err
		}
		if report == nil {
			return &NotFoundError{Kind: "report", ID: string(reportID)}
		}

		locked, err := tx.IsLocked(ctx, report.Day)
		if err != nil {
			return err
		}
		if locked {
			return &DateLockedError{Day: report.Day}
		}

		created = Absence{
			ID:         AbsenceID(uuid.NewString()),
			ReportID:   report.ID,
			EmployeeID: employeeID,
			Day:        report.Day,
			Status:     AbsenceRecorded,
			Reason:     reason,
			CreatedAt:  time.Now().UTC(),
		}
		return tx.InsertAbsence(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CancelAbsence sets an absence to CANCELLED. Cancelling an already
// cancelled absence is a no-op success. Fails with NotFoundError for an
// unknown id and DateLockedError when the absence's day is LOCKED.
func (w *Workflow) CancelAbsence(ctx context.Context, id AbsenceID) error {
	return w.store.WithTx(ctx, func(tx Store) error {
		a, err := tx.GetAbsence(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return &NotFoundError{Kind: "absence", ID: string(id)}
		}

		locked, err := tx.IsLocked(ctx, a.Day)
		if err != nil {
			return err
		}
		if locked {
			return &DateLockedError{Day: a.Day}
		}

		if a.Status == AbsenceCancelled {
			return nil
		}
		return tx.SetAbsenceStatus(ctx, id, AbsenceCancelled)
	})
}

// =============================================================================
// READS
// =============================================================================

// ReportsForDay returns the day's submitted reports with their RECORDED
// absences. Order is not significant; the presentation layer sorts.
func (w *Workflow) ReportsForDay(ctx context.Context, day Day) ([]Report, error) {
	return w.store.ReportsForDay(ctx, day)
}
