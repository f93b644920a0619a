/*
resolver.go - Duplicate remediation

PURPOSE:
  Collapses one duplicate group down to a single RECORDED entry. A human
  triggers this once per duplicated employee; the workflow never
  auto-resolves. The caller re-checks FindDuplicates afterwards before
  attempting to lock the day.

POLICY:
  Keep the earliest-created entry (lowest store sequence), cancel the rest.
  Deterministic and auditable; a recorded reason does not earn preference.
*/
package consolidation

import "context"

// ResolveDuplicate cancels all but the earliest RECORDED absence for
// (day, employee) in one transaction and returns the number cancelled.
// actorID identifies who triggered the remediation and lands on the audit
// event.
//
// Outcomes:
//   - zero RECORDED entries:   NotFoundError
//   - exactly one:             no-op, returns 0 (idempotent re-run)
//   - two or more:             keeps the earliest, cancels the rest
//   - day LOCKED:              DateLockedError, fail fast; remediation is a
//     pre-lock step only
//
// A failed attempt rolls back every cancellation it made; partial
// resolution is never observable.
func (w *Workflow) ResolveDuplicate(ctx context.Context, day Day, employeeID EmployeeID, actorID OfficerID) (int, error) {
	removed := 0
	err := w.store.WithTx(ctx, func(tx Store) error {
		removed = 0
		locked, err := tx.IsLocked(ctx, day)
		if err != nil {
			return err
		}
		if locked {
			return &DateLockedError{Day: day}
		}

		recorded, err := tx.RecordedAbsences(ctx, day, employeeID)
		if err != nil {
			return err
		}
		if len(recorded) == 0 {
			return &NotFoundError{Kind: "recorded absence", ID: string(employeeID) + "@" + day.String()}
		}
		if len(recorded) < 2 {
			return nil
		}

		// recorded is ordered by Seq ascending; index 0 is the keeper.
		for _, a := range recorded[1:] {
			if err := tx.SetAbsenceStatus(ctx, a.ID, AbsenceCancelled); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		w.emitAudit(ctx, ActionDuplicateResolved, "absence", string(employeeID)+"@"+day.String(), actorID)
	}
	return removed, nil
}
