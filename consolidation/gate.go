/*
gate.go - Consolidation gate state machine

PURPOSE:
  Governs whether a day is OPEN (editable) or LOCKED (approved). The states
  and transitions:

      OPEN --Approve--> LOCKED --Unapprove--> OPEN

  Transitions are manager-triggered, never time-triggered. Approve refuses
  to lock while duplicate groups exist; Unapprove is a deliberate, audited
  reversal and needs no duplicate check (unlocking only relaxes
  constraints).

ATOMICITY:
  The duplicate-free precondition is re-verified inside the same store
  transaction that flips the state. Checking first and locking second in
  separate transactions would let a racing submission introduce a duplicate
  between check and commit.

IDEMPOTENCY:
  Approve on an already LOCKED day and Unapprove on an already OPEN day are
  successes: the desired end state already holds.
*/
package consolidation

import (
	"context"
	"errors"
)

// approveAttempts bounds the retry loop around storage conflicts before
// ErrConflict is surfaced to the caller.
const approveAttempts = 3

// Approve transitions the day to LOCKED.
//
// Preconditions, each carrying its typed failure:
//   - actor holds approval capability    -> ErrUnauthorized
//   - at least one SUBMITTED report      -> ErrNothingToApprove
//   - zero duplicate groups at commit    -> DuplicatesPresentError
//
// On success the transition is audited. A day whose absences were all
// cancelled still approves: an "all clear" day is a consolidated fact worth
// locking, so NothingToApprove fires only when no report was filed at all.
func (w *Workflow) Approve(ctx context.Context, day Day, actorID OfficerID) error {
	ok, err := w.authz.HasApprovalCapability(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}

	transitioned := false
	for attempt := 1; ; attempt++ {
		err = w.store.WithTx(ctx, func(tx Store) error {
			transitioned = false

			locked, err := tx.IsLocked(ctx, day)
			if err != nil {
				return err
			}
			if locked {
				return nil
			}

			reports, err := tx.ReportsForDay(ctx, day)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				return ErrNothingToApprove
			}

			groups, err := findDuplicatesIn(ctx, tx, day)
			if err != nil {
				return err
			}
			if len(groups) > 0 {
				return &DuplicatesPresentError{Day: day, Groups: groups}
			}

			if err := tx.SetLocked(ctx, day, true); err != nil {
				return err
			}
			transitioned = true
			return nil
		})
		if errors.Is(err, ErrConflict) && attempt < approveAttempts {
			continue
		}
		break
	}
	if err != nil {
		// Name resolution happens outside the transaction; the Directory
		// may be backed by the same store.
		var dup *DuplicatesPresentError
		if errors.As(err, &dup) {
			w.resolveGroupNames(ctx, dup.Groups)
		}
		return err
	}

	if transitioned {
		w.emitAudit(ctx, ActionDayApproved, "day", day.String(), actorID)
	}
	return nil
}

// Unapprove transitions a LOCKED day back to OPEN so officers can edit it
// again. Requires approval capability; idempotent on an already OPEN day.
func (w *Workflow) Unapprove(ctx context.Context, day Day, actorID OfficerID) error {
	ok, err := w.authz.HasApprovalCapability(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}

	transitioned := false
	err = w.store.WithTx(ctx, func(tx Store) error {
		transitioned = false

		locked, err := tx.IsLocked(ctx, day)
		if err != nil {
			return err
		}
		if !locked {
			return nil
		}
		if err := tx.SetLocked(ctx, day, false); err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return err
	}

	if transitioned {
		w.emitAudit(ctx, ActionDayUnapproved, "day", day.String(), actorID)
	}
	return nil
}

// IsLocked reports the day's gate state. Used by the ledger's write-guard
// and the presentation layer.
func (w *Workflow) IsLocked(ctx context.Context, day Day) (bool, error) {
	return w.store.IsLocked(ctx, day)
}

// GateStateOf renders the lock flag as a state name for display.
func GateStateOf(locked bool) GateState {
	if locked {
		return GateLocked
	}
	return GateOpen
}
