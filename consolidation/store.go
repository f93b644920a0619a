/*
store.go - Persistence and collaborator interfaces

PURPOSE:
  Defines the consistency contract the workflow requires from storage, plus
  the external collaborators it consults (identity lookup, authorization,
  audit sink). The workflow never talks to a database directly; it talks to
  these interfaces.

TRANSACTION CONTRACT (WithTx):
  WithTx runs fn against a transactional view of the store. Implementations
  MUST guarantee that concurrent WithTx calls touching the same day are
  serialized: the lock check inside an approval and the inserts of a racing
  submission cannot interleave. A plain read-then-write without that
  isolation is a correctness bug, not a simplification. Implementations may
  return ErrConflict instead of blocking; the gate retries a bounded number
  of times.

IMPLEMENTATIONS:
  store/sqlite:         production store (single SQL transaction per WithTx)
  consolidation/store:  in-memory store (snapshot + rollback, for tests)
*/
package consolidation

import "context"

// =============================================================================
// STORE - Durable absence ledger state
// =============================================================================

type Store interface {
	// CreateReport persists a new report. Reports are append-only: there is
	// no update and no delete.
	CreateReport(ctx context.Context, r Report) error

	// GetReport returns a report without its absences, or nil when unknown.
	GetReport(ctx context.Context, id ReportID) (*Report, error)

	// ReportsForDay returns all SUBMITTED reports for the day with their
	// RECORDED absences attached. Order is not significant.
	ReportsForDay(ctx context.Context, day Day) ([]Report, error)

	// InsertAbsence persists a new absence entry. The store assigns Seq.
	InsertAbsence(ctx context.Context, a Absence) error

	// GetAbsence returns an absence by id, or nil when unknown.
	GetAbsence(ctx context.Context, id AbsenceID) (*Absence, error)

	// AbsencesForDay returns every absence for the day, all statuses.
	AbsencesForDay(ctx context.Context, day Day) ([]Absence, error)

	// RecordedAbsences returns the RECORDED entries for (day, employee),
	// ordered by Seq ascending.
	RecordedAbsences(ctx context.Context, day Day, employeeID EmployeeID) ([]Absence, error)

	// SetAbsenceStatus flips an absence's status. The only status mutation
	// the ledger permits; rows are never deleted.
	SetAbsenceStatus(ctx context.Context, id AbsenceID, status AbsenceStatus) error

	// IsLocked reports the day's gate state. Days with no lock row are OPEN.
	IsLocked(ctx context.Context, day Day) (bool, error)

	// SetLocked transitions the day's gate state.
	SetLocked(ctx context.Context, day Day, locked bool) error

	// WithTx executes fn against a transactional view. fn returning an
	// error rolls back everything it did. See the package comment for the
	// serialization requirement.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// =============================================================================
// COLLABORATORS - External to this core, interfaces only
// =============================================================================

// Directory resolves display names for operator-facing messaging and KPI
// labels. Unknown ids resolve to the raw id string; display lookup never
// blocks the workflow.
type Directory interface {
	OfficerName(ctx context.Context, id OfficerID) (string, error)
	EmployeeName(ctx context.Context, id EmployeeID) (string, error)
	EmployeeDepartment(ctx context.Context, id EmployeeID) (string, error)

	// ActiveHeadcount returns the number of active employees, used as the
	// denominator of the daily absence rate.
	ActiveHeadcount(ctx context.Context) (int, error)
}

// Authorizer answers the capability check consulted by Approve/Unapprove.
// How capabilities are granted is outside this core.
type Authorizer interface {
	HasApprovalCapability(ctx context.Context, actorID OfficerID) (bool, error)
}

// AuditSink receives workflow events. Record is fire-and-forget from the
// workflow's perspective: errors are logged by the caller, never returned.
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent) error
}

// NopAuditSink discards events. Useful for tests and tools that do not care
// about the trail.
type NopAuditSink struct{}

func (NopAuditSink) Record(context.Context, AuditEvent) error { return nil }

// StaticAuthorizer grants approval capability to a fixed set of actors.
type StaticAuthorizer map[OfficerID]bool

func (a StaticAuthorizer) HasApprovalCapability(_ context.Context, actorID OfficerID) (bool, error) {
	return a[actorID], nil
}
