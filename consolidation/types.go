/*
Package consolidation implements daily absence-report consolidation.

PURPOSE:
  Multiple fingerprint officers submit per-department absence lists for the
  same calendar date. Because each submission is an independent report, the
  same employee can end up reported absent twice. This package detects those
  overlaps, lets an operator collapse them to a single authoritative entry,
  and lets a manager lock the date so the consolidated record becomes the
  day's ledger of truth.

KEY CONCEPTS IN THIS FILE (types.go):
  - Report:         One submission event by one officer for one day
  - Absence:        One employee's recorded non-attendance, owned by a report
  - DuplicateGroup: Entries for the same employee from different reports
  - AuditEvent:     Trail entry emitted on state transitions

DESIGN PRINCIPLES:
  1. Soft delete: absences are CANCELLED, never removed; history stays visible
  2. Append-mostly: reports are never mutated after submission
  3. Type safety: distinct ID types for reports, absences, employees, officers
  4. Derived state: duplicates and the daily view are recomputed per read

SEE ALSO:
  - ledger.go:   Report submission and absence mutation (write-guarded)
  - detector.go: Duplicate detection
  - resolver.go: Duplicate remediation
  - gate.go:     OPEN/LOCKED state machine per day
  - view.go:     Read-side daily aggregation
*/
package consolidation

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ReportID string
type AbsenceID string
type EmployeeID string
type OfficerID string

// =============================================================================
// REPORT - One officer's submission for one day
// =============================================================================

type ReportStatus string

const (
	// ReportSubmitted is the only report status. Reports exist from the
	// moment an officer files them; they are never withdrawn, only their
	// absences are cancelled.
	ReportSubmitted ReportStatus = "SUBMITTED"
)

// Report groups the absences one officer submitted together for one day.
// A report belongs to exactly one day and one author; the same officer may
// file several reports for the same day, which is how duplicates arise.
type Report struct {
	ID        ReportID
	Day       Day
	Status    ReportStatus
	CreatedBy OfficerID
	CreatedAt time.Time

	// Absences owned by this report. Populated on reads; order carries no
	// meaning.
	Absences []Absence
}

// ReportEntry is one line of a submission: an employee reported absent,
// optionally with a reason.
type ReportEntry struct {
	EmployeeID EmployeeID
	Reason     string
}

// =============================================================================
// ABSENCE - One employee's recorded absence on one day
// =============================================================================

type AbsenceStatus string

const (
	AbsenceRecorded  AbsenceStatus = "RECORDED"
	AbsenceCancelled AbsenceStatus = "CANCELLED"
)

// Absence is one employee's recorded non-attendance, attributed to the
// report that introduced it. Cancellation flips Status; rows are never
// deleted.
type Absence struct {
	ID         AbsenceID
	ReportID   ReportID
	EmployeeID EmployeeID
	Day        Day
	Status     AbsenceStatus
	Reason     string
	CreatedAt  time.Time

	// Seq is the store-assigned insertion order. The resolver keeps the
	// entry with the lowest Seq ("earliest created") when collapsing a
	// duplicate group, so resolution is deterministic even when wall-clock
	// timestamps collide.
	Seq int64
}

// =============================================================================
// DUPLICATE GROUP - Derived, never persisted
// =============================================================================

// DuplicateMember is one RECORDED entry inside a duplicate group, with the
// owning report and submitting officer resolved for operator messaging.
type DuplicateMember struct {
	AbsenceID   AbsenceID
	ReportID    ReportID
	OfficerID   OfficerID
	OfficerName string
	CreatedAt   time.Time
}

// DuplicateGroup collects the RECORDED absences for one employee on one day
// that came from more than one report. Groups are recomputed on every check;
// report contents can change between reads, so caching one would be wrong.
// No ordering is guaranteed on groups or members.
type DuplicateGroup struct {
	Day          Day
	EmployeeID   EmployeeID
	EmployeeName string
	Members      []DuplicateMember
}

// =============================================================================
// LOCK STATE
// =============================================================================

// GateState is the consolidation state of one day.
type GateState string

const (
	// GateOpen is the default: officers may add and cancel absences.
	GateOpen GateState = "OPEN"
	// GateLocked means the day was approved; all absence mutation is
	// refused until the day is explicitly unapproved.
	GateLocked GateState = "LOCKED"
)

// =============================================================================
// AUDIT EVENT
// =============================================================================

// Audit actions emitted by the workflow.
const (
	ActionDayApproved       = "day.approved"
	ActionDayUnapproved     = "day.unapproved"
	ActionDuplicateResolved = "duplicate.resolved"
)

// AuditEvent records who did what to which entity. Events are handed to the
// AuditSink fire-and-forget; a failing sink never fails the operation.
type AuditEvent struct {
	ID       string
	Action   string
	Entity   string
	EntityID string
	ActorID  OfficerID
	At       time.Time
}
