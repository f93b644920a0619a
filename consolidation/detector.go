/*
detector.go - Duplicate detection

PURPOSE:
  Finds employees reported absent by more than one report on the same day.
  Pure computation over the ledger's current state: nothing is stored, and
  every check reloads, because report contents can change between reads.
  Caching a result here would reintroduce the check-then-act race the
  approval transaction exists to prevent.

TWO PHASES:
  findDuplicatesIn groups by ids only, so the gate can run it inside its
  own store transaction. resolveGroupNames decorates members with display
  names afterwards, outside any transaction; the Directory may be backed by
  the same store, and display lookup must never sit inside the write path.

CALLED BY:
  - gate.go: precondition re-check inside the approval transaction
  - view.go: the warning banner on the daily view
*/
package consolidation

import (
	"context"
	"sort"
)

// FindDuplicates returns every duplicate group for the day: RECORDED
// absences sharing an employee but owned by more than one entry. Officer
// and employee display names are resolved for operator messaging ("once in
// officer X's report, once in officer Y's report").
//
// No ordering guarantee on groups or members; callers must not depend on
// which member is first.
func (w *Workflow) FindDuplicates(ctx context.Context, day Day) ([]DuplicateGroup, error) {
	groups, err := findDuplicatesIn(ctx, w.store, day)
	if err != nil {
		return nil, err
	}
	w.resolveGroupNames(ctx, groups)
	return groups, nil
}

// findDuplicatesIn runs detection against a specific store view. Display
// names are left empty; the caller decorates them once outside the
// transaction.
func findDuplicatesIn(ctx context.Context, s Store, day Day) ([]DuplicateGroup, error) {
	reports, err := s.ReportsForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	officers := make(map[ReportID]OfficerID, len(reports))
	var recorded []Absence
	for _, r := range reports {
		officers[r.ID] = r.CreatedBy
		recorded = append(recorded, r.Absences...)
	}

	var result []DuplicateGroup
	for employeeID, members := range groupByEmployee(recorded) {
		if len(members) < 2 {
			continue
		}
		g := DuplicateGroup{Day: day, EmployeeID: employeeID}
		for _, a := range members {
			g.Members = append(g.Members, DuplicateMember{
				AbsenceID: a.ID,
				ReportID:  a.ReportID,
				OfficerID: officers[a.ReportID],
				CreatedAt: a.CreatedAt,
			})
		}
		result = append(result, g)
	}

	// Stable output for tests and rendering. Correctness does not depend on
	// this order.
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

// resolveGroupNames fills in employee and officer display names. Must be
// called outside any store transaction.
func (w *Workflow) resolveGroupNames(ctx context.Context, groups []DuplicateGroup) {
	for i := range groups {
		groups[i].EmployeeName = w.employeeName(ctx, groups[i].EmployeeID)
		for j := range groups[i].Members {
			groups[i].Members[j].OfficerName = w.officerName(ctx, groups[i].Members[j].OfficerID)
		}
	}
}

// groupByEmployee buckets RECORDED absences by employee. A group of two or
// more blocks approval even when both entries came from the same report;
// the locked ledger must hold (employee, day) uniqueness either way.
func groupByEmployee(absences []Absence) map[EmployeeID][]Absence {
	groups := make(map[EmployeeID][]Absence)
	for _, a := range absences {
		if a.Status != AbsenceRecorded {
			continue
		}
		groups[a.EmployeeID] = append(groups[a.EmployeeID], a)
	}
	return groups
}
