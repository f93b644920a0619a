/*
view.go - Read-side daily aggregation

PURPOSE:
  Assembles everything the presentation layer shows for one day: the
  submitted reports with their absences, derived KPIs, the gate state, and
  the duplicate list. Read-only and safe to call at arbitrary frequency;
  every call reflects the latest committed state. Nothing here is cached.
*/
package consolidation

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VIEW TYPES
// =============================================================================

// ReportView is a report enriched with the submitting officer's display
// name and per-entry employee names.
type ReportView struct {
	Report      Report
	OfficerName string
	Entries     []AbsenceView
}

// AbsenceView is an absence enriched for display.
type AbsenceView struct {
	Absence      Absence
	EmployeeName string
	Department   string
}

// OfficerTally is one officer's RECORDED entry count with the display name
// resolved for rendering.
type OfficerTally struct {
	Name     string
	Recorded int
}

// KPIs are the derived figures on the daily view. Counts cover RECORDED
// entries unless stated otherwise.
type KPIs struct {
	TotalRecorded     int
	TotalCancelled    int
	UniqueEmployees   int
	UniqueDepartments int

	// PerOfficer counts RECORDED entries by submitting officer. Keyed by
	// officer id so two officers sharing a display name stay separate.
	PerOfficer map[OfficerID]OfficerTally

	// PerDepartment counts unique absent employees by department.
	PerDepartment map[string]int

	// AbsenceRate is unique absent employees over active headcount,
	// as a fraction in [0, 1]. Zero when headcount is unknown.
	AbsenceRate decimal.Decimal
}

// DailyView is the consolidated read model for one day.
type DailyView struct {
	Day        Day
	State      GateState
	Reports    []ReportView
	Duplicates []DuplicateGroup
	KPIs       KPIs
}

// =============================================================================
// BUILDER
// =============================================================================

// DailyView aggregates the day's reports, KPIs, lock state and duplicate
// list into one structure.
func (w *Workflow) DailyView(ctx context.Context, day Day) (*DailyView, error) {
	reports, err := w.store.ReportsForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	locked, err := w.store.IsLocked(ctx, day)
	if err != nil {
		return nil, err
	}
	duplicates, err := w.FindDuplicates(ctx, day)
	if err != nil {
		return nil, err
	}
	all, err := w.store.AbsencesForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	view := &DailyView{
		Day:        day,
		State:      GateStateOf(locked),
		Duplicates: duplicates,
	}

	kpis := KPIs{
		PerOfficer:    make(map[OfficerID]OfficerTally),
		PerDepartment: make(map[string]int),
		AbsenceRate:   decimal.Zero,
	}

	employees := make(map[EmployeeID]bool)
	departments := make(map[string]bool)

	for _, r := range reports {
		rv := ReportView{
			Report:      r,
			OfficerName: w.officerName(ctx, r.CreatedBy),
		}
		for _, a := range r.Absences {
			dept := w.employeeDepartment(ctx, a.EmployeeID)
			rv.Entries = append(rv.Entries, AbsenceView{
				Absence:      a,
				EmployeeName: w.employeeName(ctx, a.EmployeeID),
				Department:   dept,
			})

			kpis.TotalRecorded++
			tally := kpis.PerOfficer[r.CreatedBy]
			tally.Name = rv.OfficerName
			tally.Recorded++
			kpis.PerOfficer[r.CreatedBy] = tally
			if !employees[a.EmployeeID] {
				employees[a.EmployeeID] = true
				if dept != "" {
					departments[dept] = true
					kpis.PerDepartment[dept]++
				}
			}
		}
		view.Reports = append(view.Reports, rv)
	}

	for _, a := range all {
		if a.Status == AbsenceCancelled {
			kpis.TotalCancelled++
		}
	}

	kpis.UniqueEmployees = len(employees)
	kpis.UniqueDepartments = len(departments)
	kpis.AbsenceRate = w.absenceRate(ctx, len(employees))
	view.KPIs = kpis

	// Stable order for rendering; correctness does not depend on it.
	sort.Slice(view.Reports, func(i, j int) bool {
		return view.Reports[i].Report.CreatedAt.Before(view.Reports[j].Report.CreatedAt)
	})
	return view, nil
}

func (w *Workflow) employeeDepartment(ctx context.Context, id EmployeeID) string {
	if w.dir == nil {
		return ""
	}
	dept, err := w.dir.EmployeeDepartment(ctx, id)
	if err != nil {
		return ""
	}
	return dept
}

// absenceRate divides unique absent employees by active headcount, rounded
// to four decimal places.
func (w *Workflow) absenceRate(ctx context.Context, absent int) decimal.Decimal {
	if w.dir == nil || absent == 0 {
		return decimal.Zero
	}
	headcount, err := w.dir.ActiveHeadcount(ctx)
	if err != nil || headcount <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(absent)).
		Div(decimal.NewFromInt(int64(headcount))).
		Round(4)
}
