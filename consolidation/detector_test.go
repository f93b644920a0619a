package consolidation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/consolidation"
	"github.com/warp/absence-engine/consolidation/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newMemoryWorkflow wires a workflow over the in-memory store for tests
// that do not need SQL behavior.
func newMemoryWorkflow() (*consolidation.Workflow, *store.Memory) {
	mem := store.NewMemory()
	mem.AddOfficer("off-a", "Rita Alves", false)
	mem.AddOfficer("off-b", "Tomas Berg", false)
	mem.AddOfficer("mgr-1", "Nadia Farouk", true)
	mem.AddEmployee("emp-1", "Omar Haddad", "Engineering")
	mem.AddEmployee("emp-2", "Lena Voss", "Engineering")
	mem.AddEmployee("emp-3", "Joao Pinto", "Operations")
	mem.AddEmployee("emp-4", "Sara Lindqvist", "Finance")
	mem.AddEmployee("emp-5", "Kenji Mori", "Finance")
	return consolidation.NewWorkflow(mem, mem, mem, mem), mem
}

// =============================================================================
// DETECTION TESTS
// =============================================================================

func TestFindDuplicates_NoOverlap_Empty(t *testing.T) {
	wf, _ := newMemoryWorkflow()
	ctx := context.Background()
	d := day("2026-03-02")

	_, err := wf.SubmitReport(ctx, d, "off-a", []consolidation.ReportEntry{{EmployeeID: "emp-1"}})
	require.NoError(t, err)
	_, err = wf.SubmitReport(ctx, d, "off-b", []consolidation.ReportEntry{{EmployeeID: "emp-2"}})
	require.NoError(t, err)

	groups, err := wf.FindDuplicates(ctx, d)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFindDuplicates_CrossReportOverlap(t *testing.T) {
	// GIVEN: emp-1 on two reports, emp-2 on one
	// WHEN: Detecting duplicates
	// THEN: One group for emp-1 with both members and resolved names

	wf, _ := newMemoryWorkflow()
	ctx := context.Background()
	d := day("2026-03-02")

	_, err := wf.SubmitReport(ctx, d, "off-a", []consolidation.ReportEntry{
		{EmployeeID: "emp-1"}, {EmployeeID: "emp-2"},
	})
	require.NoError(t, err)
	_, err = wf.SubmitReport(ctx, d, "off-b", []consolidation.ReportEntry{{EmployeeID: "emp-1"}})
	require.NoError(t, err)

	groups, err := wf.FindDuplicates(ctx, d)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, consolidation.EmployeeID("emp-1"), g.EmployeeID)
	assert.Equal(t, "Omar Haddad", g.EmployeeName)
	require.Len(t, g.Members, 2)
	for _, m := range g.Members {
		assert.NotEmpty(t, m.OfficerName)
		assert.NotEmpty(t, m.AbsenceID)
	}
}

func TestFindDuplicates_SameReportDoubleEntry(t *testing.T) {
	// Two entries for the same employee on one report still form a group.

	wf, _ := newMemoryWorkflow()
	ctx := context.Background()
	d := day("2026-03-02")

	_, err := wf.SubmitReport(ctx, d, "off-a", []consolidation.ReportEntry{
		{EmployeeID: "emp-1", Reason: "sick"},
		{EmployeeID: "emp-1", Reason: "entered twice"},
	})
	require.NoError(t, err)

	groups, err := wf.FindDuplicates(ctx, d)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 2)
}

func TestFindDuplicates_CancelledEntriesIgnored(t *testing.T) {
	// Cancelling one side of a pair dissolves the group.

	wf, _ := newMemoryWorkflow()
	ctx := context.Background()
	d := day("2026-03-02")

	_, err := wf.SubmitReport(ctx, d, "off-a", []consolidation.ReportEntry{{EmployeeID: "emp-1"}})
	require.NoError(t, err)
	second, err := wf.SubmitReport(ctx, d, "off-b", []consolidation.ReportEntry{{EmployeeID: "emp-1"}})
	require.NoError(t, err)

	require.NoError(t, wf.CancelAbsence(ctx, second.Absences[0].ID))

	groups, err := wf.FindDuplicates(ctx, d)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFindDuplicates_GroupsSortedByEmployee(t *testing.T) {
	wf, _ := newMemoryWorkflow()
	ctx := context.Background()
	d := day("2026-03-02")

	_, err := wf.SubmitReport(ctx, d, "off-a", []consolidation.ReportEntry{
		{EmployeeID: "emp-3"}, {EmployeeID: "emp-1"},
	})
	require.NoError(t, err)
	_, err = wf.SubmitReport(ctx, d, "off-b", []consolidation.ReportEntry{
		{EmployeeID: "emp-1"}, {EmployeeID: "emp-3"},
	})
	require.NoError(t, err)

	groups, err := wf.FindDuplicates(ctx, d)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, consolidation.EmployeeID("emp-1"), groups[0].EmployeeID)
	assert.Equal(t, consolidation.EmployeeID("emp-3"), groups[1].EmployeeID)
}

func TestFindDuplicates_UnknownNamesFallBackToIDs(t *testing.T) {
	// Employees missing from the directory still show up, keyed by raw id.

	wf, _ := newMemoryWorkflow()
	ctx := context.Background()
	d := day("2026-03-02")

	_, err := wf.SubmitReport(ctx, d, "off-a", []consolidation.ReportEntry{{EmployeeID: "ghost-9"}})
	require.NoError(t, err)
	_, err = wf.SubmitReport(ctx, d, "off-b", []consolidation.ReportEntry{{EmployeeID: "ghost-9"}})
	require.NoError(t, err)

	groups, err := wf.FindDuplicates(ctx, d)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "ghost-9", groups[0].EmployeeName)
}
