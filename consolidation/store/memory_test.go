package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/consolidation"
	"github.com/warp/absence-engine/consolidation/store"
)

func monday() consolidation.Day {
	return consolidation.NewDay(2026, time.March, 2)
}

func TestMemory_WithTx_RollsBackOnError(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	d := monday()

	boom := errors.New("boom")
	err := mem.WithTx(ctx, func(tx consolidation.Store) error {
		if err := tx.CreateReport(ctx, consolidation.Report{
			ID: "rep-1", Day: d, Status: consolidation.ReportSubmitted,
			CreatedBy: "off-a", CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		if err := tx.SetLocked(ctx, d, true); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := mem.GetReport(ctx, "rep-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	locked, err := mem.IsLocked(ctx, d)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMemory_SeqMonotonic(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	d := monday()

	require.NoError(t, mem.CreateReport(ctx, consolidation.Report{
		ID: "rep-1", Day: d, Status: consolidation.ReportSubmitted,
		CreatedBy: "off-a", CreatedAt: time.Now().UTC(),
	}))

	for _, id := range []string{"abs-z", "abs-a", "abs-m"} {
		require.NoError(t, mem.InsertAbsence(ctx, consolidation.Absence{
			ID: consolidation.AbsenceID(id), ReportID: "rep-1", EmployeeID: "emp-1",
			Day: d, Status: consolidation.AbsenceRecorded, CreatedAt: time.Now().UTC(),
		}))
	}

	recorded, err := mem.RecordedAbsences(ctx, d, "emp-1")
	require.NoError(t, err)
	require.Len(t, recorded, 3)
	assert.Equal(t, consolidation.AbsenceID("abs-z"), recorded[0].ID, "insertion order, not id order")
	assert.True(t, recorded[0].Seq < recorded[1].Seq && recorded[1].Seq < recorded[2].Seq)
}

func TestMemory_OrderingConsistentAfterRollback(t *testing.T) {
	// Inserts after a rolled-back transaction still sort after everything
	// that survived it.

	mem := store.NewMemory()
	ctx := context.Background()
	d := monday()

	require.NoError(t, mem.CreateReport(ctx, consolidation.Report{
		ID: "rep-1", Day: d, Status: consolidation.ReportSubmitted,
		CreatedBy: "off-a", CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, mem.InsertAbsence(ctx, consolidation.Absence{
		ID: "abs-1", ReportID: "rep-1", EmployeeID: "emp-1",
		Day: d, Status: consolidation.AbsenceRecorded, CreatedAt: time.Now().UTC(),
	}))

	first, err := mem.RecordedAbsences(ctx, d, "emp-1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	boom := errors.New("boom")
	_ = mem.WithTx(ctx, func(tx consolidation.Store) error {
		_ = tx.InsertAbsence(ctx, consolidation.Absence{
			ID: "abs-2", ReportID: "rep-1", EmployeeID: "emp-1",
			Day: d, Status: consolidation.AbsenceRecorded, CreatedAt: time.Now().UTC(),
		})
		return boom
	})

	require.NoError(t, mem.InsertAbsence(ctx, consolidation.Absence{
		ID: "abs-3", ReportID: "rep-1", EmployeeID: "emp-1",
		Day: d, Status: consolidation.AbsenceRecorded, CreatedAt: time.Now().UTC(),
	}))

	recorded, err := mem.RecordedAbsences(ctx, d, "emp-1")
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	assert.Greater(t, recorded[1].Seq, first[0].Seq)
}
