package consolidation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/consolidation"
)

func TestParseDay_RoundTrip(t *testing.T) {
	d, err := consolidation.ParseDay("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", d.String())
}

func TestParseDay_Invalid(t *testing.T) {
	for _, raw := range []string{"", "2026-3-2", "02/03/2026", "2026-13-40", "yesterday"} {
		_, err := consolidation.ParseDay(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestDayOf_TruncatesTimeComponent(t *testing.T) {
	morning := time.Date(2026, time.March, 2, 8, 15, 0, 0, time.UTC)
	evening := time.Date(2026, time.March, 2, 23, 59, 59, 0, time.UTC)

	assert.True(t, consolidation.DayOf(morning).Equal(consolidation.DayOf(evening)))
}

func TestDay_AddDays(t *testing.T) {
	d := consolidation.NewDay(2026, time.February, 28)
	assert.Equal(t, "2026-03-01", d.AddDays(1).String(), "2026 is not a leap year")
	assert.Equal(t, "2026-02-27", d.AddDays(-1).String())
}

func TestDay_Ordering(t *testing.T) {
	mon := consolidation.NewDay(2026, time.March, 2)
	tue := consolidation.NewDay(2026, time.March, 3)

	assert.True(t, mon.Before(tue))
	assert.True(t, tue.After(mon))
	assert.False(t, mon.Equal(tue))
}

func TestDay_IsWeekend(t *testing.T) {
	sat := consolidation.NewDay(2026, time.March, 7)
	mon := consolidation.NewDay(2026, time.March, 9)

	assert.True(t, sat.IsWeekend())
	assert.False(t, mon.IsWeekend())
}
