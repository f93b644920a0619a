package consolidation

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar date with no time component
// =============================================================================

// Day identifies one calendar date. All consolidation state (reports,
// absences, the lock) is keyed by Day; two timestamps on the same date are
// the same Day. Days are always UTC.
type Day struct {
	t time.Time
}

// DayFormat is the wire and storage representation of a Day.
const DayFormat = "2006-01-02"

// Constructors

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a timestamp to its calendar date.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

func Today() Day {
	return DayOf(time.Now().UTC())
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Comparison

func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }
func (d Day) IsZero() bool          { return d.t.IsZero() }

// Arithmetic and properties

func (d Day) AddDays(n int) Day        { return DayOf(d.t.AddDate(0, 0, n)) }
func (d Day) Weekday() time.Weekday    { return d.t.Weekday() }
func (d Day) IsWeekend() bool          { wd := d.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (d Day) Time() time.Time          { return d.t }

func (d Day) String() string {
	return d.t.Format(DayFormat)
}
