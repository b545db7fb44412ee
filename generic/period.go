package generic

import "fmt"

// =============================================================================
// PERIOD - Inclusive calendar range
// =============================================================================

// Period is the inclusive range [Start, End] of calendar days.
// Pay periods, month fallbacks and leave years are all Periods.
type Period struct {
	Start Date
	End   Date
}

// MonthPeriod returns the calendar month containing d.
// It is the fallback scope whenever no pay periods are defined.
func MonthPeriod(d Date) Period {
	return Period{
		Start: StartOfMonth(d.Year(), d.Month()),
		End:   EndOfMonth(d.Year(), d.Month()),
	}
}

// YearPeriod returns Jan 1 - Dec 31 of year.
func YearPeriod(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlaps reports whether the two ranges share at least one day.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(p.End)
}

// Precedes reports whether other starts the day after p ends (no gap, no overlap).
func (p Period) Precedes(other Period) bool {
	return p.End.Next().Equal(other.Start)
}

// Valid requires Start strictly before End.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.Before(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.Next() {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Label renders "1 Jan – 15 Jan 2025", or "25 Dec 2024 – 5 Jan 2025"
// when the range crosses a year boundary.
func (p Period) Label() string {
	if p.Start.Year() == p.End.Year() {
		return fmt.Sprintf("%d %s – %d %s %d",
			p.Start.Day(), shortMonth(p.Start), p.End.Day(), shortMonth(p.End), p.End.Year())
	}
	return fmt.Sprintf("%d %s %d – %d %s %d",
		p.Start.Day(), shortMonth(p.Start), p.Start.Year(),
		p.End.Day(), shortMonth(p.End), p.End.Year())
}

func shortMonth(d Date) string { return d.Month().String()[:3] }
