package leave

import (
	"fmt"
	"slices"
	"strings"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// DETAILS - Days of one leave type in a year, grouped by month
// =============================================================================

// MonthDays is one month of a Details listing.
type MonthDays struct {
	Month   string // YYYY-MM
	Entries []worktime.DayEntry
	Total   generic.Amount
}

// Details lists the days of one type taken in a year.
type Details struct {
	Type    worktime.DayType
	Year    int
	Entries []worktime.DayEntry // oldest first
	Months  []MonthDays         // oldest first
	Total   generic.Amount
}

// ParseKind maps the short names used by the balance views ("vacation",
// "toBeAdded", "sick") and the canonical type names to a day type that draws
// on or feeds a leave balance.
func ParseKind(s string) (worktime.DayType, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	if norm == "sick" {
		return worktime.SickLeave, nil
	}
	t, err := worktime.ParseDayType(norm)
	if err != nil || !t.IsLeaveBalance() {
		return worktime.Regular, fmt.Errorf("%w: leave type %q (use vacation, toBeAdded or sick)", generic.ErrInvalidValue, s)
	}
	return t, nil
}

// ListDays collects the entries of typ dated in year. Half days count 0.5.
func ListDays(entries []worktime.DayEntry, typ worktime.DayType, year int) Details {
	d := Details{Type: typ, Year: year, Total: days(zero)}

	for _, e := range entries {
		if e.Type == typ && inYear(e, year) {
			d.Entries = append(d.Entries, e.Clone())
		}
	}
	worktime.SortEntries(d.Entries)

	for _, e := range d.Entries {
		portion := days(e.Duration.Days())
		d.Total = d.Total.Add(portion)

		key := e.Date.MonthKey()
		if n := len(d.Months); n == 0 || d.Months[n-1].Month != key {
			d.Months = append(d.Months, MonthDays{Month: key, Total: days(zero)})
		}
		m := &d.Months[len(d.Months)-1]
		m.Entries = append(m.Entries, e)
		m.Total = m.Total.Add(portion)
	}
	return d
}

// Years returns every year holding an entry plus the year of today, newest first.
func Years(entries []worktime.DayEntry, today generic.Date) []int {
	years := []int{today.Year()}
	for _, e := range entries {
		if !e.Date.IsZero() && !slices.Contains(years, e.Date.Year()) {
			years = append(years, e.Date.Year())
		}
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}
