package worktime

import (
	"slices"

	"github.com/warp/timesheet-engine/generic"
)

// Select returns the entries dated inside scope, ordered by date then type
// then duration. The input slice is not modified.
func Select(entries []DayEntry, scope generic.Period) []DayEntry {
	var out []DayEntry
	for _, e := range entries {
		if scope.Contains(e.Date) {
			out = append(out, e)
		}
	}
	SortEntries(out)
	return out
}

// SortEntries orders entries by date, type and duration in place.
func SortEntries(entries []DayEntry) {
	slices.SortStableFunc(entries, func(a, b DayEntry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if a.Type != b.Type {
			return int(a.Type) - int(b.Type)
		}
		return int(a.Duration) - int(b.Duration)
	})
}

// FindEntry returns the index of the entry with key, or -1.
func FindEntry(entries []DayEntry, key EntryKey) int {
	for i, e := range entries {
		if e.Key() == key {
			return i
		}
	}
	return -1
}
