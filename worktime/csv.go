package worktime

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// CSV - Timesheet export / import
// =============================================================================
//
// Format (header included):
//
//   Date,Check In,Check Out,Hours,Type
//   2025-01-06,09:00,18:30,9.50,Regular
//   2025-01-07,-,-,0.00,Vacation (Half Day)
//
// Import is lenient: missing trailing fields are allowed, a blank type is
// Regular, and rows with a bad date or an unknown type are dropped.

var csvHeader = []string{"Date", "Check In", "Check Out", "Hours", "Type"}

// ExportCSV writes one line per row.
func ExportCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Entry.Date.String(),
			timeOrDash(r.CheckIn),
			timeOrDash(r.CheckOut),
			r.HoursSpent.String(),
			r.DisplayType,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", r.Entry.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func timeOrDash(t generic.TimeOfDay) string {
	if !t.Valid() {
		return "-"
	}
	return t.String()
}

// ImportResult reports what ImportCSV parsed.
type ImportResult struct {
	Entries []DayEntry
	Rows    int // data rows read
	Dropped int // rows rejected as malformed
}

// ImportCSV parses exported timesheets. Only read errors are returned;
// malformed rows are counted in Dropped.
func ImportCSV(r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var res ImportResult
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Rows++
				res.Dropped++
				continue
			}
			return res, fmt.Errorf("failed to read csv: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
				continue
			}
		}
		if isBlankRecord(rec) {
			continue
		}

		res.Rows++
		entry, ok := parseRecord(rec)
		if !ok {
			res.Dropped++
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func parseRecord(rec []string) (DayEntry, bool) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	date, err := generic.ParseDate(field(0))
	if err != nil {
		return DayEntry{}, false
	}
	typ, portion, err := ParseDisplayType(field(4))
	if err != nil {
		return DayEntry{}, false
	}
	in, errIn := generic.ParseTimeOfDay(field(1))
	out, errOut := generic.ParseTimeOfDay(field(2))
	if errIn != nil || errOut != nil {
		return DayEntry{}, false
	}

	entry := DayEntry{Date: date, Type: typ, Duration: portion}
	if in.Valid() {
		entry.Intervals = []Interval{{Start: in, End: out}}
	}
	return entry, true
}

// ParseDisplayType reverses DayEntry.DisplayType: "Sick Leave (Half Day)"
// gives SickLeave and HalfDay. Blank input is a full Regular day.
func ParseDisplayType(s string) (DayType, DayPortion, error) {
	s = strings.TrimSpace(s)
	portion := FullDay
	if idx := strings.Index(strings.ToLower(s), "(half day"); idx >= 0 {
		portion = HalfDay
		s = strings.TrimSpace(s[:idx])
	}
	if s == "" {
		return Regular, portion, nil
	}
	t, err := ParseDayType(s)
	return t, portion, err
}

func isBlankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
