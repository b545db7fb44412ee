// Package worktime implements the time-accounting core: the day entry model,
// the work-time calculator, the overtime classifier and the timesheet view
// built on top of them.
package worktime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// DAY TYPE - Closed set of entry kinds
// =============================================================================

type DayType uint8

const (
	Regular DayType = iota
	Vacation
	SickLeave
	Holiday
	Leave
	ToBeAdded
)

var dayTypeNames = [...]string{
	Regular:   "Regular",
	Vacation:  "Vacation",
	SickLeave: "SickLeave",
	Holiday:   "Holiday",
	Leave:     "Leave",
	ToBeAdded: "ToBeAdded",
}

// DayTypes lists every type in declaration order.
var DayTypes = []DayType{Regular, Vacation, SickLeave, Holiday, Leave, ToBeAdded}

func (t DayType) String() string {
	if int(t) < len(dayTypeNames) {
		return dayTypeNames[t]
	}
	return fmt.Sprintf("DayType(%d)", uint8(t))
}

// Label is the human form ("Sick Leave", "To Be Added").
func (t DayType) Label() string {
	switch t {
	case SickLeave:
		return "Sick Leave"
	case ToBeAdded:
		return "To Be Added"
	default:
		return t.String()
	}
}

// IsSpecial reports any non-Regular type.
func (t DayType) IsSpecial() bool { return t != Regular }

// IsLeaveBalance reports the types that draw on (or feed) a leave balance.
// These are the types for which full and half days replace the normal baseline.
func (t DayType) IsLeaveBalance() bool {
	return t == Vacation || t == SickLeave || t == ToBeAdded
}

// ParseDayType accepts the canonical names, the human labels and any
// spacing/case variant of them ("sick leave", "SICKLEAVE").
func ParseDayType(s string) (DayType, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	for _, t := range DayTypes {
		if strings.ToLower(t.String()) == norm {
			return t, nil
		}
	}
	return Regular, fmt.Errorf("unknown day type %q", s)
}

func (t DayType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *DayType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*t = Regular
		return nil
	}
	parsed, err := ParseDayType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// =============================================================================
// DAY PORTION - Full or half day
// =============================================================================

// DayPortion is the "duration" of a special day: 1 or 0.5.
type DayPortion uint8

const (
	FullDay DayPortion = iota
	HalfDay
)

var (
	oneDay  = decimal.NewFromInt(1)
	halfDay = decimal.NewFromFloat(0.5)
)

// Days returns 1 or 0.5.
func (p DayPortion) Days() decimal.Decimal {
	if p == HalfDay {
		return halfDay
	}
	return oneDay
}

func (p DayPortion) String() string {
	if p == HalfDay {
		return "0.5"
	}
	return "1"
}

// ParseDayPortion accepts "1", "0.5", ".5", "full", "half"; blank is a full day.
func ParseDayPortion(s string) (DayPortion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "1.0", "full":
		return FullDay, nil
	case "0.5", ".5", "half":
		return HalfDay, nil
	}
	return FullDay, fmt.Errorf("invalid duration %q (use 1 or 0.5)", s)
}

func (p DayPortion) MarshalJSON() ([]byte, error) {
	if p == HalfDay {
		return []byte("0.5"), nil
	}
	return []byte("1"), nil
}

func (p *DayPortion) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if string(b) == "null" {
		*p = FullDay
		return nil
	}
	parsed, err := ParseDayPortion(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// =============================================================================
// INTERVAL - One check-in/check-out span
// =============================================================================

// Interval is a span on a single day. It is open when End is absent.
type Interval struct {
	Start generic.TimeOfDay `json:"start"`
	End   generic.TimeOfDay `json:"end"`
}

// Span builds a closed interval from "HH:MM" strings; it panics on bad input.
func Span(start, end string) Interval {
	return Interval{Start: generic.MustParseTimeOfDay(start), End: generic.MustParseTimeOfDay(end)}
}

// Complete reports both endpoints present.
func (i Interval) Complete() bool { return i.Start.Valid() && i.End.Valid() }

// Open reports a started span without an end (an active check-in).
func (i Interval) Open() bool { return i.Start.Valid() && !i.End.Valid() }

// Minutes is End - Start; it may be zero or negative for reversed input.
func (i Interval) Minutes() int { return i.End.Minutes() - i.Start.Minutes() }

// UnmarshalJSON also reads the legacy {"in": ..., "out": ...} shape.
func (i *Interval) UnmarshalJSON(b []byte) error {
	var raw struct {
		Start *generic.TimeOfDay `json:"start"`
		End   *generic.TimeOfDay `json:"end"`
		In    *generic.TimeOfDay `json:"in"`
		Out   *generic.TimeOfDay `json:"out"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*i = Interval{}
	switch {
	case raw.Start != nil:
		i.Start = *raw.Start
	case raw.In != nil:
		i.Start = *raw.In
	}
	switch {
	case raw.End != nil:
		i.End = *raw.End
	case raw.Out != nil:
		i.End = *raw.Out
	}
	return nil
}

// =============================================================================
// DAY ENTRY - Unit of storage
// =============================================================================

// DayEntry is one stored record. intervals[0] is the primary working span,
// intervals[1:] are breaks taken inside it.
type DayEntry struct {
	Date        generic.Date `json:"date"`
	Type        DayType      `json:"type"`
	Duration    DayPortion   `json:"duration"`
	Intervals   []Interval   `json:"intervals"`
	Notes       string       `json:"notes"`
	DoubleHours bool         `json:"doubleHours"`
}

// UnmarshalJSON also accepts entries written by the old CSV import, which
// kept top-level checkIn/checkOut fields instead of intervals.
func (e *DayEntry) UnmarshalJSON(b []byte) error {
	type plain DayEntry
	var raw struct {
		plain
		CheckIn  *generic.TimeOfDay `json:"checkIn"`
		CheckOut *generic.TimeOfDay `json:"checkOut"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = DayEntry(raw.plain)
	if len(e.Intervals) == 0 && raw.CheckIn != nil && raw.CheckIn.Valid() {
		iv := Interval{Start: *raw.CheckIn}
		if raw.CheckOut != nil {
			iv.End = *raw.CheckOut
		}
		e.Intervals = []Interval{iv}
	}
	return nil
}

// EntryKey identifies an entry; no two entries share a key.
type EntryKey struct {
	Date     generic.Date `json:"date"`
	Type     DayType      `json:"type"`
	Duration DayPortion   `json:"duration"`
}

func (e DayEntry) Key() EntryKey {
	return EntryKey{Date: e.Date, Type: e.Type, Duration: e.Duration}
}

func (k EntryKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Date, k.Type, k.Duration)
}

// Primary returns the first interval, if any.
func (e DayEntry) Primary() (Interval, bool) {
	if len(e.Intervals) == 0 {
		return Interval{}, false
	}
	return e.Intervals[0], true
}

// Breaks returns intervals[1:].
func (e DayEntry) Breaks() []Interval {
	if len(e.Intervals) < 2 {
		return nil
	}
	return e.Intervals[1:]
}

// Complete reports every interval has both endpoints.
func (e DayEntry) Complete() bool {
	for _, iv := range e.Intervals {
		if !iv.Complete() {
			return false
		}
	}
	return true
}

// DisplayType is the type label with " (Half Day)" for half days.
func (e DayEntry) DisplayType() string {
	if e.Duration == HalfDay {
		return e.Type.Label() + " (Half Day)"
	}
	return e.Type.Label()
}

// SheetType is the label shown on a timesheet row: weekend days read
// "Weekend", ToBeAdded reads "Official Holiday - To Be Added", and doubled
// days carry a " x2" marker.
func (e DayEntry) SheetType() string {
	label := e.Type.Label()
	switch {
	case e.Type == ToBeAdded:
		label = "Official Holiday - To Be Added"
	case e.Date.IsWeekend():
		label = "Weekend"
	}
	if e.Duration == HalfDay {
		label += " (Half Day)"
	}
	if e.DoubleHours {
		label += " x2"
	}
	return label
}

// Clone returns a deep copy so callers can mutate intervals freely.
func (e DayEntry) Clone() DayEntry {
	c := e
	c.Intervals = append([]Interval(nil), e.Intervals...)
	return c
}

// ParseSpecialDayLabel maps a picker label such as "Vacation (Half Day)"
// to its type and portion. Unrecognised labels become a Leave day.
func ParseSpecialDayLabel(label string) (DayType, DayPortion) {
	portion := FullDay
	if strings.Contains(strings.ToLower(label), "half day") {
		portion = HalfDay
	}
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "vacation"):
		return Vacation, portion
	case strings.Contains(lower, "sick"):
		return SickLeave, portion
	case strings.Contains(lower, "holiday"):
		return Holiday, portion
	case strings.Contains(lower, "to be added"), strings.Contains(lower, "tobeadded"):
		return ToBeAdded, portion
	}
	return Leave, portion
}
