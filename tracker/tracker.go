/*
tracker.go - Operations service over the repository

PURPOSE:
  Tracker is the single entry point for every user action: punching in and
  out, adding special days and breaks, editing and deleting entries, managing
  pay periods, and producing the timesheet, dashboard and balances. Both the
  HTTP API and the CLI call it.

CONCURRENCY:
  Every operation is a read-modify-write of whole collections. A mutex
  serialises them so two concurrent requests can never lose an update.
  Multi-key writes go through Store.PutBatch and land atomically.

VALIDATION:
  All validation runs before the first write. A rejected call leaves the
  repository untouched.

SEE ALSO:
  - tracker/repository.go: Typed persistence
  - worktime/: Calculator, classifier, sheet
  - payperiod/manager.go: Period validation
*/
package tracker

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/worktime"
)

// ConfirmDeleteAll is the literal ClearAll requires.
const ConfirmDeleteAll = "DELETE ALL"

type Tracker struct {
	mu         sync.Mutex
	repo       Repository
	rules      worktime.Rules
	classifier *worktime.Classifier

	// Now returns the wall clock; tests pin it.
	Now func() time.Time
	// NewID generates pay period ids.
	NewID func() string
}

func New(repo Repository, rules worktime.Rules) *Tracker {
	return &Tracker{
		repo:       repo,
		rules:      rules,
		classifier: worktime.NewClassifier(rules),
		Now:        time.Now,
		NewID:      uuid.NewString,
	}
}

// Rules returns the rule set the tracker classifies with.
func (t *Tracker) Rules() worktime.Rules { return t.rules }

func (t *Tracker) now() (generic.Date, generic.TimeOfDay) {
	n := t.Now()
	return generic.DateOf(n), generic.ClockOf(n)
}

// Today returns the current calendar day.
func (t *Tracker) Today() generic.Date {
	d, _ := t.now()
	return d
}

// =============================================================================
// QUERIES
// =============================================================================

// Entries returns entries inside scope, sorted. A zero scope returns all.
func (t *Tracker) Entries(ctx context.Context, scope generic.Period) ([]worktime.DayEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return nil, err
	}
	if scope.Start.IsZero() && scope.End.IsZero() {
		worktime.SortEntries(entries)
		return entries, nil
	}
	return worktime.Select(entries, scope), nil
}

// Status reports whether there is an open check-in today.
func (t *Tracker) Status(ctx context.Context) (worktime.DayEntry, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return worktime.DayEntry{}, false, err
	}
	today, _ := t.now()
	if i := openEntry(entries, today); i >= 0 {
		return entries[i], true, nil
	}
	return worktime.DayEntry{}, false, nil
}

// =============================================================================
// CHECK-IN / CHECK-OUT
// =============================================================================

type PunchMode string

const (
	PunchIn  PunchMode = "in"
	PunchOut PunchMode = "out"
)

func ParsePunchMode(s string) (PunchMode, error) {
	switch s {
	case "in", "checkIn", "check-in":
		return PunchIn, nil
	case "out", "checkOut", "check-out":
		return PunchOut, nil
	}
	return "", fmt.Errorf("%w: mode %q (use in or out)", generic.ErrInvalidValue, s)
}

// CheckIn opens an interval today at the current time.
func (t *Tracker) CheckIn(ctx context.Context) (worktime.DayEntry, error) {
	date, at := t.now()
	return t.ManualTime(ctx, PunchIn, date, at)
}

// CheckOut closes today's open interval at the current time.
func (t *Tracker) CheckOut(ctx context.Context) (worktime.DayEntry, error) {
	date, at := t.now()
	return t.ManualTime(ctx, PunchOut, date, at)
}

// ManualTime punches in or out on an arbitrary date.
//
// Checking in again after a check-out reopens the primary span and records
// the time away as a break, so the day keeps a single working span.
func (t *Tracker) ManualTime(ctx context.Context, mode PunchMode, date generic.Date, at generic.TimeOfDay) (worktime.DayEntry, error) {
	var missing []string
	if date.IsZero() {
		missing = append(missing, "date")
	}
	if !at.Valid() {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return worktime.DayEntry{}, &generic.MissingFieldError{Fields: missing}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return worktime.DayEntry{}, err
	}

	var idx int
	switch mode {
	case PunchIn:
		idx, entries, err = punchIn(entries, date, at)
	case PunchOut:
		idx, err = punchOut(entries, date, at)
	default:
		err = fmt.Errorf("%w: mode %q", generic.ErrInvalidValue, mode)
	}
	if err != nil {
		return worktime.DayEntry{}, err
	}

	if err := t.repo.SaveEntries(ctx, entries); err != nil {
		return worktime.DayEntry{}, err
	}
	log.Printf("[Tracker] Check-%s on %s at %s", mode, date, at)
	return entries[idx].Clone(), nil
}

func punchIn(entries []worktime.DayEntry, date generic.Date, at generic.TimeOfDay) (int, []worktime.DayEntry, error) {
	if i := openEntry(entries, date); i >= 0 {
		return -1, entries, fmt.Errorf("%w since %s on %s", generic.ErrAlreadyCheckedIn, openInterval(entries[i]).Start, date)
	}

	i := firstOnDate(entries, date)
	if i < 0 {
		entries = append(entries, worktime.DayEntry{
			Date:      date,
			Type:      worktime.Regular,
			Intervals: []worktime.Interval{{Start: at}},
		})
		return len(entries) - 1, entries, nil
	}

	e := &entries[i]
	if len(e.Intervals) == 0 || !e.Intervals[0].Start.Valid() {
		e.Intervals = append([]worktime.Interval{{Start: at}}, e.Breaks()...)
		return i, entries, nil
	}

	primary := e.Intervals[0]
	if at.Minutes() < primary.End.Minutes() {
		return -1, entries, fmt.Errorf("%w: check-in at %s is before the last check-out at %s",
			generic.ErrInvalidInterval, at, primary.End)
	}
	if at.Minutes() > primary.End.Minutes() {
		e.Intervals = append(e.Intervals, worktime.Interval{Start: primary.End, End: at})
	}
	e.Intervals[0].End = generic.TimeOfDay{}
	return i, entries, nil
}

func punchOut(entries []worktime.DayEntry, date generic.Date, at generic.TimeOfDay) (int, error) {
	i := openEntry(entries, date)
	if i < 0 {
		return -1, fmt.Errorf("%w on %s", generic.ErrNotCheckedIn, date)
	}
	e := &entries[i]
	j := slices.IndexFunc(e.Intervals, worktime.Interval.Open)
	if at.Minutes() <= e.Intervals[j].Start.Minutes() {
		return -1, fmt.Errorf("%w: check-out at %s is not after check-in at %s",
			generic.ErrInvalidInterval, at, e.Intervals[j].Start)
	}
	e.Intervals[j].End = at
	return i, nil
}

// openEntry returns the index of the entry on date holding an open interval.
func openEntry(entries []worktime.DayEntry, date generic.Date) int {
	return slices.IndexFunc(entries, func(e worktime.DayEntry) bool {
		return e.Date.Equal(date) && slices.ContainsFunc(e.Intervals, worktime.Interval.Open)
	})
}

func openInterval(e worktime.DayEntry) worktime.Interval {
	i := slices.IndexFunc(e.Intervals, worktime.Interval.Open)
	if i < 0 {
		return worktime.Interval{}
	}
	return e.Intervals[i]
}

// firstOnDate returns the index of the entry that sorts first on date.
func firstOnDate(entries []worktime.DayEntry, date generic.Date) int {
	best := -1
	for i, e := range entries {
		if !e.Date.Equal(date) {
			continue
		}
		if best < 0 || e.Type < entries[best].Type ||
			(e.Type == entries[best].Type && e.Duration < entries[best].Duration) {
			best = i
		}
	}
	return best
}

// =============================================================================
// SPECIAL DAYS AND BREAKS
// =============================================================================

// DayInput describes a day added by hand. Intervals are optional.
type DayInput struct {
	Date        generic.Date
	Type        worktime.DayType
	Duration    worktime.DayPortion
	Notes       string
	DoubleHours bool
	Intervals   []worktime.Interval
}

// AddSpecialDay inserts a new entry, rejecting a duplicate (date, type, duration).
func (t *Tracker) AddSpecialDay(ctx context.Context, in DayInput) (worktime.DayEntry, error) {
	if in.Date.IsZero() {
		return worktime.DayEntry{}, &generic.MissingFieldError{Fields: []string{"date"}}
	}
	if err := validateIntervals(in.Intervals); err != nil {
		return worktime.DayEntry{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return worktime.DayEntry{}, err
	}

	entry := worktime.DayEntry{
		Date:        in.Date,
		Type:        in.Type,
		Duration:    in.Duration,
		Notes:       in.Notes,
		DoubleHours: in.DoubleHours,
		Intervals:   slices.Clone(in.Intervals),
	}
	if worktime.FindEntry(entries, entry.Key()) >= 0 {
		return worktime.DayEntry{}, duplicate(entry.Key())
	}

	entries = append(entries, entry)
	if err := t.repo.SaveEntries(ctx, entries); err != nil {
		return worktime.DayEntry{}, err
	}
	log.Printf("[Tracker] Added %s on %s", entry.DisplayType(), entry.Date)
	return entry, nil
}

// AddBreak appends a break to the day's worked entry. The day must already
// have working hours.
func (t *Tracker) AddBreak(ctx context.Context, date generic.Date, brk worktime.Interval, notes string) (worktime.DayEntry, error) {
	var missing []string
	if date.IsZero() {
		missing = append(missing, "date")
	}
	if !brk.Start.Valid() {
		missing = append(missing, "start")
	}
	if !brk.End.Valid() {
		missing = append(missing, "end")
	}
	if len(missing) > 0 {
		return worktime.DayEntry{}, &generic.MissingFieldError{Fields: missing}
	}
	if brk.End.Minutes() <= brk.Start.Minutes() {
		return worktime.DayEntry{}, fmt.Errorf("%w: break %s-%s", generic.ErrInvalidInterval, brk.Start, brk.End)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return worktime.DayEntry{}, err
	}

	i := -1
	for j, e := range entries {
		if e.Date.Equal(date) && len(e.Intervals) > 0 && (i < 0 || e.Type < entries[i].Type) {
			i = j
		}
	}
	if i < 0 {
		return worktime.DayEntry{}, fmt.Errorf("%w: no working hours on %s", generic.ErrEntryNotFound, date)
	}

	e := &entries[i]
	e.Intervals = append(e.Intervals, brk)
	if notes != "" {
		if e.Notes != "" {
			e.Notes += "; "
		}
		e.Notes += "Break: " + notes
	}

	if err := t.repo.SaveEntries(ctx, entries); err != nil {
		return worktime.DayEntry{}, err
	}
	log.Printf("[Tracker] Added break %s-%s on %s", brk.Start, brk.End, date)
	return e.Clone(), nil
}

// =============================================================================
// EDIT / DELETE
// =============================================================================

// EntryUpdate replaces the editable fields of an entry. Breaks are kept only
// when both check-in and check-out are set.
type EntryUpdate struct {
	Type        worktime.DayType
	Duration    worktime.DayPortion
	CheckIn     generic.TimeOfDay
	CheckOut    generic.TimeOfDay
	Breaks      []worktime.Interval
	Notes       string
	DoubleHours bool
}

func (u EntryUpdate) intervals() ([]worktime.Interval, error) {
	if !u.CheckIn.Valid() {
		return nil, nil
	}
	primary := worktime.Interval{Start: u.CheckIn, End: u.CheckOut}
	if !u.CheckOut.Valid() {
		return []worktime.Interval{primary}, nil
	}
	out := []worktime.Interval{primary}
	for _, b := range u.Breaks {
		if b.Complete() {
			out = append(out, b)
		}
	}
	if err := validateIntervals(out); err != nil {
		return nil, err
	}
	return out, nil
}

// EditEntry rewrites the entry identified by key.
func (t *Tracker) EditEntry(ctx context.Context, key worktime.EntryKey, upd EntryUpdate) (worktime.DayEntry, error) {
	intervals, err := upd.intervals()
	if err != nil {
		return worktime.DayEntry{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return worktime.DayEntry{}, err
	}
	i := worktime.FindEntry(entries, key)
	if i < 0 {
		return worktime.DayEntry{}, fmt.Errorf("%w: %s", generic.ErrEntryNotFound, key)
	}

	updated := worktime.DayEntry{
		Date:        key.Date,
		Type:        upd.Type,
		Duration:    upd.Duration,
		Intervals:   intervals,
		Notes:       upd.Notes,
		DoubleHours: upd.DoubleHours,
	}
	if updated.Key() != key && worktime.FindEntry(entries, updated.Key()) >= 0 {
		return worktime.DayEntry{}, duplicate(updated.Key())
	}

	entries[i] = updated
	if err := t.repo.SaveEntries(ctx, entries); err != nil {
		return worktime.DayEntry{}, err
	}
	log.Printf("[Tracker] Updated %s", key)
	return updated, nil
}

// DeleteEntry removes one entry.
func (t *Tracker) DeleteEntry(ctx context.Context, key worktime.EntryKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return err
	}
	i := worktime.FindEntry(entries, key)
	if i < 0 {
		return fmt.Errorf("%w: %s", generic.ErrEntryNotFound, key)
	}
	entries = slices.Delete(entries, i, i+1)
	if err := t.repo.SaveEntries(ctx, entries); err != nil {
		return err
	}
	log.Printf("[Tracker] Deleted %s", key)
	return nil
}

// ClearDay removes every entry on date and returns how many were removed.
func (t *Tracker) ClearDay(ctx context.Context, date generic.Date) (int, error) {
	return t.removeWhere(ctx, "day "+date.String(), func(e worktime.DayEntry) bool {
		return e.Date.Equal(date)
	})
}

// ClearMonth removes every entry in the calendar month of any day in it.
func (t *Tracker) ClearMonth(ctx context.Context, month generic.Date) (int, error) {
	key := month.MonthKey()
	return t.removeWhere(ctx, "month "+key, func(e worktime.DayEntry) bool {
		return e.Date.MonthKey() == key
	})
}

// ClearAll wipes entries, periods and settings. confirm must equal
// ConfirmDeleteAll.
func (t *Tracker) ClearAll(ctx context.Context, confirm string) error {
	if confirm != ConfirmDeleteAll {
		return fmt.Errorf("%w: type %q to delete all data", generic.ErrConfirmationRequired, ConfirmDeleteAll)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.repo.Reset(ctx); err != nil {
		return err
	}
	log.Printf("[Tracker] All data cleared")
	return nil
}

func (t *Tracker) removeWhere(ctx context.Context, what string, match func(worktime.DayEntry) bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return 0, err
	}
	kept := slices.DeleteFunc(entries, match)
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := t.repo.SaveEntries(ctx, kept); err != nil {
		return 0, err
	}
	log.Printf("[Tracker] Cleared %s (%d entries)", what, removed)
	return removed, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func validateIntervals(intervals []worktime.Interval) error {
	for _, iv := range intervals {
		if !iv.Complete() {
			return &generic.MissingFieldError{Fields: []string{"interval start/end"}}
		}
		if iv.End.Minutes() <= iv.Start.Minutes() {
			return fmt.Errorf("%w: %s-%s", generic.ErrInvalidInterval, iv.Start, iv.End)
		}
	}
	return nil
}

func duplicate(key worktime.EntryKey) error {
	return &generic.DuplicateEntryError{Date: key.Date, Type: key.Type.Label(), Duration: key.Duration.String()}
}
