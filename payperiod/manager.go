/*
Package payperiod manages user-defined pay periods.

PURPOSE:
  Pay periods replace calendar months for grouping and reporting. The set is
  kept as a gapless, non-overlapping partition ordered by start date, with one
  period optionally pinned as "current".

KEY CONCEPTS:
  - Contiguity: an added or edited period must be adjacent to the nearest
    period on the side it borders, or fill the gap between two periods
    exactly. The edited period itself is left out of the check, so an edit
    can never widen or create a gap. Gaps left by a deletion elsewhere in the
    chain are tolerated until filled.
  - Fallback: with no periods at all every consumer scopes to the calendar
    month of today.

VALIDATION ORDER (first failure wins, nothing is written):
  1. start < end                          -> generic.ErrInvalidPeriod
  2. no shared day with another period    -> *generic.PeriodOverlapError
  3. adjacent to its neighbours           -> *generic.PeriodGapError

EXAMPLE:
  m := payperiod.NewManager(payperiod.State{})
  m.Add(jan1, jan15)   // ok, first period becomes current
  m.Add(jan16, jan31)  // ok, adjacent
  m.Add(feb3, feb15)   // gap error: Feb 1-2 would be uncovered
  m.Add(jan10, jan20)  // overlap error

SEE ALSO:
  - generic/period.go: Period range arithmetic and labels
  - tracker/tracker.go: Loads and saves the State around each call
*/
package payperiod

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/warp/timesheet-engine/generic"
)

// PayPeriod is one persisted period.
type PayPeriod struct {
	ID    string       `json:"id"`
	Start generic.Date `json:"start"`
	End   generic.Date `json:"end"`
	Label string       `json:"label"`
}

// Range returns the inclusive date range of the period.
func (p PayPeriod) Range() generic.Period {
	return generic.Period{Start: p.Start, End: p.End}
}

// State is what the repository persists: the period list and the pinned id.
type State struct {
	Periods   []PayPeriod
	CurrentID string
}

// Manager applies validated changes to a State. It is not safe for
// concurrent use; callers serialise access (see tracker.Tracker).
type Manager struct {
	state State

	// NewID generates ids for new periods.
	NewID func() string
}

func NewManager(state State) *Manager {
	periods := slices.Clone(state.Periods)
	sortPeriods(periods)
	return &Manager{
		state: State{Periods: periods, CurrentID: state.CurrentID},
		NewID: uuid.NewString,
	}
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	return State{Periods: slices.Clone(m.state.Periods), CurrentID: m.state.CurrentID}
}

// Periods returns the periods ordered by start date.
func (m *Manager) Periods() []PayPeriod {
	return slices.Clone(m.state.Periods)
}

// Get returns the period with id.
func (m *Manager) Get(id string) (PayPeriod, error) {
	i := m.index(id)
	if i < 0 {
		return PayPeriod{}, fmt.Errorf("%w: %s", generic.ErrPeriodNotFound, id)
	}
	return m.state.Periods[i], nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Add validates and inserts a new period. The first period ever added
// becomes current.
func (m *Manager) Add(start, end generic.Date) (PayPeriod, error) {
	requested := generic.Period{Start: start, End: end}
	if err := m.validate(requested, ""); err != nil {
		return PayPeriod{}, err
	}

	p := PayPeriod{ID: m.NewID(), Start: start, End: end, Label: requested.Label()}
	m.state.Periods = append(m.state.Periods, p)
	sortPeriods(m.state.Periods)

	if len(m.state.Periods) == 1 {
		m.state.CurrentID = p.ID
	}
	return p, nil
}

// Edit changes the range of an existing period, validated against all others.
func (m *Manager) Edit(id string, start, end generic.Date) (PayPeriod, error) {
	i := m.index(id)
	if i < 0 {
		return PayPeriod{}, fmt.Errorf("%w: %s", generic.ErrPeriodNotFound, id)
	}
	requested := generic.Period{Start: start, End: end}
	if err := m.validate(requested, id); err != nil {
		return PayPeriod{}, err
	}

	p := PayPeriod{ID: id, Start: start, End: end, Label: requested.Label()}
	m.state.Periods[i] = p
	sortPeriods(m.state.Periods)
	return p, nil
}

// Delete removes a period. If it was current, the earliest remaining period
// becomes current (or none).
func (m *Manager) Delete(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", generic.ErrPeriodNotFound, id)
	}
	m.state.Periods = slices.Delete(m.state.Periods, i, i+1)

	if m.state.CurrentID == id {
		m.state.CurrentID = ""
		if len(m.state.Periods) > 0 {
			m.state.CurrentID = m.state.Periods[0].ID
		}
	}
	return nil
}

// Select pins id as the current period.
func (m *Manager) Select(id string) (PayPeriod, error) {
	p, err := m.Get(id)
	if err != nil {
		return PayPeriod{}, err
	}
	m.state.CurrentID = id
	return p, nil
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Current resolves the active period: the pinned one if it still exists,
// else the one containing today, else the earliest. ok is false when there
// are no periods.
func (m *Manager) Current(today generic.Date) (PayPeriod, bool) {
	if m.state.CurrentID != "" {
		if i := m.index(m.state.CurrentID); i >= 0 {
			return m.state.Periods[i], true
		}
	}
	if p, ok := m.ForDate(today); ok {
		return p, true
	}
	if len(m.state.Periods) > 0 {
		return m.state.Periods[0], true
	}
	return PayPeriod{}, false
}

// ForDate returns the period containing d.
func (m *Manager) ForDate(d generic.Date) (PayPeriod, bool) {
	for _, p := range m.state.Periods {
		if p.Range().Contains(d) {
			return p, true
		}
	}
	return PayPeriod{}, false
}

// Scope is the range the timesheet and dashboard report on: the current
// period, or the calendar month of today when no period exists.
func (m *Manager) Scope(today generic.Date) generic.Period {
	if p, ok := m.Current(today); ok {
		return p.Range()
	}
	return generic.MonthPeriod(today)
}

// Coverage counts how many of dates fall inside some period.
func (m *Manager) Coverage(dates []generic.Date) (inside, outside int) {
	for _, d := range dates {
		if _, ok := m.ForDate(d); ok {
			inside++
		} else {
			outside++
		}
	}
	return inside, outside
}

// =============================================================================
// VALIDATION
// =============================================================================

func (m *Manager) validate(requested generic.Period, excludeID string) error {
	if !requested.Valid() {
		return fmt.Errorf("%w: %s", generic.ErrInvalidPeriod, requested)
	}

	others := make([]PayPeriod, 0, len(m.state.Periods))
	for _, p := range m.state.Periods {
		if p.ID == excludeID {
			continue
		}
		if p.Range().Overlaps(requested) {
			return &generic.PeriodOverlapError{Requested: requested, Existing: p.Range(), ExistingID: p.ID}
		}
		others = append(others, p)
	}
	sortPeriods(others)
	return placement(others, requested)
}

// placement checks requested against its neighbours in the sorted, already
// non-overlapping others: before all of them it must touch the first, after
// all of them it must touch the last, and between two it must fill the gap
// exactly.
func placement(others []PayPeriod, requested generic.Period) error {
	if len(others) == 0 {
		return nil
	}
	gap := func(from, to generic.Date) error {
		return &generic.PeriodGapError{Requested: requested, Gap: generic.Period{Start: from, End: to}}
	}

	first, last := others[0].Range(), others[len(others)-1].Range()
	switch {
	case requested.End.Before(first.Start):
		if !requested.Precedes(first) {
			return gap(requested.End.Next(), first.Start.Prev())
		}
		return nil
	case requested.Start.After(last.End):
		if !last.Precedes(requested) {
			return gap(last.End.Next(), requested.Start.Prev())
		}
		return nil
	}

	for i := 1; i < len(others); i++ {
		prev, next := others[i-1].Range(), others[i].Range()
		if !requested.Start.After(prev.End) || !requested.End.Before(next.Start) {
			continue
		}
		if !prev.Precedes(requested) {
			return gap(prev.End.Next(), requested.Start.Prev())
		}
		if !requested.Precedes(next) {
			return gap(requested.End.Next(), next.Start.Prev())
		}
		return nil
	}
	return nil
}

func (m *Manager) index(id string) int {
	return slices.IndexFunc(m.state.Periods, func(p PayPeriod) bool { return p.ID == id })
}

func sortPeriods(periods []PayPeriod) {
	slices.SortFunc(periods, func(a, b PayPeriod) int { return a.Start.Compare(b.Start) })
}
