package payperiod

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timesheet-engine/generic"
)

func d(s string) generic.Date { return generic.MustParseDate(s) }

// newManager returns a manager with sequential ids p1, p2, ...
func newManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(State{})
	n := 0
	m.NewID = func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
	return m
}

// januaryManager holds [Jan1-Jan15] (p1) and [Jan16-Jan31] (p2).
func januaryManager(t *testing.T) *Manager {
	t.Helper()
	m := newManager(t)
	_, err := m.Add(d("2025-01-01"), d("2025-01-15"))
	require.NoError(t, err)
	_, err = m.Add(d("2025-01-16"), d("2025-01-31"))
	require.NoError(t, err)
	return m
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestAdd_FirstPeriodAnyRange(t *testing.T) {
	m := newManager(t)

	p, err := m.Add(d("2024-12-25"), d("2025-01-05"))

	require.NoError(t, err)
	assert.Equal(t, "25 Dec 2024 – 5 Jan 2025", p.Label)
	assert.Equal(t, p.ID, m.State().CurrentID, "first period becomes current")
}

func TestAdd_AdjacentAfterSucceeds(t *testing.T) {
	m := januaryManager(t)

	p, err := m.Add(d("2025-02-01"), d("2025-02-15"))

	require.NoError(t, err)
	assert.Equal(t, "1 Feb – 15 Feb 2025", p.Label)
	assert.Len(t, m.Periods(), 3)
	assert.Equal(t, "p1", m.State().CurrentID, "current unchanged")
}

func TestAdd_AdjacentBeforeSucceeds(t *testing.T) {
	m := januaryManager(t)

	_, err := m.Add(d("2024-12-16"), d("2024-12-31"))

	require.NoError(t, err)
	assert.Equal(t, d("2024-12-16"), m.Periods()[0].Start, "kept sorted")
}

func TestAdd_GapRejected(t *testing.T) {
	// GIVEN: [Jan1-Jan15], [Jan16-Jan31]
	// WHEN: Adding [Feb3-Feb15]
	// THEN: Gap error naming Feb 1-2
	m := januaryManager(t)

	_, err := m.Add(d("2025-02-03"), d("2025-02-15"))

	var gapErr *generic.PeriodGapError
	require.ErrorAs(t, err, &gapErr)
	assert.ErrorIs(t, err, generic.ErrPeriodGap)
	assert.Equal(t, d("2025-02-01"), gapErr.Gap.Start)
	assert.Equal(t, d("2025-02-02"), gapErr.Gap.End)
	assert.Contains(t, err.Error(), "2 day(s)")
	assert.Len(t, m.Periods(), 2, "nothing written")
}

func TestAdd_GapBeforeRejected(t *testing.T) {
	m := januaryManager(t)

	_, err := m.Add(d("2024-12-01"), d("2024-12-20"))

	assert.ErrorIs(t, err, generic.ErrPeriodGap)
}

func TestAdd_OverlapRejected(t *testing.T) {
	m := januaryManager(t)

	_, err := m.Add(d("2025-01-10"), d("2025-01-20"))

	var overlap *generic.PeriodOverlapError
	require.ErrorAs(t, err, &overlap)
	assert.Equal(t, "p1", overlap.ExistingID)
	assert.True(t, generic.IsConflict(err))
}

func TestAdd_ContainingRangeRejected(t *testing.T) {
	m := januaryManager(t)

	_, err := m.Add(d("2024-12-01"), d("2025-02-28"))

	assert.ErrorIs(t, err, generic.ErrPeriodOverlap)
}

func TestAdd_InvalidRange(t *testing.T) {
	m := newManager(t)

	for _, r := range [][2]string{{"2025-01-15", "2025-01-01"}, {"2025-01-15", "2025-01-15"}} {
		_, err := m.Add(d(r[0]), d(r[1]))
		assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
	}
	_, err := m.Add(generic.Date{}, d("2025-01-15"))
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func TestAdd_FillsExistingGapExactly(t *testing.T) {
	// GIVEN: Jan, Feb, Mar; Feb deleted (gap left by deletion)
	m := newManager(t)
	_, _ = m.Add(d("2025-01-01"), d("2025-01-31"))
	feb, _ := m.Add(d("2025-02-01"), d("2025-02-28"))
	_, _ = m.Add(d("2025-03-01"), d("2025-03-31"))
	require.NoError(t, m.Delete(feb.ID))

	// WHEN: Adding after the end, the old gap is tolerated
	_, err := m.Add(d("2025-04-01"), d("2025-04-30"))
	require.NoError(t, err)

	// WHEN: Partially filling the gap
	_, err = m.Add(d("2025-02-01"), d("2025-02-15"))
	assert.ErrorIs(t, err, generic.ErrPeriodGap)

	// WHEN: Filling the gap exactly
	_, err = m.Add(d("2025-02-01"), d("2025-02-28"))
	require.NoError(t, err)
	assert.Len(t, m.Periods(), 4)
}

func TestEdit(t *testing.T) {
	m := januaryManager(t)

	// Extending the last period is fine.
	p, err := m.Edit("p2", d("2025-01-16"), d("2025-02-05"))
	require.NoError(t, err)
	assert.Equal(t, "16 Jan – 5 Feb 2025", p.Label)

	// Shrinking the first period's start keeps the chain contiguous.
	_, err = m.Edit("p1", d("2025-01-05"), d("2025-01-15"))
	require.NoError(t, err)

	// Shrinking its end opens a gap.
	_, err = m.Edit("p1", d("2025-01-05"), d("2025-01-10"))
	assert.ErrorIs(t, err, generic.ErrPeriodGap)

	// Moving into the neighbour overlaps.
	_, err = m.Edit("p1", d("2025-01-05"), d("2025-01-20"))
	assert.ErrorIs(t, err, generic.ErrPeriodOverlap)

	_, err = m.Edit("missing", d("2025-01-01"), d("2025-01-02"))
	assert.True(t, generic.IsNotFound(err))
}

func TestEdit_MustTouchNeighbourAcrossDeletionGap(t *testing.T) {
	// GIVEN: Jan 1-15 and Feb 1-15, the period between them deleted
	m := newManager(t)
	_, _ = m.Add(d("2025-01-01"), d("2025-01-15"))
	mid, _ := m.Add(d("2025-01-16"), d("2025-01-31"))
	feb, _ := m.Add(d("2025-02-01"), d("2025-02-15"))
	require.NoError(t, m.Delete(mid.ID))

	// WHEN: Extending Feb without reaching back to Jan 15
	_, err := m.Edit(feb.ID, d("2025-02-01"), d("2025-02-20"))

	// THEN: Rejected, the period would not touch its neighbour
	var gapErr *generic.PeriodGapError
	require.ErrorAs(t, err, &gapErr)
	assert.Equal(t, d("2025-01-16"), gapErr.Gap.Start)
	assert.Equal(t, d("2025-01-31"), gapErr.Gap.End)
	assert.Equal(t, d("2025-02-15"), m.Periods()[1].End)

	// AND: Starting the day after Jan 15 closes the gap
	p, err := m.Edit(feb.ID, d("2025-01-16"), d("2025-02-20"))
	require.NoError(t, err)
	assert.Equal(t, "16 Jan – 20 Feb 2025", p.Label)
}

// =============================================================================
// CURRENT PERIOD TESTS
// =============================================================================

func TestDelete_ReassignsCurrent(t *testing.T) {
	m := januaryManager(t)
	_, err := m.Select("p2")
	require.NoError(t, err)

	require.NoError(t, m.Delete("p2"))
	assert.Equal(t, "p1", m.State().CurrentID)

	require.NoError(t, m.Delete("p1"))
	assert.Equal(t, "", m.State().CurrentID)

	assert.True(t, errors.Is(m.Delete("p1"), generic.ErrPeriodNotFound))
}

func TestCurrent_Resolution(t *testing.T) {
	m := januaryManager(t)
	m.state.CurrentID = ""

	// No pin: period containing today.
	p, ok := m.Current(d("2025-01-20"))
	require.True(t, ok)
	assert.Equal(t, "p2", p.ID)

	// Today outside every period: earliest.
	p, _ = m.Current(d("2025-06-01"))
	assert.Equal(t, "p1", p.ID)

	// Pinned wins over today.
	_, _ = m.Select("p1")
	p, _ = m.Current(d("2025-01-20"))
	assert.Equal(t, "p1", p.ID)

	// Stale pin falls back.
	m.state.CurrentID = "gone"
	p, _ = m.Current(d("2025-01-20"))
	assert.Equal(t, "p2", p.ID)
}

func TestScope_FallsBackToCalendarMonth(t *testing.T) {
	m := newManager(t)

	scope := m.Scope(d("2025-02-10"))

	assert.Equal(t, d("2025-02-01"), scope.Start)
	assert.Equal(t, d("2025-02-28"), scope.End)

	_, ok := m.Current(d("2025-02-10"))
	assert.False(t, ok)
}

func TestSelect_Unknown(t *testing.T) {
	m := januaryManager(t)

	_, err := m.Select("nope")

	assert.ErrorIs(t, err, generic.ErrPeriodNotFound)
	assert.Equal(t, "p1", m.State().CurrentID)
}

func TestCoverage(t *testing.T) {
	m := januaryManager(t)

	in, out := m.Coverage([]generic.Date{d("2025-01-01"), d("2025-01-31"), d("2025-02-01")})

	assert.Equal(t, 2, in)
	assert.Equal(t, 1, out)
}

func TestNewManager_SortsLoadedState(t *testing.T) {
	m := NewManager(State{Periods: []PayPeriod{
		{ID: "b", Start: d("2025-01-16"), End: d("2025-01-31")},
		{ID: "a", Start: d("2025-01-01"), End: d("2025-01-15")},
	}})

	assert.Equal(t, "a", m.Periods()[0].ID)
}
