package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timesheet-engine/generic"
	memstore "github.com/warp/timesheet-engine/generic/store"
)

// newTestApp shares one in-memory store across invocations, with the clock
// pinned to Monday 2025-01-06 09:00.
func newTestApp() *app {
	clock := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	a := &app{store: memstore.NewMemory()}
	a.now = func() time.Time { return clock }
	return a
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(a)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append(args, "--color", "never"))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCheckInCheckOut(t *testing.T) {
	a := newTestApp()

	// GIVEN: A check-in at 09:00
	out, err := run(t, a, "checkin")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked in on 2025-01-06 at 09:00")

	out, err = run(t, a, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked in since 09:00")

	// WHEN: Checking in again
	_, err = run(t, a, "checkin")

	// THEN: The open check-in is a conflict
	require.Error(t, err)
	assert.True(t, generic.IsConflict(err))

	// AND: Checking out at 18:30 closes the day with 0.75 weighted hours
	a.now = func() time.Time { return time.Date(2025, time.January, 6, 18, 30, 0, 0, time.UTC) }
	out, err = run(t, a, "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "09:00 - 18:30")

	out, err = run(t, a, "sheet", "--month", "2025-01")
	require.NoError(t, err)
	assert.Contains(t, out, "January 2025")
	assert.Contains(t, out, "0.75")
}

func TestManualTime_NaturalDate(t *testing.T) {
	a := newTestApp()

	_, err := run(t, a, "manual", "in", "--date", "yesterday", "--time", "10:00")
	require.NoError(t, err)
	_, err = run(t, a, "manual", "out", "--date", "2025-01-05", "--time", "12:00")
	require.NoError(t, err)

	// Sunday has no baseline: 2h weighted x2
	out, err := run(t, a, "sheet", "--month", "2025-01")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01-05")
	assert.Contains(t, out, "4.00")

	_, err = run(t, a, "manual", "sideways", "--time", "10:00")
	assert.True(t, generic.IsClientError(err))
}

func TestDayAddAndBalance(t *testing.T) {
	a := newTestApp()

	out, err := run(t, a, "day", "add", "--label", "Vacation (Half Day)", "--date", "2025-01-07")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Vacation (Half Day) on 2025-01-07")

	_, err = run(t, a, "day", "add", "--type", "vacation", "--half", "--date", "2025-01-07")
	assert.True(t, generic.IsConflict(err))

	out, err = run(t, a, "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "Balances 2025")
	assert.Contains(t, out, "20.50")

	_, err = run(t, a, "break", "add", "12:00", "12:30", "--date", "2025-01-08")
	assert.True(t, generic.IsNotFound(err))
}

func TestBalance_YearAndList(t *testing.T) {
	a := newTestApp()

	_, err := run(t, a, "day", "add", "--type", "vacation", "--date", "2024-12-23")
	require.NoError(t, err)
	_, err = run(t, a, "day", "add", "--type", "sickleave", "--half", "--date", "2025-01-03")
	require.NoError(t, err)

	out, err := run(t, a, "balance", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Balances 2024")
	assert.Contains(t, out, "20.00")

	out, err = run(t, a, "balance", "--list", "vacation", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Vacation 2024")
	assert.Contains(t, out, "2024-12 (1.00)")
	assert.Contains(t, out, "2024-12-23")
	assert.Contains(t, out, "Years: 2025, 2024")

	out, err = run(t, a, "balance", "--list", "sick")
	require.NoError(t, err)
	assert.Contains(t, out, "Sick Leave 2025")
	assert.Contains(t, out, "0.50")

	_, err = run(t, a, "balance", "--list", "holiday")
	assert.True(t, generic.IsClientError(err))
}

func TestEditDeleteAndClear(t *testing.T) {
	a := newTestApp()

	_, err := run(t, a, "day", "add", "--date", "2025-01-08", "--in", "09:00", "--out", "17:00")
	require.NoError(t, err)

	out, err := run(t, a, "edit", "--date", "2025-01-08", "--in", "08:00", "--out", "18:00", "--break", "13:00-13:30")
	require.NoError(t, err)
	assert.Contains(t, out, "08:00 - 18:00")
	assert.Contains(t, out, "13:00 - 13:30")

	_, err = run(t, a, "edit", "--date", "2025-01-08", "--break", "13:00")
	assert.True(t, generic.IsClientError(err))

	_, err = run(t, a, "delete", "--date", "2025-01-09")
	assert.True(t, generic.IsNotFound(err))

	_, err = run(t, a, "clear", "all")
	assert.True(t, errors.Is(err, generic.ErrConfirmationRequired))

	out, err = run(t, a, "clear", "month", "2025-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 entries in 2025-01")
}

func TestPeriods(t *testing.T) {
	a := newTestApp()

	out, err := run(t, a, "period", "add", "2025-01-01", "2025-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "1 Jan – 15 Jan 2025")

	// A gap after the first period is rejected
	_, err = run(t, a, "period", "add", "2025-01-20", "2025-01-31")
	assert.True(t, errors.Is(err, generic.ErrPeriodGap))

	_, err = run(t, a, "period", "add", "2025-01-16", "2025-01-31")
	require.NoError(t, err)

	out, err = run(t, a, "period", "current")
	require.NoError(t, err)
	assert.Contains(t, out, "1 Jan – 15 Jan 2025")

	out, err = run(t, a, "period", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "16 Jan – 31 Jan 2025")

	_, err = run(t, a, "period", "select", "missing")
	assert.True(t, generic.IsNotFound(err))
}

func TestExportImport(t *testing.T) {
	a := newTestApp()
	path := filepath.Join(t.TempDir(), "sheet.csv")

	_, err := run(t, a, "day", "add", "--date", "2025-01-06", "--in", "09:00", "--out", "18:00")
	require.NoError(t, err)
	_, err = run(t, a, "export", "--month", "2025-01", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,Check In,Check Out,Hours,Type"))

	// Fresh store imports the row
	b := newTestApp()
	out, err := run(t, b, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 entries")
}

func TestSettingsAndRules(t *testing.T) {
	a := newTestApp()

	out, err := run(t, a, "settings", "--name", "Alex Morgan", "--salary", "3000")
	require.NoError(t, err)
	assert.Contains(t, out, "Alex Morgan")
	assert.Contains(t, out, "3000.00")

	_, err = run(t, a, "settings", "--salary=-5")
	assert.True(t, generic.IsClientError(err))

	out, err = run(t, a, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, `"weekday_baseline_minutes": 540`)
}

func TestParseDay(t *testing.T) {
	a := newTestApp()

	d, err := a.parseDay("")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", d.String())

	d, err = a.parseDay("2025-02-03")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", d.String())

	_, err = a.parseDay("not a date at all")
	assert.True(t, generic.IsClientError(err))
}
