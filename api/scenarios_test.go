/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Settings are saved
	- Entries pass validation and land in the current month
	- Dashboard totals, money and balances match hand-computed values

These tests ensure scenarios work correctly and can be used as integration tests.
*/
package api

import (
	"context"
	"testing"
	"time"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/store/sqlite"
	"github.com/warp/timesheet-engine/tracker"
	"github.com/warp/timesheet-engine/worktime"
)

// setupTestHandler builds a handler over an in-memory SQLite store with the
// clock pinned to Monday 2025-01-06 09:00.
func setupTestHandler(t *testing.T) *Handler {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(store, worktime.DefaultRules())
	handler.Tracker.Now = func() time.Time {
		return time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	}
	return handler
}

func TestScenario_RegularMonth(t *testing.T) {
	// GIVEN: The regular-month scenario
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadRegularMonthScenario(ctx); err != nil {
		t.Fatalf("Failed to load regular-month scenario: %v", err)
	}

	// WHEN: Building the dashboard for January 2025
	d, err := handler.Tracker.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}

	// THEN: 0.75 - 1 + 0.75 + 0.75 + 8 weighted hours
	if d.Totals.Entries != 5 {
		t.Errorf("Expected 5 entries, got %d", d.Totals.Entries)
	}
	if got := d.Totals.WeightedExtra.String(); got != "9.25" {
		t.Errorf("Expected weighted overtime 9.25, got %s", got)
	}
	// 3000 x 2/3 / 187.5 = 10.67 per hour
	if got := d.Pay.OvertimeMoney.String(); got != "98.67" {
		t.Errorf("Expected overtime money 98.67, got %s", got)
	}
	if got := d.Pay.TotalSalary.String(); got != "3098.67" {
		t.Errorf("Expected total salary 3098.67, got %s", got)
	}
	if d.FullName != "Alex Morgan" {
		t.Errorf("Expected full name Alex Morgan, got %q", d.FullName)
	}
	if d.Label != "January 2025" {
		t.Errorf("Expected month label, got %q", d.Label)
	}
}

func TestScenario_LeaveMix(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadLeaveMixScenario(ctx); err != nil {
		t.Fatalf("Failed to load leave-mix scenario: %v", err)
	}

	d, err := handler.Tracker.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}

	// Half-day sick surplus 1h x1.5, holiday 3h x2, double-hours 10h x2
	if got := d.Totals.WeightedExtra.String(); got != "27.50" {
		t.Errorf("Expected weighted overtime 27.50, got %s", got)
	}

	// Vacation: 21 - 1 taken + 1 to be added
	if got := d.Balances.Vacation.Remaining.String(); got != "21.00" {
		t.Errorf("Expected 21 vacation days remaining, got %s", got)
	}
	if got := d.Balances.Sick.Taken.String(); got != "0.50" {
		t.Errorf("Expected 0.5 sick days taken, got %s", got)
	}
	if got := d.Balances.Sick.Remaining.String(); got != "6.50" {
		t.Errorf("Expected 6.5 sick days remaining, got %s", got)
	}
}

func TestScenario_PayPeriods(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadPayPeriodsScenario(ctx); err != nil {
		t.Fatalf("Failed to load pay-periods scenario: %v", err)
	}

	state, err := handler.Tracker.Periods(ctx)
	if err != nil {
		t.Fatalf("Failed to list periods: %v", err)
	}
	if len(state.Periods) != 2 {
		t.Fatalf("Expected 2 periods, got %d", len(state.Periods))
	}
	if state.CurrentID != state.Periods[0].ID {
		t.Errorf("Expected the first period to be current")
	}
	if !state.Periods[1].Start.Equal(generic.MustParseDate("2025-01-16")) {
		t.Errorf("Expected second period to start Jan 16, got %s", state.Periods[1].Start)
	}

	// THEN: The timesheet is scoped to 1-15 Jan (Jan 1, 6, 9 and 14)
	sheet, err := handler.Tracker.Timesheet(ctx, tracker.TimesheetQuery{})
	if err != nil {
		t.Fatalf("Failed to build timesheet: %v", err)
	}
	if sheet.Totals.Entries != 4 {
		t.Errorf("Expected 4 entries in the first period, got %d", sheet.Totals.Entries)
	}
	if got := sheet.Totals.WeightedExtra.String(); got != "3.00" {
		t.Errorf("Expected weighted overtime 3.00, got %s", got)
	}

	in, out, err := handler.Tracker.PeriodCoverage(ctx)
	if err != nil {
		t.Fatalf("Failed to compute coverage: %v", err)
	}
	if in != 8 || out != 0 {
		t.Errorf("Expected 8 inside / 0 outside, got %d / %d", in, out)
	}
}

func TestScenario_OpenCheckIn(t *testing.T) {
	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadOpenCheckInScenario(ctx); err != nil {
		t.Fatalf("Failed to load open-check-in scenario: %v", err)
	}

	entry, active, err := handler.Tracker.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to read status: %v", err)
	}
	if !active {
		t.Fatal("Expected an open check-in")
	}
	if got := entry.Intervals[0].Start.String(); got != "08:30" {
		t.Errorf("Expected check-in at 08:30, got %s", got)
	}

	// Jan 1-3 worked 9h with a free lunch, plus the open day
	d, err := handler.Tracker.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}
	if d.Totals.Entries != 4 || d.Totals.Incomplete != 1 {
		t.Errorf("Expected 4 entries with 1 incomplete, got %d / %d", d.Totals.Entries, d.Totals.Incomplete)
	}
	if !d.Totals.WeightedExtra.IsZero() {
		t.Errorf("Expected no overtime, got %s", d.Totals.WeightedExtra)
	}
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	for _, s := range scenarios {
		rec := doRequest(t, router, "POST", "/api/scenarios/load", `{"scenario_id":"`+s.ID+`"}`)
		if rec.Code != 200 {
			t.Errorf("Scenario %s: expected 200, got %d: %s", s.ID, rec.Code, rec.Body.String())
			continue
		}
		if handler.scenario() != s.ID {
			t.Errorf("Scenario %s: expected it to be current, got %q", s.ID, handler.scenario())
		}
	}

	rec := doRequest(t, router, "POST", "/api/scenarios/load", `{"scenario_id":"nope"}`)
	if rec.Code != 400 {
		t.Errorf("Unknown scenario: expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, "POST", "/api/scenarios/reset", "")
	if rec.Code != 200 {
		t.Fatalf("Reset: expected 200, got %d", rec.Code)
	}
	entries, _ := handler.Tracker.Entries(context.Background(), generic.Period{})
	if len(entries) != 0 {
		t.Errorf("Expected no entries after reset, got %d", len(entries))
	}
}
