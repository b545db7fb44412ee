/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	timesheet data. Each scenario is laid out in the current month so the
	dashboard shows it straight away.

AVAILABLE SCENARIOS:

	regular-month:  Weekday surplus/deficit, free and deducted breaks, a Saturday
	leave-mix:      Vacation, half-day sick leave, worked holiday, double hours
	pay-periods:    Two half-month pay periods instead of the calendar month
	open-check-in:  A few worked days and an open check-in today

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Save settings (name, salary, allowances)
 3. Add entries through the tracker, so every record passes validation
 4. Optionally add pay periods or punch in

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "leave-mix"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and helpers
  - tracker/tracker.go: Operations the loaders call
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/tracker"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "regular-month",
		Name:        "Regular Month",
		Description: "Weekday overtime and deficit, lunch break inside and outside the free window, a worked Saturday",
		Category:    "overtime",
	},
	{
		ID:          "leave-mix",
		Name:        "Leave Mix",
		Description: "Vacation, half-day sick leave with hours, a worked holiday, To Be Added and a double-hours day",
		Category:    "leave",
	},
	{
		ID:          "pay-periods",
		Name:        "Pay Periods",
		Description: "Two half-month pay periods with entries in each",
		Category:    "periods",
	},
	{
		ID:          "open-check-in",
		Name:        "Open Check-In",
		Description: "Worked days so far this month and a check-in today at 08:30",
		Category:    "overtime",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	id := h.scenario()
	if id == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == id {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: id, Name: id, Description: "Currently loaded scenario"})
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	loaders := map[string]func(context.Context) error{
		"regular-month": h.loadRegularMonthScenario,
		"leave-mix":     h.loadLeaveMixScenario,
		"pay-periods":   h.loadPayPeriodsScenario,
		"open-check-in": h.loadOpenCheckInScenario,
	}
	load, ok := loaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")

	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.setScenario(req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadRegularMonthScenario(ctx context.Context) error {
	if err := h.saveProfile(ctx, "Alex Morgan", 3000); err != nil {
		return err
	}
	wd, sat := monthDays(h.Tracker.Today())

	days := []tracker.DayInput{
		// 30 minutes over on a weekday: +0.5h, weighted 0.75
		worked(wd[0], span("09:00", "18:30")),
		// an hour short: -1h, unweighted
		worked(wd[1], span("09:00", "17:00")),
		// lunch inside 13:00-13:30 is free
		worked(wd[2], span("09:00", "18:30"), span("13:00", "13:30")),
		// lunch outside the window is deducted
		worked(wd[3], span("09:00", "19:00"), span("12:00", "12:30")),
		// Saturday has no baseline: 4h, weighted 8
		worked(sat, span("10:00", "14:00")),
	}
	return h.addDays(ctx, days)
}

func (h *Handler) loadLeaveMixScenario(ctx context.Context) error {
	if err := h.saveProfile(ctx, "Sam Carter", 4500); err != nil {
		return err
	}
	wd, _ := monthDays(h.Tracker.Today())

	days := []tracker.DayInput{
		{Date: wd[0], Type: worktime.Vacation, Duration: worktime.FullDay, Notes: "Family trip"},
		{Date: wd[1], Type: worktime.SickLeave, Duration: worktime.HalfDay, Notes: "Doctor in the afternoon",
			Intervals: []worktime.Interval{span("09:00", "14:30")}},
		{Date: wd[2], Type: worktime.Holiday, Duration: worktime.FullDay, Notes: "Worked the holiday",
			Intervals: []worktime.Interval{span("10:00", "13:00")}},
		{Date: wd[3], Type: worktime.ToBeAdded, Duration: worktime.FullDay, Notes: "Compensation day"},
		{Date: wd[4], Type: worktime.Regular, DoubleHours: true, Notes: "Release night",
			Intervals: []worktime.Interval{span("09:00", "19:00")}},
	}
	return h.addDays(ctx, days)
}

func (h *Handler) loadPayPeriodsScenario(ctx context.Context) error {
	if err := h.saveProfile(ctx, "Jordan Lee", 3600); err != nil {
		return err
	}
	today := h.Tracker.Today()
	month := generic.MonthPeriod(today)
	mid := generic.NewDate(today.Year(), today.Month(), 15)

	if _, err := h.Tracker.AddPeriod(ctx, month.Start, mid); err != nil {
		return err
	}
	if _, err := h.Tracker.AddPeriod(ctx, mid.Next(), month.End); err != nil {
		return err
	}

	var days []tracker.DayInput
	wd, _ := monthDays(today)
	for i, d := range wd {
		if i%3 != 0 {
			continue
		}
		days = append(days, worked(d, span("08:30", "18:00")))
	}
	return h.addDays(ctx, days)
}

func (h *Handler) loadOpenCheckInScenario(ctx context.Context) error {
	if err := h.saveProfile(ctx, "Riley Quinn", 3000); err != nil {
		return err
	}
	today := h.Tracker.Today()
	wd, _ := monthDays(today)

	var days []tracker.DayInput
	for _, d := range wd {
		if !d.Before(today) {
			break
		}
		days = append(days, worked(d, span("09:00", "18:00"), span("13:00", "13:30")))
	}
	if err := h.addDays(ctx, days); err != nil {
		return err
	}
	_, err := h.Tracker.ManualTime(ctx, tracker.PunchIn, today, generic.At(8, 30))
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) saveProfile(ctx context.Context, name string, salary int64) error {
	s := decimal.NewFromInt(salary)
	_, err := h.Tracker.UpdateSettings(ctx, tracker.SettingsUpdate{FullName: &name, Salary: &s})
	return err
}

func (h *Handler) addDays(ctx context.Context, days []tracker.DayInput) error {
	for _, d := range days {
		if _, err := h.Tracker.AddSpecialDay(ctx, d); err != nil {
			return fmt.Errorf("failed to add %s: %w", d.Date, err)
		}
	}
	return nil
}

func worked(date generic.Date, ivs ...worktime.Interval) tracker.DayInput {
	return tracker.DayInput{Date: date, Type: worktime.Regular, Duration: worktime.FullDay, Intervals: ivs}
}

func span(start, end string) worktime.Interval {
	return worktime.Span(start, end)
}

// monthDays returns the weekdays of the month containing d and its first Saturday.
func monthDays(d generic.Date) (weekdays []generic.Date, saturday generic.Date) {
	for _, day := range generic.MonthPeriod(d).Days() {
		switch day.Weekday() {
		case time.Saturday:
			if saturday.IsZero() {
				saturday = day
			}
		case time.Sunday:
		default:
			weekdays = append(weekdays, day)
		}
	}
	return weekdays, saturday
}
