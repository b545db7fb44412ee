/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Check-in/check-out flow and status codes for conflicts
- Special days, breaks, edits and clears
- Pay period validation errors mapped to 400/404/409
- CSV export/import round trip
- Dashboard money and settings
- Leave day listings per type and year
*/
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/warp/timesheet-engine/tracker"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestCheckInCheckOut_HTTP(t *testing.T) {
	// GIVEN: Monday 09:00
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	// WHEN: Checking in twice
	rec := doRequest(t, router, "POST", "/api/entries/check-in", "")
	expectStatus(t, rec, http.StatusOK)
	rec = doRequest(t, router, "POST", "/api/entries/check-in", "")
	expectStatus(t, rec, http.StatusConflict)

	status := decode[StatusDTO](t, doRequest(t, router, "GET", "/api/entries/status", ""))
	if !status.CheckedIn || status.Since != "09:00" {
		t.Errorf("Expected checked in since 09:00, got %+v", status)
	}

	// THEN: Checking out at 18:30 closes the span
	handler.Tracker.Now = func() time.Time { return time.Date(2025, time.January, 6, 18, 30, 0, 0, time.UTC) }
	rec = doRequest(t, router, "POST", "/api/entries/check-out", "")
	expectStatus(t, rec, http.StatusOK)
	entry := decode[EntryDTO](t, rec)
	if len(entry.Intervals) != 1 || entry.Intervals[0].End != "18:30" {
		t.Fatalf("Expected one closed interval, got %+v", entry.Intervals)
	}

	// AND: A second check-out has nothing to close
	rec = doRequest(t, router, "POST", "/api/entries/check-out", "")
	expectStatus(t, rec, http.StatusConflict)

	sheet := decode[TimesheetDTO](t, doRequest(t, router, "GET", "/api/timesheet?month=2025-01", ""))
	if len(sheet.Rows) != 1 || sheet.Totals.WeightedExtra != 0.75 {
		t.Errorf("Expected one row with 0.75 weighted hours, got %+v", sheet.Totals)
	}
	if sheet.Rows[0].CheckIn != "09:00" || sheet.Rows[0].Rule != "standard" {
		t.Errorf("Unexpected row %+v", sheet.Rows[0])
	}
}

func TestManualTime_Validation(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "POST", "/api/entries/manual", `{"mode":"sideways","date":"2025-01-06","time":"09:00"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doRequest(t, router, "POST", "/api/entries/manual", `{"mode":"in","date":"","time":"09:00"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doRequest(t, router, "POST", "/api/entries/manual", `{"mode":"in","date":"2025-01-06","time":"25:00"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doRequest(t, router, "POST", "/api/entries/manual", `{"mode":"in","date":"2025-01-03","time":"08:00"}`)
	expectStatus(t, rec, http.StatusOK)

	// Check-out before the check-in is an invalid interval
	rec = doRequest(t, router, "POST", "/api/entries/manual", `{"mode":"out","date":"2025-01-03","time":"07:00"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doRequest(t, router, "POST", "/api/entries/manual", "not json")
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestSpecialDayAndBreaks_HTTP(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	// GIVEN: A half-day vacation added by label
	rec := doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-01-07","label":"Vacation (Half Day)"}`)
	expectStatus(t, rec, http.StatusCreated)
	entry := decode[EntryDTO](t, rec)
	if entry.Type != "Vacation" || entry.Duration != 0.5 || entry.DisplayType != "Vacation (Half Day)" {
		t.Errorf("Unexpected entry %+v", entry)
	}

	// WHEN: Adding it again
	rec = doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-01-07","type":"Vacation","duration":"0.5"}`)
	expectStatus(t, rec, http.StatusConflict)

	// THEN: A break on a day without hours is not found
	rec = doRequest(t, router, "POST", "/api/entries/breaks", `{"date":"2025-01-08","start":"12:00","end":"12:30"}`)
	expectStatus(t, rec, http.StatusNotFound)

	// AND: A break on a worked day is appended
	rec = doRequest(t, router, "POST", "/api/entries/special",
		`{"date":"2025-01-08","type":"Regular","intervals":[{"start":"09:00","end":"18:30"}]}`)
	expectStatus(t, rec, http.StatusCreated)
	rec = doRequest(t, router, "POST", "/api/entries/breaks", `{"date":"2025-01-08","start":"12:00","end":"12:30","notes":"gym"}`)
	expectStatus(t, rec, http.StatusCreated)
	entry = decode[EntryDTO](t, rec)
	if len(entry.Intervals) != 2 || !strings.Contains(entry.Notes, "Break: gym") {
		t.Errorf("Expected break with note, got %+v", entry)
	}

	rec = doRequest(t, router, "POST", "/api/entries/breaks", `{"date":"2025-01-08","start":"12:30","end":"12:00"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	entries := decode[[]EntryDTO](t, doRequest(t, router, "GET", "/api/entries?from=2025-01-01&to=2025-01-31", ""))
	if len(entries) != 2 || entries[0].Date != "2025-01-07" {
		t.Errorf("Expected 2 sorted entries, got %+v", entries)
	}

	rec = doRequest(t, router, "GET", "/api/entries?from=2025-01-31&to=2025-01-01", "")
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestEditAndDelete_HTTP(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/entries/special",
		`{"date":"2025-01-08","type":"Regular","intervals":[{"start":"09:00","end":"17:00"}]}`)
	doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-01-08","type":"Sick Leave","duration":"0.5"}`)

	// WHEN: Editing the regular entry
	body := `{"key":{"date":"2025-01-08","type":"Regular","duration":"1"},
		"entry":{"type":"Regular","check_in":"08:00","check_out":"18:00","breaks":[{"start":"13:00","end":"13:30"}],"notes":"edited"}}`
	rec := doRequest(t, router, "PUT", "/api/entries", body)
	expectStatus(t, rec, http.StatusOK)
	entry := decode[EntryDTO](t, rec)
	if entry.Intervals[0].Start != "08:00" || len(entry.Intervals) != 2 {
		t.Errorf("Unexpected edit result %+v", entry)
	}

	// Unknown key
	body = `{"key":{"date":"2025-01-09","type":"Regular"},"entry":{"type":"Regular"}}`
	expectStatus(t, doRequest(t, router, "PUT", "/api/entries", body), http.StatusNotFound)

	// THEN: Deleting only the sick half day
	rec = doRequest(t, router, "DELETE", "/api/entries/2025-01-08?type=SickLeave&duration=0.5", "")
	expectStatus(t, rec, http.StatusOK)
	entries := decode[[]EntryDTO](t, doRequest(t, router, "GET", "/api/entries", ""))
	if len(entries) != 1 || entries[0].Type != "Regular" {
		t.Fatalf("Expected only the regular entry, got %+v", entries)
	}

	// AND: Clearing the day removes the rest
	rec = doRequest(t, router, "DELETE", "/api/entries/2025-01-08", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decode[ClearResultDTO](t, rec).Removed; got != 1 {
		t.Errorf("Expected 1 removed, got %d", got)
	}
}

func TestClearMonthAndAll_HTTP(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-01-08","type":"Holiday"}`)
	doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-02-03","type":"Holiday"}`)

	rec := doRequest(t, router, "DELETE", "/api/entries/month/2025-01", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decode[ClearResultDTO](t, rec).Removed; got != 1 {
		t.Errorf("Expected 1 removed, got %d", got)
	}
	expectStatus(t, doRequest(t, router, "DELETE", "/api/entries/month/January", ""), http.StatusBadRequest)

	// Clear all needs the literal confirmation
	expectStatus(t, doRequest(t, router, "DELETE", "/api/entries?confirm=yes", ""), http.StatusBadRequest)
	expectStatus(t, doRequest(t, router, "DELETE", "/api/entries?confirm=DELETE%20ALL", ""), http.StatusOK)

	entries := decode[[]EntryDTO](t, doRequest(t, router, "GET", "/api/entries", ""))
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestPeriods_HTTP(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	// GIVEN: The first period becomes current
	rec := doRequest(t, router, "POST", "/api/periods", `{"start":"2025-01-01","end":"2025-01-15"}`)
	expectStatus(t, rec, http.StatusCreated)
	first := decode[PeriodDTO](t, rec)
	if !first.Current || first.Label != "1 Jan – 15 Jan 2025" {
		t.Errorf("Unexpected first period %+v", first)
	}

	// THEN: Gap, overlap and reversed ranges are rejected
	expectStatus(t, doRequest(t, router, "POST", "/api/periods", `{"start":"2025-01-20","end":"2025-01-31"}`), http.StatusConflict)
	expectStatus(t, doRequest(t, router, "POST", "/api/periods", `{"start":"2025-01-10","end":"2025-01-20"}`), http.StatusConflict)
	expectStatus(t, doRequest(t, router, "POST", "/api/periods", `{"start":"2025-02-10","end":"2025-02-01"}`), http.StatusBadRequest)
	expectStatus(t, doRequest(t, router, "POST", "/api/periods", `{"start":"2025-01-16"}`), http.StatusBadRequest)

	// AND: An adjacent period is accepted and can be selected
	rec = doRequest(t, router, "POST", "/api/periods", `{"start":"2025-01-16","end":"2025-01-31"}`)
	expectStatus(t, rec, http.StatusCreated)
	second := decode[PeriodDTO](t, rec)
	if second.Current {
		t.Error("Expected the second period not to be current")
	}
	expectStatus(t, doRequest(t, router, "POST", "/api/periods/"+second.ID+"/select", ""), http.StatusOK)

	cur := decode[CurrentPeriodDTO](t, doRequest(t, router, "GET", "/api/periods/current", ""))
	if cur.Period == nil || cur.Period.ID != second.ID || cur.From != "2025-01-16" {
		t.Errorf("Expected the selected period to be current, got %+v", cur)
	}

	list := decode[[]PeriodDTO](t, doRequest(t, router, "GET", "/api/periods", ""))
	if len(list) != 2 || list[0].ID != first.ID {
		t.Errorf("Expected 2 sorted periods, got %+v", list)
	}

	expectStatus(t, doRequest(t, router, "DELETE", "/api/periods/nope", ""), http.StatusNotFound)
	expectStatus(t, doRequest(t, router, "PUT", "/api/periods/"+first.ID, `{"start":"2025-01-01","end":"2025-01-14"}`), http.StatusConflict)
	expectStatus(t, doRequest(t, router, "DELETE", "/api/periods/"+second.ID, ""), http.StatusOK)

	cov := decode[CoverageDTO](t, doRequest(t, router, "GET", "/api/periods/coverage", ""))
	if cov.Inside != 0 || cov.Outside != 0 {
		t.Errorf("Expected empty coverage, got %+v", cov)
	}
}

func TestExportImportCSV_HTTP(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/entries/special",
		`{"date":"2025-01-06","type":"Regular","intervals":[{"start":"09:00","end":"18:00"}]}`)
	doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-01-07","label":"Sick Leave (Half Day)"}`)

	// WHEN: Exporting January
	rec := doRequest(t, router, "GET", "/api/timesheet/export.csv?month=2025-01", "")
	expectStatus(t, rec, http.StatusOK)
	csv := rec.Body.String()
	if !strings.HasPrefix(csv, "Date,Check In,Check Out,Hours,Type") {
		t.Fatalf("Unexpected CSV header: %q", csv)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %q", ct)
	}

	// THEN: Importing into the same store skips both rows
	rec = doRequest(t, router, "POST", "/api/timesheet/import", csv)
	expectStatus(t, rec, http.StatusOK)
	report := decode[tracker.ImportReport](t, rec)
	if report.Imported != 0 || report.Skipped != 2 {
		t.Errorf("Expected 2 skipped, got %+v", report)
	}

	// AND: Importing after a reset restores them
	expectStatus(t, doRequest(t, router, "POST", "/api/scenarios/reset", ""), http.StatusOK)
	rec = doRequest(t, router, "POST", "/api/timesheet/import", csv)
	expectStatus(t, rec, http.StatusOK)
	report = decode[tracker.ImportReport](t, rec)
	if report.Imported != 2 {
		t.Errorf("Expected 2 imported, got %+v", report)
	}
}

func TestDashboardAndSettings_HTTP(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "PUT", "/api/settings", `{"full_name":"Dana","salary":3000}`)
	expectStatus(t, rec, http.StatusOK)
	settings := decode[SettingsDTO](t, rec)
	if settings.AnnualVacation != 21 || settings.SickDays != 7 {
		t.Errorf("Expected default allowances, got %+v", settings)
	}
	expectStatus(t, doRequest(t, router, "PUT", "/api/settings", `{"salary":-1}`), http.StatusBadRequest)

	doRequest(t, router, "POST", "/api/entries/special",
		`{"date":"2025-01-06","type":"Regular","intervals":[{"start":"09:00","end":"18:30"}]}`)

	dash := decode[DashboardDTO](t, doRequest(t, router, "GET", "/api/dashboard", ""))
	if dash.FullName != "Dana" || dash.Label != "January 2025" {
		t.Errorf("Unexpected dashboard header %+v", dash)
	}
	// 0.75h x 3000 x 2/3 / 187.5
	if dash.Pay.OvertimeMoney != 8 || dash.Pay.TotalSalary != 3008 {
		t.Errorf("Unexpected pay %+v", dash.Pay)
	}

	bal := decode[BalancesDTO](t, doRequest(t, router, "GET", "/api/balances", ""))
	if bal.Vacation.Remaining != 21 || bal.Sick.Year != 2025 {
		t.Errorf("Unexpected balances %+v", bal)
	}

	rules := decode[map[string]any](t, doRequest(t, router, "GET", "/api/rules", ""))
	if rules["weekday_baseline_minutes"] != float64(540) {
		t.Errorf("Unexpected rules %+v", rules)
	}
}

func TestLeaveDays_HTTP(t *testing.T) {
	// GIVEN: Vacation in December 2024 and January 2025, one sick half day
	handler := setupTestHandler(t)
	router := NewRouter(handler)
	doRequest(t, router, "POST", "/api/entries/special", `{"date":"2024-12-23","type":"Vacation"}`)
	doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-01-02","type":"Vacation"}`)
	doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-01-03","label":"Vacation (Half Day)"}`)
	doRequest(t, router, "POST", "/api/entries/special", `{"date":"2025-01-07","label":"Sick Leave (Half Day)"}`)

	// WHEN: Listing this year's vacation
	rec := doRequest(t, router, "GET", "/api/balances/vacation", "")
	expectStatus(t, rec, http.StatusOK)
	days := decode[LeaveDaysDTO](t, rec)

	// THEN: One month, 1.5 days, both years offered
	if days.Year != 2025 || days.Total != 1.5 || len(days.Months) != 1 || days.Months[0].Month != "2025-01" {
		t.Errorf("Unexpected 2025 vacation %+v", days)
	}
	if len(days.Years) != 2 || days.Years[0] != 2025 || days.Years[1] != 2024 {
		t.Errorf("Expected years [2025 2024], got %v", days.Years)
	}

	days = decode[LeaveDaysDTO](t, doRequest(t, router, "GET", "/api/balances/vacation?year=2024", ""))
	if days.Total != 1 || len(days.Entries) != 1 || days.Entries[0].Date != "2024-12-23" {
		t.Errorf("Unexpected 2024 vacation %+v", days)
	}

	sick := decode[LeaveDaysDTO](t, doRequest(t, router, "GET", "/api/balances/sick", ""))
	if sick.Type != "SickLeave" || sick.Total != 0.5 {
		t.Errorf("Unexpected sick days %+v", sick)
	}

	bal := decode[BalancesDTO](t, doRequest(t, router, "GET", "/api/balances?year=2024", ""))
	if bal.Vacation.Year != 2024 || bal.Vacation.Taken != 1 {
		t.Errorf("Unexpected 2024 balances %+v", bal)
	}

	expectStatus(t, doRequest(t, router, "GET", "/api/balances/holiday", ""), http.StatusBadRequest)
	expectStatus(t, doRequest(t, router, "GET", "/api/balances/vacation?year=last", ""), http.StatusBadRequest)
}
