/*
handlers.go - HTTP API handlers for the timesheet engine

PURPOSE:
  Exposes the tracker via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to tracker.Tracker for every operation.

ENDPOINTS:
  Entries:
    GET    /api/entries?from=&to=          List entries (all when no range)
    GET    /api/entries/status             Today's check-in state
    POST   /api/entries/check-in           Check in now
    POST   /api/entries/check-out          Check out now
    POST   /api/entries/manual             Check in/out at a given time
    POST   /api/entries/special            Add a special day
    POST   /api/entries/breaks             Add a break
    PUT    /api/entries                    Edit an entry
    DELETE /api/entries/{date}             One entry (?type=&duration=) or the day
    DELETE /api/entries/month/{month}      Clear a month (YYYY-MM)
    DELETE /api/entries?confirm=DELETE ALL Clear everything

  Reports:
    GET    /api/timesheet                  Rows + totals (?period_id= | ?month=)
    GET    /api/timesheet/export.csv       CSV export
    POST   /api/timesheet/import           CSV import (request body)
    GET    /api/dashboard                  Overtime, money, balances
    GET    /api/balances?year=             Vacation + sick balances
    GET    /api/balances/{type}?year=      vacation|toBeAdded|sick days by month

  Periods / settings:
    GET|POST /api/periods, PUT|DELETE /api/periods/{id},
    POST /api/periods/{id}/select, GET /api/periods/current,
    GET /api/periods/coverage, GET|PUT /api/settings, GET /api/rules

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Tracker: every domain operation, serialised behind its mutex
  - Store: raw access for the scenario reset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Entry or period not found
  - 409: Duplicates, overlaps, gaps, check-in state conflicts
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The server is meant for a single user on localhost.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/leave"
	"github.com/warp/timesheet-engine/tracker"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker *tracker.Tracker
	Store   generic.Store

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over a tracker backed by store.
func NewHandler(store generic.Store, rules worktime.Rules) *Handler {
	return &Handler{
		Tracker: tracker.New(tracker.NewKVRepository(store), rules),
		Store:   store,
	}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries, optionally limited to ?from=&to=.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	var scope generic.Period
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from != "" || to != "" {
		var err error
		if scope, err = parseRange(from, to); err != nil {
			writeDomainError(w, "Invalid date range", err)
			return
		}
	}

	entries, err := h.Tracker.Entries(r.Context(), scope)
	if err != nil {
		writeDomainError(w, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// GetStatus reports whether there is an open check-in today.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	entry, active, err := h.Tracker.Status(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to read status", err)
		return
	}
	dto := StatusDTO{CheckedIn: active}
	if active {
		e := toEntryDTO(entry)
		dto.Entry = &e
		for _, iv := range entry.Intervals {
			if iv.Open() {
				dto.Since = iv.Start.String()
			}
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Tracker.CheckIn(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to check in", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Tracker.CheckOut(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to check out", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// ManualTime records a check-in or check-out at an explicit date and time.
func (h *Handler) ManualTime(w http.ResponseWriter, r *http.Request) {
	var req ManualTimeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	mode, err := tracker.ParsePunchMode(req.Mode)
	if err != nil {
		writeDomainError(w, "Invalid mode", err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeDomainError(w, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	at, err := generic.ParseTimeOfDay(req.Time)
	if err != nil {
		writeDomainError(w, "Invalid time format (use HH:MM)", invalid(err))
		return
	}

	entry, err := h.Tracker.ManualTime(r.Context(), mode, date, at)
	if err != nil {
		writeDomainError(w, "Failed to record time", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// AddSpecialDay adds a vacation, sick, holiday or other special day.
func (h *Handler) AddSpecialDay(w http.ResponseWriter, r *http.Request) {
	var req SpecialDayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeDomainError(w, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	in := tracker.DayInput{Date: date, Notes: req.Notes, DoubleHours: req.DoubleHours}
	if req.Label != "" {
		in.Type, in.Duration = worktime.ParseSpecialDayLabel(req.Label)
	} else {
		if in.Type, err = worktime.ParseDayType(req.Type); err != nil {
			writeDomainError(w, "Invalid type", invalid(err))
			return
		}
		if in.Duration, err = worktime.ParseDayPortion(req.Duration); err != nil {
			writeDomainError(w, "Invalid duration", invalid(err))
			return
		}
	}
	if in.Intervals, err = parseIntervals(req.Intervals); err != nil {
		writeDomainError(w, "Invalid intervals", invalid(err))
		return
	}

	entry, err := h.Tracker.AddSpecialDay(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to add day", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// AddBreak appends a break to a worked day.
func (h *Handler) AddBreak(w http.ResponseWriter, r *http.Request) {
	var req BreakRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeDomainError(w, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	ivs, err := parseIntervals([]IntervalDTO{{Start: req.Start, End: req.End}})
	if err != nil {
		writeDomainError(w, "Invalid time format (use HH:MM)", invalid(err))
		return
	}

	entry, err := h.Tracker.AddBreak(r.Context(), date, ivs[0], req.Notes)
	if err != nil {
		writeDomainError(w, "Failed to add break", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// EditEntry replaces the editable fields of an entry.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	var req EditEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key, err := parseKey(req.Key.Date, req.Key.Type, req.Key.Duration)
	if err != nil {
		writeDomainError(w, "Invalid entry key", err)
		return
	}

	upd := tracker.EntryUpdate{Notes: req.Entry.Notes, DoubleHours: req.Entry.DoubleHours}
	if upd.Type, err = worktime.ParseDayType(req.Entry.Type); err != nil {
		writeDomainError(w, "Invalid type", invalid(err))
		return
	}
	if upd.Duration, err = worktime.ParseDayPortion(req.Entry.Duration); err != nil {
		writeDomainError(w, "Invalid duration", invalid(err))
		return
	}
	if upd.CheckIn, err = generic.ParseTimeOfDay(req.Entry.CheckIn); err != nil {
		writeDomainError(w, "Invalid check-in time", invalid(err))
		return
	}
	if upd.CheckOut, err = generic.ParseTimeOfDay(req.Entry.CheckOut); err != nil {
		writeDomainError(w, "Invalid check-out time", invalid(err))
		return
	}
	if upd.Breaks, err = parseIntervals(req.Entry.Breaks); err != nil {
		writeDomainError(w, "Invalid breaks", invalid(err))
		return
	}

	entry, err := h.Tracker.EditEntry(r.Context(), key, upd)
	if err != nil {
		writeDomainError(w, "Failed to edit entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// DeleteEntries removes one entry when ?type= is given, else the whole day.
func (h *Handler) DeleteEntries(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	typ := r.URL.Query().Get("type")

	if typ != "" {
		key, err := parseKey(dateStr, typ, r.URL.Query().Get("duration"))
		if err != nil {
			writeDomainError(w, "Invalid entry key", err)
			return
		}
		if err := h.Tracker.DeleteEntry(r.Context(), key); err != nil {
			writeDomainError(w, "Failed to delete entry", err)
			return
		}
		writeJSON(w, http.StatusOK, ClearResultDTO{Removed: 1})
		return
	}

	date, err := parseDate(dateStr)
	if err != nil {
		writeDomainError(w, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	n, err := h.Tracker.ClearDay(r.Context(), date)
	if err != nil {
		writeDomainError(w, "Failed to clear day", err)
		return
	}
	writeJSON(w, http.StatusOK, ClearResultDTO{Removed: n})
}

func (h *Handler) ClearMonth(w http.ResponseWriter, r *http.Request) {
	month, err := generic.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeDomainError(w, "Invalid month format (use YYYY-MM)", invalid(err))
		return
	}
	n, err := h.Tracker.ClearMonth(r.Context(), month)
	if err != nil {
		writeDomainError(w, "Failed to clear month", err)
		return
	}
	writeJSON(w, http.StatusOK, ClearResultDTO{Removed: n})
}

// ClearAll wipes every stored value; requires ?confirm=DELETE ALL.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.ClearAll(r.Context(), r.URL.Query().Get("confirm")); err != nil {
		writeDomainError(w, "Failed to clear data", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func timesheetQuery(r *http.Request) tracker.TimesheetQuery {
	return tracker.TimesheetQuery{
		PeriodID: r.URL.Query().Get("period_id"),
		Month:    r.URL.Query().Get("month"),
	}
}

func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Tracker.Timesheet(r.Context(), timesheetQuery(r))
	if err != nil {
		writeDomainError(w, "Failed to build timesheet", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimesheetDTO(ts))
}

// ExportCSV streams the timesheet of the requested scope as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Tracker.ExportCSV(r.Context(), &buf, timesheetQuery(r)); err != nil {
		writeDomainError(w, "Failed to export timesheet", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="timesheet.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ImportCSV merges the CSV request body into the stored entries.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.Tracker.ImportCSV(r.Context(), r.Body)
	if err != nil {
		writeDomainError(w, "Failed to import CSV", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Tracker.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(d))
}

func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r.URL.Query().Get("year"))
	if err != nil {
		writeDomainError(w, "Invalid year", err)
		return
	}
	b, err := h.Tracker.YearBalances(r.Context(), year)
	if err != nil {
		writeDomainError(w, "Failed to compute balances", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalancesDTO(b))
}

// GetLeaveDays lists the vacation, toBeAdded or sick days of a year by month.
func (h *Handler) GetLeaveDays(w http.ResponseWriter, r *http.Request) {
	typ, err := leave.ParseKind(chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, "Invalid leave type", err)
		return
	}
	year, err := parseYear(r.URL.Query().Get("year"))
	if err != nil {
		writeDomainError(w, "Invalid year", err)
		return
	}
	days, err := h.Tracker.LeaveDays(r.Context(), typ, year)
	if err != nil {
		writeDomainError(w, "Failed to list leave days", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDaysDTO(days))
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	state, err := h.Tracker.Periods(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list periods", err)
		return
	}
	dtos := make([]PeriodDTO, len(state.Periods))
	for i, p := range state.Periods {
		dtos[i] = toPeriodDTO(p, state.CurrentID)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start, end, ok := periodBounds(w, req)
	if !ok {
		return
	}
	p, err := h.Tracker.AddPeriod(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, "Failed to create period", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.periodDTO(r, p.ID))
}

func (h *Handler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start, end, ok := periodBounds(w, req)
	if !ok {
		return
	}
	p, err := h.Tracker.EditPeriod(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		writeDomainError(w, "Failed to update period", err)
		return
	}
	writeJSON(w, http.StatusOK, h.periodDTO(r, p.ID))
}

func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.DeletePeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete period", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SelectPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.Tracker.SelectPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to select period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p, p.ID))
}

func (h *Handler) GetCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	cur, err := h.Tracker.CurrentPeriod(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to resolve current period", err)
		return
	}
	writeJSON(w, http.StatusOK, toCurrentPeriodDTO(cur))
}

// GetCoverage counts entries inside and outside the defined periods.
func (h *Handler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	in, out, err := h.Tracker.PeriodCoverage(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to compute coverage", err)
		return
	}
	writeJSON(w, http.StatusOK, CoverageDTO{Inside: in, Outside: out})
}

// periodDTO re-reads the state so the current flag is accurate.
func (h *Handler) periodDTO(r *http.Request, id string) PeriodDTO {
	state, err := h.Tracker.Periods(r.Context())
	if err != nil {
		return PeriodDTO{ID: id}
	}
	for _, p := range state.Periods {
		if p.ID == id {
			return toPeriodDTO(p, state.CurrentID)
		}
	}
	return PeriodDTO{ID: id}
}

func periodBounds(w http.ResponseWriter, req PeriodRequest) (generic.Date, generic.Date, bool) {
	start, err := parseDate(req.Start)
	if err != nil {
		writeDomainError(w, "Invalid start date (use YYYY-MM-DD)", err)
		return generic.Date{}, generic.Date{}, false
	}
	end, err := parseDate(req.End)
	if err != nil {
		writeDomainError(w, "Invalid end date (use YYYY-MM-DD)", err)
		return generic.Date{}, generic.Date{}, false
	}
	return start, end, true
}

// =============================================================================
// SETTINGS / RULES HANDLERS
// =============================================================================

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Tracker.Settings(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(s))
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.Tracker.UpdateSettings(r.Context(), req.toUpdate())
	if err != nil {
		writeDomainError(w, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(s))
}

// GetRules returns the active rule set in the rules file schema.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.ToJSON(h.Tracker.Rules()))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsConflict(err):
		status = http.StatusConflict
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	default:
		log.Printf("[API] %s: %v", message, err)
	}
	writeError(w, status, message, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// invalid tags a parse error as client input.
func invalid(err error) error {
	return fmt.Errorf("%w: %v", generic.ErrInvalidValue, err)
}

func parseDate(s string) (generic.Date, error) {
	if s == "" {
		return generic.Date{}, &generic.MissingFieldError{Fields: []string{"date"}}
	}
	d, err := generic.ParseDate(s)
	if err != nil {
		return generic.Date{}, invalid(err)
	}
	return d, nil
}

// parseYear accepts a blank value (current year) or a four-digit year.
func parseYear(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 9999 {
		return 0, fmt.Errorf("%w: year %q", generic.ErrInvalidValue, s)
	}
	return y, nil
}

func parseRange(from, to string) (generic.Period, error) {
	start, err := parseDate(from)
	if err != nil {
		return generic.Period{}, err
	}
	end, err := parseDate(to)
	if err != nil {
		return generic.Period{}, err
	}
	if end.Before(start) {
		return generic.Period{}, generic.ErrInvalidPeriod
	}
	return generic.Period{Start: start, End: end}, nil
}

func parseKey(date, typ, duration string) (worktime.EntryKey, error) {
	d, err := parseDate(date)
	if err != nil {
		return worktime.EntryKey{}, err
	}
	t, err := worktime.ParseDayType(typ)
	if err != nil {
		return worktime.EntryKey{}, invalid(err)
	}
	p, err := worktime.ParseDayPortion(duration)
	if err != nil {
		return worktime.EntryKey{}, invalid(err)
	}
	return worktime.EntryKey{Date: d, Type: t, Duration: p}, nil
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}
