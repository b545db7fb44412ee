package tracker

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/leave"
	"github.com/warp/timesheet-engine/payperiod"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// TIMESHEET
// =============================================================================

// TimesheetQuery picks the scope: a pay period id, a month ("YYYY-MM"), or
// neither for the current scope.
type TimesheetQuery struct {
	PeriodID string
	Month    string
}

type Timesheet struct {
	worktime.Sheet
	Label  string
	Period *payperiod.PayPeriod
}

func (t *Tracker) Timesheet(ctx context.Context, q TimesheetQuery) (Timesheet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, err := t.resolveScope(ctx, q)
	if err != nil {
		return Timesheet{}, err
	}
	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return Timesheet{}, err
	}
	sheet := worktime.BuildSheet(t.classifier, cur.Scope, worktime.Select(entries, cur.Scope))
	return Timesheet{Sheet: sheet, Label: cur.Label, Period: cur.Period}, nil
}

// ExportCSV writes the timesheet of q's scope as CSV.
func (t *Tracker) ExportCSV(ctx context.Context, w io.Writer, q TimesheetQuery) error {
	sheet, err := t.Timesheet(ctx, q)
	if err != nil {
		return err
	}
	return worktime.ExportCSV(w, sheet.Rows)
}

// ImportReport summarises an import.
type ImportReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // already present
	Dropped  int `json:"dropped"` // malformed rows
}

// ImportCSV merges rows into the stored entries. Rows whose key already
// exists are skipped rather than duplicated.
func (t *Tracker) ImportCSV(ctx context.Context, r io.Reader) (ImportReport, error) {
	res, err := worktime.ImportCSV(r)
	if err != nil {
		return ImportReport{}, fmt.Errorf("%w: %v", generic.ErrInvalidValue, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{Dropped: res.Dropped}
	for _, e := range res.Entries {
		if worktime.FindEntry(entries, e.Key()) >= 0 {
			report.Skipped++
			continue
		}
		entries = append(entries, e)
		report.Imported++
	}
	if report.Imported > 0 {
		if err := t.repo.SaveEntries(ctx, entries); err != nil {
			return ImportReport{}, err
		}
	}
	log.Printf("[Tracker] CSV import: %d imported, %d skipped, %d dropped",
		report.Imported, report.Skipped, report.Dropped)
	return report, nil
}

func (t *Tracker) resolveScope(ctx context.Context, q TimesheetQuery) (CurrentScope, error) {
	m, err := t.loadManager(ctx)
	if err != nil {
		return CurrentScope{}, err
	}
	switch {
	case q.PeriodID != "":
		p, err := m.Get(q.PeriodID)
		if err != nil {
			return CurrentScope{}, err
		}
		return CurrentScope{Period: &p, Scope: p.Range(), Label: p.Label}, nil
	case q.Month != "":
		start, err := generic.ParseMonth(q.Month)
		if err != nil {
			return CurrentScope{}, fmt.Errorf("%w: %v", generic.ErrInvalidValue, err)
		}
		return CurrentScope{Scope: generic.MonthPeriod(start), Label: monthLabel(start)}, nil
	}
	today, _ := t.now()
	return currentScope(m, today), nil
}

// =============================================================================
// DASHBOARD / BALANCES
// =============================================================================

type Balances struct {
	Vacation leave.VacationBalance
	Sick     leave.SickBalance
}

type Dashboard struct {
	FullName    string
	Label       string
	Scope       generic.Period
	Totals      worktime.Totals
	Pay         worktime.Pay
	Balances    Balances
	CheckedIn   bool
	ActiveSince generic.TimeOfDay
}

// Dashboard reports weighted overtime of the current scope, its money value
// and this year's leave balances.
func (t *Tracker) Dashboard(ctx context.Context) (Dashboard, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, err := t.resolveScope(ctx, TimesheetQuery{})
	if err != nil {
		return Dashboard{}, err
	}
	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	settings, err := t.repo.LoadSettings(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	today, _ := t.now()
	sheet := worktime.BuildSheet(t.classifier, cur.Scope, worktime.Select(entries, cur.Scope))
	d := Dashboard{
		FullName: settings.FullName,
		Label:    cur.Label,
		Scope:    cur.Scope,
		Totals:   sheet.Totals,
		Pay:      worktime.Payroll(t.rules, sheet.Totals.WeightedExtra, settings.Salary),
		Balances: balances(entries, settings, today.Year()),
	}
	if i := openEntry(entries, today); i >= 0 {
		d.CheckedIn = true
		d.ActiveSince = openInterval(entries[i]).Start
	}
	return d, nil
}

// Balances returns this year's vacation and sick balances.
func (t *Tracker) Balances(ctx context.Context) (Balances, error) {
	return t.YearBalances(ctx, 0)
}

// YearBalances returns the balances of year; zero means the current year.
func (t *Tracker) YearBalances(ctx context.Context, year int) (Balances, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return Balances{}, err
	}
	settings, err := t.repo.LoadSettings(ctx)
	if err != nil {
		return Balances{}, err
	}
	if year == 0 {
		today, _ := t.now()
		year = today.Year()
	}
	return balances(entries, settings, year), nil
}

// LeaveDays is the per-type drill-down of a balance.
type LeaveDays struct {
	leave.Details
	Years []int // years worth offering, newest first
}

// LeaveDays lists the days of typ (Vacation, ToBeAdded or SickLeave) in
// year, grouped by month. A zero year means the current year.
func (t *Tracker) LeaveDays(ctx context.Context, typ worktime.DayType, year int) (LeaveDays, error) {
	if !typ.IsLeaveBalance() {
		return LeaveDays{}, fmt.Errorf("%w: %s has no leave balance", generic.ErrInvalidValue, typ)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return LeaveDays{}, err
	}
	today, _ := t.now()
	if year == 0 {
		year = today.Year()
	}
	return LeaveDays{
		Details: leave.ListDays(entries, typ, year),
		Years:   leave.Years(entries, today),
	}, nil
}

func balances(entries []worktime.DayEntry, s Settings, year int) Balances {
	return Balances{
		Vacation: leave.Vacation(entries, s.AnnualVacation, year),
		Sick:     leave.Sick(entries, s.SickDays, year),
	}
}
