package tracker

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/payperiod"
)

// =============================================================================
// PAY PERIODS
// =============================================================================

// Periods returns the period list and the pinned id.
func (t *Tracker) Periods(ctx context.Context) (payperiod.State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.loadManager(ctx)
	if err != nil {
		return payperiod.State{}, err
	}
	return m.State(), nil
}

func (t *Tracker) AddPeriod(ctx context.Context, start, end generic.Date) (payperiod.PayPeriod, error) {
	var added payperiod.PayPeriod
	err := t.mutatePeriods(ctx, func(m *payperiod.Manager) (err error) {
		added, err = m.Add(start, end)
		return err
	})
	if err != nil {
		return payperiod.PayPeriod{}, err
	}
	log.Printf("[Tracker] Added pay period %s (%s)", added.Label, added.ID)
	return added, nil
}

func (t *Tracker) EditPeriod(ctx context.Context, id string, start, end generic.Date) (payperiod.PayPeriod, error) {
	var edited payperiod.PayPeriod
	err := t.mutatePeriods(ctx, func(m *payperiod.Manager) (err error) {
		edited, err = m.Edit(id, start, end)
		return err
	})
	if err != nil {
		return payperiod.PayPeriod{}, err
	}
	log.Printf("[Tracker] Updated pay period %s (%s)", edited.Label, edited.ID)
	return edited, nil
}

func (t *Tracker) DeletePeriod(ctx context.Context, id string) error {
	err := t.mutatePeriods(ctx, func(m *payperiod.Manager) error {
		return m.Delete(id)
	})
	if err != nil {
		return err
	}
	log.Printf("[Tracker] Deleted pay period %s", id)
	return nil
}

func (t *Tracker) SelectPeriod(ctx context.Context, id string) (payperiod.PayPeriod, error) {
	var selected payperiod.PayPeriod
	err := t.mutatePeriods(ctx, func(m *payperiod.Manager) (err error) {
		selected, err = m.Select(id)
		return err
	})
	return selected, err
}

// CurrentScope is the resolved reporting range.
type CurrentScope struct {
	Period *payperiod.PayPeriod // nil when falling back to the calendar month
	Scope  generic.Period
	Label  string
}

// CurrentPeriod resolves the period the dashboard reports on.
func (t *Tracker) CurrentPeriod(ctx context.Context) (CurrentScope, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.loadManager(ctx)
	if err != nil {
		return CurrentScope{}, err
	}
	today, _ := t.now()
	return currentScope(m, today), nil
}

// PeriodCoverage counts entries inside and outside the defined periods.
func (t *Tracker) PeriodCoverage(ctx context.Context) (inside, outside int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.loadManager(ctx)
	if err != nil {
		return 0, 0, err
	}
	entries, err := t.repo.LoadEntries(ctx)
	if err != nil {
		return 0, 0, err
	}
	dates := make([]generic.Date, len(entries))
	for i, e := range entries {
		dates[i] = e.Date
	}
	inside, outside = m.Coverage(dates)
	return inside, outside, nil
}

func currentScope(m *payperiod.Manager, today generic.Date) CurrentScope {
	if p, ok := m.Current(today); ok {
		return CurrentScope{Period: &p, Scope: p.Range(), Label: p.Label}
	}
	scope := generic.MonthPeriod(today)
	return CurrentScope{Scope: scope, Label: monthLabel(scope.Start)}
}

func monthLabel(d generic.Date) string {
	return fmt.Sprintf("%s %d", d.Month(), d.Year())
}

func (t *Tracker) loadManager(ctx context.Context) (*payperiod.Manager, error) {
	state, err := t.repo.LoadPeriods(ctx)
	if err != nil {
		return nil, err
	}
	m := payperiod.NewManager(state)
	m.NewID = t.NewID
	return m, nil
}

func (t *Tracker) mutatePeriods(ctx context.Context, fn func(*payperiod.Manager) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.loadManager(ctx)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return t.repo.SavePeriods(ctx, m.State())
}

// =============================================================================
// SETTINGS
// =============================================================================

func (t *Tracker) Settings(ctx context.Context) (Settings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.repo.LoadSettings(ctx)
}

// SettingsUpdate changes only the non-nil fields.
type SettingsUpdate struct {
	FullName       *string
	Salary         *decimal.Decimal
	AnnualVacation *decimal.Decimal
	SickDays       *decimal.Decimal
}

func (t *Tracker) UpdateSettings(ctx context.Context, upd SettingsUpdate) (Settings, error) {
	for name, v := range map[string]*decimal.Decimal{
		"salary":         upd.Salary,
		"annualVacation": upd.AnnualVacation,
		"sickDays":       upd.SickDays,
	} {
		if v != nil && v.IsNegative() {
			return Settings{}, fmt.Errorf("%w: %s must not be negative", generic.ErrInvalidValue, name)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.repo.LoadSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	if upd.FullName != nil {
		s.FullName = *upd.FullName
	}
	if upd.Salary != nil {
		s.Salary = *upd.Salary
	}
	if upd.AnnualVacation != nil {
		s.AnnualVacation = *upd.AnnualVacation
	}
	if upd.SickDays != nil {
		s.SickDays = *upd.SickDays
	}
	if err := t.repo.SaveSettings(ctx, s); err != nil {
		return Settings{}, err
	}
	log.Printf("[Tracker] Settings updated")
	return s, nil
}
