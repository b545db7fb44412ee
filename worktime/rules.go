package worktime

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// RULES - Business constants of the calculator and classifier
// =============================================================================

// Rules holds every tunable of the accounting rules. DefaultRules matches
// the company handbook; factory.ParseRules builds variants from JSON.
type Rules struct {
	// Expected minutes of work on a weekday and on Saturday/Sunday.
	WeekdayBaselineMinutes int
	WeekendBaselineMinutes int

	// A break is free only if it starts and ends inside this window (inclusive).
	BreakWindowStart generic.TimeOfDay
	BreakWindowEnd   generic.TimeOfDay

	// Half-day leave still expects this much work.
	HalfDayBaselineMinutes int

	WeekdayFactor      decimal.Decimal // weekday surplus
	WeekendFactor      decimal.Decimal // weekend surplus
	SpecialDayFactor   decimal.Decimal // any hour on a holiday/vacation/weekend special day
	DoubleHoursFactor  decimal.Decimal // explicitly flagged days
	HalfDaySurplusRate decimal.Decimal // surplus over the half-day baseline

	// Hour cost = salary x SalaryShare / MonthlyHours.
	SalaryShare  decimal.Decimal
	MonthlyHours decimal.Decimal
}

// DefaultRules returns the standard rule set: 9h weekdays, free lunch break
// between 13:00 and 13:30, overtime at 1.5 on weekdays and 2 on weekends.
func DefaultRules() Rules {
	return Rules{
		WeekdayBaselineMinutes: 540,
		WeekendBaselineMinutes: 0,
		BreakWindowStart:       generic.At(13, 0),
		BreakWindowEnd:         generic.At(13, 30),
		HalfDayBaselineMinutes: 270,
		WeekdayFactor:          decimal.NewFromFloat(1.5),
		WeekendFactor:          decimal.NewFromInt(2),
		SpecialDayFactor:       decimal.NewFromInt(2),
		DoubleHoursFactor:      decimal.NewFromInt(2),
		HalfDaySurplusRate:     decimal.NewFromFloat(1.5),
		SalaryShare:            decimal.NewFromInt(2).Div(decimal.NewFromInt(3)),
		MonthlyHours:           decimal.NewFromFloat(187.5),
	}
}

// Baseline returns the expected minutes for date.
func (r Rules) Baseline(date generic.Date) int {
	if date.IsWeekend() {
		return r.WeekendBaselineMinutes
	}
	return r.WeekdayBaselineMinutes
}
