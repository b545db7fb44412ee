/*
Package leave computes vacation and sick-leave balances from day entries.

PURPOSE:
  Balances are never stored. They are derived on demand from the entry list
  and the yearly allowances, counting only entries of the requested calendar
  year. Half days count 0.5.

FORMULAS:
  vacation remaining = max(0, allowance - taken + toBeAdded)
  sick remaining     = max(0, allowance - taken)

  "To Be Added" days are compensation days owed to the employee; they add
  back to the vacation balance.

  ListDays lists the same days for any year, grouped by month, for the
  per-type drill-down views; Years lists the years worth offering.

SEE ALSO:
  - details.go: per-type listings
  - worktime/types.go: DayType and DayPortion
  - tracker/tracker.go: Supplies allowances from settings
*/
package leave

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// BALANCES
// =============================================================================

type VacationBalance struct {
	Year      int
	Allowance generic.Amount
	Taken     generic.Amount
	ToBeAdded generic.Amount
	Remaining generic.Amount
}

type SickBalance struct {
	Year      int
	Allowance generic.Amount
	Taken     generic.Amount
	Remaining generic.Amount
}

// Vacation sums Vacation and ToBeAdded days dated in year.
func Vacation(entries []worktime.DayEntry, allowance decimal.Decimal, year int) VacationBalance {
	taken := countDays(entries, worktime.Vacation, year)
	toBeAdded := countDays(entries, worktime.ToBeAdded, year)
	allow := days(allowance)

	return VacationBalance{
		Year:      year,
		Allowance: allow,
		Taken:     taken,
		ToBeAdded: toBeAdded,
		Remaining: clampZero(allow.Sub(taken).Add(toBeAdded)),
	}
}

// Sick sums SickLeave days dated in year.
func Sick(entries []worktime.DayEntry, allowance decimal.Decimal, year int) SickBalance {
	taken := countDays(entries, worktime.SickLeave, year)
	allow := days(allowance)

	return SickBalance{
		Year:      year,
		Allowance: allow,
		Taken:     taken,
		Remaining: clampZero(allow.Sub(taken)),
	}
}

var zero = decimal.Zero

func countDays(entries []worktime.DayEntry, typ worktime.DayType, year int) generic.Amount {
	total := days(zero)
	for _, e := range entries {
		if e.Type == typ && inYear(e, year) {
			total = total.Add(days(e.Duration.Days()))
		}
	}
	return total
}

func inYear(e worktime.DayEntry, year int) bool {
	return generic.YearPeriod(year).Contains(e.Date)
}

func days(v decimal.Decimal) generic.Amount {
	return generic.NewAmountFromDecimal(v, generic.UnitDays)
}

func clampZero(a generic.Amount) generic.Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}
