/*
Package generic provides the calendar and quantity primitives of the
timesheet engine.

PURPOSE:
  This package contains domain-agnostic types shared by every other package:
  calendar dates, wall-clock times, inclusive date ranges, decimal amounts,
  the key/value store contract and the error taxonomy. Nothing here knows
  about overtime, leave or pay periods.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A decimal quantity with a unit (e.g., 7.5 hours, 0.5 days)
  - Rounding: Display values are rounded to two decimals per contribution

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so that sums of rounded rows are exact
  2. Value types: Date, TimeOfDay, Period and Amount are all comparable values
  3. Explicit absence: a TimeOfDay can be absent (open check-in) without pointers

USAGE:
  worked := generic.HoursFromMinutes(570)      // 9.5 hours
  extra := worked.Sub(generic.NewAmount(9, generic.UnitHours))
  fmt.Println(extra.Round2())                  // 0.5

SEE ALSO:
  - time.go: Date
  - clock.go: TimeOfDay
  - period.go: Period
  - store.go: key/value persistence contract
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays    Unit = "days"
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
	UnitMoney   Unit = "money"
)

var minutesPerHour = decimal.NewFromInt(60)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

// HoursFromMinutes converts a minute count into an unrounded hour amount.
func HoursFromMinutes(minutes int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(minutes)).Div(minutesPerHour), Unit: UnitHours}
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }

// Round2 rounds half away from zero to two decimals.
func (a Amount) Round2() Amount {
	return Amount{Value: a.Value.Round(2), Unit: a.Unit}
}

// Float returns the value as float64 for JSON views.
func (a Amount) Float() float64 { return a.Value.InexactFloat64() }

// String renders the value with two decimals.
func (a Amount) String() string { return a.Value.StringFixed(2) }
