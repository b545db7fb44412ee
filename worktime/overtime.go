package worktime

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// OVERTIME CLASSIFIER
// =============================================================================
//
// One pure function decides the overtime of an entry. The sheet rows, the
// period totals and the dashboard all call it, so the three views cannot
// disagree. Rules are tried in order and the first match wins:
//
//   none        no intervals at all                       -> 0
//   incomplete  an interval lacks an endpoint             -> 0, flagged
//   leave       full-day Vacation/SickLeave/ToBeAdded     -> 0
//   half-day    half-day Vacation/SickLeave/ToBeAdded     -> net - 4.5h,
//               surplus weighted x1.5, deficit unweighted
//   double      doubleHours flag                          -> net, weighted x2
//   special     non-Regular on a weekend, or a Holiday or
//               Vacation entry                            -> net, weighted x2
//   standard    extra = net - baseline; positive weighted x2 on weekends,
//               x1.5 on weekdays; non-positive unweighted
//
// Both figures are rounded to two decimals per entry before any summing.

type OvertimeRule string

const (
	RuleNone       OvertimeRule = "none"
	RuleIncomplete OvertimeRule = "incomplete"
	RuleLeave      OvertimeRule = "leave"
	RuleHalfDay    OvertimeRule = "half-day"
	RuleDouble     OvertimeRule = "double"
	RuleSpecial    OvertimeRule = "special"
	RuleStandard   OvertimeRule = "standard"
)

// Overtime is the classification of one entry, in hours.
type Overtime struct {
	Extra      generic.Amount
	Weighted   generic.Amount
	Factor     decimal.Decimal
	Rule       OvertimeRule
	Incomplete bool
}

type Classifier struct {
	rules Rules
	calc  *Calculator
}

func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules, calc: NewCalculator(rules)}
}

// Calculator exposes the calculator bound to the same rules.
func (c *Classifier) Calculator() *Calculator { return c.calc }

// Evaluate runs the calculator and the classifier on entry.
func (c *Classifier) Evaluate(entry DayEntry) (WorkTimeResult, Overtime) {
	result := c.calc.Calculate(entry.Intervals, entry.Date)
	return result, c.Classify(entry, result)
}

// Classify applies the ordered rules to entry and its calculator result.
func (c *Classifier) Classify(entry DayEntry, result WorkTimeResult) Overtime {
	zero := generic.NewAmountFromInt(0, generic.UnitHours)
	one := decimal.NewFromInt(1)

	if len(entry.Intervals) == 0 {
		return Overtime{Extra: zero, Weighted: zero, Factor: one, Rule: RuleNone}
	}
	if !entry.Complete() {
		return Overtime{Extra: zero, Weighted: zero, Factor: one, Rule: RuleIncomplete, Incomplete: true}
	}

	netHours := generic.HoursFromMinutes(result.NetMinutes)

	if entry.Type.IsLeaveBalance() {
		if entry.Duration == FullDay {
			return Overtime{Extra: zero, Weighted: zero, Factor: one, Rule: RuleLeave}
		}
		diff := generic.HoursFromMinutes(result.NetMinutes - c.rules.HalfDayBaselineMinutes)
		if diff.IsPositive() {
			return weighted(diff, c.rules.HalfDaySurplusRate, RuleHalfDay)
		}
		return weighted(diff, one, RuleHalfDay)
	}

	if entry.DoubleHours {
		return weighted(netHours, c.rules.DoubleHoursFactor, RuleDouble)
	}

	if entry.Type.IsSpecial() && (entry.Date.IsWeekend() || entry.Type == Holiday || entry.Type == Vacation) {
		return weighted(netHours, c.rules.SpecialDayFactor, RuleSpecial)
	}

	extra := generic.HoursFromMinutes(result.ExtraMinutes)
	if !extra.IsPositive() {
		return weighted(extra, one, RuleStandard)
	}
	if entry.Date.IsWeekend() {
		return weighted(extra, c.rules.WeekendFactor, RuleStandard)
	}
	return weighted(extra, c.rules.WeekdayFactor, RuleStandard)
}

func weighted(extra generic.Amount, factor decimal.Decimal, rule OvertimeRule) Overtime {
	return Overtime{
		Extra:    extra.Round2(),
		Weighted: extra.Mul(factor).Round2(),
		Factor:   factor,
		Rule:     rule,
	}
}
