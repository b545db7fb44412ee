package worktime

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// WORK-TIME CALCULATOR
// =============================================================================
//
// The first complete interval is the working span, every later one a break
// inside it. Breaks fully inside the lunch window are free; any other break
// is deducted in full. Open intervals are ignored (silent degradation: an
// active check-in contributes nothing until it is closed).
//
//   gross = end(primary) - start(primary)
//   net   = max(0, gross - deducted)
//   extra = net - baseline(date)

// WorkTimeResult is the derived view of one entry's intervals.
type WorkTimeResult struct {
	NetMinutes      int             `json:"netMinutes"`
	DecimalHours    decimal.Decimal `json:"decimalHours"`
	ExtraMinutes    int             `json:"extraMinutes"`
	BreakMinutes    int             `json:"breakMinutes"`
	DeductedMinutes int             `json:"deductedMinutes"`
}

// Calculator is pure; the zero value is not usable, build it with NewCalculator.
type Calculator struct {
	rules Rules
}

func NewCalculator(rules Rules) *Calculator {
	return &Calculator{rules: rules}
}

func (c *Calculator) Rules() Rules { return c.rules }

// Calculate computes net, decimal and extra time for the intervals of date.
func (c *Calculator) Calculate(intervals []Interval, date generic.Date) WorkTimeResult {
	var complete []Interval
	for _, iv := range intervals {
		if iv.Complete() {
			complete = append(complete, iv)
		}
	}
	if len(complete) == 0 {
		return WorkTimeResult{DecimalHours: decimal.Zero}
	}

	gross := complete[0].Minutes()
	var breaks, deducted int
	for _, b := range complete[1:] {
		breaks += b.Minutes()
		if !c.exempt(b) {
			deducted += b.Minutes()
		}
	}

	net := gross - deducted
	if net < 0 {
		net = 0
	}
	return WorkTimeResult{
		NetMinutes:      net,
		DecimalHours:    generic.HoursFromMinutes(net).Round2().Value,
		ExtraMinutes:    net - c.rules.Baseline(date),
		BreakMinutes:    breaks,
		DeductedMinutes: deducted,
	}
}

// exempt reports a break lying entirely within the free window.
func (c *Calculator) exempt(b Interval) bool {
	return b.Start.Within(c.rules.BreakWindowStart, c.rules.BreakWindowEnd) &&
		b.End.Within(c.rules.BreakWindowStart, c.rules.BreakWindowEnd)
}
