package worktime

import (
	"github.com/warp/timesheet-engine/generic"
)

// =============================================================================
// TIMESHEET - Row view and totals of a scope
// =============================================================================

// Row is one rendered timesheet line.
type Row struct {
	Entry           DayEntry
	CheckIn         generic.TimeOfDay
	CheckOut        generic.TimeOfDay
	HoursSpent      generic.Amount
	ExtraHours      generic.Amount
	WeightedExtra   generic.Amount
	BreakMinutes    int
	DeductedMinutes int
	FirstBreak      Interval
	TimeOutside     string // length of FirstBreak as H:MM, "-" without one
	DisplayType     string // storage label, as exported to CSV
	SheetType       string // sheet label: Weekend, To Be Added and x2 markers
	Rule            OvertimeRule
	Incomplete      bool
	NetMinutes      int
	BaselineMinutes int
}

// Totals sums the rounded per-row figures.
type Totals struct {
	HoursSpent    generic.Amount
	ExtraHours    generic.Amount
	WeightedExtra generic.Amount
	BreakMinutes  int
	Entries       int
	Incomplete    int
}

type Sheet struct {
	Scope  generic.Period
	Rows   []Row
	Totals Totals
}

// BuildSheet classifies entries into rows and totals. Callers pass entries
// already narrowed by Select; order is preserved.
//
// A row whose intervals are not all closed (an active check-in, or a
// re-check-in after a check-out) reports zero hours and stays out of the
// hour totals until it is closed.
func BuildSheet(c *Classifier, scope generic.Period, entries []DayEntry) Sheet {
	sheet := Sheet{
		Scope: scope,
		Totals: Totals{
			HoursSpent:    generic.NewAmountFromInt(0, generic.UnitHours),
			ExtraHours:    generic.NewAmountFromInt(0, generic.UnitHours),
			WeightedExtra: generic.NewAmountFromInt(0, generic.UnitHours),
		},
	}

	for _, e := range entries {
		result, ot := c.Evaluate(e)
		row := Row{
			Entry:           e,
			HoursSpent:      generic.NewAmountFromDecimal(result.DecimalHours, generic.UnitHours),
			ExtraHours:      ot.Extra,
			WeightedExtra:   ot.Weighted,
			BreakMinutes:    result.BreakMinutes,
			DeductedMinutes: result.DeductedMinutes,
			TimeOutside:     "-",
			DisplayType:     e.DisplayType(),
			SheetType:       e.SheetType(),
			Rule:            ot.Rule,
			Incomplete:      ot.Incomplete,
			NetMinutes:      result.NetMinutes,
			BaselineMinutes: c.rules.Baseline(e.Date),
		}
		if p, ok := e.Primary(); ok {
			row.CheckIn, row.CheckOut = p.Start, p.End
		}
		if brk := e.Breaks(); len(brk) > 0 && brk[0].Complete() {
			row.FirstBreak = brk[0]
			row.TimeOutside = generic.FormatMinutes(brk[0].Minutes())
		}
		sheet.Totals.Entries++
		if row.Incomplete {
			row.HoursSpent = row.HoursSpent.Zero()
			row.NetMinutes, row.BreakMinutes, row.DeductedMinutes = 0, 0, 0
			sheet.Totals.Incomplete++
		}
		sheet.Rows = append(sheet.Rows, row)

		sheet.Totals.HoursSpent = sheet.Totals.HoursSpent.Add(row.HoursSpent)
		sheet.Totals.ExtraHours = sheet.Totals.ExtraHours.Add(row.ExtraHours)
		sheet.Totals.WeightedExtra = sheet.Totals.WeightedExtra.Add(row.WeightedExtra)
		sheet.Totals.BreakMinutes += row.BreakMinutes
	}
	return sheet
}
