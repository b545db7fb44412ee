package worktime

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
)

// Pay converts weighted overtime into money for the dashboard.
type Pay struct {
	OvertimeHours generic.Amount
	HourCost      generic.Amount
	OvertimeMoney generic.Amount
	BaseSalary    generic.Amount
	TotalSalary   generic.Amount
}

// Payroll prices overtime at SalaryShare x salary / MonthlyHours per hour.
// Negative overtime (a deficit) reduces the total.
func Payroll(rules Rules, overtime generic.Amount, salary decimal.Decimal) Pay {
	base := generic.NewAmountFromDecimal(salary, generic.UnitMoney)
	cost := generic.NewAmountFromDecimal(salary.Mul(rules.SalaryShare), generic.UnitMoney)
	if !rules.MonthlyHours.IsZero() {
		cost = cost.Div(rules.MonthlyHours)
	}
	money := cost.Mul(overtime.Value).Round2()
	return Pay{
		OvertimeHours: overtime,
		HourCost:      cost.Round2(),
		OvertimeMoney: money,
		BaseSalary:    base,
		TotalSalary:   base.Add(money),
	}
}
