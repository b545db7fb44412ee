/*
Package factory provides JSON to Go rules conversion.

PURPOSE:
  Converts a JSON rules document into worktime.Rules. Payroll departments can
  change baselines, the free break window or overtime factors without a code
  change; cmd/server and cmd/timesheet load the file given by -rules/--rules.

JSON SCHEMA (every field optional, omitted fields keep the default):
  {
    "weekday_baseline_minutes": 540,
    "weekend_baseline_minutes": 0,
    "break_window": {"start": "13:00", "end": "13:30"},
    "half_day_baseline_minutes": 270,
    "factors": {
      "weekday": 1.5,
      "weekend": 2,
      "special_day": 2,
      "double_hours": 2,
      "half_day_surplus": 1.5
    },
    "salary_share": 0.6666666667,
    "monthly_hours": 187.5
  }

VALIDATION:
  - Baselines are 0..1440 minutes; the half-day baseline may not exceed the
    weekday one.
  - The break window must have start <= end.
  - Factors and salary share must be positive; monthly hours must be > 0.

USAGE:
  f := factory.NewRulesFactory()
  rules, err := f.ParseRules(jsonString)

SEE ALSO:
  - worktime/rules.go: Rules type and defaults
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RulesJSON is the JSON representation of worktime.Rules.
type RulesJSON struct {
	WeekdayBaselineMinutes *int         `json:"weekday_baseline_minutes,omitempty"`
	WeekendBaselineMinutes *int         `json:"weekend_baseline_minutes,omitempty"`
	BreakWindow            *WindowJSON  `json:"break_window,omitempty"`
	HalfDayBaselineMinutes *int         `json:"half_day_baseline_minutes,omitempty"`
	Factors                *FactorsJSON `json:"factors,omitempty"`
	SalaryShare            *float64     `json:"salary_share,omitempty"`
	MonthlyHours           *float64     `json:"monthly_hours,omitempty"`
}

// WindowJSON is the free break window.
type WindowJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FactorsJSON holds the overtime multipliers.
type FactorsJSON struct {
	Weekday        *float64 `json:"weekday,omitempty"`
	Weekend        *float64 `json:"weekend,omitempty"`
	SpecialDay     *float64 `json:"special_day,omitempty"`
	DoubleHours    *float64 `json:"double_hours,omitempty"`
	HalfDaySurplus *float64 `json:"half_day_surplus,omitempty"`
}

// =============================================================================
// RULES FACTORY
// =============================================================================

// RulesFactory converts JSON rules to worktime.Rules.
type RulesFactory struct{}

func NewRulesFactory() *RulesFactory {
	return &RulesFactory{}
}

// ParseRules parses a JSON string. An empty string yields the defaults.
func (f *RulesFactory) ParseRules(jsonStr string) (worktime.Rules, error) {
	if jsonStr == "" {
		return worktime.DefaultRules(), nil
	}
	var rj RulesJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return worktime.Rules{}, fmt.Errorf("%w: failed to parse rules JSON: %v", generic.ErrInvalidRules, err)
	}
	return f.FromJSON(rj)
}

// LoadFile reads a rules document from disk. An empty path yields the defaults.
func (f *RulesFactory) LoadFile(path string) (worktime.Rules, error) {
	if path == "" {
		return worktime.DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return worktime.Rules{}, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	return f.ParseRules(string(data))
}

// FromJSON overlays rj on the defaults and validates the result.
func (f *RulesFactory) FromJSON(rj RulesJSON) (worktime.Rules, error) {
	r := worktime.DefaultRules()

	setInt(&r.WeekdayBaselineMinutes, rj.WeekdayBaselineMinutes)
	setInt(&r.WeekendBaselineMinutes, rj.WeekendBaselineMinutes)
	setInt(&r.HalfDayBaselineMinutes, rj.HalfDayBaselineMinutes)

	if rj.BreakWindow != nil {
		start, err := generic.ParseTimeOfDay(rj.BreakWindow.Start)
		if err != nil || !start.Valid() {
			return worktime.Rules{}, fmt.Errorf("%w: break_window.start %q", generic.ErrInvalidRules, rj.BreakWindow.Start)
		}
		end, err := generic.ParseTimeOfDay(rj.BreakWindow.End)
		if err != nil || !end.Valid() {
			return worktime.Rules{}, fmt.Errorf("%w: break_window.end %q", generic.ErrInvalidRules, rj.BreakWindow.End)
		}
		r.BreakWindowStart, r.BreakWindowEnd = start, end
	}

	if fj := rj.Factors; fj != nil {
		setDecimal(&r.WeekdayFactor, fj.Weekday)
		setDecimal(&r.WeekendFactor, fj.Weekend)
		setDecimal(&r.SpecialDayFactor, fj.SpecialDay)
		setDecimal(&r.DoubleHoursFactor, fj.DoubleHours)
		setDecimal(&r.HalfDaySurplusRate, fj.HalfDaySurplus)
	}
	setDecimal(&r.SalaryShare, rj.SalaryShare)
	setDecimal(&r.MonthlyHours, rj.MonthlyHours)

	if err := Validate(r); err != nil {
		return worktime.Rules{}, err
	}
	return r, nil
}

// Validate checks a rule set for values the calculator cannot use.
func Validate(r worktime.Rules) error {
	for name, v := range map[string]int{
		"weekday_baseline_minutes":  r.WeekdayBaselineMinutes,
		"weekend_baseline_minutes":  r.WeekendBaselineMinutes,
		"half_day_baseline_minutes": r.HalfDayBaselineMinutes,
	} {
		if v < 0 || v > 24*60 {
			return fmt.Errorf("%w: %s must be between 0 and 1440, got %d", generic.ErrInvalidRules, name, v)
		}
	}
	if r.HalfDayBaselineMinutes > r.WeekdayBaselineMinutes {
		return fmt.Errorf("%w: half_day_baseline_minutes exceeds weekday_baseline_minutes", generic.ErrInvalidRules)
	}
	if r.BreakWindowEnd.Minutes() < r.BreakWindowStart.Minutes() {
		return fmt.Errorf("%w: break_window ends before it starts", generic.ErrInvalidRules)
	}
	for name, v := range map[string]decimal.Decimal{
		"factors.weekday":          r.WeekdayFactor,
		"factors.weekend":          r.WeekendFactor,
		"factors.special_day":      r.SpecialDayFactor,
		"factors.double_hours":     r.DoubleHoursFactor,
		"factors.half_day_surplus": r.HalfDaySurplusRate,
		"salary_share":             r.SalaryShare,
		"monthly_hours":            r.MonthlyHours,
	} {
		if !v.IsPositive() {
			return fmt.Errorf("%w: %s must be positive, got %s", generic.ErrInvalidRules, name, v)
		}
	}
	return nil
}

// ToJSON renders r in the schema ParseRules reads.
func ToJSON(r worktime.Rules) RulesJSON {
	f := func(d decimal.Decimal) *float64 {
		v := d.InexactFloat64()
		return &v
	}
	i := func(v int) *int { return &v }
	return RulesJSON{
		WeekdayBaselineMinutes: i(r.WeekdayBaselineMinutes),
		WeekendBaselineMinutes: i(r.WeekendBaselineMinutes),
		BreakWindow:            &WindowJSON{Start: r.BreakWindowStart.String(), End: r.BreakWindowEnd.String()},
		HalfDayBaselineMinutes: i(r.HalfDayBaselineMinutes),
		Factors: &FactorsJSON{
			Weekday:        f(r.WeekdayFactor),
			Weekend:        f(r.WeekendFactor),
			SpecialDay:     f(r.SpecialDayFactor),
			DoubleHours:    f(r.DoubleHoursFactor),
			HalfDaySurplus: f(r.HalfDaySurplusRate),
		},
		SalaryShare:  f(r.SalaryShare),
		MonthlyHours: f(r.MonthlyHours),
	}
}

// DefaultRulesJSON returns the default rules as an indented JSON document.
func DefaultRulesJSON() string {
	b, _ := json.MarshalIndent(ToJSON(worktime.DefaultRules()), "", "  ")
	return string(b)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDecimal(dst *decimal.Decimal, v *float64) {
	if v != nil {
		*dst = decimal.NewFromFloat(*v)
	}
}
