/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model (decimal amounts, TimeOfDay, DayType enums) from the
  wire contract, which uses plain strings and float64.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Entries:    EntryDTO, IntervalDTO, ManualTimeRequest, SpecialDayRequest,
              BreakRequest, EditEntryRequest
  Timesheet:  TimesheetDTO, RowDTO, TotalsDTO
  Dashboard:  DashboardDTO, PayDTO, BalancesDTO, LeaveDaysDTO
  Periods:    PeriodDTO, PeriodRequest, CurrentPeriodDTO, CoverageDTO
  Settings:   SettingsDTO, SettingsRequest
  Scenarios:  ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and the tracker, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rules.go: RulesJSON returned by GET /api/rules
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/leave"
	"github.com/warp/timesheet-engine/payperiod"
	"github.com/warp/timesheet-engine/tracker"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// ENTRIES
// =============================================================================

// IntervalDTO is one check-in/check-out span. An open span has no end.
type IntervalDTO struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// EntryDTO represents a stored day entry.
type EntryDTO struct {
	Date        string        `json:"date"`
	Type        string        `json:"type"`
	Duration    float64       `json:"duration"`
	DisplayType string        `json:"display_type"`
	Intervals   []IntervalDTO `json:"intervals"`
	Notes       string        `json:"notes,omitempty"`
	DoubleHours bool          `json:"double_hours"`
	Complete    bool          `json:"complete"`
}

// EntryKeyDTO identifies an entry in edit requests.
type EntryKeyDTO struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	Duration string `json:"duration,omitempty"`
}

// StatusDTO is the check-in state of today.
type StatusDTO struct {
	CheckedIn bool      `json:"checked_in"`
	Since     string    `json:"since,omitempty"`
	Entry     *EntryDTO `json:"entry,omitempty"`
}

// ManualTimeRequest records a check-in or check-out at an explicit time.
type ManualTimeRequest struct {
	Mode string `json:"mode"` // "in" or "out"
	Date string `json:"date"`
	Time string `json:"time"`
}

// SpecialDayRequest adds a vacation, sick day, holiday or similar.
// Label may be given instead of type/duration ("Vacation (Half Day)").
type SpecialDayRequest struct {
	Date        string        `json:"date"`
	Type        string        `json:"type,omitempty"`
	Duration    string        `json:"duration,omitempty"`
	Label       string        `json:"label,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	DoubleHours bool          `json:"double_hours"`
	Intervals   []IntervalDTO `json:"intervals,omitempty"`
}

// BreakRequest adds a break to a worked day.
type BreakRequest struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Notes string `json:"notes,omitempty"`
}

// EditEntryRequest replaces the editable fields of the entry at Key.
type EditEntryRequest struct {
	Key   EntryKeyDTO `json:"key"`
	Entry struct {
		Type        string        `json:"type"`
		Duration    string        `json:"duration,omitempty"`
		CheckIn     string        `json:"check_in,omitempty"`
		CheckOut    string        `json:"check_out,omitempty"`
		Breaks      []IntervalDTO `json:"breaks,omitempty"`
		Notes       string        `json:"notes,omitempty"`
		DoubleHours bool          `json:"double_hours"`
	} `json:"entry"`
}

// ClearResultDTO reports how many entries a clear removed.
type ClearResultDTO struct {
	Removed int `json:"removed"`
}

// =============================================================================
// TIMESHEET
// =============================================================================

type RowDTO struct {
	Date          string  `json:"date"`
	Weekday       string  `json:"weekday"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	HoursSpent    float64 `json:"hours_spent"`
	ExtraHours    float64 `json:"extra_hours"`
	WeightedExtra float64 `json:"weighted_extra"`
	BreakMinutes  int     `json:"break_minutes"`
	BreakDeducted int     `json:"break_deducted"`
	TimeOutside   string  `json:"time_outside"`
	Type          string  `json:"type"`
	Duration      float64 `json:"duration"`
	DisplayType   string  `json:"display_type"`
	SheetType     string  `json:"sheet_type"`
	Rule          string  `json:"rule"`
	Incomplete    bool    `json:"incomplete"`
	DoubleHours   bool    `json:"double_hours"`
	Notes         string  `json:"notes,omitempty"`
}

type TotalsDTO struct {
	HoursSpent    float64 `json:"hours_spent"`
	ExtraHours    float64 `json:"extra_hours"`
	WeightedExtra float64 `json:"weighted_extra"`
	BreakMinutes  int     `json:"break_minutes"`
	Entries       int     `json:"entries"`
	Incomplete    int     `json:"incomplete"`
}

type TimesheetDTO struct {
	Label    string    `json:"label"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	PeriodID string    `json:"period_id,omitempty"`
	Rows     []RowDTO  `json:"rows"`
	Totals   TotalsDTO `json:"totals"`
}

// =============================================================================
// DASHBOARD / BALANCES
// =============================================================================

type PayDTO struct {
	OvertimeHours float64 `json:"overtime_hours"`
	HourCost      float64 `json:"hour_cost"`
	OvertimeMoney float64 `json:"overtime_money"`
	BaseSalary    float64 `json:"base_salary"`
	TotalSalary   float64 `json:"total_salary"`
}

type VacationDTO struct {
	Year      int     `json:"year"`
	Allowance float64 `json:"allowance"`
	Taken     float64 `json:"taken"`
	ToBeAdded float64 `json:"to_be_added"`
	Remaining float64 `json:"remaining"`
}

type SickDTO struct {
	Year      int     `json:"year"`
	Allowance float64 `json:"allowance"`
	Taken     float64 `json:"taken"`
	Remaining float64 `json:"remaining"`
}

type BalancesDTO struct {
	Vacation VacationDTO `json:"vacation"`
	Sick     SickDTO     `json:"sick"`
}

type MonthDaysDTO struct {
	Month   string     `json:"month"`
	Total   float64    `json:"total"`
	Entries []EntryDTO `json:"entries"`
}

type LeaveDaysDTO struct {
	Type    string         `json:"type"`
	Year    int            `json:"year"`
	Total   float64        `json:"total"`
	Months  []MonthDaysDTO `json:"months"`
	Entries []EntryDTO     `json:"entries"`
	Years   []int          `json:"years"`
}

type DashboardDTO struct {
	FullName    string      `json:"full_name"`
	Label       string      `json:"label"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	Totals      TotalsDTO   `json:"totals"`
	Pay         PayDTO      `json:"pay"`
	Balances    BalancesDTO `json:"balances"`
	CheckedIn   bool        `json:"checked_in"`
	ActiveSince string      `json:"active_since,omitempty"`
}

// =============================================================================
// PERIODS / SETTINGS / SCENARIOS
// =============================================================================

type PeriodDTO struct {
	ID      string `json:"id"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

type PeriodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CurrentPeriodDTO is the scope the dashboard reports on. Period is nil
// when no periods exist and the calendar month applies.
type CurrentPeriodDTO struct {
	Period *PeriodDTO `json:"period"`
	Label  string     `json:"label"`
	From   string     `json:"from"`
	To     string     `json:"to"`
}

type CoverageDTO struct {
	Inside  int `json:"inside"`
	Outside int `json:"outside"`
}

type SettingsDTO struct {
	FullName       string  `json:"full_name"`
	Salary         float64 `json:"salary"`
	AnnualVacation float64 `json:"annual_vacation"`
	SickDays       float64 `json:"sick_days"`
}

// SettingsRequest updates only the fields that are present.
type SettingsRequest struct {
	FullName       *string  `json:"full_name,omitempty"`
	Salary         *float64 `json:"salary,omitempty"`
	AnnualVacation *float64 `json:"annual_vacation,omitempty"`
	SickDays       *float64 `json:"sick_days,omitempty"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"` // "overtime", "leave" or "periods"
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toIntervalDTOs(ivs []worktime.Interval) []IntervalDTO {
	out := make([]IntervalDTO, len(ivs))
	for i, iv := range ivs {
		out[i] = IntervalDTO{Start: iv.Start.String(), End: iv.End.String()}
	}
	return out
}

func toEntryDTO(e worktime.DayEntry) EntryDTO {
	return EntryDTO{
		Date:        e.Date.String(),
		Type:        e.Type.String(),
		Duration:    e.Duration.Days().InexactFloat64(),
		DisplayType: e.DisplayType(),
		Intervals:   toIntervalDTOs(e.Intervals),
		Notes:       e.Notes,
		DoubleHours: e.DoubleHours,
		Complete:    e.Complete(),
	}
}

func toEntryDTOs(entries []worktime.DayEntry) []EntryDTO {
	out := make([]EntryDTO, len(entries))
	for i, e := range entries {
		out[i] = toEntryDTO(e)
	}
	return out
}

func toRowDTO(r worktime.Row) RowDTO {
	return RowDTO{
		Date:          r.Entry.Date.String(),
		Weekday:       r.Entry.Date.Weekday().String(),
		CheckIn:       r.CheckIn.String(),
		CheckOut:      r.CheckOut.String(),
		HoursSpent:    r.HoursSpent.Float(),
		ExtraHours:    r.ExtraHours.Float(),
		WeightedExtra: r.WeightedExtra.Float(),
		BreakMinutes:  r.BreakMinutes,
		BreakDeducted: r.DeductedMinutes,
		TimeOutside:   r.TimeOutside,
		Type:          r.Entry.Type.String(),
		Duration:      r.Entry.Duration.Days().InexactFloat64(),
		DisplayType:   r.DisplayType,
		SheetType:     r.SheetType,
		Rule:          string(r.Rule),
		Incomplete:    r.Incomplete,
		DoubleHours:   r.Entry.DoubleHours,
		Notes:         r.Entry.Notes,
	}
}

func toTotalsDTO(t worktime.Totals) TotalsDTO {
	return TotalsDTO{
		HoursSpent:    t.HoursSpent.Float(),
		ExtraHours:    t.ExtraHours.Float(),
		WeightedExtra: t.WeightedExtra.Float(),
		BreakMinutes:  t.BreakMinutes,
		Entries:       t.Entries,
		Incomplete:    t.Incomplete,
	}
}

func toTimesheetDTO(ts tracker.Timesheet) TimesheetDTO {
	dto := TimesheetDTO{
		Label:  ts.Label,
		From:   ts.Scope.Start.String(),
		To:     ts.Scope.End.String(),
		Rows:   make([]RowDTO, len(ts.Rows)),
		Totals: toTotalsDTO(ts.Totals),
	}
	if ts.Period != nil {
		dto.PeriodID = ts.Period.ID
	}
	for i, r := range ts.Rows {
		dto.Rows[i] = toRowDTO(r)
	}
	return dto
}

func toPayDTO(p worktime.Pay) PayDTO {
	return PayDTO{
		OvertimeHours: p.OvertimeHours.Float(),
		HourCost:      p.HourCost.Float(),
		OvertimeMoney: p.OvertimeMoney.Float(),
		BaseSalary:    p.BaseSalary.Float(),
		TotalSalary:   p.TotalSalary.Float(),
	}
}

func toBalancesDTO(b tracker.Balances) BalancesDTO {
	return BalancesDTO{
		Vacation: toVacationDTO(b.Vacation),
		Sick: SickDTO{
			Year:      b.Sick.Year,
			Allowance: b.Sick.Allowance.Float(),
			Taken:     b.Sick.Taken.Float(),
			Remaining: b.Sick.Remaining.Float(),
		},
	}
}

func toLeaveDaysDTO(d tracker.LeaveDays) LeaveDaysDTO {
	out := LeaveDaysDTO{
		Type:    d.Type.String(),
		Year:    d.Year,
		Total:   d.Total.Float(),
		Months:  make([]MonthDaysDTO, 0, len(d.Months)),
		Entries: toEntryDTOs(d.Entries),
		Years:   d.Years,
	}
	for _, m := range d.Months {
		out.Months = append(out.Months, MonthDaysDTO{
			Month:   m.Month,
			Total:   m.Total.Float(),
			Entries: toEntryDTOs(m.Entries),
		})
	}
	return out
}

func toVacationDTO(v leave.VacationBalance) VacationDTO {
	return VacationDTO{
		Year:      v.Year,
		Allowance: v.Allowance.Float(),
		Taken:     v.Taken.Float(),
		ToBeAdded: v.ToBeAdded.Float(),
		Remaining: v.Remaining.Float(),
	}
}

func toDashboardDTO(d tracker.Dashboard) DashboardDTO {
	dto := DashboardDTO{
		FullName:  d.FullName,
		Label:     d.Label,
		From:      d.Scope.Start.String(),
		To:        d.Scope.End.String(),
		Totals:    toTotalsDTO(d.Totals),
		Pay:       toPayDTO(d.Pay),
		Balances:  toBalancesDTO(d.Balances),
		CheckedIn: d.CheckedIn,
	}
	if d.CheckedIn {
		dto.ActiveSince = d.ActiveSince.String()
	}
	return dto
}

func toPeriodDTO(p payperiod.PayPeriod, currentID string) PeriodDTO {
	return PeriodDTO{
		ID:      p.ID,
		Start:   p.Start.String(),
		End:     p.End.String(),
		Label:   p.Label,
		Current: p.ID == currentID,
	}
}

func toCurrentPeriodDTO(c tracker.CurrentScope) CurrentPeriodDTO {
	dto := CurrentPeriodDTO{
		Label: c.Label,
		From:  c.Scope.Start.String(),
		To:    c.Scope.End.String(),
	}
	if c.Period != nil {
		p := toPeriodDTO(*c.Period, c.Period.ID)
		dto.Period = &p
	}
	return dto
}

func toSettingsDTO(s tracker.Settings) SettingsDTO {
	return SettingsDTO{
		FullName:       s.FullName,
		Salary:         s.Salary.InexactFloat64(),
		AnnualVacation: s.AnnualVacation.InexactFloat64(),
		SickDays:       s.SickDays.InexactFloat64(),
	}
}

func (r SettingsRequest) toUpdate() tracker.SettingsUpdate {
	dec := func(v *float64) *decimal.Decimal {
		if v == nil {
			return nil
		}
		d := decimal.NewFromFloat(*v)
		return &d
	}
	return tracker.SettingsUpdate{
		FullName:       r.FullName,
		Salary:         dec(r.Salary),
		AnnualVacation: dec(r.AnnualVacation),
		SickDays:       dec(r.SickDays),
	}
}

// parseIntervals converts wire intervals; a blank end leaves the span open.
func parseIntervals(in []IntervalDTO) ([]worktime.Interval, error) {
	out := make([]worktime.Interval, 0, len(in))
	for _, iv := range in {
		start, err := generic.ParseTimeOfDay(iv.Start)
		if err != nil {
			return nil, err
		}
		end, err := generic.ParseTimeOfDay(iv.End)
		if err != nil {
			return nil, err
		}
		out = append(out, worktime.Interval{Start: start, End: end})
	}
	return out, nil
}
