package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/leave"
	"github.com/warp/timesheet-engine/tracker"
)

// queryFlags binds --period/--month to a timesheet scope.
type queryFlags struct {
	periodID string
	month    string
}

func (q *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.periodID, "period", "", "Pay period id")
	cmd.Flags().StringVar(&q.month, "month", "", "Calendar month YYYY-MM")
}

func (q *queryFlags) query() tracker.TimesheetQuery {
	return tracker.TimesheetQuery{PeriodID: q.periodID, Month: q.month}
}

func newSheetCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Show the timesheet of the current period or a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := a.tracker.Timesheet(cmd.Context(), q.query())
			if err != nil {
				return err
			}

			a.out.Title(ts.Label)
			if len(ts.Rows) == 0 {
				a.out.Muted("No entries.")
				return nil
			}
			rows := make([][]string, len(ts.Rows))
			for i, r := range ts.Rows {
				rows[i] = []string{
					r.Entry.Date.String(),
					r.Entry.Date.Weekday().String()[:3],
					timeOrDash(r.CheckIn.Valid(), r.CheckIn.String()),
					timeOrDash(r.CheckOut.Valid(), r.CheckOut.String()),
					r.HoursSpent.String(),
					r.ExtraHours.String(),
					r.WeightedExtra.String(),
					r.TimeOutside,
					r.SheetType,
				}
				if r.Incomplete {
					rows[i][4] = "-"
					rows[i][8] += " (open)"
				}
			}
			a.out.Table([]string{"Date", "Day", "In", "Out", "Hours", "Extra", "Weighted", "Away", "Type"}, rows)

			t := ts.Totals
			a.out.Println()
			a.out.Field("Hours", t.HoursSpent)
			a.out.Field("Extra", t.ExtraHours)
			a.out.Field("Weighted", t.WeightedExtra)
			if t.Incomplete > 0 {
				a.out.Warning(fmt.Sprintf("%d day(s) without check-out are not counted", t.Incomplete))
			}
			return nil
		},
	}
	q.bind(cmd)
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show overtime money, salary and leave balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.tracker.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			title := d.Label
			if d.FullName != "" {
				title = d.FullName + " · " + d.Label
			}
			a.out.Title(title)
			a.out.Field("Overtime", d.Pay.OvertimeHours.String()+" h")
			a.out.Field("Hour cost", d.Pay.HourCost)
			a.out.Field("Overtime pay", d.Pay.OvertimeMoney)
			a.out.Field("Base salary", d.Pay.BaseSalary)
			a.out.Field("Total salary", d.Pay.TotalSalary)
			a.out.Field("Vacation left", d.Balances.Vacation.Remaining)
			a.out.Field("Sick days left", d.Balances.Sick.Remaining)
			if d.CheckedIn {
				a.out.Success("Checked in since " + d.ActiveSince.String())
			}
			if d.Totals.Incomplete > 0 {
				a.out.Warning(fmt.Sprintf("%d day(s) without check-out are not counted", d.Totals.Incomplete))
			}
			return nil
		},
	}
}

func newBalanceCmd(a *app) *cobra.Command {
	var year int
	var list string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show vacation and sick balances",
		Example: `  timesheet balance
  timesheet balance --year 2024
  timesheet balance --list vacation --year 2024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list != "" {
				return a.printLeaveDays(cmd, list, year)
			}
			b, err := a.tracker.YearBalances(cmd.Context(), year)
			if err != nil {
				return err
			}
			v, s := b.Vacation, b.Sick
			a.out.Title(fmt.Sprintf("Balances %d", v.Year))
			a.out.Table([]string{"", "Allowance", "Taken", "Added", "Remaining"}, [][]string{
				{"Vacation", v.Allowance.String(), v.Taken.String(), v.ToBeAdded.String(), v.Remaining.String()},
				{"Sick", s.Allowance.String(), s.Taken.String(), "-", s.Remaining.String()},
			})
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Calendar year (default this year)")
	cmd.Flags().StringVar(&list, "list", "", "List the days of vacation, toBeAdded or sick")
	return cmd
}

func (a *app) printLeaveDays(cmd *cobra.Command, kind string, year int) error {
	typ, err := leave.ParseKind(kind)
	if err != nil {
		return err
	}
	days, err := a.tracker.LeaveDays(cmd.Context(), typ, year)
	if err != nil {
		return err
	}

	a.out.Title(fmt.Sprintf("%s %d", typ.Label(), days.Year))
	if len(days.Months) == 0 {
		a.out.Muted("No days.")
	}
	for _, m := range days.Months {
		rows := make([][]string, len(m.Entries))
		for i, e := range m.Entries {
			rows[i] = []string{e.Date.String(), e.Date.Weekday().String()[:3], e.Duration.Days().String(), e.Notes}
		}
		a.out.Printf("%s (%s)\n", m.Month, m.Total)
		a.out.Table([]string{"Date", "Day", "Days", "Notes"}, rows)
	}
	a.out.Field("Total", days.Total)
	years := make([]string, len(days.Years))
	for i, y := range days.Years {
		years[i] = strconv.Itoa(y)
	}
	a.out.Muted("Years: " + strings.Join(years, ", "))
	return nil
}

// =============================================================================
// CSV
// =============================================================================

func newExportCmd(a *app) *cobra.Command {
	var q queryFlags
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the timesheet as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return a.tracker.ExportCSV(cmd.Context(), w, q.query())
		},
	}
	q.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file (- for stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import entries from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			rep, err := a.tracker.ImportCSV(cmd.Context(), r)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Imported %d entries", rep.Imported))
			if rep.Skipped > 0 {
				a.out.Muted(fmt.Sprintf("%d already present", rep.Skipped))
			}
			if rep.Dropped > 0 {
				a.out.Warning(fmt.Sprintf("%d malformed rows dropped", rep.Dropped))
			}
			return nil
		},
	}
}

// =============================================================================
// SETTINGS / RULES
// =============================================================================

func newSettingsCmd(a *app) *cobra.Command {
	var name, salary, vacation, sick string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change name, salary and leave allowances",
		Example: `  timesheet settings
  timesheet settings --name "Alex Morgan" --salary 3000 --vacation 23`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd tracker.SettingsUpdate
			changed := false
			if cmd.Flags().Changed("name") {
				upd.FullName, changed = &name, true
			}
			for _, f := range []struct {
				flag string
				val  string
				dst  **decimal.Decimal
			}{
				{"salary", salary, &upd.Salary},
				{"vacation", vacation, &upd.AnnualVacation},
				{"sick", sick, &upd.SickDays},
			} {
				if !cmd.Flags().Changed(f.flag) {
					continue
				}
				d, err := decimal.NewFromString(f.val)
				if err != nil {
					return fmt.Errorf("%w: --%s %q: %v", generic.ErrInvalidValue, f.flag, f.val, err)
				}
				*f.dst, changed = &d, true
			}

			var s tracker.Settings
			var err error
			if changed {
				s, err = a.tracker.UpdateSettings(cmd.Context(), upd)
			} else {
				s, err = a.tracker.Settings(cmd.Context())
			}
			if err != nil {
				return err
			}
			a.out.Title("Settings")
			a.out.Field("Name", s.FullName)
			a.out.Field("Salary", s.Salary.StringFixed(2))
			a.out.Field("Vacation/year", s.AnnualVacation.String())
			a.out.Field("Sick days/year", s.SickDays.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&salary, "salary", "", "Monthly salary")
	cmd.Flags().StringVar(&vacation, "vacation", "", "Annual vacation days")
	cmd.Flags().StringVar(&sick, "sick", "", "Annual sick days")
	return cmd
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the active overtime rules as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(factory.ToJSON(a.tracker.Rules()))
		},
	}
}

func timeOrDash(ok bool, s string) string {
	if !ok {
		return "-"
	}
	return s
}

