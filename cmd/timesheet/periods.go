package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/timesheet-engine/generic"
)

func newPeriodCmd(a *app) *cobra.Command {
	period := &cobra.Command{
		Use:   "period",
		Short: "Manage pay periods",
		Long: `Pay periods replace the calendar month as the reporting scope.
Periods may not overlap and may not leave a gap between existing ones.`,
	}

	period.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pay periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.tracker.Periods(cmd.Context())
			if err != nil {
				return err
			}
			if len(state.Periods) == 0 {
				a.out.Muted("No pay periods; the calendar month is used.")
				return nil
			}
			rows := make([][]string, len(state.Periods))
			for i, p := range state.Periods {
				mark := ""
				if p.ID == state.CurrentID {
					mark = "*"
				}
				rows[i] = []string{mark, p.ID, p.Start.String(), p.End.String(), p.Label}
			}
			a.out.Table([]string{"", "ID", "Start", "End", "Label"}, rows)

			inside, outside, err := a.tracker.PeriodCoverage(cmd.Context())
			if err != nil {
				return err
			}
			if outside > 0 {
				a.out.Warning(fmt.Sprintf("%d entries outside every period (%d inside)", outside, inside))
			}
			return nil
		},
	})

	period.AddCommand(&cobra.Command{
		Use:   "add START END",
		Short: "Add a pay period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.parseRange(args[0], args[1])
			if err != nil {
				return err
			}
			p, err := a.tracker.AddPeriod(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Added %s (%s)", p.Label, p.ID))
			return nil
		},
	})

	period.AddCommand(&cobra.Command{
		Use:   "edit ID START END",
		Short: "Change a pay period's dates",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.parseRange(args[1], args[2])
			if err != nil {
				return err
			}
			p, err := a.tracker.EditPeriod(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			a.out.Success("Updated " + p.Label)
			return nil
		},
	})

	period.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a pay period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tracker.DeletePeriod(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.out.Success("Deleted " + args[0])
			return nil
		},
	})

	period.AddCommand(&cobra.Command{
		Use:   "select ID",
		Short: "Make a pay period current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.tracker.SelectPeriod(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.out.Success("Current period: " + p.Label)
			return nil
		},
	})

	period.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the reporting scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := a.tracker.CurrentPeriod(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Title(cur.Label)
			a.out.Field("From", cur.Scope.Start)
			a.out.Field("To", cur.Scope.End)
			if cur.Period == nil {
				a.out.Muted("Calendar month (no pay periods defined)")
			}
			return nil
		},
	})

	return period
}

func (a *app) parseRange(from, to string) (generic.Date, generic.Date, error) {
	start, err := a.parseDay(from)
	if err != nil {
		return generic.Date{}, generic.Date{}, err
	}
	end, err := a.parseDay(to)
	if err != nil {
		return generic.Date{}, generic.Date{}, err
	}
	return start, end, nil
}
