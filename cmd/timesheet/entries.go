package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/tracker"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// CHECK-IN / CHECK-OUT
// =============================================================================

func newCheckInCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "checkin",
		Aliases: []string{"in"},
		Short:   "Check in now",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.tracker.CheckIn(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Checked in on %s at %s", e.Date, openSince(e)))
			return nil
		},
	}
}

func newCheckOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "checkout",
		Aliases: []string{"out"},
		Short:   "Check out now",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.tracker.CheckOut(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Checked out on %s", e.Date))
			a.printEntry(e)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are checked in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printStatus(cmd)
		},
	}
}

func (a *app) printStatus(cmd *cobra.Command) error {
	e, active, err := a.tracker.Status(cmd.Context())
	if err != nil {
		return err
	}
	if !active {
		a.out.Muted("Not checked in.")
		a.out.Muted("Use 'timesheet checkin' to start the day.")
		return nil
	}
	a.out.Printf("Checked in since %s\n", openSince(e))
	return nil
}

func newManualCmd(a *app) *cobra.Command {
	var date, at string
	cmd := &cobra.Command{
		Use:   "manual in|out",
		Short: "Check in or out at a given date and time",
		Example: `  timesheet manual in --time 08:45
  timesheet manual out --date yesterday --time 18:30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := tracker.ParsePunchMode(args[0])
			if err != nil {
				return err
			}
			d, err := a.parseDay(date)
			if err != nil {
				return err
			}
			t, err := parseClock(at)
			if err != nil {
				return err
			}
			e, err := a.tracker.ManualTime(cmd.Context(), mode, d, t)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Recorded check-%s on %s at %s", mode, d, t))
			a.printEntry(e)
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day (YYYY-MM-DD or natural language, default today)")
	cmd.Flags().StringVarP(&at, "time", "t", "", "Time HH:MM")
	cmd.MarkFlagRequired("time")
	return cmd
}

// =============================================================================
// SPECIAL DAYS AND BREAKS
// =============================================================================

func newDayCmd(a *app) *cobra.Command {
	day := &cobra.Command{
		Use:   "day",
		Short: "Manage special days",
	}

	var date, typ, label, notes, in, out string
	var half, double bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a vacation, sick, holiday, leave or worked day",
		Example: `  timesheet day add --type vacation --date "next monday"
  timesheet day add --label "Sick Leave (Half Day)" --in 09:00 --out 14:30
  timesheet day add --type regular --in 09:00 --out 19:00 --double`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.parseDay(date)
			if err != nil {
				return err
			}
			input := tracker.DayInput{Date: d, Notes: notes, DoubleHours: double}
			if label != "" {
				input.Type, input.Duration = worktime.ParseSpecialDayLabel(label)
			} else {
				if input.Type, err = worktime.ParseDayType(typ); err != nil {
					return fmt.Errorf("%w: %v", generic.ErrInvalidValue, err)
				}
				if half {
					input.Duration = worktime.HalfDay
				}
			}
			if in != "" || out != "" {
				start, err := parseClock(in)
				if err != nil {
					return err
				}
				end, err := parseClock(out)
				if err != nil {
					return err
				}
				input.Intervals = []worktime.Interval{{Start: start, End: end}}
			}

			e, err := a.tracker.AddSpecialDay(cmd.Context(), input)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Added %s on %s", e.DisplayType(), e.Date))
			return nil
		},
	}
	add.Flags().StringVarP(&date, "date", "d", "", "Day (default today)")
	add.Flags().StringVar(&typ, "type", "Regular", "Regular, Vacation, SickLeave, Holiday, Leave, ToBeAdded")
	add.Flags().StringVar(&label, "label", "", `Picker label, e.g. "Vacation (Half Day)"`)
	add.Flags().BoolVar(&half, "half", false, "Half day")
	add.Flags().BoolVar(&double, "double", false, "Count hours twice")
	add.Flags().StringVar(&in, "in", "", "Check-in HH:MM")
	add.Flags().StringVar(&out, "out", "", "Check-out HH:MM")
	add.Flags().StringVarP(&notes, "notes", "n", "", "Notes")

	day.AddCommand(add)
	return day
}

func newBreakCmd(a *app) *cobra.Command {
	brk := &cobra.Command{
		Use:   "break",
		Short: "Manage breaks",
	}

	var date, notes string
	add := &cobra.Command{
		Use:     "add START END",
		Short:   "Add a break to a worked day",
		Example: `  timesheet break add 12:30 13:15 --notes lunch`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.parseDay(date)
			if err != nil {
				return err
			}
			start, err := parseClock(args[0])
			if err != nil {
				return err
			}
			end, err := parseClock(args[1])
			if err != nil {
				return err
			}
			e, err := a.tracker.AddBreak(cmd.Context(), d, worktime.Interval{Start: start, End: end}, notes)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Added break %s-%s on %s", start, end, d))
			a.printEntry(e)
			return nil
		},
	}
	add.Flags().StringVarP(&date, "date", "d", "", "Day (default today)")
	add.Flags().StringVarP(&notes, "notes", "n", "", "Notes")

	brk.AddCommand(add)
	return brk
}

// =============================================================================
// EDIT / DELETE / CLEAR
// =============================================================================

// entryKeyFlags binds --date/--type/--half to an entry key.
type entryKeyFlags struct {
	date string
	typ  string
	half bool
}

func (f *entryKeyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Day of the entry (default today)")
	cmd.Flags().StringVar(&f.typ, "type", "Regular", "Type of the entry")
	cmd.Flags().BoolVar(&f.half, "half", false, "The entry is a half day")
}

func (f *entryKeyFlags) key(a *app) (worktime.EntryKey, error) {
	d, err := a.parseDay(f.date)
	if err != nil {
		return worktime.EntryKey{}, err
	}
	t, err := worktime.ParseDayType(f.typ)
	if err != nil {
		return worktime.EntryKey{}, fmt.Errorf("%w: %v", generic.ErrInvalidValue, err)
	}
	k := worktime.EntryKey{Date: d, Type: t}
	if f.half {
		k.Duration = worktime.HalfDay
	}
	return k, nil
}

func newEditCmd(a *app) *cobra.Command {
	var key entryKeyFlags
	var newType, in, out, notes string
	var breaks []string
	var half, double bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Rewrite an entry",
		Example: `  timesheet edit --date 2025-01-06 --in 08:30 --out 17:30 --break 12:30-13:00
  timesheet edit --date 2025-01-07 --type vacation --new-type sickleave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := key.key(a)
			if err != nil {
				return err
			}
			upd := tracker.EntryUpdate{Type: k.Type, Duration: k.Duration, Notes: notes, DoubleHours: double}
			if newType != "" {
				if upd.Type, err = worktime.ParseDayType(newType); err != nil {
					return fmt.Errorf("%w: %v", generic.ErrInvalidValue, err)
				}
			}
			if cmd.Flags().Changed("new-half") {
				upd.Duration = worktime.FullDay
				if half {
					upd.Duration = worktime.HalfDay
				}
			}
			if upd.CheckIn, err = parseClock(in); err != nil {
				return err
			}
			if upd.CheckOut, err = parseClock(out); err != nil {
				return err
			}
			for _, b := range breaks {
				start, end, ok := strings.Cut(b, "-")
				if !ok {
					return fmt.Errorf("%w: break %q (use HH:MM-HH:MM)", generic.ErrInvalidValue, b)
				}
				iv := worktime.Interval{}
				if iv.Start, err = parseClock(start); err != nil {
					return err
				}
				if iv.End, err = parseClock(end); err != nil {
					return err
				}
				upd.Breaks = append(upd.Breaks, iv)
			}

			e, err := a.tracker.EditEntry(cmd.Context(), k, upd)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Updated %s on %s", e.DisplayType(), e.Date))
			a.printEntry(e)
			return nil
		},
	}
	key.bind(cmd)
	cmd.Flags().StringVar(&newType, "new-type", "", "Change the type")
	cmd.Flags().BoolVar(&half, "new-half", false, "Change to a half (true) or full (false) day")
	cmd.Flags().StringVar(&in, "in", "", "Check-in HH:MM")
	cmd.Flags().StringVar(&out, "out", "", "Check-out HH:MM")
	cmd.Flags().StringArrayVar(&breaks, "break", nil, "Break HH:MM-HH:MM (repeatable)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes")
	cmd.Flags().BoolVar(&double, "double", false, "Count hours twice")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var key entryKeyFlags
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := key.key(a)
			if err != nil {
				return err
			}
			if err := a.tracker.DeleteEntry(cmd.Context(), k); err != nil {
				return err
			}
			a.out.Success("Deleted " + k.String())
			return nil
		},
	}
	key.bind(cmd)
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove entries by day, month, or everything",
	}

	clearCmd.AddCommand(&cobra.Command{
		Use:   "day DATE",
		Short: "Remove every entry on a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.parseDay(args[0])
			if err != nil {
				return err
			}
			n, err := a.tracker.ClearDay(cmd.Context(), d)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Removed %d entries on %s", n, d))
			return nil
		},
	})

	clearCmd.AddCommand(&cobra.Command{
		Use:   "month YYYY-MM",
		Short: "Remove every entry in a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := generic.ParseMonth(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", generic.ErrInvalidValue, err)
			}
			n, err := a.tracker.ClearMonth(cmd.Context(), m)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Removed %d entries in %s", n, m.MonthKey()))
			return nil
		},
	})

	var confirm string
	all := &cobra.Command{
		Use:   "all",
		Short: "Delete all entries, periods and settings",
		Long:  `Deletes everything. Pass --confirm "DELETE ALL" to proceed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tracker.ClearAll(cmd.Context(), confirm); err != nil {
				return err
			}
			a.out.Warning("All data deleted")
			return nil
		},
	}
	all.Flags().StringVar(&confirm, "confirm", "", `Must be "DELETE ALL"`)
	clearCmd.AddCommand(all)

	return clearCmd
}

// =============================================================================
// HELPERS
// =============================================================================

func openSince(e worktime.DayEntry) string {
	for _, iv := range e.Intervals {
		if iv.Open() {
			return iv.Start.String()
		}
	}
	return "-"
}

func (a *app) printEntry(e worktime.DayEntry) {
	for i, iv := range e.Intervals {
		label := "Worked"
		if i > 0 {
			label = "Break"
		}
		end := "open"
		if iv.End.Valid() {
			end = iv.End.String()
		}
		a.out.Field(label, iv.Start.String()+" - "+end)
	}
	if e.Notes != "" {
		a.out.Field("Notes", e.Notes)
	}
}
