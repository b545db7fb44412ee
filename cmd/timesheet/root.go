package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/spf13/cobra"
	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/store"
	"github.com/warp/timesheet-engine/tracker"
)

// app is the state shared by every command of one invocation.
type app struct {
	// flags
	backend   string
	dbPath    string
	rulesPath string
	color     string
	debug     bool

	store   generic.Store
	owned   bool // opened here, closed after the command
	tracker *tracker.Tracker
	out     *Formatter
	now     func() time.Time
}

func newRootCmd(a *app) *cobra.Command {
	if a.now == nil {
		a.now = time.Now
	}

	root := &cobra.Command{
		Use:   "timesheet",
		Short: "Track working hours, overtime and leave",
		Long: `timesheet records check-ins, breaks and special days and reports
weighted overtime, its money value and vacation/sick balances.

Examples:
  timesheet checkin
  timesheet manual out --date yesterday --time 18:30
  timesheet day add --date "next friday" --type vacation --half
  timesheet sheet --month 2025-01
  timesheet period add 2025-01-01 2025-01-15`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.open(cmd.OutOrStdout())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printStatus(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.backend, "store", store.SQLite, "Store backend: sqlite, badger, memory")
	pf.StringVar(&a.dbPath, "db", "", "Database path (default under the XDG data home)")
	pf.StringVar(&a.rulesPath, "rules", "", "JSON rules file")
	pf.StringVar(&a.color, "color", string(ColorAuto), "Color output: auto, always, never")
	pf.BoolVar(&a.debug, "debug", false, "Show engine log lines")

	root.AddCommand(
		newCheckInCmd(a),
		newCheckOutCmd(a),
		newStatusCmd(a),
		newManualCmd(a),
		newDayCmd(a),
		newBreakCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newClearCmd(a),
		newSheetCmd(a),
		newDashboardCmd(a),
		newBalanceCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newPeriodCmd(a),
		newSettingsCmd(a),
		newRulesCmd(a),
	)
	return root
}

// open wires the store and tracker unless a test already did.
func (a *app) open(w io.Writer) error {
	if !a.debug {
		log.SetOutput(io.Discard)
	}
	a.out = NewFormatter(w, ColorMode(a.color))

	rules, err := factory.NewRulesFactory().LoadFile(a.rulesPath)
	if err != nil {
		return err
	}
	if a.store == nil {
		st, err := store.Open(a.backend, a.dbPath)
		if err != nil {
			return err
		}
		a.store, a.owned = st, true
	}
	a.tracker = tracker.New(tracker.NewKVRepository(a.store), rules)
	a.tracker.Now = a.now
	return nil
}

func (a *app) close() error {
	if !a.owned || a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store, a.owned = nil, false
	return err
}

// =============================================================================
// DATE / TIME ARGUMENTS
// =============================================================================

// parseDay accepts YYYY-MM-DD or natural language ("yesterday",
// "last friday"). Blank is today.
func (a *app) parseDay(s string) (generic.Date, error) {
	s = strings.TrimSpace(s)
	now := a.now()
	if s == "" || strings.EqualFold(s, "today") {
		return generic.DateOf(now), nil
	}
	if d, err := generic.ParseDate(s); err == nil {
		return d, nil
	}

	cfg := &dateparser.Configuration{CurrentTime: now}
	res, err := dateparser.Parse(cfg, s)
	if err != nil || res.Time.IsZero() {
		return generic.Date{}, fmt.Errorf("%w: cannot understand date %q", generic.ErrInvalidValue, s)
	}
	return generic.DateOf(res.Time), nil
}

func parseClock(s string) (generic.TimeOfDay, error) {
	t, err := generic.ParseTimeOfDay(s)
	if err != nil {
		return generic.TimeOfDay{}, fmt.Errorf("%w: %v", generic.ErrInvalidValue, err)
	}
	return t, nil
}

func main() {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		a.close()
		os.Exit(1)
	}
}
