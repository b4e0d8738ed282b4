package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/medrex/onco-portal/internal/fixtures"
	"github.com/medrex/onco-portal/internal/portal"
	"github.com/medrex/onco-portal/pkg/calendar"
	"github.com/medrex/onco-portal/pkg/logger"
	"github.com/medrex/onco-portal/pkg/monitoring"
	"github.com/medrex/onco-portal/pkg/types"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// cli holds the state shared by every subcommand
type cli struct {
	out      io.Writer
	now      func() time.Time
	fixtures string
	timezone string
	noColor  bool
	verbose  bool

	store     *fixtures.Store
	projector *portal.CalendarProjector
}

func newCLI(out io.Writer) *cli {
	return &cli{out: out, now: time.Now}
}

// load reads the fixture file and builds the projector once
func (c *cli) load() error {
	if c.projector != nil {
		return nil
	}

	loc, err := time.LoadLocation(c.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.timezone, err)
	}

	store, err := fixtures.Load(c.fixtures)
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}

	log := logger.Discard()
	if c.verbose {
		log = logger.NewWithOutput("debug", c.out)
	}
	tracing, err := monitoring.NewTracingManager(monitoring.TracingConfig{})
	if err != nil {
		return err
	}

	projector, err := portal.NewCalendarProjector(store.Events(), portal.ProjectorConfig{
		Location: loc,
		Clock:    c.now,
	}, monitoring.NewMetricsCollector("portal-cli"), tracing, log)
	if err != nil {
		return err
	}

	c.store = store
	c.projector = projector
	return nil
}

func (c *cli) theme() theme {
	r := lipgloss.NewRenderer(c.out)
	if c.noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return newTheme(r)
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portal-cli",
		Short: "Browse the oncology portal calendar from a terminal",
		Long: `portal-cli projects the portal's fixture events onto month grids
and day agendas, the same way the portal service does.

Examples:
  portal-cli month --patient p-1001 --year 2024 --month 11
  portal-cli month --week-start monday --selected 2024-11-22
  portal-cli day --date 2024-11-15
  portal-cli patients`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(c.out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.fixtures, "fixtures", "", "fixture YAML file (defaults to the embedded demo data)")
	flags.StringVar(&c.timezone, "timezone", "UTC", "timezone that decides today")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colors and styling")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log projector activity")

	rootCmd.AddCommand(newMonthCmd(c), newDayCmd(c), newPatientsCmd(c))
	return rootCmd
}

func newMonthCmd(c *cli) *cobra.Command {
	var (
		year      int
		month     int
		weekStart string
		selected  string
		patientID string
	)

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print a 6x7 month grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(); err != nil {
				return err
			}

			today := c.projector.Today()
			if !cmd.Flags().Changed("year") {
				year = today.Year
			}
			if !cmd.Flags().Changed("month") {
				month = int(today.Month)
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid month %d", month)
			}

			start, err := calendar.ParseWeekday(weekStart)
			if err != nil {
				return err
			}

			req := portal.MonthRequest{
				PatientID: patientID,
				Year:      year,
				Month:     time.Month(month),
				WeekStart: start,
				Role:      types.RoleNavigator,
			}
			if patientID != "" {
				req.Role = types.RolePatient
			}
			if selected != "" {
				d, err := calendar.ParseDate(selected)
				if err != nil {
					return err
				}
				req.Selected = &d
			}

			view, err := c.projector.Month(context.Background(), req)
			if err != nil {
				return err
			}

			fmt.Fprint(c.out, renderMonth(c.theme(), view))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to show (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month to show, 1-12 (default current)")
	cmd.Flags().StringVar(&weekStart, "week-start", "sunday", "first column of the grid")
	cmd.Flags().StringVar(&selected, "selected", "", "highlight a date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&patientID, "patient", "", "limit to one patient")
	return cmd
}

func newDayCmd(c *cli) *cobra.Command {
	var (
		date      string
		patientID string
	)

	cmd := &cobra.Command{
		Use:   "day",
		Short: "List the events of one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(); err != nil {
				return err
			}

			d := c.projector.Today()
			if date != "" {
				var err error
				if d, err = calendar.ParseDate(date); err != nil {
					return err
				}
			}

			agenda, err := c.projector.Day(context.Background(), patientID, d)
			if err != nil {
				return err
			}

			fmt.Fprint(c.out, renderAgenda(c.theme(), agenda))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to list (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&patientID, "patient", "", "limit to one patient")
	return cmd
}

func newPatientsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "List fixture patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(); err != nil {
				return err
			}

			patients, err := c.store.Patients().List(context.Background())
			if err != nil {
				return err
			}

			fmt.Fprint(c.out, renderPatients(c.theme(), patients))
			return nil
		},
	}
}
