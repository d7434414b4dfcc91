package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-time-logger/internal/tracker"
)

var (
	logsDate      string
	overtimeMonth string
	monthMonth    string
	activityDate  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List the work intervals of a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, func(t *tracker.Tracker, now time.Time) (string, error) {
			date, err := resolveDate(logsDate, now)
			if err != nil {
				return "", err
			}
			return t.Logs(date), nil
		})
	},
}

var overtimesCmd = &cobra.Command{
	Use:   "overtimes",
	Short: "List recorded overtime of a month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, func(t *tracker.Tracker, now time.Time) (string, error) {
			month, err := resolveMonth(overtimeMonth, now)
			if err != nil {
				return "", err
			}
			return t.Overtimes(month), nil
		})
	},
}

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show the total working time of a month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, func(t *tracker.Tracker, now time.Time) (string, error) {
			month, err := resolveMonth(monthMonth, now)
			if err != nil {
				return "", err
			}
			return t.Month(month)
		})
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show active and inactive time per process for a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return report(cmd, func(t *tracker.Tracker, now time.Time) (string, error) {
			date, err := resolveDate(activityDate, now)
			if err != nil {
				return "", err
			}
			return t.Activity(date), nil
		})
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsDate, "date", "", "day to list (YYYY/MM/DD, default today)")
	overtimesCmd.Flags().StringVar(&overtimeMonth, "month", "", "month to list (YYYY/MM, default current)")
	monthCmd.Flags().StringVar(&monthMonth, "month", "", "month to sum (YYYY/MM, default current)")
	activityCmd.Flags().StringVar(&activityDate, "date", "", "day to report (YYYY/MM/DD, default today)")
}

// report opens the stores read-only and prints what render returns.
func report(cmd *cobra.Command, render func(*tracker.Tracker, time.Time) (string, error)) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	t, err := e.openTracker(tracker.Options{})
	if err != nil {
		return err
	}
	out, err := render(t, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
