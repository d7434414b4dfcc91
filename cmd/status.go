package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-time-logger/internal/tracker"
)

var (
	statusDate    string
	statusTooltip bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show working time, time left and estimated end of work",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusDate, "date", "", "day to summarise (YYYY/MM/DD, default today)")
	statusCmd.Flags().BoolVar(&statusTooltip, "tooltip", false, "print only the one-line summary")
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	date, err := resolveDate(statusDate, time.Now())
	if err != nil {
		return err
	}
	t, err := e.openTracker(tracker.Options{})
	if err != nil {
		return err
	}

	warn := color.New(color.FgYellow)
	for _, v := range t.Violations() {
		warn.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", v)
	}

	sum, err := t.Status(date)
	if err != nil {
		return err
	}
	if statusTooltip {
		fmt.Fprintln(cmd.OutOrStdout(), sum.Tooltip())
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), sum.Text())
	return nil
}
