package cmd

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/tracker"
)

var errNothingOpen = errors.New("no open interval today")

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End today's open interval and stop a running tracker",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	// A running tracker closes the interval itself on SIGTERM.
	pid, err := storage.Signal(e.cfg.DataDir, syscall.SIGTERM)
	if err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Stopped wtl (PID %d).\n", pid)
		return nil
	}
	if !errors.Is(err, storage.ErrNotRunning) {
		return err
	}

	return e.withLock(func(t *tracker.Tracker) error {
		closed, err := t.Stop()
		if err != nil {
			return err
		}
		if !closed {
			return errNothingOpen
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Open interval closed.")
		return nil
	})
}
