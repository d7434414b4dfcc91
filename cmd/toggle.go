package cmd

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/tracker"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between work and break",
	Long: `toggle starts a work interval, or ends the running one to log a break.
When "wtl run" is active the toggle is handed to it.`,
	Args: cobra.NoArgs,
	RunE: runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	pid, err := storage.Signal(e.cfg.DataDir, syscall.SIGUSR1)
	if err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Toggle sent to running wtl (PID %d).\n", pid)
		return nil
	}
	if !errors.Is(err, storage.ErrNotRunning) {
		return err
	}

	return e.withLock(func(t *tracker.Tracker) error {
		label, err := t.Toggle()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Toggled. Next: %s.\n", label)
		return nil
	})
}
