package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-time-logger/internal/config"
	"github.com/Tiliavir/work-time-logger/internal/logging"
	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
	"github.com/Tiliavir/work-time-logger/internal/tracker"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "wtl",
	Short: "Work Time Logger – track daily working time against a reference",
	Long: `wtl logs work and break intervals, warns when the daily reference time
is reached and records overtime per day. "wtl run" keeps a tracker running;
every other command works on the JSON files in the data directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main. User errors exit with 1,
// storage errors with 2.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/wtl/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(overtimesCmd)
	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(importCmd)
}

// exitCode maps err to the process exit status. Only failures on the data
// directory count as storage errors; a bad path given by the user does not.
func exitCode(err error) int {
	var corrupt *storage.CorruptError
	var storageErr *storage.Error
	switch {
	case errors.As(err, &corrupt), errors.As(err, &storageErr):
		return 2
	default:
		return 1
	}
}

// describe adds the repair hint to a corrupt-store error.
func describe(err error) error {
	var corrupt *storage.CorruptError
	if !errors.As(err, &corrupt) {
		return err
	}
	return fmt.Errorf("%w\nfix the file with: wtl edit %s", err, storeName(filepath.Base(corrupt.Path)))
}

// env is the loaded configuration plus the logger built from it.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logging.New(cfg.Logging, os.Stderr)}, nil
}

// openTracker opens the stores with the options every command shares.
func (e *env) openTracker(opts tracker.Options) (*tracker.Tracker, error) {
	opts.DataDir = e.cfg.DataDir
	opts.Reference = e.cfg.Reference
	opts.FlushEvery = e.cfg.Activity.FlushEvery
	opts.Logger = e.logger
	t, err := tracker.Open(opts)
	if err != nil {
		return nil, describe(err)
	}
	return t, nil
}

// withLock runs fn as the single writer of the data directory.
func (e *env) withLock(fn func(*tracker.Tracker) error) error {
	lock, err := storage.AcquireLock(e.cfg.DataDir)
	if errors.Is(err, storage.ErrLocked) {
		return fmt.Errorf("%w; stop 'wtl run' first", err)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to release lock")
		}
	}()

	t, err := e.openTracker(tracker.Options{})
	if err != nil {
		return err
	}
	return describe(fn(t))
}

// resolveDate validates a --date flag value, defaulting to today.
func resolveDate(value string, now time.Time) (string, error) {
	if value == "" {
		return timecalc.DateKey(now), nil
	}
	d, err := timecalc.ParseDateKey(value, time.Local)
	if err != nil {
		return "", err
	}
	return timecalc.DateKey(d), nil
}

// resolveMonth validates a --month flag value, defaulting to the current month.
func resolveMonth(value string, now time.Time) (string, error) {
	if value == "" {
		return timecalc.MonthKey(now), nil
	}
	return timecalc.ParseMonthKey(value)
}
