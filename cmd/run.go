package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-time-logger/internal/activity"
	"github.com/Tiliavir/work-time-logger/internal/metrics"
	"github.com/Tiliavir/work-time-logger/internal/notify"
	"github.com/Tiliavir/work-time-logger/internal/scheduler"
	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/systemd"
	"github.com/Tiliavir/work-time-logger/internal/tracker"
)

// onRunReady is called once "wtl run" has started every component and is
// handling signals.
var onRunReady = func() {}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Log work now and keep tracking until stopped",
	Long: `run starts (or resumes) today's work interval, then checks for overtime
and samples activity on a schedule. SIGUSR1 toggles work/break, SIGINT and
SIGTERM close the open interval and exit.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	cfg := e.cfg
	log := e.logger.With().Str("component", "run").Logger()

	lock, err := storage.AcquireLock(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Msg("Failed to release lock")
		}
	}()

	// The PID file now advertises this process, so a "wtl toggle" or
	// "wtl stop" may signal it at any point from here on.
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigs)

	opts := tracker.Options{
		Notifier: notify.Multi{notify.NewConsole(cmd.OutOrStdout()), notify.NewLog(e.logger)},
	}
	if cfg.Activity.IdleCommand != "" {
		opts.Hook = activity.IdleCommand{Line: cfg.Activity.IdleCommand, Window: cfg.Schedule.ActivityInterval, Logger: e.logger}
	}
	if cfg.Activity.ForegroundCommand != "" {
		opts.Foreground = activity.CommandForeground{Line: cfg.Activity.ForegroundCommand}
	}
	t, err := e.openTracker(opts)
	if err != nil {
		return err
	}

	label, err := t.Start()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s. Next: %s.\n", t.Today(), label)
	if _, err := t.CheckOvertime(); err != nil {
		log.Error().Err(err).Msg("Initial overtime check failed")
	}

	sched := scheduler.NewScheduler(e.logger)
	if err := sched.Add(scheduler.Job{Name: "overtime", Every: cfg.Schedule.OvertimeInterval, Run: func() error {
		_, err := t.CheckOvertime()
		return err
	}}); err != nil {
		return err
	}
	if cfg.Activity.Enabled {
		if cfg.Activity.IdleCommand == "" {
			log.Info().Msg("No activity.idle_command configured; every sample counts as inactive")
		}
		if err := sched.Add(scheduler.Job{Name: "activity", Every: cfg.Schedule.ActivityInterval, Run: func() error {
			_, err := t.ActivityTick()
			return err
		}}); err != nil {
			return err
		}
	}

	metricsSrv, err := startMetrics(e)
	if err != nil {
		return err
	}

	sched.Start()
	if sent, err := systemd.NotifyReady(); err != nil {
		log.Warn().Err(err).Msg("Failed to notify systemd")
	} else if sent {
		log.Debug().Msg("Notified systemd of readiness")
	}

	onRunReady()

	for sig := range sigs {
		if sig == syscall.SIGUSR1 {
			label, err := t.Toggle()
			if err != nil {
				log.Error().Err(err).Msg("Toggle failed")
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Toggled. Next: %s.\n", label)
			continue
		}
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		break
	}

	if _, err := systemd.NotifyStopping(); err != nil {
		log.Warn().Err(err).Msg("Failed to notify systemd")
	}
	sched.Stop()
	var stopErr error
	if metricsSrv != nil {
		stopErr = metricsSrv.Stop()
	}
	return errors.Join(t.Shutdown(), stopErr)
}

// startMetrics serves /metrics when an address or a socket-activated
// listener is available.
func startMetrics(e *env) (*metrics.Server, error) {
	ln, err := systemd.MetricsListener()
	if err != nil {
		return nil, err
	}
	if ln == nil && e.cfg.Metrics.Address == "" {
		return nil, nil
	}
	srv := metrics.NewServer(e.cfg.Metrics.Address, e.logger)
	if ln != nil {
		srv.SetListener(ln)
	}
	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("starting metrics server: %w", err)
	}
	return srv, nil
}
