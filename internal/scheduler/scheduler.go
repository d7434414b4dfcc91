// Package scheduler drives the periodic jobs of "wtl run" with cron.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/work-time-logger/internal/metrics"
)

// Job is one periodic task. Each job gets its own cron entry so a slow job
// never delays another one.
type Job struct {
	Name  string
	Every time.Duration
	Run   func() error
}

// Scheduler manages scheduled jobs using cron.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewScheduler creates a new scheduler. A tick that is still running when the
// next one is due is skipped.
func NewScheduler(logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		logger: logger,
	}
}

// Add registers job. It must be called before Start.
func (s *Scheduler) Add(job Job) error {
	if job.Every < time.Second {
		return fmt.Errorf("job %s: interval %s is below one second", job.Name, job.Every)
	}
	schedule := "@every " + job.Every.String()
	_, err := s.cron.AddFunc(schedule, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", job.Name, err)
	}
	s.logger.Debug().Str("job", job.Name).Str("schedule", schedule).Msg("Job scheduled")
	return nil
}

func (s *Scheduler) run(job Job) {
	metrics.TicksTotal.WithLabelValues(job.Name).Inc()
	if err := job.Run(); err != nil {
		metrics.TickErrors.WithLabelValues(job.Name).Inc()
		s.logger.Error().Err(err).Str("job", job.Name).Msg("Job failed")
	}
}

// Start starts the cron scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Debug().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Debug().Msg("Scheduler stopped")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
