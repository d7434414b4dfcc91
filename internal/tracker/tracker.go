// Package tracker owns the session store, overtime ledger and activity
// aggregator of one data directory and serialises every operation on them.
// The CLI and the scheduler only ever talk to a Tracker.
package tracker

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/work-time-logger/internal/accounting"
	"github.com/Tiliavir/work-time-logger/internal/activity"
	"github.com/Tiliavir/work-time-logger/internal/clock"
	"github.com/Tiliavir/work-time-logger/internal/metrics"
	"github.com/Tiliavir/work-time-logger/internal/model"
	"github.com/Tiliavir/work-time-logger/internal/notify"
	"github.com/Tiliavir/work-time-logger/internal/overtime"
	"github.com/Tiliavir/work-time-logger/internal/session"
	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

// Notification texts.
const (
	EndOfWorkMessage = "It's time to end your work.\n\n%s"
	NotStartedNotice = "Not found start time in current day."
)

// Options configures a Tracker. Zero values fall back to defaults: the system
// clock, a no-op hook, no foreground detection and a log notifier.
type Options struct {
	DataDir    string
	Reference  time.Duration
	Clock      clock.Clock
	Notifier   notify.Notifier
	Hook       activity.Hook
	Foreground activity.ForegroundApp
	FlushEvery int
	Logger     zerolog.Logger
}

// Tracker serialises toggles, ticks, reports and shutdown with one mutex.
type Tracker struct {
	mu         sync.Mutex
	clock      clock.Clock
	store      *session.Store
	ledger     *overtime.Ledger
	accountant *accounting.Accountant
	activity   *activity.Aggregator
	notifier   notify.Notifier
	violations []session.Violation
	logger     zerolog.Logger
}

// Open loads the three stores below opts.DataDir. A store that cannot be
// parsed is reported as a *storage.CorruptError and left untouched on disk.
func Open(opts Options) (*Tracker, error) {
	logger := opts.Logger.With().Str("component", "tracker").Logger()
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLog(opts.Logger)
	}
	if opts.Hook == nil {
		opts.Hook = &activity.Flag{}
	}
	if opts.Foreground == nil {
		opts.Foreground = activity.NoForeground{}
	}

	store, violations, err := session.Open(filepath.Join(opts.DataDir, storage.WorkLogFile), opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening work log: %w", err)
	}
	for _, v := range violations {
		logger.Warn().Str("date", v.Date).Str("reason", v.Reason).Msg("Work log violates an invariant; fix it with 'wtl edit logs'")
	}
	ledger, err := overtime.Open(filepath.Join(opts.DataDir, storage.OvertimeFile), opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening overtime ledger: %w", err)
	}
	agg, err := activity.Open(filepath.Join(opts.DataDir, storage.ActivityFile),
		opts.Hook, opts.Foreground, opts.FlushEvery, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}

	return &Tracker{
		clock:      opts.Clock,
		store:      store,
		ledger:     ledger,
		accountant: accounting.New(store, ledger, opts.Reference, opts.Logger),
		activity:   agg,
		notifier:   opts.Notifier,
		violations: violations,
		logger:     logger,
	}, nil
}

// Violations returns the invariant violations found when the work log was
// loaded.
func (t *Tracker) Violations() []session.Violation {
	return t.violations
}

// Today returns the date key of the current day.
func (t *Tracker) Today() string {
	return timecalc.DateKey(t.clock.Now())
}

// Start is the launch-time toggle of a run process: it opens today's
// interval, resumes an already open one untouched, or ends a break. Open
// intervals left on earlier days are reported, not repaired.
func (t *Tracker) Start() (session.Label, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	today := timecalc.DateKey(now)
	for _, date := range t.store.StaleOpenDays(today) {
		t.logger.Warn().Str("date", date).Msg("Interval left open on an earlier day; it counts as zero until edited")
	}
	return t.toggle(now, true)
}

// Toggle flips today between working and break.
func (t *Tracker) Toggle() (session.Label, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.toggle(t.clock.Now(), false)
}

func (t *Tracker) toggle(now time.Time, firstRun bool) (session.Label, error) {
	label, err := t.store.Toggle(timecalc.DateKey(now), model.TimeOfDayFrom(now), firstRun)
	metrics.TogglesTotal.WithLabelValues(string(label)).Inc()
	t.countPersistFailure(err)
	return label, err
}

// Label returns the label of the next toggle today.
func (t *Tracker) Label() session.Label {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Label(t.Today())
}

// CheckOvertime is the overtime tick. With nothing logged today (the process
// ran past midnight, or the day was edited away) it logs work and re-arms the
// notification. In overtime it shows the end-of-work notice once per day.
func (t *Tracker) CheckOvertime() (*accounting.OvertimeEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	ev, err := t.accountant.CheckOvertimeTick(now)
	if errors.Is(err, accounting.ErrNotStarted) {
		t.logger.Info().Str("date", timecalc.DateKey(now)).Msg("No work logged today; starting a session")
		if showErr := t.notifier.Show(NotStartedNotice); showErr != nil {
			t.logger.Warn().Err(showErr).Msg("Failed to show notification")
		}
		t.accountant.ResetLatch()
		metrics.AutoStarts.Inc()
		metrics.WorkingSeconds.Set(0)
		_, err = t.toggle(now, false)
		return nil, err
	}

	if working, wErr := t.accountant.WorkingTime(timecalc.DateKey(now), now); wErr == nil {
		metrics.WorkingSeconds.Set(working.Seconds())
	}
	if ev != nil {
		metrics.OvertimeEvents.Inc()
		if ev.Notify {
			metrics.Notifications.Inc()
			if showErr := t.notifier.Show(fmt.Sprintf(EndOfWorkMessage, timecalc.FormatClock(ev.Working))); showErr != nil {
				t.logger.Warn().Err(showErr).Msg("Failed to show notification")
			}
		}
	}
	if err == nil && ev == nil {
		// No mutation this tick; retry any save that failed earlier.
		err = errors.Join(t.store.Flush(), t.ledger.Flush())
	}
	t.countPersistFailure(err)
	return ev, err
}

// ActivityTick takes one activity sample.
func (t *Tracker) ActivityTick() (activity.Sample, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.activity.Tick(t.clock.Now())
	if s.Sampled {
		state := "inactive"
		if s.Active {
			state = "active"
		}
		metrics.ActivitySeconds.WithLabelValues(state).Inc()
	}
	if err != nil {
		metrics.PersistFailures.WithLabelValues("activity").Inc()
	}
	return s, err
}

// Shutdown ends today's open interval and writes every pending change.
func (t *Tracker) Shutdown() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop(t.clock.Now())
}

// Stop ends today's open interval without touching the activity log. It
// reports whether an interval was closed.
func (t *Tracker) Stop() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	closed, err := t.store.CloseOpenInterval(timecalc.DateKey(now), model.TimeOfDayFrom(now))
	t.countPersistFailure(err)
	return closed, err
}

func (t *Tracker) stop(now time.Time) error {
	_, closeErr := t.store.CloseOpenInterval(timecalc.DateKey(now), model.TimeOfDayFrom(now))
	t.countPersistFailure(closeErr)
	ledgerErr := t.ledger.Flush()
	t.countPersistFailure(ledgerErr)
	actErr := t.activity.Flush()
	if actErr != nil {
		metrics.PersistFailures.WithLabelValues("activity").Inc()
	}
	return errors.Join(closeErr, ledgerErr, actErr)
}

// Import adds legacy days to the work log.
func (t *Tracker) Import(days model.WorkLog) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.store.Import(days)
	if !errors.Is(err, session.ErrDayExists) {
		t.countPersistFailure(err)
	}
	return n, err
}

// countPersistFailure attributes a failed save to the stores left dirty.
func (t *Tracker) countPersistFailure(err error) {
	if err == nil {
		return
	}
	if t.store.Dirty() {
		metrics.PersistFailures.WithLabelValues("log").Inc()
	}
	if t.ledger.Dirty() {
		metrics.PersistFailures.WithLabelValues("overtimes").Inc()
	}
}
