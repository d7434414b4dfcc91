// Package accounting derives working time, remaining time and overtime from
// the work log, and records overtime when a day runs past the reference.
package accounting

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/work-time-logger/internal/model"
	"github.com/Tiliavir/work-time-logger/internal/overtime"
	"github.com/Tiliavir/work-time-logger/internal/session"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

// DefaultReference is the default daily working duration.
const DefaultReference = 8 * time.Hour

// ErrNotStarted means no work has been logged on the day. It is distinct from
// zero minutes worked: callers react by starting a session.
var ErrNotStarted = errors.New("no work logged for this day")

// Status is the live summary of a day.
type Status struct {
	Working time.Duration
	// Remaining is the time left until the reference, or the overtime amount
	// when IsOvertime is set.
	Remaining time.Duration
	// ProjectedEnd is now + Remaining; zero when IsOvertime is set or the
	// day is not today.
	ProjectedEnd time.Time
	IsOvertime   bool
}

// OvertimeEvent is produced by a tick that finds the day in overtime.
type OvertimeEvent struct {
	Date     string
	Working  time.Duration
	Overtime time.Duration
	// Notify is set on the first detection of the day in this process.
	Notify bool
	// Closed is set when the tick force-closed the open interval.
	Closed bool
}

// Accountant computes durations from a session store. The only state it owns
// is the per-day notification latch.
type Accountant struct {
	store      *session.Store
	ledger     *overtime.Ledger
	reference  time.Duration
	notifiedOn string
	logger     zerolog.Logger
}

// New returns an Accountant measuring against reference.
func New(store *session.Store, ledger *overtime.Ledger, reference time.Duration, logger zerolog.Logger) *Accountant {
	if reference <= 0 {
		reference = DefaultReference
	}
	return &Accountant{
		store:     store,
		ledger:    ledger,
		reference: reference,
		logger:    logger.With().Str("component", "accountant").Logger(),
	}
}

// Reference returns the daily reference duration.
func (a *Accountant) Reference() time.Duration {
	return a.reference
}

// WorkingTime sums the intervals of date. An open interval runs until now when
// date is today; an open interval on any other day adds nothing, since its end
// was never recorded. Returns ErrNotStarted for a day without intervals.
func (a *Accountant) WorkingTime(date string, now time.Time) (time.Duration, error) {
	day, ok := a.store.Intervals(date)
	if !ok || len(day) == 0 {
		return 0, ErrNotStarted
	}
	today := timecalc.DateKey(now) == date
	nowTOD := model.TimeOfDayFrom(now)

	var total time.Duration
	for _, iv := range day {
		if iv.Open() && !today {
			continue
		}
		total += iv.Elapsed(nowTOD)
	}
	return total, nil
}

// TimeLeft returns reference - working; negative values mean overtime.
func TimeLeft(working, reference time.Duration) time.Duration {
	return reference - working
}

// Status returns the live summary of date. Reaching the reference counts as
// overtime, so the day is closed as soon as the target is met. ProjectedEnd is
// only set for today; a past or future day has no end to project.
func (a *Accountant) Status(date string, now time.Time) (Status, error) {
	working, err := a.WorkingTime(date, now)
	if err != nil {
		return Status{}, err
	}
	st := Status{Working: working}
	if working >= a.reference {
		st.IsOvertime = true
		st.Remaining = working - a.reference
		return st, nil
	}
	st.Remaining = TimeLeft(working, a.reference)
	if date == timecalc.DateKey(now) {
		st.ProjectedEnd = now.Add(st.Remaining)
	}
	return st, nil
}

// MonthlyWorkingTime sums WorkingTime over every logged day of monthKey.
func (a *Accountant) MonthlyWorkingTime(monthKey string, now time.Time) (time.Duration, error) {
	var total time.Duration
	for _, date := range a.store.Dates() {
		if !timecalc.InMonth(date, monthKey) {
			continue
		}
		d, err := a.WorkingTime(date, now)
		if errors.Is(err, ErrNotStarted) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// CheckOvertimeTick runs once per scheduler tick. When today is in overtime it
// records the overtime (overwriting any earlier value for the day) and closes
// the open interval at now, so the day stops accruing until the user logs work
// again. The returned event has Notify set once per day. A nil event means no
// overtime; ErrNotStarted means nothing is logged today.
func (a *Accountant) CheckOvertimeTick(now time.Time) (*OvertimeEvent, error) {
	date := timecalc.DateKey(now)
	st, err := a.Status(date, now)
	if err != nil {
		return nil, err
	}
	if !st.IsOvertime {
		return nil, nil
	}

	ev := &OvertimeEvent{Date: date, Working: st.Working, Overtime: st.Remaining}
	if a.notifiedOn != date {
		a.notifiedOn = date
		ev.Notify = true
	}

	recErr := a.ledger.Record(date, st.Remaining)
	closed, closeErr := a.store.CloseOpenInterval(date, model.TimeOfDayFrom(now))
	ev.Closed = closed

	if ev.Notify || closed {
		a.logger.Info().
			Str("date", date).
			Str("working", timecalc.FormatClock(st.Working)).
			Str("overtime", timecalc.FormatClock(st.Remaining)).
			Bool("closed", closed).
			Msg("Overtime detected")
	}
	return ev, errors.Join(recErr, closeErr)
}

// ResetLatch re-arms the overtime notification for the current day.
func (a *Accountant) ResetLatch() {
	a.notifiedOn = ""
}
