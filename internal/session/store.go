// Package session owns the date-partitioned work log: the start/end intervals
// recorded each day and the toggle state machine that appends to it.
package session

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/work-time-logger/internal/model"
	"github.com/Tiliavir/work-time-logger/internal/storage"
)

// Label is the action the next toggle will perform, as shown to the user.
type Label string

const (
	LogWork  Label = "Log work"
	LogBreak Label = "Log break"
)

// ErrDayExists is returned by Import when a day is already present.
var ErrDayExists = errors.New("day already present in work log")

// Store is the in-memory work log with write-through persistence. It is not
// safe for concurrent use; callers serialise access.
type Store struct {
	path   string
	days   model.WorkLog
	dirty  bool
	logger zerolog.Logger
}

// Open loads the work log at path. A missing file yields an empty store. A
// corrupt file is reported as a *storage.CorruptError and no store is
// returned. Invariant violations are returned for reporting; they are never
// repaired.
func Open(path string, logger zerolog.Logger) (*Store, []Violation, error) {
	days := model.WorkLog{}
	if _, err := storage.ReadJSON(path, &days); err != nil {
		return nil, nil, err
	}
	if days == nil {
		days = model.WorkLog{}
	}
	s := &Store{
		path:   path,
		days:   days,
		logger: logger.With().Str("component", "session-store").Logger(),
	}
	violations := Validate(days)
	for _, v := range violations {
		s.logger.Error().Str("date", v.Date).Str("violation", v.Reason).Msg("Work log invariant violated")
	}
	return s, violations, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Toggle flips the state of date at time now and returns the label the next
// toggle should present.
//
// With no intervals for date a new open interval is started. A closed last
// interval means the user is on break, so a new open interval is appended.
// An open last interval is closed, except when firstRun is set: a restarted
// tracker resumes the running interval without touching it.
func (s *Store) Toggle(date string, now model.TimeOfDay, firstRun bool) (Label, error) {
	day := s.days[date]
	last := day.Last()

	switch {
	case last == nil || !last.Open():
		now = s.notBefore(date, day, now)
		s.days[date] = append(day, model.Interval{Start: now})
		s.dirty = true
		s.logger.Info().Str("date", date).Stringer("start", now).Msg("Work logged")
	case firstRun:
		s.logger.Info().Str("date", date).Stringer("start", last.Start).Msg("Resuming open interval")
	default:
		now = s.notBefore(date, day, now)
		last.Close(now)
		s.dirty = true
		s.logger.Info().Str("date", date).Stringer("end", now).Msg("Break logged")
	}

	return s.Label(date), s.Flush()
}

// CloseOpenInterval ends the open interval of date at now. It reports whether
// an interval was closed; with nothing open it is a no-op.
func (s *Store) CloseOpenInterval(date string, now model.TimeOfDay) (bool, error) {
	day := s.days[date]
	if !day.HasOpen() {
		return false, s.Flush()
	}
	now = s.notBefore(date, day, now)
	day.Last().Close(now)
	s.dirty = true
	s.logger.Info().Str("date", date).Stringer("end", now).Msg("Open interval closed")
	return true, s.Flush()
}

// Intervals returns a copy of the intervals recorded on date. ok is false when
// the day has never been logged.
func (s *Store) Intervals(date string) (model.DayLog, bool) {
	day, ok := s.days[date]
	if !ok {
		return nil, false
	}
	out := make(model.DayLog, len(day))
	for i, iv := range day {
		out[i] = model.Interval{Start: iv.Start}
		if iv.End != nil {
			end := *iv.End
			out[i].End = &end
		}
	}
	return out, true
}

// Label returns the label for the next toggle on date.
func (s *Store) Label(date string) Label {
	if s.days[date].HasOpen() {
		return LogBreak
	}
	return LogWork
}

// Dates returns all logged date keys in ascending order.
func (s *Store) Dates() []string {
	dates := make([]string, 0, len(s.days))
	for d := range s.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// StaleOpenDays lists days before today that still end in an open interval,
// typically left behind by a tracker that was killed before midnight.
func (s *Store) StaleOpenDays(today string) []string {
	var stale []string
	for _, d := range s.Dates() {
		if d < today && s.days[d].HasOpen() {
			stale = append(stale, d)
		}
	}
	return stale
}

// Import adds days from a legacy log. Days already present are refused as a
// whole so existing records are never merged or overwritten.
func (s *Store) Import(days model.WorkLog) (int, error) {
	for d := range days {
		if _, ok := s.days[d]; ok {
			return 0, fmt.Errorf("%w: %s", ErrDayExists, d)
		}
	}
	if vs := Validate(days); len(vs) > 0 {
		return 0, fmt.Errorf("imported log is invalid: %s", vs[0])
	}
	for d, day := range days {
		s.days[d] = day
	}
	if len(days) > 0 {
		s.dirty = true
	}
	return len(days), s.Flush()
}

// Dirty reports whether in-memory changes have not been persisted yet.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Flush writes the store if it holds unsaved changes. After a failed write the
// store stays dirty, so every later call retries.
func (s *Store) Flush() error {
	if !s.dirty {
		return nil
	}
	if err := storage.WriteJSON(s.path, s.days); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Failed to persist work log")
		return err
	}
	s.dirty = false
	return nil
}

// notBefore clamps now so a new boundary never precedes the latest recorded
// time of the day, which keeps intervals ordered if the clock steps back.
func (s *Store) notBefore(date string, day model.DayLog, now model.TimeOfDay) model.TimeOfDay {
	last := day.Last()
	if last == nil {
		return now
	}
	floor := last.Start
	if last.End != nil {
		floor = *last.End
	}
	if now < floor {
		s.logger.Warn().Str("date", date).Stringer("now", now).Stringer("latest", floor).
			Msg("Clock is behind the work log; using latest recorded time")
		return floor
	}
	return now
}
