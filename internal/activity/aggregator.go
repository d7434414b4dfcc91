// Package activity accumulates active and inactive seconds per foreground
// process per day from a fixed-cadence tick.
package activity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/work-time-logger/internal/model"
	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

// DefaultFlushEvery is the number of ticks between flushes to disk.
const DefaultFlushEvery = 60

// Sample describes the outcome of one tick.
type Sample struct {
	Date    string
	Process string
	Active  bool
	// Sampled is false when the foreground process could not be resolved.
	Sampled bool
	// Flushed is set when this tick wrote the log to disk.
	Flushed bool
}

// Aggregator owns the in-memory activity log. It is not safe for concurrent
// use; callers serialise Tick, Flush and reads.
type Aggregator struct {
	path       string
	days       model.ActivityLog
	hook       Hook
	foreground ForegroundApp
	flushEvery int
	ticks      int
	dirty      bool
	logger     zerolog.Logger
}

// Open loads the activity log at path. Summaries found on disk are recomputed
// rather than trusted. A corrupt file is reported as a *storage.CorruptError.
func Open(path string, hook Hook, foreground ForegroundApp, flushEvery int, logger zerolog.Logger) (*Aggregator, error) {
	days := model.ActivityLog{}
	if _, err := storage.ReadJSON(path, &days); err != nil {
		return nil, err
	}
	if days == nil {
		days = model.ActivityLog{}
	}
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	for _, day := range days {
		if day != nil {
			recomputeSummary(day)
		}
	}
	return &Aggregator{
		path:       path,
		days:       days,
		hook:       hook,
		foreground: foreground,
		flushEvery: flushEvery,
		logger:     logger.With().Str("component", "activity").Logger(),
	}, nil
}

// Path returns the backing file.
func (a *Aggregator) Path() string {
	return a.path
}

// Tick takes one sample: it reads and clears the input flag, resolves the
// foreground process and adds one second to its active or inactive count.
// Every flushEvery ticks the log is written out; only that write can fail.
func (a *Aggregator) Tick(now time.Time) (Sample, error) {
	s := Sample{Date: timecalc.DateKey(now), Active: a.hook.PollAndReset()}

	name, err := a.foreground.Current()
	switch {
	case err != nil:
		a.logger.Debug().Err(err).Msg("No foreground sample")
	case name == "" || name == model.SummaryKey:
		a.logger.Debug().Str("process", name).Msg("Ignoring reserved process name")
	default:
		s.Process = name
		s.Sampled = true
		a.record(s.Date, name, s.Active)
	}

	a.ticks++
	if a.ticks%a.flushEvery != 0 {
		return s, nil
	}
	if err := a.Flush(); err != nil {
		return s, err
	}
	s.Flushed = true
	return s, nil
}

func (a *Aggregator) record(date, process string, active bool) {
	day := a.days[date]
	if day == nil {
		day = model.ActivityDay{}
		a.days[date] = day
	}
	c := day[process]
	if active {
		c.Active++
	} else {
		c.Inactive++
	}
	day[process] = c
	recomputeSummary(day)
	a.dirty = true
}

// recomputeSummary rebuilds the SummaryKey entry from the process entries.
func recomputeSummary(day model.ActivityDay) {
	var sum model.ActivityCounts
	for name, c := range day {
		if name == model.SummaryKey {
			continue
		}
		sum.Active += c.Active
		sum.Inactive += c.Inactive
	}
	day[model.SummaryKey] = sum
}

// Flush writes the activity log if it changed since the last write.
func (a *Aggregator) Flush() error {
	if !a.dirty {
		return nil
	}
	if err := storage.WriteJSON(a.path, a.days); err != nil {
		a.logger.Error().Err(err).Str("path", a.path).Msg("Failed to persist activity log")
		return err
	}
	a.dirty = false
	return nil
}

// Day returns a copy of the counts recorded on date, including Summary.
func (a *Aggregator) Day(date string) model.ActivityDay {
	day := a.days[date]
	if day == nil {
		return nil
	}
	out := make(model.ActivityDay, len(day))
	for k, v := range day {
		out[k] = v
	}
	return out
}

// Row is one line of an activity report.
type Row struct {
	Process string
	model.ActivityCounts
}

// Report returns the rows of day: processes by descending active seconds,
// ties by name, then a Summary row recomputed from them.
func Report(day model.ActivityDay) []Row {
	rows := make([]Row, 0, len(day))
	for name, c := range day {
		if name == model.SummaryKey {
			continue
		}
		rows = append(rows, Row{Process: name, ActivityCounts: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Active != rows[j].Active {
			return rows[i].Active > rows[j].Active
		}
		return rows[i].Process < rows[j].Process
	})
	if len(rows) == 0 {
		return rows
	}
	var sum model.ActivityCounts
	for _, r := range rows {
		sum.Active += r.Active
		sum.Inactive += r.Inactive
	}
	return append(rows, Row{Process: model.SummaryKey, ActivityCounts: sum})
}

// Render formats the report of date as plain text.
func (a *Aggregator) Render(date string) string {
	return RenderDay(date, a.Day(date))
}

// RenderDay formats the report of one day as plain text.
func RenderDay(date string, day model.ActivityDay) string {
	rows := Report(day)
	if len(rows) == 0 {
		return fmt.Sprintf("No activity recorded on %s.\n", date)
	}
	width := len("Process")
	for _, r := range rows {
		if len(r.Process) > width {
			width = len(r.Process)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Activity on %s:\n\n", date)
	fmt.Fprintf(&b, "%-*s  %8s  %8s\n", width, "Process", "Active", "Inactive")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-*s  %8s  %8s\n", width, r.Process,
			timecalc.FormatDurationHHMMSS(r.Active), timecalc.FormatDurationHHMMSS(r.Inactive))
	}
	return b.String()
}
