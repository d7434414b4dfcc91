// Package overtime keeps the per-day record of overtime amounts.
package overtime

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/work-time-logger/internal/model"
	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

// Entry is one day's recorded overtime.
type Entry struct {
	Date   string
	Amount time.Duration
}

// Ledger maps date keys to the last overtime observed that day. It is not safe
// for concurrent use; callers serialise access.
type Ledger struct {
	path    string
	entries map[string]time.Duration
	dirty   bool
	logger  zerolog.Logger
}

// Open loads the ledger at path. Unparseable JSON or amounts are reported as a
// *storage.CorruptError.
func Open(path string, logger zerolog.Logger) (*Ledger, error) {
	raw := model.OvertimeLog{}
	if _, err := storage.ReadJSON(path, &raw); err != nil {
		return nil, err
	}
	entries := make(map[string]time.Duration, len(raw))
	for date, s := range raw {
		d, err := timecalc.ParseClock(s)
		if err != nil {
			return nil, &storage.CorruptError{Path: path, Err: fmt.Errorf("%s: %w", date, err)}
		}
		entries[date] = d
	}
	return &Ledger{
		path:    path,
		entries: entries,
		logger:  logger.With().Str("component", "overtime-ledger").Logger(),
	}, nil
}

// Path returns the backing file.
func (l *Ledger) Path() string {
	return l.path
}

// Record overwrites the overtime for date and persists immediately. The last
// observed amount wins; amounts are never accumulated.
func (l *Ledger) Record(date string, amount time.Duration) error {
	amount = amount.Truncate(time.Second)
	if prev, ok := l.entries[date]; !ok || prev != amount {
		l.entries[date] = amount
		l.dirty = true
		l.logger.Info().Str("date", date).Str("overtime", timecalc.FormatClock(amount)).Msg("Overtime recorded")
	}
	return l.Flush()
}

// Get returns the overtime recorded for date.
func (l *Ledger) Get(date string) (time.Duration, bool) {
	d, ok := l.entries[date]
	return d, ok
}

// InMonth returns the entries of monthKey ("YYYY/MM") in ascending date order.
func (l *Ledger) InMonth(monthKey string) []Entry {
	var out []Entry
	for date, d := range l.entries {
		if timecalc.InMonth(date, monthKey) {
			out = append(out, Entry{Date: date, Amount: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Dirty reports whether in-memory changes have not been persisted yet.
func (l *Ledger) Dirty() bool {
	return l.dirty
}

// Flush writes the ledger if it holds unsaved changes; a failed write leaves it
// dirty so the next call retries.
func (l *Ledger) Flush() error {
	if !l.dirty {
		return nil
	}
	raw := make(model.OvertimeLog, len(l.entries))
	for date, d := range l.entries {
		raw[date] = timecalc.FormatClock(d)
	}
	if err := storage.WriteJSON(l.path, raw); err != nil {
		l.logger.Error().Err(err).Str("path", l.path).Msg("Failed to persist overtime ledger")
		return err
	}
	l.dirty = false
	return nil
}
