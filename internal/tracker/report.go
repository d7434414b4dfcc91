package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tiliavir/work-time-logger/internal/accounting"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

// Summary is the working-time status of one day.
type Summary struct {
	Date    string
	Started bool
	accounting.Status
}

// Status returns the live summary of date. A day without intervals yields
// Started == false rather than an error.
func (t *Tracker) Status(date string) (Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.accountant.Status(date, t.clock.Now())
	if errors.Is(err, accounting.ErrNotStarted) {
		return Summary{Date: date}, nil
	}
	if err != nil {
		return Summary{}, err
	}
	return Summary{Date: date, Started: true, Status: st}, nil
}

// Text renders the summary as shown by "wtl status".
func (s Summary) Text() string {
	if !s.Started {
		return fmt.Sprintf("No work logged on %s.\n", s.Date)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Summary working time:\n\nWorking time: %s\n", timecalc.FormatClock(s.Working))
	if s.IsOvertime {
		fmt.Fprintf(&b, "Overtimes: %s\n", timecalc.FormatClock(s.Remaining))
		return b.String()
	}
	fmt.Fprintf(&b, "Time left: %s\n", timecalc.FormatClock(s.Remaining))
	if !s.ProjectedEnd.IsZero() {
		fmt.Fprintf(&b, "Estimated end work: %s\n", s.ProjectedEnd.Format("15:04:05"))
	}
	return b.String()
}

// Tooltip is the one-line form of the summary.
func (s Summary) Tooltip() string {
	switch {
	case !s.Started:
		return ""
	case s.IsOvertime:
		return "Overtimes: " + timecalc.FormatClock(s.Remaining)
	default:
		return "Time left: " + timecalc.FormatClock(s.Remaining)
	}
}

// Logs renders the intervals of date.
func (t *Tracker) Logs(date string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	day, ok := t.store.Intervals(date)
	if !ok || len(day) == 0 {
		return fmt.Sprintf("No logs on %s.\n", date)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Logs of %s:\n\n", date)
	for _, iv := range day {
		end := "running"
		if iv.End != nil {
			end = iv.End.String()
		}
		fmt.Fprintf(&b, "  %s -> %s\n", iv.Start, end)
	}
	return b.String()
}

// Overtimes renders the overtime entries of monthKey in date order.
func (t *Tracker) Overtimes(monthKey string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.ledger.InMonth(monthKey)
	if len(entries) == 0 {
		if monthKey == timecalc.MonthKey(t.clock.Now()) {
			return "No overtimes in current month.\n"
		}
		return fmt.Sprintf("No overtimes in %s.\n", monthKey)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Overtimes in: '%s'\n\n", monthKey)
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %s\n", e.Date, timecalc.FormatClock(e.Amount))
	}
	return b.String()
}

// Month returns the total working time logged in monthKey.
func (t *Tracker) Month(monthKey string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	total, err := t.accountant.MonthlyWorkingTime(monthKey, t.clock.Now())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Working time in %s: %s\n", monthKey, timecalc.FormatClock(total)), nil
}

// Activity renders the activity report of date.
func (t *Tracker) Activity(date string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activity.Render(date)
}
