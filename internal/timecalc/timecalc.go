package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateKeyLayout is the layout of a store date key, e.g. "2026/10/17".
	DateKeyLayout = "2006/01/02"
	// MonthKeyLayout is the layout of a year-month key, e.g. "2026/10".
	MonthKeyLayout = "2006/01"
)

// DateKey returns the store key for the calendar day containing t.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// MonthKey returns the year-month key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ParseDateKey parses a "YYYY/MM/DD" key in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY/MM/DD): %w", key, err)
	}
	return t, nil
}

// ParseMonthKey validates a "YYYY/MM" key and returns it normalised.
func ParseMonthKey(key string) (string, error) {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return "", fmt.Errorf("invalid month %q (want YYYY/MM): %w", key, err)
	}
	return MonthKey(t), nil
}

// InMonth reports whether dateKey lies in monthKey. Keys are fixed width, so
// the separator suffix keeps "2026/1" from matching "2026/10/01".
func InMonth(dateKey, monthKey string) bool {
	return strings.HasPrefix(dateKey, monthKey+"/")
}

// FormatClock renders d as H:MM:SS, prefixed with "-" when negative.
func FormatClock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%s%d:%02d:%02d", sign, s/3600, (s%3600)/60, s%60)
}

// ParseClock parses the H:MM:SS form written by FormatClock.
func ParseClock(s string) (time.Duration, error) {
	body, neg := strings.CutPrefix(s, "-")
	parts := strings.Split(body, ":")
	if len(parts) != 3 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, fmt.Errorf("invalid duration %q (want H:MM:SS)", s)
	}
	var fields [3]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q (want H:MM:SS): %w", s, err)
		}
		fields[i] = v
	}
	h, m, sec := fields[0], fields[1], fields[2]
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("invalid duration %q (want H:MM:SS)", s)
	}
	d := time.Duration(h*3600+m*60+sec) * time.Second
	if neg {
		d = -d
	}
	return d, nil
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
