package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time within a single calendar day, stored as
// seconds since midnight. On disk it is written as "HH:MM:SS".
type TimeOfDay int

// TimeOfDayLayout is the on-disk layout of a TimeOfDay.
const TimeOfDayLayout = "15:04:05"

// TimeOfDayFrom truncates t to its time of day in t's location.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// ParseTimeOfDay parses "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDayFrom(t), nil
}

// MustTimeOfDay is ParseTimeOfDay for literals; it panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// Sub returns t - u.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return time.Duration(int(t)-int(u)) * time.Second
}

// On returns the instant at time of day t on the calendar day of date.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	s := int(t)
	return time.Date(y, m, d, s/3600, (s%3600)/60, s%60, 0, date.Location())
}

// Interval is one continuous work period within a day. A nil End means the
// interval is still open.
type Interval struct {
	Start TimeOfDay
	End   *TimeOfDay
}

// Open reports whether the interval has no recorded end.
func (iv Interval) Open() bool {
	return iv.End == nil
}

// Close sets the end of the interval.
func (iv *Interval) Close(end TimeOfDay) {
	iv.End = &end
}

// Elapsed returns end - start, substituting now for a missing end.
func (iv Interval) Elapsed(now TimeOfDay) time.Duration {
	if iv.End == nil {
		return now.Sub(iv.Start)
	}
	return iv.End.Sub(iv.Start)
}

type intervalJSON struct {
	Start string `json:"START"`
	End   string `json:"END"`
}

// MarshalJSON writes {"START": "HH:MM:SS", "END": "HH:MM:SS" | ""}.
func (iv Interval) MarshalJSON() ([]byte, error) {
	out := intervalJSON{Start: iv.Start.String()}
	if iv.End != nil {
		out.End = iv.End.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the on-disk form; an empty END is an open interval.
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var in intervalJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	start, err := ParseTimeOfDay(in.Start)
	if err != nil {
		return fmt.Errorf("START: %w", err)
	}
	iv.Start = start
	iv.End = nil
	if in.End != "" {
		end, err := ParseTimeOfDay(in.End)
		if err != nil {
			return fmt.Errorf("END: %w", err)
		}
		iv.End = &end
	}
	return nil
}

// DayLog is the chronological sequence of intervals recorded on one day.
type DayLog []Interval

// Last returns a pointer to the final interval, or nil for an empty day.
func (d DayLog) Last() *Interval {
	if len(d) == 0 {
		return nil
	}
	return &d[len(d)-1]
}

// HasOpen reports whether the final interval is open.
func (d DayLog) HasOpen() bool {
	last := d.Last()
	return last != nil && last.Open()
}

// WorkLog is the persisted work log: date key ("YYYY/MM/DD") to DayLog.
type WorkLog map[string]DayLog
