package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/Tiliavir/work-time-logger/internal/model"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

// Violation describes a day whose intervals break the work log invariants.
type Violation struct {
	Date   string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Date, v.Reason)
}

// Validate checks every day for a malformed key, open intervals before the
// last position, intervals ending before they start, and overlaps.
func Validate(log model.WorkLog) []Violation {
	dates := make([]string, 0, len(log))
	for d := range log {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var out []Violation
	for _, date := range dates {
		if _, err := timecalc.ParseDateKey(date, time.UTC); err != nil {
			out = append(out, Violation{Date: date, Reason: "date key is not YYYY/MM/DD"})
		}
		day := log[date]
		for i, iv := range day {
			if iv.Open() && i != len(day)-1 {
				out = append(out, Violation{Date: date, Reason: fmt.Sprintf("interval %d is open but not last", i+1)})
			}
			if iv.End != nil && *iv.End < iv.Start {
				out = append(out, Violation{Date: date, Reason: fmt.Sprintf("interval %d ends at %s before its start %s", i+1, iv.End, iv.Start)})
			}
			if i > 0 {
				prev := day[i-1]
				prevEnd := prev.Start
				if prev.End != nil {
					prevEnd = *prev.End
				}
				if iv.Start < prevEnd {
					out = append(out, Violation{Date: date, Reason: fmt.Sprintf("interval %d starts at %s before the previous one ends", i+1, iv.Start)})
				}
			}
		}
	}
	return out
}
