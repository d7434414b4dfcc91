package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiliavir/work-time-logger/internal/model"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

// ParseLegacy reads the older line-oriented log format:
//
//	2026/10/17 09:00:00 -> 12:00:00
//	2026/10/17 13:00:00 ->
//
// An empty right-hand side is an open interval. Blank lines and lines
// starting with # are ignored. Lines for one date must be in order.
func ParseLegacy(r io.Reader) (model.WorkLog, error) {
	out := model.WorkLog{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		left, right, ok := strings.Cut(line, "->")
		if !ok {
			return nil, fmt.Errorf("line %d: missing \"->\"", lineNo)
		}
		fields := strings.Fields(left)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"YYYY/MM/DD HH:MM:SS -> [HH:MM:SS]\"", lineNo)
		}
		if _, err := timecalc.ParseDateKey(fields[0], time.UTC); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		start, err := model.ParseTimeOfDay(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		iv := model.Interval{Start: start}
		if end := strings.TrimSpace(right); end != "" {
			e, err := model.ParseTimeOfDay(end)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			iv.End = &e
		}
		out[fields[0]] = append(out[fields[0]], iv)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading legacy log: %w", err)
	}
	return out, nil
}
