package model

// OvertimeLog is the persisted overtime ledger: date key to rendered duration.
type OvertimeLog map[string]string

// SummaryKey is the reserved process name holding a day's derived totals.
const SummaryKey = "Summary"

// ActivityCounts holds active and inactive seconds observed for one process.
type ActivityCounts struct {
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// Total returns active + inactive seconds.
func (c ActivityCounts) Total() int64 {
	return c.Active + c.Inactive
}

// ActivityDay maps process name to its counts, plus the SummaryKey entry.
type ActivityDay map[string]ActivityCounts

// ActivityLog is the persisted activity log: date key to ActivityDay.
type ActivityLog map[string]ActivityDay
