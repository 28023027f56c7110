package models

import "time"

// Lookup outcome constants
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
)

// LookupStat is the running count of record lookups by outcome.
type LookupStat struct {
	Outcome    string
	Count      int64
	LastSeenAt time.Time
}
