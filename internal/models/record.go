package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"textrecords/internal/tally"
)

// Record is a persisted tally entry. Counts accumulate across saves and
// records merge case-insensitively through ItemKey.
type Record struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Item      string    `json:"item"`
	ItemKey   string    `json:"-"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemKey returns the merge key for an item.
func ItemKey(item string) string {
	return strings.ToLower(item)
}

// Entry converts the record to a tally entry.
func (r Record) Entry() tally.Entry {
	return tally.Entry{Key: r.Item, Count: r.Count}
}

// Entries converts records to tally entries, preserving order.
func Entries(records []Record) []tally.Entry {
	entries := make([]tally.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.Entry())
	}
	return entries
}
