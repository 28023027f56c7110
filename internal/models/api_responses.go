package models

import (
	"github.com/google/uuid"

	"textrecords/internal/tally"
)

// TallyResponse contains an ordered frequency table.
type TallyResponse struct {
	Entries []tally.Entry `json:"entries"`
	Unique  int           `json:"unique"`
	Total   int           `json:"total"`
}

// NewTallyResponse summarises ordered entries.
func NewTallyResponse(entries []tally.Entry) TallyResponse {
	if entries == nil {
		entries = []tally.Entry{}
	}
	return TallyResponse{
		Entries: entries,
		Unique:  len(entries),
		Total:   tally.Total(entries),
	}
}

// FindResponse contains the result of a record lookup.
// Index is -1 and Entry is nil when nothing matched.
type FindResponse struct {
	Query string       `json:"query"`
	Found bool         `json:"found"`
	Index int          `json:"index"`
	Entry *tally.Entry `json:"entry,omitempty"`
}

// NewFindResponse runs the lookup on ordered entries.
func NewFindResponse(entries []tally.Entry, query string) FindResponse {
	resp := FindResponse{Query: query, Index: tally.Find(entries, query)}
	if resp.Index != tally.NotFound {
		e := entries[resp.Index]
		resp.Found = true
		resp.Entry = &e
	}
	return resp
}

// SaveResponse reports the outcome of persisting a tally.
// Saved is false when the batch had already been stored.
type SaveResponse struct {
	BatchID uuid.UUID `json:"batch_id"`
	Saved   bool      `json:"saved"`
	Records int       `json:"records"`
}
