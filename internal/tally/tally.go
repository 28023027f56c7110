// Package tally turns pasted text records into an ordered frequency table
// and answers exact lookups against it.
package tally

import "strings"

// Entry is a distinct record and the number of times it occurred.
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Build counts each trimmed, non-empty line of text. Keys are compared
// exactly (case-sensitive). Entries come back in first-seen order.
func Build(text string) []Entry {
	var entries []Entry
	index := make(map[string]int)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if i, ok := index[line]; ok {
			entries[i].Count++
			continue
		}

		index[line] = len(entries)
		entries = append(entries, Entry{Key: line, Count: 1})
	}

	return entries
}

// Total returns the sum of all counts.
func Total(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Count
	}
	return total
}

// MaxCount returns the largest count, or 0 for an empty table.
func MaxCount(entries []Entry) int {
	max := 0
	for _, e := range entries {
		if e.Count > max {
			max = e.Count
		}
	}
	return max
}
