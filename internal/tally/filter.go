package tally

import "strings"

// Filter returns the entries whose key contains term, ignoring case.
// An empty term returns entries unchanged.
func Filter(entries []Entry, term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}

	var matched []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Key), term) {
			matched = append(matched, e)
		}
	}
	return matched
}
