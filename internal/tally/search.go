package tally

import "strings"

// NotFound is returned by Find when no entry matches.
const NotFound = -1

// Find locates target in entries by binary search, ignoring case, and
// returns its index or NotFound.
//
// Entries must already be ordered by Sort. The ordering is not checked and
// an unsorted table gives arbitrary results. Tallies are case-sensitive, so
// when a table holds several casings of the same record ("Banana", "banana")
// any one of them may be returned.
func Find(entries []Entry, target string) int {
	target = strings.ToLower(target)
	low, high := 0, len(entries)-1

	for low <= high {
		mid := (low + high) / 2
		key := strings.ToLower(entries[mid].Key)

		switch {
		case key == target:
			return mid
		case key < target:
			low = mid + 1
		default:
			high = mid - 1
		}
	}

	return NotFound
}

// Lookup is Find returning the matched entry.
func Lookup(entries []Entry, target string) (Entry, bool) {
	i := Find(entries, target)
	if i == NotFound {
		return Entry{}, false
	}
	return entries[i], true
}
