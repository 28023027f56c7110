package tally

// Sort returns the entries ordered ascending by key using a stable merge
// sort. The input slice is never modified.
func Sort(entries []Entry) []Entry {
	if len(entries) <= 1 {
		return entries
	}

	mid := len(entries) / 2
	left := Sort(entries[:mid])
	right := Sort(entries[mid:])

	return merge(left, right)
}

// merge combines two ordered runs. Equal keys keep the left run first.
func merge(left, right []Entry) []Entry {
	result := make([]Entry, 0, len(left)+len(right))
	l, r := 0, 0

	for l < len(left) && r < len(right) {
		if right[r].Key < left[l].Key {
			result = append(result, right[r])
			r++
		} else {
			result = append(result, left[l])
			l++
		}
	}

	result = append(result, left[l:]...)
	return append(result, right[r:]...)
}

// IsSorted reports whether entries are in non-decreasing key order.
func IsSorted(entries []Entry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].Key < entries[i-1].Key {
			return false
		}
	}
	return true
}
