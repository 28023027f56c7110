package tally

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFilter(t *testing.T) {
	entries := []Entry{{"Apple pie", 1}, {"apples", 3}, {"banana", 2}, {"Pineapple", 1}}

	tests := []struct {
		name string
		term string
		want []Entry
	}{
		{"empty term keeps all", "", entries},
		{"blank term keeps all", "   ", entries},
		{"substring ignores case", "APPLE", []Entry{{"Apple pie", 1}, {"apples", 3}, {"Pineapple", 1}}},
		{"no match", "cherry", nil},
		{"trimmed term", " nan ", []Entry{{"banana", 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(entries, tt.term)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Filter(%q) mismatch (-want +got):\n%s", tt.term, diff)
			}
		})
	}
}
