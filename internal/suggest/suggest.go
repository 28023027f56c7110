// Package suggest offers prefix completions over a tally.
package suggest

import (
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"

	"textrecords/internal/tally"
)

// Index maps lower-cased record keys to every casing variant seen in a tally.
type Index struct {
	trie *patricia.Trie
}

// New builds an index over the given entries.
func New(entries []tally.Entry) *Index {
	trie := patricia.NewTrie()
	for _, e := range entries {
		p := patricia.Prefix(strings.ToLower(e.Key))
		if existing := trie.Get(p); existing != nil {
			trie.Set(p, append(existing.([]tally.Entry), e))
			continue
		}
		trie.Insert(p, []tally.Entry{e})
	}
	return &Index{trie: trie}
}

// Complete returns up to limit entries whose key starts with prefix,
// ignoring case. Higher counts come first, then keys in ascending order.
func (idx *Index) Complete(prefix string, limit int) []tally.Entry {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if idx == nil || prefix == "" || limit <= 0 {
		return nil
	}

	var matches []tally.Entry
	err := idx.trie.VisitSubtree(patricia.Prefix(prefix), func(_ patricia.Prefix, item patricia.Item) error {
		matches = append(matches, item.([]tally.Entry)...)
		return nil
	})
	if err != nil {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Count != matches[j].Count {
			return matches[i].Count > matches[j].Count
		}
		return matches[i].Key < matches[j].Key
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
