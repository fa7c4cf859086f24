package convert

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// eventSource wraps candidate event names for fuzzy searching
type eventSource []string

// String returns the searchable string for a candidate
func (e eventSource) String(i int) string {
	return strings.ToLower(e[i])
}

// Len returns the number of candidates
func (e eventSource) Len() int {
	return len(e)
}

// ClosestEvent returns the candidate that best matches an unknown event name.
// Matches in either direction count, so both abbreviations and
// misspellings with extra characters find a suggestion.
func ClosestEvent(event string, candidates []string) (string, bool) {
	if event == "" || len(candidates) == 0 {
		return "", false
	}
	query := strings.ToLower(event)

	type scored struct {
		name  string
		score int
	}
	var results []scored

	for _, m := range fuzzy.FindFrom(query, eventSource(candidates)) {
		results = append(results, scored{candidates[m.Index], m.Score})
	}
	for _, c := range candidates {
		for _, m := range fuzzy.Find(strings.ToLower(c), []string{query}) {
			results = append(results, scored{c, m.Score})
		}
	}
	if len(results) == 0 {
		return "", false
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	return results[0].name, true
}
