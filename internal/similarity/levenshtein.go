// Package similarity computes normalized string similarity for fuzzy matching
// of human-entered business data (names, addresses, phone digits).
package similarity

import "github.com/adrg/strutil/metrics"

func newLevenshtein() *metrics.Levenshtein {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = true
	lev.InsertCost = 1
	lev.ReplaceCost = 1
	lev.DeleteCost = 1
	return lev
}

// lev is read-only after init and safe for concurrent Distance calls.
var lev = newLevenshtein()

// Score returns the similarity between a and b in [0,1], defined as
// (maxLen - levenshtein(a,b)) / maxLen. Two empty strings score 1.0 by
// convention. Pure and deterministic; inputs are expected to be
// pre-normalized by the caller (lowercased, digits-only, etc.).
func Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	d := lev.Distance(a, b)
	return float64(maxLen-d) / float64(maxLen)
}
