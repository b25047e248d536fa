// Package analyze computes corpus-wide metrics over the processed document
// set: word frequencies, pairwise Jaccard similarity, n-gram tables, and a
// heuristic readability proxy.
package analyze

import (
	"sort"
	"strings"
)

// Document is one analysis input: a record name and its case-folded tokens.
type Document struct {
	Name   string
	Tokens []string
}

// Jaccard returns the Jaccard index of two token multisets' underlying sets:
// |intersection| / |union|, 0.0 when both sets are empty.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	union := len(setB)
	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Ngrams returns the contiguous token runs of length n within one document.
// Runs never span document boundaries.
func Ngrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}

// rankedCount is one entry of a deterministically ordered count table.
type rankedCount struct {
	Key   string
	Count int
}

// rankCounts orders a count table by descending count then ascending key and
// truncates it to limit entries. The explicit total order replaces any
// incidental map iteration order.
func rankCounts(counts map[string]int, limit int) []rankedCount {
	ranked := make([]rankedCount, 0, len(counts))
	for key, count := range counts {
		ranked = append(ranked, rankedCount{Key: key, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
