package arxiv

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the a an and or but in on at to for of with by from up about into through " +
			"during is are was were be been being have has had do does did will would could " +
			"should may might can this that these those i you he she it we they what which " +
			"who when where why how all each every both few more most other some such as also " +
			"very too only so than not") {
		stopwords[w] = struct{}{}
	}
}

var (
	abstractWordPattern = regexp.MustCompile(`[A-Za-z0-9]+`)
	sentenceDelimiter   = regexp.MustCompile(`[.!?]`)
	hyphenatedPattern   = regexp.MustCompile(`\b\w+(?:-\w+)+\b`)
)

// AbstractStats summarizes one abstract's text.
type AbstractStats struct {
	TotalWords          int     `json:"total_words"`
	UniqueWords         int     `json:"unique_words"`
	TotalSentences      int     `json:"total_sentences"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	AvgWordLength       float64 `json:"avg_word_length"`
}

// abstractAnalysis carries the per-abstract detail the corpus aggregation
// consumes beyond the published stats.
type abstractAnalysis struct {
	Stats           AbstractStats
	TopWords        []wordCount
	UppercaseTerms  []string
	NumericTerms    []string
	HyphenatedTerms []string
}

type wordCount struct {
	Word  string
	Count int
}

const perAbstractTopWords = 20

// analyzeAbstract computes an abstract's statistics. Word counting is
// case-insensitive; technical-term extraction keeps original casing.
func analyzeAbstract(text string) abstractAnalysis {
	wordsOrig := abstractWordPattern.FindAllString(text, -1)
	wordsLower := make([]string, len(wordsOrig))
	unique := make(map[string]struct{}, len(wordsOrig))
	var lengthSum int
	for i, w := range wordsOrig {
		lower := strings.ToLower(w)
		wordsLower[i] = lower
		unique[lower] = struct{}{}
		lengthSum += len(lower)
	}

	stats := AbstractStats{
		TotalWords:  len(wordsLower),
		UniqueWords: len(unique),
	}
	if stats.TotalWords > 0 {
		stats.AvgWordLength = float64(lengthSum) / float64(stats.TotalWords)
	}

	var sentenceWords int
	for _, fragment := range sentenceDelimiter.Split(text, -1) {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		stats.TotalSentences++
		sentenceWords += len(abstractWordPattern.FindAllString(fragment, -1))
	}
	if stats.TotalSentences > 0 {
		stats.AvgWordsPerSentence = float64(sentenceWords) / float64(stats.TotalSentences)
	}

	freq := make(map[string]int)
	for _, w := range wordsLower {
		if _, skip := stopwords[w]; skip {
			continue
		}
		freq[w]++
	}

	return abstractAnalysis{
		Stats:           stats,
		TopWords:        rankWordCounts(freq, perAbstractTopWords),
		UppercaseTerms:  filterTerms(wordsOrig, hasUpper),
		NumericTerms:    filterTerms(wordsOrig, hasDigit),
		HyphenatedTerms: sortedSet(hyphenatedPattern.FindAllString(text, -1)),
	}
}

// rankWordCounts orders a frequency map by descending count, then ascending
// word, truncated to limit.
func rankWordCounts(freq map[string]int, limit int) []wordCount {
	ranked := make([]wordCount, 0, len(freq))
	for w, c := range freq {
		ranked = append(ranked, wordCount{Word: w, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func filterTerms(words []string, keep func(string) bool) []string {
	set := make(map[string]struct{})
	for _, w := range words {
		if keep(w) {
			set[w] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func sortedSet(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func hasUpper(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
