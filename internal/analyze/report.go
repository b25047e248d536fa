package analyze

import (
	"time"
	"unicode/utf8"

	"github.com/parkerlow/corpusmill/internal/corpus"
)

// Limits bounds the ranked tables in the report.
type Limits struct {
	TopWords  int
	TopNgrams int
}

// wordsPerSentenceEstimate backs the readability proxy's sentence estimate.
const wordsPerSentenceEstimate = 20

// BuildReport computes the full corpus report over documents, which must
// already be in the fixed (lexicographic by name) order. Pairwise similarity
// is quadratic in document count; this is the exact correctness baseline and
// is acceptable only for bounded corpora.
func BuildReport(docs []Document, limits Limits, processedAt time.Time) corpus.CorpusReport {
	totalWords := 0
	frequency := make(map[string]int)
	weightedLength := 0
	for _, doc := range docs {
		totalWords += len(doc.Tokens)
		for _, tok := range doc.Tokens {
			frequency[tok]++
			weightedLength += utf8.RuneCountInString(tok)
		}
	}

	report := corpus.CorpusReport{
		ProcessingTimestamp: processedAt,
		DocumentsProcessed:  len(docs),
		TotalWords:          totalWords,
		UniqueWords:         len(frequency),
		Top100Words:         topWords(frequency, totalWords, limits.TopWords),
		DocumentSimilarity:  similarities(docs),
		TopBigrams:          topBigrams(docs, limits.TopNgrams),
		TopTrigrams:         topTrigrams(docs, limits.TopNgrams),
		Readability:         readability(totalWords, weightedLength),
	}
	return report
}

func topWords(frequency map[string]int, totalWords, limit int) []corpus.WordFrequency {
	ranked := rankCounts(frequency, limit)
	table := make([]corpus.WordFrequency, 0, len(ranked))
	for _, entry := range ranked {
		rel := 0.0
		if totalWords > 0 {
			rel = float64(entry.Count) / float64(totalWords)
		}
		table = append(table, corpus.WordFrequency{
			Word:      entry.Key,
			Count:     entry.Count,
			Frequency: rel,
		})
	}
	return table
}

// similarities enumerates every unordered pair of distinct documents exactly
// once, in the order induced by the document ordering.
func similarities(docs []Document) []corpus.DocumentSimilarity {
	pairs := make([]corpus.DocumentSimilarity, 0, len(docs)*(len(docs)-1)/2)
	for i := 0; i < len(docs); i++ {
		for j := i + 1; j < len(docs); j++ {
			pairs = append(pairs, corpus.DocumentSimilarity{
				Doc1:       docs[i].Name,
				Doc2:       docs[j].Name,
				Similarity: Jaccard(docs[i].Tokens, docs[j].Tokens),
			})
		}
	}
	return pairs
}

func ngramCounts(docs []Document, n int) map[string]int {
	counts := make(map[string]int)
	for _, doc := range docs {
		for _, gram := range Ngrams(doc.Tokens, n) {
			counts[gram]++
		}
	}
	return counts
}

func topBigrams(docs []Document, limit int) []corpus.BigramCount {
	ranked := rankCounts(ngramCounts(docs, 2), limit)
	table := make([]corpus.BigramCount, 0, len(ranked))
	for _, entry := range ranked {
		table = append(table, corpus.BigramCount{Bigram: entry.Key, Count: entry.Count})
	}
	return table
}

func topTrigrams(docs []Document, limit int) []corpus.TrigramCount {
	ranked := rankCounts(ngramCounts(docs, 3), limit)
	table := make([]corpus.TrigramCount, 0, len(ranked))
	for _, entry := range ranked {
		table = append(table, corpus.TrigramCount{Trigram: entry.Key, Count: entry.Count})
	}
	return table
}

// readability computes the heuristic proxy: sentence count is estimated at
// one sentence per twenty words, never less than one for a non-empty corpus.
func readability(totalWords, weightedLength int) corpus.Readability {
	if totalWords == 0 {
		return corpus.Readability{}
	}

	sentenceEstimate := totalWords / wordsPerSentenceEstimate
	if sentenceEstimate < 1 {
		sentenceEstimate = 1
	}
	avgSentenceLength := float64(totalWords) / float64(sentenceEstimate)
	avgWordLength := float64(weightedLength) / float64(totalWords)

	return corpus.Readability{
		AvgSentenceLength: avgSentenceLength,
		AvgWordLength:     avgWordLength,
		ComplexityScore:   avgSentenceLength * avgWordLength,
	}
}
