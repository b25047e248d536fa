// Package corpus defines the core data model shared across pipeline stages.
package corpus

import "time"

// DocumentStatistics summarizes the extracted text of a single document.
type DocumentStatistics struct {
	WordCount      int     `json:"word_count"`
	SentenceCount  int     `json:"sentence_count"`
	ParagraphCount int     `json:"paragraph_count"`
	AvgWordLength  float64 `json:"avg_word_length"`
}

// ProcessedDocument is the normalized record produced once per raw document.
// It is written exactly once by the extraction stage and never mutated.
type ProcessedDocument struct {
	SourceFile  string             `json:"source_file"`
	Text        string             `json:"text"`
	Statistics  DocumentStatistics `json:"statistics"`
	Links       []string           `json:"links"`
	Images      []string           `json:"images"`
	ProcessedAt time.Time          `json:"processed_at"`
}

// Marker is a readiness marker: its existence on disk is the signal that a
// producer has finished publishing a batch. The content is informational.
type Marker struct {
	Timestamp time.Time `json:"timestamp"`
	Files     []string  `json:"files,omitempty"`
}

// Well-known marker names in the status store.
const (
	FetchCompleteMarker   = "fetch_complete.json"
	ProcessCompleteMarker = "process_complete.json"
)

// WordFrequency is one row of the ranked frequency table.
type WordFrequency struct {
	Word      string  `json:"word"`
	Count     int     `json:"count"`
	Frequency float64 `json:"frequency"`
}

// DocumentSimilarity holds the Jaccard index for one unordered document pair.
type DocumentSimilarity struct {
	Doc1       string  `json:"doc1"`
	Doc2       string  `json:"doc2"`
	Similarity float64 `json:"similarity"`
}

// BigramCount is one row of the ranked bigram table.
type BigramCount struct {
	Bigram string `json:"bigram"`
	Count  int    `json:"count"`
}

// TrigramCount is one row of the ranked trigram table.
type TrigramCount struct {
	Trigram string `json:"trigram"`
	Count   int    `json:"count"`
}

// Readability carries the heuristic readability proxy. It is not a validated
// readability formula.
type Readability struct {
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`
	ComplexityScore   float64 `json:"complexity_score"`
}

// CorpusReport is the single aggregate artifact produced per analysis run.
type CorpusReport struct {
	ProcessingTimestamp time.Time            `json:"processing_timestamp"`
	DocumentsProcessed  int                  `json:"documents_processed"`
	TotalWords          int                  `json:"total_words"`
	UniqueWords         int                  `json:"unique_words"`
	Top100Words         []WordFrequency      `json:"top_100_words"`
	DocumentSimilarity  []DocumentSimilarity `json:"document_similarity"`
	TopBigrams          []BigramCount        `json:"top_bigrams"`
	TopTrigrams         []TrigramCount       `json:"top_trigrams"`
	Readability         Readability          `json:"readability"`
}
