package arxiv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeAbstract(t *testing.T) {
	t.Parallel()

	detail := analyzeAbstract("The CNN model uses 5 layers. The state-of-the-art model wins!")
	stats := detail.Stats

	// the cnn model uses 5 layers the state of the art model wins
	require.Equal(t, 13, stats.TotalWords)
	require.Equal(t, 10, stats.UniqueWords)
	require.Equal(t, 2, stats.TotalSentences)
	require.InDelta(t, 6.5, stats.AvgWordsPerSentence, 1e-9)

	require.Equal(t, []string{"CNN", "The"}, detail.UppercaseTerms)
	require.Equal(t, []string{"5"}, detail.NumericTerms)
	require.Equal(t, []string{"state-of-the-art"}, detail.HyphenatedTerms)
}

func TestAnalyzeAbstractFiltersStopwords(t *testing.T) {
	t.Parallel()

	detail := analyzeAbstract("the the the neural neural network")
	require.Equal(t, []wordCount{
		{Word: "neural", Count: 2},
		{Word: "network", Count: 1},
	}, detail.TopWords, "stopwords are excluded from the top-word table")
	require.Equal(t, 6, detail.Stats.TotalWords, "stopwords still count toward totals")
}

func TestAnalyzeAbstractEmpty(t *testing.T) {
	t.Parallel()

	detail := analyzeAbstract("")
	require.Equal(t, AbstractStats{}, detail.Stats)
	require.Empty(t, detail.TopWords)
	require.Empty(t, detail.UppercaseTerms)
	require.Empty(t, detail.NumericTerms)
	require.Empty(t, detail.HyphenatedTerms)
}

func TestRankWordCountsOrder(t *testing.T) {
	t.Parallel()

	ranked := rankWordCounts(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)
	require.Equal(t, []wordCount{
		{Word: "c", Count: 5},
		{Word: "a", Count: 2},
		{Word: "b", Count: 2},
	}, ranked, "ties break on ascending word; list truncates at the limit")
}
