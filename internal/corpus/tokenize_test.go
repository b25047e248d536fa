package corpus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tokens := Tokenize("Hello world! Visit here .")
	require.Equal(t, []string{"Hello", "world", "Visit", "here"}, tokens)
}

func TestTokenizeFold(t *testing.T) {
	t.Parallel()

	tokens := TokenizeFold("The THE the, tokenizer_1")
	require.Equal(t, []string{"the", "the", "the", "tokenizer_1"}, tokens)
}

func TestTokenizeUnicode(t *testing.T) {
	t.Parallel()

	tokens := Tokenize("café naïve 東京 résumé42")
	require.Equal(t, []string{"café", "naïve", "東京", "résumé42"}, tokens,
		"accented and CJK characters are word characters")

	require.Equal(t, []string{"café", "über"}, TokenizeFold("CAFÉ ÜBER"))
}

func TestTokenizeEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Tokenize(""))
	require.Empty(t, Tokenize("!!! ... ???"))
}

func TestAvgTokenLength(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, AvgTokenLength(nil))
	require.InDelta(t, 2.5, AvgTokenLength([]string{"ab", "abc", "a", "abcd"}), 1e-9)
	require.InDelta(t, 3.0, AvgTokenLength([]string{"café", "東京"}), 1e-9,
		"token length is measured in runes, not bytes")
}
