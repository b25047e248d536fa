package corpus

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordPattern matches maximal alphanumeric runs. RE2's \w is ASCII-only, so
// the Unicode classes are spelled out: accented letters and CJK are word
// characters here.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize splits text into word tokens, preserving case.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// TokenizeFold splits text into lowercased tokens for corpus-wide analysis.
func TokenizeFold(text string) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	return tokens
}

// AvgTokenLength returns the mean length of tokens in runes, 0.0 when empty.
func AvgTokenLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0.0
	}
	total := 0
	for _, tok := range tokens {
		total += utf8.RuneCountInString(tok)
	}
	return float64(total) / float64(len(tokens))
}
