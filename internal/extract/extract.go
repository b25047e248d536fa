// Package extract converts raw HTML into the normalized per-document record.
//
// The text contract is regex-defined: script/style spans are removed with
// non-greedy case-insensitive matches, every remaining tag becomes a single
// space, and whitespace runs collapse to one space. A DOM parser would
// normalize entities and whitespace differently, so this package stays on
// regexp deliberately.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/parkerlow/corpusmill/internal/corpus"
)

var (
	scriptPattern    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	linkPattern      = regexp.MustCompile(`(?i)href=['"]?([^'" >]+)`)
	imagePattern     = regexp.MustCompile(`(?i)src=['"]?([^'" >]+)`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
	spacePattern     = regexp.MustCompile(`[\s\p{Z}]+`)
	sentencePattern  = regexp.MustCompile(`[.!?]+`)
	paragraphPattern = regexp.MustCompile(`(?i)<p\b`)
)

// Content is the stripped-down view of one HTML document.
type Content struct {
	Text   string
	Links  []string
	Images []string
}

// StripHTML removes markup and harvests link and image targets. Targets keep
// document order of first appearance and are not deduplicated.
func StripHTML(html string) Content {
	html = scriptPattern.ReplaceAllString(html, "")
	html = stylePattern.ReplaceAllString(html, "")

	links := harvest(linkPattern, html)
	images := harvest(imagePattern, html)

	text := tagPattern.ReplaceAllString(html, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	return Content{Text: text, Links: links, Images: images}
}

func harvest(pattern *regexp.Regexp, html string) []string {
	matches := pattern.FindAllStringSubmatch(html, -1)
	targets := make([]string, 0, len(matches))
	for _, m := range matches {
		targets = append(targets, m[1])
	}
	return targets
}

// CountSentences splits text on sentence-terminator runs and counts the
// non-empty fragments.
func CountSentences(text string) int {
	count := 0
	for _, fragment := range sentencePattern.Split(text, -1) {
		if strings.TrimSpace(fragment) != "" {
			count++
		}
	}
	return count
}

// CountParagraphs counts paragraph-opening tags in the original markup,
// defaulting to 1 when none are found but text was extracted.
func CountParagraphs(originalHTML, text string) int {
	count := len(paragraphPattern.FindAllStringIndex(originalHTML, -1))
	if count == 0 && text != "" {
		count = 1
	}
	return count
}

// Document runs the full per-document conversion: markup removal, link and
// image harvesting, and text statistics.
func Document(sourceFile, html string, processedAt time.Time) corpus.ProcessedDocument {
	content := StripHTML(html)
	words := corpus.Tokenize(content.Text)

	return corpus.ProcessedDocument{
		SourceFile: sourceFile,
		Text:       content.Text,
		Statistics: corpus.DocumentStatistics{
			WordCount:      len(words),
			SentenceCount:  CountSentences(content.Text),
			ParagraphCount: CountParagraphs(html, content.Text),
			AvgWordLength:  corpus.AvgTokenLength(words),
		},
		Links:       content.Links,
		Images:      content.Images,
		ProcessedAt: processedAt,
	}
}
