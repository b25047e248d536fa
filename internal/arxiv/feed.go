// Package arxiv implements the one-shot arXiv metadata harvester: it queries
// the arXiv Atom API, derives per-abstract and corpus-level statistics, and
// writes structured output files.
package arxiv

import (
	"encoding/xml"
	"strings"

	"go.uber.org/zap"
)

// Entry is one parsed arXiv paper with required fields present.
type Entry struct {
	ArxivID    string
	Title      string
	Authors    []string
	Abstract   string
	Categories []string
	Published  string
	Updated    string
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Authors    []atomAuthor   `xml:"author"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// ParseFeed decodes an Atom feed into entries. Malformed XML is logged and
// yields an empty slice; entries missing an id, title, or abstract are
// skipped with a logged warning.
func ParseFeed(data []byte, logger *zap.Logger) []Entry {
	if logger == nil {
		logger = zap.NewNop()
	}

	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		logger.Error("invalid feed xml", zap.Error(err))
		return []Entry{}
	}

	entries := make([]Entry, 0, len(feed.Entries))
	for _, raw := range feed.Entries {
		entry := Entry{
			ArxivID:   bareID(strings.TrimSpace(raw.ID)),
			Title:     strings.TrimSpace(raw.Title),
			Abstract:  strings.TrimSpace(raw.Summary),
			Published: strings.TrimSpace(raw.Published),
			Updated:   strings.TrimSpace(raw.Updated),
		}
		for _, a := range raw.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				entry.Authors = append(entry.Authors, name)
			}
		}
		for _, c := range raw.Categories {
			if term := strings.TrimSpace(c.Term); term != "" {
				entry.Categories = append(entry.Categories, term)
			}
		}
		if entry.ArxivID == "" || entry.Title == "" || entry.Abstract == "" {
			logger.Warn("skipping entry with missing required fields", zap.String("arxiv_id", entry.ArxivID))
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// bareID strips the URL prefix from an Atom id, keeping the trailing
// version-qualified identifier.
func bareID(fullID string) string {
	if fullID == "" {
		return ""
	}
	if i := strings.LastIndex(fullID, "/"); i >= 0 {
		return fullID[i+1:]
	}
	return fullID
}
