package arxiv

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query Results</title>
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Sparse Attention for Long Documents</title>
    <summary>We propose a sparse attention mechanism. It reduces memory use by 40 percent.</summary>
    <published>2023-01-01T00:00:00Z</published>
    <updated>2023-01-02T00:00:00Z</updated>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <category term="cs.CL"/>
    <category term="cs.LG"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2301.00002v2</id>
    <title>Graph Kernels Revisited</title>
    <summary>A self-supervised study of graph kernels with GPU acceleration.</summary>
    <published>2023-01-03T00:00:00Z</published>
    <updated>2023-01-03T00:00:00Z</updated>
    <author><name>Grace Hopper</name></author>
    <category term="cs.LG"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2301.00003v1</id>
    <title>Entry Without Abstract</title>
    <published>2023-01-04T00:00:00Z</published>
  </entry>
</feed>`

func TestParseFeed(t *testing.T) {
	t.Parallel()

	entries := ParseFeed([]byte(sampleFeed), zap.NewNop())
	require.Len(t, entries, 2, "entry missing the abstract must be skipped")

	first := entries[0]
	require.Equal(t, "2301.00001v1", first.ArxivID)
	require.Equal(t, "Sparse Attention for Long Documents", first.Title)
	require.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, first.Authors)
	require.Equal(t, []string{"cs.CL", "cs.LG"}, first.Categories)
	require.Equal(t, "2023-01-01T00:00:00Z", first.Published)
	require.Equal(t, "2023-01-02T00:00:00Z", first.Updated)

	require.Equal(t, "2301.00002v2", entries[1].ArxivID)
}

func TestParseFeedMalformedXML(t *testing.T) {
	t.Parallel()

	entries := ParseFeed([]byte("<feed><entry><unclosed"), zap.NewNop())
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestParseFeedEmpty(t *testing.T) {
	t.Parallel()

	entries := ParseFeed([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`), zap.NewNop())
	require.Empty(t, entries)
}

func TestBareID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2301.00001v1", bareID("http://arxiv.org/abs/2301.00001v1"))
	require.Equal(t, "plain", bareID("plain"))
	require.Equal(t, "", bareID(""))
}
