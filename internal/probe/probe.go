// Package probe implements the one-shot HTTP endpoint prober. It issues a
// single GET per URL, records per-URL results with nullable fields, and
// aggregates a run summary.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/parkerlow/corpusmill/internal/corpus"
	"github.com/parkerlow/corpusmill/internal/metrics"
)

// probeWordPattern counts ASCII alphanumeric runs only. It is intentionally
// narrower than the corpus tokenizer.
var probeWordPattern = regexp.MustCompile(`[0-9A-Za-z]+`)

// Result is one per-URL probe record. StatusCode, WordCount, and Error are
// pointers so that absent values serialize as JSON null.
type Result struct {
	URL            string  `json:"url"`
	StatusCode     *int    `json:"status_code"`
	ResponseTimeMs float64 `json:"response_time_ms"`
	ContentLength  int     `json:"content_length"`
	WordCount      *int    `json:"word_count"`
	Timestamp      string  `json:"timestamp"`
	Error          *string `json:"error"`
}

// Success reports whether the probe reached the endpoint and got a 2xx.
func (r Result) Success() bool {
	return r.StatusCode != nil && *r.StatusCode >= 200 && *r.StatusCode < 300
}

// Summary aggregates one probe run.
type Summary struct {
	TotalURLs              int            `json:"total_urls"`
	SuccessfulRequests     int            `json:"successful_requests"`
	FailedRequests         int            `json:"failed_requests"`
	AverageResponseTimeMs  float64        `json:"average_response_time_ms"`
	TotalBytesDownloaded   int            `json:"total_bytes_downloaded"`
	StatusCodeDistribution map[string]int `json:"status_code_distribution"`
	ProcessingStart        string         `json:"processing_start"`
	ProcessingEnd          string         `json:"processing_end"`
}

// Prober probes each URL exactly once. No retries: the record is the point.
type Prober struct {
	client *http.Client
	clock  corpus.Clock
	logger *zap.Logger
}

// New constructs a Prober. A nil client gets a 10 s timeout default.
func New(client *http.Client, clock corpus.Clock, logger *zap.Logger) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if clock == nil {
		clock = corpus.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{client: client, clock: clock, logger: logger}
}

// Run probes every URL in order and returns the per-URL results plus the
// run summary. Per-URL failures are recorded, never fatal.
func (p *Prober) Run(ctx context.Context, urls []string) ([]Result, Summary) {
	start := p.clock.Now()
	results := make([]Result, 0, len(urls))

	summary := Summary{
		TotalURLs:              len(urls),
		StatusCodeDistribution: make(map[string]int),
		ProcessingStart:        timestamp(start),
	}

	var totalTime float64
	for _, url := range urls {
		res := p.probeOne(ctx, url)
		results = append(results, res)

		totalTime += res.ResponseTimeMs
		summary.TotalBytesDownloaded += res.ContentLength
		if res.StatusCode != nil {
			summary.StatusCodeDistribution[strconv.Itoa(*res.StatusCode)]++
		}
		if res.Success() {
			summary.SuccessfulRequests++
		} else {
			summary.FailedRequests++
		}
	}

	if len(results) > 0 {
		summary.AverageResponseTimeMs = totalTime / float64(len(results))
	}
	summary.ProcessingEnd = timestamp(p.clock.Now())
	p.logger.Info("probe run complete",
		zap.Int("urls", summary.TotalURLs),
		zap.Int("ok", summary.SuccessfulRequests),
		zap.Int("failed", summary.FailedRequests),
	)
	return results, summary
}

func (p *Prober) probeOne(ctx context.Context, url string) Result {
	res := Result{URL: url}
	t0 := time.Now()

	var body []byte
	var contentType string

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.Error = strPtr(fmt.Sprintf("invalid url: %v", err))
	} else if resp, rerr := p.client.Do(req); rerr != nil {
		res.Error = strPtr(fmt.Sprintf("request failed: %v", rerr))
	} else {
		res.StatusCode = intPtr(resp.StatusCode)
		contentType = resp.Header.Get("Content-Type")
		body, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			res.Error = strPtr(fmt.Sprintf("read body: %v", err))
			body = nil
		} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			res.Error = strPtr(fmt.Sprintf("HTTP Error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
		}
	}

	res.ResponseTimeMs = float64(time.Since(t0)) / float64(time.Millisecond)
	res.ContentLength = len(body)
	res.Timestamp = timestamp(p.clock.Now())

	// Words are counted for text bodies regardless of status; a 404 page
	// is still text.
	if isText(contentType) && len(body) > 0 {
		res.WordCount = intPtr(len(probeWordPattern.FindAllString(decodeText(body, contentType), -1)))
	}

	class := "error"
	if res.StatusCode != nil {
		class = metrics.ClassifyStatus(*res.StatusCode)
	}
	metrics.ObserveProbe(class, res.ContentLength, time.Since(t0))

	if res.Error != nil {
		p.logger.Warn("probe failed", zap.String("url", url), zap.String("error", *res.Error))
	}
	return res
}

func isText(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text")
}

// decodeText converts a body to UTF-8 per the Content-Type charset
// parameter, best effort: on any failure the raw bytes stand in.
func decodeText(body []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// timestamp renders a UTC instant at second precision, Z-suffixed.
func timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }
