package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is the public arXiv Atom API.
const DefaultEndpoint = "http://export.arxiv.org/api/query"

const (
	defaultUserAgent = "corpusmill/1.0"
	fetchAttempts    = 3
	rateLimitWait    = 3 * time.Second
	politenessWait   = 3 * time.Second
)

// SleepFunc blocks for d or until the context finishes. Tests inject a
// no-op to avoid real waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client queries the arXiv API with the polite rate limiting the service
// asks for: retry on HTTP 429 up to three attempts with a fixed wait, and
// sleep after every successful fetch.
type Client struct {
	http     *http.Client
	endpoint string
	sleep    SleepFunc
	logger   *zap.Logger
}

// NewClient constructs a Client. Nil arguments get defaults; endpoint ""
// means DefaultEndpoint.
func NewClient(httpClient *http.Client, endpoint string, sleep SleepFunc, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if sleep == nil {
		sleep = realSleep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: httpClient, endpoint: endpoint, sleep: sleep, logger: logger}
}

// FetchFeed retrieves the Atom feed for one query. Retry warnings and hard
// failures are also appended to the run log.
func (c *Client) FetchFeed(ctx context.Context, query string, maxResults int, runLog *RunLog) ([]byte, error) {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	target := c.endpoint + "?" + params.Encode()

	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("build feed request: %w", err)
		}
		req.Header.Set("User-Agent", defaultUserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			runLog.Printf("[ERROR] request failed: %v", err)
			return nil, fmt.Errorf("query feed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			runLog.Printf("[ERROR] read feed body: %v", err)
			return nil, fmt.Errorf("read feed body: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests && attempt < fetchAttempts:
			runLog.Printf("[WARN] HTTP 429 received; retrying after %s (attempt %d)", rateLimitWait, attempt)
			c.logger.Warn("rate limited by feed endpoint", zap.Int("attempt", attempt))
			if err := c.sleep(ctx, rateLimitWait); err != nil {
				return nil, fmt.Errorf("wait after rate limit: %w", err)
			}
			continue
		case resp.StatusCode != http.StatusOK:
			runLog.Printf("[ERROR] HTTP %d from feed endpoint", resp.StatusCode)
			return nil, fmt.Errorf("query feed: unexpected status %d", resp.StatusCode)
		}

		if err := c.sleep(ctx, politenessWait); err != nil {
			return nil, fmt.Errorf("politeness wait: %w", err)
		}
		return body, nil
	}
	return nil, fmt.Errorf("query feed: rate limited after %d attempts", fetchAttempts)
}
