// Package fetch implements the raw-store fetcher on the Colly collector.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config controls the Colly collector.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyFetcher implements pipeline.Fetcher using the Colly collector.
type CollyFetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based fetcher.
func NewCollyFetcher(cfg Config, logger *zap.Logger) *CollyFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &CollyFetcher{
		baseCollector: base,
		logger:        logger,
	}
}

type fetchResult struct {
	body   []byte
	status int
	err    error
}

// Fetch retrieves a page body and status via the configured collector.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, int, error) {
	collector := f.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{
			body:   append([]byte{}, r.Body...),
			status: r.StatusCode,
		})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		send(fetchResult{status: status, err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return nil, 0, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if res.err != nil {
			return nil, res.status, res.err
		}
		f.logger.Debug("fetched page",
			zap.String("url", rawURL),
			zap.Int("status", res.status),
			zap.Int("bytes", len(res.body)),
		)
		return res.body, res.status, nil
	default:
		return nil, 0, errors.New("colly fetch produced no result")
	}
}
