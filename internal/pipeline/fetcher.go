package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/util"
	"github.com/ppiankov/antiplagiat/internal/worker"
)

const defaultFetchAttempts = 3

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = time.Sleep

// ErrDisallowed is returned when robots.txt forbids fetching a URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// StatusError is a non-2xx response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Fetcher downloads documents for analysis
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBytes    int64
	maxAttempts int
	robots      *util.RobotsChecker
	limiter     *worker.Limiter
	log         *logrus.Entry
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithRobots makes the fetcher honour robots.txt rules and crawl delays
func WithRobots(r *util.RobotsChecker) FetcherOption {
	return func(f *Fetcher) { f.robots = r }
}

// WithFetchLimiter paces requests per host
func WithFetchLimiter(l *worker.Limiter) FetcherOption {
	return func(f *Fetcher) { f.limiter = l }
}

// NewFetcher creates a Fetcher from the HTTP settings
func NewFetcher(cfg model.HTTPConfig, opts ...FetcherOption) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, ""),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed hosts
	}

	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = defaultFetchAttempts
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:   cfg.UserAgent,
		maxBytes:    cfg.MaxBodyBytes,
		maxAttempts: attempts,
		log:         logger.GetLogger().WithField("component", "fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchResult is a downloaded document
type FetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
	FinalURL    string
	Truncated   bool
}

// Fetch downloads rawURL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru,en;q=0.8,kk;q=0.6")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	result := &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		result.Body = body[:f.maxBytes]
		result.Truncated = true
		f.log.WithFields(logrus.Fields{"url": rawURL, "limit": f.maxBytes}).Warn("Response truncated")
	}
	return result, nil
}

// FetchWithRetry checks robots.txt, waits for the host limiter and retries
// transient failures with exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var delay time.Duration
	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		delay = crawlDelay
	}

	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt < f.maxAttempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			f.log.WithFields(logrus.Fields{"url": rawURL, "attempt": attempt + 1, "backoff": backoff}).Debugf("Retrying: %v", err)
			fetchSleepFunc(backoff)
		}
	}
	return nil, lastErr
}

// isRetryableFetchError returns true for 5xx, 429 and transient network failures
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	if !strings.HasPrefix(err.Error(), "fetch: ") {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "eof")
}
