package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ppiankov/antiplagiat/internal/cache"
	"github.com/ppiankov/antiplagiat/internal/extract"
	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/worker"
)

const (
	DefaultBaseURL    = "https://www.googleapis.com"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 2
	maxResponseBytes  = 1 << 20
)

// GoogleSearcher queries the Google Custom Search JSON API
type GoogleSearcher struct {
	client   *retryablehttp.Client
	baseURL  string
	apiKey   string
	cx       string
	limiter  *worker.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
}

// Option configures a GoogleSearcher
type Option func(*GoogleSearcher)

// WithLimiter paces outbound calls per host
func WithLimiter(l *worker.Limiter) Option {
	return func(g *GoogleSearcher) { g.limiter = l }
}

// WithCache caches successful responses by query
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(g *GoogleSearcher) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// WithRetryWait overrides the backoff bounds between attempts
func WithRetryWait(min, max time.Duration) Option {
	return func(g *GoogleSearcher) {
		g.client.RetryWaitMin = min
		g.client.RetryWaitMax = max
	}
}

// NewGoogleSearcher creates a searcher from cfg.
// It returns ErrNotConfigured when the API key or engine id is missing.
func NewGoogleSearcher(cfg model.SearchConfig, opts ...Option) (*GoogleSearcher, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = DefaultMaxRetries
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := &retryablehttp.Client{
		HTTPClient:   &http.Client{Timeout: timeout},
		Logger:       logger.NewLeveledLogrus(logger.GetLogger()),
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 4 * time.Second,
		RetryMax:     retries,
		Backoff:      retryablehttp.DefaultBackoff,
		CheckRetry:   RetryOnAnyFailure,
	}

	g := &GoogleSearcher{
		client:  client,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		cx:      cfg.CX,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// RetryOnAnyFailure retries sequentially on transport errors and on any
// non-200 status, and never after the context is done.
func RetryOnAnyFailure(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return resp.StatusCode != http.StatusOK, nil
}

type googleResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Search runs a single query. Results are truncated to maxResults.
func (g *GoogleSearcher) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10
	}

	key := cache.Key("search", query, strconv.Itoa(maxResults))
	if g.cache != nil {
		if data, ok := g.cache.Get(key); ok {
			var cached []Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	endpoint := g.baseURL + "/customsearch/v1?" + url.Values{
		"key": {g.apiKey},
		"cx":  {g.cx},
		"q":   {query},
		"num": {strconv.Itoa(maxResults)},
	}.Encode()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("search request: %w", ctxErr)
		}
		// The underlying error embeds the request URL, which carries the API key
		return nil, fmt.Errorf("search request failed after %d retries", g.client.RetryMax)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed googleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("search API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	results := make([]Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		title := extract.StripTags(item.Title)
		if title == "" {
			title = "Unknown"
		}
		results = append(results, Result{
			Title:         title,
			URL:           item.Link,
			DisplayDomain: item.DisplayLink,
		})
		if len(results) == maxResults {
			break
		}
	}

	if g.cache != nil {
		if data, err := json.Marshal(results); err == nil {
			_ = g.cache.Set(key, data, g.cacheTTL)
		}
	}

	return results, nil
}
