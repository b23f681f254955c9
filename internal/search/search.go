// Package search implements the exact-phrase web search capability.
package search

import (
	"context"
	"errors"
)

// Result is one search hit
type Result struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	DisplayDomain string `json:"display_domain"`
}

// Searcher issues a web search for query and returns at most maxResults hits
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// ErrNotConfigured is returned when search credentials are missing
var ErrNotConfigured = errors.New("search not configured")
