package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/antiplagiat/internal/util"
)

// maxReplyBytes bounds provider responses; verdicts are a few hundred bytes
const maxReplyBytes = 1 << 20

// newHTTPClient builds the proxy-aware client used by the raw-HTTP providers
func newHTTPClient(config Config, fallback time.Duration) *http.Client {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = fallback
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}

// apiError extracts a provider-specific message from a non-200 body
type apiError func(body []byte) string

// postJSON sends in as JSON and decodes a 200 reply into out
func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, in, out interface{}, describe apiError) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if describe != nil {
			if msg := describe(reply); msg != "" {
				return fmt.Errorf("API error (%d): %s", resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, bytes.TrimSpace(reply))
	}

	if err := json.Unmarshal(reply, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
