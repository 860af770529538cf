package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"PressRadar/internal/config"
	"PressRadar/internal/ports"
)

const maxBodyBytes = 4 << 20

// Client performs HTTP GETs against press sites. Some of them block
// non-browser user agents, hence the browser-like identification header.
type Client struct {
	userAgent  string
	httpClient *http.Client
}

var _ ports.Fetcher = (*Client)(nil)

// NewClient builds a fetcher from configuration; client may be nil.
func NewClient(cfg config.FetchConfig, client *http.Client) *Client {
	if client == nil {
		timeout := cfg.Timeout()
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{userAgent: cfg.UserAgent, httpClient: client}
}

// Fetch retrieves the raw markup of the given URL.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	return body, nil
}
