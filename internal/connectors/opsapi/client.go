package opsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client performs bearer-token authorized reads against the operations API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL. The timeout bounds each
// request at the transport level; no retries are attempted.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// ServiceStats holds reachability data for the status page.
type ServiceStats struct {
	PingMS     int64 `json:"ping_ms"`
	StatusCode int   `json:"status_code"`
}

// ServiceStats probes the API root and reports latency. Any HTTP response
// counts as reachable; only transport failures are errors.
func (c *Client) ServiceStats(ctx context.Context) (*ServiceStats, error) {
	if !c.Enabled() {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))

	return &ServiceStats{
		PingMS:     time.Since(start).Milliseconds(),
		StatusCode: resp.StatusCode,
	}, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// getBody issues one GET and returns the response body for a 2xx status.
func (c *Client) getBody(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("operations api client disabled")
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		blob, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("operations api status=%d path=%s body=%s", resp.StatusCode, path, strings.TrimSpace(string(blob)))
	}

	return io.ReadAll(resp.Body)
}

// getJSON issues one GET and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.getBody(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("operations api malformed body path=%s: %w", path, err)
	}
	return nil
}
