// Package httpds implements an HTTP-backed data source for exports published
// at a URL rather than shipped as files.
package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches an export over HTTP. The response body is streamed to the
// parser; nothing is buffered here.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a Client for url. A nil httpClient falls back to a
// client with a 5 minute overall timeout.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{url: url, http: httpClient}
}

// Open issues the GET and returns the body on a 200 response. Any other
// status is an error; the body is closed before returning it.
func (c *Client) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", c.url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", c.url, resp.Status)
	}
	return resp.Body, nil
}
