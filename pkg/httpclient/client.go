package httpclient

import (
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client defines an interface for making HTTP requests so callers can be tested without a network
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// StandardHTTPClient wraps the standard http.Client
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardClient creates a new HTTP client. A non-positive timeout falls back to 10s.
func NewStandardClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &StandardHTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Do executes an HTTP request
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
