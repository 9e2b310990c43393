// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

// Client is the timeout-bounded HTTP client used for calls to the
// classifier service. The timeout is a hard ceiling; per-call deadlines
// come from the caller's context.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// DoWithContext issues the request under the caller's context so a
// scoring deadline cancels the call, not just the client timeout.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}
