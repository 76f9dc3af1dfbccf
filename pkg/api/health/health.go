// Package health checks that a Langfuse server is reachable and the
// credentials are accepted.
package health

import (
	"context"

	"github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Endpoint for the health API.
const Endpoint = "/health"

// Client calls the health endpoint.
type Client struct {
	http http.Doer
}

// New creates a new health client with the given HTTP doer.
func New(doer http.Doer) *Client {
	return &Client{http: doer}
}

// Check returns the server status. A non-2xx answer is an *errors.APIError.
func (c *Client) Check(ctx context.Context) (*types.HealthStatus, error) {
	var out types.HealthStatus
	if err := c.http.Get(ctx, Endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
