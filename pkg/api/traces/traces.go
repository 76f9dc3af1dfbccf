// Package traces provides the Langfuse Traces API client.
package traces

import (
	"context"
	"net/url"

	"github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Endpoint for the traces API.
const Endpoint = "/traces"

// Client handles trace-related API operations.
type Client struct {
	http http.Doer
}

// New creates a new traces client with the given HTTP doer.
func New(doer http.Doer) *Client {
	return &Client{http: doer}
}

// List returns one page of traces matching filter. Both arguments may be nil.
func (c *Client) List(ctx context.Context, page *http.PaginationParams, filter *http.FilterParams) (*types.ListResponse[types.Trace], error) {
	var out types.ListResponse[types.Trace]
	if err := c.http.Get(ctx, Endpoint, http.MergeQuery(page.ToQuery(), filter.ToQuery()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get retrieves a single trace by ID.
func (c *Client) Get(ctx context.Context, traceID string) (*types.Trace, error) {
	var out types.Trace
	if err := c.http.Get(ctx, Endpoint+"/"+url.PathEscape(traceID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete deletes a trace by ID.
func (c *Client) Delete(ctx context.Context, traceID string) error {
	return c.http.Delete(ctx, Endpoint+"/"+url.PathEscape(traceID), nil)
}
