// Package observations provides the Langfuse Observations API client.
package observations

import (
	"context"
	"net/url"

	"github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Endpoint for the observations API.
const Endpoint = "/observations"

// Client handles observation-related API operations.
type Client struct {
	http http.Doer
}

// New creates a new observations client with the given HTTP doer.
func New(doer http.Doer) *Client {
	return &Client{http: doer}
}

// List returns one page of observations. filter.Type narrows the result to
// SPAN, GENERATION or EVENT.
func (c *Client) List(ctx context.Context, page *http.PaginationParams, filter *http.FilterParams) (*types.ListResponse[types.Observation], error) {
	var out types.ListResponse[types.Observation]
	if err := c.http.Get(ctx, Endpoint, http.MergeQuery(page.ToQuery(), filter.ToQuery()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get retrieves a single observation by ID.
func (c *Client) Get(ctx context.Context, observationID string) (*types.Observation, error) {
	var out types.Observation
	if err := c.http.Get(ctx, Endpoint+"/"+url.PathEscape(observationID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
