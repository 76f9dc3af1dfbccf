// Package scores provides the Langfuse Scores API client.
//
// Scores written here are created synchronously. Scores attached to a trace
// under construction are usually better sent as score-create events through
// the ingestion pipeline.
package scores

import (
	"context"
	"net/url"

	"github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Endpoint for the scores API.
const Endpoint = "/scores"

// Client handles score-related API operations.
type Client struct {
	http http.Doer
}

// New creates a new scores client with the given HTTP doer.
func New(doer http.Doer) *Client {
	return &Client{http: doer}
}

// CreateResponse is returned by Create.
type CreateResponse struct {
	ID string `json:"id"`
}

// List returns one page of scores.
func (c *Client) List(ctx context.Context, page *http.PaginationParams, filter *http.FilterParams) (*types.ListResponse[types.Score], error) {
	var out types.ListResponse[types.Score]
	if err := c.http.Get(ctx, Endpoint, http.MergeQuery(page.ToQuery(), filter.ToQuery()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get retrieves a single score by ID.
func (c *Client) Get(ctx context.Context, scoreID string) (*types.Score, error) {
	var out types.Score
	if err := c.http.Get(ctx, Endpoint+"/"+url.PathEscape(scoreID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create writes a score and returns its id.
func (c *Client) Create(ctx context.Context, score *types.Score) (*CreateResponse, error) {
	var out CreateResponse
	if err := c.http.Post(ctx, Endpoint, score, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete deletes a score by ID.
func (c *Client) Delete(ctx context.Context, scoreID string) error {
	return c.http.Delete(ctx, Endpoint+"/"+url.PathEscape(scoreID), nil)
}
