// Package sessions provides the Langfuse Sessions API client.
package sessions

import (
	"context"
	"net/url"

	"github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Endpoint for the sessions API.
const Endpoint = "/sessions"

// Client handles session-related API operations.
type Client struct {
	http http.Doer
}

// New creates a new sessions client with the given HTTP doer.
func New(doer http.Doer) *Client {
	return &Client{http: doer}
}

// List returns one page of sessions.
func (c *Client) List(ctx context.Context, page *http.PaginationParams, filter *http.FilterParams) (*types.ListResponse[types.Session], error) {
	var out types.ListResponse[types.Session]
	if err := c.http.Get(ctx, Endpoint, http.MergeQuery(page.ToQuery(), filter.ToQuery()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get retrieves a session with its traces.
func (c *Client) Get(ctx context.Context, sessionID string) (*types.Session, error) {
	var out types.Session
	if err := c.http.Get(ctx, Endpoint+"/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
