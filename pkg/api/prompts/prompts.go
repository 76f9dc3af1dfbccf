// Package prompts provides the Langfuse Prompts API client.
//
// GetCached keeps fetched prompts for a fixed TTL so hot paths do not pay a
// round trip per call. Failed fetches are never cached.
package prompts

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Endpoint for the prompts API (v2).
const Endpoint = "/v2/prompts"

// DefaultCacheTTL is used when New is given a non-positive TTL.
const DefaultCacheTTL = 60 * time.Second

// GetOptions selects a prompt version. Version wins over Label; with neither
// the server returns the version labelled "production".
type GetOptions struct {
	Version int
	Label   string
}

func (o GetOptions) query() url.Values {
	q := url.Values{}
	if o.Version > 0 {
		q.Set("version", strconv.Itoa(o.Version))
	} else if o.Label != "" {
		q.Set("label", o.Label)
	}
	return q
}

func (o GetOptions) key(name string) string {
	return name + "\x00" + strconv.Itoa(o.Version) + "\x00" + o.Label
}

// Client handles prompt-related API operations.
type Client struct {
	http  http.Doer
	cache *ttlcache.Cache[string, *types.Prompt]
}

// New creates a new prompts client with the given HTTP doer.
func New(doer http.Doer, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Client{
		http: doer,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, *types.Prompt](ttl),
			ttlcache.WithDisableTouchOnHit[string, *types.Prompt](),
		),
	}
}

// List returns one page of prompt metadata.
func (c *Client) List(ctx context.Context, page *http.PaginationParams, filter *http.FilterParams) (*types.ListResponse[types.Prompt], error) {
	var out types.ListResponse[types.Prompt]
	if err := c.http.Get(ctx, Endpoint, http.MergeQuery(page.ToQuery(), filter.ToQuery()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a prompt from the server.
func (c *Client) Get(ctx context.Context, name string, opts GetOptions) (*types.Prompt, error) {
	var out types.Prompt
	if err := c.http.Get(ctx, Endpoint+"/"+url.PathEscape(name), opts.query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCached returns a cached prompt when one younger than the TTL exists and
// fetches it otherwise.
func (c *Client) GetCached(ctx context.Context, name string, opts GetOptions) (*types.Prompt, error) {
	key := opts.key(name)
	if item := c.cache.Get(key); item != nil {
		return item.Value(), nil
	}
	p, err := c.Get(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, p, ttlcache.DefaultTTL)
	return p, nil
}

// Invalidate drops every cached version of name.
func (c *Client) Invalidate(name string) {
	for _, key := range c.cache.Keys() {
		if len(key) > len(name) && key[:len(name)] == name && key[len(name)] == 0 {
			c.cache.Delete(key)
		}
	}
}

// Create creates a new prompt version. Creating invalidates the cache for the name.
func (c *Client) Create(ctx context.Context, p *types.Prompt) (*types.Prompt, error) {
	var out types.Prompt
	if err := c.http.Post(ctx, Endpoint, p, &out); err != nil {
		return nil, err
	}
	c.Invalidate(p.Name)
	return &out, nil
}
