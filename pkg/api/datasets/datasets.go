// Package datasets provides the Langfuse Datasets API client.
package datasets

import (
	"context"
	"net/url"

	"github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/types"
)

// Endpoints for the datasets API.
const (
	DatasetsEndpoint     = "/v2/datasets"
	DatasetItemsEndpoint = "/dataset-items"
)

// Client handles dataset-related API operations.
type Client struct {
	http http.Doer
}

// New creates a new datasets client with the given HTTP doer.
func New(doer http.Doer) *Client {
	return &Client{http: doer}
}

// List returns one page of datasets.
func (c *Client) List(ctx context.Context, page *http.PaginationParams) (*types.ListResponse[types.Dataset], error) {
	var out types.ListResponse[types.Dataset]
	if err := c.http.Get(ctx, DatasetsEndpoint, page.ToQuery(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get retrieves a dataset by name.
func (c *Client) Get(ctx context.Context, name string) (*types.Dataset, error) {
	var out types.Dataset
	if err := c.http.Get(ctx, DatasetsEndpoint+"/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a dataset.
func (c *Client) Create(ctx context.Context, d *types.Dataset) (*types.Dataset, error) {
	var out types.Dataset
	if err := c.http.Post(ctx, DatasetsEndpoint, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListItems returns one page of the items of dataset name.
func (c *Client) ListItems(ctx context.Context, name string, page *http.PaginationParams) (*types.ListResponse[types.DatasetItem], error) {
	q := page.ToQuery()
	q.Set("datasetName", name)
	var out types.ListResponse[types.DatasetItem]
	if err := c.http.Get(ctx, DatasetItemsEndpoint, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetItem retrieves a dataset item by ID.
func (c *Client) GetItem(ctx context.Context, itemID string) (*types.DatasetItem, error) {
	var out types.DatasetItem
	if err := c.http.Get(ctx, DatasetItemsEndpoint+"/"+url.PathEscape(itemID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateItem adds an item to the dataset named in item.DatasetName.
func (c *Client) CreateItem(ctx context.Context, item *types.DatasetItem) (*types.DatasetItem, error) {
	var out types.DatasetItem
	if err := c.http.Post(ctx, DatasetItemsEndpoint, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem deletes a dataset item by ID.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.http.Delete(ctx, DatasetItemsEndpoint+"/"+url.PathEscape(itemID), nil)
}
