// Package http provides the transport pieces shared by the Langfuse clients:
// retries, a circuit breaker, request hooks and query helpers.
package http

import (
	"context"
	"net/url"
)

// Doer makes JSON requests against the Langfuse public API. Paths are
// relative to the API prefix, for example "/traces".
//
// Resource clients depend on Doer instead of the concrete client so they can
// be tested against a fake.
type Doer interface {
	// Get performs an HTTP GET request and decodes the response into result.
	Get(ctx context.Context, path string, query url.Values, result any) error

	// Post encodes body as JSON, performs an HTTP POST request and decodes
	// the response into result.
	Post(ctx context.Context, path string, body, result any) error

	// Delete performs an HTTP DELETE request.
	Delete(ctx context.Context, path string, result any) error
}
