package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	pkgconfig "github.com/jdziat/langfuse-ingest/pkg/config"
	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
	pkghttp "github.com/jdziat/langfuse-ingest/pkg/http"
	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
)

// Compile-time interface checks.
var (
	_ pkghttp.Doer     = (*httpClient)(nil)
	_ ingestion.Poster = (*httpClient)(nil)
)

const (
	// maxResponseSize limits the size of HTTP response bodies to prevent OOM.
	maxResponseSize = 10 * 1024 * 1024 // 10MB

	// maxRequestBodySize limits JSON bodies of the resource API. Ingestion
	// payloads are bounded by the splitter instead.
	maxRequestBodySize = 10 * 1024 * 1024 // 10MB
)

// httpClient handles HTTP requests to the Langfuse API.
type httpClient struct {
	client     *http.Client
	apiURL     string
	authHeader string
	policy     pkghttp.RetryPolicy
	breaker    *pkghttp.Breaker
	hook       HTTPHook
	logger     StructuredLogger
}

func newHTTPClient(cfg *Config, logger StructuredLogger, hook HTTPHook) *httpClient {
	auth := base64.StdEncoding.EncodeToString([]byte(cfg.PublicKey + ":" + cfg.SecretKey))

	policy := pkghttp.RetryPolicy{
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
		Multiplier:   2.0,
		Jitter:       0.5,
	}
	if cfg.RetryPolicy != nil {
		policy = *cfg.RetryPolicy
	}

	h := &httpClient{
		client:     cfg.HTTPClient,
		apiURL:     cfg.BaseURL + pkgconfig.APIPrefix,
		authHeader: "Basic " + auth,
		policy:     policy,
		hook:       hook,
		logger:     logger,
	}
	if cfg.CircuitBreaker != nil {
		bc := *cfg.CircuitBreaker
		userHook := bc.OnStateChange
		bc.OnStateChange = func(from, to pkghttp.BreakerState) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
			if userHook != nil {
				userHook(from, to)
			}
		}
		h.breaker = pkghttp.NewBreaker(bc)
	}
	return h
}

// request represents an HTTP request to be made. raw, when set, is sent
// as-is instead of marshalling body.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	raw    []byte
}

// reply is the outcome of a request that reached the server with a 2xx
// status.
type reply struct {
	status int
	body   []byte
}

// do executes an HTTP request with retries and optional circuit breaker protection.
func (h *httpClient) do(ctx context.Context, req *request) (reply, error) {
	payload := req.raw
	if payload == nil && req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return reply{}, fmt.Errorf("langfuse: failed to marshal request body: %w", err)
		}
		if len(b) > maxRequestBodySize {
			return reply{}, fmt.Errorf("langfuse: request body size %d bytes exceeds maximum %d bytes",
				len(b), maxRequestBodySize)
		}
		payload = b
	}

	var out reply
	call := func() error {
		var err error
		out, err = pkghttp.Retry(ctx, h.policy, func(ctx context.Context) (reply, error) {
			return h.doOnce(ctx, req, payload)
		}, func(err error, delay time.Duration) {
			h.logger.Debug("retrying request", "path", req.path, "delay", delay, "error", err)
		})
		return err
	}

	if h.breaker != nil {
		return out, h.breaker.Execute(call)
	}
	return out, call()
}

// doOnce executes a single HTTP request.
func (h *httpClient) doOnce(ctx context.Context, req *request, payload []byte) (reply, error) {
	u := h.apiURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bodyReader)
	if err != nil {
		return reply{}, fmt.Errorf("langfuse: failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	if ctxRequestID, ok := ctx.Value(requestIDContextKey{}).(string); ok && ctxRequestID != "" {
		requestID = ctxRequestID
	}

	httpReq.Header.Set("Authorization", h.authHeader)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "langfuse-go/"+Version)
	httpReq.Header.Set("X-Request-ID", requestID)

	if h.hook != nil {
		if err := h.hook.BeforeRequest(ctx, httpReq); err != nil {
			return reply{}, err
		}
	}

	start := time.Now()
	resp, err := h.client.Do(httpReq)
	duration := time.Since(start)

	if h.hook != nil {
		h.hook.AfterResponse(ctx, httpReq, resp, duration, err)
	}

	if err != nil {
		return reply{}, fmt.Errorf("langfuse: request failed (request_id=%s): %w", requestID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return reply{}, fmt.Errorf("langfuse: failed to read response body (request_id=%s): %w", requestID, err)
	}
	if len(respBody) > maxResponseSize {
		return reply{}, fmt.Errorf("langfuse: response body exceeded maximum size of %d bytes (request_id=%s)", maxResponseSize, requestID)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &pkgerrors.APIError{
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
			Body:       respBody,
		}
		if len(respBody) > 0 {
			// A non-JSON body is kept in Body and shows up in Error().
			_ = json.Unmarshal(respBody, apiErr)
			apiErr.StatusCode = resp.StatusCode
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return reply{}, apiErr
	}

	return reply{status: resp.StatusCode, body: respBody}, nil
}

// requestIDContextKey is the context key for request IDs.
type requestIDContextKey struct{}

// WithRequestID returns a context with the given request ID.
// This ID will be sent to the Langfuse API and can be used for debugging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// parseRetryAfter parses the Retry-After header value.
// It supports both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func (h *httpClient) decode(path string, r reply, result any) error {
	if result == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, result); err != nil {
		return &pkgerrors.ProtocolError{StatusCode: r.status, Body: r.body, Err: fmt.Errorf("decoding %s: %w", path, err)}
	}
	return nil
}

// Get performs an HTTP GET request (implements http.Doer).
func (h *httpClient) Get(ctx context.Context, path string, query url.Values, result any) error {
	r, err := h.do(ctx, &request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return h.decode(path, r, result)
}

// Post performs an HTTP POST request (implements http.Doer).
func (h *httpClient) Post(ctx context.Context, path string, body, result any) error {
	r, err := h.do(ctx, &request{method: http.MethodPost, path: path, body: body})
	if err != nil {
		return err
	}
	return h.decode(path, r, result)
}

// Delete performs an HTTP DELETE request (implements http.Doer).
func (h *httpClient) Delete(ctx context.Context, path string, result any) error {
	r, err := h.do(ctx, &request{method: http.MethodDelete, path: path})
	if err != nil {
		return err
	}
	return h.decode(path, r, result)
}

// PostIngestion posts an encoded ingestion request (implements
// ingestion.Poster). Non-2xx responses are returned as *APIError.
func (h *httpClient) PostIngestion(ctx context.Context, payload []byte) (int, []byte, error) {
	r, err := h.do(ctx, &request{method: http.MethodPost, path: ingestion.Endpoint, raw: payload})
	if err != nil {
		return 0, nil, err
	}
	return r.status, r.body, nil
}
