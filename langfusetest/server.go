package langfusetest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jdziat/langfuse-ingest/pkg/ingestion"
)

const (
	// IngestionPath is the path the mock server accepts batches on.
	IngestionPath = "/api/public/ingestion"

	// HealthPath is the path of the mock health endpoint.
	HealthPath = "/api/public/health"
)

// Responder writes the reply to one ingestion request. batch holds the
// decoded events of the request.
type Responder func(w http.ResponseWriter, batch []ingestion.Event)

// MockServer is a test HTTP server that records requests for verification.
// Ingestion requests are decoded and their batches recorded; by default every
// event is accepted and echoed back as a success.
type MockServer struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []*RecordedRequest
	batches   [][]ingestion.Event
	script    []Responder
	responder Responder

	// ResponseFunc customizes replies to non-ingestion paths. If nil, those
	// paths return 200 with an empty JSON object.
	ResponseFunc func(r *http.Request) (int, any)
}

// RecordedRequest represents a recorded HTTP request.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Body          []byte
	ContentType   string
	Authorization string
	RequestID     string
}

// NewMockServer creates a new mock server for testing.
func NewMockServer() *MockServer {
	ms := &MockServer{responder: Accept()}

	r := chi.NewRouter()
	r.Use(ms.record)
	r.Post(IngestionPath, ms.handleIngestion)
	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "version": "mock"})
	})
	r.NotFound(ms.handleOther)
	r.MethodNotAllowed(ms.handleOther)

	ms.Server = httptest.NewServer(r)
	return ms
}

// record captures the request before routing and restores its body.
func (ms *MockServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		ms.mu.Lock()
		ms.requests = append(ms.requests, &RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Body:          body,
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		ms.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (ms *MockServer) handleIngestion(w http.ResponseWriter, r *http.Request) {
	var req ingestion.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	ms.mu.Lock()
	ms.batches = append(ms.batches, req.Batch)
	respond := ms.responder
	if len(ms.script) > 0 {
		respond, ms.script = ms.script[0], ms.script[1:]
	}
	ms.mu.Unlock()

	respond(w, req.Batch)
}

func (ms *MockServer) handleOther(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	fn := ms.ResponseFunc
	ms.mu.Unlock()

	if fn == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	status, body := fn(r)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Accept answers 207 and reports every event of the batch as a success.
func Accept() Responder {
	return func(w http.ResponseWriter, batch []ingestion.Event) {
		writeJSON(w, http.StatusMultiStatus, respondPartial(batch, nil))
	}
}

// Reject answers 207, rejecting the events with the given ids with status
// 400 and accepting the rest.
func Reject(ids ...string) Responder {
	rejected := make(map[string]bool, len(ids))
	for _, id := range ids {
		rejected[id] = true
	}
	return func(w http.ResponseWriter, batch []ingestion.Event) {
		writeJSON(w, http.StatusMultiStatus, respondPartial(batch, rejected))
	}
}

// Status answers the whole request with status and a {"message": …} body.
func Status(status int, message string) Responder {
	return func(w http.ResponseWriter, _ []ingestion.Event) {
		writeJSON(w, status, map[string]string{"message": message})
	}
}

// RateLimited answers 429 with a Retry-After header.
func RateLimited(retryAfter time.Duration) Responder {
	return func(w http.ResponseWriter, _ []ingestion.Event) {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"message": "Rate limit exceeded"})
	}
}

// Raw answers with status and body written verbatim.
func Raw(status int, body string) Responder {
	return func(w http.ResponseWriter, _ []ingestion.Event) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func respondPartial(batch []ingestion.Event, rejected map[string]bool) ingestion.Response {
	resp := ingestion.Response{
		Successes: []ingestion.Success{},
		Errors:    []ingestion.Failure{},
	}
	for _, ev := range batch {
		if rejected[ev.ID] {
			resp.Errors = append(resp.Errors, ingestion.Failure{
				ID:      ev.ID,
				Status:  http.StatusBadRequest,
				Message: "Invalid request data",
			})
			continue
		}
		resp.Successes = append(resp.Successes, ingestion.Success{ID: ev.ID, Status: http.StatusCreated})
	}
	return resp
}

// RespondWith replaces the responder used once the script is exhausted.
func (ms *MockServer) RespondWith(r Responder) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responder = r
}

// Script queues responders for the next ingestion requests, one per request
// in order. Requests beyond the script use the RespondWith responder.
func (ms *MockServer) Script(rs ...Responder) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.script = append(ms.script, rs...)
}

// RespondWithSuccess accepts every event.
func (ms *MockServer) RespondWithSuccess() {
	ms.RespondWith(Accept())
}

// RespondWithError fails every ingestion request with status and message.
func (ms *MockServer) RespondWithError(status int, message string) {
	ms.RespondWith(Status(status, message))
}

// RespondWithRateLimit fails every ingestion request with 429.
func (ms *MockServer) RespondWithRateLimit(retryAfter time.Duration) {
	ms.RespondWith(RateLimited(retryAfter))
}

// RespondWithUnauthorized fails every ingestion request with 401.
func (ms *MockServer) RespondWithUnauthorized() {
	ms.RespondWith(Status(http.StatusUnauthorized, "Invalid credentials"))
}

// RespondWithServerError fails every ingestion request with 500.
func (ms *MockServer) RespondWithServerError() {
	ms.RespondWith(Status(http.StatusInternalServerError, "Internal server error"))
}

// RespondWithPartialSuccess rejects the events with the given ids and
// accepts the rest.
func (ms *MockServer) RespondWithPartialSuccess(rejectIDs ...string) {
	ms.RespondWith(Reject(rejectIDs...))
}

// Requests returns all recorded requests.
func (ms *MockServer) Requests() []*RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]*RecordedRequest{}, ms.requests...)
}

// RequestCount returns the number of recorded requests.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// LastRequest returns the most recent request, or nil.
func (ms *MockServer) LastRequest() *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	return ms.requests[len(ms.requests)-1]
}

// RequestAt returns the request at index i, or nil when out of range.
func (ms *MockServer) RequestAt(i int) *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if i < 0 || i >= len(ms.requests) {
		return nil
	}
	return ms.requests[i]
}

// HasRequestWithPath reports whether any request hit path.
func (ms *MockServer) HasRequestWithPath(path string) bool {
	return len(ms.RequestsWithPath(path)) > 0
}

// RequestsWithPath returns the requests that hit path.
func (ms *MockServer) RequestsWithPath(path string) []*RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var out []*RecordedRequest
	for _, r := range ms.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Batches returns the decoded batch of every ingestion request, in arrival
// order.
func (ms *MockServer) Batches() [][]ingestion.Event {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([][]ingestion.Event, len(ms.batches))
	copy(out, ms.batches)
	return out
}

// Events returns every received event in arrival order.
func (ms *MockServer) Events() []ingestion.Event {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var out []ingestion.Event
	for _, b := range ms.batches {
		out = append(out, b...)
	}
	return out
}

// SeenIDs counts how often each event id was received.
func (ms *MockServer) SeenIDs() map[string]int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make(map[string]int)
	for _, b := range ms.batches {
		for _, ev := range b {
			out[ev.ID]++
		}
	}
	return out
}

// Reset clears recorded requests and batches and restores the default
// responder.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = nil
	ms.batches = nil
	ms.script = nil
	ms.responder = Accept()
}
