package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

type mockRetryableError struct {
	retryable bool
}

func (e *mockRetryableError) Error() string     { return "mock retryable error" }
func (e *mockRetryableError) IsRetryable() bool { return e.retryable }

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   retries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Jitter:       0.1,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	var calls int
	var delays []time.Duration
	got, err := Retry(context.Background(), fastPolicy(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &pkgerrors.APIError{StatusCode: 503}
		}
		return "ok", nil
	}, func(_ error, d time.Duration) { delays = append(delays, d) })

	if err != nil || got != "ok" {
		t.Fatalf("Retry() = %q, %v, want ok", got, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(delays) != 2 {
		t.Errorf("notify calls = %d, want 2", len(delays))
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastPolicy(5), func(context.Context) (int, error) {
		calls++
		return 0, &pkgerrors.APIError{StatusCode: 401}
	}, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	apiErr, ok := pkgerrors.AsAPIError(err)
	if !ok || apiErr.StatusCode != 401 {
		t.Errorf("Retry() error = %v, want the 401 unwrapped", err)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastPolicy(2), func(context.Context) (int, error) {
		calls++
		return 0, &mockRetryableError{retryable: true}
	}, nil)

	if calls != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", calls)
	}
	var mock *mockRetryableError
	if !errors.As(err, &mock) {
		t.Errorf("Retry() error = %v, want last attempt error", err)
	}
}

func TestRetry_NoRetry(t *testing.T) {
	var calls int
	_, _ = Retry(context.Background(), NoRetry(), func(context.Context) (int, error) {
		calls++
		return 0, &mockRetryableError{retryable: true}
	}, nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_NegativeMaxRetriesMakesOneAttempt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var calls int
	_, err := Retry(ctx, fastPolicy(-1), func(context.Context) (int, error) {
		calls++
		return 0, &mockRetryableError{retryable: true}
	}, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Retry() error = %v, want the attempt error before the deadline", err)
	}
}

func TestRetry_HonorsRetryAfterCappedAtMaxDelay(t *testing.T) {
	var delays []time.Duration
	var calls int
	_, err := Retry(context.Background(), fastPolicy(1), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &pkgerrors.APIError{StatusCode: 429, RetryAfter: time.Hour}
		}
		return 1, nil
	}, func(_ error, d time.Duration) { delays = append(delays, d) })

	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if len(delays) != 1 || delays[0] != 5*time.Millisecond {
		t.Errorf("delays = %v, want [5ms]", delays)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour}

	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, policy, func(context.Context) (int, error) {
			return 0, &mockRetryableError{retryable: true}
		}, nil)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Retry() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Retry() did not stop on cancellation")
	}
}

func TestRetry_CustomClassifier(t *testing.T) {
	var calls int
	policy := fastPolicy(2)
	policy.ShouldRetry = func(error) bool { return true }
	_, _ = Retry(context.Background(), policy, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("opaque")
	}, nil)
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestIsRetryableNetworkError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"timeout error", errors.New("timeout"), true},
		{"connection refused", errors.New("connection refused"), false},
		{"no such host", errors.New("no such host"), false},
		{"certificate error", errors.New("certificate verify failed"), false},
		{"reset by peer", errors.New("connection reset by peer"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"url error", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("broken pipe")}, true},
		{"unknown", errors.New("something odd"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableNetworkError(tt.err); got != tt.expected {
				t.Errorf("IsRetryableNetworkError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&pkgerrors.APIError{StatusCode: 500}, true},
		{&pkgerrors.APIError{StatusCode: 429}, true},
		{&pkgerrors.APIError{StatusCode: 400}, false},
		{&pkgerrors.APIError{StatusCode: 401}, false},
		{&mockRetryableError{retryable: false}, false},
		{errors.New("broken pipe"), true},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestBreaker_OpensAndRecovers(t *testing.T) {
	var transitions []string
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 2,
		Timeout:          20 * time.Millisecond,
		OnStateChange: func(from, to BreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	serverDown := func() error { return &pkgerrors.APIError{StatusCode: 503} }
	for i := 0; i < 2; i++ {
		_ = b.Execute(serverDown)
	}
	if b.State() != BreakerOpen {
		t.Fatalf("State() = %v, want open", b.State())
	}

	var called bool
	err := b.Execute(func() error { called = true; return nil })
	if !errors.Is(err, pkgerrors.ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("function ran while the circuit was open")
	}

	time.Sleep(30 * time.Millisecond)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("trial Execute() error = %v", err)
	}
	if b.State() != BreakerClosed {
		t.Errorf("State() = %v, want closed", b.State())
	}

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if strings.Join(transitions, ",") != strings.Join(want, ",") {
		t.Errorf("transitions = %v, want %v", transitions, want)
	}
}

func TestBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 2})
	badRequest := &pkgerrors.APIError{StatusCode: 400}
	for i := 0; i < 5; i++ {
		if err := b.Execute(func() error { return badRequest }); !errors.Is(err, badRequest) {
			t.Fatalf("Execute() error = %v, want the 400", err)
		}
	}
	if b.State() != BreakerClosed || b.ConsecutiveFailures() != 0 {
		t.Errorf("State() = %v, failures = %d, want closed, 0", b.State(), b.ConsecutiveFailures())
	}
}

func TestHookChain_Priorities(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/public/health", nil)
	failing := HTTPHookFunc{Before: func(context.Context, *http.Request) error { return errors.New("boom") }}

	chain := NewHookChain(logger, NewClassifiedHook("observer", failing, HookPriorityObservational))
	if err := chain.BeforeRequest(context.Background(), req); err != nil {
		t.Errorf("observational failure aborted request: %v", err)
	}
	if !strings.Contains(buf.String(), "observer") {
		t.Errorf("observational failure not logged: %s", buf.String())
	}

	chain.Add(NewClassifiedHook("signer", failing, HookPriorityCritical))
	err := chain.BeforeRequest(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), `critical hook "signer" failed`) {
		t.Errorf("BeforeRequest() error = %v, want critical failure", err)
	}
}

func TestHookChain_RecoversPanics(t *testing.T) {
	panicking := HTTPHookFunc{
		Before: func(context.Context, *http.Request) error { panic("before") },
		After:  func(context.Context, *http.Request, *http.Response, time.Duration, error) { panic("after") },
	}
	chain := NewHookChain(nil, NewClassifiedHook("p", panicking, HookPriorityObservational))
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if err := chain.BeforeRequest(context.Background(), req); err != nil {
		t.Errorf("BeforeRequest() error = %v", err)
	}
	chain.AfterResponse(context.Background(), req, nil, 0, nil)

	critical := NewHookChain(nil, NewClassifiedHook("p", panicking, HookPriorityCritical))
	if err := critical.BeforeRequest(context.Background(), req); err == nil {
		t.Error("critical panic did not abort the request")
	}
}

func TestHookChain_AfterRunsInReverse(t *testing.T) {
	var order []string
	mk := func(name string) HTTPHook {
		return HTTPHookFunc{
			Before: func(context.Context, *http.Request) error { order = append(order, "before-"+name); return nil },
			After: func(context.Context, *http.Request, *http.Response, time.Duration, error) {
				order = append(order, "after-"+name)
			},
		}
	}
	hook := CombineHooks(mk("a"), mk("b"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_ = hook.BeforeRequest(context.Background(), req)
	hook.AfterResponse(context.Background(), req, &http.Response{StatusCode: 200}, 0, nil)

	want := "before-a,before-b,after-b,after-a"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
	if CombineHooks() != nil {
		t.Error("CombineHooks() with no hooks != nil")
	}
}

type countingRecorder struct {
	counts map[string]int64
}

func (c *countingRecorder) IncrementCounter(name string, v int64)  { c.counts[name] += v }
func (c *countingRecorder) RecordDuration(string, time.Duration) {}

func TestHeaderLoggingAndMetricsHooks(t *testing.T) {
	var gotHeader atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader.Store(r.Header.Get("X-Env"))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	rec := &countingRecorder{counts: map[string]int64{}}
	chain := NewHookChain(nil,
		NewClassifiedHook("headers", HeaderHook(map[string]string{"X-Env": "test"}), HookPriorityCritical),
		NewClassifiedHook("logging", LoggingHook(slog.New(slog.NewTextHandler(&buf, nil))), HookPriorityObservational),
		NewClassifiedHook("metrics", MetricsHook(rec), HookPriorityObservational),
	)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/public/ingestion", nil)
	if err := chain.BeforeRequest(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	chain.AfterResponse(context.Background(), req, resp, time.Since(start), nil)

	if gotHeader.Load() != "test" {
		t.Errorf("X-Env = %v, want test", gotHeader.Load())
	}
	if !strings.Contains(buf.String(), "request returned error status") || !strings.Contains(buf.String(), "status=429") {
		t.Errorf("log = %s", buf.String())
	}
	if rec.counts[MetricRequests] != 1 || rec.counts["langfuse.http.status.429"] != 1 {
		t.Errorf("counts = %v", rec.counts)
	}
}

func TestPaginationParams_ToQuery(t *testing.T) {
	tests := []struct {
		name   string
		params *PaginationParams
		expect map[string]string
	}{
		{"all parameters", &PaginationParams{Page: 2, Limit: 50}, map[string]string{"page": "2", "limit": "50"}},
		{"only page", &PaginationParams{Page: 1}, map[string]string{"page": "1"}},
		{"empty parameters", &PaginationParams{}, map[string]string{}},
		{"nil", nil, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.params.ToQuery()
			for key, expectedValue := range tt.expect {
				if q.Get(key) != expectedValue {
					t.Errorf("Query parameter %q = %q, expected %q", key, q.Get(key), expectedValue)
				}
			}
			if len(q) != len(tt.expect) {
				t.Errorf("Query has %d parameters, expected %d", len(q), len(tt.expect))
			}
		})
	}
}

func TestFilterParams_ToQuery(t *testing.T) {
	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	f := &FilterParams{UserID: "u1", FromTimestamp: from, Tags: []string{"a", "b"}}
	q := f.ToQuery()

	if q.Get("userId") != "u1" {
		t.Errorf("userId = %q", q.Get("userId"))
	}
	if q.Get("fromTimestamp") != "2024-05-01T10:00:00Z" {
		t.Errorf("fromTimestamp = %q, want UTC", q.Get("fromTimestamp"))
	}
	if got := q["tags"]; len(got) != 2 {
		t.Errorf("tags = %v", got)
	}
	if q.Has("name") {
		t.Error("empty name was set")
	}
}

func TestMergeQuery(t *testing.T) {
	q := MergeQuery(url.Values{"a": {"1"}}, url.Values{"a": {"2"}, "b": {"3"}})
	if got := q["a"]; len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("a = %v", got)
	}
	if q.Get("b") != "3" {
		t.Errorf("b = %q", q.Get("b"))
	}
}
