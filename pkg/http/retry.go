package http

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryableError is an interface for errors that know if they're retryable.
type RetryableError interface {
	error
	IsRetryable() bool
}

// RetryAfterHint is implemented by errors carrying a server supplied delay,
// such as a 429 response with a Retry-After header.
type RetryAfterHint interface {
	error
	SuggestedRetryAfter() time.Duration
}

// IsRetryableNetworkError determines if a network error is transient and should be retried.
// Returns false for permanent errors like DNS failures, connection refused, TLS errors.
func IsRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.ETIMEDOUT:
			return true
		case syscall.ECONNREFUSED, syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return false
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return IsRetryableNetworkError(urlErr.Err)
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"certificate", "x509:", "tls:", "no such host", "connection refused"} {
		if strings.Contains(msg, pattern) {
			return false
		}
	}
	for _, pattern := range []string{"timeout", "reset by peer", "broken pipe", "temporary failure", "eof"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether err is worth another attempt. Errors that
// classify themselves are trusted; anything else must be a transient network
// error.
func IsRetryable(err error) bool {
	var re RetryableError
	if errors.As(err, &re) {
		return re.IsRetryable()
	}
	return IsRetryableNetworkError(err)
}

// RetryPolicy controls how failed requests are retried. Delays grow
// exponentially with jitter. A Retry-After hint from the server replaces the
// computed delay, capped at MaxDelay.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first. Zero or a
	// negative value disables retries.
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps every delay.
	MaxDelay time.Duration

	// Multiplier is the growth factor between delays.
	Multiplier float64

	// Jitter randomizes each delay by up to this fraction in both directions.
	Jitter float64

	// ShouldRetry overrides IsRetryable when set.
	ShouldRetry func(err error) bool
}

// DefaultRetryPolicy returns 3 retries starting at 1s, doubling up to 30s
// with 50% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.5,
	}
}

// NoRetry is a policy that makes a single attempt.
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.Jitter < 0 || p.Jitter >= 1 {
		p.Jitter = def.Jitter
	}
	if p.ShouldRetry == nil {
		p.ShouldRetry = IsRetryable
	}
	return p
}

// hintedBackOff defers to the exponential schedule unless the last error
// carried a Retry-After hint.
type hintedBackOff struct {
	exp  *backoff.ExponentialBackOff
	max  time.Duration
	hint time.Duration
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	next := b.exp.NextBackOff()
	if b.hint > 0 {
		next = min(b.hint, b.max)
		b.hint = 0
	}
	return next
}

func (b *hintedBackOff) Reset() {
	b.exp.Reset()
	b.hint = 0
}

// Retry calls op until it succeeds, returns a non-retryable error, the
// policy runs out of attempts or ctx ends. notify, when non-nil, is called
// before each wait with the error and the delay.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error), notify func(err error, delay time.Duration)) (T, error) {
	p = p.withDefaults()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialDelay
	exp.MaxInterval = p.MaxDelay
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = p.Jitter
	bo := &hintedBackOff{exp: exp, max: p.MaxDelay}

	attempt := func() (T, error) {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !p.ShouldRetry(err) {
			return v, backoff.Permanent(err)
		}
		var hint RetryAfterHint
		if errors.As(err, &hint) {
			bo.hint = hint.SuggestedRetryAfter()
		}
		return v, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(p.MaxRetries) + 1),
		backoff.WithMaxElapsedTime(0),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(notify))
	}

	v, err := backoff.Retry(ctx, attempt, opts...)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return v, err
}
