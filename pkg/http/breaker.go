package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	pkgerrors "github.com/jdziat/langfuse-ingest/pkg/errors"
)

// BreakerState is the state of a Breaker.
type BreakerState = gobreaker.State

// Breaker states.
const (
	BreakerClosed   = gobreaker.StateClosed
	BreakerHalfOpen = gobreaker.StateHalfOpen
	BreakerOpen     = gobreaker.StateOpen
)

// BreakerConfig configures a Breaker. Zero values take defaults.
type BreakerConfig struct {
	// Name identifies the breaker in state change callbacks.
	Name string

	// FailureThreshold is the number of consecutive failures that opens the
	// circuit. Default 5.
	FailureThreshold uint32

	// Timeout is how long the circuit stays open before a trial request is
	// let through. Default 30s.
	Timeout time.Duration

	// HalfOpenMaxRequests is the number of trial requests allowed while half
	// open. Default 1.
	HalfOpenMaxRequests uint32

	// IsFailure decides whether an error counts against the circuit. By
	// default only retryable errors do; a 400 says nothing about the
	// server's health.
	IsFailure func(err error) bool

	// OnStateChange is called on every transition.
	OnStateChange func(from, to BreakerState)
}

// Breaker stops calling a failing server for a while. It wraps a gobreaker
// circuit and reports a rejected call as errors.ErrCircuitOpen.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// NewBreaker returns a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "langfuse"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxRequests == 0 {
		cfg.HalfOpenMaxRequests = 1
	}
	isFailure := cfg.IsFailure
	if isFailure == nil {
		isFailure = IsRetryable
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isFailure(err)
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			cfg.OnStateChange(from, to)
		}
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrCircuitOpen, err)
	}
	return err
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	return b.cb.State()
}

// ConsecutiveFailures returns the current run of failures.
func (b *Breaker) ConsecutiveFailures() uint32 {
	return b.cb.Counts().ConsecutiveFailures
}
