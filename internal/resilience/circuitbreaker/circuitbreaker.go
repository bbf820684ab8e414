// Package circuitbreaker wraps github.com/sony/gobreaker for the external
// services the scrape pipeline talks to, so one failing provider cannot drag
// the rest of a job down with it.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config tunes a single breaker.
type Config struct {
	// Name identifies the breaker in logs.
	Name string

	// MaxRequests bounds probe traffic while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counters.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker.
	FailureThreshold float64

	// MinRequests is how many calls must be seen before the ratio counts.
	MinRequests uint32
}

// DefaultConfig returns moderate settings suitable for most callers.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// LLMAPIConfig returns configuration for LLM extraction calls.
// Trips early so a degraded provider stops burning tokens.
func LLMAPIConfig(provider string) Config {
	return DefaultConfig(provider + "-api")
}

// SearchProviderConfig returns configuration for keyed search APIs.
// Providers throttle and recover quickly, so the open window stays short.
func SearchProviderConfig(engine string) Config {
	return Config{
		Name:             engine + "-search",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          120 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      5,
	}
}

// ContentFetchConfig returns configuration for article body fetching.
// Tolerant threshold: article sites fail individually all the time, and the
// breaker should only open on systemic egress problems.
func ContentFetchConfig() Config {
	return Config{
		Name:             "content-fetch",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          300 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      10,
	}
}

// CircuitBreaker is a thin named wrapper over gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New builds a breaker from cfg. State transitions are logged at warn level
// since an opening breaker usually means a provider outage.
func New(cfg Config) *CircuitBreaker {
	trip := func(counts gobreaker.Counts) bool {
		if counts.Requests < cfg.MinRequests {
			return false
		}
		ratio := float64(counts.TotalFailures) / float64(counts.Requests)
		return ratio >= cfg.FailureThreshold
	}
	logTransition := func(name string, from, to gobreaker.State) {
		slog.Warn("circuit breaker state changed",
			slog.String("circuit", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()))
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:          cfg.Name,
			MaxRequests:   cfg.MaxRequests,
			Interval:      cfg.Interval,
			Timeout:       cfg.Timeout,
			ReadyToTrip:   trip,
			OnStateChange: logTransition,
		}),
		name: cfg.Name,
	}
}

// Execute runs fn under the breaker. While the breaker is open it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State reports the breaker state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name reports the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether calls are currently being rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
