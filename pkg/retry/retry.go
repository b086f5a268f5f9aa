// Package retry implements exponential backoff with jitter for
// transient failures, primarily the AI fallback extractor's endpoint.
package retry

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0; +/- proportional jitter to avoid thundering herd
}

// DefaultConfig returns sensible defaults for network calls: 2 retries
// starting at 200ms, doubling, capped at 2s, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   2,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// retryableError is probed via errors.As-style interface assertion; the
// llm package's typed errors implement it.
type retryableError interface {
	IsRetryable() bool
}

// retryablePatterns catches transient failures that arrive as plain
// wrapped errors.
var retryablePatterns = []string{
	"429", "500", "502", "503", "504",
	"timeout", "timed out", "connection refused", "connection reset",
	"temporary failure", "no such host",
}

// IsRetryable reports whether an error is worth retrying. Typed errors
// answer for themselves; everything else is pattern-matched.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if typed, ok := err.(retryableError); ok {
		return typed.IsRetryable()
	}
	message := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(message, pattern) {
			return true
		}
	}
	return false
}

// DoIfRetryable executes fn, retrying only while the returned error is
// retryable. Respects context cancellation during waits. Returns the
// last error once retries are exhausted or the error is permanent.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(applyJitter(delay, cfg.JitterFactor)):
			}
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// applyJitter perturbs a delay by +/- delay*jitterFactor.
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}
