package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type typedError struct {
	retryable bool
}

func (e *typedError) Error() string     { return "typed failure" }
func (e *typedError) IsRetryable() bool { return e.retryable }

func fastConfig() *Config {
	return &Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "typed retryable", err: &typedError{retryable: true}, expected: true},
		{name: "typed permanent", err: &typedError{retryable: false}, expected: false},
		{name: "rate limit text", err: errors.New("got 429 from upstream"), expected: true},
		{name: "server error text", err: errors.New("HTTP 503 Service Unavailable"), expected: true},
		{name: "timeout text", err: errors.New("request timed out"), expected: true},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), expected: true},
		{name: "plain failure", err: errors.New("invalid request body"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestDoIfRetryable_RetriesUntilExhausted(t *testing.T) {
	attempts := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		attempts++
		return &typedError{retryable: true}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial attempt + 2 retries
}

func TestDoIfRetryable_PermanentErrorStopsImmediately(t *testing.T) {
	attempts := 0
	permanent := errors.New("bad request")
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		attempts++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDoIfRetryable_SucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts == 1 {
			return &typedError{retryable: true}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDoIfRetryable_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := DoIfRetryable(ctx, fastConfig(), func() error {
		attempts++
		return &typedError{retryable: true}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDoIfRetryable_NilConfigUsesDefaults(t *testing.T) {
	err := DoIfRetryable(context.Background(), nil, func() error { return nil })
	assert.NoError(t, err)
}

func TestApplyJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 20; i++ {
		jittered := applyJitter(base, 0.1)
		assert.GreaterOrEqual(t, jittered, 90*time.Millisecond)
		assert.LessOrEqual(t, jittered, 110*time.Millisecond)
	}
	assert.Equal(t, base, applyJitter(base, 0))
}
