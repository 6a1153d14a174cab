package shell

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/eventfold/aggregatestore-go/eventstore"
)

const (
	defaultMaxAttempts  = 1
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// retryConfig holds configuration for exponential backoff retry logic.
type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// RetryOption configures the retry behavior.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets how often the function runs at most. The default of 1
// means no retry: the store itself never retries a concurrency conflict, retry
// policy belongs to the caller and is strictly opt-in.
func WithMaxAttempts(maxAttempts int) RetryOption {
	return func(config *retryConfig) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = maxAttempts

		return nil
	}
}

// WithBaseDelay sets the delay before the first retry; it doubles per attempt.
func WithBaseDelay(baseDelay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if baseDelay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = baseDelay

		return nil
	}
}

// WithJitterFactor sets the random jitter fraction added to each backoff delay.
func WithJitterFactor(jitterFactor float64) RetryOption {
	return func(config *retryConfig) error {
		if jitterFactor < 0.0 || jitterFactor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = jitterFactor

		return nil
	}
}

// RetryWithBackoff executes fn, retrying with exponential backoff when it fails
// with a concurrency conflict. All other errors fail fast: a conflict is the only
// error where reloading the aggregate and reapplying the mutation can succeed.
//
// Retry schedule with WithMaxAttempts(6): 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms
// base delays plus up to 30% jitter.
func RetryWithBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) error {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: baseDelay * 2^(attempt-1)
			delay := config.baseDelay * time.Duration(1<<(attempt-1))

			// Add jitter to prevent thundering herd
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec //math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			select {
			case <-time.After(backoffDelay):
				// Continue with retry
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, eventstore.ErrConcurrencyConflict) {
			return lastErr // Permanent failure
		}
	}

	return lastErr // Max attempts reached
}
