package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfold/aggregatestore-go/eventstore"
	"github.com/eventfold/aggregatestore-go/user/shell"
)

func conflictError() error {
	return eventstore.ConcurrencyError{AggregateID: uuid.New(), Expected: 1, Actual: 2}
}

func Test_RetryWithBackoff_SucceedsOnFirstAttempt(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := shell.RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		return nil
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func Test_RetryWithBackoff_DoesNotRetryByDefault(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := shell.RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		return conflictError()
	})

	// assert
	assert.True(t, errors.Is(err, eventstore.ErrConcurrencyConflict))
	assert.Equal(t, 1, attempts)
}

func Test_RetryWithBackoff_RetriesConcurrencyConflicts(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := shell.RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return conflictError()
		}
		return nil
	}, shell.WithMaxAttempts(5), shell.WithBaseDelay(time.Millisecond))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func Test_RetryWithBackoff_GivesUpAfterMaxAttempts(t *testing.T) {
	// arrange
	attempts := 0

	// act
	err := shell.RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		return conflictError()
	}, shell.WithMaxAttempts(3), shell.WithBaseDelay(time.Millisecond))

	// assert
	assert.True(t, errors.Is(err, eventstore.ErrConcurrencyConflict))
	assert.Equal(t, 3, attempts)
}

func Test_RetryWithBackoff_FailsFastOnOtherErrors(t *testing.T) {
	// arrange
	attempts := 0
	permanent := errors.New("permanent failure")

	// act
	err := shell.RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		return permanent
	}, shell.WithMaxAttempts(5), shell.WithBaseDelay(time.Millisecond))

	// assert
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func Test_RetryWithBackoff_StopsWhenContextIsCanceled(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	// act
	err := shell.RetryWithBackoff(ctx, func(context.Context) error {
		attempts++
		cancel()
		return conflictError()
	}, shell.WithMaxAttempts(10), shell.WithBaseDelay(50*time.Millisecond))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func Test_RetryWithBackoff_RejectsInvalidOptions(t *testing.T) {
	noOp := func(context.Context) error { return nil }

	assert.ErrorIs(t,
		shell.RetryWithBackoff(context.Background(), noOp, shell.WithMaxAttempts(0)),
		shell.ErrInvalidMaxAttempts)
	assert.ErrorIs(t,
		shell.RetryWithBackoff(context.Background(), noOp, shell.WithBaseDelay(-time.Second)),
		shell.ErrNegativeBaseDelay)
	assert.ErrorIs(t,
		shell.RetryWithBackoff(context.Background(), noOp, shell.WithJitterFactor(1.5)),
		shell.ErrInvalidJitterFactor)
}
