package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CBIIT/status-report/domain"
)

func testLoggerRetry() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Only errors in tests
	}))
}

func fastConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:   maxAttempts,
		BaseDelay:     time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

func TestRetrier_Do(t *testing.T) {
	t.Run("should succeed on first attempt without retrying", func(t *testing.T) {
		retrier := NewRetrier(fastConfig(3), IsTransient, testLoggerRetry())

		attempts := 0
		err := retrier.Do(context.Background(), func() error {
			attempts++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("should retry transient failures until success", func(t *testing.T) {
		retrier := NewRetrier(fastConfig(5), IsTransient, testLoggerRetry())

		attempts := 0
		err := retrier.Do(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return fmt.Errorf("call failed: %w", domain.ErrInferenceTimeout)
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("should stop immediately on permanent errors", func(t *testing.T) {
		retrier := NewRetrier(fastConfig(5), IsTransient, testLoggerRetry())

		attempts := 0
		err := retrier.Do(context.Background(), func() error {
			attempts++
			return domain.ErrInference
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInference)
		assert.Equal(t, 1, attempts)
	})

	t.Run("should return the last error when attempts are exhausted", func(t *testing.T) {
		retrier := NewRetrier(fastConfig(3), IsTransient, testLoggerRetry())

		attempts := 0
		err := retrier.Do(context.Background(), func() error {
			attempts++
			return domain.ErrInferenceTimeout
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInferenceTimeout)
		assert.Equal(t, 3, attempts)
	})

	t.Run("should stop waiting when the context is cancelled", func(t *testing.T) {
		retrier := NewRetrier(RetryConfig{
			MaxAttempts:   5,
			BaseDelay:     time.Minute, // Long enough that cancellation wins
			MaxDelay:      time.Minute,
			BackoffFactor: 2.0,
		}, IsTransient, testLoggerRetry())

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := retrier.Do(ctx, func() error {
			return domain.ErrInferenceTimeout
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "inference timeout", err: domain.ErrInferenceTimeout, expected: true},
		{name: "wrapped inference timeout", err: fmt.Errorf("call: %w", domain.ErrInferenceTimeout), expected: true},
		{name: "transport failure", err: domain.ErrTransport, expected: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, expected: true},
		{name: "context cancelled", err: context.Canceled, expected: false},
		{name: "inference error", err: domain.ErrInference, expected: false},
		{name: "authentication error", err: domain.ErrAuthentication, expected: false},
		{name: "plain error", err: errors.New("boom"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}
