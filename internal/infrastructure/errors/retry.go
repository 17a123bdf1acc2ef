package errors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrBudgetExhausted is returned when every attempt allowed by a RetryConfig has failed
var ErrBudgetExhausted = errors.New("retry budget exhausted")

// RetryLogger defines the interface for logging retry operations
type RetryLogger interface {
	Printf(format string, v ...interface{})
}

// RetryConfig holds configuration for a constant-interval retry loop
type RetryConfig struct {
	MaxAttempts     int           // Maximum number of attempts, including the first
	Interval        time.Duration // Fixed delay between the end of one attempt and the start of the next
	RetryableErrors []ErrorCode   // Specific error codes to retry

	// OnFailure observes every failed attempt. attempt is 1-based.
	OnFailure func(attempt int, err error)
}

// Package-level logger variable that can be set by callers
var retryLogger RetryLogger

// DefaultRetryConfig returns the backend readiness budget: 60 attempts one second apart
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 60,
		Interval:    time.Second,
		RetryableErrors: []ErrorCode{
			ErrCodeConnection,
			ErrCodeTimeout,
			ErrCodeStatus,
		},
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func(ctx context.Context) error

// SetRetryLogger sets the package-level logger for retry operations
func SetRetryLogger(logger RetryLogger) {
	retryLogger = logger
}

func logRetryMessage(format string, v ...interface{}) {
	if retryLogger != nil {
		retryLogger.Printf(format, v...)
	}
}

func withRetryImpl(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if operationName == "" {
		operationName = "operation"
	}

	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s cancelled: %w", operationName, err)
		}

		err := operation(ctx)
		if err == nil {
			if attempt > 0 {
				logRetryMessage("%s succeeded after %d attempts", operationName, attempt+1)
			}
			return nil
		}

		// A cancelled context means the caller stopped caring; the failure is not counted
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s cancelled: %w", operationName, ctxErr)
		}

		lastErr = err
		if config.OnFailure != nil {
			config.OnFailure(attempt+1, err)
		}

		if !shouldRetry(err, config) {
			logRetryMessage("%s failed with non-retryable error: %v", operationName, err)
			return err
		}

		// Don't wait after the last attempt
		if attempt == config.MaxAttempts-1 {
			break
		}

		logRetryMessage("%s failed (attempt %d/%d), retrying in %v: %v",
			operationName, attempt+1, config.MaxAttempts, config.Interval, err)

		if err := sleep(ctx, config.Interval); err != nil {
			return fmt.Errorf("%s cancelled during retry: %w", operationName, err)
		}
	}

	if lastErr == nil {
		return fmt.Errorf("%s: %w", operationName, ErrBudgetExhausted)
	}
	return fmt.Errorf("%s failed after %d attempts: %w: %w", operationName, config.MaxAttempts, ErrBudgetExhausted, lastErr)
}

// sleep waits for d on a stoppable timer, returning early if ctx is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithRetryContext executes an operation with retry logic and names it in log output
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	return withRetryImpl(ctx, config, operation, operationName)
}

// shouldRetry determines if an error should be retried based on configuration
func shouldRetry(err error, config *RetryConfig) bool {
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		return false
	}

	if !probeErr.IsRetryable() {
		return false
	}

	return slices.Contains(config.RetryableErrors, probeErr.Code)
}
