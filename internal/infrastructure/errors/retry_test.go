package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type recordingRetryLogger struct {
	messages []string
}

func (r *recordingRetryLogger) Printf(format string, v ...interface{}) {
	r.messages = append(r.messages, fmt.Sprintf(format, v...))
}

func fastConfig(maxAttempts int) *RetryConfig {
	config := DefaultRetryConfig()
	config.MaxAttempts = maxAttempts
	config.Interval = time.Millisecond
	return config
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 60 {
		t.Errorf("Expected MaxAttempts to be 60, got %d", config.MaxAttempts)
	}

	if config.Interval != time.Second {
		t.Errorf("Expected Interval to be 1s, got %v", config.Interval)
	}

	expectedCodes := []ErrorCode{ErrCodeConnection, ErrCodeTimeout, ErrCodeStatus}
	if len(config.RetryableErrors) != len(expectedCodes) {
		t.Fatalf("Expected %d retryable error codes, got %d", len(expectedCodes), len(config.RetryableErrors))
	}
	for i, code := range expectedCodes {
		if config.RetryableErrors[i] != code {
			t.Errorf("RetryableErrors[%d] = %v, want %v", i, config.RetryableErrors[i], code)
		}
	}
}

func TestWithRetry_Success(t *testing.T) {
	callCount := 0
	operation := func(ctx context.Context) error {
		callCount++
		return nil
	}

	if err := WithRetryContext(context.Background(), fastConfig(3), operation, ""); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if callCount != 1 {
		t.Errorf("Expected operation to be called once, got %d", callCount)
	}
}

func TestWithRetry_SuccessAfterFailures(t *testing.T) {
	config := fastConfig(60)

	var failures []int
	config.OnFailure = func(attempt int, err error) {
		failures = append(failures, attempt)
	}

	callCount := 0
	operation := func(ctx context.Context) error {
		callCount++
		if callCount <= 5 {
			return NewProbeError("probe", errors.New("connection refused"), ErrCodeConnection)
		}
		return nil
	}

	if err := WithRetryContext(context.Background(), config, operation, ""); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if callCount != 6 {
		t.Errorf("Expected operation to be called 6 times, got %d", callCount)
	}

	if len(failures) != 5 {
		t.Fatalf("Expected 5 failure callbacks, got %d", len(failures))
	}
	for i, attempt := range failures {
		if attempt != i+1 {
			t.Errorf("failure %d reported attempt %d", i, attempt)
		}
	}
}

func TestWithRetry_MixedFailureKindsAreEquivalent(t *testing.T) {
	errs := []error{
		NewProbeError("probe", errors.New("refused"), ErrCodeConnection),
		NewProbeError("probe", errors.New("slow"), ErrCodeTimeout),
		NewProbeError("probe", errors.New("503"), ErrCodeStatus),
	}

	callCount := 0
	operation := func(ctx context.Context) error {
		defer func() { callCount++ }()
		if callCount < len(errs) {
			return errs[callCount]
		}
		return nil
	}

	if err := WithRetryContext(context.Background(), fastConfig(10), operation, ""); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if callCount != 4 {
		t.Errorf("Expected 4 calls, got %d", callCount)
	}
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	callCount := 0
	operation := func(ctx context.Context) error {
		callCount++
		return NewProbeError("load", errors.New("bad url"), ErrCodeConfig)
	}

	err := WithRetryContext(context.Background(), fastConfig(5), operation, "")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if callCount != 1 {
		t.Errorf("Expected operation to be called once, got %d", callCount)
	}

	if !IsConfig(err) {
		t.Error("Expected Config error")
	}
	if errors.Is(err, ErrBudgetExhausted) {
		t.Error("non-retryable failure should not report budget exhaustion")
	}
}

func TestWithRetry_BudgetExhausted(t *testing.T) {
	config := fastConfig(60)

	callCount := 0
	operation := func(ctx context.Context) error {
		callCount++
		return NewProbeError("probe", errors.New("connection refused"), ErrCodeConnection)
	}

	err := WithRetryContext(context.Background(), config, operation, "")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if callCount != 60 {
		t.Errorf("Expected exactly 60 attempts, got %d", callCount)
	}

	if !errors.Is(err, ErrBudgetExhausted) {
		t.Errorf("Expected ErrBudgetExhausted, got %v", err)
	}
	if !IsConnection(err) {
		t.Error("Expected the last probe error to stay reachable")
	}

	expectedMsg := "failed after 60 attempts"
	if !strings.Contains(err.Error(), expectedMsg) {
		t.Errorf("Expected error message to contain '%s', got '%s'", expectedMsg, err.Error())
	}
}

func TestWithRetry_NoWaitAfterLastAttempt(t *testing.T) {
	config := DefaultRetryConfig()
	config.MaxAttempts = 1
	config.Interval = time.Hour

	start := time.Now()
	err := WithRetryContext(context.Background(), config, func(ctx context.Context) error {
		return NewProbeError("probe", nil, ErrCodeTimeout)
	}, "")

	if !errors.Is(err, ErrBudgetExhausted) {
		t.Errorf("Expected ErrBudgetExhausted, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("loop waited after the final attempt")
	}
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := DefaultRetryConfig()
	config.Interval = 100 * time.Millisecond

	callCount := 0
	operation := func(ctx context.Context) error {
		callCount++
		if callCount == 1 {
			go func() {
				time.Sleep(10 * time.Millisecond)
				cancel()
			}()
		}
		return NewProbeError("probe", errors.New("connection failed"), ErrCodeConnection)
	}

	err := WithRetryContext(ctx, config, operation, "")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}

	if callCount != 1 {
		t.Errorf("Expected operation to be called once, got %d", callCount)
	}
}

func TestWithRetry_CancelledDuringOperationIsNotCounted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := fastConfig(5)

	failures := 0
	config.OnFailure = func(int, error) { failures++ }

	err := WithRetryContext(ctx, config, func(ctx context.Context) error {
		cancel()
		return NewProbeError("probe", ctx.Err(), ErrCodeConnection)
	}, "")

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if failures != 0 {
		t.Errorf("Expected no failures to be reported, got %d", failures)
	}
}

func TestWithRetry_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithRetryContext(ctx, fastConfig(3), func(ctx context.Context) error {
		called = true
		return nil
	}, "")

	if called {
		t.Error("operation should not run on a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWithRetry_NilConfig(t *testing.T) {
	callCount := 0
	err := WithRetryContext(context.Background(), nil, func(ctx context.Context) error {
		callCount++
		return nil
	}, "")

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected operation to be called once, got %d", callCount)
	}
}

func TestShouldRetry(t *testing.T) {
	config := DefaultRetryConfig()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"connection error", NewProbeError("probe", errors.New("refused"), ErrCodeConnection), true},
		{"timeout error", NewProbeError("probe", errors.New("timeout"), ErrCodeTimeout), true},
		{"status error", NewProbeError("probe", errors.New("503"), ErrCodeStatus), true},
		{"cancelled error", NewProbeError("probe", errors.New("cancelled"), ErrCodeCancelled), false},
		{"config error", NewProbeError("load", errors.New("bad"), ErrCodeConfig), false},
		{"plain error", errors.New("regular error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := shouldRetry(tt.err, config); result != tt.expected {
				t.Errorf("shouldRetry() = %v, expected %v for error: %v", result, tt.expected, tt.err)
			}
		})
	}

	narrow := DefaultRetryConfig()
	narrow.RetryableErrors = []ErrorCode{ErrCodeTimeout}
	if shouldRetry(NewProbeError("probe", nil, ErrCodeConnection), narrow) {
		t.Error("codes outside RetryableErrors should not be retried")
	}
}

func TestWithRetryContext_LogsProgress(t *testing.T) {
	recorder := &recordingRetryLogger{}
	SetRetryLogger(recorder)
	defer SetRetryLogger(nil)

	callCount := 0
	err := WithRetryContext(context.Background(), fastConfig(5), func(ctx context.Context) error {
		callCount++
		if callCount < 3 {
			return NewProbeError("probe", errors.New("refused"), ErrCodeConnection)
		}
		return nil
	}, "backend probe")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(recorder.messages) != 3 {
		t.Fatalf("Expected 3 log messages, got %d: %v", len(recorder.messages), recorder.messages)
	}
	if !strings.Contains(recorder.messages[0], "backend probe failed (attempt 1/5)") {
		t.Errorf("unexpected first message %q", recorder.messages[0])
	}
	if !strings.Contains(recorder.messages[2], "backend probe succeeded after 3 attempts") {
		t.Errorf("unexpected last message %q", recorder.messages[2])
	}
}
