package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode represents the different ways a readiness probe or bootstrap step can fail
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeConnection
	ErrCodeTimeout
	ErrCodeStatus
	ErrCodeCancelled
	ErrCodeConfig
)

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeConnection:
		return "CONNECTION"
	case ErrCodeTimeout:
		return "TIMEOUT"
	case ErrCodeStatus:
		return "STATUS"
	case ErrCodeCancelled:
		return "CANCELLED"
	case ErrCodeConfig:
		return "CONFIG"
	default:
		return "UNKNOWN"
	}
}

// ProbeError represents a classified bootstrap failure with context and retry information
type ProbeError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Retryable bool              // whether the error is retryable
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *ProbeError) Error() string {
	if e == nil {
		return "probe error"
	}

	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}

	if e.Retryable {
		parts = append(parts, "retryable=true")
	}

	// Context keys are sorted so messages are stable
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
	}

	contextStr := ""
	if len(parts) > 0 {
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}

	if e.Err != nil {
		return e.Err.Error() + contextStr
	}
	return "probe error" + contextStr
}

func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *ProbeError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*ProbeError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable
func (e *ProbeError) IsRetryable() bool {
	if e == nil {
		return false
	}
	return e.Retryable
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *ProbeError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context (for logging interface compatibility)
func (e *ProbeError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *ProbeError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// NewProbeError creates a new probe error with the given parameters
func NewProbeError(op string, err error, code ErrorCode) *ProbeError {
	return &ProbeError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableCode(code),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewProbeErrorWithContext creates a new probe error with additional context
func NewProbeErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *ProbeError {
	probeErr := NewProbeError(op, err, code)
	if context != nil {
		probeErr.Context = make(map[string]string, len(context))
		for k, v := range context {
			probeErr.Context[k] = v
		}
	}
	return probeErr
}

// isRetryableCode reports whether failures of the given class are worth another probe.
// Connection errors, timeouts and non-200 answers are all the same to the poll loop.
func isRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeConnection, ErrCodeTimeout, ErrCodeStatus:
		return true
	default:
		return false
	}
}

func hasCode(err error, code ErrorCode) bool {
	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return probeErr.Code == code
	}
	return false
}

// IsConnection checks if the error is a "connection" error
func IsConnection(err error) bool {
	return hasCode(err, ErrCodeConnection)
}

// IsTimeout checks if the error is a "timeout" error
func IsTimeout(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

// IsStatus checks if the error is a non-success HTTP status
func IsStatus(err error) bool {
	return hasCode(err, ErrCodeStatus)
}

// IsConfig checks if the error is a configuration error
func IsConfig(err error) bool {
	return hasCode(err, ErrCodeConfig)
}

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return probeErr.Retryable
	}
	return false
}
