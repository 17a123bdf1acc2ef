package errors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ClassifyError maps a raw transport error onto the probe error taxonomy
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}

	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return probeErr.Code
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return ErrCodeCancelled
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return ErrCodeConnection
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrCodeTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrCodeConnection
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ErrCodeTimeout
	}

	// Fall back to message matching for wrapped platform errors
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused"):
		return ErrCodeConnection
	case strings.Contains(errStr, "connection reset"):
		return ErrCodeConnection
	case strings.Contains(errStr, "network is unreachable"):
		return ErrCodeConnection
	case strings.Contains(errStr, "eof"):
		return ErrCodeConnection
	case strings.Contains(errStr, "timeout"):
		return ErrCodeTimeout
	default:
		return ErrCodeUnknown
	}
}

// WrapProbeError wraps a transport error with probe error context
func WrapProbeError(op string, err error, fields map[string]string) error {
	if err == nil {
		return nil
	}

	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return err
	}

	code := ClassifyError(err)
	if code == ErrCodeUnknown {
		// Anything the transport returns short of a response is treated as the backend
		// not being there yet.
		code = ErrCodeConnection
	}
	return NewProbeErrorWithContext(op, err, code, fields)
}
