// Package probe checks whether the backend HTTP service is answering.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"arcadeshell/internal/infrastructure/errors"
)

const (
	// DefaultTimeout bounds a single readiness request
	DefaultTimeout = time.Second

	// drainLimit caps how much of a response body is read before closing, so keep-alive
	// connections can be reused without pulling a whole page
	drainLimit = 64 << 10
)

// Prober reports whether the backend is ready
type Prober interface {
	Probe(ctx context.Context) error
}

// HTTPProber issues a GET to a fixed URL and treats 200 OK as ready
type HTTPProber struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPProber creates a prober for url. A non-positive timeout falls back to DefaultTimeout.
func NewHTTPProber(url string, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil // loopback backend; never route through a system proxy

	return &HTTPProber{
		url:     url,
		timeout: timeout,
		client: &http.Client{
			Transport: transport,
			// A redirect is an answer, but not a 200 from the backend root
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Probe performs one readiness request. It returns nil for 200 OK and a classified
// *errors.ProbeError otherwise.
func (p *HTTPProber) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return errors.NewProbeErrorWithContext("probe", err, errors.ErrCodeConfig, map[string]string{
			"url": p.url,
		})
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.WrapProbeError("probe", err, map[string]string{"url": p.url})
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	if resp.StatusCode != http.StatusOK {
		return errors.NewProbeErrorWithContext("probe",
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			errors.ErrCodeStatus,
			map[string]string{
				"url":    p.url,
				"status": strconv.Itoa(resp.StatusCode),
			})
	}

	return nil
}
