// Package bridge is everything the page inside the shell can see: a frozen capability
// object, the window-open hook, the retry control and the scripts injected after the
// backend UI loads.
package bridge

import (
	"fmt"

	"arcadeshell/internal/types"
)

// RetryFunc starts a new bootstrap attempt after a failure
type RetryFunc func() error

// Bridge is bound into the webview. Its exported methods are the entire API surface the
// page gets, so keep it to read-only data, the window-open hook and retry.
type Bridge struct {
	policy       *Policy
	retry        RetryFunc
	capabilities types.Capabilities
}

// NewBridge creates a bridge reporting platform, deciding window requests with policy and
// forwarding the failure page's retry control to retry
func NewBridge(platform string, policy *Policy, retry RetryFunc) *Bridge {
	return &Bridge{
		policy: policy,
		retry:  retry,
		capabilities: types.Capabilities{
			Platform: platform,
			IsShell:  true,
		},
	}
}

// Capabilities returns the platform identifier and the in-shell marker
func (b *Bridge) Capabilities() types.Capabilities {
	return b.capabilities
}

// RequestWindow is called by the page before opening a window for url
func (b *Bridge) RequestWindow(url string) types.WindowDecision {
	return b.policy.Decide(url)
}

// Retry is the failure page's only control
func (b *Bridge) Retry() error {
	if b.retry == nil {
		return fmt.Errorf("retry is not available")
	}
	return b.retry()
}
