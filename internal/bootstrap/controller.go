// Package bootstrap owns the shell window handle and the backend readiness state machine.
//
// A bootstrap attempt starts in StateProbing with a zero failure counter, probes the backend
// once per tick and ends in StateReady (backend URL loaded into the window exactly once) or
// StateFailed (static failure page shown). Closing the window detaches the handle and cancels
// the attempt; nothing scheduled before the close may touch a window afterwards.
package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"arcadeshell/internal/infrastructure/errors"
	"arcadeshell/internal/infrastructure/logging"
	"arcadeshell/internal/probe"
)

var (
	// ErrNoWindow is returned when an operation needs an attached window and there is none
	ErrNoWindow = stderrors.New("no window attached")
	// ErrNotFailed is returned by Retry outside StateFailed
	ErrNotFailed = stderrors.New("bootstrap has not failed")
)

// Window is the controller's view of the native window.
// Implementations must not call back into the Controller synchronously.
type Window interface {
	// Load replaces the window content with the backend UI at url
	Load(url string) error
	// ShowFailure displays the static failure page with its single retry control
	ShowFailure() error
	// ShowWaiting displays the waiting page shown while probing
	ShowWaiting() error
	// Focus restores the window if minimised and brings it to the front
	Focus() error
	// Exec evaluates a script in the loaded page
	Exec(js string) error
}

// Settings configures the readiness loop
type Settings struct {
	BackendURL    string
	MaxRetries    int
	RetryInterval time.Duration

	// PageScripts are evaluated in the page after every load once the backend is displayed
	PageScripts []string
}

// Controller drives bootstrap attempts for at most one window
type Controller struct {
	prober   probe.Prober
	settings Settings
	logger   logging.Logger

	mu       sync.Mutex
	window   Window
	state    State
	failures int
	session  uint64
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewController creates a controller in StateIdle with no window attached
func NewController(prober probe.Prober, settings Settings, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Controller{
		prober:   prober,
		settings: settings,
		logger:   logger,
		state:    StateIdle,
	}
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate attaches w and runs a full bootstrap attempt. With a window already attached it
// only focuses the existing one; the application never holds two windows.
func (c *Controller) Activate(ctx context.Context, w Window) error {
	if w == nil {
		return ErrNoWindow
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.window != nil {
		c.logger.Debug("Window already attached, focusing it")
		return c.window.Focus()
	}

	c.window = w
	c.startLocked(ctx)
	return nil
}

// Retry restarts the bootstrap from a zero counter. Only valid after the budget ran out.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.window == nil {
		return ErrNoWindow
	}
	if c.state != StateFailed {
		return ErrNotFailed
	}

	c.logger.Info("Retrying backend connection")
	if err := c.window.ShowWaiting(); err != nil {
		logging.LogError(c.logger, err, "show_waiting", nil)
	}
	c.startLocked(ctx)
	return nil
}

// Detach drops the window handle and cancels any attempt in progress
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.window != nil {
		c.logger.Debug("Window detached")
	}
	c.window = nil
	c.state = StateIdle
}

// SecondInstance handles another launch of the application by focusing the existing window
func (c *Controller) SecondInstance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.window == nil {
		return ErrNoWindow
	}
	c.logger.Info("Second instance launched, focusing existing window")
	return c.window.Focus()
}

// DomReady runs the page scripts after the backend UI finished loading. Outside StateReady
// the loaded page is the shell's own and nothing is injected.
func (c *Controller) DomReady() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.window == nil || c.state != StateReady {
		return
	}

	for _, script := range c.settings.PageScripts {
		if err := c.window.Exec(script); err != nil {
			logging.LogError(c.logger, err, "inject_script", nil)
		}
	}
}

// Wait blocks until the current attempt reaches a terminal state or is cancelled, and
// returns the state at that point
func (c *Controller) Wait(ctx context.Context) (State, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return c.State(), ctx.Err()
		}
	}
	return c.State(), nil
}

// startLocked begins a new attempt. c.mu must be held.
func (c *Controller) startLocked(parent context.Context) {
	if c.cancel != nil {
		c.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	c.session++
	c.failures = 0
	c.state = StateProbing
	c.cancel = cancel
	c.done = done

	go c.run(ctx, c.session, done)
}

func (c *Controller) run(ctx context.Context, session uint64, done chan struct{}) {
	defer close(done)

	start := time.Now()
	config := &errors.RetryConfig{
		MaxAttempts: c.settings.MaxRetries,
		Interval:    c.settings.RetryInterval,
		RetryableErrors: []errors.ErrorCode{
			errors.ErrCodeConnection,
			errors.ErrCodeTimeout,
			errors.ErrCodeStatus,
		},
		OnFailure: func(attempt int, err error) {
			c.recordFailure(session, attempt, err)
		},
	}

	err := errors.WithRetryContext(ctx, config, c.prober.Probe, "backend probe")

	switch {
	case err == nil:
		c.finish(session, StateReady, start)
	case ctx.Err() != nil:
		c.logger.Debug("Bootstrap attempt cancelled", "session", session)
	case stderrors.Is(err, errors.ErrBudgetExhausted):
		c.logger.Error("Backend did not start in time", "attempts", c.settings.MaxRetries)
		c.finish(session, StateFailed, start)
	case errors.IsConfig(err):
		c.logger.Error("Backend URL cannot be probed", "url", c.settings.BackendURL, "error", err)
		c.finish(session, StateFailed, start)
	default:
		logging.LogError(c.logger, err, "bootstrap", nil)
		c.finish(session, StateFailed, start)
	}
}

func (c *Controller) recordFailure(session uint64, attempt int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session {
		return
	}
	c.failures = attempt
	c.logger.Info(fmt.Sprintf("Waiting for backend... (%d/%d)", attempt, c.settings.MaxRetries),
		"reason", failureReason(err))
}

func failureReason(err error) string {
	switch {
	case errors.IsTimeout(err):
		return "timeout"
	case errors.IsStatus(err):
		return "status"
	case errors.IsConnection(err):
		return "connection"
	default:
		return "unknown"
	}
}

// finish applies a terminal state if session is still current and the window is alive.
// The window call happens under the lock so a concurrent Detach cannot interleave with it.
func (c *Controller) finish(session uint64, state State, start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session || c.window == nil {
		return
	}

	c.state = state
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	var err error
	switch state {
	case StateReady:
		c.logger.Info("Backend is ready, loading UI...", "url", c.settings.BackendURL)
		err = c.window.Load(c.settings.BackendURL)
	case StateFailed:
		err = c.window.ShowFailure()
	}
	if err != nil {
		logging.LogError(c.logger, err, "window_"+state.String(), nil)
	}

	logging.LogOperation(c.logger, "bootstrap", time.Since(start), map[string]interface{}{
		"state":    state.String(),
		"failures": c.failures,
	})
}
