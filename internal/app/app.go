package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"arcadeshell/internal/bootstrap"
	"arcadeshell/internal/bridge"
	"arcadeshell/internal/config"
	"arcadeshell/internal/gateway"
	"arcadeshell/internal/infrastructure/logging"
	"arcadeshell/internal/probe"

	"github.com/wailsapp/wails/v2/pkg/options"
)

const (
	// shutdownWaitTime bounds how long Shutdown waits for a cancelled attempt to unwind
	shutdownWaitTime = 2 * time.Second
)

// App struct represents the main application
type App struct {
	mu         sync.Mutex
	ctx        context.Context
	config     *config.Config
	controller *bootstrap.Controller
	gateway    *gateway.Gateway
	bridge     *bridge.Bridge
	runtime    Runtime
	logger     logging.Logger
}

// NewApp creates a new App application struct with dependency injection
func NewApp(cfg *config.Config, platform string, logger logging.Logger) (*App, error) {
	return newApp(cfg, platform, logger, wailsRuntime{}, bridge.SystemOpener{})
}

func newApp(cfg *config.Config, platform string, logger logging.Logger, rt Runtime, opener bridge.Opener) (*App, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gw, err := gateway.New(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	a := &App{
		config:  cfg,
		gateway: gw,
		runtime: rt,
		logger:  logger,
	}

	policy := bridge.NewPolicy(cfg.Origins(), opener, logger)
	a.bridge = bridge.NewBridge(platform, policy, a.retry)

	a.controller = bootstrap.NewController(
		probe.NewHTTPProber(cfg.BackendURL, cfg.ProbeTimeout),
		bootstrap.Settings{
			BackendURL:    cfg.BackendURL,
			MaxRetries:    cfg.MaxRetries,
			RetryInterval: cfg.RetryInterval,
			PageScripts:   bridge.PageScripts(a.bridge.Capabilities(), cfg.HintOverlay),
		},
		logger,
	)
	return a, nil
}

// Startup is called at application startup. The window exists at this point, so this is
// where the bootstrap attempt begins.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	a.logger.Info("Starting shell",
		"backend", a.config.BackendURL,
		"packaging", string(a.config.Packaging),
		"platform", a.bridge.Capabilities().Platform)

	if err := a.controller.Activate(ctx, a.window(ctx)); err != nil {
		logging.LogError(a.logger, err, "activate", nil)
	}
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {
	a.controller.DomReady()
}

// BeforeClose is called when the application is about to quit. Closing the window always
// ends the application.
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	a.controller.Detach()
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Info("Starting application shutdown sequence...")

	a.controller.Detach()

	waitCtx, cancel := context.WithTimeout(ctx, shutdownWaitTime)
	defer cancel()
	if _, err := a.controller.Wait(waitCtx); err != nil {
		a.logger.Warn("Bootstrap attempt did not stop in time", "error", err)
	}

	a.logger.Info("Application shutdown completed")
}

// SecondInstance is called on the running instance when the application is launched again
func (a *App) SecondInstance(data options.SecondInstanceData) {
	a.logger.Debug("Second instance launched",
		"args", data.Args,
		"working_directory", data.WorkingDirectory)

	if err := a.controller.SecondInstance(); err != nil {
		logging.LogError(a.logger, err, "second_instance", nil)
	}
}

// Gateway returns the handler the asset server delegates to
func (a *App) Gateway() *gateway.Gateway {
	return a.gateway
}

// Bridge returns the object bound into the page
func (a *App) Bridge() *bridge.Bridge {
	return a.bridge
}

func (a *App) retry() error {
	a.mu.Lock()
	ctx := a.ctx
	a.mu.Unlock()
	if ctx == nil {
		return bootstrap.ErrNoWindow
	}
	if err := a.controller.Retry(ctx); err != nil {
		a.logger.Warn("Retry ignored", "state", a.controller.State().String(), "error", err)
		return err
	}
	return nil
}

func (a *App) window(ctx context.Context) *window {
	return &window{
		ctx:     ctx,
		runtime: a.runtime,
		gateway: a.gateway,
	}
}
