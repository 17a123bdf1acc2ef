package app

import (
	"context"
	"fmt"
	"net/url"

	"arcadeshell/internal/bootstrap"
	"arcadeshell/internal/bridge"
	"arcadeshell/internal/gateway"
	"arcadeshell/internal/infrastructure/errors"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Runtime is the subset of the Wails runtime the shell window uses
type Runtime interface {
	WindowReloadApp(ctx context.Context)
	WindowExecJS(ctx context.Context, js string)
	WindowIsMinimised(ctx context.Context) bool
	WindowUnminimise(ctx context.Context)
	WindowShow(ctx context.Context)
}

type wailsRuntime struct{}

func (wailsRuntime) WindowReloadApp(ctx context.Context)         { runtime.WindowReloadApp(ctx) }
func (wailsRuntime) WindowExecJS(ctx context.Context, js string) { runtime.WindowExecJS(ctx, js) }
func (wailsRuntime) WindowIsMinimised(ctx context.Context) bool  { return runtime.WindowIsMinimised(ctx) }
func (wailsRuntime) WindowUnminimise(ctx context.Context)        { runtime.WindowUnminimise(ctx) }
func (wailsRuntime) WindowShow(ctx context.Context)              { runtime.WindowShow(ctx) }

// window is the native window as seen by the bootstrap controller. The waiting and failure
// pages come from the gateway on the shell origin; the backend UI is loaded by navigating the
// webview to it directly.
type window struct {
	ctx     context.Context
	runtime Runtime
	gateway *gateway.Gateway
}

var _ bootstrap.Window = (*window)(nil)

func (w *window) Load(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewProbeErrorWithContext("load", fmt.Errorf("backend URL %q is not an absolute http(s) URL", rawURL),
			errors.ErrCodeConfig, map[string]string{"url": rawURL})
	}
	w.runtime.WindowExecJS(w.ctx, bridge.NavigateScript(u.String()))
	return nil
}

func (w *window) ShowFailure() error {
	w.gateway.ServeFailure()
	w.runtime.WindowReloadApp(w.ctx)
	return nil
}

func (w *window) ShowWaiting() error {
	w.gateway.ServeWaiting()
	w.runtime.WindowReloadApp(w.ctx)
	return nil
}

func (w *window) Focus() error {
	if w.runtime.WindowIsMinimised(w.ctx) {
		w.runtime.WindowUnminimise(w.ctx)
	}
	w.runtime.WindowShow(w.ctx)
	return nil
}

func (w *window) Exec(js string) error {
	w.runtime.WindowExecJS(w.ctx, js)
	return nil
}
