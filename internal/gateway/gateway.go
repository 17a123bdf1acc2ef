// Package gateway is the HTTP handler behind the shell's own origin. It serves the page shown
// while the backend is polled and the failure page shown when polling gave up. Once the
// backend is ready the window navigates away from this origin entirely.
package gateway

import (
	"embed"
	"fmt"
	"net/http"
	"sync"

	"arcadeshell/internal/infrastructure/logging"
)

//go:embed pages/*.html
var pages embed.FS

// Mode selects which page the gateway serves
type Mode int

const (
	ModeWaiting Mode = iota
	ModeFailed
)

// String returns the mode name used in logs
func (m Mode) String() string {
	switch m {
	case ModeWaiting:
		return "waiting"
	case ModeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Gateway implements http.Handler for the shell's asset server. Every response it produces
// for the page is a 200 GET, which is all the legacy WebKitGTK request bridge can carry.
type Gateway struct {
	logger  logging.Logger
	waiting []byte
	failure []byte

	mu   sync.RWMutex
	mode Mode
}

// New creates a gateway in ModeWaiting
func New(logger logging.Logger) (*Gateway, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	waiting, err := pages.ReadFile("pages/waiting.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read waiting page: %w", err)
	}
	failure, err := pages.ReadFile("pages/failure.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read failure page: %w", err)
	}

	return &Gateway{
		logger:  logger,
		waiting: waiting,
		failure: failure,
		mode:    ModeWaiting,
	}, nil
}

// ServeFailure switches to the static failure page
func (g *Gateway) ServeFailure() {
	g.setMode(ModeFailed)
}

// ServeWaiting switches to the waiting page
func (g *Gateway) ServeWaiting() {
	g.setMode(ModeWaiting)
}

func (g *Gateway) setMode(mode Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.mode != mode {
		g.logger.Debug("Gateway mode changed", "from", g.mode.String(), "to", mode.String())
	}
	g.mode = mode
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	g.mu.RLock()
	page := g.waiting
	if g.mode == ModeFailed {
		page = g.failure
	}
	g.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write(page)
	}
}
