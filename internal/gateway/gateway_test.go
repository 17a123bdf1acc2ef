package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"arcadeshell/internal/testutils"
)

func newTestGateway(t *testing.T) (*Gateway, *testutils.RecordingLogger) {
	t.Helper()
	logger := &testutils.RecordingLogger{}
	g, err := New(logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g, logger
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGateway_WaitingPage(t *testing.T) {
	g, _ := newTestGateway(t)

	if g.mode != ModeWaiting {
		t.Fatalf("initial mode = %v, want waiting", g.mode)
	}

	rec := get(t, g, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	if !strings.Contains(rec.Body.String(), "waiting for the backend") {
		t.Errorf("waiting page not served: %s", rec.Body.String())
	}

	if rec := get(t, g, "/games/snake.js"); rec.Code != http.StatusNotFound {
		t.Errorf("non-root path status = %d, want 404", rec.Code)
	}
}

func TestGateway_FailurePage(t *testing.T) {
	g, _ := newTestGateway(t)
	g.ServeFailure()

	rec := get(t, g, "/")
	body := rec.Body.String()

	for _, want := range []string{
		"Connection Error",
		"Could not connect to the Infinity Arcade backend.",
		"Please ensure the backend service is running.",
		"window.go.bridge.Bridge.Retry()",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("failure page missing %q", want)
		}
	}

	if n := strings.Count(body, "<button"); n != 1 {
		t.Errorf("failure page has %d controls, want exactly 1", n)
	}
	for _, external := range []string{"<link", "<script", "src="} {
		if strings.Contains(body, external) {
			t.Errorf("failure page should be self-contained, found %q", external)
		}
	}

	if rec := get(t, g, "/index.html"); rec.Code != http.StatusOK {
		t.Errorf("/index.html status = %d, want 200", rec.Code)
	}
}

// The WebKitGTK 4.0 request bridge turns every request into a body-less GET and only
// carries 200 responses, so retry must not depend on a form submission or a redirect.
func TestGateway_FailurePageRetriesWithoutRequest(t *testing.T) {
	g, _ := newTestGateway(t)
	g.ServeFailure()

	body := strings.ToLower(get(t, g, "/").Body.String())
	for _, banned := range []string{"<form", "method=", "action=", "post"} {
		if strings.Contains(body, banned) {
			t.Errorf("failure page contains %q; retry must go through the bound bridge", banned)
		}
	}
}

func TestGateway_OnlyServesPages(t *testing.T) {
	g, _ := newTestGateway(t)

	for _, path := range []string{"/api/scores", "/retry", "/assets/app.js"} {
		if rec := get(t, g, path); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestGateway_PageRejectsWrites(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST / status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Errorf("Allow = %q", allow)
	}
}

func TestGateway_Head(t *testing.T) {
	g, _ := newTestGateway(t)

	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("HEAD / status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD wrote %d bytes", rec.Body.Len())
	}
}

func TestGateway_ModeSwitchIsLogged(t *testing.T) {
	g, logger := newTestGateway(t)

	g.ServeWaiting()
	if n := len(logger.Calls("DEBUG")); n != 0 {
		t.Errorf("unchanged mode logged %d times", n)
	}

	g.ServeFailure()
	g.ServeWaiting()
	if n := len(logger.Calls("DEBUG")); n != 2 {
		t.Errorf("logged %d mode changes, want 2", n)
	}
	if !strings.Contains(get(t, g, "/").Body.String(), "waiting for the backend") {
		t.Error("waiting page not restored after failure")
	}
}

func TestGateway_ConcurrentModeSwitches(t *testing.T) {
	g, _ := newTestGateway(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			g.ServeFailure()
			g.ServeWaiting()
		}()
		go func() {
			defer wg.Done()
			get(t, g, "/")
		}()
	}
	wg.Wait()
}

func TestMode_String(t *testing.T) {
	tests := map[Mode]string{
		ModeWaiting: "waiting",
		ModeFailed:  "failed",
		Mode(42):    "unknown",
	}
	for mode, want := range tests {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}
