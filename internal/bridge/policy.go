package bridge

import (
	"net/url"
	"strings"

	"arcadeshell/internal/infrastructure/logging"
	"arcadeshell/internal/types"

	"github.com/skratchdot/open-golang/open"
)

// ShellOrigins are the origins the webview uses for content served through the shell itself
var ShellOrigins = []string{
	"wails://wails",
	"wails://wails.localhost",
	"http://wails.localhost",
}

// Opener hands a URL to something outside the shell window
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// SystemOpener opens URLs with the OS default handler, usually the system browser
type SystemOpener struct{}

func (SystemOpener) Open(url string) error {
	return open.Start(url)
}

// Policy decides what happens when the loaded page tries to open a window
type Policy struct {
	origins map[string]struct{}
	opener  Opener
	logger  logging.Logger
}

// NewPolicy allows new windows for any of origins (and the shell's own origins) and sends
// everything else to opener
func NewPolicy(origins []string, opener Opener, logger logging.Logger) *Policy {
	if opener == nil {
		opener = SystemOpener{}
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	p := &Policy{
		origins: make(map[string]struct{}, len(origins)+len(ShellOrigins)),
		opener:  opener,
		logger:  logger,
	}
	for _, o := range append(append([]string(nil), origins...), ShellOrigins...) {
		if origin := originOf(o); origin != "" {
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

// Decide applies the window-open policy to rawURL
func (p *Policy) Decide(rawURL string) types.WindowDecision {
	origin := originOf(rawURL)
	if origin == "" {
		p.logger.Warn("Refusing to open malformed URL", "url", rawURL)
		return types.WindowDecision{Action: types.WindowDeny, URL: rawURL}
	}

	if _, ok := p.origins[origin]; ok {
		return types.WindowDecision{Action: types.WindowAllow, URL: rawURL}
	}

	// Only web and mail links leave the shell; anything else could launch arbitrary handlers
	if !externalScheme(rawURL) {
		p.logger.Warn("Refusing to open URL with unsupported scheme", "url", rawURL)
		return types.WindowDecision{Action: types.WindowDeny, URL: rawURL}
	}

	if err := p.opener.Open(rawURL); err != nil {
		logging.LogError(p.logger, err, "open_external", map[string]interface{}{"url": rawURL})
		return types.WindowDecision{Action: types.WindowDeny, URL: rawURL}
	}

	p.logger.Debug("Opened link in system browser", "url", rawURL)
	return types.WindowDecision{Action: types.WindowDeny, URL: rawURL, External: true}
}

// originOf returns the lower-cased scheme://host of raw, or "" if raw is not an absolute URL.
// mailto: links have no host; their origin is the scheme alone.
func originOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "mailto" {
		if u.Opaque == "" {
			return ""
		}
		return scheme + ":"
	}
	if u.Host == "" {
		return ""
	}
	return scheme + "://" + strings.ToLower(u.Host)
}

func externalScheme(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return true
	default:
		return false
	}
}
