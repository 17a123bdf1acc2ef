package types

// Capabilities is the read-only object exposed to the page running inside the shell
type Capabilities struct {
	Platform string `json:"platform"`
	IsShell  bool   `json:"isShell"`
}

// WindowAction is the outcome of a request to open a new window
type WindowAction string

const (
	// WindowAllow lets the page open the URL in a new in-app window
	WindowAllow WindowAction = "allow"
	// WindowDeny suppresses in-app navigation; the URL may have gone to the system browser
	WindowDeny WindowAction = "deny"
)

// WindowDecision is returned to the page for every window-open request
type WindowDecision struct {
	Action   WindowAction `json:"action"`
	URL      string       `json:"url"`
	External bool         `json:"external"` // handed to the OS default handler
}
