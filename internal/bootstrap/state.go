package bootstrap

// State is a bootstrap attempt's position in the readiness state machine
type State int

const (
	// StateIdle means no attempt is running: before the first activation or after the window closed
	StateIdle State = iota
	// StateProbing means the backend is being polled
	StateProbing
	// StateReady is terminal: the backend answered and its URL was loaded
	StateReady
	// StateFailed is terminal: the retry budget ran out and the failure page is shown
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}
