package platform

// WindowAPI defines the platform-specific operations the shell needs
type WindowAPI interface {
	// Name returns the platform identifier reported to the page
	Name() string
	// PrepareForegroundHandoff lets a later instance of the shell bring the existing window
	// to the front. It is a no-op where the OS does not restrict foreground changes.
	PrepareForegroundHandoff() error
}

// Identifier maps a GOOS value to the platform identifier the backend UI expects.
// The UI was written against the Node.js names, so windows is reported as win32.
func Identifier(goos string) string {
	switch goos {
	case "windows":
		return "win32"
	case "":
		return "unknown"
	default:
		return goos
	}
}
