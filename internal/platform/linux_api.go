//go:build linux

package platform

// LinuxAPI implements WindowAPI for Linux platform
type LinuxAPI struct{}

// NewLinuxAPI creates a new Linux API instance
func NewLinuxAPI() *LinuxAPI {
	return &LinuxAPI{}
}

// NewWindowAPI creates a new WindowAPI instance for Linux
func NewWindowAPI() WindowAPI {
	return NewLinuxAPI()
}

func (l *LinuxAPI) Name() string {
	return Identifier("linux")
}

// PrepareForegroundHandoff is a no-op; X11 and Wayland compositors decide focus themselves
func (l *LinuxAPI) PrepareForegroundHandoff() error {
	return nil
}
