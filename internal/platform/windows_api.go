//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// asfwAny is ASFW_ANY: every process may set the foreground window
const asfwAny = 0xFFFFFFFF

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procAllowSetForegroundWindow = user32.NewProc("AllowSetForegroundWindow")
)

// WindowsAPI implements WindowAPI for Windows platform
type WindowsAPI struct{}

// NewWindowsAPI creates a new Windows API instance
func NewWindowsAPI() *WindowsAPI {
	return &WindowsAPI{}
}

// NewWindowAPI creates a new WindowAPI instance for Windows
func NewWindowAPI() WindowAPI {
	return NewWindowsAPI()
}

func (w *WindowsAPI) Name() string {
	return Identifier("windows")
}

// PrepareForegroundHandoff allows the running instance to take the foreground when this
// process hands over to it through the single-instance lock
func (w *WindowsAPI) PrepareForegroundHandoff() error {
	if err := procAllowSetForegroundWindow.Find(); err != nil {
		return fmt.Errorf("AllowSetForegroundWindow unavailable: %w", err)
	}

	ret, _, callErr := procAllowSetForegroundWindow.Call(uintptr(asfwAny))
	if ret == 0 {
		return fmt.Errorf("AllowSetForegroundWindow failed: %w", callErr)
	}
	return nil
}
