//go:build darwin

package platform

// DarwinAPI implements WindowAPI for macOS platform
type DarwinAPI struct{}

// NewDarwinAPI creates a new macOS API instance
func NewDarwinAPI() *DarwinAPI {
	return &DarwinAPI{}
}

// NewWindowAPI creates a new WindowAPI instance for macOS
func NewWindowAPI() WindowAPI {
	return NewDarwinAPI()
}

func (d *DarwinAPI) Name() string {
	return Identifier("darwin")
}

func (d *DarwinAPI) PrepareForegroundHandoff() error {
	return nil
}
