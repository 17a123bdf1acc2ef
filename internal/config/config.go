package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

// PackagingMode identifies how the shell was shipped. It decides window mode and icon location.
type PackagingMode string

const (
	PackagingSnap   PackagingMode = "snap"
	PackagingSource PackagingMode = "source"
)

const (
	// EnvSnap is set by snapd to the root of the mounted snap
	EnvSnap = "SNAP"
	// EnvLogLevel overrides the console log level
	EnvLogLevel = "ARCADE_SHELL_LOG_LEVEL"
)

// LookupEnv matches os.LookupEnv so tests can supply their own environment
type LookupEnv func(key string) (string, bool)

// WindowConfig holds the native window settings
type WindowConfig struct {
	Title      string `json:"title" yaml:"title"`
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
	MinWidth   int    `json:"minWidth" yaml:"minWidth"`
	MinHeight  int    `json:"minHeight" yaml:"minHeight"`
	Fullscreen bool   `json:"fullscreen" yaml:"fullscreen"`
}

// Config holds everything the shell needs at startup
type Config struct {
	// Backend readiness settings
	BackendURL     string        `json:"backendURL" yaml:"backendURL"`         // URL probed and then displayed
	AllowedOrigins []string      `json:"allowedOrigins" yaml:"allowedOrigins"` // Extra origins treated as the backend (aliases)
	MaxRetries     int           `json:"maxRetries" yaml:"maxRetries"`         // Probe attempts before giving up
	RetryInterval  time.Duration `json:"retryInterval" yaml:"retryInterval"`   // Delay between a failed probe and the next one
	ProbeTimeout   time.Duration `json:"probeTimeout" yaml:"probeTimeout"`     // Per-request timeout

	// Window and presentation
	Window      WindowConfig `json:"window" yaml:"window"`
	IconPath    string       `json:"iconPath" yaml:"iconPath"`       // Resolved absolute icon path, may not exist
	HintOverlay bool         `json:"hintOverlay" yaml:"hintOverlay"` // Inject the fullscreen hint after load

	// Process settings
	InstanceID string        `json:"instanceID" yaml:"instanceID"` // Single-instance lock identifier
	LogLevel   string        `json:"logLevel" yaml:"logLevel"`
	Packaging  PackagingMode `json:"packaging" yaml:"packaging"`
}

// profile is the per-packaging override block in profiles.yaml
type profile struct {
	Fullscreen bool   `yaml:"fullscreen"`
	IconBase   string `yaml:"iconBase"` // "snap" or "executable"
	IconPath   string `yaml:"iconPath"`
}

type profileFile struct {
	Defaults Config                    `yaml:"defaults"`
	Profiles map[PackagingMode]profile `yaml:"profiles"`
}

func parseProfiles(data []byte) (*profileFile, error) {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse packaging profiles: %w", err)
	}
	if len(pf.Profiles) == 0 {
		return nil, fmt.Errorf("parse packaging profiles: no profiles defined")
	}
	return &pf, nil
}

// DetectPackaging picks the snap profile when running inside a snap, source otherwise
func DetectPackaging(lookup LookupEnv) PackagingMode {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvSnap); ok && v != "" {
		return PackagingSnap
	}
	return PackagingSource
}

// ConfigForPackaging resolves the embedded defaults and the profile for mode into a Config.
// The icon path is made absolute using $SNAP or the executable's directory.
func ConfigForPackaging(mode PackagingMode, lookup LookupEnv) (*Config, error) {
	return configFromProfiles(profilesYAML, mode, lookup)
}

func configFromProfiles(data []byte, mode PackagingMode, lookup LookupEnv) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	pf, err := parseProfiles(data)
	if err != nil {
		return nil, err
	}

	p, ok := pf.Profiles[mode]
	if !ok {
		return nil, fmt.Errorf("unknown packaging mode: %q", mode)
	}

	cfg := pf.Defaults.Clone()
	cfg.Packaging = mode
	cfg.Window.Fullscreen = p.Fullscreen
	cfg.IconPath = resolveIconPath(p, lookup)

	return cfg, nil
}

func resolveIconPath(p profile, lookup LookupEnv) string {
	if p.IconPath == "" || filepath.IsAbs(p.IconPath) {
		return p.IconPath
	}

	var base string
	switch p.IconBase {
	case "snap":
		base, _ = lookup(EnvSnap)
	case "executable":
		if exe, err := os.Executable(); err == nil {
			base = filepath.Dir(exe)
		}
	}
	if base == "" {
		return filepath.Clean(p.IconPath)
	}
	return filepath.Join(base, p.IconPath)
}

// Load detects the packaging mode, resolves its profile, applies environment overrides and validates
func Load(lookup LookupEnv) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg, err := ConfigForPackaging(DetectPackaging(lookup), lookup)
	if err != nil {
		return nil, err
	}

	cfg.LoadFromEnvironment(lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnvironment applies the few supported environment overrides
func (c *Config) LoadFromEnvironment(lookup LookupEnv) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if level, ok := lookup(EnvLogLevel); ok && level != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := parseOrigin(c.BackendURL); err != nil {
		return fmt.Errorf("invalid backendURL: %w", err)
	}

	for _, origin := range c.AllowedOrigins {
		if _, err := parseOrigin(origin); err != nil {
			return fmt.Errorf("invalid allowedOrigins entry %q: %w", origin, err)
		}
	}

	if c.MaxRetries <= 0 {
		return fmt.Errorf("maxRetries must be positive, got %d", c.MaxRetries)
	}

	if c.RetryInterval <= 0 {
		return fmt.Errorf("retryInterval must be positive, got %v", c.RetryInterval)
	}

	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probeTimeout must be positive, got %v", c.ProbeTimeout)
	}

	if c.Window.Title == "" {
		return fmt.Errorf("window title cannot be empty")
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}

	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		return fmt.Errorf("window minimum size cannot be negative, got %dx%d", c.Window.MinWidth, c.Window.MinHeight)
	}

	if c.InstanceID == "" {
		return fmt.Errorf("instanceID cannot be empty")
	}

	switch c.Packaging {
	case PackagingSnap, PackagingSource:
	default:
		return fmt.Errorf("invalid packaging mode: %q", c.Packaging)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logLevel: %s", c.LogLevel)
	}

	return nil
}

// BackendOrigin returns scheme://host[:port] of the backend URL
func (c *Config) BackendOrigin() string {
	origin, err := parseOrigin(c.BackendURL)
	if err != nil {
		return ""
	}
	return origin
}

// Origins returns the backend origin followed by its configured aliases, normalised
func (c *Config) Origins() []string {
	var origins []string
	if o := c.BackendOrigin(); o != "" {
		origins = append(origins, o)
	}
	for _, alias := range c.AllowedOrigins {
		if o, err := parseOrigin(alias); err == nil {
			origins = append(origins, o)
		}
	}
	return origins
}

// LoadIcon reads the icon file. A missing icon is not an error; the window just has none.
func (c *Config) LoadIcon() ([]byte, error) {
	if c.IconPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.IconPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read icon %s: %w", c.IconPath, err)
	}
	return data, nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	if c.AllowedOrigins != nil {
		clone.AllowedOrigins = append([]string(nil), c.AllowedOrigins...)
	}
	return &clone
}

func parseOrigin(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}
