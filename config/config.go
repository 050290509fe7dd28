// Package config holds the resolved application configuration the engine
// consumes at startup, plus the platform directories and the data-dir
// log file. Layering (defaults, user file, channel prototype, CLI
// overrides) happens in the root package before the engine starts.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/television/television/channels"
)

// DefaultFrameRate caps the render loop.
const DefaultFrameRate = 60

// DefaultTick caps how many actions the core applies per tick.
const DefaultTick = 32

// Config is the user configuration file model.
type Config struct {
	// UI defaults, overridable per channel and per flag
	UIScale   int    `yaml:"ui_scale,omitempty"`   // 0..100
	Layout    string `yaml:"layout,omitempty"`     // landscape | portrait
	FrameRate int    `yaml:"frame_rate,omitempty"` // frames per second cap

	DefaultChannel string `yaml:"default_channel,omitempty"`
	CableDir       string `yaml:"cable_dir,omitempty"`

	// Keybindings are the global chord -> action map; channel-scoped
	// bindings override these.
	Keybindings map[string]channels.ActionList `yaml:"keybindings,omitempty"`

	History struct {
		Limit  int  `yaml:"limit,omitempty"`
		Global bool `yaml:"global,omitempty"`
	} `yaml:"history,omitempty"`

	Frecency struct {
		Enabled bool `yaml:"enabled,omitempty"`
	} `yaml:"frecency,omitempty"`

	Preview struct {
		DebounceMs int `yaml:"debounce_ms,omitempty"`
		CacheBytes int `yaml:"cache_bytes,omitempty"`
		Workers    int `yaml:"workers,omitempty"`
	} `yaml:"preview,omitempty"`

	// FallthroughOnEmpty prints the raw query when confirming with no
	// results.
	FallthroughOnEmpty bool `yaml:"fallthrough_on_empty,omitempty"`

	Log struct {
		Level string `yaml:"level,omitempty"`
	} `yaml:"log,omitempty"`

	Mouse bool `yaml:"mouse,omitempty"`
}

// Init fills in the defaults.
func (c *Config) Init() {
	c.Layout = "landscape"
	c.FrameRate = DefaultFrameRate
	c.UIScale = 100
	c.Keybindings = make(map[string]channels.ActionList)
	c.Log.Level = "info"
}

// ReadFilename loads and merges a YAML config file over the defaults.
func (c *Config) ReadFilename(filename string) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", filename)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", filename)
	}
	return c.Validate()
}

// Validate rejects values the engine cannot honor.
func (c *Config) Validate() error {
	switch c.Layout {
	case "", "landscape", "portrait":
	default:
		return errors.Errorf("unknown layout %q: must be landscape or portrait", c.Layout)
	}
	if c.UIScale < 0 || c.UIScale > 100 {
		return errors.Errorf("ui_scale %d out of range 0..100", c.UIScale)
	}
	if c.FrameRate < 0 {
		return errors.New("frame_rate must not be negative")
	}
	return nil
}

// ConfigDir resolves the configuration directory: $TELEVISION_CONFIG
// wins, then the platform-standard user config dir.
func ConfigDir() (string, error) {
	if d := os.Getenv("TELEVISION_CONFIG"); d != "" {
		return d, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(base, "television"), nil
}

// DataDir resolves the data directory (log file, frecency store, history,
// on-disk preview cache): $TELEVISION_DATA wins, then the platform cache
// dir.
func DataDir() (string, error) {
	if d := os.Getenv("TELEVISION_DATA"); d != "" {
		return d, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user cache directory")
	}
	return filepath.Join(base, "television"), nil
}

// DefaultConfigPath is the user config file inside ConfigDir.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultCableDir is the channel prototype directory inside ConfigDir.
func DefaultCableDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cable"), nil
}

// HistoryPath returns the history file for a channel ("" for the global
// ring) inside DataDir.
func HistoryPath(dataDir, channel string) string {
	if channel == "" {
		channel = "global"
	}
	return filepath.Join(dataDir, "history", channel)
}

// FrecencyPath returns the frecency store file inside DataDir.
func FrecencyPath(dataDir string) string {
	return filepath.Join(dataDir, "frecency.yaml")
}
