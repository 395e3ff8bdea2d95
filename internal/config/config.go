// Package config loads butterytoast.json.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"log/slog"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "butterytoast.json"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8090"

	// DefaultHeartbeat is the default WebSocket ping interval.
	DefaultHeartbeat = "30s"

	// DefaultAutoDismiss is how long demo toasts stay up when the
	// trigger does not say otherwise. "0" disables auto-dismiss.
	DefaultAutoDismiss = "4s"

	// DefaultDebounce is the file-watcher debounce window.
	DefaultDebounce = "100ms"
)

// Config represents the complete butterytoast.json configuration.
type Config struct {
	// Name is the application name shown on the demo page.
	Name string `json:"name,omitempty"`

	// Addr is the listen address, e.g. ":8090" or "127.0.0.1:8090".
	Addr string `json:"addr,omitempty"`

	// Heartbeat is the WebSocket ping interval, e.g. "30s".
	Heartbeat string `json:"heartbeat,omitempty"`

	// AutoDismiss is the default lifetime of triggered toasts, e.g.
	// "4s". "0" presents toasts until they are tapped.
	AutoDismiss string `json:"autoDismiss,omitempty"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"logLevel,omitempty"`

	// Dev contains dev-mode settings.
	Dev DevConfig `json:"dev,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains dev-mode settings.
type DevConfig struct {
	// Watch lists directories watched for live reload.
	Watch []string `json:"watch,omitempty"`

	// Debounce is the window that coalesces bursts of file events,
	// e.g. "100ms".
	Debounce string `json:"debounce,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads butterytoast.json from dir. A missing file is not an
// error; defaults apply.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from an explicit path. Unlike Load, a
// missing file is an error here: the caller asked for this file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	c := &Config{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.configPath = path
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the path the config was loaded from, or "" for
// defaults.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "ButteryToast"
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Heartbeat == "" {
		c.Heartbeat = DefaultHeartbeat
	}
	if c.AutoDismiss == "" {
		c.AutoDismiss = DefaultAutoDismiss
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{"client"}
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "butterytoast"
	}
}

// Validate checks the configuration for values that would fail later.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("config: addr %q: %w", c.Addr, err)
	}
	if _, err := time.ParseDuration(c.Heartbeat); err != nil {
		return fmt.Errorf("config: heartbeat %q: %w", c.Heartbeat, err)
	}
	if d, err := parseOptionalDuration(c.AutoDismiss); err != nil {
		return fmt.Errorf("config: autoDismiss %q: %w", c.AutoDismiss, err)
	} else if d < 0 {
		return fmt.Errorf("config: autoDismiss %q: must not be negative", c.AutoDismiss)
	}
	if _, err := time.ParseDuration(c.Dev.Debounce); err != nil {
		return fmt.Errorf("config: dev.debounce %q: %w", c.Dev.Debounce, err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logLevel %q: must be debug, info, warn, or error", c.LogLevel)
	}
	return nil
}

// HeartbeatInterval returns the parsed heartbeat.
func (c *Config) HeartbeatInterval() time.Duration {
	d, err := time.ParseDuration(c.Heartbeat)
	if err != nil {
		d, _ = time.ParseDuration(DefaultHeartbeat)
	}
	return d
}

// AutoDismissAfter returns the parsed default toast lifetime. Zero
// means no auto-dismiss.
func (c *Config) AutoDismissAfter() time.Duration {
	d, err := parseOptionalDuration(c.AutoDismiss)
	if err != nil || d < 0 {
		d, _ = time.ParseDuration(DefaultAutoDismiss)
	}
	return d
}

// DebounceWindow returns the parsed watcher debounce.
func (c *Config) DebounceWindow() time.Duration {
	d, err := time.ParseDuration(c.Dev.Debounce)
	if err != nil {
		d, _ = time.ParseDuration(DefaultDebounce)
	}
	return d
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseOptionalDuration parses a duration, accepting a bare "0" for
// none.
func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
