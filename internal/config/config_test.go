package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Addr != DefaultAddr {
		t.Errorf("Addr=%q, want %q", c.Addr, DefaultAddr)
	}
	if c.Heartbeat != DefaultHeartbeat {
		t.Errorf("Heartbeat=%q, want %q", c.Heartbeat, DefaultHeartbeat)
	}
	if c.Path() != "" {
		t.Errorf("Path()=%q, want empty for defaults", c.Path())
	}
}

func TestLoadReadsValuesAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
		"name": "demo",
		"addr": "127.0.0.1:9000",
		"heartbeat": "5s"
	}`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Name != "demo" {
		t.Errorf("Name=%q, want demo", c.Name)
	}
	if c.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr=%q, want 127.0.0.1:9000", c.Addr)
	}
	if c.HeartbeatInterval() != 5*time.Second {
		t.Errorf("HeartbeatInterval()=%v, want 5s", c.HeartbeatInterval())
	}
	// Untouched fields get defaults.
	if c.AutoDismiss != DefaultAutoDismiss {
		t.Errorf("AutoDismiss=%q, want default %q", c.AutoDismiss, DefaultAutoDismiss)
	}
	if got := c.Dev.Watch; len(got) != 1 || got[0] != "client" {
		t.Errorf("Dev.Watch=%v, want [client]", got)
	}
	if c.Path() == "" {
		t.Error("Path() empty after loading a file")
	}
}

func TestLoadFileMissingIsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("LoadFile() error=nil for missing explicit path")
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"addr": `)
	if _, err := Load(dir); err == nil {
		t.Fatal("Load() error=nil for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(c *Config) {}, ""},
		{"bad addr", func(c *Config) { c.Addr = "8090" }, "addr"},
		{"bad heartbeat", func(c *Config) { c.Heartbeat = "soon" }, "heartbeat"},
		{"negative autoDismiss", func(c *Config) { c.AutoDismiss = "-1s" }, "autoDismiss"},
		{"bad debounce", func(c *Config) { c.Dev.Debounce = "fast" }, "debounce"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "logLevel"},
		{"zero autoDismiss ok", func(c *Config) { c.AutoDismiss = "0" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error=%v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestAutoDismissAfterZeroMeansNone(t *testing.T) {
	c := Default()
	c.AutoDismiss = "0"
	if got := c.AutoDismissAfter(); got != 0 {
		t.Fatalf("AutoDismissAfter()=%v, want 0", got)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		c := &Config{LogLevel: tt.in}
		if got := c.Level(); got != tt.want {
			t.Errorf("Level(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}
