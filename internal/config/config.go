// Package config loads and saves the odkupload JSON configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/example/odkupload/internal/core/autosend"
)

// Defaults applied to missing or zero-valued fields.
const (
	DefaultSubmissionPath     = "/submission"
	DefaultRunTimeoutSeconds  = 120
	DefaultHTTPTimeoutSeconds = 60
	DefaultLogLevel           = "WARN"
	DefaultLogFormat          = "console"

	// DeviceIDPrefix prefixes generated device ids.
	DeviceIDPrefix = "odkupload:"

	configDirName  = ".odkupload"
	configFileName = "config.json"
)

// Config represents the flat odkupload configuration
type Config struct {
	ServerURL          string `json:"server_url"`
	SubmissionPath     string `json:"submission_path,omitempty"`
	AutoSend           string `json:"auto_send"`                   // off, wifi_only, cellular_only, wifi_and_cellular
	DeleteAfterSend    bool   `json:"delete_after_send"`           // app-level auto-delete
	DeviceID           string `json:"device_id"`                   // odkupload:<uuid>
	InstancesDir       string `json:"instances_dir,omitempty"`     // defaults to ~/.odkupload/instances
	DBPath             string `json:"db_path,omitempty"`           // defaults to ~/.odkupload/odkupload.db
	LogLevel           string `json:"log_level,omitempty"`         // overridden by LOGGING_LEVEL
	LogFormat          string `json:"log_format,omitempty"`        // overridden by LOGGING_FORMAT
	RunTimeoutSeconds  int    `json:"run_timeout_seconds,omitempty"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds,omitempty"`
}

// Default returns a config with every default applied and a fresh device id.
func Default() *Config {
	cfg := &Config{
		AutoSend: string(autosend.ModeOff),
		DeviceID: NewDeviceID(),
	}
	cfg.applyDefaults()
	return cfg
}

// NewDeviceID returns a new random device id.
func NewDeviceID() string {
	return DeviceIDPrefix + uuid.NewString()
}

// DefaultPath returns ~/.odkupload/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// LoadConfig reads the config file at path and applies defaults.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveConfig writes cfg to path, creating its directory.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	if _, err := autosend.ParseMode(c.AutoSend); err != nil {
		return err
	}
	if c.RunTimeoutSeconds < 0 || c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// AutoSendMode returns the parsed auto-send mode. Call Validate first.
func (c *Config) AutoSendMode() autosend.Mode {
	mode, err := autosend.ParseMode(c.AutoSend)
	if err != nil {
		return autosend.ModeOff
	}
	return mode
}

// RunTimeout is the deadline applied to one submission pass.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// HTTPTimeout is the timeout of a single HTTP request.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.SubmissionPath == "" {
		c.SubmissionPath = DefaultSubmissionPath
	}
	if c.RunTimeoutSeconds == 0 {
		c.RunTimeoutSeconds = DefaultRunTimeoutSeconds
	}
	if c.HTTPTimeoutSeconds == 0 {
		c.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}
