// ABOUTME: Client configuration: API location, timeouts and logging
// ABOUTME: Layers defaults, XDG YAML file, .env and SMSCRM_* environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the XDG directories and the log prefix.
	AppName = "smscrm"

	// DefaultAPIURL is where the original backend listens.
	DefaultAPIURL = "http://localhost:5000/api"

	DefaultTimeout  = 15 * time.Second
	DefaultLogLevel = "info"

	ConfigFileName = "config.yaml"
)

// Config holds settings shared by every command.
type Config struct {
	// APIURL is the base URL of the leads backend.
	APIURL string `yaml:"api_url"`

	// Timeout bounds each API request.
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile is where the TUI writes its log, since it owns the terminal.
	LogFile string `yaml:"log_file,omitempty"`

	path string
}

// Default returns a config with defaults applied.
func Default() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile(),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/smscrm/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// DefaultLogFile is $XDG_STATE_HOME/smscrm/smscrm.log.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// DefaultDevDBPath is $XDG_DATA_HOME/smscrm/devserver.db.
func DefaultDevDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "devserver.db")
}

// Load reads the config file at path (DefaultPath when empty), then a .env
// file in the working directory, then SMSCRM_* environment variables.
// A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// ReadFile reads only the config file, without environment overrides, so
// that a config edited and saved back never captures SMSCRM_* values.
func ReadFile(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Keys lists the settings Set accepts.
var Keys = []string{"api-url", "timeout", "log-level", "log-file"}

// Set changes one setting by its CLI key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "api-url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("api-url must start with http:// or https://")
		}
		c.APIURL = strings.TrimRight(value, "/")
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q", value)
		}
		c.Timeout = d
	case "log-level":
		switch value {
		case "debug", "info", "warn", "error":
			c.LogLevel = value
		default:
			return fmt.Errorf("invalid log-level %q (debug, info, warn, error)", value)
		}
	case "log-file":
		if value == "" {
			return fmt.Errorf("log-file cannot be empty")
		}
		c.LogFile = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SMSCRM_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("SMSCRM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SMSCRM_TIMEOUT %q: %w", v, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("SMSCRM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SMSCRM_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile()
	}
}

// Path is the file the config was loaded from.
func (c *Config) Path() string {
	if c.path == "" {
		return DefaultPath()
	}
	return c.path
}

// Save persists the config as YAML.
func (c *Config) Save() error {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
