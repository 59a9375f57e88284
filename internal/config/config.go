package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all netagent configuration.
type Config struct {
	// Network service the front end talks to
	Server ServerConfig `yaml:"server"`

	// DataDir holds the transcript database and logs. A leading "~" is
	// expanded to the home directory.
	DataDir string `yaml:"data_dir"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Interactive UI
	UI UIConfig `yaml:"ui"`
}

// ServerConfig locates the network service.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "120s",
		},
		DataDir: "~/.netagent",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		UI: *DefaultUIConfig(),
	}
}

// DefaultConfigPath returns ~/.netagent/config.yaml, or a relative fallback
// when the home directory cannot be resolved.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".netagent", "config.yaml")
	}
	return filepath.Join(home, ".netagent", "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Missing file means defaults
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NETAGENT_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("NETAGENT_TIMEOUT"); v != "" {
		c.Server.Timeout = v
	}
	if v := os.Getenv("NETAGENT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("NETAGENT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NETAGENT_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		c.Logging.DebugMode = true
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base_url not configured (set NETAGENT_SERVER_URL)")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid server base_url %q: %w", c.Server.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server base_url %q: scheme must be http or https", c.Server.BaseURL)
	}
	if c.Server.Timeout != "" {
		if _, err := time.ParseDuration(c.Server.Timeout); err != nil {
			return fmt.Errorf("invalid server timeout %q: %w", c.Server.Timeout, err)
		}
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir not configured")
	}
	return nil
}

// GetTimeout returns the per-request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ResolveDataDir returns DataDir with "~" expanded.
func (c *Config) ResolveDataDir() string {
	dir := c.DataDir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}

// DatabasePath is where transcripts are stored.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.ResolveDataDir(), "netagent.db")
}

// LogsDir is where category log files are written.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ResolveDataDir(), "logs")
}
