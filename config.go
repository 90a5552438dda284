package domdrive

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level domdrive configuration. The zero value works:
// a headless local Chrome with no audit trail.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Audit   AuditConfig   `yaml:"audit"`
	Limits  LimitsConfig  `yaml:"limits"`
}

// BrowserConfig controls the Chrome session.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome. Empty = launch
	// a local instance.
	Remote string `yaml:"remote"`
	// Headed launches a visible browser. Default: headless.
	Headed bool `yaml:"headed"`
	// ExecutablePath overrides the Chrome binary.
	ExecutablePath string `yaml:"executable_path"`
	// UserDataDir is a persistent profile directory.
	UserDataDir string `yaml:"user_data_dir"`
	// Stealth applies anti-detection patches on new tabs.
	Stealth      bool `yaml:"stealth"`
	WindowWidth  int  `yaml:"window_width"`
	WindowHeight int  `yaml:"window_height"`
	NoSandbox    bool `yaml:"no_sandbox"`
}

// AuditConfig controls the SQLite command audit trail.
type AuditConfig struct {
	// Path of the audit database. Empty disables auditing.
	Path string `yaml:"path"`
	// Buffer is the async queue size.
	Buffer int `yaml:"buffer"`
}

// LimitsConfig bounds command behaviour.
type LimitsConfig struct {
	// MaxWait caps browser_wait durations.
	MaxWait time.Duration `yaml:"max_wait"`
}

// LoadConfigFile reads a YAML configuration file.
// DefaultConfig returns a config with every default applied, for
// callers that run without a config file.
func DefaultConfig() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("domdrive: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("domdrive: parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Browser.WindowWidth <= 0 {
		c.Browser.WindowWidth = 1280
	}
	if c.Browser.WindowHeight <= 0 {
		c.Browser.WindowHeight = 800
	}
	if c.Audit.Buffer <= 0 {
		c.Audit.Buffer = 256
	}
	if c.Limits.MaxWait <= 0 {
		c.Limits.MaxWait = 30 * time.Second
	}
}
