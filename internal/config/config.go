// Package config loads minifeed's YAML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Environment overrides.
const (
	EnvServer       = "MINIFEED_SERVER"
	EnvPollInterval = "MINIFEED_POLL_INTERVAL"
)

// Config is the application configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Sync    Sync    `yaml:"sync"`
	UI      UI      `yaml:"ui"`
	Logging Logging `yaml:"logging"`
}

// Server locates the remote item source.
type Server struct {
	URL string `yaml:"url"`
}

// Sync tunes polling and fetching.
type Sync struct {
	PollInterval   time.Duration `yaml:"poll_interval"`
	PageSize       int           `yaml:"page_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      RateLimit     `yaml:"rate_limit"`
}

// RateLimit caps outgoing requests. RPS <= 0 disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// UI holds presentation settings.
type UI struct {
	Title      string `yaml:"title"`
	StartRoute string `yaml:"start_route"`
}

// Logging configures the debug log.
type Logging struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{URL: "http://localhost:5000"},
		Sync: Sync{
			PollInterval:   5 * time.Second,
			PageSize:       100,
			RequestTimeout: 30 * time.Second,
			RateLimit:      RateLimit{RPS: 10, Burst: 5},
		},
		UI:      UI{Title: "minifeed", StartRoute: "#/all"},
		Logging: Logging{Level: "info"},
	}
}

// ConfigDir returns the XDG config directory for minifeed.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "minifeed")
}

// DataDir returns the directory for logs and the event journal.
func DataDir() string {
	return filepath.Join(homeDir(), ".minifeed")
}

// EventsPath returns the JSONL event journal path.
func EventsPath() string {
	return filepath.Join(DataDir(), "minifeed.events.jsonl")
}

// ResolvePath finds the config file: explicit path, then
// ~/.config/minifeed/config.yaml, then ./config.yaml. It returns "" when
// none exists and no explicit path was given.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	for _, p := range []string{filepath.Join(ConfigDir(), "config.yaml"), "config.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load reads the config at path over the defaults. An empty path yields
// the defaults. Environment overrides are applied and the result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse decodes YAML over the defaults.
func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment overrides read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvServer); v != "" {
		c.Server.URL = v
	}
	if v := getenv(EnvPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPollInterval, err)
		}
		c.Sync.PollInterval = d
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.URL) == "" {
		errs = append(errs, errors.New("server.url is required"))
	}
	if c.Sync.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("sync.poll_interval must be positive, got %s", c.Sync.PollInterval))
	}
	if c.Sync.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sync.request_timeout must be positive, got %s", c.Sync.RequestTimeout))
	}
	if c.Sync.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("sync.page_size must be positive, got %d", c.Sync.PageSize))
	}
	if c.Sync.RateLimit.RPS > 0 && c.Sync.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("sync.rate_limit.burst must be positive when rps is set"))
	}
	return errors.Join(errs...)
}

// LogDir returns the effective log directory.
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return filepath.Join(DataDir(), "logs")
}

// WriteDefault writes the commented default config to path unless a file
// already exists there.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, DefaultConfigYAML, 0o644)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
