package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the Itaú Link portal root.
const DefaultBaseURL = "https://www.itaulink.com.uy"

// DefaultEpoch is the earliest statement date the portal serves.
const DefaultEpoch = "2013-05-01"

const epochFormat = "2006-01-02"

// Environment variables read by ApplyEnv.
const (
	EnvUsername    = "ITAULINK_USERNAME"
	EnvPassword    = "ITAULINK_PASSWORD"
	EnvBaseURL     = "ITAULINK_BASE_URL"
	EnvLogLevel    = "ITAULINK_LOG_LEVEL"
	EnvConcurrency = "ITAULINK_CONCURRENCY"
)

// Config represents the itaulink.yaml configuration.
type Config struct {
	Portal PortalConfig `yaml:"portal"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`

	// Credentials never come from the YAML file.
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

// PortalConfig locates the portal and bounds each HTTP call.
type PortalConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// FetchConfig controls the per-month statement fan-out.
type FetchConfig struct {
	Epoch             string  `yaml:"epoch"` // "YYYY-MM-DD"
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
}

// ExportConfig controls CSV output.
type ExportConfig struct {
	Dir         string `yaml:"dir"`
	FetchReport bool   `yaml:"fetch_report"`
}

// LogConfig sets the default log level when no -v flag is given.
type LogConfig struct {
	Level string `yaml:"level"`
}

// EpochDate parses Fetch.Epoch.
func (c *Config) EpochDate() (time.Time, error) {
	t, err := time.Parse(epochFormat, c.Fetch.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing epoch %q: %w", c.Fetch.Epoch, err)
	}
	return t, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return errors.New("portal.base_url is empty")
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1, got %d", c.Fetch.Concurrency)
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return fmt.Errorf("fetch.requests_per_second must not be negative, got %v", c.Fetch.RequestsPerSecond)
	}
	if _, err := c.EpochDate(); err != nil {
		return err
	}
	return nil
}

// Load reads an itaulink.yaml file from disk. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path if it exists, otherwise returns Default.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the portal's production settings.
func Default() *Config {
	return &Config{
		Portal: PortalConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Fetch: FetchConfig{
			Epoch:       DefaultEpoch,
			Concurrency: 16,
		},
		Export: ExportConfig{
			Dir:         ".",
			FetchReport: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ApplyEnv loads envFile (if present) into the process environment and then
// overlays ITAULINK_* variables onto cfg.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if v, ok := os.LookupEnv(EnvUsername); ok {
		cfg.Username = v
	}
	if v, ok := os.LookupEnv(EnvPassword); ok {
		cfg.Password = v
	}
	if v, ok := os.LookupEnv(EnvBaseURL); ok && v != "" {
		cfg.Portal.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvConcurrency, v, err)
		}
		cfg.Fetch.Concurrency = n
	}
	return nil
}
