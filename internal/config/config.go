// Package config loads cadence settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lazypower/cadence/internal/engine"
	"github.com/lazypower/cadence/internal/feedcache"
	"github.com/lazypower/cadence/internal/store"
)

// Config holds all cadence configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Feed      FeedConfig      `yaml:"feed"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type FeedConfig struct {
	CacheTTL      time.Duration  `yaml:"cache_ttl"`
	SweepInterval time.Duration  `yaml:"sweep_interval"`
	FetchTimeout  time.Duration  `yaml:"fetch_timeout"`
	MaxItems      int            `yaml:"max_items"`
	ParseWorkers  int            `yaml:"parse_workers"`
	Timezone      string         `yaml:"timezone"` // IANA name; empty means local
	Weights       engine.Weights `yaml:"weights"`
}

// RateLimitConfig caps feed reads. RPS 0 disables the limit.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Feed: FeedConfig{
			CacheTTL:      feedcache.DefaultTTL,
			SweepInterval: time.Minute,
			FetchTimeout:  5 * time.Second,
			MaxItems:      store.MaxFetchItems,
			ParseWorkers:  4,
			Weights:       engine.DefaultWeights,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
	}
}

// DefaultPath returns the default config path: ~/.cadence/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cadence", "config.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CADENCE_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("CADENCE_BIND"); v != "" {
		c.Server.Bind = v
	}
	if v := os.Getenv("CADENCE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CADENCE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("CADENCE_TZ"); v != "" {
		c.Feed.Timezone = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Feed.CacheTTL <= 0 {
		return fmt.Errorf("feed.cache_ttl must be positive")
	}
	if c.Feed.SweepInterval <= 0 {
		return fmt.Errorf("feed.sweep_interval must be positive")
	}
	if c.Feed.FetchTimeout <= 0 {
		return fmt.Errorf("feed.fetch_timeout must be positive")
	}
	if c.Feed.MaxItems < 1 || c.Feed.MaxItems > store.MaxFetchItems {
		return fmt.Errorf("feed.max_items must be between 1 and %d", store.MaxFetchItems)
	}
	if c.Feed.ParseWorkers < 1 {
		return fmt.Errorf("feed.parse_workers must be at least 1")
	}
	if err := c.Feed.Weights.Validate(); err != nil {
		return fmt.Errorf("feed.weights: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative")
	}
	return nil
}

// Location resolves Feed.Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Feed.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Feed.Timezone)
	if err != nil {
		return nil, fmt.Errorf("feed.timezone: %w", err)
	}
	return loc, nil
}

// DBPath returns Database.Path, or the default location when unset.
func (c *Config) DBPath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	return store.DefaultDBPath()
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
