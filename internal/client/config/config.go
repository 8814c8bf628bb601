// Package config loads the CLI's settings from ~/.deales/config.yaml with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIURL  = "http://localhost:8080/api"
	defaultTimeout = 10 * time.Second
	defaultStorage = "file"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Client  ClientConfig  `yaml:"client"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`

	// Home is the directory holding config, token slot and drafts.
	Home string `yaml:"-"`
}

type APIConfig struct {
	URL string `yaml:"url"`
}

type ClientConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig selects where the token slot lives: "file", "memory" or
// "redis".
type SessionConfig struct {
	Storage  string `yaml:"storage"`
	RedisURL string `yaml:"redis_url"`
	Prefix   string `yaml:"redis_prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults(home string) *Config {
	return &Config{
		API:     APIConfig{URL: defaultAPIURL},
		Client:  ClientConfig{Timeout: defaultTimeout},
		Session: SessionConfig{Storage: defaultStorage},
		Log:     LogConfig{Level: "warn", Format: "text"},
		Home:    home,
	}
}

// DefaultHome is $DEALES_HOME, else ~/.deales.
func DefaultHome() (string, error) {
	if h := os.Getenv("DEALES_HOME"); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".deales"), nil
}

// Load reads home/config.yaml. A missing file yields the defaults.
// DEALES_API_URL overrides the file.
func Load(home string) (*Config, error) {
	cfg := defaults(home)

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("DEALES_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if cfg.Client.Timeout <= 0 {
		cfg.Client.Timeout = defaultTimeout
	}
	if cfg.Session.Storage == "" {
		cfg.Session.Storage = defaultStorage
	}
	if cfg.Session.Storage == "redis" && cfg.Session.RedisURL == "" {
		return nil, errors.New("session.redis_url is required for redis session storage")
	}
	return cfg, nil
}

// DraftDir is where wizard drafts are kept.
func (c *Config) DraftDir() string {
	return filepath.Join(c.Home, "drafts")
}
