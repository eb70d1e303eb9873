// Package config loads bot settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/tw-conquers/internal/logger"
	"github.com/pfrederiksen/tw-conquers/internal/notifier"
	"github.com/pfrederiksen/tw-conquers/internal/poller"
	"github.com/pfrederiksen/tw-conquers/internal/scraper"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvToken = "BOT_TOKEN"
	EnvURL   = "BOT_TW_URL"

	EnvTwitterAPIKey       = "TWITTER_API_KEY"
	EnvTwitterAPISecret    = "TWITTER_API_SECRET"
	EnvTwitterAccessToken  = "TWITTER_ACCESS_TOKEN"
	EnvTwitterAccessSecret = "TWITTER_ACCESS_SECRET"
)

type Telegram struct {
	Token string `yaml:"token"`
}

type Source struct {
	URL      string        `yaml:"url"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Metrics struct {
	ListenAddress string `yaml:"listen_address"`
}

type Config struct {
	Telegram Telegram                    `yaml:"telegram"`
	Source   Source                      `yaml:"source"`
	Log      Log                         `yaml:"log"`
	Metrics  Metrics                     `yaml:"metrics"`
	Twitter  notifier.TwitterCredentials `yaml:"twitter"`
}

// Load reads path (skipped when empty), applies the environment on top and fills
// in defaults for anything still unset.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	c.applyEnv(os.LookupEnv)
	c.applyDefaults()

	return &c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Telegram.Token, EnvToken)
	set(&c.Source.URL, EnvURL)
	set(&c.Twitter.APIKey, EnvTwitterAPIKey)
	set(&c.Twitter.APISecret, EnvTwitterAPISecret)
	set(&c.Twitter.AccessToken, EnvTwitterAccessToken)
	set(&c.Twitter.AccessSecret, EnvTwitterAccessSecret)
}

func (c *Config) applyDefaults() {
	// Defaults
	if c.Source.URL == "" {
		c.Source.URL = scraper.DefaultURL
	}
	if c.Source.Interval == 0 {
		c.Source.Interval = poller.DefaultInterval
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = scraper.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = string(logger.LevelInfo)
	}
}

// Validate checks the settings needed to run the bot. The token may only be
// omitted when nothing is sent to Telegram.
func (c *Config) Validate(requireToken bool) error {
	var errs []error

	if requireToken && c.Telegram.Token == "" {
		errs = append(errs, fmt.Errorf("bot token is required (set %s or telegram.token)", EnvToken))
	}
	if c.Source.URL == "" {
		errs = append(errs, errors.New("source url is required"))
	}
	if c.Source.Interval < 0 {
		errs = append(errs, fmt.Errorf("invalid interval: %s", c.Source.Interval))
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, fmt.Errorf("invalid timeout: %s", c.Source.Timeout))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
