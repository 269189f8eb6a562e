// Package config loads run settings and the scrape input payload.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var ErrMissingOriginURL = errors.New("input must include 'originUrl' (transparency search/detail URL)")

// Settings configures transport and optional sinks. All fields have usable
// defaults; the settings file is optional.
type Settings struct {
	CookiesFile string `mapstructure:"cookiesFile"`
	Proxy       string `mapstructure:"proxy"`
	UserAgent   string `mapstructure:"userAgent"`
	Mock        bool   `mapstructure:"mock"`
	TimeoutSec  int    `mapstructure:"timeoutSec"`
	PostgresURL string `mapstructure:"postgresUrl"`
	RedisAddr   string `mapstructure:"redisAddr"`
}

// LoadSettings reads the settings JSON file, layered with SCRAPER_-prefixed
// environment variables and defaults. A missing file is not an error.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("SCRAPER")
	v.AutomaticEnv()

	v.SetDefault("mock", true)
	v.SetDefault("timeoutSec", 30)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &settings, nil
}

// Input is the scrape request payload.
type Input struct {
	OriginURL     string `json:"originUrl"`
	URL           string `json:"url"`
	MaxItems      int    `json:"maxItems"`
	DownloadMedia bool   `json:"downloadMedia"`
}

// LoadInput reads and validates the input payload. A missing file or a
// payload without an origin URL is fatal for the run.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("input JSON not found at %s: %w", path, err)
	}

	var input Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input %s: %w", path, err)
	}

	if input.OriginURL == "" {
		input.OriginURL = input.URL
	}
	if input.OriginURL == "" {
		return nil, ErrMissingOriginURL
	}
	if input.MaxItems <= 0 {
		input.MaxItems = 100
	}
	return &input, nil
}
