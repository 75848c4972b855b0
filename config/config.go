package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL         string `json:"api_base_url"         yaml:"api_base_url"`
	StateDir           string `json:"state_dir"            yaml:"state_dir"`
	RequestsPerMinute  int32  `json:"requests_per_minute"  yaml:"requests_per_minute"`
	DefaultLibraryView string `json:"default_library_view" yaml:"default_library_view"`
}

func (cfg *Config) validate() error {
	if cfg.APIBaseURL == "" {
		return errors.New("api base url is empty")
	}

	if _, err := url.Parse(cfg.APIBaseURL); nil != err {
		return fmt.Errorf("api base url is invalid: %v", err)
	}

	if cfg.StateDir == "" {
		return errors.New("state dir is empty")
	}

	if cfg.RequestsPerMinute < 0 {
		return errors.New("requests per minute must not be negative")
	}

	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.DefaultLibraryView == "" {
		cfg.DefaultLibraryView = "all"
	}
}

func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %v", filePath, err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func FromString(data string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(data), &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}
