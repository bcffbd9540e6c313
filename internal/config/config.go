package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Storage StorageConfig
	Log     LogConfig
	Dev     DevConfig
}

type APIConfig struct {
	BaseURL string
	Timeout string
}

// RequestTimeout returns the parsed API timeout. Load has already validated
// it. Zero means requests never time out.
func (c APIConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
	File  string
}

type DevConfig struct {
	Port int
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Dev: DevConfig{
			Port: 8000,
		},
	}
}

// DotenvFile is read from the working directory before the environment is
// consulted. Variables already present in the environment win.
const DotenvFile = ".env"

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/taxdesk/config.json, then applies TAXDESK_* environment
// variables (including those from an optional .env file).
func Load() (Config, error) {
	if err := loadDotenv(DotenvFile); err != nil {
		return Config{}, err
	}
	return loadWith(newPlatformBackend())
}

func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url %q: %w", cfg.API.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: want an http(s) URL", cfg.API.BaseURL)
	}
	d, err := time.ParseDuration(cfg.API.Timeout)
	if err != nil {
		return fmt.Errorf("invalid api.timeout %q: %w", cfg.API.Timeout, err)
	}
	if d < 0 {
		return fmt.Errorf("invalid api.timeout %q: must not be negative", cfg.API.Timeout)
	}
	if cfg.Dev.Port <= 0 || cfg.Dev.Port > 65535 {
		return fmt.Errorf("invalid dev.port %d", cfg.Dev.Port)
	}
	return nil
}
