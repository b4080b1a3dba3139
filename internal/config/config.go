// Package config loads runtime settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "EPSS_VIEWER_CONFIG"

type EPSS struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type NVD struct {
	APIURL  string        `yaml:"api_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type Server struct {
	Listen string `yaml:"listen"`
}

// Render controls terminal output. Color is one of auto, always, never;
// Width 0 means the terminal width.
type Render struct {
	Color string `yaml:"color"`
	Width int    `yaml:"width"`
}

type Config struct {
	EPSS     EPSS   `yaml:"epss"`
	NVD      NVD    `yaml:"nvd"`
	Server   Server `yaml:"server"`
	Render   Render `yaml:"render"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		EPSS: EPSS{
			APIURL:  "https://api.first.org/data/v1/epss",
			Timeout: 10 * time.Second,
		},
		NVD: NVD{
			APIURL:  "https://services.nvd.nist.gov/rest/json/cves/2.0",
			Timeout: 15 * time.Second,
		},
		Server:   Server{Listen: ":8080"},
		Render:   Render{Color: "auto"},
		LogLevel: "info",
	}
}

// GetEnvDefault returns the value of key, or defVal when it is unset.
func GetEnvDefault(key, defVal string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defVal
	}
	return val
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty and EPSS_VIEWER_CONFIG is unset) and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config read: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	c.EPSS.APIURL = GetEnvDefault("EPSS_API_URL", c.EPSS.APIURL)
	c.NVD.APIURL = GetEnvDefault("NVD_API_URL", c.NVD.APIURL)
	c.NVD.APIKey = GetEnvDefault("NVD_API_KEY", c.NVD.APIKey)
	c.Server.Listen = GetEnvDefault("EPSS_LISTEN", c.Server.Listen)
	c.LogLevel = GetEnvDefault("EPSS_LOG_LEVEL", c.LogLevel)
	if v, ok := os.LookupEnv("EPSS_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config env EPSS_TIMEOUT: %w", err)
		}
		c.EPSS.Timeout = d
	}
	return nil
}

// Validate rejects settings the clients cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.EPSS.APIURL == "" {
		errs = append(errs, errors.New("epss.api_url is empty"))
	}
	if c.EPSS.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("epss.timeout must be positive, got %s", c.EPSS.Timeout))
	}
	if c.NVD.APIURL == "" {
		errs = append(errs, errors.New("nvd.api_url is empty"))
	}
	if c.NVD.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("nvd.timeout must be positive, got %s", c.NVD.Timeout))
	}
	switch c.Render.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("render.color must be auto, always or never, got %q", c.Render.Color))
	}
	if c.Render.Width < 0 {
		errs = append(errs, fmt.Errorf("render.width must not be negative, got %d", c.Render.Width))
	}
	return errors.Join(errs...)
}
