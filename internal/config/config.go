package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"RSIWatch/internal/model"

	"gopkg.in/yaml.v3"
)

// Window bounds offered by the dashboard.
const (
	MinWindow     = 2
	MaxWindow     = 30
	DefaultWindow = 14
)

// Config holds all application configuration.
type Config struct {
	Env        string `yaml:"env"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo, rest or mock
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Symbol   string `yaml:"symbol"`
	} `yaml:"data_source"`
	Dashboard struct {
		Listen string `yaml:"listen"`
		Period string `yaml:"period"`
		Window int    `yaml:"window"`
	} `yaml:"dashboard"`
	Cache struct {
		TTL      time.Duration `yaml:"ttl"`
		RedisURL string        `yaml:"redis_url"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Telemetry struct {
		Enabled   bool     `yaml:"enabled"`
		Tracing   bool     `yaml:"tracing"`
		AgentHost string   `yaml:"agent_host"`
		AgentPort string   `yaml:"agent_port"`
		Tags      []string `yaml:"tags"`
	} `yaml:"telemetry"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Dashboard.Listen = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("DD_AGENT_HOST"); v != "" {
		cfg.Telemetry.AgentHost = v
	}
	if v := os.Getenv("DD_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.Enabled = b
		}
	}

	// Defaults
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "BTC-USD"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = "rest"
		}
	}
	if cfg.Dashboard.Listen == "" {
		cfg.Dashboard.Listen = ":8080"
	}
	if cfg.Dashboard.Period == "" {
		cfg.Dashboard.Period = string(model.DefaultPeriod)
	}
	if cfg.Dashboard.Window == 0 {
		cfg.Dashboard.Window = DefaultWindow
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */15 * * * *"
	}
	if cfg.Telemetry.AgentHost == "" {
		cfg.Telemetry.AgentHost = "localhost"
	}
	if cfg.Telemetry.AgentPort == "" {
		cfg.Telemetry.AgentPort = "8126"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if _, err := model.ParsePeriod(c.Dashboard.Period); err != nil {
		return fmt.Errorf("dashboard.period: %w", err)
	}
	if err := ValidateWindow(c.Dashboard.Window); err != nil {
		return fmt.Errorf("dashboard.window: %w", err)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// DefaultPeriod returns the validated dashboard period.
func (c *Config) DefaultPeriod() model.Period {
	p, err := model.ParsePeriod(c.Dashboard.Period)
	if err != nil {
		return model.DefaultPeriod
	}
	return p
}

// ValidateWindow enforces the dashboard's window bounds.
func ValidateWindow(w int) error {
	if w < MinWindow || w > MaxWindow {
		return fmt.Errorf("window %d out of range [%d, %d]", w, MinWindow, MaxWindow)
	}
	return nil
}
