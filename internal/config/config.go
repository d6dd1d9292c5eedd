package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGDPURL       = "https://ec.europa.eu/eurostat/api/dissemination/statistics/1.0/data/nama_10_gdp?format=JSON&geo=PT&unit=CP_MEUR&na_item=B1GQ"
	DefaultInflationURL = "https://ec.europa.eu/eurostat/api/dissemination/statistics/1.0/data/prc_hicp_aind?format=JSON&geo=PT&unit=RCH_A_AVG&coicop=CP00"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr  string `yaml:"addr"`
		Title string `yaml:"title"`
	} `yaml:"server"`
	DataSource struct {
		GDPURL       string        `yaml:"gdp_url"`
		InflationURL string        `yaml:"inflation_url"`
		Timeout      time.Duration `yaml:"timeout"`
		Attempts     uint          `yaml:"attempts"`
	} `yaml:"data_source"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
	Debug bool   `yaml:"debug"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error: defaults reproduce the Portugal dashboard.
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
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GDP_URL"); v != "" {
		cfg.DataSource.GDPURL = v
	}
	if v := os.Getenv("INFLATION_URL"); v != "" {
		cfg.DataSource.InflationURL = v
	}
	if v := os.Getenv("FETCH_ATTEMPTS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse FETCH_ATTEMPTS: %w", err)
		}
		cfg.DataSource.Attempts = uint(n)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DEBUG"); v == "true" {
		cfg.Debug = true
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8050"
	}
	if cfg.Server.Title == "" {
		cfg.Server.Title = "Pro-Statistics"
	}
	if cfg.DataSource.GDPURL == "" {
		cfg.DataSource.GDPURL = DefaultGDPURL
	}
	if cfg.DataSource.InflationURL == "" {
		cfg.DataSource.InflationURL = DefaultInflationURL
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.DataSource.Attempts == 0 {
		cfg.DataSource.Attempts = 1
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	for name, raw := range map[string]string{
		"data_source.gdp_url":       c.DataSource.GDPURL,
		"data_source.inflation_url": c.DataSource.InflationURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.DataSource.Timeout < 0 {
		return fmt.Errorf("data_source.timeout must not be negative")
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
	}
	return nil
}
