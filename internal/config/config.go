// Package config loads and validates scraper service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/market-search-scraper/internal/scraper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Browser BrowserConfig `mapstructure:"browser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// ScraperConfig governs the target marketplace and pagination limits.
type ScraperConfig struct {
	BaseURL             string            `mapstructure:"base_url"`
	Marketplace         string            `mapstructure:"marketplace"`
	UserAgent           string            `mapstructure:"user_agent"`
	NavTimeoutSeconds   int               `mapstructure:"nav_timeout_seconds"`
	ReadyTimeoutSeconds int               `mapstructure:"ready_timeout_seconds"`
	MaxPages            int               `mapstructure:"max_pages"`
	DomainQPS           float64           `mapstructure:"domain_qps"`
	Selectors           scraper.Selectors `mapstructure:"selectors"`
}

// BrowserConfig configures the headless Chrome process.
type BrowserConfig struct {
	Headless  bool   `mapstructure:"headless"`
	NoSandbox bool   `mapstructure:"no_sandbox"`
	ExecPath  string `mapstructure:"exec_path"`
}

// LoggingConfig toggles zap development features and the minimum level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 300)
	v.SetDefault("scraper.base_url", "https://www.amazon.com")
	v.SetDefault("scraper.marketplace", "Amazon")
	v.SetDefault("scraper.user_agent", scraper.DefaultUserAgent)
	v.SetDefault("scraper.nav_timeout_seconds", 60)
	v.SetDefault("scraper.ready_timeout_seconds", 10)
	v.SetDefault("scraper.max_pages", scraper.MaxPages)
	v.SetDefault("scraper.domain_qps", 0)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return errors.New("server.request_timeout_seconds must be > 0")
	}
	u, err := url.Parse(c.Scraper.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("scraper.base_url must be an absolute URL, got %q", c.Scraper.BaseURL)
	}
	if strings.TrimSpace(c.Scraper.Marketplace) == "" {
		return errors.New("scraper.marketplace must be set")
	}
	if c.Scraper.NavTimeoutSeconds <= 0 {
		return errors.New("scraper.nav_timeout_seconds must be > 0")
	}
	if c.Scraper.ReadyTimeoutSeconds <= 0 {
		return errors.New("scraper.ready_timeout_seconds must be > 0")
	}
	if c.Scraper.MaxPages <= 0 || c.Scraper.MaxPages > scraper.MaxPages {
		return fmt.Errorf("scraper.max_pages must be between 1 and %d", scraper.MaxPages)
	}
	if c.Scraper.DomainQPS < 0 {
		return errors.New("scraper.domain_qps must be >= 0")
	}
	return nil
}

// RequestTimeout bounds a single API request.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// ScraperOptions converts the scraper section into orchestrator settings.
func (c Config) ScraperOptions() scraper.Config {
	return scraper.Config{
		BaseURL:      c.Scraper.BaseURL,
		NavTimeout:   time.Duration(c.Scraper.NavTimeoutSeconds) * time.Second,
		ReadyTimeout: time.Duration(c.Scraper.ReadyTimeoutSeconds) * time.Second,
		MaxPages:     c.Scraper.MaxPages,
		Selectors:    c.Scraper.Selectors,
	}
}

// ChromedpOptions converts the browser section into launcher settings.
func (c Config) ChromedpOptions() scraper.ChromedpConfig {
	return scraper.ChromedpConfig{
		UserAgent: c.Scraper.UserAgent,
		Headless:  c.Browser.Headless,
		NoSandbox: c.Browser.NoSandbox,
		ExecPath:  c.Browser.ExecPath,
	}
}
