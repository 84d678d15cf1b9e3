package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string          `yaml:"env"`
	Server    ServerConfig    `yaml:"server"`
	News      NewsConfig      `yaml:"news"`
	Reader    ReaderConfig    `yaml:"reader"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type NewsConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	Timeout         string `yaml:"timeout"`
	CacheTTL        string `yaml:"cache_ttl"`
	StaleGrace      string `yaml:"stale_grace"`
	CleanupInterval string `yaml:"cleanup_interval"`
	RetryMax        int    `yaml:"retry_max"`
	UserAgent       string `yaml:"user_agent"`
	SamplePath      string `yaml:"sample_path"`
}

type ReaderConfig struct {
	Enabled bool            `yaml:"enabled"`
	Timeout string          `yaml:"timeout"`
	Blocked []BlockedSource `yaml:"blocked"`
	Sites   []SiteSelector  `yaml:"sites"`
	// AllowInternal lets the reader fetch loopback, private and link-local
	// hosts. Leave it off outside local development.
	AllowInternal bool `yaml:"allow_internal"`
}

// BlockedSource keeps the reader away from a domain, or only from some of
// its paths when Paths is set.
type BlockedSource struct {
	Domain string   `yaml:"domain"`
	Paths  []string `yaml:"paths"`
}

// SiteSelector pins the article container for one publisher instead of
// relying on readability.
type SiteSelector struct {
	Domain  string   `yaml:"domain"`
	Content string   `yaml:"content"`
	Remove  []string `yaml:"remove"`
}

type BookmarksConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Default returns sane defaults.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Addr:            ":3003",
			ShutdownTimeout: "10s",
		},
		News: NewsConfig{
			BaseURL:         "https://newsapi.org/v2",
			Timeout:         "10s",
			CacheTTL:        "10m",
			StaleGrace:      "1h",
			CleanupInterval: "10m",
			UserAgent:       "newsdesk/1.0 (+https://github.com/newsdesk)",
			SamplePath:      "data/sample.json",
		},
		Reader: ReaderConfig{
			Enabled: true,
			Timeout: "15s",
		},
		Bookmarks: BookmarksConfig{
			Driver: "memory",
		},
	}
}

// Load reads defaults, overlays the YAML file at path when path is not
// empty, then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrReadConfigFail, path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigParsingFail, path, err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := getenv("NEWS_API_BASE_URL"); v != "" {
		c.News.BaseURL = v
	}
	if v := getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	// PORT is what most platforms hand us
	if v := getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
}

// Validate checks that every duration parses and that the enum-like fields
// hold known values.
func (c *Config) Validate() error {
	durations := map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"news.timeout":            c.News.Timeout,
		"news.cache_ttl":          c.News.CacheTTL,
		"news.stale_grace":        c.News.StaleGrace,
		"news.cleanup_interval":   c.News.CleanupInterval,
		"reader.timeout":          c.Reader.Timeout,
	}
	for name, raw := range durations {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	}
	if u, err := url.Parse(c.News.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: news.base_url %q is not an absolute URL", ErrInvalidConfig, c.News.BaseURL)
	}
	for i, site := range c.Reader.Sites {
		if site.Domain == "" || site.Content == "" {
			return fmt.Errorf("%w: reader.sites[%d] needs domain and content", ErrInvalidConfig, i)
		}
	}
	if c.News.RetryMax < 0 {
		return fmt.Errorf("%w: news.retry_max must not be negative", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Bookmarks.Driver) {
	case "memory":
	case "sqlite":
		if c.Bookmarks.DSN == "" {
			return fmt.Errorf("%w: bookmarks.dsn is required for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown bookmarks.driver %q", ErrInvalidConfig, c.Bookmarks.Driver)
	}
	return nil
}

func (c *Config) ShutdownTimeout() time.Duration { return mustDuration(c.Server.ShutdownTimeout) }
func (c *Config) RequestTimeout() time.Duration  { return mustDuration(c.News.Timeout) }
func (c *Config) CacheTTL() time.Duration        { return mustDuration(c.News.CacheTTL) }
func (c *Config) StaleGrace() time.Duration      { return mustDuration(c.News.StaleGrace) }
func (c *Config) CleanupInterval() time.Duration { return mustDuration(c.News.CleanupInterval) }
func (c *Config) ReaderTimeout() time.Duration   { return mustDuration(c.Reader.Timeout) }

// mustDuration is only called on validated configs; a bad value yields zero.
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
