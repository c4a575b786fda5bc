// Package config loads the assistant's configuration from an optional YAML
// file, applies environment-variable overrides and fills in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/school-assistant/internal/common"
)

// Config is the top-level application configuration.
type Config struct {
	School   SchoolConfig   `yaml:"school"`
	Crawler  CrawlerConfig  `yaml:"crawler"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	LLM      LLMConfig      `yaml:"llm"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SchoolConfig describes the single school this assistant serves.
type SchoolConfig struct {
	Name    string `yaml:"name"`
	SeedURL string `yaml:"seedUrl"`
	// Keywords are lower-case tokens that identify the school by name or
	// locality, e.g. "dav", "koyla", "nagar".
	Keywords      []string `yaml:"keywords"`
	DefaultTitle  string   `yaml:"defaultTitle"`
	AssistantName string   `yaml:"assistantName"`
}

// CrawlerConfig bounds a single crawl run.
type CrawlerConfig struct {
	PageBudget         int           `yaml:"pageBudget"`
	DiscoveryCap       int           `yaml:"discoveryCap"`
	Delay              time.Duration `yaml:"delay"`
	Timeout            time.Duration `yaml:"timeout"`
	UserAgent          string        `yaml:"userAgent"`
	InsecureSkipVerify bool          `yaml:"insecureSkipVerify"`
	MaxContentLength   int           `yaml:"maxContentLength"`
	MaxBodyBytes       int64         `yaml:"maxBodyBytes"`
}

// RefreshConfig controls the background re-crawl.
type RefreshConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// LLMConfig holds the hosted language model settings.
type LLMConfig struct {
	APIKey  string        `yaml:"apiKey"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig selects the model answer cache backend.
type CacheConfig struct {
	Backend       string        `yaml:"backend"` // none, file, redis
	Dir           string        `yaml:"dir"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDb"`
}

// DatabaseConfig locates the sqlite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Default returns a Config populated with the tuned defaults for the
// DAV Koyla Nagar deployment.
func Default() *Config {
	return &Config{
		School: SchoolConfig{
			Name:          "DAV Koyla Nagar",
			SeedURL:       "http://davkoylanagar.com/",
			Keywords:      []string{"dav", "koyla", "nagar"},
			DefaultTitle:  "DAV Koyla Nagar",
			AssistantName: "DAVGPT",
		},
		Crawler: CrawlerConfig{
			PageBudget:         50,
			DiscoveryCap:       100,
			Delay:              500 * time.Millisecond,
			Timeout:            15 * time.Second,
			UserAgent:          defaultUserAgent,
			InsecureSkipVerify: true,
			MaxContentLength:   3000,
			MaxBodyBytes:       5 << 20,
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: 2 * time.Hour,
		},
		LLM: LLMConfig{
			Model:   "gemini-2.0-flash",
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   "none",
			Dir:       ".schoolbot-cache",
			TTL:       6 * time.Hour,
			RedisAddr: "localhost:6379",
		},
		Database: DatabaseConfig{
			Path: "schoolbot.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// Load reads a YAML config file (if path is non-empty) over the defaults and
// then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate reports configuration errors an operator has to fix.
func (c *Config) Validate() error {
	var errs []error
	if _, err := common.ValidateSeedURL(c.School.SeedURL); err != nil {
		errs = append(errs, fmt.Errorf("school.seedUrl: %w", err))
	}
	if c.School.Name == "" {
		errs = append(errs, errors.New("school.name is required"))
	}
	if c.Crawler.PageBudget <= 0 {
		errs = append(errs, errors.New("crawler.pageBudget must be positive"))
	}
	if c.Crawler.DiscoveryCap <= 0 {
		errs = append(errs, errors.New("crawler.discoveryCap must be positive"))
	}
	if c.Crawler.MaxContentLength <= 0 {
		errs = append(errs, errors.New("crawler.maxContentLength must be positive"))
	}
	if c.Crawler.Timeout <= 0 {
		errs = append(errs, errors.New("crawler.timeout must be positive"))
	}
	if c.Refresh.Enabled && c.Refresh.Interval <= 0 {
		errs = append(errs, errors.New("refresh.interval must be positive"))
	}
	switch c.Cache.Backend {
	case "", "none", "file", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not one of none, file, redis", c.Cache.Backend))
	}
	return errors.Join(errs...)
}

// applyEnvOverrides reads environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WEBSITE_URL"); v != "" {
		cfg.School.SeedURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("SCHOOLBOT_SCHOOL_NAME"); v != "" {
		cfg.School.Name = v
	}
	if v := os.Getenv("SCHOOLBOT_SCHOOL_KEYWORDS"); v != "" {
		cfg.School.Keywords = splitList(v)
	}
	if v := os.Getenv("SCHOOLBOT_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SCHOOLBOT_PAGE_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Crawler.PageBudget = n
		}
	}
	if v := os.Getenv("SCHOOLBOT_REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Refresh.Interval = d
		}
	}
	if v := os.Getenv("SCHOOLBOT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SCHOOLBOT_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SCHOOLBOT_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SCHOOLBOT_REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("SCHOOLBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCHOOLBOT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SCHOOLBOT_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
