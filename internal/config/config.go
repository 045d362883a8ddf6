// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/trektoo-proxy/config.toml",
	"configs/config.toml",
}

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config           string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host             string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port             int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	ActivitiesAPIKey string `kong:"help='Activities provider API key (overrides config).',env='ACTIVITIES_API_KEY'"`
	HotelUser        string `kong:"help='Hotel provider Basic-auth username (overrides config).',env='HOTEL_API_USER'"`
	HotelPass        string `kong:"help='Hotel provider Basic-auth password (overrides config).',env='HOTEL_API_PASS'"`
	RedisAddress     string `kong:"help='Redis address for the image cache (overrides config).',env='REDIS_ADDRESS'"`
	LogLevel         string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Activities ActivitiesConfig `toml:"activities"`
	Hotel      HotelConfig      `toml:"hotel"`
	Cache      CacheConfig      `toml:"cache"`
	Log        LogConfig        `toml:"log"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Mock       MockConfig       `toml:"mock"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string          `toml:"host"`
	Port         int             `toml:"port"` // 0 means "use default" (8000); TOML cannot distinguish 0 from unset
	BodyMaxBytes int64           `toml:"body_max_bytes"`
	Environment  string          `toml:"environment"` // "production" or "development"; controls error detail exposure
	RateLimit    RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ActivitiesConfig holds the tours/activities provider settings.
// The provider authenticates with a static API-key header.
type ActivitiesConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Language       string `toml:"language"` // default language code sent upstream
}

// HotelConfig holds the hotel provider settings.
// Catalog calls authenticate with HTTP Basic auth; user-scoped calls forward
// the caller's bearer token and use the shorter user timeout.
type HotelConfig struct {
	Username           string `toml:"username"`
	Password           string `toml:"password"`
	BaseURL            string `toml:"base_url"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	UserTimeoutSeconds int    `toml:"user_timeout_seconds"`
}

// CacheConfig holds image-cache settings.
type CacheConfig struct {
	Backend                string `toml:"backend"` // "memory" or "redis"
	RedisAddress           string `toml:"redis_address"`
	RedisPassword          string `toml:"redis_password"`
	RedisDB                int    `toml:"redis_db"`
	ImageTTLHours          int    `toml:"image_ttl_hours"`
	PrefetchConcurrency    int    `toml:"prefetch_concurrency"`
	PrefetchTimeoutSeconds int    `toml:"prefetch_timeout_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// MockConfig gates staging-only fallback behavior. When enabled, the
// categories endpoint serves a fixed list if upstream omits categories, and
// hotel searches override the caller's location with LocationID. When
// disabled, caller parameters are always honored.
type MockConfig struct {
	Enabled    bool `toml:"enabled"`
	LocationID int  `toml:"location_id"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/trektoo-proxy/config.toml then configs/config.toml.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return nil, fmt.Errorf("config: no config file found (searched %v)", configSearchPaths)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.filePath = path
	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.ActivitiesAPIKey != "" {
		c.Activities.APIKey = cli.ActivitiesAPIKey
	}
	if cli.HotelUser != "" {
		c.Hotel.Username = cli.HotelUser
	}
	if cli.HotelPass != "" {
		c.Hotel.Password = cli.HotelPass
	}
	if cli.RedisAddress != "" {
		c.Cache.RedisAddress = cli.RedisAddress
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	// Upstream URLs: required and must be HTTPS.
	for name, base := range map[string]string{
		"activities.base_url": c.Activities.BaseURL,
		"hotel.base_url":      c.Hotel.BaseURL,
	} {
		if base == "" {
			return fmt.Errorf("%s is required", name)
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", name, err)
		}
		if u.Scheme != "https" {
			return fmt.Errorf("%s must use HTTPS; got %q", name, base)
		}
	}

	// Credentials: required unless mock mode is on. Failing here keeps a
	// misconfigured deployment from accepting traffic it can never serve.
	if !c.Mock.Enabled {
		if c.Activities.APIKey == "" {
			return fmt.Errorf("activities.api_key is required (or enable mock mode)")
		}
		if c.Hotel.Username == "" || c.Hotel.Password == "" {
			return fmt.Errorf("hotel.username and hotel.password are required (or enable mock mode)")
		}
	}
	if c.Activities.APIKey == "YOUR_API_KEY_HERE" {
		return fmt.Errorf("activities.api_key contains placeholder value")
	}

	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	for name, v := range map[string]int{
		"activities.timeout_seconds":     c.Activities.TimeoutSeconds,
		"hotel.timeout_seconds":          c.Hotel.TimeoutSeconds,
		"hotel.user_timeout_seconds":     c.Hotel.UserTimeoutSeconds,
		"cache.image_ttl_hours":          c.Cache.ImageTTLHours,
		"cache.prefetch_concurrency":     c.Cache.PrefetchConcurrency,
		"cache.prefetch_timeout_seconds": c.Cache.PrefetchTimeoutSeconds,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative; got %d", name, v)
		}
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}

	switch c.Cache.Backend {
	case "", "memory":
		// valid
	case "redis":
		if c.Cache.RedisAddress == "" {
			return fmt.Errorf("cache.redis_address is required when cache.backend is redis")
		}
	default:
		return fmt.Errorf("cache.backend must be one of: memory, redis; got %q", c.Cache.Backend)
	}

	switch strings.ToLower(c.Server.Environment) {
	case "production", "development", "":
		// valid
	default:
		return fmt.Errorf("server.environment must be one of: production, development; got %q", c.Server.Environment)
	}

	// Log fields.
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled).
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range []string{"/api/activities", "/api/hotel", "/api/auth", "/api/user", "/healthz", "/proxy/status"} {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields, zero means "unset" because TOML cannot distinguish
// between an explicit 0 and an omitted key.
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 1 * 1024 * 1024 // 1 MB; inbound bodies are small JSON
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "production"
	}
	if c.Activities.TimeoutSeconds == 0 {
		c.Activities.TimeoutSeconds = 30
	}
	if c.Activities.Language == "" {
		c.Activities.Language = "en"
	}
	if c.Hotel.TimeoutSeconds == 0 {
		c.Hotel.TimeoutSeconds = 30
	}
	if c.Hotel.UserTimeoutSeconds == 0 {
		c.Hotel.UserTimeoutSeconds = 10
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.ImageTTLHours == 0 {
		c.Cache.ImageTTLHours = 24
	}
	if c.Cache.PrefetchConcurrency == 0 {
		c.Cache.PrefetchConcurrency = 8
	}
	if c.Cache.PrefetchTimeoutSeconds == 0 {
		c.Cache.PrefetchTimeoutSeconds = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Production reports whether error details should be withheld from responses.
func (c *Config) Production() bool {
	return strings.ToLower(c.Server.Environment) != "development"
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
