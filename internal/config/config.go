// Package config loads pagecrate configuration from defaults, an
// optional YAML file, and PAGECRATE_* environment variables, in
// increasing order of precedence.
package config

import "time"

// Config is the full pagecrate configuration.
type Config struct {
	Server          ServerConfig  `mapstructure:"server"`
	Bucket          BucketConfig  `mapstructure:"bucket"`
	Notion          NotionConfig  `mapstructure:"notion"`
	Crawl           CrawlConfig   `mapstructure:"crawl"`
	Cache           CacheConfig   `mapstructure:"cache"`
	Match           MatchConfig   `mapstructure:"match"`
	Auth            AuthConfig    `mapstructure:"auth"`
	Logging         LoggingConfig `mapstructure:"logging"`
	PresignedURLTTL time.Duration `mapstructure:"presigned_url_ttl"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BucketConfig configures the served bucket.
type BucketConfig struct {
	Name string `mapstructure:"name"`
}

// NotionConfig configures the upstream Notion client.
type NotionConfig struct {
	// APIKey is the integration token. Usually supplied via
	// PAGECRATE_NOTION_API_KEY.
	APIKey string `mapstructure:"api_key"`

	BaseURL string `mapstructure:"base_url"`
	Version string `mapstructure:"version"`

	// RateLimit is the request budget in requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`

	Timeout time.Duration `mapstructure:"timeout"`
}

// CrawlConfig configures crawl bounds.
type CrawlConfig struct {
	MaxDepth    int `mapstructure:"max_depth"`
	MaxChildren int `mapstructure:"max_children"`
	Concurrency int `mapstructure:"concurrency"`
}

// CacheConfig configures upstream response caching.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MatchConfig scopes projected namespace keys.
type MatchConfig struct {
	Includes []string `mapstructure:"includes"`
	Excludes []string `mapstructure:"excludes"`
}

// AuthConfig configures the boundary API-key check. An empty key
// disables authentication.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LoggingConfig configures process logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}
