package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// PAGECRATE_SERVER_PORT.
const EnvPrefix = "PAGECRATE"

// Load builds the configuration from defaults, an optional YAML config
// file, and environment variables. Precedence: env > file > defaults.
//
// path may be empty, in which case no config file is read.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about; bind every defaulted
	// key so env-only overrides are picked up.
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value for every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("bucket.name", "notion-s3-api")

	v.SetDefault("notion.api_key", "")
	v.SetDefault("notion.base_url", "https://api.notion.com")
	v.SetDefault("notion.version", "2022-06-28")
	v.SetDefault("notion.rate_limit", 3.0)
	v.SetDefault("notion.timeout", "30s")

	v.SetDefault("crawl.max_depth", 5)
	v.SetDefault("crawl.max_children", 50)
	v.SetDefault("crawl.concurrency", 4)

	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("presigned_url_ttl", "1h")

	v.SetDefault("match.includes", []string{})
	v.SetDefault("match.excludes", []string{})

	v.SetDefault("auth.api_key", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
}
