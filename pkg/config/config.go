package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API   APIConfig
	Cache CacheConfig
	Watch WatchConfig
	Mock  MockConfig

	Environment string `mapstructure:"environment"`
}

// APIConfig holds settings for the HTTP client talking to the inventory server.
// BaseURL is the server origin WITHOUT the /api prefix; the prefix is appended
// in exactly one place (the client's URL builder) so individual resource
// modules can never disagree about it.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UploadTimeout  time.Duration `mapstructure:"upload_timeout"`
	TokenPath      string        `mapstructure:"token_path"`
}

// CacheConfig holds settings for the client-side query cache.
type CacheConfig struct {
	Staleness    time.Duration `mapstructure:"staleness"`
	SnapshotPath string        `mapstructure:"snapshot_path"`
}

// WatchConfig holds settings for the long-running watch mode.
type WatchConfig struct {
	AlertInterval   time.Duration `mapstructure:"alert_interval"`
	ReorderInterval time.Duration `mapstructure:"reorder_interval"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
}

// MockConfig holds settings for the local mock API server.
type MockConfig struct {
	Addr         string        `mapstructure:"addr"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenExpiry  time.Duration `mapstructure:"token_expiry"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Load loads configuration from environment variables and an optional config
// file (pharmadash.yaml in the working directory or the user config dir).
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PHARMADASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("pharmadash")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "pharmadash"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithValidation loads configuration and validates it. Use this in main()
// for fail-fast behavior.
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would only fail later,
// mid-request.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PHARMADASH_API_BASE_URL is not a valid URL: %q", c.API.BaseURL)
	}
	if strings.HasSuffix(strings.TrimRight(u.Path, "/"), "/api") {
		return errors.New("PHARMADASH_API_BASE_URL must not include the /api prefix - it is appended by the client")
	}
	if c.API.RequestTimeout <= 0 {
		return errors.New("api.request_timeout must be positive")
	}
	if c.API.UploadTimeout < c.API.RequestTimeout {
		return errors.New("api.upload_timeout must not be shorter than api.request_timeout")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// API defaults. Upload gets an extended timeout since server-side
	// spreadsheet parsing can be slow.
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.request_timeout", 30*time.Second)
	v.SetDefault("api.upload_timeout", 120*time.Second)
	v.SetDefault("api.token_path", defaultStatePath("token"))

	// Cache defaults
	v.SetDefault("cache.staleness", 30*time.Second)
	v.SetDefault("cache.snapshot_path", defaultStatePath("snapshots.db"))

	// Watch defaults
	v.SetDefault("watch.alert_interval", 30*time.Second)
	v.SetDefault("watch.reorder_interval", 60*time.Second)
	v.SetDefault("watch.metrics_addr", "127.0.0.1:9135")

	// Mock server defaults
	v.SetDefault("mock.addr", "127.0.0.1:8000")
	v.SetDefault("mock.jwt_secret", "dev-secret-change-in-production")
	v.SetDefault("mock.token_expiry", 12*time.Hour)
	v.SetDefault("mock.read_timeout", 30*time.Second)
	v.SetDefault("mock.write_timeout", 30*time.Second)
}

// defaultStatePath returns a path under the user config dir, falling back to
// the working directory when the home cannot be resolved.
func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "pharmadash", name)
}
