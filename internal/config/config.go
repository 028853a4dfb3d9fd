package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Providers   ProvidersConfig `mapstructure:"providers"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Mock        MockConfig      `mapstructure:"mock"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ProvidersConfig struct {
	GitHub    ProviderConfig `mapstructure:"github"`
	OpenAQ    ProviderConfig `mapstructure:"openaq"`
	CoinGecko ProviderConfig `mapstructure:"coingecko"`
}

// ProviderConfig holds one provider's endpoint and rate-limit budget.
// Window, RetryAfter and Timeout are duration strings ("1h", "30s").
type ProviderConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Token       string `mapstructure:"token"`
	MaxRequests int    `mapstructure:"max_requests"`
	Window      string `mapstructure:"window"`
	RetryAfter  string `mapstructure:"retry_after"`
	Timeout     string `mapstructure:"timeout"`
	MaxRetries  int    `mapstructure:"max_retries"`
}

// WindowDuration returns the parsed rate-limit window.
func (p ProviderConfig) WindowDuration() time.Duration {
	return mustDuration(p.Window)
}

// RetryAfterDuration returns the parsed courtesy-wait duration.
func (p ProviderConfig) RetryAfterDuration() time.Duration {
	return mustDuration(p.RetryAfter)
}

// TimeoutDuration returns the parsed per-call HTTP deadline.
func (p ProviderConfig) TimeoutDuration() time.Duration {
	return mustDuration(p.Timeout)
}

type CacheConfig struct {
	ActivityTTL      string `mapstructure:"activity_ttl"`
	EnvironmentalTTL string `mapstructure:"environmental_ttl"`
	CorrelationTTL   string `mapstructure:"correlation_ttl"`
	MarketTTL        string `mapstructure:"market_ttl"`
}

// TTLs returns the parsed cache freshness windows.
func (c CacheConfig) TTLs() (activity, environmental, correlation, market time.Duration) {
	return mustDuration(c.ActivityTTL), mustDuration(c.EnvironmentalTTL),
		mustDuration(c.CorrelationTTL), mustDuration(c.MarketTTL)
}

type MockConfig struct {
	// Force bypasses live providers entirely and serves synthetic data.
	Force bool `mapstructure:"force"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("providers.github.token", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind GITHUB_TOKEN environment variable: %w", err)
	}
	if err := viper.BindEnv("providers.openaq.token", "OPENAQ_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAQ_TOKEN environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	// GitHub's search quota depends on authentication: 4500/hour with a token,
	// 50/hour without. max_requests 0 means "derive from token presence".
	if config.Providers.GitHub.MaxRequests == 0 {
		if config.Providers.GitHub.Token != "" {
			config.Providers.GitHub.MaxRequests = 4500
		} else {
			config.Providers.GitHub.MaxRequests = 50
		}
	}

	if err := validateDurations(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateDurations(config *Config) error {
	durations := map[string]string{
		"providers.github.window":         config.Providers.GitHub.Window,
		"providers.github.retry_after":    config.Providers.GitHub.RetryAfter,
		"providers.github.timeout":        config.Providers.GitHub.Timeout,
		"providers.openaq.window":         config.Providers.OpenAQ.Window,
		"providers.openaq.retry_after":    config.Providers.OpenAQ.RetryAfter,
		"providers.openaq.timeout":        config.Providers.OpenAQ.Timeout,
		"providers.coingecko.window":      config.Providers.CoinGecko.Window,
		"providers.coingecko.retry_after": config.Providers.CoinGecko.RetryAfter,
		"providers.coingecko.timeout":     config.Providers.CoinGecko.Timeout,
		"cache.activity_ttl":              config.Cache.ActivityTTL,
		"cache.environmental_ttl":         config.Cache.EnvironmentalTTL,
		"cache.correlation_ttl":           config.Cache.CorrelationTTL,
		"cache.market_ttl":                config.Cache.MarketTTL,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("providers.github.base_url", "https://api.github.com")
	viper.SetDefault("providers.github.token", "")
	viper.SetDefault("providers.github.max_requests", 0)
	viper.SetDefault("providers.github.window", "1h")
	viper.SetDefault("providers.github.retry_after", "60s")
	viper.SetDefault("providers.github.timeout", "10s")
	viper.SetDefault("providers.github.max_retries", 3)

	viper.SetDefault("providers.openaq.base_url", "https://api.openaq.org")
	viper.SetDefault("providers.openaq.token", "")
	viper.SetDefault("providers.openaq.max_requests", 900)
	viper.SetDefault("providers.openaq.window", "24h")
	viper.SetDefault("providers.openaq.retry_after", "1h")
	viper.SetDefault("providers.openaq.timeout", "10s")
	viper.SetDefault("providers.openaq.max_retries", 3)

	viper.SetDefault("providers.coingecko.base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("providers.coingecko.token", "")
	viper.SetDefault("providers.coingecko.max_requests", 25)
	viper.SetDefault("providers.coingecko.window", "1m")
	viper.SetDefault("providers.coingecko.retry_after", "30s")
	viper.SetDefault("providers.coingecko.timeout", "15s")
	viper.SetDefault("providers.coingecko.max_retries", 3)

	viper.SetDefault("cache.activity_ttl", "15m")
	viper.SetDefault("cache.environmental_ttl", "15m")
	viper.SetDefault("cache.correlation_ttl", "15m")
	viper.SetDefault("cache.market_ttl", "5m")

	viper.SetDefault("mock.force", false)
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		// Load validates every duration; this only trips on hand-built configs.
		return 0
	}
	return d
}
