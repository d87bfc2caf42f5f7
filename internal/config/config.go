package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config aggregates every recognized environment key from the external
// interfaces contract. Unrecognized keys are ignored.
type Config struct {
	Listen          string
	TokenSecret     string
	BehindProxy     bool
	LogLevel        string
	LogFormat       string
	DB              DBConfig
	Redis           RedisConfig
	Cache           CacheConfig
	ClickQueue      ClickQueueConfig
	ShutdownDeadlineSecs int
}

type DBConfig struct {
	URL            string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	MaxConnections int
}

// DSN returns the postgres connection string, preferring an explicit
// DATABASE_URL when set.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}

type RedisConfig struct {
	URL  string
	Host string
}

// Enabled reports whether a cache backend was configured at all. Its
// absence selects the null cache (spec §4.6).
func (c RedisConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

type CacheConfig struct {
	TTLSeconds         int
	NegativeTTLSeconds int
}

type ClickQueueConfig struct {
	Capacity          int
	WorkerConcurrency int
	RetryMaxAttempts  int
	RetryBaseMS       int
}

// Load reads configuration from an optional .env file plus the process
// environment, applying the defaults named in the external interfaces
// contract.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// A missing .env file is not an error — production deployments set
	// real environment variables instead.
	_ = v.ReadInConfig()

	v.SetDefault("LISTEN", "0.0.0.0:3000")
	v.SetDefault("DB_MAX_CONNECTIONS", 10)
	v.SetDefault("CACHE_TTL_SECONDS", 3600)
	v.SetDefault("NEGATIVE_CACHE_TTL_SECONDS", 60)
	v.SetDefault("CLICK_QUEUE_CAPACITY", 10000)
	v.SetDefault("CLICK_WORKER_CONCURRENCY", 4)
	v.SetDefault("CLICK_RETRY_MAX_ATTEMPTS", 5)
	v.SetDefault("CLICK_RETRY_BASE_MS", 100)
	v.SetDefault("SHUTDOWN_DEADLINE_SECS", 30)
	v.SetDefault("BEHIND_PROXY", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	cfg := &Config{
		Listen:      v.GetString("LISTEN"),
		TokenSecret: v.GetString("TOKEN_SIGNING_SECRET"),
		BehindProxy: v.GetBool("BEHIND_PROXY"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		DB: DBConfig{
			URL:            v.GetString("DATABASE_URL"),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			MaxConnections: v.GetInt("DB_MAX_CONNECTIONS"),
		},
		Redis: RedisConfig{
			URL:  v.GetString("REDIS_URL"),
			Host: v.GetString("REDIS_HOST"),
		},
		Cache: CacheConfig{
			TTLSeconds:         v.GetInt("CACHE_TTL_SECONDS"),
			NegativeTTLSeconds: v.GetInt("NEGATIVE_CACHE_TTL_SECONDS"),
		},
		ClickQueue: ClickQueueConfig{
			Capacity:          v.GetInt("CLICK_QUEUE_CAPACITY"),
			WorkerConcurrency: v.GetInt("CLICK_WORKER_CONCURRENCY"),
			RetryMaxAttempts:  v.GetInt("CLICK_RETRY_MAX_ATTEMPTS"),
			RetryBaseMS:       v.GetInt("CLICK_RETRY_BASE_MS"),
		},
		ShutdownDeadlineSecs: v.GetInt("SHUTDOWN_DEADLINE_SECS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SIGNING_SECRET is required")
	}
	if c.ClickQueue.WorkerConcurrency < 1 || c.ClickQueue.WorkerConcurrency > 256 {
		return fmt.Errorf("CLICK_WORKER_CONCURRENCY must be in 1..256, got %d", c.ClickQueue.WorkerConcurrency)
	}
	if c.DB.URL == "" && c.DB.Host == "" {
		return fmt.Errorf("either DATABASE_URL or DB_HOST must be set")
	}
	return nil
}
