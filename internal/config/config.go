package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Config holds application configuration
type Config struct {
	Port     string `yaml:"port"`
	DBDriver string `yaml:"db_driver"`
	DBConn   string `yaml:"db_conn"`
	LogLevel string `yaml:"log_level"`

	JWTSecret      string  `yaml:"jwt_secret"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	RedisAddr string        `yaml:"redis_addr"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`

	CronSpec     string `yaml:"cron_spec"`
	BatchWorkers int    `yaml:"batch_workers"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     string `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_username"`
	SMTPPassword string `yaml:"smtp_password"`
	SenderEmail  string `yaml:"sender_email"`
	NotifyEmail  string `yaml:"notify_email"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port:           "8080",
		DBDriver:       "postgres",
		DBConn:         "host=localhost port=5436 user=test password=test dbname=recurring sslmode=disable",
		LogLevel:       "INFO",
		JWTSecret:      "secret",
		RateLimitRPS:   5,
		RateLimitBurst: 20,
		CacheTTL:       5 * time.Minute,
		CronSpec:       "@every 1m",
		BatchWorkers:   4,
		SMTPPort:       "587",
	}
}

// NewConfig loads configuration from the optional CONFIG_FILE and then from
// environment variables, which take precedence
func NewConfig() (*Config, error) {
	cfg := Default()

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBConn = getEnv("DB_CONN", c.DBConn)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.CronSpec = getEnv("CRON_SPEC", c.CronSpec)
	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getEnv("SMTP_PORT", c.SMTPPort)
	c.SMTPUsername = getEnv("SMTP_USERNAME", c.SMTPUsername)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
	c.SenderEmail = getEnv("SENDER_EMAIL", c.SenderEmail)
	c.NotifyEmail = getEnv("NOTIFY_EMAIL", c.NotifyEmail)

	if v, ok := os.LookupEnv("CACHE_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
		c.CacheTTL = ttl
	}
	if v, ok := os.LookupEnv("BATCH_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BATCH_WORKERS: %w", err)
		}
		c.BatchWorkers = n
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = rps
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = n
	}
	return nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.CronSpec == "" {
		return fmt.Errorf("CRON_SPEC is required")
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}
	return nil
}

// NotificationsEnabled reports whether batch failure emails can be sent
func (c *Config) NotificationsEnabled() bool {
	return c.SMTPHost != "" && c.NotifyEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
