// Package config loads application configuration from an optional YAML file
// with environment-variable overrides. A .env file is honored in development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	// Server settings.
	ListenAddr  string `yaml:"listenAddr"`
	Environment string `yaml:"environment"`

	// Database connection string (sqlite path or postgres DSN).
	DatabaseDSN string `yaml:"databaseDSN"`

	// JWT settings.
	JWTSecret string        `yaml:"jwtSecret"`
	JWTExpiry time.Duration `yaml:"jwtExpiry"`

	// Bootstrap admin credentials. The admin record is provisioned lazily on
	// the first login attempt matching this email.
	AdminEmail    string `yaml:"adminEmail"`
	AdminPassword string `yaml:"adminPassword"`

	// SMTP settings for new-message notifications. Optional; notifications
	// are skipped when Host is empty.
	SMTP SMTPConfig `yaml:"smtp"`

	// Redis address for the distributed rate limiter. Optional; an
	// in-process limiter is used when empty.
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	// Rate limits.
	SubmitLimitPerMinute   int `yaml:"submitLimitPerMinute"`
	LoginLimitPer15Minutes int `yaml:"loginLimitPer15Minutes"`

	// Logging.
	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"`
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"fromEmail"`
	NotifyTo  string `yaml:"notifyTo"`
}

// Development reports whether the app runs in development mode.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Load reads configuration from an optional YAML file at path, then applies
// environment overrides and defaults. Required fields are validated.
func Load(path string) (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		ListenAddr:             ":5000",
		Environment:            "development",
		JWTExpiry:              168 * time.Hour,
		SubmitLimitPerMinute:   3,
		LoginLimitPer15Minutes: 5,
		LogLevel:               "info",
	}

	if path != "" {
		data, errRead := os.ReadFile(path)
		if errRead != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, errRead)
		}
		if errParse := yaml.Unmarshal(data, cfg); errParse != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, errParse)
		}
	}

	applyEnv(cfg)

	if errValidate := cfg.validate(); errValidate != nil {
		return nil, errValidate
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.Environment, "APP_ENV")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setDuration(&cfg.JWTExpiry, "JWT_EXPIRY")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setInt(&cfg.SMTP.Port, "SMTP_PORT")
	setString(&cfg.SMTP.Username, "SMTP_USER")
	setString(&cfg.SMTP.Password, "SMTP_PASS")
	setString(&cfg.SMTP.FromEmail, "EMAIL_FROM")
	setString(&cfg.SMTP.NotifyTo, "ADMIN_EMAIL_NOTIFICATIONS")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.SubmitLimitPerMinute, "SUBMIT_RATE_LIMIT")
	setInt(&cfg.LoginLimitPer15Minutes, "LOGIN_RATE_LIMIT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFile, "LOG_FILE")
}

func (c *Config) validate() error {
	var missing []string
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if strings.TrimSpace(c.AdminEmail) == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if strings.TrimSpace(c.AdminPassword) == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, errParse := strconv.Atoi(strings.TrimSpace(v)); errParse == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, errParse := time.ParseDuration(strings.TrimSpace(v)); errParse == nil {
			*dst = d
		}
	}
}
