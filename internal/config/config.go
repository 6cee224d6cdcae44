package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/storage/s3/v2"
	"github.com/spf13/viper"
)

// TODO: Move into a separate package
var Validate *validator.Validate

type Config struct {
	ServerPort  int    `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	AccessTokenMinutes int `mapstructure:"ACCESS_TOKEN_MINUTES"`
	RefreshTokenDays   int `mapstructure:"REFRESH_TOKEN_DAYS"`

	CookieSecure   bool   `mapstructure:"COOKIE_SECURE"`
	CookieSameSite string `mapstructure:"COOKIE_SAMESITE"`
	CookieDomain   string `mapstructure:"COOKIE_DOMAIN"`

	MaxFailedLogins   int    `mapstructure:"MAX_FAILED_LOGINS"`
	LockoutMinutes    int    `mapstructure:"LOCKOUT_MINUTES"`
	PasswordMinLength int    `mapstructure:"PASSWORD_MIN_LENGTH"`
	LockoutRedisURL   string `mapstructure:"LOCKOUT_REDIS_URL"`

	MailgunAPIKey  string `mapstructure:"MAILGUN_API_KEY"`
	MailgunDomain  string `mapstructure:"MAILGUN_DOMAIN"`
	MailgunAPIBase string `mapstructure:"MAILGUN_API_BASE"`

	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_PORT", 3_000)
	viper.SetDefault("ACCESS_TOKEN_MINUTES", 15)
	viper.SetDefault("REFRESH_TOKEN_DAYS", 7)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("COOKIE_SAMESITE", "Lax")
	viper.SetDefault("MAX_FAILED_LOGINS", 5)
	viper.SetDefault("LOCKOUT_MINUTES", 15)
	viper.SetDefault("PASSWORD_MIN_LENGTH", 8)

	viper.AutomaticEnv()

	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("COOKIE_DOMAIN")
	viper.BindEnv("LOCKOUT_REDIS_URL")

	viper.BindEnv("MAILGUN_API_KEY")
	viper.BindEnv("MAILGUN_DOMAIN")
	viper.BindEnv("MAILGUN_API_BASE")

	viper.BindEnv("S3_ENDPOINT")
	viper.BindEnv("S3_REGION")
	viper.BindEnv("S3_BUCKET")
	viper.BindEnv("S3_ACCESS_KEY")
	viper.BindEnv("S3_SECRET_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/kanban/")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// No production-safe default exists for either of these.
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing database URL")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT secret")
	}

	// TODO: Move this to somewhere else
	Validate = validator.New()

	return &cfg, nil
}

func (cfg *Config) AccessTokenTTL() time.Duration {
	return time.Duration(cfg.AccessTokenMinutes) * time.Minute
}

func (cfg *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(cfg.RefreshTokenDays) * 24 * time.Hour
}

func (cfg *Config) LockoutDuration() time.Duration {
	return time.Duration(cfg.LockoutMinutes) * time.Minute
}

func (cfg *Config) HasMailer() bool {
	return cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""
}

func (cfg *Config) HasStorage() bool {
	return cfg.S3Bucket != ""
}

func (cfg *Config) Storage() *s3.Storage {
	return s3.New(s3.Config{
		Bucket:   cfg.S3Bucket,
		Endpoint: cfg.S3Endpoint,
		Region:   cfg.S3Region,
		Reset:    false,
		Credentials: s3.Credentials{
			AccessKey:       cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		},
	})
}
