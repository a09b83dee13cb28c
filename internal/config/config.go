// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port              string `mapstructure:"PORT"`
	DataDir           string `mapstructure:"DATA_DIR"`
	PostLimitWindowMs int    `mapstructure:"POST_LIMIT_WINDOW_MS"`
	PostLimitMax      int    `mapstructure:"POST_LIMIT_MAX"`
	LikeLimitWindowMs int    `mapstructure:"LIKE_LIMIT_WINDOW_MS"`
	LikeLimitMax      int    `mapstructure:"LIKE_LIMIT_MAX"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`
	SensitiveWords    string `mapstructure:"SENSITIVE_WORDS"`
	RedisURL          string `mapstructure:"REDIS_URL"`
	Env               string `mapstructure:"APP_ENV"`
	TracingEnabled    bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter   string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint      string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; environment variables alone are enough.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			log.Printf("No profile-specific config.%s.yml found, using base configuration", env)
		}
	}

	viper.SetDefault("PORT", "8000")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("POST_LIMIT_WINDOW_MS", 60_000)
	viper.SetDefault("POST_LIMIT_MAX", 6)
	viper.SetDefault("LIKE_LIMIT_WINDOW_MS", 10_000)
	viper.SetDefault("LIKE_LIMIT_MAX", 20)
	viper.SetDefault("CORS_ORIGINS", "")
	viper.SetDefault("SENSITIVE_WORDS", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	if c.PostLimitWindowMs <= 0 || c.PostLimitMax <= 0 {
		return errors.New("publish rate limit window and max must be positive")
	}
	if c.LikeLimitWindowMs <= 0 || c.LikeLimitMax <= 0 {
		return errors.New("like rate limit window and max must be positive")
	}

	if c.Env == "production" || c.Env == "prod" {
		if c.CORSOrigins == "*" {
			log.Println("WARNING: CORS_ORIGINS is set to '*' in production. This is insecure.")
		}
		if c.RedisURL == "" {
			log.Println("WARNING: REDIS_URL is empty; rate limit windows are per-instance only.")
		}
	}

	return nil
}

// PostLimitWindow returns the publish window as a duration.
func (c *Config) PostLimitWindow() time.Duration {
	return time.Duration(c.PostLimitWindowMs) * time.Millisecond
}

// LikeLimitWindow returns the like/unlike window as a duration.
func (c *Config) LikeLimitWindow() time.Duration {
	return time.Duration(c.LikeLimitWindowMs) * time.Millisecond
}

// SensitiveWordList splits the configured extra sensitive terms.
func (c *Config) SensitiveWordList() []string {
	var words []string
	for _, w := range strings.Split(c.SensitiveWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
