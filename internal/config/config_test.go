package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	base := Config{
		Port:              "8000",
		DataDir:           "./data",
		PostLimitWindowMs: 60_000,
		PostLimitMax:      6,
		LikeLimitWindowMs: 10_000,
		LikeLimitMax:      20,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid defaults", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Port = "" }, wantErr: "PORT"},
		{name: "missing data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "DATA_DIR"},
		{name: "zero publish window", mutate: func(c *Config) { c.PostLimitWindowMs = 0 }, wantErr: "publish rate limit"},
		{name: "negative publish max", mutate: func(c *Config) { c.PostLimitMax = -1 }, wantErr: "publish rate limit"},
		{name: "zero like max", mutate: func(c *Config) { c.LikeLimitMax = 0 }, wantErr: "like rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLimitWindows(t *testing.T) {
	cfg := Config{PostLimitWindowMs: 60_000, LikeLimitWindowMs: 10_000}
	assert.Equal(t, time.Minute, cfg.PostLimitWindow())
	assert.Equal(t, 10*time.Second, cfg.LikeLimitWindow())
}

func TestSensitiveWordList(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		words []string
	}{
		{name: "empty", raw: "", words: nil},
		{name: "single", raw: "badword", words: []string{"badword"}},
		{name: "csv with whitespace", raw: " foo , bar,,baz ", words: []string{"foo", "bar", "baz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{SensitiveWords: tt.raw}
			assert.Equal(t, tt.words, cfg.SensitiveWordList())
		})
	}
}
