package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, "draft.events", cfg.NATSSubject)
	assert.Equal(t, 3*time.Second, cfg.SummarizerTimeout)
	assert.Equal(t, 1.0, cfg.LLMRatePerSec)
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "PORT: \"8080\"\nDB_DRIVER: sqlite\nSUMMARIZER_TIMEOUT: 5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_RATE_PER_SEC", "2.5")

	cfg, err := load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.SummarizerTimeout)
	assert.Equal(t, 2.5, cfg.LLMRatePerSec)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("PORT: [unclosed\n"), 0o644))

	_, err := load(viper.New(), dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Environment: "development", DBDriver: "memory", NATSURL: "nats://x", SummarizerTimeout: time.Second}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DBDriver = "postgres" }, "DATABASE_URL"},
		{"redis without url", func(c *Config) { c.DBDriver = "redis" }, "REDIS_URL"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mongo" }, "unknown DB_DRIVER"},
		{"production without auth", func(c *Config) { c.Environment = "production" }, "AUTHENTIK"},
		{"negative rate", func(c *Config) { c.LLMRatePerSec = -1 }, "LLM_RATE_PER_SEC"},
		{"zero timeout", func(c *Config) { c.SummarizerTimeout = 0 }, "SUMMARIZER_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
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
