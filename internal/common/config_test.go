package common

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"RAPIDAPI_KEY", "API_BASE_URL", "HTTP_TIMEOUT", "SAMPLES_DIR", "OUTPUT_DIR",
		"PDFTOPPM", "PDF_DPI", "HEIC_CONVERTER", "LEDGER_DRIVER", "LEDGER_DSN", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg := LoadConfig()
	assert.Equal(t, "", cfg.API.Key)
	assert.Equal(t, 60*time.Second, cfg.API.Timeout)
	assert.Equal(t, "samples", cfg.Paths.SamplesDir)
	assert.Equal(t, "outputs", cfg.Paths.OutputDir)
	assert.Equal(t, "pdftoppm", cfg.Convert.Pdftoppm)
	assert.Equal(t, 250, cfg.Convert.DPI)
	assert.Equal(t, "magick", cfg.Convert.HeicConverter)
	assert.Equal(t, "sqlite", cfg.Ledger.Driver)
	assert.Empty(t, cfg.Ledger.DSN)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("RAPIDAPI_KEY", "k-123")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("PDF_DPI", "300")
	t.Setenv("LEDGER_DRIVER", "pgx")
	t.Setenv("LEDGER_DSN", "postgres://localhost/deepread")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := LoadConfig()
	assert.Equal(t, "k-123", cfg.API.Key)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/tmp/out", cfg.Paths.OutputDir)
	assert.Equal(t, 300, cfg.Convert.DPI)
	assert.Equal(t, "pgx", cfg.Ledger.Driver)
	assert.Equal(t, "postgres://localhost/deepread", cfg.Ledger.DSN)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:    APIConfig{Key: "k", Timeout: time.Second},
			Paths:  PathsConfig{SamplesDir: "samples", OutputDir: "outputs"},
			Ledger: LedgerConfig{Driver: "sqlite"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing key", func(c *Config) { c.API.Key = "" }},
		{"missing output dir", func(c *Config) { c.Paths.OutputDir = "" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"bad ledger driver", func(c *Config) { c.Ledger.DSN = "x"; c.Ledger.Driver = "mysql" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	} {
		c := &Config{Log: LogConfig{Level: in}}
		assert.Equal(t, want, c.SlogLevel(), in)
	}
}
