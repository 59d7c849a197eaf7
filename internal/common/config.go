package common

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig
	Paths   PathsConfig
	Convert ConvertConfig
	Ledger  LedgerConfig
	Log     LogConfig
}

// APIConfig holds DEEPREAD Extract (RapidAPI) settings
type APIConfig struct {
	Key     string
	BaseURL string // empty = https://<language host>
	Timeout time.Duration
}

// PathsConfig holds the input/output directory layout
type PathsConfig struct {
	SamplesDir string
	OutputDir  string
}

// ConvertConfig holds external converter settings for renderable images
type ConvertConfig struct {
	Pdftoppm      string
	DPI           int
	HeicConverter string
}

// LedgerConfig holds the optional run ledger database settings
type LedgerConfig struct {
	Driver string // "sqlite" | "pgx"
	DSN    string // empty disables the ledger
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables and an optional
// config.yaml in ./config or the working directory.
func LoadConfig() *Config {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("config file unreadable, using env and defaults", "error", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("RAPIDAPI_KEY", "")
	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("HTTP_TIMEOUT", 60*time.Second)
	v.SetDefault("SAMPLES_DIR", "samples")
	v.SetDefault("OUTPUT_DIR", "outputs")
	v.SetDefault("PDFTOPPM", "pdftoppm")
	v.SetDefault("PDF_DPI", 250)
	v.SetDefault("HEIC_CONVERTER", "magick")
	v.SetDefault("LEDGER_DRIVER", "sqlite")
	v.SetDefault("LEDGER_DSN", "")
	v.SetDefault("LOG_LEVEL", "info")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		API: APIConfig{
			Key:     v.GetString("RAPIDAPI_KEY"),
			BaseURL: v.GetString("API_BASE_URL"),
			Timeout: v.GetDuration("HTTP_TIMEOUT"),
		},
		Paths: PathsConfig{
			SamplesDir: v.GetString("SAMPLES_DIR"),
			OutputDir:  v.GetString("OUTPUT_DIR"),
		},
		Convert: ConvertConfig{
			Pdftoppm:      v.GetString("PDFTOPPM"),
			DPI:           v.GetInt("PDF_DPI"),
			HeicConverter: v.GetString("HEIC_CONVERTER"),
		},
		Ledger: LedgerConfig{
			Driver: v.GetString("LEDGER_DRIVER"),
			DSN:    v.GetString("LEDGER_DSN"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

// SlogLevel maps Log.Level to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return NewConfigError("RAPIDAPI_KEY (or --key) is required", ErrInvalidInput)
	}
	if c.Paths.OutputDir == "" {
		return NewConfigError("OUTPUT_DIR is required", ErrInvalidInput)
	}
	if c.API.Timeout <= 0 {
		return NewConfigError("HTTP_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Ledger.DSN != "" && c.Ledger.Driver != "sqlite" && c.Ledger.Driver != "pgx" {
		return NewConfigErrorf("LEDGER_DRIVER must be sqlite or pgx, got %q", c.Ledger.Driver)
	}
	return nil
}
