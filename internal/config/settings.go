package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g.
// IMAGEGRID_MAX_CONCURRENT_DOWNLOADS=4 or IMAGEGRID_LOGGING_LEVEL=debug.
const EnvPrefix = "IMAGEGRID"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	ImageURL               string        `mapstructure:"image_url"`
	InitialImageCount      int           `mapstructure:"initial_image_count"`
	MaxConcurrentDownloads int           `mapstructure:"max_concurrent_downloads"`
	RequestTimeout         time.Duration `mapstructure:"request_timeout"`
	UserAgent              string        `mapstructure:"user_agent"`

	Grid    GridConfig    `mapstructure:"grid"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// GridConfig holds the layout of one page of the image grid.
type GridConfig struct {
	Columns int `mapstructure:"columns"`
	Rows    int `mapstructure:"rows"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Stdout  bool `mapstructure:"stdout"` // pretty-print spans to stdout
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ImageURL:               "https://loremflickr.com/200/200",
		InitialImageCount:      140,
		MaxConcurrentDownloads: 10,
		RequestTimeout:         60 * time.Second,
		UserAgent:              "imagegrid",

		Grid: GridConfig{
			Columns: 7,
			Rows:    10,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Tracing: TracingConfig{
			Enabled: false,
			Stdout:  false,
		},
	}
}

// DefaultConfigDir returns the directory searched for config.yaml when no
// explicit path is given.
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "imagegrid")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "imagegrid")
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "imagegrid", "imagegrid.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "imagegrid", "imagegrid.log")
	}
}

// Load reads settings from a config file and the environment.
//
// If path is empty, config.yaml is looked up in DefaultConfigDir and the
// working directory, and finding none is not an error; defaults are used.
// A non-empty path must name an existing file.
// Environment variables prefixed with EnvPrefix override file values.
func Load(path string) (*Settings, error) {
	v := newViper(DefaultSettings())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Only a search that found nothing falls back to defaults; an
		// explicit path must exist.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a config file. The format follows the file
// extension (yaml, json, toml).
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setAll(v.Set, s)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the settings can drive a download session.
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.ImageURL) == "" {
		errs = append(errs, errors.New("image_url must not be empty"))
	}
	if s.InitialImageCount < 1 {
		errs = append(errs, fmt.Errorf("initial_image_count must be at least 1, got %d", s.InitialImageCount))
	}
	if s.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads))
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", s.RequestTimeout))
	}
	if s.Grid.Columns < 1 || s.Grid.Rows < 1 {
		errs = append(errs, fmt.Errorf("grid must be at least 1x1, got %dx%d", s.Grid.Columns, s.Grid.Rows))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// PageSize returns the number of cells on one grid page.
func (s *Settings) PageSize() int {
	return s.Grid.Columns * s.Grid.Rows
}

func newViper(defaults *Settings) *viper.Viper {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	setAll(v.SetDefault, defaults)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setAll writes every settings field through set, using snake_case keys.
func setAll(set func(key string, value any), s *Settings) {
	set("image_url", s.ImageURL)
	set("initial_image_count", s.InitialImageCount)
	set("max_concurrent_downloads", s.MaxConcurrentDownloads)
	set("request_timeout", s.RequestTimeout.String())
	set("user_agent", s.UserAgent)

	set("grid.columns", s.Grid.Columns)
	set("grid.rows", s.Grid.Rows)

	set("logging.file", s.Logging.File)
	set("logging.level", s.Logging.Level)

	set("tracing.enabled", s.Tracing.Enabled)
	set("tracing.stdout", s.Tracing.Stdout)
}
