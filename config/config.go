// Package config loads pdfword settings from defaults, an optional YAML
// file, PDFWORD_ environment variables and command-line flags, in rising
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PDFWORD"

// Config holds all application configuration.
type Config struct {
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Converter ConverterConfig `mapstructure:"converter" yaml:"converter"`
	Tables    TablesConfig    `mapstructure:"tables" yaml:"tables"`
	Style     StyleConfig     `mapstructure:"style" yaml:"style"`
	Images    ImagesConfig    `mapstructure:"images" yaml:"images"`
	Headers   HeadersConfig   `mapstructure:"headers" yaml:"headers"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
}

// OutputConfig controls where the result is written.
type OutputConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Suffix string `mapstructure:"suffix" yaml:"suffix"`
	// TempDir is the parent of the per-run scratch directory.
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`
}

// ConverterConfig selects and tunes the draft converter.
type ConverterConfig struct {
	Kind        string        `mapstructure:"kind" yaml:"kind"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	SofficePath string        `mapstructure:"soffice_path" yaml:"soffice_path"`
}

// TablesConfig holds table reconstruction settings.
type TablesConfig struct {
	Enabled  bool    `mapstructure:"enabled" yaml:"enabled"`
	FontSize float64 `mapstructure:"font_size" yaml:"font_size"`

	// Detection thresholds, in points except MinCells.
	Tolerance     float64 `mapstructure:"tolerance" yaml:"tolerance"`
	MinLineLength float64 `mapstructure:"min_line_length" yaml:"min_line_length"`
	MinCells      int     `mapstructure:"min_cells" yaml:"min_cells"`
}

// StyleConfig holds paragraph spacing written by the style pass.
type StyleConfig struct {
	SpaceBefore float64 `mapstructure:"space_before" yaml:"space_before"`
	SpaceAfter  float64 `mapstructure:"space_after" yaml:"space_after"`
	LineSpacing float64 `mapstructure:"line_spacing" yaml:"line_spacing"`
}

// ImagesConfig holds image reinsertion settings.
type ImagesConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	AltText     bool   `mapstructure:"alt_text" yaml:"alt_text"`
	OCRLanguage string `mapstructure:"ocr_language" yaml:"ocr_language"`
}

// HeadersConfig toggles the header/footer pass.
type HeadersConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StorageConfig holds the optional upload target.
type StorageConfig struct {
	S3 S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config holds AWS S3 settings. An empty bucket disables upload.
type S3Config struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"-"`
	SecretKey string `mapstructure:"secret_key" yaml:"-"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.suffix", "_converted")
	v.SetDefault("output.temp_dir", "")

	v.SetDefault("converter.kind", "hybrid")
	v.SetDefault("converter.timeout", "5m")
	v.SetDefault("converter.soffice_path", "")

	v.SetDefault("tables.enabled", true)
	v.SetDefault("tables.font_size", 10)
	v.SetDefault("tables.tolerance", 3)
	v.SetDefault("tables.min_line_length", 10)
	v.SetDefault("tables.min_cells", 2)

	v.SetDefault("style.space_before", 12)
	v.SetDefault("style.space_after", 12)
	v.SetDefault("style.line_spacing", 1.15)

	v.SetDefault("images.enabled", true)
	v.SetDefault("images.alt_text", false)
	v.SetDefault("images.ocr_language", "eng")

	v.SetDefault("headers.enabled", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.prefix", "")
}

// FlagKeys maps command-line flag names to configuration keys. Only flags
// the user actually set override lower layers.
var FlagKeys = map[string]string{
	"output-dir":      "output.dir",
	"temp-dir":        "output.temp_dir",
	"converter":       "converter.kind",
	"timeout":         "converter.timeout",
	"soffice":         "converter.soffice_path",
	"tables":          "tables.enabled",
	"table-min-cells": "tables.min_cells",
	"images":          "images.enabled",
	"alt-text":        "images.alt_text",
	"headers":         "headers.enabled",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"s3-bucket":       "storage.s3.bucket",
	"s3-region":       "storage.s3.region",
	"s3-endpoint":     "storage.s3.endpoint",
	"s3-prefix":       "storage.s3.prefix",
}

// Load reads configuration. file may be empty; flags may be nil.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Converter.Kind) {
	case "libreoffice", "basic", "hybrid":
	default:
		errs = append(errs, fmt.Errorf("converter.kind: unknown converter %q", c.Converter.Kind))
	}
	if c.Converter.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("converter.timeout: must be positive, got %s", c.Converter.Timeout))
	}
	if c.Tables.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("tables.font_size: must be positive, got %g", c.Tables.FontSize))
	}
	if c.Tables.Tolerance < 0 || c.Tables.MinLineLength < 0 || c.Tables.MinCells < 0 {
		errs = append(errs, errors.New("tables: detection thresholds must not be negative"))
	}
	if c.Style.SpaceBefore < 0 || c.Style.SpaceAfter < 0 {
		errs = append(errs, errors.New("style: spacing must not be negative"))
	}
	if c.Style.LineSpacing <= 0 {
		errs = append(errs, fmt.Errorf("style.line_spacing: must be positive, got %g", c.Style.LineSpacing))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: want text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

// NewLogger builds the logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
