package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "hybrid", cfg.Converter.Kind)
	assert.Equal(t, 5*time.Minute, cfg.Converter.Timeout)
	assert.Empty(t, cfg.Converter.SofficePath)
	assert.True(t, cfg.Tables.Enabled)
	assert.Equal(t, 10.0, cfg.Tables.FontSize)
	assert.Equal(t, 3.0, cfg.Tables.Tolerance)
	assert.Equal(t, 10.0, cfg.Tables.MinLineLength)
	assert.Equal(t, 2, cfg.Tables.MinCells)
	assert.Equal(t, 12.0, cfg.Style.SpaceBefore)
	assert.Equal(t, 12.0, cfg.Style.SpaceAfter)
	assert.Equal(t, 1.15, cfg.Style.LineSpacing)
	assert.False(t, cfg.Images.AltText)
	assert.True(t, cfg.Headers.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "_converted", cfg.Output.Suffix)
	assert.Empty(t, cfg.Storage.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.Storage.S3.Region)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PDFWORD_CONVERTER_KIND", "basic")
	t.Setenv("PDFWORD_CONVERTER_TIMEOUT", "30s")
	t.Setenv("PDFWORD_STORAGE_S3_BUCKET", "reports")
	t.Setenv("PDFWORD_IMAGES_ALT_TEXT", "true")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "basic", cfg.Converter.Kind)
	assert.Equal(t, 30*time.Second, cfg.Converter.Timeout)
	assert.Equal(t, "reports", cfg.Storage.S3.Bucket)
	assert.True(t, cfg.Images.AltText)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfword.yaml")
	yaml := `
converter:
  kind: libreoffice
  soffice_path: /opt/lo/soffice
style:
  line_spacing: 1.5
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "libreoffice", cfg.Converter.Kind)
	assert.Equal(t, "/opt/lo/soffice", cfg.Converter.SofficePath)
	assert.Equal(t, 1.5, cfg.Style.LineSpacing)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, 12.0, cfg.Style.SpaceAfter)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_FlagsWin(t *testing.T) {
	t.Setenv("PDFWORD_CONVERTER_KIND", "basic")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("converter", "hybrid", "")
	fs.Bool("headers", true, "")
	fs.String("output-dir", "output", "")
	require.NoError(t, fs.Parse([]string{"--converter=libreoffice", "--headers=false"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "libreoffice", cfg.Converter.Kind)
	assert.False(t, cfg.Headers.Enabled)
	assert.Equal(t, "output", cfg.Output.Dir)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown converter", func(c *Config) { c.Converter.Kind = "pandoc" }},
		{"zero timeout", func(c *Config) { c.Converter.Timeout = 0 }},
		{"zero table font", func(c *Config) { c.Tables.FontSize = 0 }},
		{"negative min cells", func(c *Config) { c.Tables.MinCells = -1 }},
		{"negative spacing", func(c *Config) { c.Style.SpaceBefore = -1 }},
		{"zero line spacing", func(c *Config) { c.Style.LineSpacing = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.Int("page", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"page":3`)
}
