package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: pdfword")
}

func TestRun_NoInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
}

func TestRun_BadConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--converter", "pandoc", "in.pdf"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "converter.kind")
}

func TestRun_UnreadableInputWritesReport(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.yaml")
	var stdout, stderr bytes.Buffer

	code := run([]string{
		"--converter", "basic",
		"--output-dir", filepath.Join(dir, "out"),
		"--temp-dir", dir,
		"--report", reportPath,
		"--log-level", "error",
		filepath.Join(dir, "missing.pdf"),
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var reports []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, filepath.Join(dir, "missing.pdf"), reports[0]["input"])
	assert.NotEmpty(t, reports[0]["run_id"])
}
