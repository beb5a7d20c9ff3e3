package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds one LibreOffice conversion.
const DefaultTimeout = 5 * time.Minute

const versionTimeout = 10 * time.Second

// ExecFunc runs a command and returns its combined output.
type ExecFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// LibreOffice converts with a headless soffice process.
type LibreOffice struct {
	// Path is the soffice binary. When empty it is searched on PATH and in
	// the usual install locations.
	Path    string
	Timeout time.Duration
	Logger  *slog.Logger

	// Exec runs soffice; tests replace it.
	Exec ExecFunc

	once     sync.Once
	resolved string
	version  string
	err      error
}

// NewLibreOffice creates a converter. An empty path enables discovery and a
// zero timeout means DefaultTimeout.
func NewLibreOffice(path string, timeout time.Duration, logger *slog.Logger) *LibreOffice {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LibreOffice{Path: path, Timeout: timeout, Logger: logger, Exec: runCommand}
}

// Name implements DraftConverter.
func (l *LibreOffice) Name() string { return KindLibreOffice }

// Available implements DraftConverter. The binary is located and checked
// with --version once; later calls return the cached result.
func (l *LibreOffice) Available(ctx context.Context) error {
	l.once.Do(func() { l.resolved, l.version, l.err = l.locate(ctx) })
	return l.err
}

// Version returns the version line printed by soffice.
func (l *LibreOffice) Version(ctx context.Context) (string, error) {
	if err := l.Available(ctx); err != nil {
		return "", err
	}
	return l.version, nil
}

func (l *LibreOffice) locate(ctx context.Context) (string, string, error) {
	candidates := sofficeCandidates(runtime.GOOS)
	if l.Path != "" {
		candidates = []string{l.Path}
	} else {
		for _, name := range []string{"soffice", "libreoffice"} {
			if p, err := exec.LookPath(name); err == nil {
				candidates = append([]string{p}, candidates...)
			}
		}
	}

	for _, p := range candidates {
		if l.Path == "" {
			if _, err := os.Stat(p); err != nil {
				continue
			}
		}
		vctx, cancel := context.WithTimeout(ctx, versionTimeout)
		out, err := l.exec()(vctx, p, "--version")
		cancel()
		if err != nil {
			l.logger().Debug("soffice candidate rejected", "path", p, "error", err)
			continue
		}
		version := strings.TrimSpace(string(out))
		l.logger().Info("found LibreOffice", "path", p, "version", version)
		return p, version, nil
	}
	return "", "", fmt.Errorf("libreoffice not found: %w", ErrConverterUnavailable)
}

func sofficeCandidates(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/LibreOffice.app/Contents/MacOS/soffice",
			"/usr/local/bin/soffice",
			"/opt/homebrew/bin/soffice",
		}
	case "windows":
		return []string{
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	default:
		return []string{
			"/usr/bin/libreoffice",
			"/usr/bin/soffice",
			"/snap/bin/libreoffice",
			"/usr/local/bin/soffice",
		}
	}
}

// Convert implements DraftConverter. The soffice profile lives in outDir so
// concurrent runs do not fight over the user profile lock.
func (l *LibreOffice) Convert(ctx context.Context, pdfPath, outDir string) (string, error) {
	if err := l.Available(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout())
	defer cancel()

	args := []string{
		"--headless",
		"--norestore",
		"-env:UserInstallation=" + profileURL(filepath.Join(outDir, "lo-profile")),
		"--convert-to", "docx",
		"--outdir", outDir,
		pdfPath,
	}
	l.logger().Info("running LibreOffice", "path", l.resolved, "input", pdfPath)
	start := time.Now()
	out, err := l.exec()(ctx, l.resolved, args...)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("libreoffice timed out after %s", l.timeout())
	}
	if err != nil {
		return "", fmt.Errorf("libreoffice conversion failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	path, err := findDraft(outDir, draftName(pdfPath))
	if err != nil {
		return "", err
	}
	l.logger().Info("LibreOffice conversion finished", "output", path, "duration", time.Since(start))
	return path, nil
}

// findDraft returns the expected output, or any .docx in dir.
func findDraft(dir, expected string) (string, error) {
	p := filepath.Join(dir, expected)
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading output dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".docx") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", errors.New("libreoffice produced no docx file")
}

func profileURL(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func (l *LibreOffice) exec() ExecFunc {
	if l.Exec != nil {
		return l.Exec
	}
	return runCommand
}

func (l *LibreOffice) timeout() time.Duration {
	if l.Timeout > 0 {
		return l.Timeout
	}
	return DefaultTimeout
}

func (l *LibreOffice) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
