package images

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TempDir is a scratch directory removed as a whole by Close.
type TempDir struct {
	path string
	once sync.Once
	err  error
}

// NewTempDir creates a directory under parent (os.TempDir when empty) whose
// name starts with prefix.
func NewTempDir(parent, prefix string) (*TempDir, error) {
	p, err := os.MkdirTemp(parent, prefix)
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return &TempDir{path: p}, nil
}

// Path returns the directory path.
func (t *TempDir) Path() string { return t.path }

// Write stores data in the directory under the base name of name and
// returns the file path.
func (t *TempDir) Write(name string, data []byte) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid temp file name %q", name)
	}
	p := filepath.Join(t.path, base)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", base, err)
	}
	return p, nil
}

// Close removes the directory and everything in it. Calls after the first
// return the first result.
func (t *TempDir) Close() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		t.err = os.RemoveAll(t.path)
	})
	return t.err
}
