// Package convert produces the draft DOCX that the reconstruction passes
// refine. The draft comes from headless LibreOffice when it is installed,
// or from a plain text rendering of the PDF otherwise.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrConverterUnavailable is returned when no draft converter can run on
// this machine.
var ErrConverterUnavailable = errors.New("draft converter unavailable")

// DraftConverter turns a PDF into a DOCX file.
type DraftConverter interface {
	// Name identifies the converter in logs and reports.
	Name() string

	// Available returns nil when the converter can run, or an error
	// wrapping ErrConverterUnavailable.
	Available(ctx context.Context) error

	// Convert writes a DOCX for the PDF at pdfPath into outDir and returns
	// its path.
	Convert(ctx context.Context, pdfPath, outDir string) (string, error)
}

// Kinds accepted by ForKind.
const (
	KindLibreOffice = "libreoffice"
	KindBasic       = "basic"
	KindHybrid      = "hybrid"
)

// ForKind selects a converter by configuration name.
func ForKind(kind string, lo *LibreOffice, basic *Basic) (DraftConverter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindLibreOffice:
		return lo, nil
	case KindBasic:
		return basic, nil
	case KindHybrid, "":
		return NewHybrid(lo, basic, nil), nil
	default:
		return nil, fmt.Errorf("unknown converter %q", kind)
	}
}

func draftName(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".docx"
}
