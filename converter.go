package pdfword

import (
	"log/slog"
	"time"

	"github.com/tsawler/pdfword/convert"
	"github.com/tsawler/pdfword/images"
	"github.com/tsawler/pdfword/storage"
	"github.com/tsawler/pdfword/tables"
)

// Converter provides a fluent interface for configuring a PDF to DOCX
// conversion. Each configuration method returns a new Converter, so a base
// configuration can be shared and specialised.
type Converter struct {
	input   string
	options Options

	// open replaces pdf.Open in tests.
	open func(path string, logger *slog.Logger, finder *tables.Finder) (source, error)
}

// clone creates a copy of the Converter. Options holds no slices or maps,
// so a value copy is enough.
func (c *Converter) clone() *Converter {
	cp := *c
	return &cp
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// Input returns a copy converting filename with the same options.
func (c *Converter) Input(filename string) *Converter {
	n := c.clone()
	n.input = filename
	return n
}

// OutputDir sets the directory the result is written to. It is created when
// missing. The default is the current directory.
func (c *Converter) OutputDir(dir string) *Converter {
	n := c.clone()
	n.options.outputDir = dir
	return n
}

// Suffix sets the text appended to the input stem; "report.pdf" becomes
// "report" + suffix + ".docx".
func (c *Converter) Suffix(s string) *Converter {
	n := c.clone()
	n.options.suffix = s
	return n
}

// TempDir sets the parent of the per-run scratch directory.
func (c *Converter) TempDir(dir string) *Converter {
	n := c.clone()
	n.options.tempDir = dir
	return n
}

// DraftKind selects the draft converter by kind: "libreoffice", "basic" or
// "hybrid".
func (c *Converter) DraftKind(kind string) *Converter {
	n := c.clone()
	n.options.converterKind = kind
	n.options.converter = nil
	return n
}

// WithDraftConverter uses dc for the draft instead of a built-in converter.
func (c *Converter) WithDraftConverter(dc convert.DraftConverter) *Converter {
	n := c.clone()
	n.options.converter = dc
	return n
}

// Timeout bounds the LibreOffice run.
func (c *Converter) Timeout(d time.Duration) *Converter {
	n := c.clone()
	n.options.timeout = d
	return n
}

// SofficePath points at a specific soffice binary instead of searching.
func (c *Converter) SofficePath(path string) *Converter {
	n := c.clone()
	n.options.sofficePath = path
	return n
}

// WithoutTables skips table detection and reconstruction.
func (c *Converter) WithoutTables() *Converter {
	n := c.clone()
	n.options.tables = false
	return n
}

// WithoutImages skips image reinsertion.
func (c *Converter) WithoutImages() *Converter {
	n := c.clone()
	n.options.images = false
	return n
}

// WithoutHeaders skips the header/footer pass.
func (c *Converter) WithoutHeaders() *Converter {
	n := c.clone()
	n.options.headers = false
	return n
}

// TableFontSize sets the point size of reconstructed table text.
func (c *Converter) TableFontSize(pt float64) *Converter {
	n := c.clone()
	n.options.tableFontSize = pt
	return n
}

// TableDetection tunes ruling-based table detection. Zero fields keep the
// defaults.
func (c *Converter) TableDetection(opts tables.FinderOptions) *Converter {
	n := c.clone()
	n.options.finder = opts
	return n
}

// Spacing sets the paragraph spacing written by the style pass: points
// before and after, and the line spacing multiple.
func (c *Converter) Spacing(before, after, line float64) *Converter {
	n := c.clone()
	n.options.spaceBefore = before
	n.options.spaceAfter = after
	n.options.lineSpacing = line
	return n
}

// AltText describes reinserted images with a. Failures leave the alt text
// empty.
//
// Example:
//
//	d, err := ocr.New("eng")
//	if err == nil {
//	    defer d.Close()
//	    conv = conv.AltText(d)
//	}
func (c *Converter) AltText(a images.AltTexter) *Converter {
	n := c.clone()
	n.options.altTexter = a
	return n
}

// Upload sends the result to bucket after saving. The object key is
// prefix/run-id/file-name.
func (c *Converter) Upload(store storage.ObjectStorage, bucket, prefix string) *Converter {
	n := c.clone()
	n.options.store = store
	n.options.bucket = bucket
	n.options.prefix = prefix
	return n
}

// Logger sets the structured logger. The default is slog.Default().
func (c *Converter) Logger(l *slog.Logger) *Converter {
	n := c.clone()
	n.options.logger = l
	return n
}
