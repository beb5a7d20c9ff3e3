// Package pdfword rebuilds a PDF as an editable Word document.
//
// A draft DOCX is produced by an external converter (headless LibreOffice,
// or a plain-text fallback). pdfword then reads the PDF's own layout and
// corrects the draft: tables are rebuilt from ruling lines, images are
// reinserted at their original size, fonts, sizes and colours are copied
// paragraph by paragraph, and repeating page furniture becomes the section
// header and footer.
//
// Basic usage:
//
//	report, warnings, err := pdfword.Open("report.pdf").Convert(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfword.FormatWarnings(warnings))
//	}
//	fmt.Println("written to", report.Output)
//
// With options:
//
//	report, _, err := pdfword.Open("report.pdf").
//	    OutputDir("out").
//	    DraftKind("libreoffice").
//	    WithoutHeaders().
//	    Convert(ctx)
//
// Nothing the reconstruction passes run into is fatal. Problems are logged
// and returned as warnings; only an unreadable PDF, a missing converter and
// a failed save are errors.
package pdfword

import (
	"github.com/tsawler/pdfword/config"
)

// Open returns a Converter for the PDF at filename with default options.
//
// Example:
//
//	report, warnings, err := pdfword.Open("document.pdf").Convert(ctx)
func Open(filename string) *Converter {
	return &Converter{
		input:   filename,
		options: defaultOptions(),
	}
}

// FromConfig returns a Converter configured from cfg.
//
// Example:
//
//	cfg, err := config.Load("pdfword.yaml", nil)
//	if err != nil {
//	    // handle error
//	}
//	report, _, err := pdfword.FromConfig("document.pdf", cfg).Convert(ctx)
func FromConfig(filename string, cfg *config.Config) *Converter {
	return &Converter{
		input:   filename,
		options: fromConfig(cfg),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustReport is a helper that wraps a call to Convert and panics if the
// error is non-nil. It discards warnings and returns just the report.
//
// Example:
//
//	report := pdfword.MustReport(pdfword.Open("document.pdf").Convert(ctx))
func MustReport(r *Report, _ []Warning, err error) *Report {
	if err != nil {
		panic(err)
	}
	return r
}
