package pdfword

import (
	"log/slog"
	"time"

	"github.com/tsawler/pdfword/config"
	"github.com/tsawler/pdfword/convert"
	"github.com/tsawler/pdfword/images"
	"github.com/tsawler/pdfword/storage"
	"github.com/tsawler/pdfword/style"
	"github.com/tsawler/pdfword/tables"
)

// DefaultSuffix is appended to the input stem to name the output file.
const DefaultSuffix = "_converted"

// Options holds configuration for one conversion.
type Options struct {
	// Output placement
	outputDir string
	suffix    string
	tempDir   string // parent of the scratch directory; "" means os.TempDir

	// Draft conversion
	converterKind string
	converter     convert.DraftConverter // overrides converterKind when set
	timeout       time.Duration
	sofficePath   string

	// Passes
	tables  bool
	images  bool
	headers bool

	tableFontSize float64
	finder        tables.FinderOptions
	spaceBefore   float64
	spaceAfter    float64
	lineSpacing   float64
	altTexter     images.AltTexter

	// Upload
	store  storage.ObjectStorage
	bucket string
	prefix string

	logger *slog.Logger
}

// defaultOptions returns the default conversion options.
func defaultOptions() Options {
	return Options{
		outputDir:     ".",
		suffix:        DefaultSuffix,
		converterKind: convert.KindHybrid,
		timeout:       convert.DefaultTimeout,
		tables:        true,
		images:        true,
		headers:       true,
		tableFontSize: tables.DefaultFontSize,
		finder:        tables.DefaultFinderOptions(),
		spaceBefore:   style.DefaultSpaceBefore,
		spaceAfter:    style.DefaultSpaceAfter,
		lineSpacing:   style.DefaultLineSpacing,
	}
}

// fromConfig maps loaded configuration onto options. Alt text and upload
// need live clients and are set separately.
func fromConfig(cfg *config.Config) Options {
	o := defaultOptions()
	if cfg.Output.Dir != "" {
		o.outputDir = cfg.Output.Dir
	}
	o.suffix = cfg.Output.Suffix
	o.tempDir = cfg.Output.TempDir
	o.converterKind = cfg.Converter.Kind
	o.timeout = cfg.Converter.Timeout
	o.sofficePath = cfg.Converter.SofficePath
	o.tables = cfg.Tables.Enabled
	o.images = cfg.Images.Enabled
	o.headers = cfg.Headers.Enabled
	o.tableFontSize = cfg.Tables.FontSize
	o.finder = tables.FinderOptions{
		Tolerance:     cfg.Tables.Tolerance,
		MinLineLength: cfg.Tables.MinLineLength,
		MinCells:      cfg.Tables.MinCells,
	}
	o.spaceBefore = cfg.Style.SpaceBefore
	o.spaceAfter = cfg.Style.SpaceAfter
	o.lineSpacing = cfg.Style.LineSpacing
	o.bucket = cfg.Storage.S3.Bucket
	o.prefix = cfg.Storage.S3.Prefix
	return o
}

// log returns the configured logger, or the default one.
func (o Options) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}
