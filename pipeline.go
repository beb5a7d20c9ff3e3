package pdfword

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/pdfword/convert"
	"github.com/tsawler/pdfword/docx"
	"github.com/tsawler/pdfword/extract"
	"github.com/tsawler/pdfword/format"
	"github.com/tsawler/pdfword/images"
	"github.com/tsawler/pdfword/layout"
	"github.com/tsawler/pdfword/model"
	"github.com/tsawler/pdfword/pdf"
	"github.com/tsawler/pdfword/storage"
	"github.com/tsawler/pdfword/style"
	"github.com/tsawler/pdfword/tables"
)

// source is the parsed PDF the passes read from.
type source interface {
	extract.Source
	Close() error
}

func openPDF(path string, logger *slog.Logger, finder *tables.Finder) (source, error) {
	if err := format.Expect(path, format.PDF); err != nil {
		return nil, err
	}
	d, err := pdf.Open(path, pdf.WithLogger(logger), pdf.WithTableFinder(finder))
	if err != nil {
		return nil, err
	}
	return d, nil
}

// OutputName returns the file name written for input: the input stem plus
// suffix, with a .docx extension.
func OutputName(input, suffix string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + suffix + ".docx"
}

// Convert runs the whole conversion. The returned error is nil unless the
// PDF cannot be read, no draft can be produced, or the result cannot be
// saved; the report is non-nil whenever a run ID was assigned.
//
// ctx bounds the draft converter and the upload. The reconstruction passes
// run to completion once started.
func (c *Converter) Convert(ctx context.Context) (*Report, []Warning, error) {
	opts := c.options
	runID := uuid.NewString()
	logger := opts.log().With("run_id", runID)
	start := time.Now()

	report := &Report{RunID: runID, Input: c.input}
	var warnings []Warning
	warn := func(stage string, page int, msg string, err error) {
		warnings = append(warnings, Warning{Stage: stage, Page: page, Message: msg, Err: err})
	}
	finish := func() {
		report.Warnings = len(warnings)
		report.Duration = time.Since(start)
	}
	defer finish()

	// Deferred calls run in reverse, so the PDF is closed before the
	// scratch directory goes away.
	tmp, err := images.NewTempDir(opts.tempDir, "pdfword-"+runID[:8]+"-")
	if err != nil {
		return report, warnings, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer func() {
		if err := tmp.Close(); err != nil {
			logger.Warn("removing scratch directory", "path", tmp.Path(), "error", err)
		}
	}()

	open := c.open
	if open == nil {
		open = openPDF
	}
	src, err := open(c.input, logger, tables.NewFinder(opts.finder))
	if err != nil {
		return report, warnings, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer src.Close()

	doc, err := c.draft(ctx, src, tmp, report, logger)
	if err != nil {
		return report, warnings, err
	}
	limit := doc.ParagraphCount()
	report.DraftParagraphs = limit

	extracted, ws := extract.Extract(src, extract.Options{Logger: logger, SkipTables: !opts.tables})
	warnings = append(warnings, ws...)
	report.Pages = extracted.PageCount()

	if opts.tables {
		c.buildTables(doc, extracted, report, warn, logger)
	}

	if opts.images {
		r := images.NewReinserter(tmp, logger)
		r.Alt = opts.altTexter
		records := extracted.ImagesInReadingOrder()
		st := r.Insert(doc, src, records)
		report.addImages(st)
		for _, f := range st.Failures {
			page := -1
			if f.Record >= 0 && f.Record < len(records) {
				page = records[f.Record].Page
			}
			warn(StageImages, page, fmt.Sprintf("image %d (xref %d) skipped", f.Record, f.XRef), f.Err)
		}
	}

	records := extracted.Styles()
	report.StyleRecords = len(records)
	applier := style.NewApplier(logger)
	applier.SpaceBefore = opts.spaceBefore
	applier.SpaceAfter = opts.spaceAfter
	applier.LineSpacing = opts.lineSpacing
	report.addStyle(applier.Apply(doc, records, limit))

	if opts.headers {
		res := layout.DetectHeaderFooter(extracted)
		if err := layout.ApplyHeaderFooter(doc, res); err != nil {
			logger.Warn("header/footer pass failed", "error", err)
			warn(StageHeaders, -1, "header/footer not written", err)
		} else {
			report.Headers = len(res.Headers)
			report.Footers = len(res.Footers)
		}
	}

	out, err := c.save(doc)
	if err != nil {
		return report, warnings, err
	}
	report.Output = out
	logger.Info("document saved", "path", out)

	if opts.store != nil && opts.bucket != "" {
		key := storage.ObjectKey(opts.prefix, runID, out)
		res, err := storage.UploadFile(ctx, opts.store, opts.bucket, key, out)
		if err != nil {
			logger.Warn("upload failed", "bucket", opts.bucket, "key", key, "error", err)
			warn(StageUpload, -1, "upload to "+opts.bucket+" failed", err)
		} else {
			report.UploadLocation = res.Location
			logger.Info("document uploaded", "location", res.Location)
		}
	}

	return report, warnings, nil
}

// draft produces and opens the draft document.
func (c *Converter) draft(ctx context.Context, src source, tmp *images.TempDir, report *Report, logger *slog.Logger) (*docx.Document, error) {
	conv, err := c.draftConverter(src, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConverterUnavailable, err)
	}
	if err := conv.Available(ctx); err != nil {
		return nil, err
	}
	report.Converter = conv.Name()

	path, err := conv.Convert(ctx, c.input, tmp.Path())
	if h, ok := conv.(*convert.Hybrid); ok {
		report.addDraft(h.Stats())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoDraft, conv.Name(), err)
	}
	if err := format.Expect(path, format.DOCX); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoDraft, conv.Name(), err)
	}
	doc, err := docx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrNoDraft, filepath.Base(path), err)
	}
	logger.Info("draft ready", "converter", conv.Name(), "paragraphs", doc.ParagraphCount())
	return doc, nil
}

func (c *Converter) draftConverter(src source, logger *slog.Logger) (convert.DraftConverter, error) {
	if c.options.converter != nil {
		return c.options.converter, nil
	}
	lo := convert.NewLibreOffice(c.options.sofficePath, c.options.timeout, logger)
	return convert.ForKind(c.options.converterKind, lo, convert.NewBasic(src, logger))
}

// buildTables appends every detected table, page by page in reading order.
func (c *Converter) buildTables(doc *docx.Document, extracted *model.Document, report *Report,
	warn func(string, int, string, error), logger *slog.Logger) {
	b := tables.NewBuilder(logger)
	b.FontSize = c.options.tableFontSize
	for _, page := range extracted.Pages {
		for _, grid := range page.TablesInReadingOrder() {
			report.TablesFound++
			res, err := b.Build(doc, &grid)
			if err != nil {
				logger.Warn("table skipped", "page", page.Index, "error", err)
				warn(StageTables, page.Index, "table skipped", err)
				continue
			}
			report.TablesBuilt++
			report.CellsMerged += res.Merged
			report.MergesFailed += len(res.Failures)
			for _, f := range res.Failures {
				warn(StageTables, page.Index, fmt.Sprintf("table %d: cell left unmerged", res.Table), f)
			}
		}
	}
}

// save writes the document to the output directory.
func (c *Converter) save(doc *docx.Document) (string, error) {
	dir := c.options.outputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	out := filepath.Join(dir, OutputName(c.input, c.options.suffix))
	if err := doc.Save(out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return out, nil
}
