// Package extract builds the layout model of a PDF: one style record per
// text span, one image record per image placement, and the tables found on
// each page, all in reading order.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tsawler/pdfword/model"
)

// Stage names the extractor in warnings.
const Stage = "extract"

// Source is a parsed PDF. Pages are 0-based.
type Source interface {
	PageCount() int
	PageBox(page int) (model.BBox, error)
	TextBlocks(page int) ([]model.TextBlock, error)
	ImageBlocks(page int) ([]model.ImageBlock, error)
	ExtractImage(xref int) (*model.ImageData, error)
	FindTables(page int) ([]model.TableGrid, error)
}

// Options controls extraction.
type Options struct {
	Logger *slog.Logger

	// SkipTables disables table detection.
	SkipTables bool
}

// Extract walks every page of src in order. A page whose text cannot be
// read contributes no records and yields a warning; the rest of the
// document is still extracted. Failed pages are kept as empty layouts so
// page indices line up with the source.
func Extract(src Source, opts Options) (*model.Document, []model.Warning) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc := model.NewDocument()
	var warnings []model.Warning
	warn := func(page int, msg string, err error) {
		warnings = append(warnings, model.Warning{Stage: Stage, Page: page, Message: msg, Err: err})
		logger.Warn(msg, "page", page, "error", err)
	}

	n := src.PageCount()
	for i := 0; i < n; i++ {
		pl, err := extractPage(src, i, opts, logger, warn)
		if err != nil {
			warn(i, "page skipped", err)
			pl = model.NewPageLayout(i, 0, 0)
		}
		doc.AddPage(pl)
	}

	logger.Debug("extraction finished",
		"pages", n,
		"styles", len(doc.Styles()),
		"images", len(doc.Images()),
		"tables", len(doc.Tables()))
	return doc, warnings
}

func extractPage(src Source, i int, opts Options, logger *slog.Logger, warn func(int, string, error)) (pl *model.PageLayout, err error) {
	defer func() {
		if r := recover(); r != nil {
			pl, err = nil, fmt.Errorf("malformed page content: %v", r)
		}
	}()

	box, err := src.PageBox(i)
	if err != nil {
		return nil, err
	}
	blocks, err := src.TextBlocks(i)
	if err != nil {
		return nil, err
	}

	pl = model.NewPageLayout(i, box.Width, box.Height)
	for _, b := range blocks {
		for _, l := range b.Lines {
			for _, s := range l.Spans {
				pl.Styles = append(pl.Styles, model.NewStyleRecord(i, s))
			}
		}
	}

	if imgs, err := src.ImageBlocks(i); err != nil {
		warn(i, "image placements unavailable", err)
	} else {
		for _, b := range imgs {
			pl.Images = append(pl.Images, model.NewImageRecord(i, b))
		}
	}

	if !opts.SkipTables {
		pl.Tables = findTables(src, i, logger, warn)
	}

	pl.BuildNodes()
	return pl, nil
}

// findTables isolates table detection so a failing finder costs only the
// page's tables.
func findTables(src Source, i int, logger *slog.Logger, warn func(int, string, error)) (grids []model.TableGrid) {
	defer func() {
		if r := recover(); r != nil {
			warn(i, "table detection failed", fmt.Errorf("%v", r))
			grids = nil
		}
	}()
	grids, err := src.FindTables(i)
	if err != nil {
		warn(i, "table detection failed", err)
		return nil
	}
	var valid []model.TableGrid
	for _, g := range grids {
		if err := g.Validate(); err != nil {
			warn(i, "discarding malformed table", err)
			continue
		}
		if logger.Enabled(context.Background(), slog.LevelDebug) {
			logger.Debug("table found", "page", i, "rows", g.Rows, "cols", g.Cols, "grid", g.ToMarkdown())
		}
		valid = append(valid, g)
	}
	return valid
}
