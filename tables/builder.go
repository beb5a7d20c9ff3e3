package tables

import (
	"fmt"
	"log/slog"

	"github.com/tsawler/pdfword/docx"
	"github.com/tsawler/pdfword/model"
)

// Cell styling applied to every reconstructed table.
const (
	DefaultFontSize    = 10.0
	DefaultBorderStyle = "single"
	DefaultBorderSize  = 4 // eighths of a point
)

// Builder writes detected table grids into a document.
type Builder struct {
	FontSize    float64
	BorderStyle string
	BorderSize  int
	Logger      *slog.Logger
}

// NewBuilder returns a builder with the default cell styling.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		FontSize:    DefaultFontSize,
		BorderStyle: DefaultBorderStyle,
		BorderSize:  DefaultBorderSize,
		Logger:      logger,
	}
}

// MergeFailure records a spanning cell that could not be merged. The cell
// stays unmerged in the output.
type MergeFailure struct {
	Row, Col         int
	RowSpan, ColSpan int
	Err              error
}

func (m MergeFailure) Error() string {
	return fmt.Sprintf("merge cell (%d,%d) span %dx%d: %v", m.Row, m.Col, m.RowSpan, m.ColSpan, m.Err)
}

func (m MergeFailure) Unwrap() error { return m.Err }

// Result describes one built table.
type Result struct {
	Table    int // index of the table in the document
	Merged   int
	Failures []MergeFailure
}

// Build appends grid as a bordered table followed by an empty paragraph.
// Only a table that cannot be created at all is an error; a failed merge is
// logged and reported in the result.
func (b *Builder) Build(doc *docx.Document, grid *model.TableGrid) (Result, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	idx, err := doc.AddTable(grid.Rows, grid.Cols)
	if err != nil {
		return Result{Table: -1}, fmt.Errorf("adding table: %w", err)
	}
	tbl, err := doc.Table(idx)
	if err != nil {
		return Result{Table: -1}, err
	}
	tbl.SetBorders(b.BorderStyle, b.BorderSize)

	res := Result{Table: idx}
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			cell := grid.At(r, c)
			if cell == nil {
				continue
			}
			dc, err := tbl.Cell(r, c)
			if err != nil {
				logger.Warn("table cell unavailable", "table", idx, "row", r, "col", c, "error", err)
				continue
			}
			dc.SetText(cell.Text, b.FontSize)
			dc.SetVAlign("center")
		}
	}

	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			cell := grid.At(r, c)
			if cell == nil || (cell.RowSpan <= 1 && cell.ColSpan <= 1) {
				continue
			}
			if err := merge(tbl, r, c, cell.RowSpan, cell.ColSpan); err != nil {
				f := MergeFailure{Row: r, Col: c, RowSpan: cell.RowSpan, ColSpan: cell.ColSpan, Err: err}
				logger.Warn("cell merge failed", "table", idx, "row", r, "col", c,
					"row_span", cell.RowSpan, "col_span", cell.ColSpan, "error", err)
				res.Failures = append(res.Failures, f)
				continue
			}
			res.Merged++
		}
	}

	doc.AddParagraph("")
	return res, nil
}

func merge(tbl *docx.Table, r, c, rowSpan, colSpan int) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return tbl.Merge(r, c, r+rowSpan-1, c+colSpan-1)
}
