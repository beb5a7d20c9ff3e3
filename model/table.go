package model

import (
	"fmt"
	"strings"
)

// Cell is one logical table cell. RowSpan and ColSpan are at least 1.
type Cell struct {
	Text    string
	RowSpan int
	ColSpan int
	BBox    BBox
}

// TableGrid is the logical structure of one detected table. Cells[r][c] is nil
// when position (r, c) is covered by a spanning cell anchored above or to the
// left of it.
type TableGrid struct {
	Rows  int
	Cols  int
	Cells [][]*Cell
	BBox  BBox

	// Xs are the column boundaries left to right (Cols+1 values) and Ys the row
	// boundaries top to bottom (Rows+1 values), in page coordinates.
	Xs []float64
	Ys []float64
}

// NewTableGrid creates a rows×cols grid with every position empty.
func NewTableGrid(rows, cols int) *TableGrid {
	g := &TableGrid{Rows: rows, Cols: cols, Cells: make([][]*Cell, rows)}
	for r := range g.Cells {
		g.Cells[r] = make([]*Cell, cols)
	}
	return g
}

// At returns the cell anchored at (r, c), or nil.
func (g *TableGrid) At(r, c int) *Cell {
	if r < 0 || r >= g.Rows || c < 0 || c >= g.Cols || r >= len(g.Cells) || c >= len(g.Cells[r]) {
		return nil
	}
	return g.Cells[r][c]
}

// Set anchors a cell at (r, c). Zero spans are normalised to 1.
func (g *TableGrid) Set(r, c int, cell Cell) error {
	if r < 0 || r >= g.Rows || c < 0 || c >= g.Cols {
		return fmt.Errorf("cell (%d,%d) outside %dx%d grid", r, c, g.Rows, g.Cols)
	}
	if cell.RowSpan < 1 {
		cell.RowSpan = 1
	}
	if cell.ColSpan < 1 {
		cell.ColSpan = 1
	}
	g.Cells[r][c] = &cell
	return nil
}

// CellRect returns the page rectangle covered by grid position (r, c) when
// the grid boundaries are known.
func (g *TableGrid) CellRect(r, c, rowSpan, colSpan int) BBox {
	if len(g.Xs) != g.Cols+1 || len(g.Ys) != g.Rows+1 {
		return BBox{}
	}
	return NewBBoxFromRect(g.Xs[c], g.Ys[r], g.Xs[c+colSpan], g.Ys[r+rowSpan])
}

// Validate checks that every grid position is covered by exactly one cell
// and that no cell extends past the grid.
func (g *TableGrid) Validate() error {
	if g.Rows < 1 || g.Cols < 1 {
		return fmt.Errorf("table grid must be at least 1x1, got %dx%d", g.Rows, g.Cols)
	}
	if len(g.Cells) != g.Rows {
		return fmt.Errorf("table grid has %d rows of cells, want %d", len(g.Cells), g.Rows)
	}
	covered := make([][]bool, g.Rows)
	for r := range covered {
		if len(g.Cells[r]) != g.Cols {
			return fmt.Errorf("row %d has %d cells, want %d", r, len(g.Cells[r]), g.Cols)
		}
		covered[r] = make([]bool, g.Cols)
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			cell := g.Cells[r][c]
			if cell == nil {
				continue
			}
			if cell.RowSpan < 1 || cell.ColSpan < 1 {
				return fmt.Errorf("cell (%d,%d) has span %dx%d", r, c, cell.RowSpan, cell.ColSpan)
			}
			if r+cell.RowSpan > g.Rows || c+cell.ColSpan > g.Cols {
				return fmt.Errorf("cell (%d,%d) span %dx%d exceeds grid", r, c, cell.RowSpan, cell.ColSpan)
			}
			for dr := 0; dr < cell.RowSpan; dr++ {
				for dc := 0; dc < cell.ColSpan; dc++ {
					if covered[r+dr][c+dc] {
						return fmt.Errorf("position (%d,%d) covered twice", r+dr, c+dc)
					}
					covered[r+dr][c+dc] = true
				}
			}
		}
	}
	for r := range covered {
		for c, ok := range covered[r] {
			if !ok {
				return fmt.Errorf("position (%d,%d) not covered by any cell", r, c)
			}
		}
	}
	return nil
}

// ToMarkdown renders the grid as a markdown table. Covered positions are
// rendered empty.
func (g *TableGrid) ToMarkdown() string {
	if g.Rows == 0 || g.Cols == 0 {
		return ""
	}
	var sb strings.Builder
	for r := 0; r < g.Rows; r++ {
		sb.WriteString("|")
		for c := 0; c < g.Cols; c++ {
			text := ""
			if cell := g.At(r, c); cell != nil {
				text = strings.ReplaceAll(cell.Text, "\n", " ")
			}
			sb.WriteString(" " + text + " |")
		}
		sb.WriteString("\n")
		if r == 0 {
			sb.WriteString("|" + strings.Repeat("---|", g.Cols) + "\n")
		}
	}
	return sb.String()
}
