package docx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const defaultTextWidth = 9360 // twips: letter page with 1in margins

// Table is a handle on one top-level w:tbl element. Positions are grid
// positions: a cell spanning two columns occupies two of them.
type Table struct {
	el *etree.Element
}

// TableCount returns the number of top-level body tables.
func (d *Document) TableCount() int {
	return len(d.body.SelectElements("w:tbl"))
}

// Table returns the i-th top-level body table.
func (d *Document) Table(i int) (*Table, error) {
	ts := d.body.SelectElements("w:tbl")
	if i < 0 || i >= len(ts) {
		return nil, fmt.Errorf("table %d of %d: %w", i, len(ts), ErrOutOfRange)
	}
	return &Table{el: ts[i]}, nil
}

// AddTable appends an empty rows×cols table with equal column widths and
// returns its index.
func (d *Document) AddTable(rows, cols int) (int, error) {
	if rows < 1 || cols < 1 {
		return -1, fmt.Errorf("table size %dx%d: %w", rows, cols, ErrOutOfRange)
	}
	colW := d.textWidth() / cols

	tbl := etree.NewElement("w:tbl")
	tblPr := tbl.CreateElement("w:tblPr")
	tblW := wchild(tblPr, "tblW", tblPrOrder)
	tblW.CreateAttr("w:w", "0")
	tblW.CreateAttr("w:type", "auto")
	look := wchild(tblPr, "tblLook", tblPrOrder)
	look.CreateAttr("w:val", "04A0")

	grid := tbl.CreateElement("w:tblGrid")
	for c := 0; c < cols; c++ {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", strconv.Itoa(colW))
	}
	for r := 0; r < rows; r++ {
		tr := tbl.CreateElement("w:tr")
		for c := 0; c < cols; c++ {
			tr.AddChild(newCell(colW))
		}
	}
	d.appendBody(tbl)
	return d.TableCount() - 1, nil
}

func newCell(width int) *etree.Element {
	tc := etree.NewElement("w:tc")
	tcPr := tc.CreateElement("w:tcPr")
	tcW := wchild(tcPr, "tcW", tcPrOrder)
	tcW.CreateAttr("w:w", strconv.Itoa(width))
	tcW.CreateAttr("w:type", "dxa")
	tc.CreateElement("w:p")
	return tc
}

// textWidth is the width between the page margins of the last section.
func (d *Document) textWidth() int {
	sect := d.body.SelectElement("w:sectPr")
	if sect == nil {
		return defaultTextWidth
	}
	w, ok := attrInt(sect.SelectElement("w:pgSz"), "w:w")
	if !ok {
		return defaultTextWidth
	}
	mar := sect.SelectElement("w:pgMar")
	left, _ := attrInt(mar, "w:left")
	right, _ := attrInt(mar, "w:right")
	if tw := w - left - right; tw > 0 {
		return tw
	}
	return defaultTextWidth
}

func (t *Table) rows() []*etree.Element {
	return t.el.SelectElements("w:tr")
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return len(t.rows())
}

// Cols returns the number of grid columns.
func (t *Table) Cols() int {
	if grid := t.el.SelectElement("w:tblGrid"); grid != nil {
		if n := len(grid.SelectElements("w:gridCol")); n > 0 {
			return n
		}
	}
	rows := t.rows()
	if len(rows) == 0 {
		return 0
	}
	return len(gridCells(rows[0]))
}

// gridCells lists the w:tc of a row once per grid column it covers.
func gridCells(tr *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, tc := range tr.SelectElements("w:tc") {
		for i := 0; i < gridSpan(tc); i++ {
			out = append(out, tc)
		}
	}
	return out
}

func gridSpan(tc *etree.Element) int {
	if n, ok := attrInt(tc.FindElement("w:tcPr/w:gridSpan"), "w:val"); ok && n > 1 {
		return n
	}
	return 1
}

// vMerge returns "" for an unmerged cell, "restart" or "continue".
func vMerge(tc *etree.Element) string {
	el := tc.FindElement("w:tcPr/w:vMerge")
	if el == nil {
		return ""
	}
	return el.SelectAttrValue("w:val", "continue")
}

func (t *Table) at(r, c int) (*etree.Element, error) {
	rows := t.rows()
	if r < 0 || r >= len(rows) || c < 0 {
		return nil, fmt.Errorf("cell (%d,%d) in %d rows: %w", r, c, len(rows), ErrOutOfRange)
	}
	cells := gridCells(rows[r])
	if c >= len(cells) {
		return nil, fmt.Errorf("cell (%d,%d) in row of %d columns: %w", r, c, len(cells), ErrOutOfRange)
	}
	return cells[c], nil
}

// firstCol returns the grid column where tc starts within its row.
func firstCol(tr, tc *etree.Element) int {
	col := 0
	for _, x := range tr.SelectElements("w:tc") {
		if x == tc {
			return col
		}
		col += gridSpan(x)
	}
	return -1
}

// GridPosition returns the anchor and extent of the merged cell covering
// grid position (r, c).
func (t *Table) GridPosition(r, c int) (row, col, rowSpan, colSpan int, err error) {
	tc, err := t.at(r, c)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	rows := t.rows()
	row = r
	col = firstCol(rows[r], tc)
	for row > 0 && vMerge(tc) == "continue" {
		up, err := t.at(row-1, col)
		if err != nil {
			break
		}
		row--
		tc = up
	}
	colSpan = gridSpan(tc)
	rowSpan = 1
	if vMerge(tc) == "restart" {
		for rr := row + 1; rr < len(rows); rr++ {
			below, err := t.at(rr, col)
			if err != nil || vMerge(below) != "continue" {
				break
			}
			rowSpan++
		}
	}
	return row, col, rowSpan, colSpan, nil
}

// Cell returns the cell covering grid position (r, c). For a merged region
// this is the top-left cell.
func (t *Table) Cell(r, c int) (*Cell, error) {
	row, col, _, _, err := t.GridPosition(r, c)
	if err != nil {
		return nil, err
	}
	tc, err := t.at(row, col)
	if err != nil {
		return nil, err
	}
	return &Cell{el: tc}, nil
}

// Merge joins the rectangle (r1,c1)-(r2,c2), inclusive, into one cell.
// Text of the absorbed cells moves into the top-left cell. Merging into or
// across an already merged cell fails with ErrMergeConflict and leaves the
// table unchanged.
func (t *Table) Merge(r1, c1, r2, c2 int) error {
	if r1 > r2 || c1 > c2 {
		return fmt.Errorf("merge (%d,%d)-(%d,%d) is inverted: %w", r1, c1, r2, c2, ErrOutOfRange)
	}
	rows := t.rows()
	if r1 < 0 || c1 < 0 || r2 >= len(rows) || c2 >= t.Cols() {
		return fmt.Errorf("merge (%d,%d)-(%d,%d) in %dx%d table: %w", r1, c1, r2, c2, len(rows), t.Cols(), ErrOutOfRange)
	}
	if r1 == r2 && c1 == c2 {
		return nil
	}

	// validate before touching anything
	for r := r1; r <= r2; r++ {
		cells := gridCells(rows[r])
		if c2 >= len(cells) {
			return fmt.Errorf("merge row %d has %d columns: %w", r, len(cells), ErrOutOfRange)
		}
		for c := c1; c <= c2; c++ {
			if gridSpan(cells[c]) > 1 || vMerge(cells[c]) != "" {
				return fmt.Errorf("merge (%d,%d)-(%d,%d) at (%d,%d): %w", r1, c1, r2, c2, r, c, ErrMergeConflict)
			}
		}
	}

	anchor := gridCells(rows[r1])[c1]
	width := 0
	for c := c1; c <= c2; c++ {
		w, _ := attrInt(gridCells(rows[r1])[c].FindElement("w:tcPr/w:tcW"), "w:w")
		width += w
	}

	for r := r1; r <= r2; r++ {
		cells := gridCells(rows[r])
		keep := cells[c1]
		for c := c1; c <= c2; c++ {
			tc := cells[c]
			if tc != anchor {
				moveContent(tc, anchor)
			}
			if tc != keep {
				rows[r].RemoveChild(tc)
			}
		}
		tcPr := prop(keep, "tcPr")
		if c2 > c1 {
			setVal(wchild(tcPr, "gridSpan", tcPrOrder), strconv.Itoa(c2-c1+1))
			if width > 0 {
				tcW := wchild(tcPr, "tcW", tcPrOrder)
				tcW.CreateAttr("w:w", strconv.Itoa(width))
				tcW.CreateAttr("w:type", "dxa")
			}
		}
		if r2 > r1 {
			vm := wchild(tcPr, "vMerge", tcPrOrder)
			if r == r1 {
				setVal(vm, "restart")
			} else {
				vm.RemoveAttr("w:val")
			}
		}
		if len(keep.SelectElements("w:p")) == 0 && len(keep.SelectElements("w:tbl")) == 0 {
			keep.CreateElement("w:p")
		}
	}
	return nil
}

// moveContent moves the non-empty paragraphs of from into to.
func moveContent(from, to *etree.Element) {
	for _, p := range from.SelectElements("w:p") {
		if strings.TrimSpace((&Paragraph{el: p}).Text()) == "" {
			continue
		}
		from.RemoveChild(p)
		if ps := to.SelectElements("w:p"); len(ps) == 1 && (&Paragraph{el: ps[0]}).Text() == "" {
			to.RemoveChild(ps[0])
		}
		to.AddChild(p)
	}
}

var borderSides = []string{"top", "left", "bottom", "right", "insideH", "insideV"}

// SetBorders sets the same border on the outer edges and inner grid lines.
// size is in eighths of a point.
func (t *Table) SetBorders(style string, size int) {
	tblPr := prop(t.el, "tblPr")
	removeW(tblPr, "tblBorders")
	b := etree.NewElement("w:tblBorders")
	insertOrdered(tblPr, b, tblPrOrder)
	for _, side := range borderSides {
		s := b.CreateElement("w:" + side)
		s.CreateAttr("w:val", style)
		s.CreateAttr("w:sz", strconv.Itoa(size))
		s.CreateAttr("w:space", "0")
		s.CreateAttr("w:color", "auto")
	}
}

// Border returns the table-level border of one side.
func (t *Table) Border(side string) (style string, size int, ok bool) {
	el := t.el.FindElement("w:tblPr/w:tblBorders/w:" + side)
	if el == nil {
		return "", 0, false
	}
	size, _ = attrInt(el, "w:sz")
	return el.SelectAttrValue("w:val", ""), size, true
}

// Cell is a handle on one w:tc element.
type Cell struct {
	el *etree.Element
}

// SetText replaces the cell content. Each line becomes a paragraph; a
// positive sizePt sets the run size.
func (c *Cell) SetText(text string, sizePt float64) {
	removeW(c.el, "p")
	removeW(c.el, "tbl")
	for _, line := range strings.Split(text, "\n") {
		p := &Paragraph{el: c.el.CreateElement("w:p")}
		if line == "" {
			continue
		}
		r := p.AddRun(line)
		if sizePt > 0 {
			r.SetSize(sizePt)
		}
	}
}

// Text returns the cell paragraphs joined by newlines.
func (c *Cell) Text() string {
	var lines []string
	for _, p := range c.el.SelectElements("w:p") {
		lines = append(lines, (&Paragraph{el: p}).Text())
	}
	return strings.Join(lines, "\n")
}

// Paragraphs returns the cell paragraphs.
func (c *Cell) Paragraphs() []*Paragraph {
	ps := c.el.SelectElements("w:p")
	out := make([]*Paragraph, len(ps))
	for i, el := range ps {
		out[i] = &Paragraph{el: el}
	}
	return out
}

// SetVAlign sets vertical alignment: "top", "center" or "bottom".
func (c *Cell) SetVAlign(v string) {
	setVal(wchild(prop(c.el, "tcPr"), "vAlign", tcPrOrder), v)
}

// VAlign returns the explicit vertical alignment, or "".
func (c *Cell) VAlign() string {
	if el := c.el.FindElement("w:tcPr/w:vAlign"); el != nil {
		return el.SelectAttrValue("w:val", "")
	}
	return ""
}
