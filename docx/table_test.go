package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, rows, cols int) (*Document, *Table) {
	t.Helper()
	doc := New()
	idx, err := doc.AddTable(rows, cols)
	require.NoError(t, err)
	tbl, err := doc.Table(idx)
	require.NoError(t, err)
	return doc, tbl
}

func TestAddTable(t *testing.T) {
	doc, tbl := newTable(t, 2, 3)
	assert.Equal(t, 1, doc.TableCount())
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, 3, tbl.Cols())

	_, err := doc.AddTable(0, 2)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCellTextAndAlignment(t *testing.T) {
	_, tbl := newTable(t, 2, 2)
	c, err := tbl.Cell(1, 1)
	require.NoError(t, err)

	c.SetText("D", 10)
	c.SetVAlign("center")
	assert.Equal(t, "D", c.Text())
	assert.Equal(t, "center", c.VAlign())

	size, ok := c.Paragraphs()[0].Runs()[0].Size()
	assert.True(t, ok)
	assert.Equal(t, 10.0, size)

	_, err = tbl.Cell(2, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMergeHorizontal(t *testing.T) {
	_, tbl := newTable(t, 2, 3)
	a, _ := tbl.Cell(0, 0)
	a.SetText("A", 10)
	b, _ := tbl.Cell(0, 1)
	b.SetText("B", 10)

	require.NoError(t, tbl.Merge(0, 0, 0, 1))

	row, col, rs, cs, err := tbl.GridPosition(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 2}, []int{row, col, rs, cs})
	assert.Equal(t, 3, tbl.Cols())

	c, err := tbl.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "A\nB", c.Text())
}

func TestMergeRectangle(t *testing.T) {
	_, tbl := newTable(t, 3, 3)
	require.NoError(t, tbl.Merge(0, 1, 1, 2))

	for _, pos := range [][2]int{{0, 1}, {0, 2}, {1, 1}, {1, 2}} {
		row, col, rs, cs, err := tbl.GridPosition(pos[0], pos[1])
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 2}, []int{row, col, rs, cs}, "position %v", pos)
	}

	row, col, rs, cs, err := tbl.GridPosition(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1, 1}, []int{row, col, rs, cs})
}

func TestMergeErrors(t *testing.T) {
	tests := []struct {
		name           string
		r1, c1, r2, c2 int
		want           error
	}{
		{"inverted", 1, 0, 0, 0, ErrOutOfRange},
		{"outside", 0, 0, 3, 0, ErrOutOfRange},
		{"negative", -1, 0, 0, 0, ErrOutOfRange},
		{"overlap", 1, 1, 2, 1, ErrMergeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tbl := newTable(t, 3, 3)
			require.NoError(t, tbl.Merge(0, 0, 1, 1))
			err := tbl.Merge(tt.r1, tt.c1, tt.r2, tt.c2)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMergeConflictLeavesTableUnchanged(t *testing.T) {
	_, tbl := newTable(t, 2, 2)
	require.NoError(t, tbl.Merge(0, 0, 0, 1))
	require.Error(t, tbl.Merge(0, 0, 1, 0))

	_, _, rs, cs, err := tbl.GridPosition(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, rs)
	assert.Equal(t, 1, cs)
}

func TestSetBorders(t *testing.T) {
	_, tbl := newTable(t, 1, 1)
	tbl.SetBorders("single", 4)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		style, size, ok := tbl.Border(side)
		assert.True(t, ok, side)
		assert.Equal(t, "single", style)
		assert.Equal(t, 4, size)
	}

	// borders sit before tblLook
	var tags []string
	for _, el := range tbl.el.SelectElement("w:tblPr").ChildElements() {
		tags = append(tags, el.Tag)
	}
	assert.Equal(t, []string{"tblW", "tblBorders", "tblLook"}, tags)
}

func TestTableIndexStableAfterAppend(t *testing.T) {
	doc, first := newTable(t, 1, 1)
	c, _ := first.Cell(0, 0)
	c.SetText("first", 0)

	_, err := doc.AddTable(2, 2)
	require.NoError(t, err)
	doc.AddParagraph("after")

	again, err := doc.Table(0)
	require.NoError(t, err)
	c, _ = again.Cell(0, 0)
	assert.Equal(t, "first", c.Text())
}
