package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfword/docx"
	"github.com/tsawler/pdfword/model"
)

func gridOf(t *testing.T, rows, cols int, cells map[[2]int]model.Cell) *model.TableGrid {
	t.Helper()
	g := model.NewTableGrid(rows, cols)
	for pos, cell := range cells {
		require.NoError(t, g.Set(pos[0], pos[1], cell))
	}
	return g
}

func TestBuild_PlainGrid(t *testing.T) {
	doc := docx.New()
	g := gridOf(t, 2, 2, map[[2]int]model.Cell{
		{0, 0}: {Text: "A"}, {0, 1}: {Text: "B"},
		{1, 0}: {Text: "C"}, {1, 1}: {Text: "D"},
	})

	res, err := NewBuilder(nil).Build(doc, g)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Table)
	assert.Zero(t, res.Merged)
	assert.Empty(t, res.Failures)

	require.Equal(t, 1, doc.TableCount())
	tbl, err := doc.Table(0)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, 2, tbl.Cols())

	want := []string{"A", "B", "C", "D"}
	for i, text := range want {
		c, err := tbl.Cell(i/2, i%2)
		require.NoError(t, err)
		assert.Equal(t, text, c.Text())
		assert.Equal(t, "center", c.VAlign())
		size, ok := c.Paragraphs()[0].Runs()[0].Size()
		assert.True(t, ok)
		assert.Equal(t, DefaultFontSize, size)
	}

	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		style, size, ok := tbl.Border(side)
		assert.True(t, ok, side)
		assert.Equal(t, "single", style)
		assert.Equal(t, 4, size)
	}

	// spacer paragraph after the table
	assert.Equal(t, 1, doc.ParagraphCount())
}

func TestBuild_Merges(t *testing.T) {
	doc := docx.New()
	g := gridOf(t, 2, 2, map[[2]int]model.Cell{
		{0, 0}: {Text: "Header", ColSpan: 2},
		{1, 0}: {Text: "C"}, {1, 1}: {Text: "D"},
	})
	require.NoError(t, g.Validate())

	res, err := NewBuilder(nil).Build(doc, g)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merged)
	assert.Empty(t, res.Failures)

	tbl, _ := doc.Table(0)
	row, col, rs, cs, err := tbl.GridPosition(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 2}, []int{row, col, rs, cs})

	c, _ := tbl.Cell(0, 0)
	assert.Equal(t, "Header", c.Text())
}

func TestBuild_RowSpan(t *testing.T) {
	doc := docx.New()
	g := gridOf(t, 3, 2, map[[2]int]model.Cell{
		{0, 0}: {Text: "A", RowSpan: 2}, {0, 1}: {Text: "B"},
		{1, 1}: {Text: "D"},
		{2, 0}: {Text: "E"}, {2, 1}: {Text: "F"},
	})
	require.NoError(t, g.Validate())
	require.Nil(t, g.At(1, 0))

	res, err := NewBuilder(nil).Build(doc, g)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merged)
	assert.Empty(t, res.Failures)

	tbl, _ := doc.Table(0)
	assert.Equal(t, 3, tbl.Rows())
	row, col, rs, cs, err := tbl.GridPosition(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 2, 1}, []int{row, col, rs, cs})

	c, err := tbl.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "A", c.Text())
	c, err = tbl.Cell(2, 0)
	require.NoError(t, err)
	assert.Equal(t, "E", c.Text())
}

func TestBuild_MergeFailureIsolated(t *testing.T) {
	doc := docx.New()
	g := gridOf(t, 2, 3, map[[2]int]model.Cell{
		{0, 0}: {Text: "wide", ColSpan: 2},
		{0, 2}: {Text: "E"},
		{1, 0}: {Text: "C"},
		{1, 1}: {Text: "bad", RowSpan: 2}, // runs past the last row
		{1, 2}: {Text: "F"},
	})

	res, err := NewBuilder(nil).Build(doc, g)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merged)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Row)
	assert.Equal(t, 1, res.Failures[0].Col)
	assert.ErrorIs(t, res.Failures[0], docx.ErrOutOfRange)

	tbl, _ := doc.Table(0)
	c, err := tbl.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "bad", c.Text())
	_, _, rs, cs, _ := tbl.GridPosition(1, 1)
	assert.Equal(t, 1, rs)
	assert.Equal(t, 1, cs)
}

func TestBuild_OverlappingMergeConflict(t *testing.T) {
	doc := docx.New()
	g := gridOf(t, 1, 3, map[[2]int]model.Cell{
		{0, 0}: {ColSpan: 2},
		{0, 1}: {ColSpan: 2},
	})

	res, err := NewBuilder(nil).Build(doc, g)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merged)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0], docx.ErrMergeConflict)
}

func TestBuild_EmptyGrid(t *testing.T) {
	doc := docx.New()
	_, err := NewBuilder(nil).Build(doc, model.NewTableGrid(0, 0))
	assert.Error(t, err)
	assert.Zero(t, doc.TableCount())
	assert.Zero(t, doc.ParagraphCount())
}

func TestBuild_FoundTable(t *testing.T) {
	spans := []model.Span{
		span("A", 50, 75), span("B", 150, 75),
		span("C", 50, 25), span("D", 150, 25),
	}
	grids := NewFinder(DefaultFinderOptions()).Find(simpleGrid(), spans, page)
	require.Len(t, grids, 1)

	doc := docx.New()
	_, err := NewBuilder(nil).Build(doc, &grids[0])
	require.NoError(t, err)

	tbl, _ := doc.Table(0)
	var got []string
	for r := 0; r < tbl.Rows(); r++ {
		for c := 0; c < tbl.Cols(); c++ {
			cell, err := tbl.Cell(r, c)
			require.NoError(t, err)
			got = append(got, cell.Text())
		}
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, got)
}
