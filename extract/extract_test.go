package extract

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfword/model"
)

// fakeSource serves canned per-page content.
type fakeSource struct {
	blocks     map[int][]model.TextBlock
	images     map[int][]model.ImageBlock
	tables     map[int][]model.TableGrid
	textErr    map[int]error
	imageErr   map[int]error
	tableErr   map[int]error
	panicPage  int
	pages      int
	tableCalls int
}

func newFake(pages int) *fakeSource {
	return &fakeSource{
		blocks:    map[int][]model.TextBlock{},
		images:    map[int][]model.ImageBlock{},
		tables:    map[int][]model.TableGrid{},
		textErr:   map[int]error{},
		imageErr:  map[int]error{},
		tableErr:  map[int]error{},
		panicPage: -1,
		pages:     pages,
	}
}

func (f *fakeSource) PageCount() int { return f.pages }

func (f *fakeSource) PageBox(int) (model.BBox, error) {
	return model.NewBBox(0, 0, 612, 792), nil
}

func (f *fakeSource) TextBlocks(page int) ([]model.TextBlock, error) {
	if page == f.panicPage {
		panic("broken content stream")
	}
	return f.blocks[page], f.textErr[page]
}

func (f *fakeSource) ImageBlocks(page int) ([]model.ImageBlock, error) {
	return f.images[page], f.imageErr[page]
}

func (f *fakeSource) ExtractImage(int) (*model.ImageData, error) {
	return nil, errors.New("not used")
}

func (f *fakeSource) FindTables(page int) ([]model.TableGrid, error) {
	f.tableCalls++
	return f.tables[page], f.tableErr[page]
}

func spanAt(text string, top float64) model.Span {
	return model.Span{Text: text, Font: "Helvetica", Size: 12, BBox: model.NewBBox(72, top-12, 100, 12)}
}

func block(lines ...[]model.Span) model.TextBlock {
	var b model.TextBlock
	for _, l := range lines {
		b.Lines = append(b.Lines, model.Line{Spans: l})
	}
	return b
}

func texts(records []model.StyleRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}

func TestExtract_StreamOrderKept(t *testing.T) {
	src := newFake(2)
	// lower span first in stream order; must not be re-sorted
	src.blocks[0] = []model.TextBlock{
		block([]model.Span{spanAt("b", 100), spanAt("c", 100)}),
		block([]model.Span{spanAt("a", 700)}),
	}
	src.blocks[1] = []model.TextBlock{block([]model.Span{spanAt("d", 500)})}

	doc, warnings := Extract(src, Options{})
	assert.Empty(t, warnings)
	require.Equal(t, 2, doc.PageCount())
	assert.Equal(t, []string{"b", "c", "a", "d"}, texts(doc.Styles()))

	for _, r := range doc.Pages[1].Styles {
		assert.Equal(t, 1, r.Page)
	}
}

func TestExtract_ImageRecords(t *testing.T) {
	src := newFake(1)
	src.images[0] = []model.ImageBlock{
		{BBox: model.NewBBox(0, 0, 144, 72), Width: 200, Height: 100, XRef: 7},
	}

	doc, _ := Extract(src, Options{})
	imgs := doc.Images()
	require.Len(t, imgs, 1)
	assert.Equal(t, model.ImageRecord{
		Page: 0, BBox: model.NewBBox(0, 0, 144, 72), WidthPx: 200, HeightPx: 100, SourceRef: 7,
	}, imgs[0])
}

func TestExtract_PageFailureIsolated(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeSource)
	}{
		{"text error", func(f *fakeSource) { f.textErr[1] = errors.New("bad font") }},
		{"panic", func(f *fakeSource) { f.panicPage = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFake(3)
			for p := 0; p < 3; p++ {
				src.blocks[p] = []model.TextBlock{block([]model.Span{spanAt(string(rune('x'+p)), 700)})}
			}
			src.images[1] = []model.ImageBlock{{XRef: 3}}
			tt.setup(src)

			doc, warnings := Extract(src, Options{})
			require.Len(t, warnings, 1)
			assert.Equal(t, 1, warnings[0].Page)
			assert.Equal(t, Stage, warnings[0].Stage)

			require.Equal(t, 3, doc.PageCount())
			assert.Empty(t, doc.Pages[1].Styles)
			assert.Empty(t, doc.Pages[1].Images)
			assert.Equal(t, []string{"x", "z"}, texts(doc.Styles()))
			assert.Empty(t, doc.Images())
		})
	}
}

func TestExtract_TableFailureCostsOnlyTables(t *testing.T) {
	src := newFake(1)
	src.blocks[0] = []model.TextBlock{block([]model.Span{spanAt("text", 700)})}
	src.tableErr[0] = errors.New("finder exploded")

	doc, warnings := Extract(src, Options{})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "finder exploded")
	assert.Len(t, doc.Styles(), 1)
	assert.Empty(t, doc.Tables())
}

func TestExtract_MalformedTableDiscarded(t *testing.T) {
	src := newFake(1)
	good := model.NewTableGrid(1, 1)
	require.NoError(t, good.Set(0, 0, model.Cell{Text: "ok"}))
	bad := model.NewTableGrid(1, 2) // empty positions are not covered by any span
	src.tables[0] = []model.TableGrid{*bad, *good}

	doc, warnings := Extract(src, Options{})
	require.Len(t, doc.Tables(), 1)
	assert.Equal(t, "ok", doc.Tables()[0].At(0, 0).Text)
	assert.Len(t, warnings, 1)
}

func TestExtract_TablesLoggedAtDebug(t *testing.T) {
	src := newFake(1)
	g := model.NewTableGrid(2, 2)
	for i, text := range []string{"A", "B", "C", "D"} {
		require.NoError(t, g.Set(i/2, i%2, model.Cell{Text: text}))
	}
	src.tables[0] = []model.TableGrid{*g}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, warnings := Extract(src, Options{Logger: logger})
	assert.Empty(t, warnings)
	assert.Contains(t, buf.String(), "table found")
	assert.Contains(t, buf.String(), "| A | B |")

	buf.Reset()
	logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	Extract(src, Options{Logger: logger})
	assert.NotContains(t, buf.String(), "table found")
}

func TestExtract_SkipTables(t *testing.T) {
	src := newFake(2)
	_, _ = Extract(src, Options{SkipTables: true})
	assert.Zero(t, src.tableCalls)
}

func TestExtract_NodesInReadingOrder(t *testing.T) {
	src := newFake(1)
	src.blocks[0] = []model.TextBlock{block(
		[]model.Span{spanAt("above", 700)},
		[]model.Span{spanAt("below", 300)},
	)}
	src.images[0] = []model.ImageBlock{{BBox: model.NewBBox(72, 400, 100, 100), XRef: 9}}

	doc, _ := Extract(src, Options{})
	var kinds []model.NodeKind
	for _, n := range doc.Pages[0].Nodes {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []model.NodeKind{model.NodeParagraph, model.NodeImage, model.NodeParagraph}, kinds)
}

func TestExtract_EmptySource(t *testing.T) {
	doc, warnings := Extract(newFake(0), Options{})
	assert.Zero(t, doc.PageCount())
	assert.Empty(t, warnings)
}
