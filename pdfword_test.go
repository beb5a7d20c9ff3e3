package pdfword

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfword/convert"
	"github.com/tsawler/pdfword/docx"
	"github.com/tsawler/pdfword/model"
	"github.com/tsawler/pdfword/storage"
	"github.com/tsawler/pdfword/tables"
)

// fakeSource serves two letter-sized pages of canned content.
type fakeSource struct {
	blocks  map[int][]model.TextBlock
	images  map[int][]model.ImageBlock
	tables  map[int][]model.TableGrid
	png     []byte
	closed  bool
	onClose func()
}

func (f *fakeSource) PageCount() int { return 2 }

func (f *fakeSource) PageBox(int) (model.BBox, error) {
	return model.NewBBox(0, 0, 612, 792), nil
}

func (f *fakeSource) TextBlocks(page int) ([]model.TextBlock, error) {
	return f.blocks[page], nil
}

func (f *fakeSource) ImageBlocks(page int) ([]model.ImageBlock, error) {
	return f.images[page], nil
}

func (f *fakeSource) ExtractImage(xref int) (*model.ImageData, error) {
	if xref != 9 {
		return nil, errors.New("no such image")
	}
	return &model.ImageData{Data: f.png, Format: model.ImageFormatPNG}, nil
}

func (f *fakeSource) FindTables(page int) ([]model.TableGrid, error) {
	return f.tables[page], nil
}

func (f *fakeSource) Close() error {
	if f.onClose != nil {
		f.onClose()
	}
	f.closed = true
	return nil
}

func span(text, font string, size float64, color model.Color, flags model.Flags, top float64) model.Span {
	return model.Span{Text: text, Font: font, Size: size, Color: color, Flags: flags,
		BBox: model.NewBBox(72, top-size, 200, size)}
}

func lineBlock(s model.Span) model.TextBlock {
	return model.TextBlock{Lines: []model.Line{{Spans: []model.Span{s}}}, BBox: s.BBox}
}

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))

	grid := model.NewTableGrid(2, 2)
	for i, text := range []string{"A", "B", "C", "D"} {
		require.NoError(t, grid.Set(i/2, i%2, model.Cell{Text: text}))
	}

	return &fakeSource{
		blocks: map[int][]model.TextBlock{
			0: {
				lineBlock(span("Handbook", "Helvetica", 9, model.Black, 0, 770)),
				lineBlock(span("Title", "ABCDEF+Arial-BoldMT", 14, model.ColorFromInt(0xFF0000), model.FlagBold, 700)),
				lineBlock(span("Body text", "TimesNewRomanPSMT", 11, model.Black, 0, 650)),
			},
			1: {
				lineBlock(span("Handbook", "Helvetica", 9, model.Black, 0, 770)),
				lineBlock(span("More text", "TimesNewRomanPSMT", 11, model.Black, 0, 700)),
			},
		},
		images: map[int][]model.ImageBlock{
			0: {{BBox: model.NewBBox(72, 300, 144, 72), Width: 4, Height: 4, XRef: 9}},
		},
		tables: map[int][]model.TableGrid{0: {*grid}},
		png:    buf.Bytes(),
	}
}

// fakeDraft writes one draft paragraph per line of text.
type fakeDraft struct {
	lines []string
	raw   []byte // written instead of a document when set
	avail error
	err   error
	calls int
}

func (f *fakeDraft) Name() string { return "fake" }

func (f *fakeDraft) Available(context.Context) error { return f.avail }

func (f *fakeDraft) Convert(_ context.Context, pdfPath, outDir string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	out := filepath.Join(outDir, "draft.docx")
	if f.raw != nil {
		return out, os.WriteFile(out, f.raw, 0o600)
	}
	doc := docx.New()
	for _, l := range f.lines {
		doc.AddParagraph(l)
	}
	return out, doc.Save(out)
}

// memStore records uploads.
type memStore struct {
	keys []string
	data []byte
	err  error
}

func (m *memStore) Upload(_ context.Context, in storage.UploadInput) (*storage.UploadOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.keys = append(m.keys, in.Key)
	m.data = b
	return &storage.UploadOutput{Location: "mem://" + in.Bucket + "/" + in.Key}, nil
}

func (m *memStore) Delete(context.Context, string, string) error { return nil }

func (m *memStore) GetPresignedURL(context.Context, string, string, int64) (string, error) {
	return "", nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConverter(t *testing.T, src *fakeSource, draft *fakeDraft) (*Converter, string, string) {
	t.Helper()
	outDir := filepath.Join(t.TempDir(), "out")
	scratch := t.TempDir()
	c := Open("/data/sample.pdf").
		OutputDir(outDir).
		TempDir(scratch).
		WithDraftConverter(draft).
		Logger(quietLogger())
	c.open = func(string, *slog.Logger, *tables.Finder) (source, error) { return src, nil }
	return c, outDir, scratch
}

func draftLines() []string {
	return []string{"Handbook", "Title", "Body text", "Handbook", "More text"}
}

func TestConvert_EndToEnd(t *testing.T) {
	src := newFakeSource(t)
	c, outDir, scratch := newTestConverter(t, src, &fakeDraft{lines: draftLines()})

	var scratchAtClose int
	src.onClose = func() {
		entries, _ := os.ReadDir(scratch)
		scratchAtClose = len(entries)
	}

	report, warnings, err := c.Convert(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings, FormatWarnings(warnings))

	assert.Equal(t, filepath.Join(outDir, "sample_converted.docx"), report.Output)
	assert.Equal(t, "fake", report.Converter)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 5, report.DraftParagraphs)
	assert.Equal(t, 5, report.StyleRecords)
	assert.Equal(t, 1, report.TablesBuilt)
	assert.Equal(t, 1, report.ImagesInserted)
	assert.Equal(t, 5, report.Style.Applied)
	assert.Equal(t, 1, report.Headers)

	assert.True(t, src.closed)
	assert.Equal(t, 1, scratchAtClose, "source must be closed while the scratch directory exists")
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory must be removed")

	doc, err := docx.Open(report.Output)
	require.NoError(t, err)

	p, err := doc.Paragraph(1)
	require.NoError(t, err)
	assert.Equal(t, "Title", p.Text())
	run := p.PrimaryRun()
	assert.Equal(t, "Arial", run.Font())
	assert.True(t, run.Bold())
	size, _ := run.Size()
	assert.Equal(t, 14.0, size)
	color, ok := run.Color()
	require.True(t, ok)
	assert.Equal(t, "FF0000", color.Hex())

	require.Equal(t, 1, doc.TableCount())
	tbl, err := doc.Table(0)
	require.NoError(t, err)
	var cells []string
	for r := 0; r < 2; r++ {
		for col := 0; col < 2; col++ {
			cell, err := tbl.Cell(r, col)
			require.NoError(t, err)
			cells = append(cells, cell.Text())
		}
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, cells)

	require.Equal(t, 1, doc.PictureCount())
	pic, err := doc.Picture(0)
	require.NoError(t, err)
	w, h := pic.Size()
	assert.InDelta(t, 2.0, w, 0.001)
	assert.InDelta(t, 1.0, h, 0.001)

	header, err := doc.Sections()[0].Header()
	require.NoError(t, err)
	assert.Equal(t, "Handbook", header.Text())
}

func TestConvert_Deterministic(t *testing.T) {
	shape := func() []int {
		c, _, _ := newTestConverter(t, newFakeSource(t), &fakeDraft{lines: draftLines()})
		report, _, err := c.Convert(context.Background())
		require.NoError(t, err)

		doc, err := docx.Open(report.Output)
		require.NoError(t, err)
		tbl, err := doc.Table(0)
		require.NoError(t, err)
		return []int{doc.ParagraphCount(), tbl.Rows(), tbl.Cols(), doc.PictureCount()}
	}

	first := shape()
	assert.Equal(t, []int{7, 2, 2, 1}, first)
	assert.Equal(t, first, shape())
}

func TestConvert_TableDetection(t *testing.T) {
	src := newFakeSource(t)
	c, _, _ := newTestConverter(t, src, &fakeDraft{lines: draftLines()})
	var finder *tables.Finder
	c.open = func(_ string, _ *slog.Logger, f *tables.Finder) (source, error) {
		finder = f
		return src, nil
	}

	grid := []model.Segment{
		{From: model.Point{X: 0, Y: 100}, To: model.Point{X: 200, Y: 100}},
		{From: model.Point{X: 0, Y: 50}, To: model.Point{X: 200, Y: 50}},
		{From: model.Point{X: 0, Y: 0}, To: model.Point{X: 200, Y: 0}},
		{From: model.Point{X: 0, Y: 0}, To: model.Point{X: 0, Y: 100}},
		{From: model.Point{X: 100, Y: 0}, To: model.Point{X: 100, Y: 100}},
		{From: model.Point{X: 200, Y: 0}, To: model.Point{X: 200, Y: 100}},
	}
	box := model.NewBBox(0, 0, 612, 792)

	_, _, err := c.Convert(context.Background())
	require.NoError(t, err)
	require.NotNil(t, finder)
	assert.Len(t, finder.Find(grid, nil, box), 1)

	_, _, err = c.TableDetection(tables.FinderOptions{MinCells: 5}).Convert(context.Background())
	require.NoError(t, err)
	assert.Empty(t, finder.Find(grid, nil, box))
}

func TestConvert_HybridDraftStats(t *testing.T) {
	primary := &fakeDraft{avail: errors.New("soffice not found")}
	fallback := &fakeDraft{lines: draftLines()}
	c, _, _ := newTestConverter(t, newFakeSource(t), fallback)
	c = c.WithDraftConverter(convert.NewHybrid(primary, fallback, quietLogger()))

	report, _, err := c.Convert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, convert.KindHybrid, report.Converter)
	require.NotNil(t, report.Draft)
	assert.Equal(t, DraftReport{Attempts: 1, FallbackSuccess: 1}, *report.Draft)
	assert.Zero(t, primary.calls)
	assert.Equal(t, 1, fallback.calls)

	failing := &fakeDraft{err: errors.New("crashed")}
	c = c.WithDraftConverter(convert.NewHybrid(primary, failing, quietLogger()))
	report, _, err = c.Convert(context.Background())
	assert.ErrorIs(t, err, ErrNoDraft)
	require.NotNil(t, report.Draft)
	assert.Equal(t, DraftReport{Attempts: 1, Failures: 1}, *report.Draft)

	report, _, err = c.WithDraftConverter(&fakeDraft{lines: draftLines()}).Convert(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report.Draft)
}

func TestConvert_PassesCanBeDisabled(t *testing.T) {
	src := newFakeSource(t)
	c, _, _ := newTestConverter(t, src, &fakeDraft{lines: draftLines()})

	report, _, err := c.WithoutTables().WithoutImages().WithoutHeaders().Convert(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.TablesFound)
	assert.Zero(t, report.ImagesFound)
	assert.Zero(t, report.Headers)

	doc, err := docx.Open(report.Output)
	require.NoError(t, err)
	assert.Zero(t, doc.TableCount())
	assert.Zero(t, doc.PictureCount())
	assert.False(t, doc.Sections()[0].HasOwnHeader())
}

func TestConvert_ImageFailureIsWarning(t *testing.T) {
	src := newFakeSource(t)
	src.images[1] = []model.ImageBlock{{BBox: model.NewBBox(72, 300, 72, 72), XRef: 42}}
	c, _, _ := newTestConverter(t, src, &fakeDraft{lines: draftLines()})

	report, warnings, err := c.Convert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ImagesInserted)
	assert.Equal(t, 1, report.ImagesFailed)
	require.Len(t, warnings, 1)
	assert.Equal(t, StageImages, warnings[0].Stage)
	assert.Equal(t, 1, warnings[0].Page)
}

func TestConvert_SourceUnreadable(t *testing.T) {
	draft := &fakeDraft{}
	c, _, scratch := newTestConverter(t, newFakeSource(t), draft)
	c.open = func(string, *slog.Logger, *tables.Finder) (source, error) { return nil, errors.New("not a PDF") }

	report, _, err := c.Convert(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnreadable)
	require.NotNil(t, report)
	assert.Zero(t, draft.calls)

	entries, _ := os.ReadDir(scratch)
	assert.Empty(t, entries)
}

func TestConvert_ConverterUnavailable(t *testing.T) {
	src := newFakeSource(t)
	draft := &fakeDraft{avail: ErrConverterUnavailable}
	c, outDir, _ := newTestConverter(t, src, draft)

	_, _, err := c.Convert(context.Background())
	assert.ErrorIs(t, err, ErrConverterUnavailable)
	assert.True(t, src.closed)
	assert.Zero(t, draft.calls)
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvert_UnknownDraftKind(t *testing.T) {
	c, _, _ := newTestConverter(t, newFakeSource(t), &fakeDraft{})
	_, _, err := c.DraftKind("pandoc").Convert(context.Background())
	assert.ErrorIs(t, err, ErrConverterUnavailable)
}

func TestConvert_DraftFails(t *testing.T) {
	c, _, _ := newTestConverter(t, newFakeSource(t), &fakeDraft{err: errors.New("crashed")})
	_, _, err := c.Convert(context.Background())
	assert.ErrorIs(t, err, ErrNoDraft)
	assert.Contains(t, err.Error(), "crashed")
}

func TestConvert_DraftNotDocx(t *testing.T) {
	c, _, _ := newTestConverter(t, newFakeSource(t), &fakeDraft{raw: []byte("%PDF-1.4\n")})
	_, _, err := c.Convert(context.Background())
	assert.ErrorIs(t, err, ErrNoDraft)
	assert.Contains(t, err.Error(), "not DOCX")
}

func TestConvert_SaveFails(t *testing.T) {
	c, _, _ := newTestConverter(t, newFakeSource(t), &fakeDraft{lines: draftLines()})
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, _, err := c.OutputDir(blocker).Convert(context.Background())
	assert.ErrorIs(t, err, ErrSaveFailed)
}

func TestConvert_Upload(t *testing.T) {
	store := &memStore{}
	c, _, _ := newTestConverter(t, newFakeSource(t), &fakeDraft{lines: draftLines()})

	report, warnings, err := c.Upload(store, "reports", "pdfword").Convert(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, store.keys, 1)
	assert.Equal(t, "pdfword/"+report.RunID+"/sample_converted.docx", store.keys[0])
	assert.Equal(t, "mem://reports/"+store.keys[0], report.UploadLocation)

	_, err = docx.OpenBytes(store.data)
	assert.NoError(t, err)
}

func TestConvert_UploadFailureIsWarning(t *testing.T) {
	store := &memStore{err: errors.New("access denied")}
	c, _, _ := newTestConverter(t, newFakeSource(t), &fakeDraft{lines: draftLines()})

	report, warnings, err := c.Upload(store, "reports", "").Convert(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.Output)
	assert.Empty(t, report.UploadLocation)
	require.Len(t, warnings, 1)
	assert.Equal(t, StageUpload, warnings[0].Stage)
	assert.Equal(t, 1, report.Warnings)
}

func TestConverter_ChainingDoesNotMutate(t *testing.T) {
	base := Open("a.pdf")
	derived := base.WithoutTables().Suffix("_v2")
	assert.True(t, base.options.tables)
	assert.Equal(t, DefaultSuffix, base.options.suffix)
	assert.False(t, derived.options.tables)
	assert.Equal(t, "_v2", derived.options.suffix)
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		input, suffix, want string
	}{
		{"/tmp/report.pdf", "_converted", "report_converted.docx"},
		{"scan.PDF", "", "scan.docx"},
		{"archive.v2.pdf", "_x", "archive.v2_x.docx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputName(tt.input, tt.suffix))
	}
}

func TestFormatWarnings(t *testing.T) {
	ws := []Warning{
		{Stage: "extract", Page: 2, Message: "page skipped", Err: errors.New("bad stream")},
		{Stage: StageUpload, Page: -1, Message: "upload failed"},
	}
	got := FormatWarnings(ws)
	assert.Equal(t, "extract: page 2: page skipped: bad stream\nupload: upload failed", got)
	assert.Empty(t, FormatWarnings(nil))
	assert.Equal(t, 1, strings.Count(got, "\n"))
}
