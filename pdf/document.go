package pdf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/pdfword/font"
	"github.com/tsawler/pdfword/model"
	"github.com/tsawler/pdfword/tables"
)

var (
	// ErrUnreadable is returned when a file cannot be parsed as a PDF.
	ErrUnreadable = errors.New("pdf: unreadable document")

	// ErrClosed is returned by reads after Close.
	ErrClosed = errors.New("pdf: document is closed")
)

var configOnce sync.Once

// Document is an open PDF. It is not safe for concurrent use.
type Document struct {
	ctx    *pdfmodel.Context
	file   *os.File
	logger *slog.Logger

	fonts  map[int]*font.Font
	pages  map[int]*pageContent
	finder *tables.Finder
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for recoverable problems.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTableFinder replaces the default table finder.
func WithTableFinder(f *tables.Finder) Option {
	return func(d *Document) {
		if f != nil {
			d.finder = f
		}
	}
}

// Open opens and parses the PDF at path.
func Open(path string, opts ...Option) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	d, err := newDocument(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.file = f
	return d, nil
}

// OpenReader parses a PDF from rs. The reader is not closed by Close.
func OpenReader(rs io.ReadSeeker, opts ...Option) (*Document, error) {
	return newDocument(rs, opts...)
}

func newDocument(rs io.ReadSeeker, opts ...Option) (*Document, error) {
	configOnce.Do(api.DisableConfigDir)

	d := &Document{
		logger: slog.Default(),
		fonts:  make(map[int]*font.Font),
		pages:  make(map[int]*pageContent),
		finder: tables.NewFinder(tables.DefaultFinderOptions()),
	}
	for _, opt := range opts {
		opt(d)
	}

	conf := pdfmodel.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		d.logger.Debug("strict read failed, retrying relaxed", "error", err)
		if _, serr := rs.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		conf = pdfmodel.NewDefaultConfiguration()
		conf.ValidationMode = pdfmodel.ValidationRelaxed
		ctx, err = api.ReadContext(rs, conf)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		if err := ctx.EnsurePageCount(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
	}
	d.ctx = ctx
	return d, nil
}

// Close releases the underlying file. Later reads return ErrClosed.
func (d *Document) Close() error {
	d.ctx = nil
	d.pages = nil
	d.fonts = nil
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}

// PageCount returns the number of pages, or 0 once closed.
func (d *Document) PageCount() int {
	if d.ctx == nil {
		return 0
	}
	return d.ctx.PageCount
}

// PageBox returns the media box of the 0-based page.
func (d *Document) PageBox(page int) (model.BBox, error) {
	pc, err := d.page(page)
	if err != nil {
		return model.BBox{}, err
	}
	return pc.box, nil
}

// TextBlocks returns the text of a 0-based page grouped into blocks, lines
// and spans, in content-stream order.
func (d *Document) TextBlocks(page int) ([]model.TextBlock, error) {
	pc, err := d.page(page)
	if err != nil {
		return nil, err
	}
	return pc.blocks, nil
}

// ImageBlocks returns the image placements of a 0-based page.
func (d *Document) ImageBlocks(page int) ([]model.ImageBlock, error) {
	pc, err := d.page(page)
	if err != nil {
		return nil, err
	}
	return pc.images, nil
}

// Rulings returns the horizontal and vertical line segments painted on a
// 0-based page.
func (d *Document) Rulings(page int) ([]model.Segment, error) {
	pc, err := d.page(page)
	if err != nil {
		return nil, err
	}
	return pc.rulings, nil
}

// FindTables runs the table finder over a 0-based page.
func (d *Document) FindTables(page int) ([]model.TableGrid, error) {
	pc, err := d.page(page)
	if err != nil {
		return nil, err
	}
	var spans []model.Span
	for _, b := range pc.blocks {
		for _, l := range b.Lines {
			spans = append(spans, l.Spans...)
		}
	}
	return d.finder.Find(pc.rulings, spans, pc.box), nil
}

// pageContent is the interpreted content of one page.
type pageContent struct {
	box     model.BBox
	blocks  []model.TextBlock
	images  []model.ImageBlock
	rulings []model.Segment
}

func (d *Document) page(index int) (pc *pageContent, err error) {
	if d.ctx == nil {
		return nil, ErrClosed
	}
	if index < 0 || index >= d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, d.ctx.PageCount)
	}
	if pc, ok := d.pages[index]; ok {
		return pc, nil
	}
	defer func() {
		if r := recover(); r != nil {
			pc, err = nil, fmt.Errorf("page %d: malformed content: %v", index, r)
		}
	}()

	pageNr := index + 1
	pageDict, _, inh, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index, err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d: missing page dictionary", index)
	}

	res := d.dict(lookup(pageDict, "Resources"))
	if res == nil && inh != nil {
		res = inh.Resources
	}

	r, err := pdfcpu.ExtractPageContent(d.ctx, pageNr)
	if err != nil {
		return nil, fmt.Errorf("page %d: content: %w", index, err)
	}
	var content []byte
	if r != nil {
		if content, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("page %d: content: %w", index, err)
		}
	}

	in := newInterpreter(d, index)
	in.run(content, res, 0)

	pc = &pageContent{
		box:     d.mediaBox(pageDict, inh),
		blocks:  groupBlocks(in.runs),
		images:  in.images,
		rulings: in.rulings,
	}
	for _, w := range in.warnings {
		d.logger.Warn("page content problem", "page", index, "error", w)
	}
	d.pages[index] = pc
	return pc, nil
}

func (d *Document) mediaBox(pageDict types.Dict, inh *pdfmodel.InheritedPageAttrs) model.BBox {
	if mb := d.numbers(lookup(pageDict, "MediaBox")); len(mb) == 4 {
		return model.NewBBoxFromRect(mb[0], mb[1], mb[2], mb[3])
	}
	if inh != nil && inh.MediaBox != nil {
		r := inh.MediaBox
		return model.NewBBoxFromRect(r.LL.X, r.LL.Y, r.UR.X, r.UR.Y)
	}
	return model.NewBBox(0, 0, 612, 792)
}
