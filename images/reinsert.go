// Package images copies the pictures of a PDF into the reconstructed
// document, sized as they were placed on the page.
package images

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsawler/pdfword/docx"
	"github.com/tsawler/pdfword/model"
)

// PointsPerInch converts PDF user space units to inches.
const PointsPerInch = 72.0

// ErrDegenerate is returned for a placement with no area.
var ErrDegenerate = errors.New("image placement has no area")

// Source resolves an image reference to its bytes.
type Source interface {
	ExtractImage(xref int) (*model.ImageData, error)
}

// AltTexter describes an image, typically by running OCR over it.
type AltTexter interface {
	AltText(data []byte) (string, error)
}

// Failure records one image that could not be inserted.
type Failure struct {
	Record int
	XRef   int
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("image %d (xref %d): %v", f.Record, f.XRef, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Stats summarises one Insert call.
type Stats struct {
	Records  int
	Inserted int
	Failures []Failure
}

// Reinserter appends pictures to a document. Image bytes are staged as
// files in Dir.
type Reinserter struct {
	Dir    *TempDir
	Alt    AltTexter // optional
	Logger *slog.Logger
}

// NewReinserter creates a Reinserter staging files in dir.
func NewReinserter(dir *TempDir, logger *slog.Logger) *Reinserter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reinserter{Dir: dir, Logger: logger}
}

// Insert appends one picture per record, in record order. A record whose
// image cannot be fetched, staged or inserted is logged and skipped.
func (r *Reinserter) Insert(doc *docx.Document, src Source, records []model.ImageRecord) Stats {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st := Stats{Records: len(records)}
	cache := make(map[int]staged)
	for i, rec := range records {
		if err := r.insertOne(doc, src, rec, cache); err != nil {
			st.Failures = append(st.Failures, Failure{Record: i, XRef: rec.SourceRef, Err: err})
			logger.Warn("image not inserted", "record", i, "xref", rec.SourceRef, "page", rec.Page, "error", err)
			continue
		}
		st.Inserted++
	}
	return st
}

type staged struct {
	path string
	alt  string
}

func (r *Reinserter) insertOne(doc *docx.Document, src Source, rec model.ImageRecord, cache map[int]staged) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed image: %v", p)
		}
	}()

	w, h := rec.BBox.Width/PointsPerInch, rec.BBox.Height/PointsPerInch
	if !(w > 0) || !(h > 0) {
		return ErrDegenerate
	}

	s, ok := cache[rec.SourceRef]
	if !ok {
		img, err := src.ExtractImage(rec.SourceRef)
		if err != nil {
			return err
		}
		if img == nil || len(img.Data) == 0 {
			return errors.New("empty image data")
		}
		path, err := r.Dir.Write(fmt.Sprintf("image_%d.%s", rec.SourceRef, img.Format.Ext()), img.Data)
		if err != nil {
			return err
		}
		s = staged{path: path, alt: r.altText(img.Data, rec.SourceRef)}
		cache[rec.SourceRef] = s
	}

	_, err = doc.AddPicture(s.path, w, h, s.alt)
	return err
}

// altText never fails; a picture without a description is still inserted.
func (r *Reinserter) altText(data []byte, xref int) string {
	if r.Alt == nil {
		return ""
	}
	alt, err := r.Alt.AltText(data)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Debug("no alt text", "xref", xref, "error", err)
		}
		return ""
	}
	return alt
}
