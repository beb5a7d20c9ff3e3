// Package style copies span formatting recovered from a PDF onto the
// paragraphs of a draft document.
//
// Record i styles draft paragraph i. The pairing is positional: the draft
// converter and the PDF rarely agree on paragraph boundaries, so the
// returned [Stats] reports how many records and paragraphs were left
// unpaired.
package style

import (
	"fmt"
	"log/slog"

	"github.com/tsawler/pdfword/docx"
	"github.com/tsawler/pdfword/font"
	"github.com/tsawler/pdfword/model"
)

// Paragraph spacing written on every styled paragraph.
const (
	DefaultSpaceBefore = 12.0
	DefaultSpaceAfter  = 12.0
	DefaultLineSpacing = 1.15
)

// Stats summarises one Apply call.
type Stats struct {
	Records    int // style records offered
	Paragraphs int // draft paragraphs eligible for styling
	Applied    int
	Failed     int

	// DroppedRecords counts records with no paragraph to pair with.
	DroppedRecords int
	// UnstyledParagraphs counts paragraphs with no record to pair with.
	UnstyledParagraphs int
}

// Applier writes run and paragraph formatting.
type Applier struct {
	SpaceBefore float64
	SpaceAfter  float64
	LineSpacing float64
	Logger      *slog.Logger
}

// NewApplier returns an Applier with the default spacing.
func NewApplier(logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		SpaceBefore: DefaultSpaceBefore,
		SpaceAfter:  DefaultSpaceAfter,
		LineSpacing: DefaultLineSpacing,
		Logger:      logger,
	}
}

// Apply styles paragraphs with the default Applier.
func Apply(doc *docx.Document, records []model.StyleRecord, limit int, logger *slog.Logger) Stats {
	return NewApplier(logger).Apply(doc, records, limit)
}

// Apply pairs records[i] with paragraph i for i below both len(records) and
// limit. limit is the paragraph count of the draft before any content was
// appended to it, so tables and pictures added later are never styled.
// Failures are counted and logged; Apply never stops early.
func (a *Applier) Apply(doc *docx.Document, records []model.StyleRecord, limit int) Stats {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if limit < 0 {
		limit = 0
	}

	st := Stats{Records: len(records), Paragraphs: limit}
	n := min(len(records), limit)
	for i := 0; i < n; i++ {
		if err := a.applyOne(doc, i, records[i]); err != nil {
			st.Failed++
			logger.Warn("style not applied", "record", i, "page", records[i].Page, "error", err)
			continue
		}
		st.Applied++
	}
	st.DroppedRecords = len(records) - n
	st.UnstyledParagraphs = limit - n

	if st.DroppedRecords > 0 || st.UnstyledParagraphs > 0 {
		logger.Info("style pairing diverged",
			"records", st.Records,
			"paragraphs", st.Paragraphs,
			"dropped_records", st.DroppedRecords,
			"unstyled_paragraphs", st.UnstyledParagraphs)
	}
	return st
}

func (a *Applier) applyOne(doc *docx.Document, i int, rec model.StyleRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("paragraph %d: %v", i, r)
		}
	}()

	p, err := doc.Paragraph(i)
	if err != nil {
		return err
	}
	run := p.PrimaryRun()
	if family := font.FamilyName(rec.FontName); family != "" {
		run.SetFont(family)
	}
	if rec.Size > 0 {
		run.SetSize(rec.Size)
	}
	run.SetColor(rec.Color)
	run.SetBold(rec.Flags.Bold())
	run.SetItalic(rec.Flags.Italic())
	p.SetSpacing(a.SpaceBefore, a.SpaceAfter, a.LineSpacing)
	return nil
}
