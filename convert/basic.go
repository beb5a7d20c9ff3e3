package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tsawler/pdfword/docx"
	"github.com/tsawler/pdfword/model"
)

// TextSource is the part of a parsed PDF the basic converter reads.
type TextSource interface {
	PageCount() int
	TextBlocks(page int) ([]model.TextBlock, error)
}

// Basic writes one paragraph per text line of the PDF. The draft carries no
// formatting; the style pass supplies it.
type Basic struct {
	Source TextSource
	Logger *slog.Logger
}

// NewBasic creates a basic converter reading from src.
func NewBasic(src TextSource, logger *slog.Logger) *Basic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Basic{Source: src, Logger: logger}
}

// Name implements DraftConverter.
func (b *Basic) Name() string { return KindBasic }

// Available implements DraftConverter.
func (b *Basic) Available(context.Context) error {
	if b == nil || b.Source == nil {
		return fmt.Errorf("basic converter has no source: %w", ErrConverterUnavailable)
	}
	return nil
}

// Convert implements DraftConverter. Pages whose text cannot be read are
// skipped; a PDF with no text at all is an error.
func (b *Basic) Convert(ctx context.Context, pdfPath, outDir string) (string, error) {
	if err := b.Available(ctx); err != nil {
		return "", err
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc := docx.New()
	lines := 0
	for page := 0; page < b.Source.PageCount(); page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		blocks, err := b.Source.TextBlocks(page)
		if err != nil {
			logger.Warn("basic draft skipped page", "page", page, "error", err)
			continue
		}
		for _, block := range blocks {
			for _, l := range block.Lines {
				var sb strings.Builder
				for _, s := range l.Spans {
					sb.WriteString(s.Text)
				}
				text := strings.TrimRight(sb.String(), " ")
				if strings.TrimSpace(text) == "" {
					continue
				}
				doc.AddParagraph(text)
				lines++
			}
		}
	}
	if lines == 0 {
		return "", errors.New("no text could be extracted from the PDF")
	}

	out := filepath.Join(outDir, draftName(pdfPath))
	if err := doc.Save(out); err != nil {
		return "", fmt.Errorf("saving basic draft: %w", err)
	}
	logger.Info("basic draft written", "output", out, "paragraphs", lines)
	return out, nil
}
