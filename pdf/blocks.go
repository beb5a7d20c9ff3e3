package pdf

import (
	"math"
	"strings"
	"unicode"

	"github.com/tsawler/pdfword/model"
)

// Grouping thresholds, as fractions of the font size.
const (
	sameLineTolerance = 0.5  // baseline shift still on the same line
	spaceGapRatio     = 0.15 // horizontal gap that implies a word break
	blockGapRatio     = 1.5  // vertical gap, in line heights, that starts a block
)

// groupBlocks turns runs into blocks, lines and spans without reordering
// them: content-stream order is the reading order of the result.
func groupBlocks(runs []textRun) []model.TextBlock {
	var blocks []model.TextBlock
	var block *model.TextBlock
	var line *model.Line
	var prev *textRun

	flushLine := func() {
		if line != nil && len(line.Spans) > 0 {
			block.Lines = append(block.Lines, *line)
			block.BBox = block.BBox.Union(line.BBox)
		}
		line = nil
	}
	flushBlock := func() {
		flushLine()
		if block != nil && len(block.Lines) > 0 {
			blocks = append(blocks, *block)
		}
		block = nil
	}

	for i := range runs {
		r := &runs[i]
		switch {
		case prev == nil:
			block = &model.TextBlock{}
		case !sameLine(prev, r):
			flushLine()
			if startsBlock(prev, r) {
				flushBlock()
				block = &model.TextBlock{}
			}
		}
		if line == nil {
			line = &model.Line{}
		}
		appendRun(line, prev, r)
		prev = r
	}
	if block != nil {
		flushBlock()
	}

	return dropBlankSpans(blocks)
}

// dropBlankSpans removes whitespace-only spans and any line or block left
// empty by that.
func dropBlankSpans(blocks []model.TextBlock) []model.TextBlock {
	out := blocks[:0]
	for _, b := range blocks {
		lines := b.Lines[:0]
		for _, l := range b.Lines {
			spans := l.Spans[:0]
			for _, s := range l.Spans {
				if strings.TrimSpace(s.Text) != "" {
					spans = append(spans, s)
				}
			}
			if len(spans) > 0 {
				l.Spans = spans
				lines = append(lines, l)
			}
		}
		if len(lines) > 0 {
			b.Lines = lines
			out = append(out, b)
		}
	}
	return out
}

func sameLine(prev, r *textRun) bool {
	size := math.Max(math.Max(prev.size, r.size), 1)
	if math.Abs(prev.baseline-r.baseline) > sameLineTolerance*size {
		return false
	}
	// a jump back to the left margin on the same baseline is a new line of
	// another column or a rewritten line
	return r.bbox.Left() >= prev.bbox.Left()-size
}

func startsBlock(prev, r *textRun) bool {
	lineHeight := math.Max(math.Max(prev.size, r.size), 1)
	gap := prev.bbox.Bottom() - r.bbox.Top()
	if gap > blockGapRatio*lineHeight {
		return true
	}
	// moving up the page starts a new block
	return r.bbox.Bottom() > prev.bbox.Top()
}

func appendRun(line *model.Line, prev, r *textRun) {
	text := r.text
	if n := len(line.Spans); n > 0 && prev != nil {
		gap := r.bbox.Left() - prev.bbox.Right()
		last := line.Spans[n-1].Text
		if gap > spaceGapRatio*math.Max(r.size, 1) && !endsWithSpace(last) && !startsWithSpace(text) {
			text = " " + text
		}
		s := &line.Spans[n-1]
		if s.Font == r.font && s.Size == r.size && s.Color == r.color && s.Flags == r.flags {
			s.Text += text
			s.BBox = s.BBox.Union(r.bbox)
			line.BBox = line.BBox.Union(r.bbox)
			return
		}
	}
	line.Spans = append(line.Spans, model.Span{
		Text:  text,
		Font:  r.font,
		Size:  r.size,
		Color: r.color,
		Flags: r.flags,
		BBox:  r.bbox,
	})
	line.BBox = line.BBox.Union(r.bbox)
}

func endsWithSpace(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsSpace(rune(s[len(s)-1]))
}

func startsWithSpace(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsSpace(rune(s[0]))
}
