package model

import (
	"fmt"
	"math"
)

// Color is an sRGB color with 8 bits per channel.
type Color struct {
	R, G, B uint8
}

// Black is the default fill color of a PDF graphics state.
var Black = Color{}

// ColorFromInt unpacks a 0xRRGGBB integer.
func ColorFromInt(v int) Color {
	return Color{R: uint8(v >> 16 & 0xFF), G: uint8(v >> 8 & 0xFF), B: uint8(v & 0xFF)}
}

// ColorFromFloats converts PDF color components in [0,1] to a Color.
// Values outside the range are clamped.
func ColorFromFloats(r, g, b float64) Color {
	return Color{R: channel(r), G: channel(g), B: channel(b)}
}

// ColorFromCMYK performs the naive CMYK → RGB conversion PDF viewers use for
// DeviceCMYK when no profile is available.
func ColorFromCMYK(c, m, y, k float64) Color {
	return ColorFromFloats((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

// Int packs the color as 0xRRGGBB.
func (c Color) Int() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// Hex returns the color as six uppercase hex digits, the form used by
// WordprocessingML w:color.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// Flags is the span style bitmask.
type Flags int

const (
	FlagItalic Flags = 1 << 0
	FlagBold   Flags = 1 << 1
)

// Italic reports whether bit 0 is set.
func (f Flags) Italic() bool { return f&FlagItalic != 0 }

// Bold reports whether bit 1 is set.
func (f Flags) Bold() bool { return f&FlagBold != 0 }

// Span is a maximal run of text sharing one font, size, color and flag set.
type Span struct {
	Text  string
	Font  string
	Size  float64
	Color Color
	Flags Flags
	BBox  BBox
}

// Line is a sequence of spans sharing a baseline.
type Line struct {
	Spans []Span
	BBox  BBox
}

// TextBlock groups consecutive lines. Blocks, lines and spans are kept in
// content-stream order.
type TextBlock struct {
	Lines []Line
	BBox  BBox
}

// Text returns the block text with lines separated by newlines.
func (b TextBlock) Text() string {
	var out []byte
	for i, line := range b.Lines {
		if i > 0 {
			out = append(out, '\n')
		}
		for _, s := range line.Spans {
			out = append(out, s.Text...)
		}
	}
	return string(out)
}

// StyleRecord is the immutable style summary of one span. Record order is
// page, then block, line and span order.
type StyleRecord struct {
	Page     int
	Text     string
	FontName string
	Size     float64
	Color    Color
	Flags    Flags
	BBox     BBox
}

// NewStyleRecord builds a record from a span on the given page.
func NewStyleRecord(page int, s Span) StyleRecord {
	return StyleRecord{
		Page:     page,
		Text:     s.Text,
		FontName: s.Font,
		Size:     s.Size,
		Color:    s.Color,
		Flags:    s.Flags,
		BBox:     s.BBox,
	}
}
