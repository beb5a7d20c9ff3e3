package font

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/pdfword/model"
)

// Descriptor flag bits (PDF 32000-1, table 123).
const (
	DescFixedPitch = 1 << 0
	DescSerif      = 1 << 1
	DescSymbolic   = 1 << 2
	DescItalic     = 1 << 6
	DescForceBold  = 1 << 18
)

// Spec is everything needed to build a Font. It is filled in by the PDF
// layer from a font dictionary.
type Spec struct {
	BaseFont string
	Subtype  string // Type1, TrueType, Type0, Type3, MMType1

	// Simple fonts.
	Encoding     *Encoding
	FirstChar    int
	Widths       []float64
	MissingWidth float64

	// Composite (Type0) fonts.
	CIDWidths    map[int]float64
	DefaultWidth float64
	TwoByte      bool

	ToUnicode *CMap

	DescriptorFlags int
	FontWeight      float64
	ItalicAngle     float64

	// FontMatrix scales glyph widths for Type3 fonts. Zero means the
	// standard 1/1000.
	FontMatrixScale float64
}

// Font decodes shown strings into text and glyph advances.
type Font struct {
	spec  Spec
	flags model.Flags
	name  string
}

// Glyph is one decoded character code.
type Glyph struct {
	Code  int
	Text  string
	Width float64 // glyph space units (thousandths of an em)
	Space bool    // single-byte code 32, which receives word spacing
}

// New builds a font from spec.
func New(spec Spec) *Font {
	if spec.Encoding == nil && spec.Subtype != "Type0" {
		spec.Encoding = NewEncoding(StandardEncoding)
	}
	if spec.DefaultWidth == 0 {
		spec.DefaultWidth = 1000
	}
	return &Font{
		spec:  spec,
		name:  StripSubset(spec.BaseFont),
		flags: StyleFlags(spec.BaseFont, spec.DescriptorFlags, spec.FontWeight, spec.ItalicAngle),
	}
}

// Name returns the base font name without subset prefix.
func (f *Font) Name() string { return f.name }

// Flags returns the style flags derived for the font.
func (f *Font) Flags() model.Flags { return f.flags }

// WidthScale converts glyph widths to text space.
func (f *Font) WidthScale() float64 {
	if f.spec.FontMatrixScale != 0 {
		return f.spec.FontMatrixScale * 1000
	}
	return 1
}

// Decode splits a shown string into glyphs.
func (f *Font) Decode(data []byte) []Glyph {
	var glyphs []Glyph
	for len(data) > 0 {
		n := f.codeLength(data)
		if n > len(data) {
			n = len(data)
		}
		c := int(code(data[:n]))
		glyphs = append(glyphs, Glyph{
			Code:  c,
			Text:  f.text(c, n),
			Width: f.width(c),
			Space: n == 1 && c == 32,
		})
		data = data[n:]
	}
	return glyphs
}

// Text decodes a shown string to Unicode text.
func (f *Font) Text(data []byte) string {
	var sb strings.Builder
	for _, g := range f.Decode(data) {
		sb.WriteString(g.Text)
	}
	return sb.String()
}

func (f *Font) codeLength(data []byte) int {
	if f.spec.ToUnicode != nil {
		if n := f.spec.ToUnicode.CodeLength(data); n > 0 && f.spec.Subtype == "Type0" {
			return n
		}
	}
	if f.spec.TwoByte {
		return 2
	}
	return 1
}

func (f *Font) text(c, n int) string {
	if f.spec.ToUnicode != nil {
		if s, ok := f.spec.ToUnicode.Lookup(uint32(c)); ok {
			return s
		}
	}
	if n == 1 && f.spec.Encoding != nil {
		if r, ok := f.spec.Encoding.Decode(byte(c)); ok {
			return string(r)
		}
		return ""
	}
	// Identity-encoded CID font without ToUnicode: the code is often the
	// Unicode value for fonts built from system fonts.
	if r := rune(c); utf8.ValidRune(r) && unicode.IsPrint(r) {
		return string(r)
	}
	return ""
}

func (f *Font) width(c int) float64 {
	if f.spec.Subtype == "Type0" {
		if w, ok := f.spec.CIDWidths[c]; ok {
			return w
		}
		return f.spec.DefaultWidth
	}
	if i := c - f.spec.FirstChar; i >= 0 && i < len(f.spec.Widths) {
		return f.spec.Widths[i]
	}
	if f.spec.MissingWidth > 0 {
		return f.spec.MissingWidth
	}
	return standardWidth(f.name, c)
}

// StripSubset removes the six-letter subset tag ("ABCDEF+") from a base font
// name.
func StripSubset(name string) string {
	if len(name) > 7 && name[6] == '+' {
		for i := 0; i < 6; i++ {
			if name[i] < 'A' || name[i] > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}
