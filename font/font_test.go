package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfword/model"
)

const toUnicode = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <0020>
<0024> <0041>
endbfchar
2 beginbfrange
<0044> <0046> <0061>
<0050> <0051> [<00660069> <0058>]
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end`

func TestParseCMap(t *testing.T) {
	cm, err := ParseCMap([]byte(toUnicode))
	require.NoError(t, err)

	tests := []struct {
		code uint32
		want string
		ok   bool
	}{
		{0x0003, " ", true},
		{0x0024, "A", true},
		{0x0044, "a", true},
		{0x0046, "c", true},
		{0x0050, "fi", true},
		{0x0051, "X", true},
		{0x0047, "", false},
	}
	for _, tt := range tests {
		got, ok := cm.Lookup(tt.code)
		assert.Equal(t, tt.ok, ok, "code %04X", tt.code)
		assert.Equal(t, tt.want, got, "code %04X", tt.code)
	}
	assert.Equal(t, 2, cm.CodeLength([]byte{0x00, 0x24}))
}

func TestParseCMapEmpty(t *testing.T) {
	_, err := ParseCMap([]byte("begincmap endcmap"))
	assert.Error(t, err)
}

func TestType0Decode(t *testing.T) {
	cm, err := ParseCMap([]byte(toUnicode))
	require.NoError(t, err)
	f := New(Spec{
		BaseFont:  "ABCDEF+Calibri-Bold",
		Subtype:   "Type0",
		TwoByte:   true,
		ToUnicode: cm,
		CIDWidths: map[int]float64{0x24: 579},
	})

	glyphs := f.Decode([]byte{0x00, 0x24, 0x00, 0x03, 0x00, 0x44})
	require.Len(t, glyphs, 3)
	assert.Equal(t, "A a", f.Text([]byte{0x00, 0x24, 0x00, 0x03, 0x00, 0x44}))
	assert.Equal(t, 579.0, glyphs[0].Width)
	assert.Equal(t, 1000.0, glyphs[1].Width)
	assert.False(t, glyphs[1].Space, "two-byte codes never get word spacing")
	assert.Equal(t, "Calibri-Bold", f.Name())
	assert.True(t, f.Flags().Bold())
}

func TestSimpleFontDecode(t *testing.T) {
	f := New(Spec{
		BaseFont:  "Helvetica",
		Subtype:   "Type1",
		Encoding:  NewEncoding(WinAnsiEncoding),
		FirstChar: 32,
		Widths:    []float64{278, 278},
	})
	glyphs := f.Decode([]byte(" !\x93"))
	require.Len(t, glyphs, 3)
	assert.True(t, glyphs[0].Space)
	assert.Equal(t, 278.0, glyphs[1].Width)
	assert.Equal(t, "“", glyphs[2].Text)
	assert.Equal(t, 500.0, glyphs[2].Width, "code past /Widths falls back to standard widths")
}

func TestEncodingDifferences(t *testing.T) {
	e := NewEncoding(WinAnsiEncoding)
	e.ApplyDifferences([]int{65, 200}, [][]string{{"B", "uni00E9"}, {"fi", "g123"}})

	r, ok := e.Decode(65)
	assert.True(t, ok)
	assert.Equal(t, 'B', r)
	r, _ = e.Decode(66)
	assert.Equal(t, 'é', r)
	r, _ = e.Decode(200)
	assert.Equal(t, 'ﬁ', r)
	// unknown glyph name keeps the base encoding entry
	r, _ = e.Decode(201)
	assert.Equal(t, 'É', r)
}

func TestMacRomanEncoding(t *testing.T) {
	e := NewEncoding(MacRomanEncoding)
	r, ok := e.Decode(0x8E)
	assert.True(t, ok)
	assert.Equal(t, 'é', r)
}

func TestStyleFlags(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		desc   int
		weight float64
		angle  float64
		want   model.Flags
	}{
		{"regular", "Helvetica", 0, 0, 0, 0},
		{"bold suffix", "Helvetica-Bold", 0, 0, 0, model.FlagBold},
		{"oblique", "Helvetica-Oblique", 0, 0, 0, model.FlagItalic},
		{"bold italic MT", "ABCDEF+TimesNewRomanPS-BoldItalicMT", 0, 0, 0, model.FlagBold | model.FlagItalic},
		{"comma style", "Arial,Bold", 0, 0, 0, model.FlagBold},
		{"descriptor italic", "Foo", DescItalic, 0, 0, model.FlagItalic},
		{"force bold", "Foo", DescForceBold, 0, 0, model.FlagBold},
		{"weight", "Foo", 0, 700, 0, model.FlagBold},
		{"italic angle", "Foo", 0, 400, -12, model.FlagItalic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StyleFlags(tt.base, tt.desc, tt.weight, tt.angle))
		})
	}
}

func TestFamilyName(t *testing.T) {
	tests := map[string]string{
		"ABCDEF+Arial-BoldMT":      "Arial",
		"ArialMT":                  "Arial",
		"TimesNewRomanPS-ItalicMT": "Times New Roman",
		"TimesNewRomanPSMT":        "Times New Roman",
		"Times-Roman":              "Times New Roman",
		"Helvetica-Bold":           "Arial",
		"Calibri":                  "Calibri",
		"Abcdef+Calibri":           "Abcdef+Calibri",
		"SourceSansPro-Regular":    "Source Sans Pro",
		"XYZABC+LucidaGrande":      "Lucida Grande",
		"MSMincho":                 "MS Mincho",
		"PMingLiU":                 "PMingLiU",
		"SimSun":                   "SimSun",
		"DejaVuSansMono-Bold":      "DejaVu Sans Mono",
		"MicrosoftJhengHei":        "Microsoft JhengHei",
		"OCRB":                     "OCRB",
		"Arial Black":              "Arial Black",
	}
	for in, want := range tests {
		assert.Equal(t, want, FamilyName(in), in)
	}
}

func TestStripSubset(t *testing.T) {
	assert.Equal(t, "Arial", StripSubset("QWERTY+Arial"))
	assert.Equal(t, "Arial", StripSubset("Arial"))
	assert.Equal(t, "qwerty+Arial", StripSubset("qwerty+Arial"))
}
