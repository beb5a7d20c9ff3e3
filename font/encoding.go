package font

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding maps single-byte character codes to runes for simple fonts.
type Encoding [256]rune

// Base encoding names accepted in a font's /Encoding entry.
const (
	WinAnsiEncoding   = "WinAnsiEncoding"
	MacRomanEncoding  = "MacRomanEncoding"
	StandardEncoding  = "StandardEncoding"
	PDFDocEncoding    = "PDFDocEncoding"
	MacExpertEncoding = "MacExpertEncoding"
)

// NewEncoding returns the named base encoding. Unknown names yield
// StandardEncoding, the PDF default for non-symbolic Type 1 fonts.
func NewEncoding(name string) *Encoding {
	var e Encoding
	var cm *charmap.Charmap
	switch name {
	case MacRomanEncoding:
		cm = charmap.Macintosh
	default:
		cm = charmap.Windows1252
	}
	for i := range e {
		e[i] = cm.DecodeByte(byte(i))
	}
	if name == StandardEncoding || name == "" {
		// StandardEncoding differs from WinAnsi for the quote glyphs
		e['\''] = '’'
		e['`'] = '‘'
	}
	for i := 0; i < 32; i++ {
		e[i] = 0
	}
	return &e
}

// ApplyDifferences overrides codes from a /Differences array, given as
// alternating start codes and runs of glyph names.
func (e *Encoding) ApplyDifferences(codes []int, names [][]string) {
	for i, start := range codes {
		if i >= len(names) {
			break
		}
		for j, n := range names[i] {
			c := start + j
			if c < 0 || c > 255 {
				continue
			}
			if r, ok := glyphRune(n); ok {
				e[c] = r
			}
		}
	}
}

// Decode returns the rune for code, or false when the code is unmapped.
func (e *Encoding) Decode(code byte) (rune, bool) {
	r := e[code]
	return r, r != 0 && r != utf8.RuneError
}

// glyphRune resolves an Adobe glyph name. Besides the common names listed in
// glyphNames it understands uniXXXX, uXXXX[XX] and single-character names.
func glyphRune(name string) (rune, bool) {
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
		if r, ok := glyphNames[name]; ok {
			return r, true
		}
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return r, true
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	return 0, false
}

var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "asciicircum": '^',
	"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|',
	"braceright": '}', "asciitilde": '~',
	"quoteleft": '‘', "quoteright": '’', "quotedblleft": '“',
	"quotedblright": '”', "quotesinglbase": '‚', "quotedblbase": '„',
	"endash": '–', "emdash": '—', "bullet": '•', "ellipsis": '…',
	"dagger": '†', "daggerdbl": '‡', "perthousand": '‰',
	"trademark": '™', "copyright": '©', "registered": '®',
	"degree": '°', "section": '§', "paragraph": '¶',
	"fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ', "ffi": 'ﬃ', "ffl": 'ﬄ',
	"minus": '−', "multiply": '×', "divide": '÷',
	"Euro": '€', "sterling": '£', "yen": '¥', "cent": '¢',
	"nbspace": ' ', "nonbreakingspace": ' ',
	"germandbls": 'ß', "eacute": 'é', "egrave": 'è',
	"ecircumflex": 'ê', "aacute": 'á', "agrave": 'à',
	"adieresis": 'ä', "odieresis": 'ö', "udieresis": 'ü',
	"Adieresis": 'Ä', "Odieresis": 'Ö', "Udieresis": 'Ü',
	"ccedilla": 'ç', "ntilde": 'ñ', "oslash": 'ø',
	"guillemotleft": '«', "guillemotright": '»',
	"periodcentered": '·', "middot": '·',
}
