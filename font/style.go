package font

import (
	"strings"
	"unicode"

	"github.com/tsawler/pdfword/model"
)

var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demibold", "extrabold", "ultrabold"}
var italicMarkers = []string{"italic", "oblique", "slanted", "inclined"}

// StyleFlags derives the bold and italic flags for a font from its base
// name, descriptor flags, weight and italic angle.
func StyleFlags(baseFont string, descFlags int, weight, italicAngle float64) model.Flags {
	var f model.Flags
	style := strings.ToLower(styleSuffix(StripSubset(baseFont)))
	lower := strings.ToLower(StripSubset(baseFont))

	for _, m := range boldMarkers {
		if strings.Contains(style, m) || strings.HasSuffix(lower, m) {
			f |= model.FlagBold
			break
		}
	}
	if descFlags&DescForceBold != 0 || weight >= 600 {
		f |= model.FlagBold
	}

	for _, m := range italicMarkers {
		if strings.Contains(style, m) || strings.HasSuffix(lower, m) {
			f |= model.FlagItalic
			break
		}
	}
	if descFlags&DescItalic != 0 || italicAngle != 0 {
		f |= model.FlagItalic
	}
	return f
}

// FamilyName reduces a PDF base font name to the family name a word processor
// understands: "ABCDEF+Arial-BoldMT" becomes "Arial", "TimesNewRomanPS-ItalicMT"
// becomes "Times New Roman". Names without an alias are split at CamelCase
// boundaries, so "SourceSansPro" becomes "Source Sans Pro" and "MSMincho"
// becomes "MS Mincho".
func FamilyName(baseFont string) string {
	name := StripSubset(baseFont)
	if i := strings.IndexAny(name, "-,"); i > 0 {
		name = name[:i]
	}
	for _, suffix := range []string{"PSMT", "MT", "PS"} {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	if alias, ok := familyAliases[name]; ok {
		return alias
	}
	return splitCamel(name)
}

// compoundWords are mixed-case family words that are never split.
// Longer entries come first.
var compoundWords = []string{"PMingLiU", "NSimSun", "MingLiU", "JhengHei", "FangSong", "DejaVu", "SimSun", "SimHei", "YaHei", "KaiTi"}

func splitCamel(name string) string {
	rs := []rune(name)
	var sb strings.Builder
	for i := 0; i < len(rs); {
		if w := compoundAt(rs, i); w != "" {
			if i > 0 && unicode.IsLetter(rs[i-1]) {
				sb.WriteByte(' ')
			}
			sb.WriteString(w)
			i += len(w)
			continue
		}
		if wordStart(rs, i) {
			sb.WriteByte(' ')
		}
		sb.WriteRune(rs[i])
		i++
	}
	return sb.String()
}

func compoundAt(rs []rune, i int) string {
	for _, w := range compoundWords {
		if strings.HasPrefix(string(rs[i:]), w) {
			return w
		}
	}
	return ""
}

// wordStart reports whether rs[i] begins a new word: an upper-case letter
// after a lower-case one, or the last capital of a run followed by lower
// case ("MSMincho" splits before the second M). All-caps runs stay whole.
func wordStart(rs []rune, i int) bool {
	if i == 0 || !unicode.IsUpper(rs[i]) {
		return false
	}
	prev := rs[i-1]
	if unicode.IsLower(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1])
}

var familyAliases = map[string]string{
	"TimesNewRoman":    "Times New Roman",
	"Times":            "Times New Roman",
	"CourierNew":       "Courier New",
	"Courier":          "Courier New",
	"Helvetica":        "Arial",
	"ArialNarrow":      "Arial Narrow",
	"ArialUnicode":     "Arial Unicode MS",
	"SegoeUI":          "Segoe UI",
	"ComicSansMS":      "Comic Sans MS",
	"TrebuchetMS":      "Trebuchet MS",
	"BookAntiqua":      "Book Antiqua",
	"CenturyGothic":    "Century Gothic",
	"MicrosoftYaHei":   "Microsoft YaHei",
	"PalatinoLinotype": "Palatino Linotype",
}

func styleSuffix(name string) string {
	if i := strings.IndexAny(name, "-,"); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// standardWidth returns an approximate width for fonts without a /Widths
// array, which in practice means the standard 14 fonts.
func standardWidth(name string, code int) float64 {
	if strings.HasPrefix(name, "Courier") {
		return 600
	}
	if code >= 32 && code < 32+len(helveticaWidths) {
		return helveticaWidths[code-32]
	}
	return 500
}

// Helvetica advance widths for codes 32..126.
var helveticaWidths = [...]float64{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // space ... slash
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, // 0-9
	278, 278, 584, 584, 584, 556, 1015, // : ; < = > ? @
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, // A-M
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, // N-Z
	278, 278, 278, 469, 556, 333, // [ \ ] ^ _ `
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, // a-m
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, // n-z
	334, 260, 334, 584, // { | } ~
}
