package docx

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/tsawler/pdfword/model"
)

// Paragraph is a handle on one w:p element.
type Paragraph struct {
	el *etree.Element
}

// Text returns the paragraph text, including text inside hyperlinks and
// tracked insertions.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	collectText(&sb, p.el)
	return sb.String()
}

func collectText(sb *strings.Builder, el *etree.Element) {
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "r":
			sb.WriteString((&Run{el: c}).Text())
		case "hyperlink", "ins", "smartTag", "fldSimple", "sdtContent", "customXml":
			collectText(sb, c)
		case "sdt":
			if content := c.SelectElement("w:sdtContent"); content != nil {
				collectText(sb, content)
			}
		}
	}
}

// Runs returns the direct runs of the paragraph.
func (p *Paragraph) Runs() []*Run {
	rs := p.el.SelectElements("w:r")
	out := make([]*Run, len(rs))
	for i, el := range rs {
		out[i] = &Run{el: el}
	}
	return out
}

// PrimaryRun returns the first run, adding an empty one when the paragraph
// has none.
func (p *Paragraph) PrimaryRun() *Run {
	if el := p.el.SelectElement("w:r"); el != nil {
		return &Run{el: el}
	}
	return p.AddRun("")
}

// AddRun appends a run. Tabs and newlines become w:tab and w:br.
func (p *Paragraph) AddRun(text string) *Run {
	r := p.el.CreateElement("w:r")
	run := &Run{el: r}
	run.appendText(text)
	return run
}

// AddField appends a simple field such as "PAGE" or "NUMPAGES". placeholder
// is the cached result shown until the field is updated.
func (p *Paragraph) AddField(instr, placeholder string) {
	f := p.el.CreateElement("w:fldSimple")
	f.CreateAttr("w:instr", " "+instr+" ")
	(&Run{el: f.CreateElement("w:r")}).appendText(placeholder)
}

// SetText replaces the paragraph content with a single run, keeping the
// paragraph properties.
func (p *Paragraph) SetText(text string) {
	for _, c := range p.el.ChildElements() {
		if c.Space == "w" && c.Tag == "pPr" {
			continue
		}
		p.el.RemoveChild(c)
	}
	if text != "" {
		p.AddRun(text)
	}
}

// SetSpacing sets space before and after in points and the line spacing as
// a multiple of single spacing.
func (p *Paragraph) SetSpacing(beforePt, afterPt, line float64) {
	sp := wchild(prop(p.el, "pPr"), "spacing", pPrOrder)
	sp.CreateAttr("w:before", strconv.Itoa(int(math.Round(beforePt*20))))
	sp.CreateAttr("w:after", strconv.Itoa(int(math.Round(afterPt*20))))
	if line > 0 {
		sp.CreateAttr("w:line", strconv.Itoa(int(math.Round(line*240))))
		sp.CreateAttr("w:lineRule", "auto")
	}
}

// Spacing reports the explicit paragraph spacing. ok is false when the
// paragraph has none.
func (p *Paragraph) Spacing() (beforePt, afterPt, line float64, ok bool) {
	ppr := p.el.SelectElement("w:pPr")
	if ppr == nil {
		return 0, 0, 0, false
	}
	sp := ppr.SelectElement("w:spacing")
	if sp == nil {
		return 0, 0, 0, false
	}
	if v, ok := attrInt(sp, "w:before"); ok {
		beforePt = float64(v) / 20
	}
	if v, ok := attrInt(sp, "w:after"); ok {
		afterPt = float64(v) / 20
	}
	if v, ok := attrInt(sp, "w:line"); ok && sp.SelectAttrValue("w:lineRule", "auto") == "auto" {
		line = float64(v) / 240
	}
	return beforePt, afterPt, line, true
}

// Run is a handle on one w:r element.
type Run struct {
	el *etree.Element
}

// Text returns the run text.
func (r *Run) Text() string {
	var sb strings.Builder
	for _, c := range r.el.ChildElements() {
		switch c.Tag {
		case "t":
			sb.WriteString(c.Text())
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (r *Run) appendText(text string) {
	for i, seg := range strings.Split(text, "\n") {
		if i > 0 {
			r.el.CreateElement("w:br")
		}
		for j, part := range strings.Split(seg, "\t") {
			if j > 0 {
				r.el.CreateElement("w:tab")
			}
			if part == "" {
				continue
			}
			t := r.el.CreateElement("w:t")
			if strings.TrimSpace(part) != part {
				t.CreateAttr("xml:space", "preserve")
			}
			t.SetText(part)
		}
	}
}

func (r *Run) rPr() *etree.Element {
	return prop(r.el, "rPr")
}

// SetFont sets the font family for every script slot.
func (r *Run) SetFont(name string) {
	f := wchild(r.rPr(), "rFonts", rPrOrder)
	for _, k := range []string{"w:ascii", "w:hAnsi", "w:eastAsia", "w:cs"} {
		f.CreateAttr(k, name)
	}
}

// Font returns the explicit ASCII font, or "".
func (r *Run) Font() string {
	if f := r.el.FindElement("w:rPr/w:rFonts"); f != nil {
		return f.SelectAttrValue("w:ascii", "")
	}
	return ""
}

// SetSize sets the font size in points.
func (r *Run) SetSize(pt float64) {
	half := strconv.Itoa(int(math.Round(pt * 2)))
	rpr := r.rPr()
	setVal(wchild(rpr, "sz", rPrOrder), half)
	setVal(wchild(rpr, "szCs", rPrOrder), half)
}

// Size returns the explicit font size in points.
func (r *Run) Size() (float64, bool) {
	v, ok := attrInt(r.el.FindElement("w:rPr/w:sz"), "w:val")
	return float64(v) / 2, ok
}

// SetColor sets an explicit RGB text colour.
func (r *Run) SetColor(c model.Color) {
	setVal(wchild(r.rPr(), "color", rPrOrder), c.Hex())
}

// Color returns the explicit text colour. "auto" reports ok=false.
func (r *Run) Color() (model.Color, bool) {
	el := r.el.FindElement("w:rPr/w:color")
	if el == nil {
		return model.Color{}, false
	}
	v, err := strconv.ParseUint(el.SelectAttrValue("w:val", ""), 16, 32)
	if err != nil {
		return model.Color{}, false
	}
	return model.ColorFromInt(int(v)), true
}

// SetBold turns bold on or off explicitly.
func (r *Run) SetBold(on bool) { r.setToggle("b", on) }

// SetItalic turns italic on or off explicitly.
func (r *Run) SetItalic(on bool) { r.setToggle("i", on) }

// Bold reports explicit bold formatting.
func (r *Run) Bold() bool { return onOff(r.el.FindElement("w:rPr/w:b")) }

// Italic reports explicit italic formatting.
func (r *Run) Italic() bool { return onOff(r.el.FindElement("w:rPr/w:i")) }

func (r *Run) setToggle(tag string, on bool) {
	el := wchild(r.rPr(), tag, rPrOrder)
	if on {
		el.RemoveAttr("w:val")
		return
	}
	setVal(el, "0")
}
