package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

// Schema order of property children. Word rejects some out-of-order
// properties, so new children are inserted at their schema position.
var (
	pPrOrder = []string{
		"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr", "widowControl",
		"numPr", "suppressLineNumbers", "pBdr", "shd", "tabs", "suppressAutoHyphens",
		"kinsoku", "wordWrap", "overflowPunct", "topLinePunct", "autoSpaceDE", "autoSpaceDN",
		"bidi", "adjustRightInd", "snapToGrid", "spacing", "ind", "contextualSpacing",
		"mirrorIndents", "suppressOverlap", "jc", "textDirection", "textAlignment",
		"textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr", "sectPr", "pPrChange",
	}
	rPrOrder = []string{
		"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike", "dstrike",
		"outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid", "vanish",
		"webHidden", "color", "spacing", "w", "kern", "position", "sz", "szCs", "highlight",
		"u", "effect", "bdr", "shd", "fitText", "vertAlign", "rtl", "cs", "em", "lang",
		"eastAsianLayout", "specVanish", "oMath",
	}
	tblPrOrder = []string{
		"tblStyle", "tblpPr", "tblOverlap", "bidiVisual", "tblStyleRowBandSize",
		"tblStyleColBandSize", "tblW", "jc", "tblCellSpacing", "tblInd", "tblBorders", "shd",
		"tblLayout", "tblCellMar", "tblLook",
	}
	tcPrOrder = []string{
		"cnfStyle", "tcW", "gridSpan", "hMerge", "vMerge", "tcBorders", "shd", "noWrap",
		"tcMar", "textDirection", "tcFitText", "vAlign", "hideMark",
	}
	sectPrOrder = []string{
		"headerReference", "footerReference", "footnotePr", "endnotePr", "type", "pgSz",
		"pgMar", "paperSrc", "pgBorders", "lnNumType", "pgNumType", "cols", "formProt",
		"vAlign", "noEndnote", "titlePg", "textDirection", "bidi", "rtlGutter", "docGrid",
		"printerSettings", "sectPrChange",
	}
)

// wchild returns the w:tag child of parent, creating it at its schema
// position when missing.
func wchild(parent *etree.Element, tag string, order []string) *etree.Element {
	if el := parent.SelectElement("w:" + tag); el != nil {
		return el
	}
	el := etree.NewElement("w:" + tag)
	insertOrdered(parent, el, order)
	return el
}

// insertOrdered places el before the first sibling that sorts after it.
func insertOrdered(parent, el *etree.Element, order []string) {
	rank := indexOf(order, el.Tag)
	if rank >= 0 {
		for _, c := range parent.ChildElements() {
			if r := indexOf(order, c.Tag); r > rank {
				parent.InsertChildAt(c.Index(), el)
				return
			}
		}
	}
	parent.AddChild(el)
}

// prop returns the leading property element (w:pPr, w:rPr, ...) of el.
func prop(el *etree.Element, tag string) *etree.Element {
	if p := el.SelectElement("w:" + tag); p != nil {
		return p
	}
	p := etree.NewElement("w:" + tag)
	el.InsertChildAt(0, p)
	return p
}

func removeW(parent *etree.Element, tag string) {
	if parent == nil {
		return
	}
	for _, c := range parent.SelectElements("w:" + tag) {
		parent.RemoveChild(c)
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// onOff reads a toggle property: present without w:val, or with a true value.
func onOff(el *etree.Element) bool {
	if el == nil {
		return false
	}
	switch el.SelectAttrValue("w:val", "true") {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

func setVal(el *etree.Element, val string) {
	el.CreateAttr("w:val", val)
}

func attrInt(el *etree.Element, key string) (int, bool) {
	if el == nil {
		return 0, false
	}
	a := el.SelectAttr(key)
	if a == nil {
		return 0, false
	}
	n, err := strconv.Atoi(a.Value)
	if err != nil {
		return 0, false
	}
	return n, true
}
