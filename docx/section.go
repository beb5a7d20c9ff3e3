package docx

import (
	"fmt"
	"path"

	"github.com/beevik/etree"
)

// Section is a handle on one w:sectPr.
type Section struct {
	doc *Document
	el  *etree.Element
}

// Sections returns the document sections in order. A body without section
// properties gets one.
func (d *Document) Sections() []*Section {
	var out []*Section
	for _, p := range d.body.SelectElements("w:p") {
		if sp := p.FindElement("w:pPr/w:sectPr"); sp != nil {
			out = append(out, &Section{doc: d, el: sp})
		}
	}
	last := d.body.SelectElement("w:sectPr")
	if last == nil {
		last = d.body.CreateElement("w:sectPr")
	}
	return append(out, &Section{doc: d, el: last})
}

// Header returns the first paragraph of the default header, creating the
// header part when the section has none of its own.
func (s *Section) Header() (*Paragraph, error) {
	return s.part("headerReference", "header", relHeader, ctHeader, headerXML)
}

// Footer returns the first paragraph of the default footer, creating the
// footer part when the section has none of its own.
func (s *Section) Footer() (*Paragraph, error) {
	return s.part("footerReference", "footer", relFooter, ctFooter, footerXML)
}

// UnlinkHeaderFooter gives the section its own default header, footer or
// both, so edits no longer follow the previous section. Parts not asked for
// are left alone.
func (s *Section) UnlinkHeaderFooter(header, footer bool) error {
	if header {
		if _, err := s.Header(); err != nil {
			return err
		}
	}
	if footer {
		if _, err := s.Footer(); err != nil {
			return err
		}
	}
	return nil
}

// HasOwnHeader reports whether the section defines a default header.
func (s *Section) HasOwnHeader() bool {
	return s.reference("headerReference") != nil
}

// HasOwnFooter reports whether the section defines a default footer.
func (s *Section) HasOwnFooter() bool {
	return s.reference("footerReference") != nil
}

func (s *Section) reference(tag string) *etree.Element {
	for _, ref := range s.el.SelectElements("w:" + tag) {
		if ref.SelectAttrValue("w:type", "default") == "default" {
			return ref
		}
	}
	return nil
}

func (s *Section) part(refTag, base, relType, contentType, template string) (*Paragraph, error) {
	d := s.doc
	var name string
	if ref := s.reference(refTag); ref != nil {
		name = d.relTarget(ref.SelectAttrValue("r:id", ""))
	}
	if _, ok := d.byName[name]; name == "" || !ok {
		name = d.uniquePartName("word", base, ".xml")
		d.addPart(name, []byte(template))
		d.ensureOverride("/"+name, contentType)
		d.ensureNamespace("r", nsR)
		rid := d.relate(relType, path.Base(name))

		if old := s.reference(refTag); old != nil {
			s.el.RemoveChild(old)
		}
		ref := etree.NewElement("w:" + refTag)
		ref.CreateAttr("w:type", "default")
		ref.CreateAttr("r:id", rid)
		insertOrdered(s.el, ref, sectPrOrder)
	}

	doc, err := d.xmlPart(name)
	if err != nil {
		return nil, fmt.Errorf("%s part: %w", base, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%s part %s is empty", base, name)
	}
	p := root.SelectElement("w:p")
	if p == nil {
		p = root.CreateElement("w:p")
	}
	return &Paragraph{el: p}, nil
}
