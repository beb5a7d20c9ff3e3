package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// Sentinel errors for element addressing.
var (
	ErrOutOfRange    = errors.New("docx: index out of range")
	ErrMergeConflict = errors.New("docx: merge overlaps an existing merged cell")
	ErrNotDocx       = errors.New("docx: not a word processing package")
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	nsRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsTypes = "http://schemas.openxmlformats.org/package/2006/content-types"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"

	ctHeader = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	ctFooter = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
)

// part is one zip entry. Parsed XML parts are serialised again on save; all
// other parts are written back unchanged.
type part struct {
	name string
	data []byte
	xml  *etree.Document
}

// Document is an editable DOCX package. Paragraphs, tables and pictures are
// addressed by index; mutations only append to the body, so indices handed
// out earlier stay valid.
type Document struct {
	parts  []*part
	byName map[string]*part

	mainName string
	main     *etree.Document
	body     *etree.Element
	rels     *etree.Document
	types    *etree.Document

	pictures []*Picture
	nextID   int
}

// Open reads a DOCX file.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return OpenBytes(data)
}

// OpenBytes reads a DOCX package from memory.
func OpenBytes(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	d := &Document{byName: make(map[string]*part)}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		d.addPart(f.Name, b)
	}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

// New returns a blank document with one empty section.
func New() *Document {
	d := &Document{byName: make(map[string]*part)}
	for _, p := range blankPackage() {
		d.addPart(p.name, []byte(p.data))
	}
	if err := d.load(); err != nil {
		panic("docx: blank package is invalid: " + err.Error())
	}
	return d
}

func (d *Document) addPart(name string, data []byte) *part {
	p := &part{name: name, data: data}
	d.parts = append(d.parts, p)
	d.byName[name] = p
	return p
}

// xmlPart parses the named part on first use.
func (d *Document) xmlPart(name string) (*etree.Document, error) {
	p, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("missing part %s", name)
	}
	if p.xml == nil {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(p.data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		p.xml = doc
	}
	return p.xml, nil
}

func (d *Document) load() error {
	var err error
	if d.types, err = d.xmlPart("[Content_Types].xml"); err != nil {
		return fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	d.mainName = "word/document.xml"
	if root, err := d.xmlPart("_rels/.rels"); err == nil {
		for _, rel := range root.FindElements("//Relationship") {
			if rel.SelectAttrValue("Type", "") == relOfficeDocument {
				d.mainName = strings.TrimPrefix(rel.SelectAttrValue("Target", d.mainName), "/")
				break
			}
		}
	}

	if d.main, err = d.xmlPart(d.mainName); err != nil {
		return fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	root := d.main.Root()
	if root == nil || root.Tag != "document" {
		return fmt.Errorf("%w: %s has no document element", ErrNotDocx, d.mainName)
	}
	d.body = root.SelectElement("w:body")
	if d.body == nil {
		d.body = root.CreateElement("w:body")
	}

	relsName := relsPartName(d.mainName)
	if _, ok := d.byName[relsName]; !ok {
		d.addPart(relsName, []byte(emptyRels))
	}
	if d.rels, err = d.xmlPart(relsName); err != nil {
		return err
	}

	for _, el := range d.main.FindElements("//wp:docPr") {
		if id := atoi(el.SelectAttrValue("id", "0")); id >= d.nextID {
			d.nextID = id + 1
		}
	}
	if d.nextID == 0 {
		d.nextID = 1
	}
	// charts and shapes are drawings too
	for _, el := range d.main.FindElements("//w:drawing") {
		if el.FindElement(".//pic:pic") != nil {
			d.pictures = append(d.pictures, &Picture{el: el})
		}
	}
	return nil
}

// Save writes the document to filename.
func (d *Document) Save(filename string) error {
	b, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

// Bytes serialises the package.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the zip package to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, p := range d.parts {
		data := p.data
		if p.xml != nil {
			b, err := p.xml.WriteToBytes()
			if err != nil {
				return cw.n, fmt.Errorf("serialising %s: %w", p.name, err)
			}
			data = b
		}
		fw, err := zw.Create(p.name)
		if err != nil {
			return cw.n, fmt.Errorf("writing %s: %w", p.name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return cw.n, fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// ParagraphCount returns the number of top-level body paragraphs.
func (d *Document) ParagraphCount() int {
	return len(d.body.SelectElements("w:p"))
}

// Paragraph returns the i-th top-level body paragraph.
func (d *Document) Paragraph(i int) (*Paragraph, error) {
	ps := d.body.SelectElements("w:p")
	if i < 0 || i >= len(ps) {
		return nil, fmt.Errorf("paragraph %d of %d: %w", i, len(ps), ErrOutOfRange)
	}
	return &Paragraph{el: ps[i]}, nil
}

// Paragraphs returns every top-level body paragraph in order.
func (d *Document) Paragraphs() []*Paragraph {
	ps := d.body.SelectElements("w:p")
	out := make([]*Paragraph, len(ps))
	for i, el := range ps {
		out[i] = &Paragraph{el: el}
	}
	return out
}

// AddParagraph appends a paragraph holding text and returns its index.
func (d *Document) AddParagraph(text string) int {
	p := etree.NewElement("w:p")
	if text != "" {
		(&Paragraph{el: p}).AddRun(text)
	}
	d.appendBody(p)
	return d.ParagraphCount() - 1
}

// Text returns the text of all top-level paragraphs, one per line.
func (d *Document) Text() string {
	var sb strings.Builder
	for i, p := range d.Paragraphs() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Text())
	}
	return sb.String()
}

// appendBody inserts el at the end of the body, before the trailing
// section properties.
func (d *Document) appendBody(el *etree.Element) {
	if sect := d.body.SelectElement("w:sectPr"); sect != nil {
		d.body.InsertChildAt(sect.Index(), el)
		return
	}
	d.body.AddChild(el)
}

// ensureNamespace declares prefix on the main document root if it is not
// declared yet.
func (d *Document) ensureNamespace(prefix, uri string) {
	root := d.main.Root()
	if root.SelectAttr("xmlns:"+prefix) == nil {
		root.CreateAttr("xmlns:"+prefix, uri)
	}
}

// relate adds a relationship from the main part and returns its id.
func (d *Document) relate(typ, target string) string {
	root := d.rels.Root()
	used := make(map[string]bool)
	for _, rel := range root.SelectElements("Relationship") {
		used[rel.SelectAttrValue("Id", "")] = true
	}
	id := ""
	for n := len(used) + 1; ; n++ {
		id = fmt.Sprintf("rId%d", n)
		if !used[id] {
			break
		}
	}
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", typ)
	rel.CreateAttr("Target", target)
	return id
}

// relTarget resolves a relationship id of the main part to a part name.
func (d *Document) relTarget(id string) string {
	for _, rel := range d.rels.Root().SelectElements("Relationship") {
		if rel.SelectAttrValue("Id", "") == id {
			target := rel.SelectAttrValue("Target", "")
			if strings.HasPrefix(target, "/") {
				return strings.TrimPrefix(target, "/")
			}
			return path.Join(path.Dir(d.mainName), target)
		}
	}
	return ""
}

// ensureDefault registers a content type for a file extension.
func (d *Document) ensureDefault(ext, contentType string) {
	root := d.types.Root()
	for _, def := range root.SelectElements("Default") {
		if strings.EqualFold(def.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)
	root.InsertChildAt(0, def)
}

func (d *Document) ensureOverride(partName, contentType string) {
	root := d.types.Root()
	for _, o := range root.SelectElements("Override") {
		if o.SelectAttrValue("PartName", "") == partName {
			return
		}
	}
	o := root.CreateElement("Override")
	o.CreateAttr("PartName", partName)
	o.CreateAttr("ContentType", contentType)
}

// uniquePartName returns dir/base+n+ext for the first n not in use.
func (d *Document) uniquePartName(dir, base, ext string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s/%s%d%s", dir, base, n, ext)
		if _, ok := d.byName[name]; !ok {
			return name
		}
	}
}

func relsPartName(name string) string {
	return path.Join(path.Dir(name), "_rels", path.Base(name)+".rels")
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
	}
	return n
}
