package model

// Document is the layout model of a whole PDF. Pages that failed extraction
// are present with no content so that page indices stay aligned.
type Document struct {
	Pages []*PageLayout
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{Pages: make([]*PageLayout, 0)}
}

// AddPage appends a page layout.
func (d *Document) AddPage(p *PageLayout) {
	d.Pages = append(d.Pages, p)
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Styles returns the style records of all pages in page order.
func (d *Document) Styles() []StyleRecord {
	var out []StyleRecord
	for _, p := range d.Pages {
		out = append(out, p.Styles...)
	}
	return out
}

// Images returns the image records of all pages in page order.
func (d *Document) Images() []ImageRecord {
	var out []ImageRecord
	for _, p := range d.Pages {
		out = append(out, p.Images...)
	}
	return out
}

// Tables returns the table grids of all pages in page order.
func (d *Document) Tables() []TableGrid {
	var out []TableGrid
	for _, p := range d.Pages {
		out = append(out, p.Tables...)
	}
	return out
}

// TablesInReadingOrder returns the table grids ordered by each page's node
// sequence.
func (d *Document) TablesInReadingOrder() []TableGrid {
	var out []TableGrid
	for _, p := range d.Pages {
		out = append(out, p.TablesInReadingOrder()...)
	}
	return out
}

// ImagesInReadingOrder returns the image records ordered by each page's node
// sequence.
func (d *Document) ImagesInReadingOrder() []ImageRecord {
	var out []ImageRecord
	for _, p := range d.Pages {
		out = append(out, p.ImagesInReadingOrder()...)
	}
	return out
}

// TablesInReadingOrder returns the page's tables in node order. A page
// without nodes returns them in detection order.
func (p *PageLayout) TablesInReadingOrder() []TableGrid {
	if len(p.Nodes) == 0 {
		return p.Tables
	}
	var out []TableGrid
	for _, n := range p.Nodes {
		if n.Kind == NodeTable {
			out = append(out, p.Tables[n.Index])
		}
	}
	return out
}

// ImagesInReadingOrder returns the page's images in node order.
func (p *PageLayout) ImagesInReadingOrder() []ImageRecord {
	if len(p.Nodes) == 0 {
		return p.Images
	}
	var out []ImageRecord
	for _, n := range p.Nodes {
		if n.Kind == NodeImage {
			out = append(out, p.Images[n.Index])
		}
	}
	return out
}
