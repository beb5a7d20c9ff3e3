package model

import "sort"

// PageLayout is the extracted content of a single page.
type PageLayout struct {
	Index  int // 0-based page index
	Width  float64
	Height float64

	Styles []StyleRecord
	Images []ImageRecord
	Tables []TableGrid

	// Nodes is the page content in reading order.
	Nodes []Node
}

// NewPageLayout creates an empty layout for the page at index.
func NewPageLayout(index int, width, height float64) *PageLayout {
	return &PageLayout{Index: index, Width: width, Height: height}
}

// BuildNodes orders styles, tables and images into a single reading-order
// sequence. Styles keep their stream order; a table or image is placed before
// the first style record whose top edge lies below the element's top edge.
func (p *PageLayout) BuildNodes() {
	nodes := make([]Node, 0, len(p.Styles)+len(p.Tables)+len(p.Images))
	for i, s := range p.Styles {
		nodes = append(nodes, Node{Kind: NodeParagraph, Index: i, Top: s.BBox.Top()})
	}

	var floats []Node
	for i, t := range p.Tables {
		floats = append(floats, Node{Kind: NodeTable, Index: i, Top: t.BBox.Top()})
	}
	for i, img := range p.Images {
		floats = append(floats, Node{Kind: NodeImage, Index: i, Top: img.BBox.Top()})
	}
	sort.SliceStable(floats, func(a, b int) bool { return floats[a].Top > floats[b].Top })

	out := make([]Node, 0, cap(nodes))
	fi := 0
	for _, n := range nodes {
		for fi < len(floats) && floats[fi].Top >= n.Top {
			out = append(out, floats[fi])
			fi++
		}
		out = append(out, n)
	}
	out = append(out, floats[fi:]...)
	p.Nodes = out
}
