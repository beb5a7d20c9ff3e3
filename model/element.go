package model

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	NodeParagraph NodeKind = iota
	NodeTable
	NodeImage
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case NodeParagraph:
		return "paragraph"
	case NodeTable:
		return "table"
	case NodeImage:
		return "image"
	default:
		return "unknown"
	}
}

// Node is one entry in a page's reading-order sequence. Index points into the
// page's Styles, Tables or Images slice depending on Kind.
type Node struct {
	Kind  NodeKind
	Index int
	Top   float64
}
