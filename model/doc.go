// Package model defines the layout model produced from a PDF and consumed by
// the document reconstruction stages.
//
// # Records
//
// Extraction yields three kinds of per-page records:
//
//   - [StyleRecord] - font, size, color and style flags of one text span
//   - [ImageRecord] - placement and source reference of one image
//   - [TableGrid] - logical rows, columns and merged cells of one table
//
// Records are values; once extracted they are never mutated.
//
// # Reading order
//
// Each [PageLayout] carries a [Node] sequence that interleaves paragraphs,
// tables and images in reading order.
//
// # Geometry
//
// All coordinates are in PDF user space: points, origin bottom-left.
//
//   - [BBox] - axis-aligned rectangle
//   - [Matrix] - affine transformation
//   - [Segment] - straight line, used for table rulings
package model
