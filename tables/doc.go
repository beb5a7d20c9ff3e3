// Package tables finds ruled tables on PDF pages and rebuilds them in a
// word processing document.
//
// # Finding
//
// A [Finder] works from the rulings painted on a page (stroked lines and
// thin filled rectangles, as produced by the pdf package):
//
//  1. Rulings are split into horizontal and vertical rules; short and
//     diagonal segments are dropped.
//  2. Rules on the same line within the tolerance are snapped together and
//     collinear pieces are joined, so grids drawn cell by cell still form
//     long rules.
//  3. Rules that cross or touch are grouped into connected regions. Each
//     region with at least two rules per axis is a table candidate.
//  4. The distinct rule positions of a region become the column and row
//     boundaries.
//  5. Cells are grown right and down from the top-left while the boundary
//     between positions has no drawn rule, producing row and column spans.
//  6. Span text is assigned to the cell containing the span centre.
//
// # Building
//
// A [Builder] appends a grid to a [docx.Document] as a table with uniform
// single borders, vertically centred 10pt cell text and merged cells for
// every span. A merge that fails is logged and the cell stays unmerged.
//
//	finder := tables.NewFinder(tables.DefaultFinderOptions())
//	for _, grid := range finder.Find(rulings, spans, pageBox) {
//		res, err := tables.NewBuilder(logger).Build(doc, &grid)
//	}
package tables
