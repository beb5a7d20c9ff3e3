// Package layout finds page furniture that repeats across a PDF and carries
// it into the reconstructed document.
//
// # Header/Footer Detection
//
// The [HeaderFooterDetector] joins each page's style records into visual
// lines and keeps the lines that sit within 72pt of the top or bottom edge.
// A line becomes a header or footer when, with digit runs normalised, it
// appears at the same position on at least half of the pages (and at least
// two):
//
//	result := layout.DetectHeaderFooter(extracted)
//	if err := layout.ApplyHeaderFooter(doc, result); err != nil {
//		// ...
//	}
//
// Digits that change from page to page are written as PAGE fields.
package layout
