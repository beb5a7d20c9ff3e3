// Package docx edits Office Open XML word processing packages.
//
// A [Document] is opened from a file or bytes, mutated through index-based
// handles and saved again. Paragraphs, tables and pictures are addressed by
// their position in the body:
//
//	doc, err := docx.Open("draft.docx")
//	p, err := doc.Paragraph(0)
//	run := p.PrimaryRun()
//	run.SetBold(true)
//	run.SetSize(14)
//
// Mutations only ever append to the body (before its final section
// properties), so an index obtained before a mutation still addresses the
// same element afterwards. Handles are cheap views over the XML tree and may
// be discarded freely.
//
// Parts the package does not understand are written back unchanged.
package docx
