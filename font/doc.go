// Package font decodes the strings shown by PDF text operators.
//
// A [Font] is built from a [Spec] describing the font dictionary: base font
// name, encoding, widths and an optional ToUnicode [CMap]. Decoding splits a
// shown string into [Glyph] values carrying Unicode text and advance width:
//
//	f := font.New(font.Spec{BaseFont: "Helvetica-Bold", Subtype: "Type1"})
//	for _, g := range f.Decode([]byte("Title")) {
//	    fmt.Println(g.Text, g.Width)
//	}
//
// Text resolution order is ToUnicode, then the simple font encoding (with any
// /Differences applied), then the raw code for Identity-encoded CID fonts.
//
// Style flags are derived from the font name and descriptor; see
// [StyleFlags]. [FamilyName] maps PDF base font names to the family names
// word processors use.
package font
