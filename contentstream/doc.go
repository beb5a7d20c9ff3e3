// Package contentstream tokenizes PDF content streams into operations.
//
// A content stream is a sequence of operands followed by an operator:
//
//	p := contentstream.NewParser(data)
//	for {
//	    op, err := p.Next()
//	    if err != nil || op == nil {
//	        break
//	    }
//	    fmt.Println(op.Operator, op.Operands)
//	}
//
// Operands are returned as [Int], [Real], [String], [Name], [Array], [Dict],
// [Bool] or [Null]. Inline images (BI ... ID ... EI) are reported as a single
// operation named [InlineImage] whose operand is the image dictionary; the
// image data itself is skipped.
package contentstream
