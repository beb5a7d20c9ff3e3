package filters

import (
	"bytes"
	"fmt"
	"image"

	"golang.org/x/image/ccitt"
)

// DefaultFaxColumns is the CCITT width when Columns is absent.
const DefaultFaxColumns = 1728

// Fax decodes CCITT Group 3 or Group 4 data into a gray image. K < 0
// selects Group 4. rows is used when p.Rows is zero; invert flips the
// result, as an image /Decode [1 0] array does.
func Fax(data []byte, p Params, rows int, invert bool) (*image.Gray, error) {
	cols := p.Columns
	if cols <= 0 {
		cols = DefaultFaxColumns
	}
	if p.Rows > 0 {
		rows = p.Rows
	}
	if rows <= 0 {
		return nil, fmt.Errorf("fax image has no height")
	}

	sf := ccitt.Group3
	if p.K < 0 {
		sf = ccitt.Group4
	}
	opts := &ccitt.Options{Align: p.EncodedByteAlign, Invert: p.BlackIs1 != invert}

	dst := image.NewGray(image.Rect(0, 0, cols, rows))
	if err := ccitt.DecodeIntoGray(dst, bytes.NewReader(data), ccitt.MSB, sf, opts); err != nil {
		return nil, fmt.Errorf("fax: %w", err)
	}
	return dst, nil
}
