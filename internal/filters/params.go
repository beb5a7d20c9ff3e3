package filters

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for filters this package does not implement.
var ErrUnsupported = errors.New("unsupported filter")

// Params holds the decode parameters of one filter stage. Zero fields take
// the PDF defaults.
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int

	// CCITT fax
	K                int
	Rows             int
	BlackIs1         bool
	EncodedByteAlign bool
}

func (p Params) withDefaults() Params {
	if p.Predictor == 0 {
		p.Predictor = 1
	}
	if p.Colors == 0 {
		p.Colors = 1
	}
	if p.BitsPerComponent == 0 {
		p.BitsPerComponent = 8
	}
	if p.Columns == 0 {
		p.Columns = 1
	}
	return p
}

// Decode applies the named filter. Abbreviated inline-image names are
// accepted.
func Decode(name string, data []byte, p Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return FlateDecode(data, p)
	case "ASCIIHexDecode", "AHx":
		return ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return ASCII85Decode(data)
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
}
