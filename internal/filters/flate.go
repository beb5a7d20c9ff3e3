package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and reverses any predictor.
func FlateDecode(data []byte, p Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}

	p = p.withDefaults()
	switch {
	case p.Predictor == 1:
		return out, nil
	case p.Predictor == 2:
		return tiffPredictor(out, p)
	case p.Predictor >= 10 && p.Predictor <= 15:
		return pngPredictor(out, p)
	}
	return nil, fmt.Errorf("flate: unsupported predictor %d", p.Predictor)
}

// tiffPredictor undoes TIFF predictor 2: each sample is stored as the
// difference from the sample one pixel to its left.
func tiffPredictor(data []byte, p Params) ([]byte, error) {
	if p.BitsPerComponent != 8 {
		return nil, fmt.Errorf("TIFF predictor with %d bits per component", p.BitsPerComponent)
	}
	stride := p.Columns * p.Colors
	if stride <= 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("TIFF predictor: %d bytes is not a whole number of %d-byte rows", len(data), stride)
	}
	out := make([]byte, len(data))
	copy(out, data)
	for row := 0; row < len(out); row += stride {
		for i := row + p.Colors; i < row+stride; i++ {
			out[i] += out[i-p.Colors]
		}
	}
	return out, nil
}

// pngPredictor undoes the PNG filters. Every row starts with its own
// filter type byte.
func pngPredictor(data []byte, p Params) ([]byte, error) {
	bpp := (p.Colors*p.BitsPerComponent + 7) / 8
	stride := (p.Columns*p.Colors*p.BitsPerComponent + 7) / 8
	if stride <= 0 || len(data)%(stride+1) != 0 {
		return nil, fmt.Errorf("PNG predictor: %d bytes is not a whole number of %d-byte rows", len(data), stride+1)
	}

	rows := len(data) / (stride + 1)
	out := make([]byte, rows*stride)
	prev := make([]byte, stride)
	for r := 0; r < rows; r++ {
		in := data[r*(stride+1):]
		kind, src := in[0], in[1:stride+1]
		cur := out[r*stride : (r+1)*stride]
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("PNG predictor: row %d has filter type %d", r, kind)
			}
		}
		prev = cur
	}
	return out, nil
}

// paeth picks whichever of left, up and up-left is closest to
// left + up - upLeft.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
