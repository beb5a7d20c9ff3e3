package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/pdfword/internal/filters"
	"github.com/tsawler/pdfword/model"
)

// ErrUnsupportedImage is returned for image encodings that cannot be turned
// into a file a word processor can embed.
var ErrUnsupportedImage = errors.New("pdf: unsupported image encoding")

// ExtractImage returns the encoded bytes of the image XObject with the given
// object number. JPEG and JPEG 2000 data is passed through; everything else
// is re-encoded as PNG.
func (d *Document) ExtractImage(xref int) (*model.ImageData, error) {
	if d.ctx == nil {
		return nil, ErrClosed
	}
	sd, _, err := d.ctx.DereferenceStreamDict(*types.NewIndirectRef(xref, 0))
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", xref, err)
	}
	if sd == nil {
		return nil, fmt.Errorf("image %d: not a stream", xref)
	}
	if st := d.name(lookup(sd.Dict, "Subtype")); st != "Image" {
		return nil, fmt.Errorf("image %d: subtype %q: %w", xref, st, ErrUnsupportedImage)
	}

	pipeline := sd.FilterPipeline
	last := ""
	if len(pipeline) > 0 {
		last = pipeline[len(pipeline)-1].Name
	}

	switch last {
	case "DCTDecode", "JPXDecode":
		data, err := d.passthrough(sd.Raw, pipeline[:len(pipeline)-1])
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", xref, err)
		}
		format := model.ImageFormatJPEG
		if last == "JPXDecode" {
			format = model.ImageFormatJPEG2000
		}
		return &model.ImageData{Data: data, Format: format}, nil

	case "CCITTFaxDecode":
		data, err := d.passthrough(sd.Raw, pipeline[:len(pipeline)-1])
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", xref, err)
		}
		parms := pipeline[len(pipeline)-1].DecodeParms
		img, err := d.decodeFax(sd.Dict, parms, data)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", xref, err)
		}
		return encodePNG(img)

	case "JBIG2Decode", "RunLengthDecode":
		return nil, fmt.Errorf("image %d: %s: %w", xref, last, ErrUnsupportedImage)
	}

	if sd.Content == nil {
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("image %d: decode: %w", xref, err)
		}
	}
	img, err := d.rasterize(sd.Dict, sd.Content)
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", xref, err)
	}
	return encodePNG(img)
}

// passthrough undoes the stages that precede an embedded codec.
func (d *Document) passthrough(raw []byte, pre []types.PDFFilter) ([]byte, error) {
	data := raw
	for _, f := range pre {
		out, err := filters.Decode(f.Name, data, d.filterParams(f.DecodeParms))
		if errors.Is(err, filters.ErrUnsupported) {
			return nil, fmt.Errorf("%s before codec: %w", f.Name, ErrUnsupportedImage)
		}
		if err != nil {
			return nil, err
		}
		data = out
	}
	return data, nil
}

func (d *Document) filterParams(parms types.Dict) filters.Params {
	if parms == nil {
		return filters.Params{}
	}
	return filters.Params{
		Predictor:        d.integer(lookup(parms, "Predictor"), 0),
		Colors:           d.integer(lookup(parms, "Colors"), 0),
		BitsPerComponent: d.integer(lookup(parms, "BitsPerComponent"), 0),
		Columns:          d.integer(lookup(parms, "Columns"), 0),
		K:                d.integer(lookup(parms, "K"), 0),
		Rows:             d.integer(lookup(parms, "Rows"), 0),
		BlackIs1:         d.boolean(lookup(parms, "BlackIs1")),
		EncodedByteAlign: d.boolean(lookup(parms, "EncodedByteAlign")),
	}
}

func (d *Document) decodeFax(dict, parms types.Dict, data []byte) (image.Image, error) {
	rows := d.integer(lookup(dict, "Height"), 0)
	return filters.Fax(data, d.filterParams(parms), rows, decodeInverted(d.numbers(lookup(dict, "Decode"))))
}

func decodeInverted(decode []float64) bool {
	return len(decode) >= 2 && decode[0] > decode[1]
}

// rasterize builds an image from decoded samples.
func (d *Document) rasterize(dict types.Dict, data []byte) (image.Image, error) {
	w := d.integer(lookup(dict, "Width"), 0)
	h := d.integer(lookup(dict, "Height"), 0)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("bad dimensions %dx%d", w, h)
	}
	if d.boolean(lookup(dict, "ImageMask")) {
		return d.bitmap(w, h, data, decodeInverted(d.numbers(lookup(dict, "Decode"))))
	}

	bpc := d.integer(lookup(dict, "BitsPerComponent"), 8)
	space, palette, err := d.colorSpace(lookup(dict, "ColorSpace"))
	if err != nil {
		return nil, err
	}

	if bpc == 1 && space == "DeviceGray" {
		return d.bitmap(w, h, data, decodeInverted(d.numbers(lookup(dict, "Decode"))))
	}

	switch space {
	case "DeviceGray":
		if bpc != 8 {
			break
		}
		if len(data) < w*h {
			return nil, errShortData(len(data), w*h)
		}
		img := image.NewGray(image.Rect(0, 0, w, h))
		copy(img.Pix, data[:w*h])
		return img, nil

	case "DeviceRGB":
		if bpc != 8 {
			break
		}
		if len(data) < w*h*3 {
			return nil, errShortData(len(data), w*h*3)
		}
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for i := 0; i < w*h; i++ {
			img.Pix[i*4] = data[i*3]
			img.Pix[i*4+1] = data[i*3+1]
			img.Pix[i*4+2] = data[i*3+2]
			img.Pix[i*4+3] = 0xff
		}
		return img, nil

	case "DeviceCMYK":
		if bpc != 8 {
			break
		}
		if len(data) < w*h*4 {
			return nil, errShortData(len(data), w*h*4)
		}
		img := image.NewCMYK(image.Rect(0, 0, w, h))
		copy(img.Pix, data[:w*h*4])
		return img, nil

	case "Indexed":
		return indexed(w, h, bpc, data, palette)
	}
	return nil, fmt.Errorf("%s at %d bits: %w", space, bpc, ErrUnsupportedImage)
}

// bitmap unpacks 1-bit samples; with blackIs1 a set bit is black.
func (d *Document) bitmap(w, h int, data []byte, blackIs1 bool) (image.Image, error) {
	stride := (w + 7) / 8
	if len(data) < stride*h {
		return nil, errShortData(len(data), stride*h)
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := data[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			set := row[x/8]&(0x80>>(x%8)) != 0
			v := uint8(0xff)
			if set == blackIs1 {
				v = 0
			}
			img.Pix[y*img.Stride+x] = v
		}
	}
	return img, nil
}

func indexed(w, h, bpc int, data []byte, palette color.Palette) (image.Image, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("indexed image without palette")
	}
	if bpc != 1 && bpc != 2 && bpc != 4 && bpc != 8 {
		return nil, fmt.Errorf("indexed at %d bits: %w", bpc, ErrUnsupportedImage)
	}
	stride := (w*bpc + 7) / 8
	if len(data) < stride*h {
		return nil, errShortData(len(data), stride*h)
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
	perByte := 8 / bpc
	mask := byte(1<<bpc - 1)
	for y := 0; y < h; y++ {
		row := data[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			b := row[x/perByte]
			shift := uint(8 - bpc*(x%perByte+1))
			idx := (b >> shift) & mask
			if int(idx) >= len(palette) {
				idx = 0
			}
			img.Pix[y*img.Stride+x] = idx
		}
	}
	return img, nil
}

// colorSpace reduces a color space to a device family. ICCBased spaces map
// by component count; Indexed spaces return their palette.
func (d *Document) colorSpace(o types.Object) (string, color.Palette, error) {
	switch v := d.resolve(o).(type) {
	case nil:
		return "DeviceGray", nil, nil
	case types.Name:
		switch string(v) {
		case "DeviceGray", "CalGray", "G":
			return "DeviceGray", nil, nil
		case "DeviceRGB", "CalRGB", "RGB":
			return "DeviceRGB", nil, nil
		case "DeviceCMYK", "CMYK":
			return "DeviceCMYK", nil, nil
		}
		return string(v), nil, nil
	case types.Array:
		if len(v) == 0 {
			break
		}
		switch d.name(v[0]) {
		case "ICCBased":
			if len(v) < 2 {
				break
			}
			switch d.integer(lookup(d.dict(v[1]), "N"), 3) {
			case 1:
				return "DeviceGray", nil, nil
			case 4:
				return "DeviceCMYK", nil, nil
			}
			return "DeviceRGB", nil, nil
		case "CalGray":
			return "DeviceGray", nil, nil
		case "CalRGB", "Lab":
			return "DeviceRGB", nil, nil
		case "Indexed", "I":
			if len(v) < 4 {
				break
			}
			base, _, err := d.colorSpace(v[1])
			if err != nil {
				return "", nil, err
			}
			hival := d.integer(v[2], 0)
			lut, err := d.lookupTable(v[3])
			if err != nil {
				return "", nil, err
			}
			return "Indexed", buildPalette(base, hival, lut), nil
		}
		return d.name(v[0]), nil, nil
	}
	return "", nil, fmt.Errorf("malformed color space: %w", ErrUnsupportedImage)
}

func (d *Document) lookupTable(o types.Object) ([]byte, error) {
	switch v := d.resolve(o).(type) {
	case types.StringLiteral:
		b, err := types.Unescape(v.Value())
		if err != nil {
			return nil, err
		}
		return b, nil
	case types.HexLiteral:
		return v.Bytes()
	case types.StreamDict:
		data, _, err := d.stream(o)
		return data, err
	}
	return nil, fmt.Errorf("malformed lookup table")
}

func buildPalette(base string, hival int, lut []byte) color.Palette {
	n := 3
	switch base {
	case "DeviceGray":
		n = 1
	case "DeviceCMYK":
		n = 4
	}
	var pal color.Palette
	for i := 0; i <= hival && (i+1)*n <= len(lut) && i < 256; i++ {
		c := lut[i*n : (i+1)*n]
		switch n {
		case 1:
			pal = append(pal, color.Gray{Y: c[0]})
		case 4:
			pal = append(pal, color.CMYK{C: c[0], M: c[1], Y: c[2], K: c[3]})
		default:
			pal = append(pal, color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff})
		}
	}
	return pal
}

func encodePNG(img image.Image) (*model.ImageData, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &model.ImageData{Data: buf.Bytes(), Format: model.ImageFormatPNG}, nil
}

func errShortData(got, want int) error {
	return fmt.Errorf("image data is %d bytes, want %d", got, want)
}
