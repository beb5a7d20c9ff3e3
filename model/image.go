package model

// ImageFormat identifies the encoding of extracted image bytes.
type ImageFormat int

const (
	ImageFormatUnknown ImageFormat = iota
	ImageFormatJPEG
	ImageFormatPNG
	ImageFormatJPEG2000
)

// Ext returns the file extension, without dot, for the format.
func (f ImageFormat) Ext() string {
	switch f {
	case ImageFormatJPEG:
		return "jpeg"
	case ImageFormatPNG:
		return "png"
	case ImageFormatJPEG2000:
		return "jp2"
	default:
		return "bin"
	}
}

// ContentType returns the MIME type for the format.
func (f ImageFormat) ContentType() string {
	switch f {
	case ImageFormatJPEG:
		return "image/jpeg"
	case ImageFormatPNG:
		return "image/png"
	case ImageFormatJPEG2000:
		return "image/jp2"
	default:
		return "application/octet-stream"
	}
}

// String implements fmt.Stringer.
func (f ImageFormat) String() string {
	return f.Ext()
}

// ImageBlock is an image placement found on a page. XRef is the object number
// of the image XObject and is the key used to fetch its bytes.
type ImageBlock struct {
	BBox   BBox
	Width  int
	Height int
	XRef   int
}

// ImageRecord describes one image placement for reinsertion.
type ImageRecord struct {
	Page      int
	BBox      BBox
	WidthPx   int
	HeightPx  int
	SourceRef int
}

// NewImageRecord builds a record from an image block on the given page.
func NewImageRecord(page int, b ImageBlock) ImageRecord {
	return ImageRecord{
		Page:      page,
		BBox:      b.BBox,
		WidthPx:   b.Width,
		HeightPx:  b.Height,
		SourceRef: b.XRef,
	}
}

// ImageData holds the encoded bytes of one image.
type ImageData struct {
	Data   []byte
	Format ImageFormat
}
