package docx

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path"
	"strconv"

	"github.com/beevik/etree"
)

// EMUPerInch is the number of English Metric Units per inch.
const EMUPerInch = 914400

// Picture is a handle on one inline w:drawing.
type Picture struct {
	el *etree.Element
}

// Size returns the displayed size in inches.
func (p *Picture) Size() (widthIn, heightIn float64) {
	ext := p.el.FindElement(".//wp:extent")
	if ext == nil {
		return 0, 0
	}
	cx, _ := attrInt(ext, "cx")
	cy, _ := attrInt(ext, "cy")
	return float64(cx) / EMUPerInch, float64(cy) / EMUPerInch
}

// Alt returns the picture description.
func (p *Picture) Alt() string {
	if pr := p.el.FindElement(".//wp:docPr"); pr != nil {
		return pr.SelectAttrValue("descr", "")
	}
	return ""
}

// PictureCount returns the number of inline pictures in the body.
func (d *Document) PictureCount() int {
	return len(d.pictures)
}

// Picture returns the i-th picture in document order of insertion.
func (d *Document) Picture(i int) (*Picture, error) {
	if i < 0 || i >= len(d.pictures) {
		return nil, fmt.Errorf("picture %d of %d: %w", i, len(d.pictures), ErrOutOfRange)
	}
	return d.pictures[i], nil
}

// AddPicture appends a paragraph holding the image file at filename, shown
// at the given size in inches, and returns the picture index.
func (d *Document) AddPicture(filename string, widthIn, heightIn float64, alt string) (int, error) {
	if !(widthIn > 0) || !(heightIn > 0) || math.IsInf(widthIn, 0) || math.IsInf(heightIn, 0) {
		return -1, fmt.Errorf("picture size %gx%g in: %w", widthIn, heightIn, ErrOutOfRange)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return -1, fmt.Errorf("reading picture: %w", err)
	}
	ext, contentType := sniffImage(data)
	if ext == "" {
		return -1, fmt.Errorf("picture %s: unrecognised image format", path.Base(filename))
	}

	name := d.uniquePartName("word/media", "image", "."+ext)
	d.addPart(name, data)
	d.ensureDefault(ext, contentType)
	rid := d.relate(relImage, "media/"+path.Base(name))

	d.ensureNamespace("r", nsR)
	d.ensureNamespace("wp", nsWP)
	d.ensureNamespace("a", nsA)
	d.ensureNamespace("pic", nsPic)

	id := d.nextID
	d.nextID++
	cx := strconv.FormatInt(int64(math.Round(widthIn*EMUPerInch)), 10)
	cy := strconv.FormatInt(int64(math.Round(heightIn*EMUPerInch)), 10)

	drawing := etree.NewElement("w:drawing")
	inline := drawing.CreateElement("wp:inline")
	for _, k := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(k, "0")
	}
	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", cx)
	extent.CreateAttr("cy", cy)
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", strconv.Itoa(id))
	docPr.CreateAttr("name", "Picture "+strconv.Itoa(id))
	if alt != "" {
		docPr.CreateAttr("descr", alt)
	}
	inline.CreateElement("wp:cNvGraphicFramePr").
		CreateElement("a:graphicFrameLocks").CreateAttr("noChangeAspect", "1")

	gd := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	gd.CreateAttr("uri", nsPic)
	pic := gd.CreateElement("pic:pic")
	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", path.Base(name))
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", rid)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	aext := xfrm.CreateElement("a:ext")
	aext.CreateAttr("cx", cx)
	aext.CreateAttr("cy", cy)
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	p := etree.NewElement("w:p")
	p.CreateElement("w:r").AddChild(drawing)
	d.appendBody(p)

	d.pictures = append(d.pictures, &Picture{el: drawing})
	return len(d.pictures) - 1, nil
}

func sniffImage(data []byte) (ext, contentType string) {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return "jpeg", "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png", "image/png"
	case bytes.HasPrefix(data, []byte("\x00\x00\x00\x0cjP  \r\n\x87\n")),
		bytes.HasPrefix(data, []byte{0xff, 0x4f, 0xff, 0x51}):
		return "jp2", "image/jp2"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "gif", "image/gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp", "image/bmp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tiff", "image/tiff"
	}
	return "", ""
}
