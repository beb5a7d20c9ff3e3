package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/pdfword/font"
)

// fontFor returns the decoded font for a font resource, caching by object
// number.
func (d *Document) fontFor(o types.Object) *font.Font {
	nr, indirect := objNr(o)
	if indirect {
		if f, ok := d.fonts[nr]; ok {
			return f
		}
	}
	f := d.loadFont(d.dict(o))
	if indirect {
		d.fonts[nr] = f
	}
	return f
}

func (d *Document) loadFont(fd types.Dict) *font.Font {
	if fd == nil {
		return font.New(font.Spec{BaseFont: "Helvetica", Subtype: "Type1"})
	}
	spec := font.Spec{
		BaseFont: d.name(lookup(fd, "BaseFont")),
		Subtype:  d.name(lookup(fd, "Subtype")),
	}
	if spec.BaseFont == "" {
		spec.BaseFont = d.name(lookup(fd, "Name"))
	}

	if tu := lookup(fd, "ToUnicode"); tu != nil {
		if data, _, err := d.stream(tu); err == nil {
			if cm, err := font.ParseCMap(data); err == nil {
				spec.ToUnicode = cm
			}
		}
	}

	descriptor := d.dict(lookup(fd, "FontDescriptor"))

	if spec.Subtype == "Type0" {
		spec.TwoByte = true
		desc := d.array(lookup(fd, "DescendantFonts"))
		if len(desc) > 0 {
			cid := d.dict(desc[0])
			if spec.BaseFont == "" {
				spec.BaseFont = d.name(lookup(cid, "BaseFont"))
			}
			descriptor = d.dict(lookup(cid, "FontDescriptor"))
			if dw, ok := d.number(lookup(cid, "DW")); ok {
				spec.DefaultWidth = dw
			}
			spec.CIDWidths = d.cidWidths(lookup(cid, "W"))
		}
	} else {
		spec.Encoding = d.encoding(lookup(fd, "Encoding"), descriptor)
		spec.FirstChar = d.integer(lookup(fd, "FirstChar"), 0)
		spec.Widths = d.numbers(lookup(fd, "Widths"))
		if spec.Subtype == "Type3" {
			if fm := d.numbers(lookup(fd, "FontMatrix")); len(fm) == 6 {
				spec.FontMatrixScale = fm[0]
			}
		}
	}

	if descriptor != nil {
		spec.DescriptorFlags = d.integer(lookup(descriptor, "Flags"), 0)
		spec.FontWeight, _ = d.number(lookup(descriptor, "FontWeight"))
		spec.ItalicAngle, _ = d.number(lookup(descriptor, "ItalicAngle"))
		spec.MissingWidth, _ = d.number(lookup(descriptor, "MissingWidth"))
	}
	return font.New(spec)
}

func (d *Document) encoding(o types.Object, descriptor types.Dict) *font.Encoding {
	symbolic := d.integer(lookup(descriptor, "Flags"), 0)&font.DescSymbolic != 0
	switch v := d.resolve(o).(type) {
	case types.Name:
		return font.NewEncoding(string(v))
	case types.Dict:
		base := d.name(lookup(v, "BaseEncoding"))
		if base == "" && !symbolic {
			base = font.StandardEncoding
		}
		enc := font.NewEncoding(base)
		codes, names := d.differences(lookup(v, "Differences"))
		enc.ApplyDifferences(codes, names)
		return enc
	}
	if symbolic {
		// symbolic fonts use their built-in encoding; Latin-1 is the closest guess
		return font.NewEncoding(font.WinAnsiEncoding)
	}
	return font.NewEncoding(font.StandardEncoding)
}

func (d *Document) differences(o types.Object) ([]int, [][]string) {
	var codes []int
	var names [][]string
	for _, v := range d.array(o) {
		switch x := d.resolve(v).(type) {
		case types.Integer:
			codes = append(codes, int(x))
			names = append(names, nil)
		case types.Float:
			codes = append(codes, int(x))
			names = append(names, nil)
		case types.Name:
			if len(names) == 0 {
				continue
			}
			names[len(names)-1] = append(names[len(names)-1], string(x))
		}
	}
	return codes, names
}

// cidWidths parses a CIDFont /W array: "c [w1 w2 ...]" and "cFirst cLast w".
func (d *Document) cidWidths(o types.Object) map[int]float64 {
	arr := d.array(o)
	if len(arr) == 0 {
		return nil
	}
	out := make(map[int]float64)
	for i := 0; i < len(arr); {
		first, ok := d.number(arr[i])
		if !ok || i+1 >= len(arr) {
			break
		}
		if ws, isArr := d.resolve(arr[i+1]).(types.Array); isArr {
			for j, w := range ws {
				if v, ok := d.number(w); ok {
					out[int(first)+j] = v
				}
			}
			i += 2
			continue
		}
		if i+2 >= len(arr) {
			break
		}
		last, ok1 := d.number(arr[i+1])
		w, ok2 := d.number(arr[i+2])
		if !ok1 || !ok2 {
			break
		}
		for c := int(first); c <= int(last) && c-int(first) < 65536; c++ {
			out[c] = w
		}
		i += 3
	}
	return out
}
