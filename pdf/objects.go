package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resolve dereferences o if it is an indirect reference.
func (d *Document) resolve(o types.Object) types.Object {
	if o == nil {
		return nil
	}
	if _, ok := o.(types.IndirectRef); !ok {
		return o
	}
	obj, err := d.ctx.Dereference(o)
	if err != nil {
		return nil
	}
	return obj
}

func (d *Document) dict(o types.Object) types.Dict {
	switch v := d.resolve(o).(type) {
	case types.Dict:
		return v
	case types.StreamDict:
		return v.Dict
	}
	return nil
}

func (d *Document) array(o types.Object) types.Array {
	a, _ := d.resolve(o).(types.Array)
	return a
}

func (d *Document) number(o types.Object) (float64, bool) {
	switch v := d.resolve(o).(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

func (d *Document) integer(o types.Object, def int) int {
	if v, ok := d.number(o); ok {
		return int(v)
	}
	return def
}

func (d *Document) name(o types.Object) string {
	n, _ := d.resolve(o).(types.Name)
	return string(n)
}

func (d *Document) boolean(o types.Object) bool {
	b, _ := d.resolve(o).(types.Boolean)
	return bool(b)
}

func (d *Document) numbers(o types.Object) []float64 {
	arr := d.array(o)
	out := make([]float64, 0, len(arr))
	for _, v := range arr {
		f, ok := d.number(v)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}

// stream returns the decoded content of a stream object.
func (d *Document) stream(o types.Object) ([]byte, *types.StreamDict, error) {
	if o == nil {
		return nil, nil, fmt.Errorf("missing stream")
	}
	sd, _, err := d.ctx.DereferenceStreamDict(o)
	if err != nil {
		return nil, nil, err
	}
	if sd == nil {
		return nil, nil, fmt.Errorf("object is not a stream")
	}
	if sd.Content == nil {
		if err := sd.Decode(); err != nil {
			return nil, sd, fmt.Errorf("decode stream: %w", err)
		}
	}
	return sd.Content, sd, nil
}

func lookup(dict types.Dict, key string) types.Object {
	if dict == nil {
		return nil
	}
	o, _ := dict.Find(key)
	return o
}

func objNr(o types.Object) (int, bool) {
	ref, ok := o.(types.IndirectRef)
	if !ok {
		return 0, false
	}
	return int(ref.ObjectNumber), true
}
