package font

import (
	"fmt"
	"unicode/utf16"

	"github.com/tsawler/pdfword/contentstream"
)

// CMap maps character codes to Unicode text. Only the parts of the CMap
// language used by ToUnicode streams are understood: codespace ranges,
// bfchar and bfrange.
type CMap struct {
	codespaces []codespace
	chars      map[uint32]string
	ranges     []bfRange
}

type codespace struct {
	length int
	lo, hi uint32
}

type bfRange struct {
	lo, hi uint32
	start  []uint16 // destination of lo as UTF-16 code units
	array  []string // explicit destinations, when given as an array
}

// NewCMap returns an empty CMap.
func NewCMap() *CMap {
	return &CMap{chars: make(map[uint32]string)}
}

// ParseCMap parses a ToUnicode CMap stream. Unparseable fragments are skipped;
// an error is returned only when nothing usable was found.
func ParseCMap(data []byte) (*CMap, error) {
	cm := NewCMap()
	p := contentstream.NewParser(data)
	for {
		op, err := p.Next()
		if err != nil {
			continue
		}
		if op == nil {
			break
		}
		switch op.Operator {
		case "endcodespacerange":
			cm.addCodespaces(op.Operands)
		case "endbfchar":
			cm.addChars(op.Operands)
		case "endbfrange":
			cm.addRanges(op.Operands)
		}
	}
	if len(cm.chars) == 0 && len(cm.ranges) == 0 {
		return nil, fmt.Errorf("cmap contains no mappings")
	}
	return cm, nil
}

func (cm *CMap) addCodespaces(ops []contentstream.Object) {
	for i := 0; i+1 < len(ops); i += 2 {
		lo, ok1 := ops[i].(contentstream.String)
		hi, ok2 := ops[i+1].(contentstream.String)
		if !ok1 || !ok2 || len(lo) == 0 || len(lo) != len(hi) {
			continue
		}
		cm.codespaces = append(cm.codespaces, codespace{length: len(lo), lo: code(lo), hi: code(hi)})
	}
}

func (cm *CMap) addChars(ops []contentstream.Object) {
	for i := 0; i+1 < len(ops); i += 2 {
		src, ok := ops[i].(contentstream.String)
		if !ok {
			continue
		}
		switch dst := ops[i+1].(type) {
		case contentstream.String:
			cm.chars[code(src)] = utf16BE(dst)
		case contentstream.Name:
			if r, ok := glyphRune(string(dst)); ok {
				cm.chars[code(src)] = string(r)
			}
		}
	}
}

func (cm *CMap) addRanges(ops []contentstream.Object) {
	for i := 0; i+2 < len(ops); i += 3 {
		lo, ok1 := ops[i].(contentstream.String)
		hi, ok2 := ops[i+1].(contentstream.String)
		if !ok1 || !ok2 {
			continue
		}
		r := bfRange{lo: code(lo), hi: code(hi)}
		if r.hi < r.lo {
			continue
		}
		switch dst := ops[i+2].(type) {
		case contentstream.String:
			r.start = units(dst)
			if len(r.start) == 0 {
				continue
			}
		case contentstream.Array:
			for _, d := range dst {
				if s, ok := d.(contentstream.String); ok {
					r.array = append(r.array, utf16BE(s))
				} else {
					r.array = append(r.array, "")
				}
			}
		default:
			continue
		}
		cm.ranges = append(cm.ranges, r)
	}
}

// Lookup returns the text for a character code.
func (cm *CMap) Lookup(c uint32) (string, bool) {
	if s, ok := cm.chars[c]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if c < r.lo || c > r.hi {
			continue
		}
		off := c - r.lo
		if r.array != nil {
			if int(off) < len(r.array) && r.array[off] != "" {
				return r.array[off], true
			}
			return "", false
		}
		u := append([]uint16(nil), r.start...)
		u[len(u)-1] += uint16(off)
		return string(utf16.Decode(u)), true
	}
	return "", false
}

// CodeLength returns the byte length of the code starting at data[0],
// according to the codespace ranges. Zero means no codespace was declared.
func (cm *CMap) CodeLength(data []byte) int {
	for _, cs := range cm.codespaces {
		if len(data) < cs.length {
			continue
		}
		if c := code(data[:cs.length]); c >= cs.lo && c <= cs.hi {
			return cs.length
		}
	}
	if len(cm.codespaces) > 0 {
		return cm.codespaces[0].length
	}
	return 0
}

func code(b []byte) uint32 {
	var c uint32
	for _, x := range b {
		c = c<<8 | uint32(x)
	}
	return c
}

func units(b []byte) []uint16 {
	if len(b)%2 == 1 {
		b = append([]byte{0}, b...)
	}
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return u
}

func utf16BE(b []byte) string {
	return string(utf16.Decode(units(b)))
}
