package contentstream

// Object is an operand value in a content stream.
type Object interface{}

// Operand types. Strings hold the raw bytes after escape processing; they are
// character codes, not text, until decoded through a font.
type (
	Int    int64
	Real   float64
	String []byte
	Name   string
	Bool   bool
	Null   struct{}
	Array  []Object
	Dict   map[string]Object
)

// Number returns the numeric value of an Int or Real operand.
func Number(o Object) (float64, bool) {
	switch v := o.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	default:
		return 0, false
	}
}

// Numbers converts all operands to float64, failing if any is not numeric.
func Numbers(ops []Object) ([]float64, bool) {
	out := make([]float64, len(ops))
	for i, o := range ops {
		v, ok := Number(o)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Operation is one operator with the operands that preceded it.
type Operation struct {
	Operator string
	Operands []Object
}

// InlineImage is the operator name reported for a BI ... ID ... EI sequence.
// Its single operand is the inline image dictionary.
const InlineImage = "BI"
