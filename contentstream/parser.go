package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Parser splits a content stream into operations.
type Parser struct {
	data     []byte
	pos      int
	operands []Object
}

// NewParser creates a parser over data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse returns all operations in stream order. Malformed tokens stop parsing
// with an error; operations parsed up to that point are returned alongside it
// so callers can keep partial content.
func (p *Parser) Parse() ([]Operation, error) {
	var ops []Operation
	for {
		op, err := p.Next()
		if err != nil {
			return ops, err
		}
		if op == nil {
			return ops, nil
		}
		ops = append(ops, *op)
	}
}

// Next returns the next operation, or nil at end of stream.
func (p *Parser) Next() (*Operation, error) {
	for {
		p.skipSpaceAndComments()
		if p.pos >= len(p.data) {
			return nil, nil
		}

		c := p.data[p.pos]
		if isRegular(c) && !isNumberStart(c) {
			word := p.readWord()
			switch word {
			case "true":
				p.operands = append(p.operands, Bool(true))
				continue
			case "false":
				p.operands = append(p.operands, Bool(false))
				continue
			case "null":
				p.operands = append(p.operands, Null{})
				continue
			case "BI":
				return p.inlineImage()
			}
			op := &Operation{Operator: word, Operands: p.operands}
			p.operands = nil
			return op, nil
		}

		start := p.pos
		obj, err := p.parseObject()
		if err != nil {
			return nil, fmt.Errorf("at offset %d: %w", start, err)
		}
		p.operands = append(p.operands, obj)
	}
}

func (p *Parser) parseObject() (Object, error) {
	p.skipSpaceAndComments()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]
	switch {
	case isNumberStart(c):
		return p.parseNumber()
	case c == '(':
		return p.parseLiteralString()
	case c == '<' && p.peek(1) == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '/':
		return p.parseName(), nil
	case c == '[':
		return p.parseArray()
	case isRegular(c):
		switch word := p.readWord(); word {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		default:
			return nil, fmt.Errorf("unexpected keyword %q in operand", word)
		}
	default:
		p.pos++
		return nil, fmt.Errorf("unexpected character %q", c)
	}
}

func (p *Parser) parseNumber() (Object, error) {
	start := p.pos
	if c := p.data[p.pos]; c == '+' || c == '-' {
		p.pos++
	}
	real := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !real {
			real = true
			p.pos++
		} else {
			break
		}
	}
	s := string(p.data[start:p.pos])
	switch s {
	case "+", "-", ".", "-.", "+.":
		// producers write a lone sign for zero
		return Int(0), nil
	}
	if real {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q: %w", s, err)
		}
		return Real(v), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", s, err)
		}
		return Real(f), nil
	}
	return Int(v), nil
}

func (p *Parser) parseLiteralString() (Object, error) {
	p.pos++ // (
	var out bytes.Buffer
	depth := 1
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.pos >= len(p.data) {
				return nil, fmt.Errorf("unclosed string")
			}
			e := p.data[p.pos]
			p.pos++
			switch e {
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case 'b':
				out.WriteByte('\b')
			case 'f':
				out.WriteByte('\f')
			case '\r':
				if p.peek(0) == '\n' {
					p.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && p.pos < len(p.data); i++ {
					d := p.data[p.pos]
					if d < '0' || d > '7' {
						break
					}
					v = v*8 + int(d-'0')
					p.pos++
				}
				out.WriteByte(byte(v))
			default:
				out.WriteByte(e)
			}
		case '(':
			depth++
			out.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return String(out.Bytes()), nil
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}
	return nil, fmt.Errorf("unclosed string")
}

func (p *Parser) parseHexString() (Object, error) {
	p.pos++ // <
	var out []byte
	var hi byte
	half := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		if c == '>' {
			if half {
				out = append(out, hi<<4)
			}
			return String(out), nil
		}
		if isSpace(c) {
			continue
		}
		v, ok := hexValue(c)
		if !ok {
			return nil, fmt.Errorf("invalid hex digit %q", c)
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	return nil, fmt.Errorf("unclosed hex string")
}

func (p *Parser) parseName() Object {
	p.pos++ // /
	var out bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if !isRegular(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) {
			h1, ok1 := hexValue(p.data[p.pos+1])
			h2, ok2 := hexValue(p.data[p.pos+2])
			if ok1 && ok2 {
				out.WriteByte(h1<<4 | h2)
				p.pos += 3
				continue
			}
		}
		out.WriteByte(c)
		p.pos++
	}
	return Name(out.String())
}

func (p *Parser) parseArray() (Object, error) {
	p.pos++ // [
	arr := Array{}
	for {
		p.skipSpaceAndComments()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	p.pos += 2 // <<
	dict := Dict{}
	for {
		p.skipSpaceAndComments()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}
		if p.data[p.pos] == '>' && p.peek(1) == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name")
		}
		key := p.parseName().(Name)
		val, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		dict[string(key)] = val
	}
}

// inlineImage consumes BI <dict entries> ID <data> EI and returns it as a
// single operation. Image data is skipped.
func (p *Parser) inlineImage() (*Operation, error) {
	dict := Dict{}
	for {
		p.skipSpaceAndComments()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unterminated inline image")
		}
		if p.data[p.pos] != '/' {
			if word := p.readWord(); word != "ID" {
				return nil, fmt.Errorf("unexpected %q in inline image dictionary", word)
			}
			break
		}
		key := p.parseName().(Name)
		val, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		dict[string(key)] = val
	}

	// a single white-space byte follows ID
	p.pos++
	for p.pos < len(p.data) {
		i := bytes.Index(p.data[p.pos:], []byte("EI"))
		if i < 0 {
			p.pos = len(p.data)
			break
		}
		end := p.pos + i
		p.pos = end + 2
		if end > 0 && isSpace(p.data[end-1]) && (p.pos >= len(p.data) || !isRegular(p.data[p.pos])) {
			break
		}
	}

	p.operands = nil
	return &Operation{Operator: InlineImage, Operands: []Object{dict}}, nil
}

func (p *Parser) readWord() string {
	start := p.pos
	for p.pos < len(p.data) && isRegular(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

func (p *Parser) skipSpaceAndComments() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isSpace(c) {
			p.pos++
			continue
		}
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

func (p *Parser) peek(off int) byte {
	if p.pos+off < len(p.data) {
		return p.data[p.pos+off]
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isSpace(c) && !isDelimiter(c)
}

func isNumberStart(c byte) bool {
	return c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9')
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
