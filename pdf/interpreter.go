package pdf

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pdfword/contentstream"
	"github.com/tsawler/pdfword/font"
	"github.com/tsawler/pdfword/graphicsstate"
	"github.com/tsawler/pdfword/model"
)

const maxFormDepth = 8

// textRun is the text shown by one string operand, positioned on the page.
type textRun struct {
	text     string
	font     string
	size     float64
	color    model.Color
	flags    model.Flags
	bbox     model.BBox
	baseline float64
}

type interpreter struct {
	doc  *Document
	page int

	gs   *graphicsstate.Machine
	path graphicsstate.Path
	font *font.Font

	runs     []textRun
	images   []model.ImageBlock
	rulings  []model.Segment
	warnings []error
}

func newInterpreter(d *Document, page int) *interpreter {
	return &interpreter{doc: d, page: page, gs: graphicsstate.NewMachine()}
}

// run interprets a content stream with the given resources. Operator errors
// are recorded and skipped; a parse error ends the stream but keeps what was
// read before it.
func (in *interpreter) run(content []byte, res types.Dict, depth int) {
	p := contentstream.NewParser(content)
	for {
		op, err := p.Next()
		if err != nil {
			in.warnings = append(in.warnings, fmt.Errorf("content stream: %w", err))
			return
		}
		if op == nil {
			return
		}
		if err := in.apply(op, res, depth); err != nil {
			in.warnings = append(in.warnings, fmt.Errorf("%s: %w", op.Operator, err))
		}
	}
}

func (in *interpreter) apply(op *contentstream.Operation, res types.Dict, depth int) error {
	args, numeric := contentstream.Numbers(op.Operands)
	gs := in.gs

	switch op.Operator {
	case "q":
		gs.Save()
	case "Q":
		return gs.Restore()
	case "cm":
		if numeric && len(args) == 6 {
			gs.Concat(model.Matrix{args[0], args[1], args[2], args[3], args[4], args[5]})
		}
	case "w":
		if numeric && len(args) == 1 {
			gs.LineWidth = args[0]
		}

	case "g":
		if numeric && len(args) == 1 {
			gs.FillColor = model.ColorFromFloats(args[0], args[0], args[0])
		}
	case "rg":
		if numeric && len(args) == 3 {
			gs.FillColor = model.ColorFromFloats(args[0], args[1], args[2])
		}
	case "k":
		if numeric && len(args) == 4 {
			gs.FillColor = model.ColorFromCMYK(args[0], args[1], args[2], args[3])
		}
	case "sc", "scn":
		gs.FillColor = colorFromComponents(op.Operands, gs.FillColor)
	case "G":
		if numeric && len(args) == 1 {
			gs.StrokeColor = model.ColorFromFloats(args[0], args[0], args[0])
		}
	case "RG":
		if numeric && len(args) == 3 {
			gs.StrokeColor = model.ColorFromFloats(args[0], args[1], args[2])
		}
	case "K":
		if numeric && len(args) == 4 {
			gs.StrokeColor = model.ColorFromCMYK(args[0], args[1], args[2], args[3])
		}
	case "SC", "SCN":
		gs.StrokeColor = colorFromComponents(op.Operands, gs.StrokeColor)
	case "cs":
		gs.FillColor = model.Black
	case "CS":
		gs.StrokeColor = model.Black

	case "m":
		if numeric && len(args) == 2 {
			in.path.MoveTo(gs.CTM, args[0], args[1])
		}
	case "l":
		if numeric && len(args) == 2 {
			in.path.LineTo(gs.CTM, args[0], args[1])
		}
	case "c", "v", "y":
		if numeric && len(args) >= 4 {
			in.path.CurveTo(gs.CTM, args[len(args)-2], args[len(args)-1])
		}
	case "h":
		in.path.Close()
	case "re":
		if numeric && len(args) == 4 {
			in.path.Rect(gs.CTM, args[0], args[1], args[2], args[3])
		}
	case "S", "s":
		if op.Operator == "s" {
			in.path.Close()
		}
		in.paint(true)
	case "f", "F", "f*":
		in.paint(false)
	case "B", "B*", "b", "b*":
		in.path.Close()
		in.paint(true)
	case "n":
		in.path.Reset()

	case "BT":
		gs.BeginText()
	case "ET":
	case "Tf":
		if len(op.Operands) == 2 {
			name, _ := op.Operands[0].(contentstream.Name)
			size, _ := contentstream.Number(op.Operands[1])
			gs.Text.Font = string(name)
			gs.Text.FontSize = size
			in.font = in.doc.fontFor(lookup(in.doc.dict(lookup(res, "Font")), string(name)))
		}
	case "Tc":
		if numeric && len(args) == 1 {
			gs.Text.CharSpacing = args[0]
		}
	case "Tw":
		if numeric && len(args) == 1 {
			gs.Text.WordSpacing = args[0]
		}
	case "Tz":
		if numeric && len(args) == 1 {
			gs.Text.Scale = args[0]
		}
	case "TL":
		if numeric && len(args) == 1 {
			gs.Text.Leading = args[0]
		}
	case "Ts":
		if numeric && len(args) == 1 {
			gs.Text.Rise = args[0]
		}
	case "Tr":
		if numeric && len(args) == 1 {
			gs.Text.RenderMode = int(args[0])
		}
	case "Tm":
		if numeric && len(args) == 6 {
			gs.SetTextMatrix(model.Matrix{args[0], args[1], args[2], args[3], args[4], args[5]})
		}
	case "Td":
		if numeric && len(args) == 2 {
			gs.MoveText(args[0], args[1])
		}
	case "TD":
		if numeric && len(args) == 2 {
			gs.MoveTextSetLeading(args[0], args[1])
		}
	case "T*":
		gs.NextLine()

	case "Tj":
		if len(op.Operands) == 1 {
			if s, ok := op.Operands[0].(contentstream.String); ok {
				in.show(s)
			}
		}
	case "'":
		gs.NextLine()
		if len(op.Operands) == 1 {
			if s, ok := op.Operands[0].(contentstream.String); ok {
				in.show(s)
			}
		}
	case "\"":
		if len(op.Operands) == 3 {
			if aw, ok := contentstream.Number(op.Operands[0]); ok {
				gs.Text.WordSpacing = aw
			}
			if ac, ok := contentstream.Number(op.Operands[1]); ok {
				gs.Text.CharSpacing = ac
			}
			gs.NextLine()
			if s, ok := op.Operands[2].(contentstream.String); ok {
				in.show(s)
			}
		}
	case "TJ":
		if len(op.Operands) == 1 {
			if arr, ok := op.Operands[0].(contentstream.Array); ok {
				in.showArray(arr)
			}
		}

	case "Do":
		if len(op.Operands) == 1 {
			if name, ok := op.Operands[0].(contentstream.Name); ok {
				return in.doXObject(string(name), res, depth)
			}
		}
	}
	return nil
}

func (in *interpreter) paint(stroked bool) {
	in.rulings = append(in.rulings, in.path.Rulings(stroked, graphicsstate.DefaultRulingOptions())...)
	in.path.Reset()
}

func (in *interpreter) show(s []byte) {
	if in.font == nil {
		in.font = font.New(font.Spec{BaseFont: "Helvetica", Subtype: "Type1"})
	}
	gs := in.gs
	start := gs.TextRenderingMatrix()
	size := gs.EffectiveFontSize()

	var sb strings.Builder
	for _, g := range in.font.Decode(s) {
		sb.WriteString(g.Text)
		gs.Advance(gs.GlyphAdvance(g.Width*in.font.WidthScale(), g.Space))
	}
	end := gs.TextRenderingMatrix()

	text := norm.NFC.String(sb.String())
	if text == "" {
		return
	}

	x0, x1 := start[4], end[4]
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	baseline := start[5]
	in.runs = append(in.runs, textRun{
		text:     text,
		font:     in.font.Name(),
		size:     size,
		color:    gs.FillColor,
		flags:    in.font.Flags(),
		bbox:     model.NewBBoxFromRect(x0, baseline-0.2*size, x1, baseline+0.8*size),
		baseline: baseline,
	})
}

func (in *interpreter) showArray(arr contentstream.Array) {
	gs := in.gs
	for _, item := range arr {
		if s, ok := item.(contentstream.String); ok {
			in.show(s)
			continue
		}
		if adj, ok := contentstream.Number(item); ok {
			gs.Advance(-adj / 1000 * gs.Text.FontSize * gs.Text.Scale / 100)
		}
	}
}

func (in *interpreter) doXObject(name string, res types.Dict, depth int) (err error) {
	entry := lookup(in.doc.dict(lookup(res, "XObject")), name)
	if entry == nil {
		return fmt.Errorf("unknown XObject %q", name)
	}
	xd := in.doc.dict(entry)
	switch in.doc.name(lookup(xd, "Subtype")) {
	case "Image":
		xref, ok := objNr(entry)
		if !ok {
			return fmt.Errorf("image %q is not an indirect object", name)
		}
		in.images = append(in.images, model.ImageBlock{
			BBox:   in.gs.CTM.TransformRect(model.NewBBox(0, 0, 1, 1)),
			Width:  in.doc.integer(lookup(xd, "Width"), 0),
			Height: in.doc.integer(lookup(xd, "Height"), 0),
			XRef:   xref,
		})
	case "Form":
		if depth >= maxFormDepth {
			return fmt.Errorf("form %q nested too deeply", name)
		}
		content, _, serr := in.doc.stream(entry)
		if serr != nil {
			return fmt.Errorf("form %q: %w", name, serr)
		}
		formRes := in.doc.dict(lookup(xd, "Resources"))
		if formRes == nil {
			formRes = res
		}

		base := in.gs.Depth()
		savedFont := in.font
		in.gs.Save()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("form %q: %v", name, r)
			}
			// unbalanced q inside the form must not leak out
			for in.gs.Depth() > base {
				_ = in.gs.Restore()
			}
			in.font = savedFont
		}()

		if m := in.doc.numbers(lookup(xd, "Matrix")); len(m) == 6 {
			in.gs.Concat(model.Matrix{m[0], m[1], m[2], m[3], m[4], m[5]})
		}
		in.run(content, formRes, depth+1)
	}
	return nil
}

func colorFromComponents(ops []contentstream.Object, current model.Color) model.Color {
	var v []float64
	for _, o := range ops {
		if f, ok := contentstream.Number(o); ok {
			v = append(v, f)
		}
	}
	switch len(v) {
	case 1:
		return model.ColorFromFloats(v[0], v[0], v[0])
	case 3:
		return model.ColorFromFloats(v[0], v[1], v[2])
	case 4:
		return model.ColorFromCMYK(v[0], v[1], v[2], v[3])
	}
	return current
}
