package graphicsstate

import (
	"math"

	"github.com/tsawler/pdfword/model"
)

// Path accumulates the current path in device space. Points are transformed
// by the CTM when added, as the PDF path operators require.
type Path struct {
	subpaths [][]model.Point
	closed   []bool
	rects    []model.BBox
}

// MoveTo starts a new subpath (m).
func (p *Path) MoveTo(ctm model.Matrix, x, y float64) {
	p.subpaths = append(p.subpaths, []model.Point{ctm.Transform(model.Point{X: x, Y: y})})
	p.closed = append(p.closed, false)
}

// LineTo appends a straight segment (l). Without a current point it acts as
// MoveTo.
func (p *Path) LineTo(ctm model.Matrix, x, y float64) {
	if len(p.subpaths) == 0 {
		p.MoveTo(ctm, x, y)
		return
	}
	last := len(p.subpaths) - 1
	p.subpaths[last] = append(p.subpaths[last], ctm.Transform(model.Point{X: x, Y: y}))
}

// CurveTo appends a Bézier curve (c, v, y). Curves are never table rulings,
// so only the end point is kept to track the current point.
func (p *Path) CurveTo(ctm model.Matrix, x, y float64) {
	if len(p.subpaths) == 0 {
		p.MoveTo(ctm, x, y)
		return
	}
	// break the subpath so the curve does not produce a straight ruling
	p.MoveTo(ctm, x, y)
}

// Close closes the current subpath (h).
func (p *Path) Close() {
	if len(p.closed) > 0 {
		p.closed[len(p.closed)-1] = true
	}
}

// Rect appends a closed rectangle subpath (re).
func (p *Path) Rect(ctm model.Matrix, x, y, w, h float64) {
	r := model.NewBBoxFromRect(x, y, x+w, y+h)
	if isAxisAligned(ctm) {
		p.rects = append(p.rects, ctm.TransformRect(r))
		return
	}
	p.MoveTo(ctm, x, y)
	p.LineTo(ctm, x+w, y)
	p.LineTo(ctm, x+w, y+h)
	p.LineTo(ctm, x, y+h)
	p.Close()
}

// Reset discards the path (after any painting operator).
func (p *Path) Reset() {
	p.subpaths = p.subpaths[:0]
	p.closed = p.closed[:0]
	p.rects = p.rects[:0]
}

// RulingOptions control which painted shapes count as table rulings.
type RulingOptions struct {
	// MaxThickness is the largest extent a filled rectangle may have in its
	// short direction to be treated as a single line.
	MaxThickness float64
	// Tolerance for horizontal/vertical classification.
	Tolerance float64
}

// DefaultRulingOptions returns the thresholds used for ordinary documents.
func DefaultRulingOptions() RulingOptions {
	return RulingOptions{MaxThickness: 3, Tolerance: 1}
}

// Rulings converts the painted path into horizontal and vertical segments.
// Stroked paths contribute every straight axis-aligned segment; rectangles
// contribute their four edges, or their centre line when thinner than
// MaxThickness. Filled non-rectangular paths contribute nothing.
func (p *Path) Rulings(stroked bool, opts RulingOptions) []model.Segment {
	var out []model.Segment
	for _, r := range p.rects {
		out = append(out, rectRulings(r, opts)...)
	}
	if !stroked {
		return out
	}
	for i, sp := range p.subpaths {
		pts := sp
		if p.closed[i] && len(sp) > 2 {
			pts = append(append([]model.Point(nil), sp...), sp[0])
		}
		for j := 1; j < len(pts); j++ {
			s := model.Segment{From: pts[j-1], To: pts[j]}
			if s.Length() == 0 {
				continue
			}
			if s.IsHorizontal(opts.Tolerance) || s.IsVertical(opts.Tolerance) {
				out = append(out, s)
			}
		}
	}
	return out
}

func rectRulings(r model.BBox, opts RulingOptions) []model.Segment {
	switch {
	case r.Width <= 0 && r.Height <= 0:
		return nil
	case r.Height <= opts.MaxThickness && r.Width > r.Height:
		y := r.Y + r.Height/2
		return []model.Segment{{From: model.Point{X: r.Left(), Y: y}, To: model.Point{X: r.Right(), Y: y}}}
	case r.Width <= opts.MaxThickness && r.Height > r.Width:
		x := r.X + r.Width/2
		return []model.Segment{{From: model.Point{X: x, Y: r.Bottom()}, To: model.Point{X: x, Y: r.Top()}}}
	}
	bl := model.Point{X: r.Left(), Y: r.Bottom()}
	br := model.Point{X: r.Right(), Y: r.Bottom()}
	tl := model.Point{X: r.Left(), Y: r.Top()}
	tr := model.Point{X: r.Right(), Y: r.Top()}
	return []model.Segment{
		{From: bl, To: br},
		{From: tl, To: tr},
		{From: bl, To: tl},
		{From: br, To: tr},
	}
}

func isAxisAligned(m model.Matrix) bool {
	const eps = 1e-9
	return (math.Abs(m[1]) < eps && math.Abs(m[2]) < eps) ||
		(math.Abs(m[0]) < eps && math.Abs(m[3]) < eps)
}
