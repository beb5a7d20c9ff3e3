package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/pdfword/model"
)

// FinderOptions controls ruling-based table detection.
type FinderOptions struct {
	// Tolerance for considering rulings aligned or touching (in points)
	Tolerance float64

	// Minimum ruling length to consider (in points)
	MinLineLength float64

	// Minimum number of grid positions for a region to count as a table.
	// A lone framed box is a text frame, not a table.
	MinCells int
}

// DefaultFinderOptions returns the default detection settings.
func DefaultFinderOptions() FinderOptions {
	return FinderOptions{
		Tolerance:     3.0,
		MinLineLength: 10.0,
		MinCells:      2,
	}
}

// Finder detects tables from the rulings painted on a page.
type Finder struct {
	opts FinderOptions
}

// NewFinder creates a finder. Zero option values fall back to the defaults.
func NewFinder(opts FinderOptions) *Finder {
	def := DefaultFinderOptions()
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.MinLineLength <= 0 {
		opts.MinLineLength = def.MinLineLength
	}
	if opts.MinCells <= 0 {
		opts.MinCells = def.MinCells
	}
	return &Finder{opts: opts}
}

// rule is an axis-aligned ruling. For horizontal rules pos is Y and lo/hi
// the X extent; for vertical rules pos is X and lo/hi the Y extent.
type rule struct {
	pos    float64
	lo, hi float64
}

func (r rule) covers(v, tol float64) bool {
	return v >= r.lo-tol && v <= r.hi+tol
}

// Find returns the tables formed by rulings, ordered top to bottom. Span
// text is assigned to the cell containing the span centre.
func (f *Finder) Find(rulings []model.Segment, spans []model.Span, page model.BBox) []model.TableGrid {
	hs, vs := f.classify(rulings, page)
	hs = f.mergeRules(hs)
	vs = f.mergeRules(vs)
	if len(hs) < 2 || len(vs) < 2 {
		return nil
	}

	var grids []model.TableGrid
	for _, region := range f.regions(hs, vs) {
		grid := f.buildGrid(region.hs, region.vs)
		if grid == nil {
			continue
		}
		assignText(grid, spans)
		grids = append(grids, *grid)
	}

	sort.SliceStable(grids, func(i, j int) bool {
		if grids[i].BBox.Top() != grids[j].BBox.Top() {
			return grids[i].BBox.Top() > grids[j].BBox.Top()
		}
		return grids[i].BBox.Left() < grids[j].BBox.Left()
	})
	return grids
}

// classify splits rulings into horizontal and vertical rules, dropping short
// and diagonal segments and clipping to the page.
func (f *Finder) classify(rulings []model.Segment, page model.BBox) (hs, vs []rule) {
	tol := f.opts.Tolerance
	clip := !page.IsEmpty()
	for _, s := range rulings {
		switch {
		case s.IsHorizontal(tol):
			r := rule{
				pos: (s.From.Y + s.To.Y) / 2,
				lo:  math.Min(s.From.X, s.To.X),
				hi:  math.Max(s.From.X, s.To.X),
			}
			if clip {
				r.lo, r.hi = math.Max(r.lo, page.Left()), math.Min(r.hi, page.Right())
			}
			if r.hi-r.lo >= f.opts.MinLineLength {
				hs = append(hs, r)
			}
		case s.IsVertical(tol):
			r := rule{
				pos: (s.From.X + s.To.X) / 2,
				lo:  math.Min(s.From.Y, s.To.Y),
				hi:  math.Max(s.From.Y, s.To.Y),
			}
			if clip {
				r.lo, r.hi = math.Max(r.lo, page.Bottom()), math.Min(r.hi, page.Top())
			}
			if r.hi-r.lo >= f.opts.MinLineLength {
				vs = append(vs, r)
			}
		}
	}
	return hs, vs
}

// mergeRules snaps aligned rules to a shared position and joins collinear
// pieces that touch or overlap, so a line drawn cell by cell becomes one rule.
func (f *Finder) mergeRules(rules []rule) []rule {
	if len(rules) == 0 {
		return nil
	}
	tol := f.opts.Tolerance
	sorted := make([]rule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].pos < sorted[j].pos })

	// group by position, averaging as the group grows
	var groups [][]rule
	var centers []float64
	for _, r := range sorted {
		n := len(groups)
		if n > 0 && r.pos-centers[n-1] <= tol {
			groups[n-1] = append(groups[n-1], r)
			k := float64(len(groups[n-1]))
			centers[n-1] = (centers[n-1]*(k-1) + r.pos) / k
			continue
		}
		groups = append(groups, []rule{r})
		centers = append(centers, r.pos)
	}

	var out []rule
	for i, g := range groups {
		sort.Slice(g, func(a, b int) bool { return g[a].lo < g[b].lo })
		cur := rule{pos: centers[i], lo: g[0].lo, hi: g[0].hi}
		for _, r := range g[1:] {
			if r.lo <= cur.hi+tol {
				cur.hi = math.Max(cur.hi, r.hi)
				continue
			}
			out = append(out, cur)
			cur = rule{pos: centers[i], lo: r.lo, hi: r.hi}
		}
		out = append(out, cur)
	}
	return out
}

type region struct {
	hs, vs []rule
}

// regions groups rules into connected sets: a horizontal and a vertical rule
// are connected when they cross or touch.
func (f *Finder) regions(hs, vs []rule) []region {
	tol := f.opts.Tolerance
	parent := make([]int, len(hs)+len(vs))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i, h := range hs {
		for j, v := range vs {
			if h.covers(v.pos, tol) && v.covers(h.pos, tol) {
				a, b := find(i), find(len(hs)+j)
				if a != b {
					parent[a] = b
				}
			}
		}
	}

	byRoot := make(map[int]*region)
	var order []int
	get := func(root int) *region {
		r, ok := byRoot[root]
		if !ok {
			r = &region{}
			byRoot[root] = r
			order = append(order, root)
		}
		return r
	}
	for i, h := range hs {
		r := get(find(i))
		r.hs = append(r.hs, h)
	}
	for j, v := range vs {
		r := get(find(len(hs) + j))
		r.vs = append(r.vs, v)
	}

	out := make([]region, 0, len(order))
	for _, root := range order {
		r := byRoot[root]
		if len(r.hs) >= 2 && len(r.vs) >= 2 {
			out = append(out, *r)
		}
	}
	return out
}

// buildGrid lays the region's rule positions out as a grid and grows merged
// cells wherever a boundary has no ruling.
func (f *Finder) buildGrid(hs, vs []rule) *model.TableGrid {
	tol := f.opts.Tolerance
	xs := clusterValues(positions(vs), tol)
	ys := clusterValues(positions(hs), tol)
	// rows run top to bottom
	for i, j := 0, len(ys)-1; i < j; i, j = i+1, j-1 {
		ys[i], ys[j] = ys[j], ys[i]
	}

	rows, cols := len(ys)-1, len(xs)-1
	if rows < 1 || cols < 1 || rows*cols < f.opts.MinCells {
		return nil
	}

	// vertical boundary i drawn along row r
	vDrawn := func(i, r int) bool {
		mid := (ys[r] + ys[r+1]) / 2
		for _, v := range vs {
			if math.Abs(v.pos-xs[i]) <= tol && v.covers(mid, 0) {
				return true
			}
		}
		return false
	}
	// horizontal boundary j drawn along column c
	hDrawn := func(j, c int) bool {
		mid := (xs[c] + xs[c+1]) / 2
		for _, h := range hs {
			if math.Abs(h.pos-ys[j]) <= tol && h.covers(mid, 0) {
				return true
			}
		}
		return false
	}

	grid := model.NewTableGrid(rows, cols)
	grid.Xs = xs
	grid.Ys = ys
	grid.BBox = model.NewBBoxFromRect(xs[0], ys[rows], xs[cols], ys[0])

	taken := make([][]bool, rows)
	for r := range taken {
		taken[r] = make([]bool, cols)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if taken[r][c] {
				continue
			}
			cs := 1
			for c+cs < cols && !taken[r][c+cs] && !vDrawn(c+cs, r) {
				cs++
			}
			rs := 1
		grow:
			for r+rs < rows {
				for k := c; k < c+cs; k++ {
					if taken[r+rs][k] || hDrawn(r+rs, k) {
						break grow
					}
					if k > c && vDrawn(k, r+rs) {
						break grow
					}
				}
				rs++
			}
			for dr := 0; dr < rs; dr++ {
				for dc := 0; dc < cs; dc++ {
					taken[r+dr][c+dc] = true
				}
			}
			_ = grid.Set(r, c, model.Cell{
				RowSpan: rs,
				ColSpan: cs,
				BBox:    grid.CellRect(r, c, rs, cs),
			})
		}
	}
	return grid
}

func positions(rules []rule) []float64 {
	out := make([]float64, len(rules))
	for i, r := range rules {
		out[i] = r.pos
	}
	return out
}

// clusterValues sorts values and merges runs closer than tol into their mean.
func clusterValues(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var out []float64
	sum, n := sorted[0], 1.0
	for _, v := range sorted[1:] {
		if v-sum/n <= tol {
			sum += v
			n++
			continue
		}
		out = append(out, sum/n)
		sum, n = v, 1
	}
	return append(out, sum/n)
}

// assignText fills cells with the spans whose centre they contain, in span
// order. Spans on the same baseline are joined with a space, new lines with
// a newline.
func assignText(grid *model.TableGrid, spans []model.Span) {
	type acc struct {
		sb       strings.Builder
		baseline float64
		size     float64
	}
	texts := make(map[*model.Cell]*acc)

	for _, s := range spans {
		cell := cellAt(grid, s.BBox.Center())
		if cell == nil {
			continue
		}
		a, ok := texts[cell]
		if !ok {
			a = &acc{}
			texts[cell] = a
		}
		text := s.Text
		if a.sb.Len() > 0 {
			tol := 0.5 * math.Max(math.Max(a.size, s.Size), 1)
			switch {
			case math.Abs(s.BBox.Bottom()-a.baseline) > tol:
				a.sb.WriteByte('\n')
				text = strings.TrimLeft(text, " ")
			case !strings.HasSuffix(a.sb.String(), " ") && !strings.HasPrefix(text, " "):
				a.sb.WriteByte(' ')
			}
		}
		a.sb.WriteString(text)
		a.baseline = s.BBox.Bottom()
		a.size = s.Size
	}

	for cell, a := range texts {
		lines := strings.Split(a.sb.String(), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimSpace(l)
		}
		cell.Text = strings.TrimSpace(strings.Join(lines, "\n"))
	}
}

// cellAt returns the anchored cell whose rectangle contains p.
func cellAt(grid *model.TableGrid, p model.Point) *model.Cell {
	row, col := -1, -1
	for r := 0; r < grid.Rows; r++ {
		if p.Y <= grid.Ys[r] && p.Y >= grid.Ys[r+1] {
			row = r
			break
		}
	}
	for c := 0; c < grid.Cols; c++ {
		if p.X >= grid.Xs[c] && p.X <= grid.Xs[c+1] {
			col = c
			break
		}
	}
	if row < 0 || col < 0 {
		return nil
	}
	for r := row; r >= 0; r-- {
		for c := col; c >= 0; c-- {
			cell := grid.At(r, c)
			if cell != nil && r+cell.RowSpan > row && c+cell.ColSpan > col {
				return cell
			}
		}
	}
	return nil
}
