package tables

import (
	"testing"

	"github.com/tsawler/pdfword/model"
)

// Helper to create horizontal rulings
func hline(y, x1, x2 float64) model.Segment {
	return model.Segment{From: model.Point{X: x1, Y: y}, To: model.Point{X: x2, Y: y}}
}

// Helper to create vertical rulings
func vline(x, y1, y2 float64) model.Segment {
	return model.Segment{From: model.Point{X: x, Y: y1}, To: model.Point{X: x, Y: y2}}
}

// span centred on (x, y)
func span(text string, x, y float64) model.Span {
	return model.Span{Text: text, Size: 10, BBox: model.NewBBox(x-5, y-4, 10, 8)}
}

var page = model.NewBBox(0, 0, 612, 792)

func simpleGrid() []model.Segment {
	return []model.Segment{
		hline(100, 0, 200), hline(50, 0, 200), hline(0, 0, 200),
		vline(0, 0, 100), vline(100, 0, 100), vline(200, 0, 100),
	}
}

func cellText(t *testing.T, g model.TableGrid, r, c int) string {
	t.Helper()
	cell := g.At(r, c)
	if cell == nil {
		t.Fatalf("cell (%d,%d) is nil", r, c)
	}
	return cell.Text
}

func TestFinder_SimpleGrid(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	spans := []model.Span{
		span("A", 50, 75), span("B", 150, 75),
		span("C", 50, 25), span("D", 150, 25),
	}

	grids := f.Find(simpleGrid(), spans, page)
	if len(grids) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(grids))
	}
	g := grids[0]
	if g.Rows != 2 || g.Cols != 2 {
		t.Fatalf("Expected 2x2, got %dx%d", g.Rows, g.Cols)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("invalid grid: %v", err)
	}

	want := [][]string{{"A", "B"}, {"C", "D"}}
	for r := range want {
		for c := range want[r] {
			if got := cellText(t, g, r, c); got != want[r][c] {
				t.Errorf("cell (%d,%d) = %q, want %q", r, c, got, want[r][c])
			}
			if cell := g.At(r, c); cell.RowSpan != 1 || cell.ColSpan != 1 {
				t.Errorf("cell (%d,%d) span %dx%d, want 1x1", r, c, cell.RowSpan, cell.ColSpan)
			}
		}
	}
	if g.BBox != model.NewBBox(0, 0, 200, 100) {
		t.Errorf("unexpected bbox %+v", g.BBox)
	}
}

func TestFinder_LargerGrid(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	var rulings []model.Segment
	for _, y := range []float64{300, 200, 100, 0} {
		rulings = append(rulings, hline(y, 0, 400))
	}
	for _, x := range []float64{0, 100, 200, 300, 400} {
		rulings = append(rulings, vline(x, 0, 300))
	}

	grids := f.Find(rulings, nil, page)
	if len(grids) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(grids))
	}
	if grids[0].Rows != 3 || grids[0].Cols != 4 {
		t.Errorf("Expected 3x4, got %dx%d", grids[0].Rows, grids[0].Cols)
	}
}

func TestFinder_CellByCellRulings(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	var rulings []model.Segment
	// every cell stroked as its own rectangle, shared edges drawn twice
	for _, y := range []float64{100, 50} {
		for _, x := range []float64{0, 100} {
			rulings = append(rulings,
				hline(y, x, x+100), hline(y-50, x, x+100),
				vline(x, y-50, y), vline(x+100, y-50, y))
		}
	}

	grids := f.Find(rulings, nil, page)
	if len(grids) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(grids))
	}
	if grids[0].Rows != 2 || grids[0].Cols != 2 {
		t.Errorf("Expected 2x2, got %dx%d", grids[0].Rows, grids[0].Cols)
	}
}

func TestFinder_SlightlyMisaligned(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	rulings := []model.Segment{
		hline(100, 0, 100), hline(101, 100, 200),
		hline(50, 0, 200), hline(0, 0, 200),
		vline(0, 0, 100), vline(101.5, 0, 100), vline(200, 0, 100),
	}
	grids := f.Find(rulings, nil, page)
	if len(grids) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(grids))
	}
	if grids[0].Rows != 2 || grids[0].Cols != 2 {
		t.Errorf("Expected 2x2, got %dx%d", grids[0].Rows, grids[0].Cols)
	}
}

func TestFinder_ColumnSpan(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	rulings := []model.Segment{
		hline(100, 0, 200), hline(50, 0, 200), hline(0, 0, 200),
		vline(0, 0, 100), vline(200, 0, 100),
		vline(100, 0, 50), // no divider in the header row
	}
	spans := []model.Span{span("Header", 100, 75), span("C", 50, 25), span("D", 150, 25)}

	g := f.Find(rulings, spans, page)[0]
	if err := g.Validate(); err != nil {
		t.Fatalf("invalid grid: %v", err)
	}
	head := g.At(0, 0)
	if head == nil || head.ColSpan != 2 || head.RowSpan != 1 {
		t.Fatalf("Expected header to span 2 columns, got %+v", head)
	}
	if g.At(0, 1) != nil {
		t.Errorf("Expected covered position (0,1) to be nil")
	}
	if head.Text != "Header" {
		t.Errorf("header text = %q", head.Text)
	}
	if got := cellText(t, g, 1, 1); got != "D" {
		t.Errorf("cell (1,1) = %q, want D", got)
	}
}

func TestFinder_RowSpan(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	rulings := []model.Segment{
		hline(100, 0, 200), hline(0, 0, 200),
		hline(50, 100, 200), // only the right column is split
		vline(0, 0, 100), vline(100, 0, 100), vline(200, 0, 100),
	}
	spans := []model.Span{span("Tall", 50, 50), span("B", 150, 75), span("D", 150, 25)}

	g := f.Find(rulings, spans, page)[0]
	if err := g.Validate(); err != nil {
		t.Fatalf("invalid grid: %v", err)
	}
	tall := g.At(0, 0)
	if tall == nil || tall.RowSpan != 2 || tall.ColSpan != 1 {
		t.Fatalf("Expected (0,0) to span 2 rows, got %+v", tall)
	}
	if g.At(1, 0) != nil {
		t.Errorf("Expected covered position (1,0) to be nil")
	}
	if tall.Text != "Tall" {
		t.Errorf("tall text = %q", tall.Text)
	}
}

func TestFinder_CellTextJoining(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	spans := []model.Span{
		span("first", 30, 80), span("part", 70, 80), // same line
		span("second", 50, 65), // next line
	}
	g := f.Find(simpleGrid(), spans, page)[0]
	if got := cellText(t, g, 0, 0); got != "first part\nsecond" {
		t.Errorf("cell text = %q", got)
	}
	if got := cellText(t, g, 1, 1); got != "" {
		t.Errorf("empty cell text = %q", got)
	}
}

func TestFinder_SpansOutsideIgnored(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	g := f.Find(simpleGrid(), []model.Span{span("outside", 400, 400)}, page)[0]
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if got := cellText(t, g, r, c); got != "" {
				t.Errorf("cell (%d,%d) = %q, want empty", r, c, got)
			}
		}
	}
}

func TestFinder_NotATable(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	tests := []struct {
		name    string
		rulings []model.Segment
	}{
		{"no rulings", nil},
		{"only horizontals", []model.Segment{hline(100, 0, 200), hline(50, 0, 200)}},
		{"single box", []model.Segment{
			hline(100, 0, 200), hline(0, 0, 200), vline(0, 0, 100), vline(200, 0, 100),
		}},
		{"short segments", []model.Segment{
			hline(100, 0, 5), hline(95, 0, 5), vline(0, 95, 100), vline(5, 95, 100),
		}},
		{"disjoint lines", []model.Segment{
			hline(100, 0, 50), hline(90, 0, 50), vline(300, 0, 50), vline(320, 0, 50),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if grids := f.Find(tt.rulings, nil, page); len(grids) != 0 {
				t.Errorf("Expected no tables, got %d", len(grids))
			}
		})
	}
}

func TestFinder_TwoTablesTopFirst(t *testing.T) {
	f := NewFinder(DefaultFinderOptions())
	var rulings []model.Segment
	// lower table first in stream order
	for _, base := range []float64{200, 600} {
		rulings = append(rulings,
			hline(base+100, 0, 200), hline(base+50, 0, 200), hline(base, 0, 200),
			vline(0, base, base+100), vline(200, base, base+100))
	}
	grids := f.Find(rulings, nil, page)
	if len(grids) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(grids))
	}
	if grids[0].BBox.Top() != 700 || grids[1].BBox.Top() != 300 {
		t.Errorf("tables out of order: %v then %v", grids[0].BBox, grids[1].BBox)
	}
}

func TestNewFinder_Defaults(t *testing.T) {
	f := NewFinder(FinderOptions{})
	if f.opts != DefaultFinderOptions() {
		t.Errorf("Expected defaults, got %+v", f.opts)
	}
}

func TestClusterValues(t *testing.T) {
	got := clusterValues([]float64{10, 0, 1, 11, 50}, 3)
	want := []float64{0.5, 10.5, 50}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
