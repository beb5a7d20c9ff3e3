package graphicsstate

import (
	"fmt"
	"math"

	"github.com/tsawler/pdfword/model"
)

// State is the subset of the PDF graphics state needed for layout
// extraction.
type State struct {
	CTM         model.Matrix
	LineWidth   float64
	FillColor   model.Color
	StrokeColor model.Color
	Text        TextState
}

// TextState holds the text parameters set by the T* family of operators.
type TextState struct {
	Font        string // resource name of the current font
	FontSize    float64
	CharSpacing float64
	WordSpacing float64
	Scale       float64 // horizontal scaling, percent
	Leading     float64
	Rise        float64
	RenderMode  int

	Matrix     model.Matrix
	LineMatrix model.Matrix
}

// Machine is a graphics state with its q/Q save stack.
type Machine struct {
	State
	stack []State
}

// NewMachine returns a machine in the initial PDF graphics state.
func NewMachine() *Machine {
	return &Machine{State: State{
		CTM:       model.Identity(),
		LineWidth: 1,
		Text: TextState{
			Scale:      100,
			Matrix:     model.Identity(),
			LineMatrix: model.Identity(),
		},
	}}
}

// Save pushes a copy of the current state (q).
func (m *Machine) Save() {
	m.stack = append(m.stack, m.State)
}

// Restore pops the last saved state (Q).
func (m *Machine) Restore() error {
	if len(m.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}
	m.State = m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return nil
}

// Depth returns the number of saved states.
func (m *Machine) Depth() int {
	return len(m.stack)
}

// Concat premultiplies the CTM (cm).
func (m *Machine) Concat(mat model.Matrix) {
	m.CTM = mat.Multiply(m.CTM)
}

// BeginText resets the text matrices (BT).
func (m *Machine) BeginText() {
	m.Text.Matrix = model.Identity()
	m.Text.LineMatrix = model.Identity()
}

// SetTextMatrix sets both text matrices (Tm).
func (m *Machine) SetTextMatrix(mat model.Matrix) {
	m.Text.Matrix = mat
	m.Text.LineMatrix = mat
}

// MoveText starts a new line offset from the start of the current one (Td).
func (m *Machine) MoveText(tx, ty float64) {
	m.Text.LineMatrix = model.Translate(tx, ty).Multiply(m.Text.LineMatrix)
	m.Text.Matrix = m.Text.LineMatrix
}

// MoveTextSetLeading is Td with leading set to -ty (TD).
func (m *Machine) MoveTextSetLeading(tx, ty float64) {
	m.Text.Leading = -ty
	m.MoveText(tx, ty)
}

// NextLine moves to the start of the next line (T*).
func (m *Machine) NextLine() {
	m.MoveText(0, -m.Text.Leading)
}

// Advance moves the text matrix horizontally by tx unscaled text space units.
func (m *Machine) Advance(tx float64) {
	m.Text.Matrix = model.Translate(tx, 0).Multiply(m.Text.Matrix)
}

// GlyphAdvance returns the horizontal displacement for one glyph of width w
// (glyph space, thousandths of an em).
func (m *Machine) GlyphAdvance(w float64, isSpace bool) float64 {
	tx := w/1000*m.Text.FontSize + m.Text.CharSpacing
	if isSpace {
		tx += m.Text.WordSpacing
	}
	return tx * m.Text.Scale / 100
}

// TextRenderingMatrix returns Trm = [Tfs×Th 0 0 Tfs 0 Trise] × Tm × CTM.
func (m *Machine) TextRenderingMatrix() model.Matrix {
	t := m.Text
	params := model.Matrix{t.FontSize * t.Scale / 100, 0, 0, t.FontSize, 0, t.Rise}
	return params.Multiply(t.Matrix).Multiply(m.CTM)
}

// EffectiveFontSize returns the rendered font size in user space points.
func (m *Machine) EffectiveFontSize() float64 {
	size := m.TextRenderingMatrix().ScaleY()
	return math.Round(size*100) / 100
}
