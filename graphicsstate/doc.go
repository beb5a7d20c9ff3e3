// Package graphicsstate tracks the PDF graphics state while a content stream
// is interpreted.
//
// [Machine] holds the current transformation matrix, colors and text state
// together with the q/Q save stack. [Path] collects path construction
// operators and turns painted paths into horizontal and vertical rulings,
// the raw material for table detection.
package graphicsstate
