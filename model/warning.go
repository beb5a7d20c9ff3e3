package model

import "fmt"

// Warning is a non-fatal problem met while converting. Page is -1 when the
// warning is not tied to a page.
type Warning struct {
	Stage   string
	Page    int
	Message string
	Err     error
}

// Error implements error so a warning can be wrapped and inspected.
func (w Warning) Error() string {
	s := w.Stage + ": "
	if w.Page >= 0 {
		s += fmt.Sprintf("page %d: ", w.Page)
	}
	s += w.Message
	if w.Err != nil {
		s += ": " + w.Err.Error()
	}
	return s
}

func (w Warning) Unwrap() error { return w.Err }
