//go:build !ocr

package ocr

// Describer is unavailable without the "ocr" build tag.
type Describer struct {
	MinConfidence float64
}

// New always returns ErrNotEnabled.
func New(string) (*Describer, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op and safe on a nil Describer.
func (d *Describer) Close() error { return nil }

// AltText returns ErrNotEnabled.
func (d *Describer) AltText([]byte) (string, error) { return "", ErrNotEnabled }

// Words returns ErrNotEnabled.
func (d *Describer) Words([]byte) ([]Word, error) { return nil, ErrNotEnabled }
