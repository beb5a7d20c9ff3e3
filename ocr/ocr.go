//go:build ocr

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Describer produces alt text from image bytes. It is not safe for
// concurrent use.
type Describer struct {
	client *gosseract.Client

	// MinConfidence drops words recognised with lower confidence.
	MinConfidence float64
}

// New creates a Describer for lang, a "+" separated list of Tesseract
// language codes such as "eng+fra". Close releases the engine.
func New(lang string) (*Describer, error) {
	c := gosseract.NewClient()
	if err := c.SetLanguage(languages(lang)...); err != nil {
		c.Close()
		return nil, fmt.Errorf("ocr: language %q: %w", lang, err)
	}
	// figures carry scattered labels rather than running text
	if err := c.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		c.Close()
		return nil, fmt.Errorf("ocr: page segmentation: %w", err)
	}
	return &Describer{client: c, MinConfidence: DefaultMinConfidence}, nil
}

// Close releases the engine. It is safe to call more than once.
func (d *Describer) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}

// AltText recognises the words in an encoded image (PNG, JPEG, TIFF) and
// returns the confident ones as a single line.
func (d *Describer) AltText(data []byte) (string, error) {
	words, err := d.Words(data)
	if err != nil {
		return "", err
	}
	return describe(words, d.MinConfidence), nil
}

// Words returns every word Tesseract finds in the image, in reading order.
func (d *Describer) Words(data []byte) ([]Word, error) {
	if d == nil || d.client == nil {
		return nil, ErrClosed
	}
	if err := d.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("ocr: set image: %w", err)
	}
	boxes, err := d.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	words := make([]Word, len(boxes))
	for i, b := range boxes {
		words[i] = Word{Text: b.Word, Confidence: b.Confidence}
	}
	return words, nil
}
