// Package ocr writes alt text for pictures recovered from a PDF by running
// Tesseract over them.
//
// Tesseract is linked through gosseract only when built with the "ocr"
// tag; otherwise [New] returns [ErrNotEnabled] and conversion proceeds
// without alt text:
//
//	go build -tags ocr ./cmd/pdfword
//
// The engine and its language data must be installed (tesseract-ocr on
// Debian, tesseract on Homebrew).
package ocr

import (
	"errors"
	"strings"
)

const (
	// DefaultLanguage is used when New is given no language.
	DefaultLanguage = "eng"

	// DefaultMinConfidence is the word confidence (0-100) below which
	// recognised words are left out of the alt text.
	DefaultMinConfidence = 50.0

	// MaxAltLength caps the alt text written for one picture, in runes.
	MaxAltLength = 250
)

// ErrNotEnabled is returned when the binary was built without the "ocr" tag.
var ErrNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// ErrClosed is returned by a Describer after Close.
var ErrClosed = errors.New("ocr: describer is closed")

// Word is one recognised word and Tesseract's confidence in it.
type Word struct {
	Text       string
	Confidence float64
}

// describe keeps the words at or above minConfidence and condenses them
// into one line.
func describe(words []Word, minConfidence float64) string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w.Confidence < minConfidence {
			continue
		}
		if t := strings.TrimSpace(w.Text); t != "" {
			kept = append(kept, t)
		}
	}
	return condense(strings.Join(kept, " "))
}

// condense joins text into one line and truncates it to MaxAltLength.
func condense(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	r := []rune(s)
	if len(r) <= MaxAltLength {
		return s
	}
	return strings.TrimSpace(string(r[:MaxAltLength-1])) + "…"
}

func languages(lang string) []string {
	var out []string
	for _, l := range strings.Split(lang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return []string{DefaultLanguage}
	}
	return out
}
