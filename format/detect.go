// Package format identifies the documents pdfword reads and writes by their
// content: the input PDF and the draft produced by a converter.
package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is a recognised document format.
type Format int

// Formats pdfword can recognise.
const (
	Unknown Format = iota
	PDF
	DOCX
	ODT
	XLSX
	PPTX
)

// ErrMismatch is returned by Expect when a file holds another format.
var ErrMismatch = errors.New("unexpected file format")

type info struct {
	name string
	ext  string
	mime string
	// main is the part that makes a ZIP container this format
	main string
}

var formats = [...]info{
	Unknown: {name: "Unknown"},
	PDF:     {name: "PDF", ext: ".pdf", mime: "application/pdf"},
	DOCX: {name: "DOCX", ext: ".docx", main: "word/document.xml",
		mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	ODT: {name: "ODT", ext: ".odt", main: "content.xml",
		mime: "application/vnd.oasis.opendocument.text"},
	XLSX: {name: "XLSX", ext: ".xlsx", main: "xl/workbook.xml",
		mime: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	PPTX: {name: "PPTX", ext: ".pptx", main: "ppt/presentation.xml",
		mime: "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
}

func (f Format) info() info {
	if f < 0 || int(f) >= len(formats) {
		return formats[Unknown]
	}
	return formats[f]
}

func (f Format) String() string { return f.info().name }

// Extension returns the usual file extension, with the dot.
func (f Format) Extension() string { return f.info().ext }

// MIMEType returns the media type, or "" for Unknown.
func (f Format) MIMEType() string { return f.info().mime }

// Detect guesses the format from a file name alone.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for i, fi := range formats {
		if fi.ext != "" && fi.ext == ext {
			return Format(i)
		}
	}
	return Unknown
}

// pdfHeaderWindow is how far into a file the %PDF- marker may start;
// readers tolerate leading garbage.
const pdfHeaderWindow = 1024

var (
	pdfMarker = []byte("%PDF-")
	zipMagic  = []byte("PK\x03\x04")
)

// DetectFromMagic checks leading bytes. ZIP containers return Unknown;
// DetectFromReader tells them apart.
func DetectFromMagic(head []byte) Format {
	if len(head) > pdfHeaderWindow {
		head = head[:pdfHeaderWindow]
	}
	if bytes.Contains(head, pdfMarker) {
		return PDF
	}
	return Unknown
}

// DetectFromReader inspects content, opening ZIP containers to find their
// main part.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	head := make([]byte, pdfHeaderWindow)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	head = head[:n]

	if bytes.HasPrefix(head, zipMagic) {
		zr, err := zip.NewReader(r, size)
		if err != nil {
			return Unknown, err
		}
		return container(zr), nil
	}
	return DetectFromMagic(head), nil
}

// container names the format of a ZIP package. OpenDocument is recognised
// by its mimetype entry, OOXML by its main part.
func container(zr *zip.Reader) Format {
	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	if mt, ok := parts["mimetype"]; ok {
		if rc, err := mt.Open(); err == nil {
			data, _ := io.ReadAll(io.LimitReader(rc, 256))
			rc.Close()
			if strings.TrimSpace(string(data)) == ODT.MIMEType() {
				return ODT
			}
		}
	}
	for _, f := range []Format{DOCX, XLSX, PPTX} {
		if _, ok := parts[f.info().main]; ok {
			return f
		}
	}
	return Unknown
}

// DetectFile detects the format of the file at path.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Unknown, err
	}
	return DetectFromReader(f, st.Size())
}

// Expect returns an error wrapping ErrMismatch unless the file at path
// holds format want.
func Expect(path string, want Format) error {
	got, err := DetectFile(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s is %s, not %s", ErrMismatch, filepath.Base(path), got, want)
	}
	return nil
}
