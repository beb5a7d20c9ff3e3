package pdfword

import (
	"errors"

	"github.com/tsawler/pdfword/convert"
)

// Fatal conversion errors. Everything else is reported as a Warning.
var (
	ErrSourceUnreadable     = errors.New("source PDF unreadable")
	ErrConverterUnavailable = convert.ErrConverterUnavailable
	ErrNoDraft              = errors.New("draft conversion failed")
	ErrSaveFailed           = errors.New("saving output failed")
)
