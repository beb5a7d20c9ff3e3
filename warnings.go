package pdfword

import (
	"strings"

	"github.com/tsawler/pdfword/model"
)

// Warning is a non-fatal problem met during conversion.
type Warning = model.Warning

// Stage names used in warnings raised by the pipeline itself.
const (
	StageTables  = "tables"
	StageImages  = "images"
	StageHeaders = "headers"
	StageUpload  = "upload"
)

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	var sb strings.Builder
	for i, w := range warnings {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(w.Error())
	}
	return sb.String()
}
