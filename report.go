package pdfword

import (
	"time"

	"github.com/tsawler/pdfword/convert"
	"github.com/tsawler/pdfword/images"
	"github.com/tsawler/pdfword/style"
)

// Report summarises one conversion.
type Report struct {
	RunID     string `yaml:"run_id"`
	Input     string `yaml:"input"`
	Output    string `yaml:"output,omitempty"`
	Converter string `yaml:"converter,omitempty"`

	// Draft is set when the draft came from a hybrid converter.
	Draft *DraftReport `yaml:"draft,omitempty"`

	Pages           int `yaml:"pages"`
	DraftParagraphs int `yaml:"draft_paragraphs"`
	StyleRecords    int `yaml:"style_records"`

	TablesFound  int `yaml:"tables_found"`
	TablesBuilt  int `yaml:"tables_built"`
	CellsMerged  int `yaml:"cells_merged"`
	MergesFailed int `yaml:"merges_failed"`

	ImagesFound    int `yaml:"images_found"`
	ImagesInserted int `yaml:"images_inserted"`
	ImagesFailed   int `yaml:"images_failed"`

	Style StyleReport `yaml:"style"`

	Headers int `yaml:"headers"`
	Footers int `yaml:"footers"`

	UploadLocation string `yaml:"upload_location,omitempty"`

	Warnings int           `yaml:"warnings"`
	Duration time.Duration `yaml:"duration"`
}

// StyleReport mirrors style.Stats with serialisation tags.
type StyleReport struct {
	Applied            int `yaml:"applied"`
	Failed             int `yaml:"failed"`
	DroppedRecords     int `yaml:"dropped_records"`
	UnstyledParagraphs int `yaml:"unstyled_paragraphs"`
}

// DraftReport mirrors convert.HybridStats. The counters belong to the
// converter, so a hybrid shared across runs reports its running totals.
type DraftReport struct {
	Attempts        int `yaml:"attempts"`
	PrimarySuccess  int `yaml:"primary_success"`
	FallbackSuccess int `yaml:"fallback_success"`
	Failures        int `yaml:"failures"`
}

func (r *Report) addDraft(st convert.HybridStats) {
	r.Draft = &DraftReport{
		Attempts:        st.Attempts,
		PrimarySuccess:  st.PrimarySuccess,
		FallbackSuccess: st.FallbackSuccess,
		Failures:        st.Failures,
	}
}

func (r *Report) addStyle(st style.Stats) {
	r.Style = StyleReport{
		Applied:            st.Applied,
		Failed:             st.Failed,
		DroppedRecords:     st.DroppedRecords,
		UnstyledParagraphs: st.UnstyledParagraphs,
	}
}

func (r *Report) addImages(st images.Stats) {
	r.ImagesFound = st.Records
	r.ImagesInserted = st.Inserted
	r.ImagesFailed = len(st.Failures)
}
