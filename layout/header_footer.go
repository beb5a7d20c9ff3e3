package layout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/pdfword/docx"
	"github.com/tsawler/pdfword/model"
)

// HeaderFooterRegion represents a detected header or footer region
type HeaderFooterRegion struct {
	// Type indicates if this is a header or footer
	Type RegionType

	// BBox is the bounding box of the region, Y measured from the page edge
	// the region belongs to
	BBox model.BBox

	// Text is the text of the first occurrence
	Text string

	// Template is Text with the digit runs that change between pages
	// replaced by '#'
	Template string

	// IsPageNumber indicates if this region contains page numbers
	IsPageNumber bool

	// Confidence is the detection confidence (0.0 to 1.0)
	Confidence float64

	// PageIndices lists which pages have this header/footer
	PageIndices []int
}

// RegionType indicates whether a region is a header or footer
type RegionType int

const (
	Header RegionType = iota
	Footer
)

func (r RegionType) String() string {
	if r == Header {
		return "header"
	}
	return "footer"
}

// HeaderFooterConfig holds configuration for header/footer detection
type HeaderFooterConfig struct {
	// HeaderRegionHeight is the height from top of page to consider as header zone
	// Default: 72 points (1 inch)
	HeaderRegionHeight float64

	// FooterRegionHeight is the height from bottom of page to consider as footer zone
	// Default: 72 points (1 inch)
	FooterRegionHeight float64

	// MinOccurrenceRatio is the minimum fraction of pages a text must appear on
	// Default: 0.5 (50% of pages)
	MinOccurrenceRatio float64

	// PositionTolerance is the maximum Y difference for text to be considered same position
	// Default: 5 points
	PositionTolerance float64

	// XPositionTolerance is the maximum X difference for text to be considered same position
	// Default: 10 points
	XPositionTolerance float64

	// MinPages is the minimum number of pages required for header/footer detection
	// Default: 2
	MinPages int
}

// DefaultHeaderFooterConfig returns the default configuration
func DefaultHeaderFooterConfig() HeaderFooterConfig {
	return HeaderFooterConfig{
		HeaderRegionHeight: 72.0,
		FooterRegionHeight: 72.0,
		MinOccurrenceRatio: 0.5,
		PositionTolerance:  5.0,
		XPositionTolerance: 10.0,
		MinPages:           2,
	}
}

// HeaderFooterDetector detects headers and footers across pages
type HeaderFooterDetector struct {
	config HeaderFooterConfig
}

// NewHeaderFooterDetector creates a new detector with default configuration
func NewHeaderFooterDetector() *HeaderFooterDetector {
	return &HeaderFooterDetector{config: DefaultHeaderFooterConfig()}
}

// NewHeaderFooterDetectorWithConfig creates a detector with custom configuration
func NewHeaderFooterDetectorWithConfig(config HeaderFooterConfig) *HeaderFooterDetector {
	return &HeaderFooterDetector{config: config}
}

// HeaderFooterResult contains the detection results
type HeaderFooterResult struct {
	// Headers contains detected header regions, highest confidence first
	Headers []HeaderFooterRegion

	// Footers contains detected footer regions, highest confidence first
	Footers []HeaderFooterRegion

	// Config used for detection
	Config HeaderFooterConfig
}

// HasHeaders returns true if any headers were detected
func (r *HeaderFooterResult) HasHeaders() bool { return len(r.Headers) > 0 }

// HasFooters returns true if any footers were detected
func (r *HeaderFooterResult) HasFooters() bool { return len(r.Footers) > 0 }

// HasHeadersOrFooters returns true if any headers or footers were detected
func (r *HeaderFooterResult) HasHeadersOrFooters() bool {
	return r.HasHeaders() || r.HasFooters()
}

// DetectHeaderFooter runs the default detector over an extracted document.
func DetectHeaderFooter(doc *model.Document) *HeaderFooterResult {
	return NewHeaderFooterDetector().Detect(doc.Pages)
}

// Detect finds text lines that repeat near the top or bottom edge of the
// pages. Pages without size (failed extraction) count towards the total but
// never contribute candidates.
func (d *HeaderFooterDetector) Detect(pages []*model.PageLayout) *HeaderFooterResult {
	res := &HeaderFooterResult{Config: d.config}
	if len(pages) < d.config.MinPages {
		return res
	}

	var headers, footers []candidate
	for _, p := range pages {
		if p == nil || p.Height <= 0 {
			continue
		}
		for _, l := range assembleLines(p.Styles) {
			if dist := p.Height - l.bbox.Top(); dist < d.config.HeaderRegionHeight {
				headers = append(headers, l.candidate(p.Index, dist))
			}
			if dist := l.bbox.Bottom(); dist < d.config.FooterRegionHeight {
				footers = append(footers, l.candidate(p.Index, dist))
			}
		}
	}

	res.Headers = d.findRepeatingPatterns(headers, len(pages), Header)
	res.Footers = d.findRepeatingPatterns(footers, len(pages), Footer)
	return res
}

// candidate represents a potential header/footer text
type candidate struct {
	Text      string
	X         float64
	Y         float64 // distance from the page edge
	Width     float64
	Height    float64
	PageIndex int
}

type line struct {
	text string
	size float64
	bbox model.BBox
}

func (l line) candidate(page int, dist float64) candidate {
	return candidate{
		Text:      l.text,
		X:         l.bbox.X,
		Y:         dist,
		Width:     l.bbox.Width,
		Height:    l.bbox.Height,
		PageIndex: page,
	}
}

// assembleLines joins the style records of one page into visual lines so a
// header split over several spans still matches across pages.
func assembleLines(records []model.StyleRecord) []line {
	if len(records) == 0 {
		return nil
	}
	sorted := make([]model.StyleRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		yDiff := sorted[i].BBox.Y - sorted[j].BBox.Y
		if absFloat(yDiff) > sorted[i].BBox.Height*0.5 {
			return yDiff > 0
		}
		return sorted[i].BBox.X < sorted[j].BBox.X
	})

	var groups [][]model.StyleRecord
	var current []model.StyleRecord
	for _, r := range sorted {
		if len(current) > 0 {
			last := current[len(current)-1]
			if absFloat(r.BBox.Y-last.BBox.Y) > last.BBox.Height*0.5 {
				groups = append(groups, current)
				current = nil
			}
		}
		current = append(current, r)
	}
	groups = append(groups, current)

	lines := make([]line, 0, len(groups))
	for _, g := range groups {
		var sb strings.Builder
		bbox := g[0].BBox
		lastEnd := g[0].BBox.Right()
		for i, r := range g {
			if i > 0 {
				if r.BBox.X-lastEnd > r.Size*0.3 && !strings.HasSuffix(sb.String(), " ") {
					sb.WriteByte(' ')
				}
				bbox = bbox.Union(r.BBox)
			}
			sb.WriteString(r.Text)
			lastEnd = r.BBox.Right()
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		lines = append(lines, line{text: text, size: g[0].Size, bbox: bbox})
	}
	return lines
}

// findRepeatingPatterns finds text that repeats across pages
func (d *HeaderFooterDetector) findRepeatingPatterns(candidates []candidate, totalPages int, regionType RegionType) []HeaderFooterRegion {
	if len(candidates) == 0 {
		return nil
	}

	groups := make(map[string][]candidate)
	var order []string
	for _, c := range candidates {
		normalized := normalizeForComparison(c.Text)
		if _, seen := groups[normalized]; !seen {
			order = append(order, normalized)
		}
		groups[normalized] = append(groups[normalized], c)
	}

	minOccurrences := int(float64(totalPages) * d.config.MinOccurrenceRatio)
	if minOccurrences < 2 {
		minOccurrences = 2
	}

	var regions []HeaderFooterRegion
	for _, normalizedText := range order {
		group := groups[normalizedText]

		// Single letters are likely fragments of larger text
		if len(normalizedText) <= 2 && !isPageNumberPattern(normalizedText) {
			continue
		}

		pageSet := make(map[int]bool)
		for _, c := range group {
			pageSet[c.PageIndex] = true
		}
		if len(pageSet) < minOccurrences {
			continue
		}
		if !d.hasConsistentPosition(group) {
			continue
		}

		var pageIndices []int
		for idx := range pageSet {
			pageIndices = append(pageIndices, idx)
		}
		sort.Ints(pageIndices)

		regions = append(regions, HeaderFooterRegion{
			Type:         regionType,
			BBox:         calculateGroupBBox(group),
			Text:         group[0].Text,
			Template:     pageTemplate(group),
			IsPageNumber: isPageNumberPattern(normalizedText) || containsPageNumberPattern(group),
			Confidence:   d.calculateConfidence(len(pageSet), totalPages),
			PageIndices:  pageIndices,
		})
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})
	return regions
}

// hasConsistentPosition checks if candidates appear at consistent positions
func (d *HeaderFooterDetector) hasConsistentPosition(group []candidate) bool {
	if len(group) < 2 {
		return false
	}
	refY, refX := group[0].Y, group[0].X
	for _, c := range group[1:] {
		if absFloat(c.Y-refY) > d.config.PositionTolerance {
			return false
		}
		if absFloat(c.X-refX) > d.config.XPositionTolerance {
			return false
		}
	}
	return true
}

func calculateGroupBBox(group []candidate) model.BBox {
	box := model.NewBBox(group[0].X, group[0].Y, group[0].Width, group[0].Height)
	for _, c := range group[1:] {
		box = box.Union(model.NewBBox(c.X, c.Y, c.Width, c.Height))
	}
	return box
}

// calculateConfidence is the occurrence ratio with a bonus for the position
// check every accepted group has passed.
func (d *HeaderFooterDetector) calculateConfidence(pages, totalPages int) float64 {
	if totalPages == 0 {
		return 0
	}
	confidence := float64(pages)/float64(totalPages)*0.9 + 0.1
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

var digitsRe = regexp.MustCompile(`\d+`)

// normalizeForComparison replaces runs of digits with '#'
func normalizeForComparison(text string) string {
	return digitsRe.ReplaceAllString(text, "#")
}

var pageNumberPatterns = []string{
	"#",
	"Page #",
	"- # -",
	"# of #",
	"Page # of #",
	"#/#",
	"# / #",
	"p. #",
	"p.#",
	"pg #",
	"pg. #",
}

// isPageNumberPattern checks if normalized text looks like a page number
func isPageNumberPattern(normalizedText string) bool {
	trimmed := strings.TrimSpace(normalizedText)
	for _, pattern := range pageNumberPatterns {
		if strings.EqualFold(trimmed, pattern) {
			return true
		}
	}
	return false
}

// containsPageNumberPattern reports whether the numbers in the group change
// from page to page.
func containsPageNumberPattern(group []candidate) bool {
	if len(group) < 2 {
		return false
	}
	first := strings.Join(digitsRe.FindAllString(group[0].Text, -1), ",")
	if first == "" {
		return false
	}
	for _, c := range group[1:] {
		if strings.Join(digitsRe.FindAllString(c.Text, -1), ",") != first {
			return true
		}
	}
	return false
}

// pageTemplate replaces the digit runs of the first candidate that differ on
// any other page with '#'.
func pageTemplate(group []candidate) string {
	first := group[0].Text
	locs := digitsRe.FindAllStringIndex(first, -1)
	varying := make([]bool, len(locs))
	for _, c := range group[1:] {
		nums := digitsRe.FindAllString(c.Text, -1)
		for i, loc := range locs {
			if len(nums) != len(locs) || nums[i] != first[loc[0]:loc[1]] {
				varying[i] = true
			}
		}
	}
	var sb strings.Builder
	prev := 0
	for i, loc := range locs {
		if !varying[i] {
			continue
		}
		sb.WriteString(first[prev:loc[0]])
		sb.WriteByte('#')
		prev = loc[1]
	}
	sb.WriteString(first[prev:])
	return sb.String()
}

// ApplyHeaderFooter writes the best header and footer into every section of
// doc. Each section is unlinked from the previous one first. Page numbers
// become PAGE fields.
func ApplyHeaderFooter(doc *docx.Document, res *HeaderFooterResult) error {
	if res == nil || !res.HasHeadersOrFooters() {
		return nil
	}
	for i, s := range doc.Sections() {
		if err := s.UnlinkHeaderFooter(res.HasHeaders(), res.HasFooters()); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		if res.HasHeaders() {
			p, err := s.Header()
			if err != nil {
				return fmt.Errorf("section %d header: %w", i, err)
			}
			writeRegion(p, res.Headers[0])
		}
		if res.HasFooters() {
			p, err := s.Footer()
			if err != nil {
				return fmt.Errorf("section %d footer: %w", i, err)
			}
			writeRegion(p, res.Footers[0])
		}
	}
	return nil
}

func writeRegion(p *docx.Paragraph, r HeaderFooterRegion) {
	p.SetText("")
	if !r.IsPageNumber || !strings.Contains(r.Template, "#") {
		p.AddRun(r.Text)
		return
	}
	parts := strings.Split(r.Template, "#")
	for i, part := range parts {
		if part != "" {
			p.AddRun(part)
		}
		if i < len(parts)-1 {
			p.AddField("PAGE", "1")
		}
	}
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
