package ocr

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCondense(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"multiline", "Quarterly\n\nrevenue   chart\n", "Quarterly revenue chart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := condense(tt.in); got != tt.want {
				t.Errorf("condense(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCondenseTruncates(t *testing.T) {
	got := condense(strings.Repeat("word ", 100))
	if n := utf8.RuneCountInString(got); n > MaxAltLength {
		t.Errorf("got %d runes, want at most %d", n, MaxAltLength)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
}

func TestDescribe(t *testing.T) {
	words := []Word{
		{"Revenue", 91},
		{"~#", 12},
		{"2024", 77},
		{" ", 99},
		{"Q3", 50},
	}
	if got := describe(words, DefaultMinConfidence); got != "Revenue 2024 Q3" {
		t.Errorf("describe = %q", got)
	}
	if got := describe(nil, DefaultMinConfidence); got != "" {
		t.Errorf("describe(nil) = %q", got)
	}
}

func TestLanguages(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"eng"}},
		{"deu", []string{"deu"}},
		{"eng+fra", []string{"eng", "fra"}},
		{" eng + ", []string{"eng"}},
	}
	for _, tt := range tests {
		got := languages(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("languages(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
