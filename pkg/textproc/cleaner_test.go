package textproc

import (
	"strings"
	"testing"
)

func TestFixEncoding(t *testing.T) {
	if got := FixEncoding("Ø§Ù†"); got != "ان" {
		t.Errorf("FixEncoding = %q, want %q", got, "ان")
	}
	if got := FixEncoding("متن سالم"); got != "متن سالم" {
		t.Errorf("FixEncoding altered clean text: %q", got)
	}
	if got := FixEncoding(""); got != "" {
		t.Errorf("FixEncoding(\"\") = %q", got)
	}
}

func TestRemoveArtifacts(t *testing.T) {
	input := "متن اصلی سند\nصفحه ۲\nPage 3\n12 / 45\n...\n____\nادامه متن سند"

	var stats Stats
	got := RemoveArtifacts(input, &stats)

	if strings.Contains(got, "صفحه") || strings.Contains(got, "Page") {
		t.Errorf("Page furniture survived: %q", got)
	}
	if !strings.Contains(got, "متن اصلی سند") || !strings.Contains(got, "ادامه متن سند") {
		t.Errorf("Real content lost: %q", got)
	}
	if stats.ArtifactsRemoved != 5 {
		t.Errorf("Expected 5 artifacts removed, got %d", stats.ArtifactsRemoved)
	}
}

func TestRemoveArtifactsSeparators(t *testing.T) {
	got := RemoveArtifacts("بخش اول **************\nبخش دوم", nil)
	if strings.Contains(got, "*") {
		t.Errorf("Separator run survived: %q", got)
	}
	if !strings.Contains(got, "بخش اول") || !strings.Contains(got, "بخش دوم") {
		t.Errorf("Content lost: %q", got)
	}
}

func TestRemoveDuplicates(t *testing.T) {
	var stats Stats
	got := RemoveDuplicates("بند الف\nبند ب\nبند الف", &stats)

	if got != "بند الف\nبند ب" {
		t.Errorf("RemoveDuplicates = %q", got)
	}
	if stats.DuplicatesRemoved != 1 {
		t.Errorf("Expected 1 duplicate removed, got %d", stats.DuplicatesRemoved)
	}
}

func TestFixFormatting(t *testing.T) {
	got := FixFormatting("متن   با  فاصله\nخط  دوم")
	if got != "متن با فاصله\nخط دوم" {
		t.Errorf("FixFormatting = %q", got)
	}
}

func TestStandardizeTerms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"article spacing", "ماده۵ مهم است", "ماده ۵ مهم است"},
		{"cabinet", "هیات وزیران تصویب کرد", "هیئت‌وزیران تصویب کرد"},
		{"date spacing", "مورخ ۱ / ۲ / ۱۴۰۰", "مورخ ۱/۲/۱۴۰۰"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StandardizeTerms(tt.input); got != tt.expected {
				t.Errorf("StandardizeTerms(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEnhanceStructure(t *testing.T) {
	input := "عنوان قانون ماده ۱ - متن ماده تبصره - توضیح"
	got := EnhanceStructure(input)

	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), got)
	}
	if !strings.HasPrefix(lines[1], "ماده ۱") {
		t.Errorf("Expected article header on its own line, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "تبصره") {
		t.Errorf("Expected note header on its own line, got %q", lines[2])
	}
}

func TestEnhanceStructureKeepsReferences(t *testing.T) {
	// A mid-sentence reference without a trailing dash is not a header.
	input := "طبق ماده ۵ قانون مدنی عمل شود"
	if got := EnhanceStructure(input); got != input {
		t.Errorf("Reference broken into header: %q", got)
	}
}

func TestProcess(t *testing.T) {
	input := "قانون نمونه (مصوب 01/01/1400)\nصفحه ۱\nماده ۱ - متن ماده اول است. ماده ۲ - متن ماده دوم است."

	var stats Stats
	got := Process(input, &stats)

	if strings.Contains(got, "صفحه") {
		t.Errorf("Artifact survived full chain: %q", got)
	}
	if !strings.Contains(got, "\nماده ۲") {
		t.Errorf("Expected line break before second article, got %q", got)
	}
	if stats.DocumentsProcessed != 1 || stats.TextCleaned != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestProcessEmpty(t *testing.T) {
	if got := Process("", nil); got != "" {
		t.Errorf("Process(\"\") = %q", got)
	}
}
