package pattern

import (
	"strings"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	if len(table.Markers()) == 0 {
		t.Fatal("Expected built-in markers")
	}
	articles := table.Markers(FamilyArticle)
	if len(articles) != 2 {
		t.Errorf("Expected 2 article markers, got %d", len(articles))
	}
}

func TestMarkerValidate(t *testing.T) {
	tests := []struct {
		name    string
		marker  Marker
		wantErr bool
	}{
		{"valid", Marker{Name: "m", Family: FamilyNote, Pattern: `تبصره`}, false},
		{"empty name", Marker{Family: FamilyNote, Pattern: `x`}, true},
		{"empty family", Marker{Name: "m", Pattern: `x`}, true},
		{"empty pattern", Marker{Name: "m", Family: FamilyNote}, true},
		{"bad regex", Marker{Name: "m", Family: FamilyNote, Pattern: `(`}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.marker.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTableAdd(t *testing.T) {
	table := DefaultTable()
	before := len(table.Markers())

	m := &Marker{Name: "custom-note", Family: FamilyNote, Pattern: `(?m)^(یادداشت)\s*`, LabelGroup: 1}
	if err := table.Add(m); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(table.Markers()) != before+1 {
		t.Errorf("Expected %d markers, got %d", before+1, len(table.Markers()))
	}

	// Same name replaces, not appends.
	replacement := &Marker{Name: "custom-note", Family: FamilyNote, Pattern: `(?m)^(نکته)\s*`, LabelGroup: 1}
	if err := table.Add(replacement); err != nil {
		t.Fatalf("Add replacement failed: %v", err)
	}
	if len(table.Markers()) != before+1 {
		t.Errorf("Expected replacement to keep count at %d, got %d", before+1, len(table.Markers()))
	}
}

func TestFindMatchesArticles(t *testing.T) {
	table := DefaultTable()
	text := "ماده ۱ - متن اول\nماده ۲ - متن دوم\nماده واحده - متن سوم"

	matches := table.FindMatches(text, FamilyArticle)
	if len(matches) != 3 {
		t.Fatalf("Expected 3 article matches, got %d", len(matches))
	}
	if matches[0].Label != "ماده ۱" || matches[1].Label != "ماده ۲" || matches[2].Label != "ماده واحده" {
		t.Errorf("Unexpected labels: %q %q %q", matches[0].Label, matches[1].Label, matches[2].Label)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Start <= matches[i-1].Start {
			t.Errorf("Matches not sorted by offset at %d", i)
		}
	}
}

func TestFindMatchesSameOffsetDedup(t *testing.T) {
	table := DefaultTable()
	// A bare note header also matches the lettered-subsection marker at
	// the same offset; the note marker is listed earlier and wins.
	matches := table.FindMatches("تبصره - توضیح", FamilyNote, FamilySubLettered)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match after dedup, got %d", len(matches))
	}
	if matches[0].Family != FamilyNote {
		t.Errorf("Expected note family to win, got %s", matches[0].Family)
	}
}

func TestFindBoundariesPartition(t *testing.T) {
	table := DefaultTable()
	text := "ماده ۱ - متن اول است\nماده ۲ - متن دوم است"

	boundaries := table.FindBoundaries(text, FamilyArticle)
	if len(boundaries) != 2 {
		t.Fatalf("Expected 2 boundaries, got %d", len(boundaries))
	}
	if boundaries[0].Start != 0 {
		t.Errorf("First boundary starts at %d", boundaries[0].Start)
	}
	if boundaries[0].End != boundaries[1].Start {
		t.Errorf("Boundaries not contiguous: %d != %d", boundaries[0].End, boundaries[1].Start)
	}
	if boundaries[1].End != len(text) {
		t.Errorf("Last boundary ends at %d, want %d", boundaries[1].End, len(text))
	}

	body := strings.TrimSpace(boundaries[0].Body(text))
	if body != "متن اول است" {
		t.Errorf("Body = %q", body)
	}
	if !strings.HasPrefix(boundaries[1].Span(text), "ماده ۲") {
		t.Errorf("Span = %q", boundaries[1].Span(text))
	}
}

func TestChapterTitleCapture(t *testing.T) {
	table := DefaultTable()
	boundaries := table.FindBoundaries("فصل اول - کلیات\nماده ۱ - متن", FamilyChapter)
	if len(boundaries) != 1 {
		t.Fatalf("Expected 1 chapter, got %d", len(boundaries))
	}
	if boundaries[0].Label != "فصل اول" {
		t.Errorf("Label = %q", boundaries[0].Label)
	}
	if boundaries[0].Title != "کلیات" {
		t.Errorf("Title = %q", boundaries[0].Title)
	}
}

func TestLawSeparator(t *testing.T) {
	table := DefaultTable()
	text := "قانون اول **********\nقانون دوم"
	matches := table.FindMatches(text, FamilyLawSeparator)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 separator, got %d", len(matches))
	}
	if table.FindMatches("فقط *** سه ستاره", FamilyLawSeparator) != nil {
		t.Error("Short asterisk run should not match")
	}
}
