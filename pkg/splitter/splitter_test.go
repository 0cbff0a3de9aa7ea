package splitter

import (
	"strings"
	"testing"

	"github.com/coolbeans/qanun/pkg/legal"
)

const twoLawText = `قانون آزمایش اول (مصوب 01/01/1400)
ماده ۱ - هر شخص حقیقی یا حقوقی مشمول مقررات این قانون است.
تبصره - موارد استثنا به موجب آیین‌نامه تعیین می‌شود.
**********
قانون آزمایش دوم
ماده واحده - اجرای این قانون از تاریخ تصویب بر عهده وزارتخانه مربوط است.
تبصره - بودجه مورد نیاز از محل اعتبارات مصوب تامین می‌شود.`

func TestSplitTwoLaws(t *testing.T) {
	s := New(nil)
	result, err := s.Split(twoLawText)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(result.Laws) != 2 {
		t.Fatalf("Expected 2 laws, got %d", len(result.Laws))
	}
	if result.Stats.ValidLaws != 2 || result.Stats.TotalLawsFound != 2 {
		t.Errorf("Unexpected stats: %+v", result.Stats)
	}

	first := result.Laws[0]
	if first.ID != "law_001" {
		t.Errorf("ID = %q, want law_001", first.ID)
	}
	if first.Title != "قانون آزمایش اول" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.ApprovalDate != "01/01/1400" {
		t.Errorf("ApprovalDate = %q", first.ApprovalDate)
	}
	if first.ApprovalAuthority != string(legal.AuthorityParliament) {
		t.Errorf("ApprovalAuthority = %q", first.ApprovalAuthority)
	}
	if first.QualityScore != 1.0 {
		t.Errorf("QualityScore = %.1f, want 1.0", first.QualityScore)
	}
	if strings.Contains(first.RawContent, "*") {
		t.Errorf("Separator leaked into content: %q", first.RawContent)
	}

	second := result.Laws[1]
	if second.ID != "law_002" {
		t.Errorf("ID = %q, want law_002", second.ID)
	}
	if second.Title != "قانون آزمایش دوم" {
		t.Errorf("Title = %q", second.Title)
	}
	if second.ApprovalDate != legal.Unknown {
		t.Errorf("ApprovalDate = %q, want unknown", second.ApprovalDate)
	}
}

func TestSplitCabinetAuthority(t *testing.T) {
	text := `آیین‌نامه اجرایی نمونه (مصوب 15/03/1399 هیئت‌وزیران)
ماده ۱ - دستگاه‌های اجرایی موظف به رعایت مفاد این آیین‌نامه هستند.
تبصره - نظارت بر اجرا بر عهده سازمان برنامه و بودجه است.`

	result, err := New(nil).Split(text)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(result.Laws) != 1 {
		t.Fatalf("Expected 1 law, got %d", len(result.Laws))
	}
	if got := result.Laws[0].ApprovalAuthority; got != string(legal.AuthorityCabinet) {
		t.Errorf("ApprovalAuthority = %q, want cabinet", got)
	}
	if got := result.Laws[0].ApprovalDate; got != "15/03/1399" {
		t.Errorf("ApprovalDate = %q", got)
	}
}

func TestSplitRejectsShortText(t *testing.T) {
	result, err := New(nil).Split("متن کوتاه")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(result.Laws) != 0 {
		t.Errorf("Expected no laws, got %d", len(result.Laws))
	}
	if result.Stats.InvalidLaws != 1 {
		t.Errorf("InvalidLaws = %d, want 1", result.Stats.InvalidLaws)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\n"} {
		result, err := New(nil).Split(input)
		if err != nil {
			t.Fatalf("Split(%q) failed: %v", input, err)
		}
		if len(result.Laws) != 0 {
			t.Errorf("Split(%q) returned %d laws, want 0", input, len(result.Laws))
		}
		if result.Stats.TotalLawsFound != 0 {
			t.Errorf("Split(%q) TotalLawsFound = %d, want 0", input, result.Stats.TotalLawsFound)
		}
	}
}

func TestQualityScore(t *testing.T) {
	s := New(nil)

	full := "ماده ۱ - متن کامل قانون با ساختار مناسب است.\nتبصره - توضیح تکمیلی در این بخش آمده است."
	if got := s.QualityScore(full, "قانون آزمایش ساختار"); got != 1.0 {
		t.Errorf("QualityScore = %.1f, want 1.0", got)
	}

	// Short English text with a short title fails every check.
	if got := s.QualityScore("abc", "x"); got != 0.0 {
		t.Errorf("QualityScore = %.1f, want 0.0", got)
	}
}

func TestAnalyzeQuality(t *testing.T) {
	laws := []*legal.LawRecord{
		{QualityScore: 1.0},
		{QualityScore: 0.6},
		{QualityScore: 0.4},
	}
	analysis := AnalyzeQuality(laws)

	if analysis.Highest != 1.0 || analysis.Lowest != 0.4 {
		t.Errorf("Highest/Lowest = %.1f/%.1f", analysis.Highest, analysis.Lowest)
	}
	if analysis.Distribution["excellent"] != 1 || analysis.Distribution["good"] != 1 || analysis.Distribution["fair"] != 1 {
		t.Errorf("Distribution = %v", analysis.Distribution)
	}

	empty := AnalyzeQuality(nil)
	if empty.AverageQuality != 0 {
		t.Errorf("Empty analysis average = %.1f", empty.AverageQuality)
	}
}

func TestRecommendations(t *testing.T) {
	good := Recommendations(Stats{ValidLaws: 20}, QualityAnalysis{AverageQuality: 0.9})
	if len(good) != 1 {
		t.Errorf("Expected single all-clear recommendation, got %d", len(good))
	}

	bad := Recommendations(Stats{ValidLaws: 2, InvalidLaws: 5, ExtractionErrors: 1}, QualityAnalysis{AverageQuality: 0.3})
	if len(bad) < 3 {
		t.Errorf("Expected several recommendations, got %d", len(bad))
	}
}
