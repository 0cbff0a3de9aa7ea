package legal

import (
	"testing"
)

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		title    string
		expected DocumentType
	}{
		{"قانون بودجه سال ۱۴۰۰", DocTypeLaw},
		{"آیین‌نامه اجرایی ماده ۵", DocTypeRegulation},
		{"آیین نامه داخلی", DocTypeRegulation},
		{"دستورالعمل نحوه اجرا", DocTypeInstruction},
		{"مصوبه شورای عالی", DocTypeResolution},
		{"بخشنامه گمرکی", DocTypeCircular},
		{"سند بی‌نام", DocTypeUnknown},
		// The law keyword dominates when several appear.
		{"قانون اصلاح آیین‌نامه", DocTypeLaw},
	}
	for _, tt := range tests {
		if got := DetectDocumentType(tt.title); got != tt.expected {
			t.Errorf("DetectDocumentType(%q) = %q, want %q", tt.title, got, tt.expected)
		}
	}
}

func TestNewArticle(t *testing.T) {
	article, err := NewArticle("ماده ۱", "", "این متن ماده است و چهار کلمه دارد")
	if err != nil {
		t.Fatalf("NewArticle failed: %v", err)
	}
	if article.WordCount != 8 {
		t.Errorf("WordCount = %d, want 8", article.WordCount)
	}

	if _, err := NewArticle("ماده ۲", "", "   "); err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestNewNoteAndSubsection(t *testing.T) {
	if _, err := NewNote("تبصره", ""); err == nil {
		t.Error("Expected error for empty note content")
	}
	sub, err := NewSubsection("الف", " محتوا ", SubsectionLettered)
	if err != nil {
		t.Fatalf("NewSubsection failed: %v", err)
	}
	if sub.Content != "محتوا" {
		t.Errorf("Content not trimmed: %q", sub.Content)
	}
}

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument("law_001", "قانون تست", "", "", DocTypeLaw)
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	if doc.ApprovalDate != Unknown || doc.ApprovalAuthority != Unknown {
		t.Errorf("Empty fields not defaulted: %q %q", doc.ApprovalDate, doc.ApprovalAuthority)
	}
	if doc.Status != StatusPending {
		t.Errorf("Status = %q, want pending", doc.Status)
	}

	if _, err := NewDocument("law_002", "  ", "", "", DocTypeLaw); err == nil {
		t.Error("Expected error for empty title")
	}
}

func TestDocumentTotals(t *testing.T) {
	a1, _ := NewArticle("ماده ۱", "", "یک دو سه")
	a2, _ := NewArticle("ماده ۲", "", "چهار پنج")
	a3, _ := NewArticle("ماده ۳", "", "شش")

	doc, _ := NewDocument("law_001", "قانون تست", "", "", DocTypeLaw)
	doc.Chapters = []*Chapter{{Number: "فصل اول", Articles: []*Article{a1, a2}}}
	doc.StandaloneArticles = []*Article{a3}

	if got := doc.TotalArticles(); got != 3 {
		t.Errorf("TotalArticles = %d, want 3", got)
	}
	if got := doc.TotalWordCount(); got != 6 {
		t.Errorf("TotalWordCount = %d, want 6", got)
	}
	if got := len(doc.AllArticles()); got != 3 {
		t.Errorf("AllArticles length = %d, want 3", got)
	}
}

func TestNewChunk(t *testing.T) {
	chunk, err := NewChunk("c_000", "law_001", "متن نمونه برای قطعه", ChunkArticle, 0)
	if err != nil {
		t.Fatalf("NewChunk failed: %v", err)
	}
	if chunk.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", chunk.WordCount)
	}
	if chunk.CharacterCount != len([]rune("متن نمونه برای قطعه")) {
		t.Errorf("CharacterCount = %d", chunk.CharacterCount)
	}

	if _, err := NewChunk("c_001", "law_001", "", ChunkArticle, 0); err == nil {
		t.Error("Expected error for empty chunk content")
	}
}

func TestProcessingReport(t *testing.T) {
	report := NewProcessingReport("test_op", 4)
	if report.Status != StatusProcessing {
		t.Errorf("Status = %q", report.Status)
	}

	report.ProcessedItems = 3
	report.AddError("failed item")
	report.AddWarning("minor issue")
	report.Finish(StatusCompleted)

	if report.FailedItems != 1 {
		t.Errorf("FailedItems = %d, want 1", report.FailedItems)
	}
	if got := report.SuccessRate(); got != 75.0 {
		t.Errorf("SuccessRate = %.1f, want 75.0", got)
	}
	if report.EndTime == nil {
		t.Error("Expected end time after Finish")
	}
	if report.ElapsedSeconds() < 0 {
		t.Error("Negative elapsed time")
	}

	empty := NewProcessingReport("empty", 0)
	if got := empty.SuccessRate(); got != 0 {
		t.Errorf("SuccessRate for empty batch = %.1f, want 0", got)
	}
}
