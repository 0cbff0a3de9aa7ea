package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coolbeans/qanun/pkg/config"
	"github.com/coolbeans/qanun/pkg/docsource"
)

var sampleSource = docsource.Strings{
	"قانون آزمایش اول (مصوب 01/01/1400)",
	"فصل اول - کلیات",
	"ماده ۱ - دستگاه‌های اجرایی موظف به رعایت مقررات این قانون هستند.",
	"تبصره - موارد استثنا به موجب آیین‌نامه تعیین می‌شود.",
	"**********",
	"قانون آزمایش دوم",
	"ماده واحده - اجرای این قانون از تاریخ تصویب بر عهده وزارتخانه مربوط است.",
	"تبصره - بودجه مورد نیاز از محل اعتبارات مصوب تامین می‌شود.",
}

func TestRun(t *testing.T) {
	p := New(nil, nil)

	result, err := p.Run(sampleSource)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Laws) != 2 {
		t.Fatalf("Expected 2 laws, got %d", len(result.Laws))
	}
	if len(result.Documents) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(result.Documents))
	}
	if len(result.Chunks) == 0 {
		t.Fatal("Expected chunks")
	}
	if result.Summary == nil {
		t.Fatal("Expected batch summary")
	}
	if len(result.Reports) != 4 {
		t.Errorf("Expected 4 stage reports, got %d", len(result.Reports))
	}

	first := result.Documents[0]
	if first.ID != "law_001" {
		t.Errorf("Document ID = %q", first.ID)
	}
	if len(first.Chapters) != 1 {
		t.Errorf("Expected 1 chapter, got %d", len(first.Chapters))
	}
	if first.TotalArticles() != 1 {
		t.Errorf("TotalArticles = %d", first.TotalArticles())
	}
	if _, ok := first.Metadata.Extensions["keywords"]; !ok {
		t.Error("Document not annotated")
	}

	for _, chunk := range result.Chunks {
		if chunk.DocumentID != "law_001" && chunk.DocumentID != "law_002" {
			t.Errorf("Chunk %s references unknown document %s", chunk.ID, chunk.DocumentID)
		}
		if _, ok := chunk.Metadata["importance_score"]; !ok {
			t.Errorf("Chunk %s not annotated", chunk.ID)
		}
	}

	if result.SplitStats.ValidLaws != 2 {
		t.Errorf("SplitStats = %+v", result.SplitStats)
	}
	if result.ParseStats.DocumentsParsed != 2 || result.ParseStats.ChaptersFound != 1 {
		t.Errorf("ParseStats = %+v", result.ParseStats)
	}
	if result.ChunkStats.DocumentsChunked != 2 {
		t.Errorf("ChunkStats = %+v", result.ChunkStats)
	}
}

func TestRunEmptySource(t *testing.T) {
	result, err := New(nil, nil).Run(docsource.Strings{})
	if err != nil {
		t.Fatalf("Run failed on empty source: %v", err)
	}
	if len(result.Laws) != 0 || len(result.Documents) != 0 || len(result.Chunks) != 0 {
		t.Errorf("Expected empty collections, got %d laws, %d documents, %d chunks",
			len(result.Laws), len(result.Documents), len(result.Chunks))
	}
	if len(result.Reports) != 4 {
		t.Fatalf("Expected 4 stage reports, got %d", len(result.Reports))
	}

	split := result.Reports[0]
	if split.TotalItems != 0 {
		t.Errorf("Splitting report TotalItems = %d, want 0", split.TotalItems)
	}
	if got := split.SuccessRate(); got != 0 {
		t.Errorf("Splitting report SuccessRate = %.1f, want 0", got)
	}
}

func TestPersist(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	p := New(cfg, nil)

	result, err := p.Run(sampleSource)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := p.Persist(result, "laws.txt"); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	files := []string{
		cfg.Output.IndividualLaws,
		cfg.Output.Documents,
		cfg.Output.Chunks,
		cfg.Output.Metadata,
		cfg.Output.ProcessingReport,
	}
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, name))
		if err != nil {
			t.Fatalf("Missing output %s: %v", name, err)
		}
		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Errorf("Output %s is not valid JSON: %v", name, err)
		}
	}

	var laws lawCollection
	data, _ := os.ReadFile(filepath.Join(cfg.Output.Dir, cfg.Output.IndividualLaws))
	if err := json.Unmarshal(data, &laws); err != nil {
		t.Fatalf("Decoding laws file: %v", err)
	}
	if laws.Metadata.TotalLaws != 2 || laws.Metadata.SourceFile != "laws.txt" {
		t.Errorf("Laws metadata = %+v", laws.Metadata)
	}
	if len(laws.Laws) != 2 {
		t.Errorf("Expected 2 persisted laws, got %d", len(laws.Laws))
	}

	// No temp files left behind.
	entries, err := os.ReadDir(cfg.Output.Dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("Leftover temp file %s", entry.Name())
		}
	}
}

func TestRunCleaningPreservesStructure(t *testing.T) {
	source := docsource.Strings{
		"قانون آزمایش سوم (مصوب 01/01/1400)",
		"صفحه ۱",
		"ماده ۱ - متن ماده اول قانون است. تبصره - توضیح تکمیلی ماده است.",
	}

	result, err := New(nil, nil).Run(source)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Documents) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(result.Documents))
	}

	articles := result.Documents[0].AllArticles()
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	// The inline note header was broken onto its own line and parsed.
	if len(articles[0].Notes) != 1 {
		t.Errorf("Expected 1 note after structure enhancement, got %d", len(articles[0].Notes))
	}
	if strings.Contains(result.Laws[0].RawContent, "صفحه") {
		t.Errorf("Page artifact survived cleaning: %q", result.Laws[0].RawContent)
	}
	if result.CleanStats.DocumentsProcessed != 1 {
		t.Errorf("CleanStats = %+v", result.CleanStats)
	}
}
