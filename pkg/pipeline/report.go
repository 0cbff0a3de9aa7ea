package pipeline

import (
	"fmt"
	"strings"
)

// FormatResult renders a run's outcome for the terminal.
func FormatResult(result *Result) string {
	var builder strings.Builder

	builder.WriteString("\nLegal Document Processing Report\n")
	builder.WriteString(strings.Repeat("═", 60) + "\n")
	builder.WriteString(fmt.Sprintf("Laws found: %d | Valid: %d | Invalid: %d | Errors: %d\n",
		result.SplitStats.TotalLawsFound,
		result.SplitStats.ValidLaws,
		result.SplitStats.InvalidLaws,
		result.SplitStats.ExtractionErrors))
	builder.WriteString(fmt.Sprintf("Documents parsed: %d | Chapters: %d | Articles: %d | Notes: %d\n",
		result.ParseStats.DocumentsParsed,
		result.ParseStats.ChaptersFound,
		result.ParseStats.ArticlesExtracted,
		result.ParseStats.NotesExtracted))
	builder.WriteString(fmt.Sprintf("Chunks created: %d (oversized: %d, undersized: %d)\n",
		result.ChunkStats.TotalChunksCreated,
		result.ChunkStats.OversizedChunks,
		result.ChunkStats.UndersizedChunks))
	builder.WriteString(strings.Repeat("─", 60) + "\n")

	for _, report := range result.Reports {
		status := "[OK]"
		if report.FailedItems > 0 {
			status = "[WARN]"
		}
		builder.WriteString(fmt.Sprintf("  %-7s %-22s %d/%d items, %.1f%% in %.2fs\n",
			status, report.Operation, report.ProcessedItems, report.TotalItems,
			report.SuccessRate(), report.ElapsedSeconds()))
		for _, errMsg := range report.Errors {
			builder.WriteString(fmt.Sprintf("          error: %s\n", errMsg))
		}
	}

	builder.WriteString(strings.Repeat("─", 60) + "\n")
	builder.WriteString(fmt.Sprintf("Total elapsed: %.2fs\n", result.Elapsed.Seconds()))

	if result.Summary != nil {
		for _, rec := range result.Summary.Recommendations {
			builder.WriteString("  • " + rec + "\n")
		}
	}

	return builder.String()
}
