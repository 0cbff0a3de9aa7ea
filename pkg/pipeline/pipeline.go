// Package pipeline runs the full extraction chain over one combined
// legal document: split into laws, deep-clean, parse structure, chunk,
// and annotate, then persist every collection as JSON.
package pipeline

import (
	"fmt"
	"time"

	"github.com/coolbeans/qanun/pkg/chunker"
	"github.com/coolbeans/qanun/pkg/config"
	"github.com/coolbeans/qanun/pkg/docsource"
	"github.com/coolbeans/qanun/pkg/legal"
	"github.com/coolbeans/qanun/pkg/metadata"
	"github.com/coolbeans/qanun/pkg/parser"
	"github.com/coolbeans/qanun/pkg/pattern"
	"github.com/coolbeans/qanun/pkg/splitter"
	"github.com/coolbeans/qanun/pkg/textproc"
)

// Pipeline wires the stages together under one configuration.
type Pipeline struct {
	cfg   *config.Config
	table *pattern.Table
}

// New builds a pipeline. A nil table means the built-in markers.
func New(cfg *config.Config, table *pattern.Table) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if table == nil {
		table = pattern.DefaultTable()
	}
	return &Pipeline{cfg: cfg, table: table}
}

// Result carries everything one run produced.
type Result struct {
	Laws      []*legal.LawRecord
	Documents []*legal.Document
	Chunks    []*legal.Chunk
	Summary   *metadata.Summary

	SplitStats splitter.Stats
	CleanStats textproc.Stats
	ParseStats parser.Stats
	ChunkStats chunker.Stats

	Reports []*legal.ProcessingReport
	Elapsed time.Duration
}

// Run executes every stage over the source. Per-item failures are
// recorded in the stage reports and never abort the run; only an
// unreadable source is fatal. An empty source produces zero-item
// reports.
func (p *Pipeline) Run(source docsource.Source) (*Result, error) {
	start := time.Now()

	text, err := docsource.CombinedText(source)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	result := &Result{}

	// Stage 1: split the combined text into law records.
	sp := splitter.New(p.table)
	sp.MinLength = p.cfg.MinLawLength
	sp.QualityThreshold = p.cfg.QualityThreshold

	splitResult, err := sp.Split(text)
	if err != nil {
		return nil, fmt.Errorf("splitting document: %w", err)
	}
	result.Laws = splitResult.Laws
	result.SplitStats = splitResult.Stats

	splitReport := legal.NewProcessingReport("document_splitting", splitResult.Stats.TotalLawsFound)
	splitReport.ProcessedItems = splitResult.Stats.ValidLaws
	splitReport.FailedItems = splitResult.Stats.InvalidLaws + splitResult.Stats.ExtractionErrors
	splitReport.Statistics["splitting"] = splitResult.Stats
	splitReport.Statistics["quality_analysis"] = splitter.AnalyzeQuality(result.Laws)
	splitReport.Statistics["recommendations"] = splitter.Recommendations(
		splitResult.Stats, splitter.AnalyzeQuality(result.Laws))
	splitReport.Finish(legal.StatusCompleted)
	result.Reports = append(result.Reports, splitReport)

	// Stage 2: deep-clean each record before structural parsing.
	for _, law := range result.Laws {
		law.RawContent = textproc.Process(law.RawContent, &result.CleanStats)
	}

	// Stage 3: parse the document structure record by record.
	parseReport := legal.NewProcessingReport("structure_parsing", len(result.Laws))
	prs := parser.New(p.table)
	for _, law := range result.Laws {
		doc, err := prs.Parse(law, &result.ParseStats)
		if err != nil {
			parseReport.AddError(err.Error())
			continue
		}
		result.Documents = append(result.Documents, doc)
		parseReport.ProcessedItems++
	}
	parseReport.Statistics["parsing"] = result.ParseStats
	parseReport.Statistics["cleaning"] = result.CleanStats
	parseReport.Finish(legal.StatusCompleted)
	result.Reports = append(result.Reports, parseReport)

	// Stage 4: chunk every parsed document.
	ch := chunker.New(p.cfg.Chunking)
	chunks, chunkReport := ch.ChunkBatch(result.Documents, &result.ChunkStats)
	result.Chunks = chunks
	result.Reports = append(result.Reports, chunkReport)

	// Stage 5: annotate documents and chunks, build the batch summary.
	annotator := metadata.New()
	summary, metaReport := annotator.AnnotateBatch(result.Documents, result.Chunks)
	result.Summary = summary
	result.Reports = append(result.Reports, metaReport)

	result.Elapsed = time.Since(start)
	return result, nil
}

// lawCollection is the on-disk shape of the individual-laws file.
type lawCollection struct {
	Metadata struct {
		TotalLaws      int    `json:"total_laws"`
		ExtractionDate string `json:"extraction_date"`
		SourceFile     string `json:"source_file"`
	} `json:"metadata"`
	Laws []*legal.LawRecord `json:"laws"`
}

// documentCollection is the on-disk shape of the parsed-documents file.
type documentCollection struct {
	Metadata struct {
		TotalDocuments int          `json:"total_documents"`
		ParsingDate    string       `json:"parsing_date"`
		ParsingStats   parser.Stats `json:"parsing_stats"`
	} `json:"metadata"`
	Documents []*legal.Document `json:"documents"`
}

// chunkCollection is the on-disk shape of the chunks file.
type chunkCollection struct {
	Metadata struct {
		TotalChunks    int            `json:"total_chunks"`
		CreationDate   string         `json:"creation_date"`
		ChunkingConfig chunker.Config `json:"chunking_config"`
	} `json:"metadata"`
	Chunks []*legal.Chunk `json:"chunks"`
}

// reportFile is the on-disk shape of the processing-report file.
type reportFile struct {
	Reports   []*legal.ProcessingReport `json:"reports"`
	Elapsed   float64                   `json:"total_elapsed_seconds"`
	Timestamp string                    `json:"timestamp"`
}

// Persist writes every collection produced by a run. Each file is
// written atomically so readers never see partial output.
func (p *Pipeline) Persist(result *Result, sourceName string) error {
	now := time.Now().Format(time.RFC3339)

	laws := lawCollection{Laws: result.Laws}
	laws.Metadata.TotalLaws = len(result.Laws)
	laws.Metadata.ExtractionDate = now
	laws.Metadata.SourceFile = sourceName
	if err := writeJSON(p.cfg.OutputPath(p.cfg.Output.IndividualLaws), laws); err != nil {
		return err
	}

	docs := documentCollection{Documents: result.Documents}
	docs.Metadata.TotalDocuments = len(result.Documents)
	docs.Metadata.ParsingDate = now
	docs.Metadata.ParsingStats = result.ParseStats
	if err := writeJSON(p.cfg.OutputPath(p.cfg.Output.Documents), docs); err != nil {
		return err
	}

	chunks := chunkCollection{Chunks: result.Chunks}
	chunks.Metadata.TotalChunks = len(result.Chunks)
	chunks.Metadata.CreationDate = now
	chunks.Metadata.ChunkingConfig = p.cfg.Chunking
	if err := writeJSON(p.cfg.OutputPath(p.cfg.Output.Chunks), chunks); err != nil {
		return err
	}

	if err := writeJSON(p.cfg.OutputPath(p.cfg.Output.Metadata), result.Summary); err != nil {
		return err
	}

	report := reportFile{
		Reports:   result.Reports,
		Elapsed:   result.Elapsed.Seconds(),
		Timestamp: now,
	}
	return writeJSON(p.cfg.OutputPath(p.cfg.Output.ProcessingReport), report)
}
