package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/coolbeans/qanun/pkg/chunker"
	"github.com/coolbeans/qanun/pkg/config"
	"github.com/coolbeans/qanun/pkg/docsource"
	"github.com/coolbeans/qanun/pkg/metadata"
	"github.com/coolbeans/qanun/pkg/parser"
	"github.com/coolbeans/qanun/pkg/pattern"
	"github.com/coolbeans/qanun/pkg/pipeline"
	"github.com/coolbeans/qanun/pkg/splitter"
	"github.com/coolbeans/qanun/pkg/textproc"
	"github.com/coolbeans/qanun/pkg/watch"
)

var version = "0.1.0"

var configPath string

func main() {
	// Best-effort env load; a missing .env is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "qanun",
		Short: "Persian legal statute extraction and chunking",
		Long: `Qanun splits combined Persian statute collections into individual
laws, parses their chapter/article/note structure, and produces
retrieval-sized chunks with rich metadata.

The pipeline stages:
  - split:    cut the combined text into individual law records
  - parse:    extract chapters, articles, notes, and subsections
  - chunk:    produce bounded chunks preserving legal structure
  - annotate: derive keywords, references, and quality scores`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", envOr("QANUN_CONFIG", ""), "path to YAML config file")

	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(splitCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(chunkCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openInput validates the input path and wraps it as a document source.
func openInput(path string) (docsource.Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".txt" && ext != ".text" {
		return nil, fmt.Errorf("unsupported input format %q (expected a plain-text file)", ext)
	}
	return docsource.NewTextFile(path)
}

// loadTable builds the marker table, applying YAML overrides when the
// config names a pattern directory.
func loadTable(cfg *config.Config) (*pattern.Table, error) {
	if cfg.PatternDir == "" {
		return pattern.DefaultTable(), nil
	}
	registry, err := pattern.NewRegistryWithDirectory(cfg.PatternDir)
	if err != nil {
		return nil, fmt.Errorf("loading marker overrides: %w", err)
	}
	return registry.Table(), nil
}

func processCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "process [input-file]",
		Short: "Run the full pipeline and persist every collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}

			source, err := openInput(args[0])
			if err != nil {
				return err
			}
			table, err := loadTable(cfg)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, table)
			result, err := p.Run(source)
			if err != nil {
				return err
			}
			if err := p.Persist(result, filepath.Base(args[0])); err != nil {
				return err
			}

			fmt.Print(pipeline.FormatResult(result))
			fmt.Printf("\nCollections written to %s\n", cfg.Output.Dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	return cmd
}

func splitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split [input-file]",
		Short: "Split the combined text into individual law records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			source, err := openInput(args[0])
			if err != nil {
				return err
			}
			table, err := loadTable(cfg)
			if err != nil {
				return err
			}
			text, err := docsource.CombinedText(source)
			if err != nil {
				return err
			}

			sp := splitter.New(table)
			sp.MinLength = cfg.MinLawLength
			sp.QualityThreshold = cfg.QualityThreshold
			result, err := sp.Split(text)
			if err != nil {
				return err
			}

			for _, law := range result.Laws {
				fmt.Printf("  [OK]   %-10s %.2f  %s\n", law.ID, law.QualityScore, truncate(law.Title, 60))
			}
			fmt.Printf("\nFound %d laws: %d valid, %d invalid, %d errors (%.2fs)\n",
				result.Stats.TotalLawsFound, result.Stats.ValidLaws,
				result.Stats.InvalidLaws, result.Stats.ExtractionErrors,
				result.Stats.ProcessingSeconds)

			analysis := splitter.AnalyzeQuality(result.Laws)
			fmt.Printf("Average quality: %.2f (best %.2f, worst %.2f)\n",
				analysis.AverageQuality, analysis.Highest, analysis.Lowest)
			for _, rec := range splitter.Recommendations(result.Stats, analysis) {
				fmt.Println("  • " + rec)
			}
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [input-file]",
		Short: "Split and parse, printing the structure of each document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			source, err := openInput(args[0])
			if err != nil {
				return err
			}
			table, err := loadTable(cfg)
			if err != nil {
				return err
			}
			text, err := docsource.CombinedText(source)
			if err != nil {
				return err
			}

			sp := splitter.New(table)
			sp.MinLength = cfg.MinLawLength
			sp.QualityThreshold = cfg.QualityThreshold
			splitResult, err := sp.Split(text)
			if err != nil {
				return err
			}

			prs := parser.New(table)
			var stats parser.Stats
			for _, law := range splitResult.Laws {
				law.RawContent = textproc.Process(law.RawContent, nil)
				doc, err := prs.Parse(law, &stats)
				if err != nil {
					fmt.Fprintf(os.Stderr, "  [FAIL] %s: %v\n", law.ID, err)
					continue
				}
				if asJSON {
					data, err := json.MarshalIndent(doc, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					continue
				}
				fmt.Printf("  [OK]   %-10s %s\n", doc.ID, truncate(doc.Title, 60))
				fmt.Printf("         type=%s chapters=%d articles=%d footnotes=%d complexity=%.2f\n",
					doc.Type, len(doc.Chapters), doc.TotalArticles(),
					len(doc.Footnotes), doc.Metadata.ComplexityScore)
			}
			fmt.Printf("\nParsed %d documents: %d chapters, %d articles, %d notes\n",
				stats.DocumentsParsed, stats.ChaptersFound,
				stats.ArticlesExtracted, stats.NotesExtracted)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print full parsed documents as JSON")
	return cmd
}

func chunkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chunk [input-file]",
		Short: "Run split, parse, and chunk, printing chunk statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			source, err := openInput(args[0])
			if err != nil {
				return err
			}
			table, err := loadTable(cfg)
			if err != nil {
				return err
			}
			text, err := docsource.CombinedText(source)
			if err != nil {
				return err
			}

			sp := splitter.New(table)
			sp.MinLength = cfg.MinLawLength
			sp.QualityThreshold = cfg.QualityThreshold
			splitResult, err := sp.Split(text)
			if err != nil {
				return err
			}

			prs := parser.New(table)
			var docs []*docWithChunks
			var parseStats parser.Stats
			ch := chunker.New(cfg.Chunking)
			var chunkStats chunker.Stats
			annotator := metadata.New()

			for _, law := range splitResult.Laws {
				law.RawContent = textproc.Process(law.RawContent, nil)
				doc, err := prs.Parse(law, &parseStats)
				if err != nil {
					fmt.Fprintf(os.Stderr, "  [FAIL] %s: %v\n", law.ID, err)
					continue
				}
				chunks, err := ch.ChunkDocument(doc, &chunkStats)
				if err != nil {
					fmt.Fprintf(os.Stderr, "  [FAIL] %s: %v\n", doc.ID, err)
					continue
				}
				for _, chunk := range chunks {
					annotator.AnnotateChunk(chunk, doc, nil)
				}
				docs = append(docs, &docWithChunks{id: doc.ID, title: doc.Title, chunks: len(chunks)})
			}

			for _, d := range docs {
				fmt.Printf("  [OK]   %-10s %3d chunks  %s\n", d.id, d.chunks, truncate(d.title, 50))
			}
			fmt.Printf("\nCreated %d chunks over %d documents (oversized %d, undersized %d)\n",
				chunkStats.TotalChunksCreated, chunkStats.DocumentsChunked,
				chunkStats.OversizedChunks, chunkStats.UndersizedChunks)
			return nil
		},
	}
}

type docWithChunks struct {
	id     string
	title  string
	chunks int
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the last persisted processing report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			path := cfg.OutputPath(cfg.Output.ProcessingReport)
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("no processing report at %s (run process first): %w", path, err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "watch [input-dir]",
		Short: "Watch a directory and process documents as they appear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}
			table, err := loadTable(cfg)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, table)
			handler := func(path string) error {
				fmt.Printf("processing %s\n", path)
				source, err := docsource.NewTextFile(path)
				if err != nil {
					return err
				}
				result, err := p.Run(source)
				if err != nil {
					return err
				}
				if err := p.Persist(result, filepath.Base(path)); err != nil {
					return err
				}
				fmt.Print(pipeline.FormatResult(result))
				return nil
			}

			w, err := watch.New(args[0], handler, ".txt", ".text")
			if err != nil {
				return err
			}
			w.OnError = func(err error) {
				fmt.Fprintln(os.Stderr, err)
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			fmt.Printf("watching %s (Ctrl-C to stop)\n", args[0])
			select {}
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	return cmd
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
