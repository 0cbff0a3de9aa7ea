// Package chunker cuts parsed documents into retrieval-sized chunks.
// Structure comes first: every article, note, and subsection yields its
// own chunk, and only content longer than the size limit is split, by
// sentences then by words, with a short word overlap between pieces.
package chunker

import (
	"fmt"
	"strings"
	"time"

	"github.com/coolbeans/qanun/pkg/legal"
	"github.com/coolbeans/qanun/pkg/persian"
)

// Default chunk sizing, in characters.
const (
	DefaultMinSize = 200
	DefaultMaxSize = 1000
	DefaultOverlap = 100
)

// Config controls chunk sizing. OverlapWords overrides the derived
// word-overlap count when positive; otherwise Overlap/10 words are
// carried between split pieces, never fewer than one.
type Config struct {
	MinSize      int `yaml:"min_chunk_size" json:"min_chunk_size"`
	MaxSize      int `yaml:"max_chunk_size" json:"max_chunk_size"`
	Overlap      int `yaml:"chunk_overlap" json:"chunk_overlap"`
	OverlapWords int `yaml:"overlap_words,omitempty" json:"overlap_words,omitempty"`
}

// DefaultConfig returns the standard sizing.
func DefaultConfig() Config {
	return Config{MinSize: DefaultMinSize, MaxSize: DefaultMaxSize, Overlap: DefaultOverlap}
}

// Validate rejects inconsistent sizing.
func (c Config) Validate() error {
	if c.MinSize <= 0 || c.MaxSize <= 0 {
		return fmt.Errorf("chunk sizes must be positive (min %d, max %d)", c.MinSize, c.MaxSize)
	}
	if c.MinSize >= c.MaxSize {
		return fmt.Errorf("min chunk size %d must be below max %d", c.MinSize, c.MaxSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("negative chunk overlap %d", c.Overlap)
	}
	if c.Overlap >= c.MaxSize {
		return fmt.Errorf("chunk overlap %d must be below max size %d", c.Overlap, c.MaxSize)
	}
	return nil
}

func (c Config) overlapWordCount() int {
	if c.OverlapWords > 0 {
		return c.OverlapWords
	}
	if c.Overlap == 0 {
		return 0
	}
	n := c.Overlap / 10
	if n < 1 {
		n = 1
	}
	return n
}

// Stats accumulates chunking counters across a batch.
type Stats struct {
	DocumentsChunked   int `json:"documents_chunked"`
	TotalChunksCreated int `json:"total_chunks_created"`
	ArticleChunks      int `json:"article_chunks"`
	NoteChunks         int `json:"note_chunks"`
	SubsectionChunks   int `json:"subsection_chunks"`
	ChapterTitleChunks int `json:"chapter_title_chunks"`
	FootnoteChunks     int `json:"footnote_chunks"`
	OversizedChunks    int `json:"oversized_chunks"`
	UndersizedChunks   int `json:"undersized_chunks"`
}

// Chunker produces chunks under one sizing configuration.
type Chunker struct {
	cfg Config
}

// New returns a chunker for the configuration, defaulting zeroed sizes.
func New(cfg Config) *Chunker {
	if cfg.MinSize == 0 {
		cfg.MinSize = DefaultMinSize
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	return &Chunker{cfg: cfg}
}

// priorityBases orders chunk types for retrieval ranking.
var priorityBases = map[legal.ChunkType]int{
	legal.ChunkArticle:      100,
	legal.ChunkChapterTitle: 90,
	legal.ChunkNote:         80,
	legal.ChunkSubsection:   60,
	legal.ChunkFootnote:     40,
}

// Priority ranks a chunk: a fixed base per type plus a bonus for
// appearing early in the document.
func Priority(chunkType legal.ChunkType, position int) int {
	base, ok := priorityBases[chunkType]
	if !ok {
		base = 50
	}
	bonus := 50 - position
	if bonus < 0 {
		bonus = 0
	}
	return base + bonus
}

func runeLen(s string) int {
	return len([]rune(s))
}

// splitByWords greedily packs words up to the size limit.
func (c *Chunker) splitByWords(content string) []string {
	words := strings.Fields(content)

	var chunks []string
	var current []string
	length := 0
	for _, word := range words {
		wordLen := runeLen(word) + 1
		if length+wordLen <= c.cfg.MaxSize {
			current = append(current, word)
			length += wordLen
			continue
		}
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}
		current = []string{word}
		length = wordLen
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// addOverlap prefixes each piece after the first with the tail words of
// its predecessor. A piece keeps its original form when the prefix
// would push it past the size limit.
func (c *Chunker) addOverlap(chunks []string) []string {
	overlapWords := c.cfg.overlapWordCount()
	if len(chunks) <= 1 || overlapWords == 0 {
		return chunks
	}

	out := make([]string, 0, len(chunks))
	out = append(out, chunks[0])
	for i := 1; i < len(chunks); i++ {
		words := strings.Fields(chunks[i-1])
		if len(words) > overlapWords {
			words = words[len(words)-overlapWords:]
		}
		overlap := strings.Join(words, " ")
		if runeLen(overlap)+runeLen(chunks[i])+1 <= c.cfg.MaxSize {
			out = append(out, overlap+" "+chunks[i])
		} else {
			out = append(out, chunks[i])
		}
	}
	return out
}

// splitLongContent splits oversized content, preferring sentence
// boundaries and falling back to word packing, then applies overlap.
func (c *Chunker) splitLongContent(content string) []string {
	if runeLen(content) <= c.cfg.MaxSize {
		return []string{content}
	}

	sentences := persian.SplitSentences(content)
	if len(sentences) <= 1 {
		return c.addOverlap(c.splitByWords(content))
	}

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}
		if runeLen(candidate) <= c.cfg.MaxSize {
			current = candidate
			continue
		}
		if current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}
		if runeLen(sentence) <= c.cfg.MaxSize {
			current = sentence
		} else {
			wordChunks := c.splitByWords(sentence)
			if len(wordChunks) > 0 {
				chunks = append(chunks, wordChunks[:len(wordChunks)-1]...)
				current = wordChunks[len(wordChunks)-1]
			} else {
				current = ""
			}
		}
	}
	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return c.addOverlap(chunks)
}

// chunkMetadata builds the per-chunk metadata bag.
func chunkMetadata(sourceElement string, chunkType legal.ChunkType, documentID string, position int) map[string]any {
	return map[string]any{
		"source_element": sourceElement,
		"element_type":   string(chunkType),
		"document_id":    documentID,
		"position":       position,
		"priority":       Priority(chunkType, position),
		"creation_time":  time.Now().Format(time.RFC3339),
	}
}

// emit builds the chunks for one piece of content, splitting when
// oversized and numbering ids from *counter.
func (c *Chunker) emit(content, baseID, documentID string, chunkType legal.ChunkType,
	position int, counter *int, sourceElement string, keywords, references []string) ([]*legal.Chunk, error) {

	var chunks []*legal.Chunk
	for _, piece := range c.splitLongContent(content) {
		id := fmt.Sprintf("%s_%03d", baseID, *counter)
		chunk, err := legal.NewChunk(id, documentID, piece, chunkType, position)
		if err != nil {
			return nil, err
		}
		chunk.Keywords = keywords
		chunk.LegalReferences = references
		chunk.Metadata = chunkMetadata(sourceElement, chunkType, documentID, position)
		chunks = append(chunks, chunk)
		*counter++
	}
	return chunks, nil
}

func capStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// ChunkArticle produces the chunks for one article in reading order:
// the main content first, then each subsection, then each note.
func (c *Chunker) ChunkArticle(article *legal.Article, documentID string, position int,
	baseID string, stats *Stats) ([]*legal.Chunk, error) {

	var chunks []*legal.Chunk
	counter := 0

	if article.Content != "" {
		header := article.Number
		if article.Title != "" {
			header = fmt.Sprintf("%s - %s", article.Number, article.Title)
		}
		content := header + "\n\n" + article.Content

		emitted, err := c.emit(content, baseID, documentID, legal.ChunkArticle, position,
			&counter, article.Number, capStrings(article.Keywords, 10), []string{article.Number})
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, emitted...)
		if stats != nil {
			stats.ArticleChunks += len(emitted)
		}
	}

	for j, sub := range article.Subsections {
		if sub.Content == "" {
			continue
		}
		content := fmt.Sprintf("%s - بند %s\n\n%s", article.Number, sub.Number, sub.Content)
		emitted, err := c.emit(content, baseID, documentID, legal.ChunkSubsection, position,
			&counter, fmt.Sprintf("%s_subsection_%d", article.Number, j),
			capStrings(sub.Keywords, 5),
			[]string{article.Number, fmt.Sprintf("بند %s", sub.Number)})
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, emitted...)
		if stats != nil {
			stats.SubsectionChunks += len(emitted)
		}
	}

	for k, note := range article.Notes {
		if note.Content == "" {
			continue
		}
		content := fmt.Sprintf("%s - %s\n\n%s", article.Number, note.Number, note.Content)
		emitted, err := c.emit(content, baseID, documentID, legal.ChunkNote, position,
			&counter, fmt.Sprintf("%s_note_%d", article.Number, k),
			capStrings(note.Keywords, 5), []string{article.Number, note.Number})
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, emitted...)
		if stats != nil {
			stats.NoteChunks += len(emitted)
		}
	}

	return chunks, nil
}

// ChunkChapter produces a chapter's chunks: a title chunk when the
// chapter carries a title, then every article in order.
func (c *Chunker) ChunkChapter(chapter *legal.Chapter, documentID string, position int,
	baseID string, stats *Stats) ([]*legal.Chunk, error) {

	var chunks []*legal.Chunk
	counter := 0

	if chapter.Title != "" {
		content := fmt.Sprintf("%s - %s", chapter.Number, chapter.Title)
		id := fmt.Sprintf("%s_%03d", baseID, counter)
		chunk, err := legal.NewChunk(id, documentID, content, legal.ChunkChapterTitle, position)
		if err != nil {
			return nil, err
		}
		chunk.Keywords = persian.ExtractKeywords(content, 5)
		chunk.LegalReferences = []string{chapter.Number}
		chunk.Metadata = chunkMetadata(chapter.Number, legal.ChunkChapterTitle, documentID, position)
		chunks = append(chunks, chunk)
		counter++
		if stats != nil {
			stats.ChapterTitleChunks++
		}
	}

	for i, article := range chapter.Articles {
		emitted, err := c.ChunkArticle(article, documentID, position+i+1,
			fmt.Sprintf("%s_%d", baseID, counter), stats)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, emitted...)
		counter += len(emitted)
	}
	return chunks, nil
}

// ChunkDocument produces every chunk for one document: chapters in
// order, then standalone articles, then one combined footnote chunk.
func (c *Chunker) ChunkDocument(doc *legal.Document, stats *Stats) ([]*legal.Chunk, error) {
	var chunks []*legal.Chunk
	position := 0

	for i, chapter := range doc.Chapters {
		emitted, err := c.ChunkChapter(chapter, doc.ID, position,
			fmt.Sprintf("%s_ch%d", doc.ID, i), stats)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		chunks = append(chunks, emitted...)
		position += len(emitted)
	}

	for i, article := range doc.StandaloneArticles {
		emitted, err := c.ChunkArticle(article, doc.ID, position,
			fmt.Sprintf("%s_art%d", doc.ID, i), stats)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		chunks = append(chunks, emitted...)
		position += len(emitted)
	}

	if len(doc.Footnotes) > 0 {
		var lines []string
		for i, footnote := range doc.Footnotes {
			lines = append(lines, fmt.Sprintf("پاورقی %d: %s", i+1, footnote))
		}
		content := strings.Join(lines, "\n\n")

		chunk, err := legal.NewChunk(doc.ID+"_footnotes", doc.ID, content, legal.ChunkFootnote, position)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		chunk.Keywords = persian.ExtractKeywords(content, 5)
		chunk.LegalReferences = []string{"پاورقی"}
		chunk.Metadata = chunkMetadata("footnotes", legal.ChunkFootnote, doc.ID, position)
		chunks = append(chunks, chunk)
		if stats != nil {
			stats.FootnoteChunks++
		}
	}

	if stats != nil {
		stats.DocumentsChunked++
		stats.TotalChunksCreated += len(chunks)
		for _, chunk := range chunks {
			if chunk.CharacterCount > c.cfg.MaxSize {
				stats.OversizedChunks++
			} else if chunk.CharacterCount < c.cfg.MinSize {
				stats.UndersizedChunks++
			}
		}
	}
	return chunks, nil
}

// ChunkBatch chunks every document, recording per-document failures in
// the report without aborting the batch.
func (c *Chunker) ChunkBatch(documents []*legal.Document, stats *Stats) ([]*legal.Chunk, *legal.ProcessingReport) {
	report := legal.NewProcessingReport("text_chunking", len(documents))

	var all []*legal.Chunk
	for _, doc := range documents {
		chunks, err := c.ChunkDocument(doc, stats)
		if err != nil {
			report.AddError(err.Error())
			continue
		}
		all = append(all, chunks...)
		report.ProcessedItems++
	}

	report.Finish(legal.StatusCompleted)
	if stats != nil {
		report.Statistics = map[string]any{"chunking": *stats}
	}
	return all, report
}
