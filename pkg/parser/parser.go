// Package parser turns flat law records into the structured document
// tree: chapters, articles, notes, subsections, and footnotes, located
// through the marker rule table.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/coolbeans/qanun/pkg/legal"
	"github.com/coolbeans/qanun/pkg/pattern"
	"github.com/coolbeans/qanun/pkg/persian"
)

// Keyword caps per structural level.
const (
	articleKeywords    = 10
	subElementKeywords = 5
)

// Structure type labels stored in document metadata.
const (
	StructureChaptered = "با فصل"
	StructureFlat      = "بدون فصل"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Stats accumulates parsing counters across a batch.
type Stats struct {
	DocumentsParsed   int `json:"documents_parsed"`
	ArticlesExtracted int `json:"articles_extracted"`
	ChaptersFound     int `json:"chapters_found"`
	NotesExtracted    int `json:"notes_extracted"`
	ParsingErrors     int `json:"parsing_errors"`
}

// Parser extracts document structure using a marker table.
type Parser struct {
	table *pattern.Table
}

// New returns a parser over the given marker table.
func New(table *pattern.Table) *Parser {
	if table == nil {
		table = pattern.DefaultTable()
	}
	return &Parser{table: table}
}

// subsectionKind maps a marker family to the subsection kind it yields.
func subsectionKind(f pattern.Family) legal.SubsectionKind {
	switch f {
	case pattern.FamilySubNumbered:
		return legal.SubsectionNumbered
	case pattern.FamilySubLettered:
		return legal.SubsectionLettered
	default:
		return legal.SubsectionDash
	}
}

// extractSubsections finds numbered, lettered, and dash sub-clauses in
// the text. All three families are matched together so each clause ends
// where the next clause of any kind begins.
func (p *Parser) extractSubsections(text string) []*legal.Subsection {
	boundaries := p.table.FindBoundaries(text,
		pattern.FamilySubNumbered, pattern.FamilySubLettered, pattern.FamilySubDash)

	var subsections []*legal.Subsection
	for _, b := range boundaries {
		number := b.Label
		if b.Family == pattern.FamilySubDash {
			number = "-"
		}
		sub, err := legal.NewSubsection(number, b.Body(text), subsectionKind(b.Family))
		if err != nil {
			continue
		}
		sub.Keywords = persian.ExtractKeywords(sub.Content, subElementKeywords)
		subsections = append(subsections, sub)
	}
	return subsections
}

// extractNotes finds the notes (تبصره) in an article body. Each note's
// content is scanned again for sub-clauses of its own.
func (p *Parser) extractNotes(text string) []*legal.Note {
	boundaries := p.table.FindBoundaries(text, pattern.FamilyNote)

	var notes []*legal.Note
	for _, b := range boundaries {
		note, err := legal.NewNote(b.Label, b.Body(text))
		if err != nil {
			continue
		}
		note.Subsections = p.extractSubsections(note.Content)
		note.Keywords = persian.ExtractKeywords(note.Content, subElementKeywords)
		notes = append(notes, note)
	}
	return notes
}

// extractFootnotes collects parenthesized footnotes from the document
// text. Each footnote runs to the start of the next footnote marker.
func (p *Parser) extractFootnotes(text string) []string {
	var footnotes []string
	for _, b := range p.table.FindBoundaries(text, pattern.FamilyFootnote) {
		body := strings.TrimSpace(b.Body(text))
		if body != "" {
			footnotes = append(footnotes, body)
		}
	}
	return footnotes
}

// parseArticle builds one article from its boundary. The article number
// comes from the marker label; the rest of the header line flows into
// the content so nothing after the dash is lost. Sub-clauses are taken
// from the region before the first note, notes from there on.
func (p *Parser) parseArticle(text string, b pattern.Boundary) (*legal.Article, error) {
	body := strings.TrimSpace(b.Body(text))

	noteBoundaries := p.table.FindBoundaries(body, pattern.FamilyNote)
	preNote := body
	if len(noteBoundaries) > 0 {
		preNote = body[:noteBoundaries[0].Start]
	}

	subsections := p.extractSubsections(preNote)
	notes := p.extractNotes(body)

	mainContent := preNote
	for _, sub := range subsections {
		mainContent = strings.Replace(mainContent, sub.Content, "", 1)
	}
	mainContent = strings.TrimSpace(whitespaceRun.ReplaceAllString(mainContent, " "))

	article, err := legal.NewArticle(b.Label, b.Title, mainContent)
	if err != nil {
		return nil, err
	}
	article.Subsections = subsections
	article.Notes = notes
	article.Keywords = persian.ExtractKeywords(body, articleKeywords)
	return article, nil
}

// extractArticles parses every article found in the text, which may be
// a chapter span or a whole chapterless document.
func (p *Parser) extractArticles(text string, stats *Stats) ([]*legal.Article, error) {
	var articles []*legal.Article
	for _, b := range p.table.FindBoundaries(text, pattern.FamilyArticle) {
		article, err := p.parseArticle(text, b)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
		if stats != nil {
			stats.ArticlesExtracted++
			stats.NotesExtracted += len(article.Notes)
		}
	}
	return articles, nil
}

// parseChapter builds one chapter and its articles from a chapter span.
func (p *Parser) parseChapter(text string, b pattern.Boundary, stats *Stats) (*legal.Chapter, error) {
	articles, err := p.extractArticles(b.Span(text), stats)
	if err != nil {
		return nil, fmt.Errorf("chapter %q: %w", b.Label, err)
	}
	return &legal.Chapter{Number: b.Label, Title: b.Title, Articles: articles}, nil
}

// ComplexityScore rates the structural complexity of a document from
// its chapter, article, subsection, and note counts.
func ComplexityScore(chapters []*legal.Chapter, standalone []*legal.Article) float64 {
	score := 0.0

	if len(chapters) > 0 {
		score += 0.3
		score += minF(float64(len(chapters))*0.1, 0.2)
	}

	totalArticles := len(standalone)
	for _, ch := range chapters {
		totalArticles += len(ch.Articles)
	}
	score += minF(float64(totalArticles)*0.05, 0.3)

	subsections, notes := 0, 0
	countArticle := func(a *legal.Article) {
		subsections += len(a.Subsections)
		notes += len(a.Notes)
	}
	for _, a := range standalone {
		countArticle(a)
	}
	for _, ch := range chapters {
		for _, a := range ch.Articles {
			countArticle(a)
		}
	}
	score += minF(float64(subsections)*0.02, 0.1)
	score += minF(float64(notes)*0.03, 0.1)

	return minF(score, 1.0)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Parse builds the structured document for one law record. Chapters are
// parsed first; when the text has none, every article is standalone.
// A structural defect (an article with no content) fails this record
// without touching the stats of other records.
func (p *Parser) Parse(record *legal.LawRecord, stats *Stats) (*legal.Document, error) {
	text := strings.TrimSpace(record.RawContent)
	if text == "" {
		if stats != nil {
			stats.ParsingErrors++
		}
		return nil, fmt.Errorf("document %s: no raw content", record.ID)
	}

	doc, err := legal.NewDocument(record.ID, record.Title, record.ApprovalDate,
		record.ApprovalAuthority, legal.DetectDocumentType(record.Title))
	if err != nil {
		if stats != nil {
			stats.ParsingErrors++
		}
		return nil, err
	}

	for _, b := range p.table.FindBoundaries(text, pattern.FamilyChapter) {
		chapter, err := p.parseChapter(text, b, stats)
		if err != nil {
			if stats != nil {
				stats.ParsingErrors++
			}
			return nil, fmt.Errorf("document %s: %w", record.ID, err)
		}
		doc.Chapters = append(doc.Chapters, chapter)
		if stats != nil {
			stats.ChaptersFound++
		}
	}

	if len(doc.Chapters) == 0 {
		standalone, err := p.extractArticles(text, stats)
		if err != nil {
			if stats != nil {
				stats.ParsingErrors++
			}
			return nil, fmt.Errorf("document %s: %w", record.ID, err)
		}
		doc.StandaloneArticles = standalone
	}

	doc.Footnotes = p.extractFootnotes(text)

	structureType := StructureFlat
	if len(doc.Chapters) > 0 {
		structureType = StructureChaptered
	}
	doc.Metadata = legal.DocumentMetadata{
		WordCount:       len(strings.Fields(text)),
		CharacterCount:  len([]rune(text)),
		StructureType:   structureType,
		HasFootnotes:    len(doc.Footnotes) > 0,
		ComplexityScore: ComplexityScore(doc.Chapters, doc.StandaloneArticles),
		QualityScore:    record.QualityScore,
	}
	doc.RawContent = text
	doc.Status = legal.StatusCompleted
	doc.ParsedAt = time.Now()

	if stats != nil {
		stats.DocumentsParsed++
	}
	return doc, nil
}
