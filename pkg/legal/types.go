// Package legal defines the data model for Persian legal documents:
// law records, the chapter/article/note/subsection tree, text chunks,
// and processing reports shared by every pipeline stage.
package legal

import (
	"fmt"
	"strings"
	"time"
)

// Unknown is the sentinel value used wherever a field could not be
// determined from the source text (date, authority, type, ...).
const Unknown = "نامشخص"

// DocumentType classifies a legal document by its title keywords.
type DocumentType string

const (
	DocTypeLaw         DocumentType = "قانون"
	DocTypeRegulation  DocumentType = "آیین‌نامه"
	DocTypeInstruction DocumentType = "دستورالعمل"
	DocTypeResolution  DocumentType = "مصوبه"
	DocTypeCircular    DocumentType = "بخشنامه"
	DocTypeUnknown     DocumentType = Unknown
)

// DetectDocumentType infers the document type from title keywords.
// Detection order is fixed: law > regulation > instruction > resolution > circular.
func DetectDocumentType(title string) DocumentType {
	switch {
	case strings.Contains(title, "قانون"):
		return DocTypeLaw
	case strings.Contains(title, "آیین‌نامه") || strings.Contains(title, "آیین نامه"):
		return DocTypeRegulation
	case strings.Contains(title, "دستورالعمل"):
		return DocTypeInstruction
	case strings.Contains(title, "مصوبه"):
		return DocTypeResolution
	case strings.Contains(title, "بخشنامه"):
		return DocTypeCircular
	default:
		return DocTypeUnknown
	}
}

// Authority identifies the body that approved a legal document.
type Authority string

const (
	AuthorityParliament     Authority = "مجلس شورای اسلامی"
	AuthorityCabinet        Authority = "هیئت‌وزیران"
	AuthoritySupremeCouncil Authority = "شورای عالی انقلاب فرهنگی"
	AuthorityMinistry       Authority = "وزارتخانه"
	AuthorityUnknown        Authority = Unknown
)

// SubsectionKind tags the marker style of a subsection.
type SubsectionKind string

const (
	SubsectionNumbered SubsectionKind = "numbered"
	SubsectionLettered SubsectionKind = "lettered"
	SubsectionDash     SubsectionKind = "dash"
)

// ChunkType classifies a text chunk by the structural element it came from.
type ChunkType string

const (
	ChunkArticle      ChunkType = "article"
	ChunkNote         ChunkType = "note"
	ChunkSubsection   ChunkType = "subsection"
	ChunkChapterTitle ChunkType = "chapter_title"
	ChunkFootnote     ChunkType = "footnote"
	ChunkCombined     ChunkType = "combined"
)

// Status tracks the processing state of a document or batch operation.
type Status string

const (
	StatusPending    Status = "در انتظار"
	StatusProcessing Status = "در حال پردازش"
	StatusCompleted  Status = "تکمیل شده"
	StatusError      Status = "خطا"
)

// LawRecord is one self-contained statute extracted from the combined
// source document. Created by the splitter; immutable afterwards.
type LawRecord struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	ApprovalDate      string    `json:"approval_date"`
	ApprovalAuthority string    `json:"approval_authority"`
	RawContent        string    `json:"raw_content"`
	WordCount         int       `json:"word_count"`
	ExtractedAt       time.Time `json:"extraction_timestamp"`
	QualityScore      float64   `json:"quality_score"`
}

// Subsection is a lettered, numbered, or dash-marked sub-clause within
// an article or note.
type Subsection struct {
	Number   string         `json:"number"`
	Content  string         `json:"content"`
	Kind     SubsectionKind `json:"type"`
	Keywords []string       `json:"keywords"`
}

// NewSubsection builds a subsection, rejecting empty content.
func NewSubsection(number, content string, kind SubsectionKind) (*Subsection, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("subsection %q: empty content", number)
	}
	return &Subsection{Number: number, Content: content, Kind: kind}, nil
}

// Note is an explanatory clause (تبصره) attached to an article.
type Note struct {
	Number      string        `json:"number"`
	Content     string        `json:"content"`
	Subsections []*Subsection `json:"subsections"`
	Keywords    []string      `json:"keywords"`
}

// NewNote builds a note, rejecting empty content.
func NewNote(number, content string) (*Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("note %q: empty content", number)
	}
	return &Note{Number: number, Content: content}, nil
}

// Article is the primary numbered provision unit (ماده). Content holds
// the prose not captured by any child note or subsection.
type Article struct {
	Number      string        `json:"number"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Subsections []*Subsection `json:"subsections"`
	Notes       []*Note       `json:"notes"`
	Keywords    []string      `json:"keywords"`
	WordCount   int           `json:"word_count"`
}

// NewArticle builds an article, rejecting empty content. Title may be empty.
func NewArticle(number, title, content string) (*Article, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("article %q: empty content", number)
	}
	return &Article{
		Number:    number,
		Title:     strings.TrimSpace(title),
		Content:   content,
		WordCount: len(strings.Fields(content)),
	}, nil
}

// Chapter is a top-level grouping (فصل) of articles.
type Chapter struct {
	Number   string     `json:"number"`
	Title    string     `json:"title"`
	Articles []*Article `json:"articles"`
}

// ArticleCount returns the number of articles in the chapter.
func (c *Chapter) ArticleCount() int {
	return len(c.Articles)
}

// TotalWordCount returns the aggregate word count over the chapter's articles.
func (c *Chapter) TotalWordCount() int {
	total := 0
	for _, a := range c.Articles {
		total += a.WordCount
	}
	return total
}

// DocumentMetadata holds derived statistics and scores for a document.
// Extensions is an explicit key-value bag for annotator output (keywords,
// categories, references) so no structural field gets repurposed for it.
type DocumentMetadata struct {
	WordCount       int            `json:"word_count"`
	CharacterCount  int            `json:"character_count"`
	StructureType   string         `json:"structure_type"`
	HasFootnotes    bool           `json:"has_footnotes"`
	ComplexityScore float64        `json:"complexity_score"`
	QualityScore    float64        `json:"quality_score"`
	ProcessingTime  float64        `json:"processing_time,omitempty"`
	Errors          []string       `json:"extraction_errors,omitempty"`
	Extensions      map[string]any `json:"extensions,omitempty"`
}

// Document is a fully parsed legal document. StandaloneArticles is
// populated only when the source text has no chapter structure.
type Document struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	ApprovalDate       string           `json:"approval_date"`
	ApprovalAuthority  string           `json:"approval_authority"`
	Type               DocumentType     `json:"document_type"`
	Chapters           []*Chapter       `json:"chapters"`
	StandaloneArticles []*Article       `json:"standalone_articles"`
	Footnotes          []string         `json:"footnotes"`
	Metadata           DocumentMetadata `json:"metadata"`
	RawContent         string           `json:"raw_content,omitempty"`
	Status             Status           `json:"status"`
	ParsedAt           time.Time        `json:"parsing_timestamp"`
}

// NewDocument builds a document shell, rejecting an empty title and
// normalizing empty date/authority to the unknown sentinel.
func NewDocument(id, title, approvalDate, approvalAuthority string, docType DocumentType) (*Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("document %q: empty title", id)
	}
	if strings.TrimSpace(approvalDate) == "" {
		approvalDate = Unknown
	}
	if strings.TrimSpace(approvalAuthority) == "" {
		approvalAuthority = Unknown
	}
	if docType == "" {
		docType = DocTypeUnknown
	}
	return &Document{
		ID:                id,
		Title:             title,
		ApprovalDate:      approvalDate,
		ApprovalAuthority: approvalAuthority,
		Type:              docType,
		Status:            StatusPending,
		ParsedAt:          time.Now(),
	}, nil
}

// TotalArticles returns the article count across chapters and
// standalone articles.
func (d *Document) TotalArticles() int {
	total := len(d.StandaloneArticles)
	for _, c := range d.Chapters {
		total += len(c.Articles)
	}
	return total
}

// TotalWordCount returns the word count over every article in the document.
func (d *Document) TotalWordCount() int {
	total := 0
	for _, c := range d.Chapters {
		total += c.TotalWordCount()
	}
	for _, a := range d.StandaloneArticles {
		total += a.WordCount
	}
	return total
}

// AllArticles returns every article in document order.
func (d *Document) AllArticles() []*Article {
	var articles []*Article
	for _, c := range d.Chapters {
		articles = append(articles, c.Articles...)
	}
	articles = append(articles, d.StandaloneArticles...)
	return articles
}

// Chunk is a bounded text fragment sized for retrieval indexing.
// Never mutated after creation.
type Chunk struct {
	ID              string         `json:"id"`
	DocumentID      string         `json:"document_id"`
	Content         string         `json:"content"`
	Type            ChunkType      `json:"chunk_type"`
	Position        int            `json:"position"`
	WordCount       int            `json:"word_count"`
	CharacterCount  int            `json:"character_count"`
	Keywords        []string       `json:"keywords"`
	LegalReferences []string       `json:"legal_references"`
	Metadata        map[string]any `json:"metadata"`
}

// NewChunk builds a chunk, rejecting empty content. Word and character
// counts are computed from the final trimmed content.
func NewChunk(id, documentID, content string, chunkType ChunkType, position int) (*Chunk, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("chunk %q: empty content", id)
	}
	return &Chunk{
		ID:             id,
		DocumentID:     documentID,
		Content:        content,
		Type:           chunkType,
		Position:       position,
		WordCount:      len(strings.Fields(content)),
		CharacterCount: len([]rune(content)),
		Metadata:       make(map[string]any),
	}, nil
}

// QualityAssessment records the outcome of a document quality check.
type QualityAssessment struct {
	DocumentID        string    `json:"document_id"`
	OverallScore      float64   `json:"overall_score"`
	StructureScore    float64   `json:"structure_score"`
	ContentScore      float64   `json:"content_score"`
	CompletenessScore float64   `json:"completeness_score"`
	Issues            []string  `json:"issues"`
	Recommendations   []string  `json:"recommendations"`
	AssessedAt        time.Time `json:"assessment_date"`
}
