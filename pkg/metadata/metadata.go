// Package metadata enriches parsed documents and chunks with derived
// metadata: keywords, legal references, categories, complexity metrics,
// quality assessments, and chunk importance scores.
package metadata

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/coolbeans/qanun/pkg/legal"
	"github.com/coolbeans/qanun/pkg/persian"
)

// maxDocumentKeywords caps the keyword list stored per document.
const maxDocumentKeywords = 20

// Stats accumulates annotation counters across a batch.
type Stats struct {
	DocumentsProcessed int `json:"documents_processed"`
	KeywordsExtracted  int `json:"keywords_extracted"`
	ReferencesFound    int `json:"references_found"`
	QualityAssessments int `json:"quality_assessments"`
}

// Reference is one legal citation found in running text.
type Reference struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Value    string `json:"value"`
	Position int    `json:"position"`
}

// referencePatterns recognize citations of laws, structural units, and
// approval-date clauses.
var referencePatterns = []struct {
	re      *regexp.Regexp
	refType string
}{
	{regexp.MustCompile(`قانون\s+([^.،؛\n]+)`), "law"},
	{regexp.MustCompile(`آیین‌نامه\s+([^.،؛\n]+)`), "regulation"},
	{regexp.MustCompile(`دستورالعمل\s+([^.،؛\n]+)`), "instruction"},
	{regexp.MustCompile(`ماده\s*([۰-۹]+|واحده)`), "article"},
	{regexp.MustCompile(`تبصره\s*([۰-۹]*)`), "note"},
	{regexp.MustCompile(`بند\s*([۰-۹]+)`), "subsection"},
	{regexp.MustCompile(`فصل\s*([۰-۹]+)`), "chapter"},
	{regexp.MustCompile(`مصوب\s*([۰-۹/]+)`), "approval_date"},
}

// authorityPatterns map each approving body to the phrasings that name it.
var authorityPatterns = []struct {
	authority legal.Authority
	patterns  []*regexp.Regexp
}{
	{legal.AuthorityParliament, []*regexp.Regexp{
		regexp.MustCompile(`مجلس\s*شورای\s*اسلامی`),
		regexp.MustCompile(`مجلس`),
		regexp.MustCompile(`پارلمان`),
	}},
	{legal.AuthorityCabinet, []*regexp.Regexp{
		regexp.MustCompile(`هیئت\s*وزیران`),
		regexp.MustCompile(`هیات\s*وزیران`),
		regexp.MustCompile(`کابینه`),
	}},
	{legal.AuthoritySupremeCouncil, []*regexp.Regexp{
		regexp.MustCompile(`شورای\s*عالی\s*انقلاب\s*فرهنگی`),
		regexp.MustCompile(`شعاف`),
	}},
	{legal.AuthorityMinistry, []*regexp.Regexp{
		regexp.MustCompile(`وزارت\s*علوم`),
		regexp.MustCompile(`وزیر\s*علوم`),
	}},
}

// categoryKeywords drive subject categorization. A category applies
// when at least two of its keywords occur in the document.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"اداری", []string{"اداری", "ادارات", "بروکراسی", "مدیریت", "سازمان"}},
	{"آموزشی", []string{"آموزش", "تحصیل", "دانشگاه", "دانشکده", "دانشجو"}},
	{"پژوهشی", []string{"پژوهش", "تحقیق", "تحقیقات", "علمی", "فناوری"}},
	{"مالی", []string{"مالی", "بودجه", "هزینه", "اعتبار", "تأمین"}},
	{"حقوقی", []string{"حقوق", "قانون", "مقررات", "آیین‌نامه", "دستورالعمل"}},
	{"انتظامی", []string{"انتظامی", "تأدیب", "تخلف", "جزا", "مجازات"}},
}

// Annotator derives metadata for documents and chunks.
type Annotator struct{}

// New returns an annotator.
func New() *Annotator {
	return &Annotator{}
}

// ExtractReferences finds every legal citation in the text.
func (a *Annotator) ExtractReferences(text string, stats *Stats) []Reference {
	var refs []Reference
	for _, p := range referencePatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			ref := Reference{
				Type:     p.refType,
				Text:     text[idx[0]:idx[1]],
				Position: idx[0],
			}
			if len(idx) > 2 && idx[2] >= 0 {
				ref.Value = text[idx[2]:idx[3]]
			} else {
				ref.Value = ref.Text
			}
			refs = append(refs, ref)
		}
	}
	if stats != nil {
		stats.ReferencesFound += len(refs)
	}
	return refs
}

// IdentifyAuthority finds the first approving body named in the text.
func (a *Annotator) IdentifyAuthority(text string) legal.Authority {
	for _, entry := range authorityPatterns {
		for _, re := range entry.patterns {
			if re.MatchString(text) {
				return entry.authority
			}
		}
	}
	return legal.AuthorityUnknown
}

// collectText gathers every text field of a document in reading order.
func collectText(doc *legal.Document) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	add(doc.Title)
	appendArticle := func(article *legal.Article) {
		add(article.Title)
		add(article.Content)
		for _, sub := range article.Subsections {
			add(sub.Content)
		}
		for _, note := range article.Notes {
			add(note.Content)
		}
	}
	for _, chapter := range doc.Chapters {
		add(chapter.Title)
		for _, article := range chapter.Articles {
			appendArticle(article)
		}
	}
	for _, article := range doc.StandaloneArticles {
		appendArticle(article)
	}
	parts = append(parts, doc.Footnotes...)
	return strings.Join(parts, " ")
}

// DocumentKeywords extracts the document-level keyword list from every
// text field combined.
func (a *Annotator) DocumentKeywords(doc *legal.Document, stats *Stats) []string {
	keywords := persian.ExtractKeywords(collectText(doc), maxDocumentKeywords)
	if stats != nil {
		stats.KeywordsExtracted += len(keywords)
	}
	return keywords
}

// Categorize assigns subject categories by keyword hits. Documents that
// match nothing get a single fallback category by type.
func (a *Annotator) Categorize(doc *legal.Document) []string {
	text := doc.Title
	if doc.RawContent != "" {
		text += " " + doc.RawContent
	}

	var categories []string
	for _, entry := range categoryKeywords {
		hits := 0
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				hits++
			}
		}
		if hits >= 2 {
			categories = append(categories, entry.category)
		}
	}

	if len(categories) == 0 {
		if doc.Type == legal.DocTypeLaw {
			categories = append(categories, "قانونی")
		} else {
			categories = append(categories, "عمومی")
		}
	}
	return categories
}

// ComplexityMetrics holds the per-axis complexity scores of a document.
type ComplexityMetrics struct {
	Structural float64 `json:"structural_complexity"`
	Textual    float64 `json:"textual_complexity"`
	Legal      float64 `json:"legal_complexity"`
	Overall    float64 `json:"overall_complexity"`
}

// ComplexityFor computes the structural, textual, and legal complexity
// of a document and their weighted overall score.
func (a *Annotator) ComplexityFor(doc *legal.Document) ComplexityMetrics {
	var m ComplexityMetrics

	subsections, notes := 0, 0
	for _, article := range doc.AllArticles() {
		subsections += len(article.Subsections)
		notes += len(article.Notes)
	}
	m.Structural = clamp(float64(len(doc.Chapters))*0.1 +
		float64(doc.TotalArticles())*0.05 +
		float64(subsections)*0.02 +
		float64(notes)*0.03)

	totalWords := doc.TotalWordCount()
	avgSentenceLength := 0.0
	if doc.RawContent != "" {
		if sentences := persian.SplitSentences(doc.RawContent); len(sentences) > 0 {
			avgSentenceLength = float64(totalWords) / float64(len(sentences))
		}
	}
	m.Textual = clamp(float64(totalWords)/10000 + avgSentenceLength/50)

	refs := a.ExtractReferences(doc.RawContent, nil)
	legalTerms := 0
	for term := range persian.LegalTerms {
		if strings.Contains(doc.RawContent, term) {
			legalTerms++
		}
	}
	m.Legal = clamp(float64(len(refs))*0.05 + float64(legalTerms)*0.02)

	m.Overall = m.Structural*0.4 + m.Textual*0.3 + m.Legal*0.3
	return m
}

func clamp(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0.0 {
		return 0.0
	}
	return v
}

// AssessQuality scores a document on structure, content, and
// completeness, collecting the issues found and recommendations.
func (a *Annotator) AssessQuality(doc *legal.Document, stats *Stats) *legal.QualityAssessment {
	var issues, recommendations []string

	structureScore := 1.0
	if strings.TrimSpace(doc.Title) == "" {
		issues = append(issues, "عنوان سند خالی است")
		structureScore -= 0.3
	}
	if doc.TotalArticles() == 0 {
		issues = append(issues, "هیچ ماده‌ای در سند یافت نشد")
		structureScore -= 0.5
	}
	if doc.ApprovalDate == "" || doc.ApprovalDate == legal.Unknown {
		issues = append(issues, "تاریخ تصویب مشخص نیست")
		structureScore -= 0.2
	}

	contentScore := 1.0
	if doc.TotalWordCount() < 50 {
		issues = append(issues, "محتوای سند بسیار کوتاه است")
		contentScore -= 0.4
	}
	if doc.RawContent != "" && !persian.IsValidPersian(doc.RawContent) {
		issues = append(issues, "محتوای فارسی نامعتبر یا ناکافی")
		contentScore -= 0.3
	}

	completenessScore := 1.0
	missing := 0
	for _, field := range []string{doc.Title, doc.ApprovalDate, string(doc.Type)} {
		if field == "" || field == legal.Unknown {
			missing++
		}
	}
	completenessScore -= float64(missing) * 0.2

	overall := (structureScore + contentScore + completenessScore) / 3

	if overall < 0.6 {
		recommendations = append(recommendations, "کیفیت کلی سند پایین است - بازنگری کامل توصیه می‌شود")
	}
	if structureScore < 0.7 {
		recommendations = append(recommendations, "ساختار سند نیاز به بهبود دارد")
	}
	if contentScore < 0.7 {
		recommendations = append(recommendations, "محتوای سند نیاز به تکمیل و بهبود دارد")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "کیفیت سند قابل قبول است")
	}

	if stats != nil {
		stats.QualityAssessments++
	}
	return &legal.QualityAssessment{
		DocumentID:        doc.ID,
		OverallScore:      clamp(overall),
		StructureScore:    clamp(structureScore),
		ContentScore:      clamp(contentScore),
		CompletenessScore: clamp(completenessScore),
		Issues:            issues,
		Recommendations:   recommendations,
		AssessedAt:        time.Now(),
	}
}

// AnnotateDocument fills the document metadata: keywords, categories,
// legal references, and complexity metrics land in the Extensions bag.
func (a *Annotator) AnnotateDocument(doc *legal.Document, stats *Stats) {
	keywords := a.DocumentKeywords(doc, stats)
	refs := a.ExtractReferences(doc.RawContent, stats)
	categories := a.Categorize(doc)
	complexity := a.ComplexityFor(doc)

	doc.Metadata.ComplexityScore = complexity.Overall
	if doc.Metadata.Extensions == nil {
		doc.Metadata.Extensions = make(map[string]any)
	}
	doc.Metadata.Extensions["keywords"] = keywords
	doc.Metadata.Extensions["categories"] = categories
	doc.Metadata.Extensions["legal_references"] = refs
	doc.Metadata.Extensions["complexity_metrics"] = complexity
	doc.Metadata.Extensions["statistics"] = map[string]any{
		"chapter_count":      len(doc.Chapters),
		"article_count":      doc.TotalArticles(),
		"footnote_count":     len(doc.Footnotes),
		"approval_authority": doc.ApprovalAuthority,
	}
	doc.Metadata.Extensions["generation_timestamp"] = time.Now().Format(time.RFC3339)

	if stats != nil {
		stats.DocumentsProcessed++
	}
}

// ChunkQuality scores one chunk from its length, Persian validity, and
// word count relative to its structural type.
func (a *Annotator) ChunkQuality(chunk *legal.Chunk) float64 {
	score := 1.0

	if chunk.CharacterCount < 100 {
		score -= 0.3
	} else if chunk.CharacterCount > 1500 {
		score -= 0.2
	}
	if !persian.IsValidPersian(chunk.Content) {
		score -= 0.4
	}
	if (chunk.Type == legal.ChunkArticle || chunk.Type == legal.ChunkNote) && chunk.WordCount < 10 {
		score -= 0.2
	}

	if score < 0 {
		score = 0
	}
	return score
}

// importanceScore weights a chunk by type, citation density, and legal
// vocabulary.
func (a *Annotator) importanceScore(chunk *legal.Chunk, keywords []string, refs []Reference) float64 {
	score := 0.0
	switch chunk.Type {
	case legal.ChunkArticle:
		score += 0.5
	case legal.ChunkNote:
		score += 0.3
	case legal.ChunkSubsection:
		score += 0.2
	}

	score += minF(float64(len(refs))*0.1, 0.3)

	legalCount := 0
	for _, keyword := range keywords {
		if persian.IsLegalTerm(keyword) {
			legalCount++
		}
	}
	score += minF(float64(legalCount)*0.05, 0.2)

	return clamp(score)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// AnnotateChunk enriches one chunk's metadata with fresh keywords,
// references, importance, source document info, and a quality score.
func (a *Annotator) AnnotateChunk(chunk *legal.Chunk, doc *legal.Document, stats *Stats) {
	keywords := persian.ExtractKeywords(chunk.Content, 10)
	refs := a.ExtractReferences(chunk.Content, stats)

	if chunk.Metadata == nil {
		chunk.Metadata = make(map[string]any)
	}
	chunk.Metadata["chunk_keywords"] = keywords
	chunk.Metadata["legal_references"] = refs
	chunk.Metadata["importance_score"] = a.importanceScore(chunk, keywords, refs)
	chunk.Metadata["source_document_title"] = doc.Title
	chunk.Metadata["source_document_type"] = string(doc.Type)
	chunk.Metadata["extraction_quality"] = a.ChunkQuality(chunk)
	chunk.Metadata["generation_timestamp"] = time.Now().Format(time.RFC3339)
}

// Summary is the batch-level metadata report.
type Summary struct {
	GeneratedAt        time.Time      `json:"generation_timestamp"`
	Stats              Stats          `json:"generation_statistics"`
	DocumentStatistics map[string]any `json:"document_statistics"`
	ChunkStatistics    map[string]any `json:"chunk_statistics"`
	QualityStatistics  map[string]any `json:"quality_statistics"`
	Recommendations    []string       `json:"recommendations"`
}

// Summarize builds the batch summary over every document and chunk.
func (a *Annotator) Summarize(documents []*legal.Document, chunks []*legal.Chunk, stats *Stats) *Summary {
	docTypes := map[string]int{}
	authorities := map[string]int{}
	totalArticles, totalChapters, totalWords := 0, 0, 0
	for _, doc := range documents {
		docTypes[string(doc.Type)]++
		authorities[doc.ApprovalAuthority]++
		totalArticles += doc.TotalArticles()
		totalChapters += len(doc.Chapters)
		totalWords += doc.TotalWordCount()
	}
	avgWords := 0.0
	if len(documents) > 0 {
		avgWords = float64(totalWords) / float64(len(documents))
	}

	chunkTypes := map[string]int{}
	totalChunkChars := 0
	small, medium, large := 0, 0, 0
	for _, chunk := range chunks {
		chunkTypes[string(chunk.Type)]++
		totalChunkChars += chunk.CharacterCount
		switch {
		case chunk.CharacterCount < 300:
			small++
		case chunk.CharacterCount <= 800:
			medium++
		default:
			large++
		}
	}
	avgChunkSize := 0.0
	if len(chunks) > 0 {
		avgChunkSize = float64(totalChunkChars) / float64(len(chunks))
	}

	qualitySum := 0.0
	highQuality, problematic := 0, 0
	issueCounts := map[string]int{}
	for _, doc := range documents {
		qa := a.AssessQuality(doc, stats)
		qualitySum += qa.OverallScore
		if qa.OverallScore >= 0.8 {
			highQuality++
		}
		if qa.OverallScore < 0.6 {
			problematic++
		}
		for _, issue := range qa.Issues {
			issueCounts[issue]++
		}
	}
	avgQuality := 0.0
	if len(documents) > 0 {
		avgQuality = qualitySum / float64(len(documents))
	}

	summary := &Summary{
		GeneratedAt: time.Now(),
		DocumentStatistics: map[string]any{
			"total_documents":      len(documents),
			"document_types":       docTypes,
			"approval_authorities": authorities,
			"total_articles":       totalArticles,
			"total_chapters":       totalChapters,
			"average_word_count":   avgWords,
		},
		ChunkStatistics: map[string]any{
			"total_chunks":       len(chunks),
			"chunk_types":        chunkTypes,
			"average_chunk_size": avgChunkSize,
			"size_distribution": map[string]int{
				"small":  small,
				"medium": medium,
				"large":  large,
			},
		},
		QualityStatistics: map[string]any{
			"average_quality":        avgQuality,
			"high_quality_documents": highQuality,
			"problematic_documents":  problematic,
			"common_issues":          issueCounts,
		},
		Recommendations: a.recommendations(documents, chunks, avgQuality, avgChunkSize),
	}
	if stats != nil {
		summary.Stats = *stats
	}
	return summary
}

// recommendations derives batch-level advice from the aggregates.
func (a *Annotator) recommendations(documents []*legal.Document, chunks []*legal.Chunk,
	avgQuality, avgChunkSize float64) []string {

	if len(documents) == 0 {
		return []string{"هیچ سندی پردازش نشده است"}
	}

	var recs []string
	if avgQuality < 0.6 {
		recs = append(recs, "کیفیت متوسط اسناد پایین است - بازنگری فرآیند استخراج لازم")
	}
	if len(chunks) > 0 {
		if avgChunkSize < 200 {
			recs = append(recs, "اندازه متوسط chunks کوچک است - افزایش حداقل اندازه توصیه می‌شود")
		} else if avgChunkSize > 1200 {
			recs = append(recs, "اندازه متوسط chunks بزرگ است - کاهش حداکثر اندازه توصیه می‌شود")
		}
	}
	withChapters := 0
	for _, doc := range documents {
		if len(doc.Chapters) > 0 {
			withChapters++
		}
	}
	if float64(withChapters) < float64(len(documents))*0.5 {
		recs = append(recs, "اکثر اسناد ساختار فصل‌بندی ندارند - بررسی الگوریتم تشخیص فصل")
	}
	if len(recs) == 0 {
		recs = append(recs, "پردازش با کیفیت مطلوبی انجام شده است")
	}
	return recs
}

// AnnotateBatch annotates every document and chunk, returning the batch
// summary and a processing report.
func (a *Annotator) AnnotateBatch(documents []*legal.Document, chunks []*legal.Chunk) (*Summary, *legal.ProcessingReport) {
	report := legal.NewProcessingReport("metadata_generation", len(documents))
	stats := &Stats{}

	byID := make(map[string]*legal.Document, len(documents))
	for _, doc := range documents {
		a.AnnotateDocument(doc, stats)
		byID[doc.ID] = doc
		report.ProcessedItems++
	}
	for _, chunk := range chunks {
		doc, ok := byID[chunk.DocumentID]
		if !ok {
			report.AddWarning(fmt.Sprintf("chunk %s: unknown document %s", chunk.ID, chunk.DocumentID))
			continue
		}
		a.AnnotateChunk(chunk, doc, stats)
	}

	summary := a.Summarize(documents, chunks, stats)
	report.Finish(legal.StatusCompleted)
	report.Statistics = map[string]any{"metadata": *stats}
	return summary, report
}
