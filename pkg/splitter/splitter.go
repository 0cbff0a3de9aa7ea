// Package splitter cuts a combined statute collection into individual
// law records. Laws are delimited by separator runs; each record gets a
// title, approval date, approving authority, and a quality score, and
// records below the quality threshold are dropped.
package splitter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/coolbeans/qanun/pkg/legal"
	"github.com/coolbeans/qanun/pkg/pattern"
	"github.com/coolbeans/qanun/pkg/persian"
)

// Defaults for the validity gate.
const (
	DefaultMinLength        = 50
	DefaultQualityThreshold = 0.4
)

// maxTitleLength caps titles synthesized from content lines.
const maxTitleLength = 100

var (
	// titlePattern matches "<title> (مصوب <date/authority>)" headers,
	// tolerating the spaces cleaning inserts around parentheses.
	titlePattern = regexp.MustCompile(`^(.+?)\s*\(\s*مصوب\s+([^)]+?)\s*\)`)

	// articleIndicator checks for at least one well-formed article header.
	articleIndicator = regexp.MustCompile(`ماده\s*[۰-۹0-9]+|ماده\s*واحده`)

	// separatorRun strips the trailing separator a span carries.
	separatorRun = regexp.MustCompile(`\*{10,}`)
)

// structureIndicators are the headers counted toward the structure check
// of the quality score.
var structureIndicators = []string{"ماده", "تبصره", "بند", "فصل"}

// Stats accumulates splitting counters for one run.
type Stats struct {
	TotalLawsFound    int     `json:"total_laws_found"`
	ValidLaws         int     `json:"valid_laws"`
	InvalidLaws       int     `json:"invalid_laws"`
	ExtractionErrors  int     `json:"extraction_errors"`
	ProcessingSeconds float64 `json:"processing_time"`
}

// Splitter extracts individual law records from combined text. The
// marker table supplies the law-separator pattern so overrides loaded
// into a registry apply here too.
type Splitter struct {
	table            *pattern.Table
	MinLength        int
	QualityThreshold float64
}

// New returns a splitter over the given marker table with default gates.
func New(table *pattern.Table) *Splitter {
	if table == nil {
		table = pattern.DefaultTable()
	}
	return &Splitter{
		table:            table,
		MinLength:        DefaultMinLength,
		QualityThreshold: DefaultQualityThreshold,
	}
}

// span is one candidate law region of the source text.
type span struct {
	start, end int
}

// findSpans locates law regions. Each span runs from the end of the
// previous separator to the end of the next one, so a record carries its
// trailing separator; text after the last separator forms a final span.
func (s *Splitter) findSpans(text string) []span {
	matches := s.table.FindMatches(text, pattern.FamilyLawSeparator)

	var spans []span
	start := 0
	for _, m := range matches {
		if start < m.End {
			spans = append(spans, span{start: start, end: m.End})
		}
		start = m.End
	}
	if start < len(text) {
		spans = append(spans, span{start: start, end: len(text)})
	}
	return spans
}

// cleanLines cleans each line separately so the record keeps its line
// structure for title extraction and downstream parsing.
func cleanLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = persian.Clean(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// extractTitleAndDate pulls the title, approval date, and approving
// authority from the head of a cleaned law text. Returns empty strings
// when no title can be found.
func extractTitleAndDate(text string) (title, approvalDate, authority string) {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	head := strings.TrimSpace(strings.Join(lines, " "))

	if m := titlePattern.FindStringSubmatch(head); m != nil {
		title = strings.TrimSpace(m[1])
		dateInfo := strings.TrimSpace(m[2])

		authority = string(legal.AuthorityParliament)
		if strings.Contains(dateInfo, "هیئت‌وزیران") || strings.Contains(dateInfo, "هیئت وزیران") {
			authority = string(legal.AuthorityCabinet)
		} else if strings.Contains(dateInfo, "شورای") {
			authority = string(legal.AuthoritySupremeCouncil)
		}

		approvalDate = persian.FindDate(dateInfo)
		if approvalDate == "" {
			approvalDate = dateInfo
		}
		return title, approvalDate, authority
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, word := range []string{"قانون", "آیین‌نامه", "دستورالعمل"} {
			if strings.Contains(line, word) {
				return line, legal.Unknown, legal.Unknown
			}
		}
	}
	return "", "", ""
}

// QualityScore rates an extracted law from 0 to 1 with five equal
// checks: minimum length, meaningful title, Persian content, at least
// two structural indicators, and a well-formed article header.
func (s *Splitter) QualityScore(text, title string) float64 {
	score := 0.0

	if len(text) >= s.MinLength {
		score += 0.2
	}
	if len([]rune(title)) > 10 {
		score += 0.2
	}
	if persian.IsValidPersian(text) {
		score += 0.2
	}
	indicators := 0
	for _, indicator := range structureIndicators {
		if strings.Contains(text, indicator) {
			indicators++
		}
	}
	if indicators >= 2 {
		score += 0.2
	}
	if articleIndicator.MatchString(text) {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// processRecord builds a law record from one span's raw text. A nil
// record with a nil error means the span was too short to be a law.
func (s *Splitter) processRecord(rawText string, index int) (*legal.LawRecord, error) {
	cleaned := cleanLines(separatorRun.ReplaceAllString(rawText, ""))
	if len(cleaned) < s.MinLength {
		return nil, nil
	}

	title, approvalDate, authority := extractTitleAndDate(cleaned)
	if title == "" {
		lines := strings.Split(cleaned, "\n")
		if len(lines) > 3 {
			lines = lines[:3]
		}
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if len([]rune(line)) > 10 {
				runes := []rune(line)
				if len(runes) > maxTitleLength {
					runes = runes[:maxTitleLength]
				}
				title = string(runes) + "..."
				break
			}
		}
	}
	if title == "" {
		title = fmt.Sprintf("سند حقوقی شماره %d", index+1)
	}
	if approvalDate == "" {
		approvalDate = legal.Unknown
	}
	if authority == "" {
		authority = legal.Unknown
	}

	record := &legal.LawRecord{
		ID:                fmt.Sprintf("law_%03d", index+1),
		Title:             title,
		ApprovalDate:      approvalDate,
		ApprovalAuthority: authority,
		RawContent:        cleaned,
		WordCount:         len(strings.Fields(cleaned)),
		ExtractedAt:       time.Now(),
		QualityScore:      s.QualityScore(cleaned, title),
	}
	return record, nil
}

// Result holds the outcome of one split run.
type Result struct {
	Laws  []*legal.LawRecord
	Stats Stats
}

// Split cuts the combined text into law records, keeping only records
// that pass the quality threshold. Per-record failures are counted in
// the stats and never abort the run. Empty or whitespace-only input
// yields an empty result, not an error.
func (s *Splitter) Split(text string) (*Result, error) {
	result := &Result{}
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	start := time.Now()
	spans := s.findSpans(text)

	result.Stats.TotalLawsFound = len(spans)

	for i, sp := range spans {
		rawText := strings.TrimSpace(text[sp.start:sp.end])
		if rawText == "" {
			continue
		}

		record, err := s.processRecord(rawText, i)
		if err != nil {
			result.Stats.ExtractionErrors++
			continue
		}
		if record == nil || record.QualityScore < s.QualityThreshold {
			result.Stats.InvalidLaws++
			continue
		}
		result.Laws = append(result.Laws, record)
		result.Stats.ValidLaws++
	}

	result.Stats.ProcessingSeconds = time.Since(start).Seconds()
	return result, nil
}

// QualityAnalysis buckets record quality scores for reporting.
type QualityAnalysis struct {
	AverageQuality float64        `json:"average_quality"`
	Distribution   map[string]int `json:"quality_distribution"`
	Highest        float64        `json:"highest_quality"`
	Lowest         float64        `json:"lowest_quality"`
}

// AnalyzeQuality summarizes the quality scores of a record set.
func AnalyzeQuality(laws []*legal.LawRecord) QualityAnalysis {
	analysis := QualityAnalysis{Distribution: map[string]int{}}
	if len(laws) == 0 {
		return analysis
	}

	sum := 0.0
	analysis.Lowest = laws[0].QualityScore
	for _, law := range laws {
		score := law.QualityScore
		sum += score
		if score > analysis.Highest {
			analysis.Highest = score
		}
		if score < analysis.Lowest {
			analysis.Lowest = score
		}
		switch {
		case score >= 0.8:
			analysis.Distribution["excellent"]++
		case score >= 0.6:
			analysis.Distribution["good"]++
		case score >= 0.4:
			analysis.Distribution["fair"]++
		default:
			analysis.Distribution["poor"]++
		}
	}
	analysis.AverageQuality = sum / float64(len(laws))
	return analysis
}

// Recommendations derives follow-up advice from a run's stats and
// quality analysis.
func Recommendations(stats Stats, analysis QualityAnalysis) []string {
	var recs []string

	if float64(stats.InvalidLaws) > float64(stats.ValidLaws)*0.3 {
		recs = append(recs, "تعداد قوانین نامعتبر بالا است. بررسی الگوریتم تشخیص توصیه می‌شود.")
	}
	if stats.ExtractionErrors > 0 {
		recs = append(recs, fmt.Sprintf("تعداد %d خطا در استخراج وجود دارد. بررسی فرمت فایل ورودی لازم است.", stats.ExtractionErrors))
	}
	if analysis.AverageQuality < 0.6 {
		recs = append(recs, "کیفیت متوسط استخراج پایین است. بهبود الگوریتم‌های پردازش متن پیشنهاد می‌شود.")
	}
	if stats.ValidLaws < 10 {
		recs = append(recs, "تعداد قوانین استخراج شده کم است. بررسی الگوریتم تفکیک لازم است.")
	}
	if len(recs) == 0 {
		recs = append(recs, "کیفیت استخراج مطلوب است. می‌توان به مرحله بعد ادامه داد.")
	}
	return recs
}
