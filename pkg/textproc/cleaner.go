// Package textproc implements the deep-cleaning stage applied to law
// records before structural parsing: mojibake repair, artifact removal,
// paragraph deduplication, legal-term standardization, and structural
// header isolation. Unlike persian.Clean, every step here preserves
// line structure so downstream parsing can anchor on line starts.
package textproc

import (
	"regexp"
	"strings"

	"github.com/coolbeans/qanun/pkg/persian"
)

// Stats accumulates cleaning counters across calls. Callers thread one
// accumulator through a batch instead of relying on hidden state.
type Stats struct {
	DocumentsProcessed int `json:"documents_processed"`
	TextCleaned        int `json:"text_cleaned"`
	EncodingFixed      int `json:"encoding_fixed"`
	DuplicatesRemoved  int `json:"duplicates_removed"`
	ArtifactsRemoved   int `json:"artifacts_removed"`
}

// encodingFixes repairs the known mojibake sequences produced when
// UTF-8 Persian text is decoded as Latin-1. Longer sequences first so
// two-byte fixes are not shadowed by their one-byte prefixes.
var encodingFixes = []struct{ wrong, correct string }{
	{"Ø§", "ا"},
	{"Ù†", "ن"},
	{"Ù…", "م"},
	{"Ø±", "ر"},
	{"Ø¯", "د"},
	{"Ø³", "س"},
	{"Øª", "ت"},
	{"Ø¹", "ع"},
	{"Ù„", "ل"},
	{"Ú©", "ک"},
	{"Ø­", "ح"},
	{"Ø®", "خ"},
	{"Ø¬", "ج"},
	{"Ø²", "ز"},
	{"Ø¶", "ض"},
	{"Ø·", "ط"},
	{"Ø¸", "ظ"},
	{"Ø¨", "ب"},
	{"Ù¾", "پ"},
	{"Ù‚", "ق"},
	{"Ú¯", "گ"},
	{"Ù‡", "ه"},
	{"Ø¤", "و"},
	{"Ø¦", "ی"},
	{"Ù", "ی"},
}

var (
	// separatorRun matches the long separator lines between documents.
	separatorRun = regexp.MustCompile(`\*{10,}|={10,}|-{10,}`)

	// artifactLines match whole lines that are page furniture.
	artifactLines = []*regexp.Regexp{
		regexp.MustCompile(`^\s*صفحه\s*[۰-۹0-9]+\s*$`),
		regexp.MustCompile(`^\s*Page\s*\d+\s*$`),
		regexp.MustCompile(`^\s*\d+\s*/\s*\d+\s*$`),
		regexp.MustCompile(`^\s*\.{3,}\s*$`),
		regexp.MustCompile(`^\s*_{3,}\s*$`),
	}

	// spaceRun collapses spaces and tabs but leaves newlines alone.
	spaceRun = regexp.MustCompile(`[ \t]+`)

	// blankRun squeezes three or more newlines down to a paragraph break.
	blankRun = regexp.MustCompile(`\n{3,}`)

	// punctSpacing and parenSpacing mirror persian.Clean but are applied
	// per line here.
	punctSpacing = regexp.MustCompile(`[ \t]*([،؛؟!.])[ \t]*`)
	parenSpacing = regexp.MustCompile(`[ \t]*([()])[ \t]*`)
)

// termFixes standardizes legal terminology and reference spacing.
var termFixes = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`ماده\s*([۰-۹0-9]+)`), "ماده ${1}"},
	{regexp.MustCompile(`تبصره\s*([۰-۹0-9]+)`), "تبصره ${1}"},
	{regexp.MustCompile(`فصل\s+(\S+)`), "فصل ${1}"},
	{regexp.MustCompile(`\(\s*مصوب\s*`), " (مصوب "},
	{regexp.MustCompile(`هیات\s*وزیران`), "هیئت‌وزیران"},
	{regexp.MustCompile(`مجلس\s*شورای\s*اسلامی`), "مجلس شورای اسلامی"},
	{regexp.MustCompile(`([۰-۹0-9]{1,2})\s*/\s*([۰-۹0-9]{1,2})\s*/\s*([۰-۹0-9]{2,4})`), "${1}/${2}/${3}"},
}

// headerBreaks isolate structural headers onto their own lines. The
// trailing delimiter requirement keeps mid-sentence references like
// "موضوع ماده ۵ قانون" from being mistaken for headers.
var headerBreaks = []*regexp.Regexp{
	regexp.MustCompile(`(فصل\s+\S+\s*[-–—])`),
	regexp.MustCompile(`(ماده\s*واحده\s*[-–—:])`),
	regexp.MustCompile(`(ماده\s*[۰-۹0-9]+\s*[-–—])`),
	regexp.MustCompile(`(تبصره\s*[۰-۹0-9]*\s*[-–—:])`),
}

// FixEncoding repairs known mis-encoded byte sequences.
func FixEncoding(text string) string {
	if text == "" {
		return ""
	}
	for _, fix := range encodingFixes {
		text = strings.ReplaceAll(text, fix.wrong, fix.correct)
	}
	return text
}

// RemoveArtifacts strips separator runs and drops page-furniture lines,
// returning the surviving lines joined by newlines. The removed count is
// added to stats when non-nil.
func RemoveArtifacts(text string, stats *Stats) string {
	text = separatorRun.ReplaceAllString(text, "")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		artifact := false
		for _, re := range artifactLines {
			if re.MatchString(line) {
				artifact = true
				break
			}
		}
		if artifact {
			if stats != nil {
				stats.ArtifactsRemoved++
			}
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// RemoveDuplicates drops repeated paragraphs (exact match after trim),
// keeping the first occurrence.
func RemoveDuplicates(text string, stats *Stats) string {
	seen := make(map[string]bool)
	var unique []string
	for _, paragraph := range strings.Split(text, "\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if seen[paragraph] {
			if stats != nil {
				stats.DuplicatesRemoved++
			}
			continue
		}
		seen[paragraph] = true
		unique = append(unique, paragraph)
	}
	return strings.Join(unique, "\n")
}

// FixFormatting collapses space runs and enforces punctuation spacing
// without touching line breaks.
func FixFormatting(text string) string {
	text = spaceRun.ReplaceAllString(text, " ")
	text = punctSpacing.ReplaceAllString(text, "$1 ")
	text = parenSpacing.ReplaceAllString(text, " $1 ")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.Join(lines, "\n")
}

// StandardizeTerms applies the fixed terminology and date spacing fixes.
func StandardizeTerms(text string) string {
	for _, fix := range termFixes {
		text = fix.re.ReplaceAllString(text, fix.replacement)
	}
	return text
}

// EnhanceStructure inserts a line break before each recognized
// structural header so parsing can anchor on line starts.
func EnhanceStructure(text string) string {
	for _, re := range headerBreaks {
		text = re.ReplaceAllString(text, "\n${1}")
	}
	text = blankRun.ReplaceAllString(text, "\n\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Process runs the full cleaning chain over one text: encoding repair,
// artifact removal, deduplication, formatting, terminology, character
// normalization, and header isolation.
func Process(text string, stats *Stats) string {
	if text == "" {
		return ""
	}
	text = FixEncoding(text)
	if stats != nil {
		stats.EncodingFixed++
	}
	text = RemoveArtifacts(text, stats)
	text = RemoveDuplicates(text, stats)
	text = FixFormatting(text)
	text = StandardizeTerms(text)
	text = persian.Normalize(text)
	text = EnhanceStructure(text)
	if stats != nil {
		stats.TextCleaned++
		stats.DocumentsProcessed++
	}
	return text
}
