// Package persian provides character-level normalization, cleanup, and
// analysis utilities for Persian/Arabic legal text. All functions are
// pure; empty input yields empty output.
package persian

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// charMap unifies visually or semantically equivalent Arabic forms to
// canonical Persian forms, including Arabic-Indic digits.
var charMap = strings.NewReplacer(
	"ك", "ک",
	"ي", "ی",
	"ء", "ی",
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ة", "ه",
	"ؤ", "و",
	"ئ", "ی",
	"٠", "۰",
	"١", "۱",
	"٢", "۲",
	"٣", "۳",
	"٤", "۴",
	"٥", "۵",
	"٦", "۶",
	"٧", "۷",
	"٨", "۸",
	"٩", "۹",
)

var (
	// whitespaceRun collapses any whitespace run to a single space.
	whitespaceRun = regexp.MustCompile(`\s+`)

	// punctSpacing enforces "no space before, one space after" around
	// Persian sentence punctuation.
	punctSpacing = regexp.MustCompile(`\s*([،؛؟!.])\s*`)

	// parenSpacing enforces one space on both sides of parentheses.
	parenSpacing = regexp.MustCompile(`\s*([()])\s*`)

	// persianNumber matches runs of Persian-Indic digits, optionally
	// joined by "." or "/" (dates, decimal article numbers).
	persianNumber = regexp.MustCompile(`[۰-۹]+(?:[./][۰-۹]+)*`)

	// sentenceBoundary marks Persian sentence-final punctuation followed
	// by whitespace.
	sentenceBoundary = regexp.MustCompile(`[.؟!؛]\s+`)

	// persianChar matches a single character in the Persian/Arabic block.
	persianChar = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)

	// wordChar matches word characters of any script. \w is ASCII-only
	// in RE2, so the Unicode classes are spelled out.
	wordChar = regexp.MustCompile(`[\p{L}\p{N}_]`)
)

// Normalize applies Unicode compatibility composition (NFKC) followed by
// the fixed character unification table. Idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return charMap.Replace(norm.NFKC.String(text))
}

// Clean normalizes the text, collapses whitespace runs to single spaces,
// enforces Persian punctuation and parenthesis spacing, and trims.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = Normalize(text)
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = punctSpacing.ReplaceAllString(text, "$1 ")
	text = parenSpacing.ReplaceAllString(text, " $1 ")
	return strings.TrimSpace(text)
}

// persianToEnglish and englishToPersian translate between digit systems.
var (
	persianToEnglish = strings.NewReplacer(
		"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
		"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	)
	englishToPersian = strings.NewReplacer(
		"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
		"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
	)
)

// ToEnglishDigits converts Persian-Indic digits to ASCII digits.
func ToEnglishDigits(text string) string {
	return persianToEnglish.Replace(text)
}

// ToPersianDigits converts ASCII digits to Persian-Indic digits.
func ToPersianDigits(text string) string {
	return englishToPersian.Replace(text)
}

// ExtractNumbers returns every Persian number token found in the text.
func ExtractNumbers(text string) []string {
	return persianNumber.FindAllString(text, -1)
}

// Date is a date string found in running text, tagged with the pattern
// that matched it.
type Date struct {
	Date   string `json:"date"`
	Format string `json:"format"`
}

// datePatterns lists the recognized numeric date forms, ASCII and
// Persian-Indic, four- and two-digit years.
var datePatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`), "dd/mm/yyyy"},
	{regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2}`), "dd/mm/yy"},
	{regexp.MustCompile(`[۰-۹]{1,2}/[۰-۹]{1,2}/[۰-۹]{4}`), "persian_dd/mm/yyyy"},
	{regexp.MustCompile(`[۰-۹]{1,2}/[۰-۹]{1,2}/[۰-۹]{2}`), "persian_dd/mm/yy"},
}

// ExtractDates finds numeric date strings (Persian calendar) in the text.
func ExtractDates(text string) []Date {
	var dates []Date
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllString(text, -1) {
			dates = append(dates, Date{Date: m, Format: p.format})
		}
	}
	return dates
}

// FindDate returns the first numeric date in the text, or "" if none.
func FindDate(text string) string {
	for _, p := range datePatterns {
		if m := p.re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// IsValidPersian reports whether the text is plausibly Persian prose:
// non-trivial length and at least 30% of its word characters inside the
// Persian/Arabic Unicode block.
func IsValidPersian(text string) bool {
	if len(strings.TrimSpace(text)) < 3 {
		return false
	}
	persianCount := len(persianChar.FindAllString(text, -1))
	totalCount := len(wordChar.FindAllString(text, -1))
	if totalCount == 0 {
		return false
	}
	return float64(persianCount)/float64(totalCount) >= 0.3
}

// SplitSentences splits text on Persian sentence-final punctuation and
// drops fragments too short to stand alone.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var sentences []string
	for _, s := range sentenceBoundary.Split(strings.TrimSpace(text), -1) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) > 10 {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
