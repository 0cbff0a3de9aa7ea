package persian

import (
	"regexp"
	"sort"
)

// LegalTerms is the fixed legal vocabulary. Tokens in this set score
// double during keyword extraction and drive chunk importance scoring.
var LegalTerms = map[string]struct{}{
	"قانون":       {},
	"آیین‌نامه":   {},
	"دستورالعمل":  {},
	"مصوبه":       {},
	"بخشنامه":     {},
	"ماده":        {},
	"تبصره":       {},
	"بند":         {},
	"فصل":         {},
	"قسمت":        {},
	"بخش":         {},
	"مجلس":        {},
	"شورای":       {},
	"وزیر":        {},
	"رئیس‌جمهور":  {},
	"هیئت‌وزیران": {},
	"تصویب":       {},
	"ابلاغ":       {},
	"اجرا":        {},
	"لغو":         {},
	"اصلاح":       {},
	"الحاق":       {},
}

// IsLegalTerm reports whether the word belongs to the legal vocabulary.
func IsLegalTerm(word string) bool {
	_, ok := LegalTerms[word]
	return ok
}

// persianWord matches runs of Persian script characters including the
// zero-width joiners used inside compound words.
var persianWord = regexp.MustCompile(`[\x{0600}-\x{06FF}\x{200C}\x{200D}]+`)

// minKeywordLength is the minimum rune length for a keyword candidate.
const minKeywordLength = 3

// ExtractKeywords tokenizes the text into Persian words, scores each
// token (legal vocabulary counts double), and returns the top maxKeywords
// by aggregate score. Ties keep first-seen order.
func ExtractKeywords(text string, maxKeywords int) []string {
	if text == "" || maxKeywords <= 0 {
		return nil
	}
	words := persianWord.FindAllString(Clean(text), -1)

	scores := make(map[string]int)
	var order []string
	for _, word := range words {
		if len([]rune(word)) < minKeywordLength {
			continue
		}
		score := 1
		if IsLegalTerm(word) {
			score = 2
		}
		if _, seen := scores[word]; !seen {
			order = append(order, word)
		}
		scores[word] += score
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}
