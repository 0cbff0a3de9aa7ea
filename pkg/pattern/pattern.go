// Package pattern provides the ordered marker-family rule table used to
// locate structural boundaries (law separators, chapters, articles,
// notes, subsections, footnotes) in Persian legal text.
package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Family identifies a marker family. Several markers may share a family
// (e.g. numbered articles and the "single article" form); their matches
// are merged and sorted by offset before boundaries are computed.
type Family string

const (
	// FamilyLawSeparator matches runs of 10+ asterisks between statutes.
	FamilyLawSeparator Family = "law_separator"

	// FamilyChapter matches chapter headers (فصل) with optional title.
	FamilyChapter Family = "chapter"

	// FamilyArticle matches article headers (ماده), numbered or the
	// "single article" (ماده واحده) form.
	FamilyArticle Family = "article"

	// FamilyNote matches note headers (تبصره) with optional number.
	FamilyNote Family = "note"

	// FamilySubNumbered matches Persian-digit subsection markers.
	FamilySubNumbered Family = "subsection_numbered"

	// FamilySubLettered matches Persian-letter subsection markers.
	FamilySubLettered Family = "subsection_lettered"

	// FamilySubDash matches bare dash subsection markers.
	FamilySubDash Family = "subsection_dash"

	// FamilyFootnote matches parenthesized footnote numbers.
	FamilyFootnote Family = "footnote"
)

// Marker is one entry of the rule table: a regex plus the capture groups
// carrying the marker label and inline title.
type Marker struct {
	Name       string `yaml:"name" json:"name"`
	Family     Family `yaml:"family" json:"family"`
	Pattern    string `yaml:"pattern" json:"pattern"`
	LabelGroup int    `yaml:"label_group" json:"label_group"`
	TitleGroup int    `yaml:"title_group" json:"title_group"`

	compiled *regexp.Regexp
}

// Compile compiles the marker's pattern.
func (m *Marker) Compile() error {
	re, err := regexp.Compile(m.Pattern)
	if err != nil {
		return fmt.Errorf("marker %q: %w", m.Name, err)
	}
	m.compiled = re
	return nil
}

// Validate checks the marker definition without compiling it.
func (m *Marker) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("marker with empty name")
	}
	if m.Family == "" {
		return fmt.Errorf("marker %q: empty family", m.Name)
	}
	if m.Pattern == "" {
		return fmt.Errorf("marker %q: empty pattern", m.Name)
	}
	if _, err := regexp.Compile(m.Pattern); err != nil {
		return fmt.Errorf("marker %q: %w", m.Name, err)
	}
	return nil
}

// Boundary is one labeled span. Spans returned for a single family set
// are contiguous and non-overlapping: each End is the Start of the next
// boundary, or the end of the text for the last one.
type Boundary struct {
	Family Family
	Label  string
	Title  string

	// Start and End delimit the full span, marker line included.
	Start int
	End   int

	// BodyStart is the offset just past the marker match, where the
	// span's own content begins.
	BodyStart int
}

// Body returns the span content after the marker.
func (b Boundary) Body(text string) string {
	if b.BodyStart > b.End {
		return ""
	}
	return text[b.BodyStart:b.End]
}

// Span returns the full span, marker included.
func (b Boundary) Span(text string) string {
	return text[b.Start:b.End]
}

// Table is an ordered collection of markers keyed by family.
type Table struct {
	markers []*Marker
}

// defaultMarkers is the built-in rule table. Order matters within a
// family: when two markers match at the same offset the earlier one
// wins (the "single article" form shadows the numbered article regex).
var defaultMarkers = []*Marker{
	{
		Name:    "law-separator",
		Family:  FamilyLawSeparator,
		Pattern: `\*{10,}`,
	},
	{
		Name:       "chapter",
		Family:     FamilyChapter,
		Pattern:    `(?m)^(فصل\s+\S+)\s*[-–—:]?\s*(.*)$`,
		LabelGroup: 1,
		TitleGroup: 2,
	},
	{
		Name:       "single-article",
		Family:     FamilyArticle,
		Pattern:    `(?m)^(ماده\s*واحده)\s*[-–—:]?\s*`,
		LabelGroup: 1,
	},
	{
		Name:       "article",
		Family:     FamilyArticle,
		Pattern:    `(?m)^(ماده\s*[۰-۹0-9]+)\s*[-–—:]?\s*`,
		LabelGroup: 1,
	},
	{
		Name:       "note",
		Family:     FamilyNote,
		Pattern:    `(?m)^(تبصره\s*[۰-۹0-9]*)\s*[-–—:]?\s*`,
		LabelGroup: 1,
	},
	{
		Name:       "subsection-numbered",
		Family:     FamilySubNumbered,
		Pattern:    `(?m)^([۰-۹]+)\s*[-–—]\s*`,
		LabelGroup: 1,
	},
	{
		Name:       "subsection-lettered",
		Family:     FamilySubLettered,
		Pattern:    `(?m)^([الف-ی]+)\s*[-–—]\s*`,
		LabelGroup: 1,
	},
	{
		Name:    "subsection-dash",
		Family:  FamilySubDash,
		Pattern: `(?m)^[-–—]\s+`,
	},
	{
		Name:       "footnote",
		Family:     FamilyFootnote,
		Pattern:    `(?m)^\(([۰-۹0-9]+)\)\s*`,
		LabelGroup: 1,
	},
}

// DefaultTable returns the built-in marker table with every pattern
// compiled. Panics only on a broken built-in definition.
func DefaultTable() *Table {
	t := &Table{}
	for _, def := range defaultMarkers {
		m := *def
		if err := m.Compile(); err != nil {
			panic(err)
		}
		t.markers = append(t.markers, &m)
	}
	return t
}

// Add registers a marker, replacing any existing marker with the same
// name. The marker is validated and compiled.
func (t *Table) Add(m *Marker) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := m.Compile(); err != nil {
		return err
	}
	for i, existing := range t.markers {
		if existing.Name == m.Name {
			t.markers[i] = m
			return nil
		}
	}
	t.markers = append(t.markers, m)
	return nil
}

// Markers returns the markers belonging to the given families, in table
// order. With no families it returns every marker.
func (t *Table) Markers(families ...Family) []*Marker {
	if len(families) == 0 {
		return t.markers
	}
	want := make(map[Family]bool, len(families))
	for _, f := range families {
		want[f] = true
	}
	var out []*Marker
	for _, m := range t.markers {
		if want[m.Family] {
			out = append(out, m)
		}
	}
	return out
}

// Match is a single raw marker hit before boundary computation.
type Match struct {
	Family Family
	Label  string
	Title  string
	Start  int
	End    int // end of the marker match itself
}

// FindMatches returns every hit of the given families' markers, merged
// and sorted by start offset. When two markers hit the same offset only
// the marker listed earlier in the table is kept.
func (t *Table) FindMatches(text string, families ...Family) []Match {
	var matches []Match
	seen := make(map[int]bool)
	for _, m := range t.Markers(families...) {
		for _, idx := range m.compiled.FindAllStringSubmatchIndex(text, -1) {
			if seen[idx[0]] {
				continue
			}
			seen[idx[0]] = true
			match := Match{Family: m.Family, Start: idx[0], End: idx[1]}
			if m.LabelGroup > 0 && idx[2*m.LabelGroup] >= 0 {
				match.Label = strings.TrimSpace(text[idx[2*m.LabelGroup]:idx[2*m.LabelGroup+1]])
			}
			if m.TitleGroup > 0 && idx[2*m.TitleGroup] >= 0 {
				match.Title = strings.TrimSpace(text[idx[2*m.TitleGroup]:idx[2*m.TitleGroup+1]])
			}
			matches = append(matches, match)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

// FindBoundaries partitions the text into contiguous spans delimited by
// the given families' markers. Each span runs from its marker's start to
// the next marker's start, or to the end of the text for the last one.
// Text before the first marker is not covered; callers that need full
// coverage check the first boundary's Start.
func (t *Table) FindBoundaries(text string, families ...Family) []Boundary {
	matches := t.FindMatches(text, families...)
	boundaries := make([]Boundary, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].Start
		}
		boundaries = append(boundaries, Boundary{
			Family:    m.Family,
			Label:     m.Label,
			Title:     m.Title,
			Start:     m.Start,
			End:       end,
			BodyStart: m.End,
		})
	}
	return boundaries
}
