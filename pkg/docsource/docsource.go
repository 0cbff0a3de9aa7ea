// Package docsource abstracts where combined legal text comes from.
// A source yields the document as ordered paragraph strings; the rest
// of the pipeline never touches file formats directly.
package docsource

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Source yields the paragraphs of one combined legal document in order.
type Source interface {
	Paragraphs() ([]string, error)
}

// TextFile reads paragraphs from a plain-text file, one per non-empty line.
type TextFile struct {
	Path string
}

// NewTextFile returns a text-file source after checking the file exists.
func NewTextFile(path string) (*TextFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input %s is a directory", path)
	}
	return &TextFile{Path: path}, nil
}

// Paragraphs reads the file line by line, trimming and dropping blanks.
func (f *TextFile) Paragraphs() ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Path, err)
	}
	defer file.Close()

	var paragraphs []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return paragraphs, nil
}

// Strings is an in-memory source used by tests and callers that already
// hold the paragraphs.
type Strings []string

// Paragraphs returns the non-empty paragraphs as given.
func (s Strings) Paragraphs() ([]string, error) {
	var paragraphs []string
	for _, p := range s {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs, nil
}

// CombinedText joins a source's paragraphs into the single text the
// splitter consumes. A source with no paragraphs yields ""; downstream
// stages report zero items rather than failing.
func CombinedText(source Source) (string, error) {
	paragraphs, err := source.Paragraphs()
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n"), nil
}
