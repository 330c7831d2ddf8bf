// Package mentions indexes passage names with a single Aho-Corasick
// automaton so a story's text can be scanned for name mentions in one pass.
package mentions

import (
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
)

// Index is an immutable automaton over a set of passage names.
type Index struct {
	ac    *ahocorasick.Automaton
	names []string
}

// New builds an index over names. Empty names are skipped; an index over no
// names matches nothing.
func New(names []string) (*Index, error) {
	patterns := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			patterns = append(patterns, n)
		}
	}
	if len(patterns) == 0 {
		return &Index{}, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	return &Index{ac: automaton, names: patterns}, nil
}

// Match is one whole-word occurrence of an indexed name.
type Match struct {
	Name  string
	Start int // byte offset in the scanned text
	End   int // byte offset, exclusive
}

// Scan returns every whole-word occurrence of an indexed name in text.
// Occurrences embedded in a longer word ("Home" inside "Homework") are
// dropped.
func (ix *Index) Scan(text string) []Match {
	if ix.ac == nil {
		return nil
	}

	found := ix.ac.FindAllOverlapping([]byte(text))
	matches := make([]Match, 0, len(found))
	for _, m := range found {
		if !wordBoundary(text, m.Start, m.End) {
			continue
		}
		matches = append(matches, Match{Name: ix.names[m.PatternID], Start: m.Start, End: m.End})
	}
	return matches
}

func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
