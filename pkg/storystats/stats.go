// Package storystats computes the summary numbers shown in the story
// statistics dialog.
package storystats

import (
	"strings"
	"unicode"

	"github.com/orsinium-labs/stopwords"

	"github.com/storyweave/goweave/pkg/wikilink"
)

// Passage is the slice of passage state statistics need.
type Passage struct {
	Name string
	Text string
}

// Stats summarizes one story.
type Stats struct {
	Passages      int
	Words         int
	Characters    int
	Links         int // distinct link targets
	BrokenLinks   int // distinct targets with no matching passage
	DistinctWords int // distinct meaningful words, stopwords excluded
}

// Compute derives Stats from a story's passages.
func Compute(passages []Passage) Stats {
	checker := stopwords.MustGet("en")

	names := make(map[string]bool, len(passages))
	for _, p := range passages {
		names[p.Name] = true
	}

	stats := Stats{Passages: len(passages)}
	targets := make(map[string]bool)
	distinct := make(map[string]bool)

	for _, p := range passages {
		stats.Characters += len(p.Text)
		for _, word := range strings.Fields(p.Text) {
			stats.Words++
			word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			}))
			if word == "" || checker.Contains(word) {
				continue
			}
			distinct[word] = true
		}
		for _, target := range wikilink.ParseLinks(p.Text, false) {
			if targets[target] {
				continue
			}
			targets[target] = true
			stats.Links++
			if !names[target] {
				stats.BrokenLinks++
			}
		}
	}

	stats.DistinctWords = len(distinct)
	return stats
}
