// Package wikilink parses and rewrites the [[...]] link syntax used in
// passage text. Three forms are recognized: [[Target]], [[Display|Target]]
// (also [[Display->Target]]), and [[Target<-Display]]. A link may carry a
// trailing setter clause, written [[Target][setter code]].
package wikilink

import (
	"regexp"
	"strings"
)

// linkPattern matches a whole link, innards captured.
var linkPattern = regexp.MustCompile(`\[\[(.*?)\]\]`)

const setterSeparator = "]["

// Target extracts the target passage name from the innards of a link
// (the text between [[ and ]]), with any setter clause already removed.
// The rules are applied in sequence, mirroring the established syntax:
// display|target keeps what follows the last pipe, display->target keeps
// what follows the last arrow, and target<-display keeps what precedes the
// first reverse arrow.
func Target(inner string) string {
	if i := strings.LastIndex(inner, "|"); i >= 0 {
		inner = inner[i+1:]
	}
	if i := strings.LastIndex(inner, "->"); i >= 0 {
		inner = inner[i+2:]
	}
	if i := strings.Index(inner, "<-"); i >= 0 {
		inner = inner[:i]
	}
	return inner
}

// ParseLinks returns the distinct link targets referenced by text, in
// first-occurrence order. When excludeSetters is true, links carrying a
// setter clause are skipped entirely; otherwise the clause is stripped and
// the target still counts.
func ParseLinks(text string, excludeSetters bool) []string {
	var targets []string
	seen := make(map[string]bool)

	for _, m := range linkPattern.FindAllStringSubmatch(text, -1) {
		inner := m[1]
		if i := strings.Index(inner, setterSeparator); i >= 0 {
			if excludeSetters {
				continue
			}
			inner = inner[:i]
		}
		target := Target(inner)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		targets = append(targets, target)
	}
	return targets
}

// LinkSpans returns the byte ranges of every [[...]] link in text, including
// the brackets. Used to tell linked from unlinked mentions of a name.
func LinkSpans(text string) [][2]int {
	idx := linkPattern.FindAllStringIndex(text, -1)
	spans := make([][2]int, len(idx))
	for i, p := range idx {
		spans[i] = [2]int{p[0], p[1]}
	}
	return spans
}

// Rename rewrites every link in text whose target is oldName so it points at
// newName instead, preserving display text, pipe/arrow direction, and any
// setter clause. All other text is left untouched. Regex metacharacters in
// oldName and $-sequences in newName are escaped, so arbitrary passage names
// are safe.
func Rename(text, oldName, newName string) string {
	quoted := regexp.QuoteMeta(oldName)
	// $ would otherwise be taken as a backreference in the replacement.
	replacement := strings.ReplaceAll(newName, "$", "$$")

	simple := regexp.MustCompile(`\[\[` + quoted + `((?:\]\[.*?)?)\]\]`)
	compound := regexp.MustCompile(`\[\[(.*?)(\||->)` + quoted + `((?:\]\[.*?)?)\]\]`)
	reverse := regexp.MustCompile(`\[\[` + quoted + `(<-.*?)((?:\]\[.*?)?)\]\]`)

	text = simple.ReplaceAllString(text, `[[`+replacement+`${1}]]`)
	text = compound.ReplaceAllString(text, `[[${1}${2}`+replacement+`${3}]]`)
	text = reverse.ReplaceAllString(text, `[[`+replacement+`${1}${2}]]`)
	return text
}
