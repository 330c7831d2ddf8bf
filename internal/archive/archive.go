// Package archive encodes and decodes stories in the established
// <tw-storydata> HTML archive shape, so stories survive round trips through
// other authoring tools.
package archive

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/storyweave/goweave/internal/store"
)

// Encode renders one story as an HTML archive fragment.
func Encode(story *store.Story) string {
	var b strings.Builder

	options := ""
	if story.SnapToGrid {
		options = "snap"
	}
	fmt.Fprintf(&b,
		`<tw-storydata name="%s" ifid="%s" zoom="%s" format="%s" format-version="%s" options="%s" hidden>`,
		html.EscapeString(story.Name), html.EscapeString(story.IFID),
		formatFloat(story.Zoom),
		html.EscapeString(story.StoryFormat), html.EscapeString(story.StoryFormatVersion),
		options)
	b.WriteString("\n")

	fmt.Fprintf(&b, `<style role="stylesheet" id="twine-user-stylesheet" type="text/twine-css">%s</style>`,
		story.Stylesheet)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<script role="script" id="twine-user-script" type="text/twine-javascript">%s</script>`,
		story.Script)
	b.WriteString("\n")

	for tag, color := range story.TagColors {
		fmt.Fprintf(&b, `<tw-tag name="%s" color="%s"></tw-tag>`,
			html.EscapeString(tag), html.EscapeString(color))
		b.WriteString("\n")
	}

	for i, p := range story.Passages {
		fmt.Fprintf(&b,
			`<tw-passagedata pid="%d" name="%s" tags="%s" position="%s,%s" size="%s,%s">%s</tw-passagedata>`,
			i+1, html.EscapeString(p.Name), html.EscapeString(strings.Join(p.Tags, " ")),
			formatFloat(p.Left), formatFloat(p.Top),
			formatFloat(p.Width), formatFloat(p.Height),
			html.EscapeString(p.Text))
		b.WriteString("\n")
	}

	b.WriteString("</tw-storydata>\n")
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Decode parses every story found in an HTML archive. Stories come back with
// empty ids; importing assigns fresh ones.
func Decode(r io.Reader) ([]*store.Story, error) {
	doc, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}

	var stories []*store.Story
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && n.Data == "tw-storydata" {
			stories = append(stories, decodeStory(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(stories) == 0 {
		return nil, fmt.Errorf("parse archive: no story data found")
	}
	return stories, nil
}

func decodeStory(n *xhtml.Node) *store.Story {
	attrs := attrMap(n)
	story := &store.Story{
		Name:               attrs["name"],
		IFID:               attrs["ifid"],
		StoryFormat:        attrs["format"],
		StoryFormatVersion: attrs["format-version"],
		Zoom:               parseFloat(attrs["zoom"], 1),
		TagColors:          map[string]string{},
	}
	for _, opt := range strings.Fields(attrs["options"]) {
		if opt == "snap" {
			story.SnapToGrid = true
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xhtml.ElementNode {
			continue
		}
		switch c.Data {
		case "style":
			story.Stylesheet = textContent(c)
		case "script":
			story.Script = textContent(c)
		case "tw-tag":
			tag := attrMap(c)
			if tag["name"] != "" {
				story.TagColors[tag["name"]] = tag["color"]
			}
		case "tw-passagedata":
			story.Passages = append(story.Passages, decodePassage(c))
		}
	}
	return story
}

func decodePassage(n *xhtml.Node) *store.Passage {
	attrs := attrMap(n)
	p := &store.Passage{
		Name:   attrs["name"],
		Text:   textContent(n),
		Width:  store.DefaultPassageWidth,
		Height: store.DefaultPassageHeight,
	}
	if tags := strings.Fields(attrs["tags"]); len(tags) > 0 {
		p.Tags = tags
	}
	if left, top, ok := parsePair(attrs["position"]); ok {
		p.Left, p.Top = left, top
	}
	if w, h, ok := parsePair(attrs["size"]); ok {
		p.Width, p.Height = w, h
	}
	return p
}

func attrMap(n *xhtml.Node) map[string]string {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

func textContent(n *xhtml.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parsePair(s string) (float64, float64, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, errA := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}
