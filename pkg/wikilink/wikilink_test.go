package wikilink

import (
	"reflect"
	"testing"
)

func TestParseLinks(t *testing.T) {
	cases := []struct {
		name           string
		text           string
		excludeSetters bool
		want           []string
	}{
		{
			name: "plain and arrow",
			text: "Go to [[Home]] or [[See Map->Map]]",
			want: []string{"Home", "Map"},
		},
		{
			name: "piped display text",
			text: "[[Click here|Secret Room]]",
			want: []string{"Secret Room"},
		},
		{
			name: "reverse arrow",
			text: "[[Cellar<-Go downstairs]]",
			want: []string{"Cellar"},
		},
		{
			name: "duplicates collapse in first-occurrence order",
			text: "[[B]] [[A]] [[Go|B]] [[A]]",
			want: []string{"B", "A"},
		},
		{
			name: "setter clause stripped",
			text: "[[Armory][$visited to true]]",
			want: []string{"Armory"},
		},
		{
			name:           "setter links excluded",
			text:           "[[Armory][$visited to true]] [[Hall]]",
			excludeSetters: true,
			want:           []string{"Hall"},
		},
		{
			name: "no links",
			text: "plain prose with [single brackets]",
			want: nil,
		},
	}

	for _, c := range cases {
		got := ParseLinks(c.text, c.excludeSetters)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s: ParseLinks = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestParseLinksRestartable(t *testing.T) {
	text := "[[One]] [[Two]]"
	first := ParseLinks(text, false)
	second := ParseLinks(text, false)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated parses differ: %v vs %v", first, second)
	}
}

func TestRename(t *testing.T) {
	cases := []struct {
		name string
		text string
		old  string
		new  string
		want string
	}{
		{
			name: "plain and piped",
			text: "[[Old]] and [[Show|Old]]",
			old:  "Old", new: "New",
			want: "[[New]] and [[Show|New]]",
		},
		{
			name: "arrow form",
			text: "[[Go on->Old]]",
			old:  "Old", new: "New",
			want: "[[Go on->New]]",
		},
		{
			name: "reverse arrow keeps display",
			text: "[[Old<-Go on]]",
			old:  "Old", new: "New",
			want: "[[New<-Go on]]",
		},
		{
			name: "setter clause preserved",
			text: "[[Old][$seen to true]]",
			old:  "Old", new: "New",
			want: "[[New][$seen to true]]",
		},
		{
			name: "other targets untouched",
			text: "[[Old]] [[Older]]",
			old:  "Old", new: "New",
			want: "[[New]] [[Older]]",
		},
		{
			name: "regex metacharacters in old name",
			text: "[[What? (really)]]",
			old:  "What? (really)", new: "Answer",
			want: "[[Answer]]",
		},
		{
			name: "dollar signs in new name",
			text: "[[Shop]]",
			old:  "Shop", new: "Save $100",
			want: "[[Save $100]]",
		},
		{
			name: "display text matching old name is kept",
			text: "[[Old|Elsewhere]]",
			old:  "Old", new: "New",
			want: "[[Old|Elsewhere]]",
		},
	}

	for _, c := range cases {
		if got := Rename(c.text, c.old, c.new); got != c.want {
			t.Errorf("%s: Rename = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestLinkSpans(t *testing.T) {
	text := "go [[Home]] now"
	spans := LinkSpans(text)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if text[spans[0][0]:spans[0][1]] != "[[Home]]" {
		t.Errorf("span covers %q", text[spans[0][0]:spans[0][1]])
	}
}
