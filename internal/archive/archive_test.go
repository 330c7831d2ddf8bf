package archive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyweave/goweave/internal/store"
)

func TestRoundTrip(t *testing.T) {
	story := &store.Story{
		ID:                 "s1",
		Name:               "A \"Quoted\" Tale",
		IFID:               "ABCD-1234",
		Script:             "window.setup = {};",
		Stylesheet:         "body { color: red }",
		Zoom:               1.5,
		SnapToGrid:         true,
		StoryFormat:        "Harlowe",
		StoryFormatVersion: "2.0.1",
		TagColors:          map[string]string{"draft": "red"},
		Passages: []*store.Passage{
			{
				Name: "Start", Text: "Go to the [[Cave]] & beyond <now>",
				Tags: []string{"begin", "outdoors"},
				Top:  100, Left: 150, Width: 100, Height: 100,
			},
			{Name: "Cave", Text: "dark", Top: 250, Left: 150, Width: 200, Height: 120},
		},
	}

	encoded := Encode(story)
	decoded, err := Decode(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	got := decoded[0]
	assert.Equal(t, story.Name, got.Name)
	assert.Equal(t, story.IFID, got.IFID)
	assert.Equal(t, story.Script, got.Script)
	assert.Equal(t, story.Stylesheet, got.Stylesheet)
	assert.Equal(t, story.Zoom, got.Zoom)
	assert.True(t, got.SnapToGrid)
	assert.Equal(t, story.StoryFormat, got.StoryFormat)
	assert.Equal(t, story.StoryFormatVersion, got.StoryFormatVersion)
	assert.Equal(t, story.TagColors, got.TagColors)

	require.Len(t, got.Passages, 2)
	assert.Equal(t, "Start", got.Passages[0].Name)
	assert.Equal(t, "Go to the [[Cave]] & beyond <now>", got.Passages[0].Text)
	assert.Equal(t, []string{"begin", "outdoors"}, got.Passages[0].Tags)
	assert.Equal(t, 150.0, got.Passages[0].Left)
	assert.Equal(t, 100.0, got.Passages[0].Top)
	assert.Equal(t, 200.0, got.Passages[1].Width)
	assert.Equal(t, 120.0, got.Passages[1].Height)
}

func TestDecodeMissingAttributes(t *testing.T) {
	src := `<tw-storydata name="Bare" hidden>
<tw-passagedata pid="1" name="Only">text</tw-passagedata>
</tw-storydata>`

	stories, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, stories, 1)

	st := stories[0]
	assert.Equal(t, 1.0, st.Zoom)
	assert.False(t, st.SnapToGrid)
	require.Len(t, st.Passages, 1)
	assert.Equal(t, store.DefaultPassageWidth, st.Passages[0].Width)
	assert.Equal(t, store.DefaultPassageHeight, st.Passages[0].Height)
}

func TestDecodeNoStory(t *testing.T) {
	_, err := Decode(strings.NewReader("<html><body>nothing here</body></html>"))
	assert.Error(t, err)
}
