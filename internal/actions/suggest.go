package actions

import (
	"github.com/storyweave/goweave/pkg/mentions"
	"github.com/storyweave/goweave/pkg/wikilink"
)

// UnlinkedMentions reports, per passage id, the names of other passages
// mentioned in that passage's text outside of any wiki link — candidates for
// links the author forgot to make.
func (s *Service) UnlinkedMentions(storyID string) (map[string][]string, error) {
	story, err := s.store.StoryByID(storyID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(story.Passages))
	for _, p := range story.Passages {
		names = append(names, p.Name)
	}
	index, err := mentions.New(names)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	for _, p := range story.Passages {
		spans := wikilink.LinkSpans(p.Text)
		seen := make(map[string]bool)
		for _, m := range index.Scan(p.Text) {
			if m.Name == p.Name || seen[m.Name] || insideSpan(m.Start, spans) {
				continue
			}
			seen[m.Name] = true
			result[p.ID] = append(result[p.ID], m.Name)
		}
	}
	return result, nil
}

func insideSpan(pos int, spans [][2]int) bool {
	for _, span := range spans {
		if pos >= span[0] && pos < span[1] {
			return true
		}
	}
	return false
}

// BrokenLinks reports, per passage id, link targets that name no existing
// passage.
func (s *Service) BrokenLinks(storyID string) (map[string][]string, error) {
	story, err := s.store.StoryByID(storyID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(story.Passages))
	for _, p := range story.Passages {
		names[p.Name] = true
	}

	result := make(map[string][]string)
	for _, p := range story.Passages {
		for _, target := range wikilink.ParseLinks(p.Text, false) {
			if !names[target] {
				result[p.ID] = append(result[p.ID], target)
			}
		}
	}
	return result, nil
}
