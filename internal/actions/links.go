package actions

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/storyweave/goweave/internal/store"
	"github.com/storyweave/goweave/pkg/wikilink"
)

// ChangeLinksInStory rewrites every link in the story that targets oldName so
// it targets newName, preserving display text, arrow direction, and setter
// clauses. One update is issued per modified passage.
func (s *Service) ChangeLinksInStory(storyID, oldName, newName string) error {
	story, err := s.store.StoryByID(storyID)
	if err != nil {
		return err
	}

	for _, p := range story.Passages {
		if !strings.Contains(p.Text, oldName) {
			continue
		}
		rewritten := wikilink.Rename(p.Text, oldName, newName)
		if rewritten == p.Text {
			continue
		}
		err := s.store.Apply(store.UpdatePassage{
			StoryID:   storyID,
			PassageID: p.ID,
			Props:     store.PassageProps{Text: &rewritten},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateNewlyLinkedPassages materializes passages for link targets that
// appear in a passage's current text but not in oldText, excluding targets
// that already exist. New passages sit on a horizontal row centered beneath
// the source passage and are then individually laid out to resolve overlaps.
func (s *Service) CreateNewlyLinkedPassages(storyID, passageID, oldText string, gridSize float64) error {
	story, err := s.store.StoryByID(storyID)
	if err != nil {
		return err
	}

	var source *store.Passage
	existing := make(map[string]bool, len(story.Passages))
	for _, p := range story.Passages {
		existing[p.Name] = true
		if p.ID == passageID {
			source = p
		}
	}
	if source == nil {
		return fmt.Errorf("%w: passage %q in story %q", store.ErrNotFound, passageID, storyID)
	}

	oldLinks := make(map[string]bool)
	for _, name := range wikilink.ParseLinks(oldText, false) {
		oldLinks[name] = true
	}

	var newLinks []string
	for _, name := range wikilink.ParseLinks(source.Text, false) {
		if !oldLinks[name] && !existing[name] {
			newLinks = append(newLinks, name)
		}
	}
	if len(newLinks) == 0 {
		return nil
	}

	// Row geometry: successive passages start 1.5 widths apart; the row is
	// centered under the source, 1.5 heights below its top edge.
	w, h := source.Width, source.Height
	rowWidth := float64(len(newLinks)-1)*w*1.5 + w
	top := source.Top + h*1.5
	left := source.Left + w/2 - rowWidth/2

	for i, name := range newLinks {
		passageLeft := left + float64(i)*w*1.5
		err := s.store.Apply(store.CreatePassage{
			StoryID: storyID,
			Props: store.PassageProps{
				Name: &name,
				Top:  &top,
				Left: &passageLeft,
			},
		})
		if err != nil {
			return err
		}

		created, err := s.store.PassageByName(storyID, name)
		if err != nil {
			// Lost a race with another create; skip layout for this one.
			s.log.Warn("newly linked passage missing after create",
				zap.String("story", storyID), zap.String("name", name), zap.Error(err))
			continue
		}
		if err := s.PositionPassage(storyID, created.ID, gridSize, nil); err != nil {
			s.log.Warn("layout of newly linked passage failed",
				zap.String("story", storyID), zap.String("name", name), zap.Error(err))
		}
	}
	return nil
}
