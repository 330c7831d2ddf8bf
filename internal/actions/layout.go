package actions

import (
	"fmt"
	"math"

	"github.com/storyweave/goweave/internal/store"
	"github.com/storyweave/goweave/pkg/geometry"
)

// DisplaceMargin is the clearance left between a displaced passage and the
// obstacle it was pushed off of, in editor units.
const DisplaceMargin = 10.0

// PositionPassage moves a passage so it overlaps no other passage in its
// story, then persists the final top/left. Obstacles are visited in the
// story's passage creation order and each intersection displaces the target
// incrementally, so the result depends on that order — multiple overlaps
// resolve as a chain of individual displacements, not a global solve.
//
// filter, when non-nil, limits which passages count as obstacles. If the
// story has snap-to-grid enabled and gridSize is nonzero, the final top/left
// are rounded to the nearest grid multiple.
func (s *Service) PositionPassage(storyID, passageID string, gridSize float64, filter func(*store.Passage) bool) error {
	if math.IsNaN(gridSize) || math.IsInf(gridSize, 0) || gridSize < 0 {
		return fmt.Errorf("%w: grid size %v", store.ErrValidation, gridSize)
	}

	story, err := s.store.StoryByID(storyID)
	if err != nil {
		return err
	}

	var target *store.Passage
	for _, p := range story.Passages {
		if p.ID == passageID {
			target = p
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: passage %q in story %q", store.ErrNotFound, passageID, storyID)
	}

	rect := geometry.Rect{Top: target.Top, Left: target.Left, Width: target.Width, Height: target.Height}
	for _, other := range story.Passages {
		if other.ID == passageID {
			continue
		}
		if filter != nil && !filter(other) {
			continue
		}
		obstacle := geometry.Rect{Top: other.Top, Left: other.Left, Width: other.Width, Height: other.Height}
		if geometry.Intersects(rect, obstacle) {
			rect = geometry.Displace(rect, obstacle, DisplaceMargin)
		}
	}

	if story.SnapToGrid && gridSize > 0 {
		rect.Left = math.Round(rect.Left/gridSize) * gridSize
		rect.Top = math.Round(rect.Top/gridSize) * gridSize
	}

	return s.store.Apply(store.UpdatePassage{
		StoryID:   storyID,
		PassageID: passageID,
		Props:     store.PassageProps{Top: &rect.Top, Left: &rect.Left},
	})
}
