// Package geometry provides the rectangle math used by passage layout.
package geometry

import "math"

// Rect is an axis-aligned rectangle in editor coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Intersects reports whether a and b overlap. Rectangles that merely touch
// along an edge do not intersect.
func Intersects(a, b Rect) bool {
	return a.Left < b.Right() && b.Left < a.Right() &&
		a.Top < b.Bottom() && b.Top < a.Bottom()
}

// Displace moves moved so it no longer intersects obstacle, along the axis
// requiring the least movement, leaving margin units of clearance between the
// two. If the rectangles do not intersect, moved is returned unchanged.
//
// Ties between axes resolve horizontally; ties between directions on an axis
// resolve rightward/downward.
func Displace(moved, obstacle Rect, margin float64) Rect {
	if !Intersects(moved, obstacle) {
		return moved
	}

	// Signed moves that would clear the obstacle in each direction.
	leftMove := obstacle.Left - moved.Right() - margin
	rightMove := obstacle.Right() + margin - moved.Left
	upMove := obstacle.Top - moved.Bottom() - margin
	downMove := obstacle.Bottom() + margin - moved.Top

	dx := rightMove
	if -leftMove < rightMove {
		dx = leftMove
	}
	dy := downMove
	if -upMove < downMove {
		dy = upMove
	}

	if math.Abs(dx) <= math.Abs(dy) {
		moved.Left += dx
	} else {
		moved.Top += dy
	}
	return moved
}
