// Package geometry provides pure viewport/rectangle math for classifying frame
// elements as visible or hidden and counting them. No state is kept here; the
// inspection controller calls these on every command and hover event.
package geometry

import (
	"github.com/samber/lo"
)

// Rect is a bounding rectangle in viewport-relative coordinates, as reported
// by the page agent (getBoundingClientRect semantics).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Intersects reports whether r and o share any area. Degenerate rectangles
// (zero width or height) never intersect anything.
func (r Rect) Intersects(o Rect) bool {
	if r.Width <= 0 || r.Height <= 0 || o.Width <= 0 || o.Height <= 0 {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Viewport describes the visible region of the host page plus the current
// window scroll offsets.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
}

// Rect returns the viewport as a viewport-relative rectangle (origin 0,0).
func (v Viewport) Rect() Rect {
	return Rect{X: 0, Y: 0, Width: v.Width, Height: v.Height}
}

// VisibleInViewport reports whether any intersection exists between the
// element rectangle and the viewport.
func VisibleInViewport(r Rect, vp Viewport) bool {
	return r.Intersects(vp.Rect())
}

// FullyInViewport reports whether the element rectangle lies entirely inside
// the viewport. Used to decide whether an anchor frame still needs to be
// scrolled into view.
func FullyInViewport(r Rect, vp Viewport) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= vp.Width && r.Bottom() <= vp.Height
}

// ConfirmedVisible is the stricter visibility variant: the element must both
// intersect the viewport and have a true intersection-observer state. Used for
// scroll-driven anchor selection where the observer state is authoritative.
func ConfirmedVisible(r Rect, intersecting bool, vp Viewport) bool {
	return intersecting && VisibleInViewport(r, vp)
}

// Hidden reports whether an element is deliberately hidden rather than merely
// scrolled off-screen: it fails the visibility test and renders with zero
// width.
func Hidden(r Rect, vp Viewport) bool {
	return !VisibleInViewport(r, vp) && r.Width == 0
}

// FrameCounts summarizes the visibility classification of a candidate set.
type FrameCounts struct {
	NumberOfFrames        int `json:"numberOfFrames"`
	NumberOfVisibleFrames int `json:"numberOfVisibleFrames"`
	NumberOfHiddenFrames  int `json:"numberOfHiddenFrames"`
}

// CountFrames applies the visibility test to each candidate rectangle.
func CountFrames(rects []Rect, vp Viewport) FrameCounts {
	return FrameCounts{
		NumberOfFrames: len(rects),
		NumberOfVisibleFrames: lo.CountBy(rects, func(r Rect) bool {
			return VisibleInViewport(r, vp)
		}),
		NumberOfHiddenFrames: lo.CountBy(rects, func(r Rect) bool {
			return Hidden(r, vp)
		}),
	}
}
