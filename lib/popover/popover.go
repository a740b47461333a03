package popover

import (
	"github.com/nrednav/cuid2"

	"github.com/onkernel/frame-inspector/lib/geometry"
	"github.com/onkernel/frame-inspector/lib/page"
)

// Reposition recomputes a node's placement against a fresh page snapshot.
// Frame rectangles are viewport-relative, so every scroll event invalidates
// the previous placement.
type Reposition func(snap page.Snapshot)

// Factory mints popover nodes with unique IDs and hands them to the page
// mutator. It owns node identity only; lifecycle tracking stays with the
// controller's scroll registry.
type Factory struct {
	mutator page.Mutator
	tipSize Size
}

// NewFactory creates a factory writing through the given mutator.
func NewFactory(mutator page.Mutator) *Factory {
	return &Factory{mutator: mutator, tipSize: DefaultTooltipSize}
}

// CreateOverlay inserts a highlight box over the frame's bounding rectangle,
// converted to document-relative coordinates, and returns its node ID.
func (f *Factory) CreateOverlay(frame page.Frame, vp geometry.Viewport) string {
	id := cuid2.Generate()
	f.mutator.InsertOverlay(page.OverlayNode{
		ID: id,
		Rect: geometry.Rect{
			X:      frame.Rect.X + vp.ScrollX,
			Y:      frame.Rect.Y + vp.ScrollY,
			Width:  frame.Rect.Width,
			Height: frame.Rect.Height,
		},
		Hidden: geometry.Hidden(frame.Rect, vp),
	})
	return id
}

// CreateTooltip inserts a tooltip for the given origin and counts, anchored to
// frame (nil pins it to the viewport corner). It returns the node ID and a
// Reposition that re-resolves the anchor by ID in the snapshot it is given; an
// anchor that has left the page degrades to the pinned corner position.
func (f *Factory) CreateTooltip(origin string, counts geometry.FrameCounts, frame *page.Frame, vp geometry.Viewport, selfOrigin bool) (string, Reposition) {
	id := cuid2.Generate()
	f.mutator.InsertTooltip(page.TooltipNode{
		ID:       id,
		Origin:   origin,
		Counts:   counts,
		Position: Place(frame, vp, f.tipSize, selfOrigin),
	})

	frameID := ""
	if frame != nil {
		frameID = frame.ID
	}
	return id, func(snap page.Snapshot) {
		f.mutator.Reposition(id, Place(snap.FrameByID(frameID), snap.Viewport, f.tipSize, selfOrigin))
	}
}

// CreateUnlocatableTooltip inserts the corner-pinned tooltip shown when the
// requested origin matches no frame in the current page.
func (f *Factory) CreateUnlocatableTooltip(origin string, vp geometry.Viewport) (string, Reposition) {
	id := cuid2.Generate()
	f.mutator.InsertTooltip(page.TooltipNode{
		ID:          id,
		Origin:      origin,
		Unlocatable: true,
		Position:    Place(nil, vp, f.tipSize, false),
	})
	return id, func(snap page.Snapshot) {
		f.mutator.Reposition(id, Place(nil, snap.Viewport, f.tipSize, false))
	}
}

// Destroy removes a node from the page.
func (f *Factory) Destroy(id string) {
	f.mutator.Remove(id)
}
