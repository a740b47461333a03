// Package popover builds the overlay and tooltip nodes the inspection
// controller inserts into the host page, and computes where a tooltip goes
// relative to its anchor frame.
package popover

import (
	"github.com/onkernel/frame-inspector/lib/geometry"
	"github.com/onkernel/frame-inspector/lib/page"
)

// Notch classes. The notch is the small pointer triangle on the tooltip edge
// facing the anchor frame; the agent styles it from the class name.
const (
	NotchTopLeft     = "notch-top-left"
	NotchTopRight    = "notch-top-right"
	NotchBottomLeft  = "notch-bottom-left"
	NotchBottomRight = "notch-bottom-right"
)

// Size is the rendered tooltip box size in CSS pixels.
type Size struct {
	Width  float64
	Height float64
}

// DefaultTooltipSize matches the rendered dimensions of the two-line tooltip.
var DefaultTooltipSize = Size{Width: 248, Height: 68}

// edgeMargin keeps pinned tooltips off the viewport edges.
const edgeMargin = 8

// Place computes the document-relative position for a tooltip anchored to
// frame. A nil or hidden frame pins the tooltip to the top-right viewport
// corner; selfOrigin pins it to the top-left. Otherwise the tooltip sits above
// the frame when there is room, below it when the frame touches the top edge,
// with horizontal alignment flipped or the box clipped when the preferred
// alignment would overflow the viewport.
func Place(frame *page.Frame, vp geometry.Viewport, tip Size, selfOrigin bool) page.Position {
	if frame == nil || geometry.Hidden(frame.Rect, vp) {
		// Left is derived from the scroll offsets so the pin tracks the
		// viewport corner, not the document's right edge.
		return page.Position{
			Top:   vp.ScrollY + edgeMargin,
			Left:  ptr(vp.ScrollX + vp.Width - tip.Width - edgeMargin),
			Notch: NotchTopLeft,
		}
	}

	if selfOrigin {
		return page.Position{
			Top:   vp.ScrollY + edgeMargin,
			Left:  ptr(vp.ScrollX + edgeMargin),
			Notch: NotchTopLeft,
		}
	}

	r := frame.Rect

	// Above the frame, as long as the box would not poke past the top edge.
	if r.Y-tip.Height >= 1 {
		pos := page.Position{Top: vp.ScrollY + r.Y - tip.Height}
		pos.Left, pos.Right, pos.MaxWidth, pos.Notch = alignHorizontal(r, vp, tip, false)
		return pos
	}

	// Below the frame when it hugs the top edge and there is room underneath.
	if r.Bottom()+tip.Height < vp.Height {
		pos := page.Position{Top: vp.ScrollY + r.Bottom()}
		pos.Left, pos.Right, pos.MaxWidth, pos.Notch = alignHorizontal(r, vp, tip, true)
		return pos
	}

	// Frame taller than the viewport: overlap its top-left corner.
	return page.Position{
		Top:   vp.ScrollY + r.Y,
		Left:  ptr(vp.ScrollX + r.X),
		Notch: NotchTopLeft,
	}
}

// alignHorizontal picks left alignment against the frame's left edge, falls
// back to right alignment against its right edge, and clips the box as a last
// resort. below selects the notch row (top notches point up at a frame above
// the tooltip).
func alignHorizontal(r geometry.Rect, vp geometry.Viewport, tip Size, below bool) (left, right, maxWidth *float64, notch string) {
	notchLeft, notchRight := NotchBottomLeft, NotchBottomRight
	if below {
		notchLeft, notchRight = NotchTopLeft, NotchTopRight
	}

	leftFits := r.X+tip.Width <= vp.Width-edgeMargin
	rightFits := r.Right()-tip.Width >= edgeMargin

	switch {
	case leftFits:
		return ptr(vp.ScrollX + max(r.X, edgeMargin)), nil, nil, notchLeft
	case rightFits:
		return ptr(vp.ScrollX + r.Right() - tip.Width), nil, nil, notchRight
	default:
		// Clip to the space left of the viewport's right edge, clamping the
		// anchor to 0 when the frame's left edge is negative.
		x := max(r.X, 0)
		return ptr(vp.ScrollX + x), nil, ptr(vp.Width - x), notchLeft
	}
}

func ptr(v float64) *float64 { return &v }
