package inspector

import (
	"github.com/onkernel/frame-inspector/lib/geometry"
	"github.com/onkernel/frame-inspector/lib/page"
)

// hoverState tracks pointer position relative to the page and the hovered
// frame. hoveredFrameID is an identity lookup only; the frame itself lives in
// the page mirror and is re-resolved per event.
type hoverState struct {
	isInspecting       bool
	isHoveringOverPage bool
	bodyHoverStateSent bool
	hoveredFrameID     string
}

func (c *Controller) handlePointer(ev page.PointerEvent) {
	switch ev.Type {
	case page.PointerMouseEnter:
		c.hover.isHoveringOverPage = true
		return
	case page.PointerMouseLeave:
		c.hover.isHoveringOverPage = false
		return
	}

	if !c.hover.isInspecting {
		return
	}
	// Pointer transitions on our own tooltip nodes or on elements the page
	// marked hoverable never count as hover changes.
	if ev.Tooltip || ev.Hoverable {
		return
	}

	if ev.FrameID == "" {
		c.handleBodyHover()
		return
	}
	if ev.Type == page.PointerMouseOver {
		c.handleFrameHover(ev.FrameID)
	}
}

// handleBodyHover reports "hovering over the host page body" to the panel at
// most once per body-hover session, and clears the rendered popovers.
func (c *Controller) handleBodyHover() {
	if c.hover.bodyHoverStateSent {
		return
	}
	if c.session == nil {
		return
	}
	if err := c.session.Post(OutboundMessage{}); err != nil {
		c.abortInspection(err)
		return
	}
	c.hover.bodyHoverStateSent = true
	c.hover.hoveredFrameID = ""
	c.clearPopovers()
}

// handleFrameHover resolves the hovered frame's source and reports its origin
// to the panel. Sourceless frames are rendered locally; they cannot be
// correlated with a same-origin sibling, so no round trip is needed.
// Malformed sources are dropped without a report.
func (c *Controller) handleFrameHover(frameID string) {
	c.hover.bodyHoverStateSent = false
	c.hover.hoveredFrameID = frameID

	snap := c.page.Snapshot()
	frame := snap.FrameByID(frameID)
	if frame == nil {
		return
	}

	src := page.NormalizeSrc(frame.Src)
	if src == "" {
		c.renderSingle(*frame, snap)
		return
	}

	origin, err := page.OriginOf(src)
	if err != nil {
		return
	}

	if c.session == nil {
		return
	}
	msg := OutboundMessage{Attributes: OutboundAttributes{
		IframeOrigin:       origin,
		IsNullSetFromHover: origin == "",
	}}
	if err := c.session.Post(msg); err != nil {
		c.abortInspection(err)
	}
}

// renderSingle replaces the popover set with one overlay and one tooltip for
// the given frame alone.
func (c *Controller) renderSingle(frame page.Frame, snap page.Snapshot) {
	c.clearPopovers()
	vp := snap.Viewport

	c.overlayIDs = append(c.overlayIDs, c.factory.CreateOverlay(frame, vp))

	counts := geometry.CountFrames([]geometry.Rect{frame.Rect}, vp)
	id, repos := c.factory.CreateTooltip("", counts, &frame, vp, false)
	c.tooltipIDs = append(c.tooltipIDs, id)
	c.registry.add(repos)
}
