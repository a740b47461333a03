package page

import "github.com/onkernel/frame-inspector/lib/geometry"

// Pointer event types forwarded by the agent.
const (
	PointerMouseOver  = "mouseover"
	PointerMouseOut   = "mouseout"
	PointerMouseEnter = "mouseenter"
	PointerMouseLeave = "mouseleave"
)

// PointerEvent is a pointer transition observed in the host page. FrameID is
// set when the event target is an inspectable frame; Tooltip and Hoverable
// mark targets the hover machine must ignore (our own tooltip nodes and
// elements the page marked as hoverable).
type PointerEvent struct {
	Type      string `json:"type"`
	FrameID   string `json:"frameId,omitempty"`
	Tooltip   bool   `json:"tooltip,omitempty"`
	Hoverable bool   `json:"hoverable,omitempty"`
}

// ScrollEvent carries new window scroll offsets.
type ScrollEvent struct {
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
}

// VisibilityEvent signals a document visibility change.
type VisibilityEvent struct {
	Hidden bool `json:"hidden"`
}

// Sink receives decoded agent events. The inspection controller implements
// this; events are queued onto its single run loop.
type Sink interface {
	Dispatch(ev any)
}

// Position is a tooltip position in document-relative coordinates. Left,
// Right and MaxWidth are optional; exactly one notch class is set.
type Position struct {
	Top      float64  `json:"top"`
	Left     *float64 `json:"left,omitempty"`
	Right    *float64 `json:"right,omitempty"`
	MaxWidth *float64 `json:"maxWidth,omitempty"`
	Notch    string   `json:"notch"`
}

// OverlayNode is a highlight box rendered over a frame's bounding rectangle.
// Rect is document-relative.
type OverlayNode struct {
	ID     string        `json:"id"`
	Rect   geometry.Rect `json:"rect"`
	Hidden bool          `json:"hidden"`
}

// TooltipNode is an informational popover anchored near a frame, or pinned to
// a viewport corner when no frame is resolvable.
type TooltipNode struct {
	ID          string               `json:"id"`
	Origin      string               `json:"origin"`
	Counts      geometry.FrameCounts `json:"counts"`
	Unlocatable bool                 `json:"unlocatable,omitempty"`
	Position    Position             `json:"position"`
}

// Mutator issues DOM mutation commands to the in-page agent. Commands are
// fire-and-forget: delivery failures are logged, never propagated, so that
// only panel-channel failures abort an inspection.
type Mutator interface {
	InsertOverlay(n OverlayNode)
	InsertTooltip(n TooltipNode)
	Reposition(id string, pos Position)
	Remove(id string)
	ScrollIntoView(frameID string)
	SetHighlighting(on bool)
}
