// Package inspector implements the frame inspection engine: a single-threaded
// controller that interprets panel commands, locates matching frames in the
// mirrored page, renders overlay and tooltip popovers through the page agent,
// and reports hover transitions back to the panel.
package inspector

// InspectionCommand is an inbound panel message. It is immutable once decoded
// and drives exactly one controller transition.
type InspectionCommand struct {
	IsInspecting           bool    `json:"isInspecting"`
	SelectedFrame          *string `json:"selectedFrame,omitempty"`
	RemoveAllFramePopovers bool    `json:"removeAllFramePopovers,omitempty"`
}

// Target returns the selected frame origin, or "" when none was sent.
func (c InspectionCommand) Target() string {
	if c.SelectedFrame == nil {
		return ""
	}
	return *c.SelectedFrame
}

// OutboundMessage is a hover report sent to the panel.
type OutboundMessage struct {
	Attributes OutboundAttributes `json:"attributes"`
}

// OutboundAttributes carries the hovered frame's resolved origin. An empty
// IframeOrigin signals hovering over the host page body. IsNullSetFromHover is
// set when the hovered frame resolved to an empty origin after normalization.
type OutboundAttributes struct {
	IframeOrigin       string `json:"iframeOrigin"`
	IsNullSetFromHover bool   `json:"isNullSetFromHover,omitempty"`
}
