package inspector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/onkernel/frame-inspector/lib/geometry"
	"github.com/onkernel/frame-inspector/lib/page"
	"github.com/onkernel/frame-inspector/lib/popover"
)

// State is the controller's lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateInspecting State = "inspecting"
)

// Internal run-loop events. Session events carry the originating session so
// stale connections cannot act on the current one.
type sessionConnected struct{ s *Session }

type sessionClosed struct{ s *Session }

type commandEvent struct {
	s   *Session
	cmd InspectionCommand
}

// scrollFlush delivers the deferred trailing reposition of a scroll burst.
type scrollFlush struct{}

// Controller is the frame inspection state machine. All mutation happens on
// the single Run goroutine; events from the panel hub and the page feed are
// queued through Dispatch and processed synchronously to completion, so no
// popover-insertion or hover-transition run ever interleaves with another.
type Controller struct {
	log     *slog.Logger
	page    *page.Page
	mutator page.Mutator
	factory *popover.Factory

	scrollThrottle time.Duration

	events chan any

	mu             sync.Mutex
	state          State
	session        *Session
	target         string
	hover          hoverState
	registry       scrollRegistry
	overlayIDs     []string
	tooltipIDs     []string
	lastReposition time.Time
	flushTimer     *time.Timer
}

// NewController wires the controller to the page mirror and mutation channel.
func NewController(pg *page.Page, mutator page.Mutator, scrollThrottle time.Duration, log *slog.Logger) *Controller {
	return &Controller{
		log:            log,
		page:           pg,
		mutator:        mutator,
		factory:        popover.NewFactory(mutator),
		scrollThrottle: scrollThrottle,
		events:         make(chan any, 256),
		state:          StateIdle,
	}
}

// Dispatch queues an event for the run loop. Events are dropped with a
// warning if the queue is full rather than blocking the caller's read loop.
func (c *Controller) Dispatch(ev any) {
	select {
	case c.events <- ev:
	default:
		c.log.Warn("[inspector] event queue full, dropping", "event", ev)
	}
}

// Run processes queued events until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.mu.Lock()
			c.handleEvent(ev)
			c.mu.Unlock()
		}
	}
}

func (c *Controller) handleEvent(ev any) {
	switch ev := ev.(type) {
	case sessionConnected:
		if c.session != nil && c.session != ev.s {
			// The old channel is gone; its inspection cannot continue.
			c.stopInspecting()
		}
		c.session = ev.s
		c.log.Info("[inspector] panel session attached", "session_id", ev.s.ID, "name", ev.s.Name)
	case sessionClosed:
		if ev.s != c.session {
			return
		}
		c.session = nil
		c.stopInspecting()
		c.log.Info("[inspector] panel session detached", "session_id", ev.s.ID)
	case commandEvent:
		if ev.s != c.session {
			c.log.Debug("[inspector] dropping command from stale session", "session_id", ev.s.ID)
			return
		}
		c.handleCommand(ev.cmd)
	case page.PointerEvent:
		c.handlePointer(ev)
	case page.ScrollEvent:
		c.handleScroll()
	case scrollFlush:
		c.flushTimer = nil
		if c.registry.len() > 0 {
			c.repositionAll()
		}
	case page.VisibilityEvent:
		if ev.Hidden {
			c.hover.isHoveringOverPage = false
		}
	default:
		c.log.Warn("[inspector] unknown event", "event", ev)
	}
}

func (c *Controller) handleCommand(cmd InspectionCommand) {
	if !cmd.IsInspecting {
		c.stopInspecting()
		return
	}
	c.startInspecting()
	c.insertPopovers(cmd)
}

// startInspecting installs listeners idempotently: always remove before add,
// so repeated start commands never accumulate bindings.
func (c *Controller) startInspecting() {
	c.removeListeners()
	c.installListeners()
	c.state = StateInspecting
	c.hover.isInspecting = true
}

func (c *Controller) stopInspecting() {
	c.clearPopovers()
	c.removeListeners()
	c.state = StateIdle
	c.target = ""
	c.hover = hoverState{isHoveringOverPage: c.hover.isHoveringOverPage}
}

func (c *Controller) installListeners() {
	c.mutator.SetHighlighting(true)
}

func (c *Controller) removeListeners() {
	c.mutator.SetHighlighting(false)
}

func (c *Controller) insertPopovers(cmd InspectionCommand) {
	target := cmd.Target()

	if cmd.RemoveAllFramePopovers && target == "" {
		c.clearPopovers()
		return
	}
	if target == "" {
		return
	}

	c.target = target
	c.renderTarget(target, c.page.Snapshot())
}

// renderTarget replaces the popover set for the given origin. Stale popovers
// and their scroll listeners are always drained before new ones go in.
func (c *Controller) renderTarget(target string, snap page.Snapshot) {
	c.clearPopovers()
	vp := snap.Viewport

	matches := lo.Filter(snap.Frames, func(f page.Frame, _ int) bool {
		return f.Origin() == target
	})

	if len(matches) == 0 {
		id, repos := c.factory.CreateUnlocatableTooltip(target, vp)
		c.tooltipIDs = append(c.tooltipIDs, id)
		c.registry.add(repos)
		return
	}

	counts := geometry.CountFrames(lo.Map(matches, func(f page.Frame, _ int) geometry.Rect {
		return f.Rect
	}), vp)
	selfOrigin := target == snap.DocumentOrigin

	shown := lo.Filter(matches, func(f page.Frame, _ int) bool {
		return !geometry.Hidden(f.Rect, vp)
	})

	var anchor page.Frame
	switch {
	case len(shown) == 0:
		// Every match is hidden: one overlay and the tooltip at the first
		// match only, since nothing is on-screen to distinguish.
		anchor = matches[0]
		c.overlayIDs = append(c.overlayIDs, c.factory.CreateOverlay(anchor, vp))
	default:
		for _, f := range shown {
			c.overlayIDs = append(c.overlayIDs, c.factory.CreateOverlay(f, vp))
		}
		anchor = c.pickAnchor(shown, vp)
	}

	id, repos := c.factory.CreateTooltip(target, counts, &anchor, vp, selfOrigin)
	c.tooltipIDs = append(c.tooltipIDs, id)
	c.registry.add(repos)

	c.autoScroll(anchor, vp)
}

// pickAnchor chooses the tooltip anchor among non-hidden matches: the
// currently hovered frame if it is one of them, else the first frame the
// intersection observer confirms visible, else the first match.
func (c *Controller) pickAnchor(shown []page.Frame, vp geometry.Viewport) page.Frame {
	if c.hover.hoveredFrameID != "" {
		if hovered, ok := lo.Find(shown, func(f page.Frame) bool {
			return f.ID == c.hover.hoveredFrameID
		}); ok {
			return hovered
		}
	}
	if confirmed, ok := lo.Find(shown, func(f page.Frame) bool {
		return geometry.ConfirmedVisible(f.Rect, f.Intersecting, vp)
	}); ok {
		return confirmed
	}
	return shown[0]
}

// autoScroll brings the anchor into view after insertion, unless the pointer
// is over the page, the anchor has zero width, or it is already fully visible.
func (c *Controller) autoScroll(anchor page.Frame, vp geometry.Viewport) {
	if c.hover.isHoveringOverPage {
		return
	}
	if anchor.Rect.Width <= 0 {
		return
	}
	if geometry.FullyInViewport(anchor.Rect, vp) {
		return
	}
	c.mutator.ScrollIntoView(anchor.ID)
}

func (c *Controller) clearPopovers() {
	if c.flushTimer != nil {
		c.flushTimer.Stop()
		c.flushTimer = nil
	}
	c.registry.drain()
	for _, id := range c.overlayIDs {
		c.factory.Destroy(id)
	}
	for _, id := range c.tooltipIDs {
		c.factory.Destroy(id)
	}
	c.overlayIDs = nil
	c.tooltipIDs = nil
}

// handleScroll repositions on the leading edge of a burst, then defers at
// most one trailing reposition for events landing inside the throttle window,
// so the popovers always settle at the final scroll position.
func (c *Controller) handleScroll() {
	if c.registry.len() == 0 {
		return
	}
	elapsed := time.Since(c.lastReposition)
	if c.scrollThrottle <= 0 || elapsed >= c.scrollThrottle {
		c.repositionAll()
		return
	}
	if c.flushTimer == nil {
		c.flushTimer = time.AfterFunc(c.scrollThrottle-elapsed, func() {
			c.Dispatch(scrollFlush{})
		})
	}
}

func (c *Controller) repositionAll() {
	c.lastReposition = time.Now()
	c.registry.invoke(c.page.Snapshot())
}

// abortInspection handles a torn-down panel channel mid-send: everything is
// reset locally and the panel is expected to re-initiate once reconnected.
func (c *Controller) abortInspection(err error) {
	c.log.Warn("[inspector] aborting inspection, panel send failed", "err", err)
	c.stopInspecting()
}

// Status is the controller's introspection snapshot.
type Status struct {
	State           State  `json:"state"`
	PanelConnected  bool   `json:"panel_connected"`
	PanelName       string `json:"panel_name,omitempty"`
	Target          string `json:"target,omitempty"`
	AgentConnected  bool   `json:"agent_connected"`
	Overlays        int    `json:"overlays"`
	Tooltips        int    `json:"tooltips"`
	ScrollListeners int    `json:"scroll_listeners"`
	SnapshotSeq     int64  `json:"snapshot_seq"`
}

// Status reports the current engine state for the status endpoint.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:           c.state,
		PanelConnected:  c.session != nil,
		Target:          c.target,
		AgentConnected:  c.page.AgentConnected(),
		Overlays:        len(c.overlayIDs),
		Tooltips:        len(c.tooltipIDs),
		ScrollListeners: c.registry.len(),
		SnapshotSeq:     c.page.Seq(),
	}
	if c.session != nil {
		st.PanelName = c.session.Name
	}
	return st
}
