package page

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []any
}

func (s *recordingSink) Dispatch(ev any) { s.events = append(s.events, ev) }

func newTestFeed() (*Feed, *Page, *recordingSink) {
	p := NewPage()
	f := NewFeed(p, slog.Default())
	sink := &recordingSink{}
	f.SetSink(sink)
	return f, p, sink
}

func TestHandleAgentMessageSnapshot(t *testing.T) {
	f, p, sink := newTestFeed()

	msg := `{"event":"snapshot","data":{
		"frames":[{"id":"f0","src":"https://a.example.com/x","rect":{"x":10,"y":20,"width":300,"height":250},"intersecting":true}],
		"viewport":{"width":1280,"height":720,"scrollX":0,"scrollY":0},
		"documentOrigin":"https://host.example.com",
		"documentHidden":false}}`
	require.NoError(t, f.handleAgentMessage([]byte(msg)))

	snap := p.Snapshot()
	require.Len(t, snap.Frames, 1)
	assert.Equal(t, "f0", snap.Frames[0].ID)
	assert.Equal(t, 300.0, snap.Frames[0].Rect.Width)
	assert.True(t, snap.Frames[0].Intersecting)
	assert.Equal(t, "https://host.example.com", snap.DocumentOrigin)

	// Snapshots update the mirror but never enter the event queue.
	assert.Empty(t, sink.events)
}

func TestHandleAgentMessagePointer(t *testing.T) {
	f, _, sink := newTestFeed()

	msg := `{"event":"pointer","data":{"type":"mouseover","frameId":"f2","tooltip":false}}`
	require.NoError(t, f.handleAgentMessage([]byte(msg)))

	require.Len(t, sink.events, 1)
	ev, ok := sink.events[0].(PointerEvent)
	require.True(t, ok)
	assert.Equal(t, PointerMouseOver, ev.Type)
	assert.Equal(t, "f2", ev.FrameID)
}

func TestHandleAgentMessageScroll(t *testing.T) {
	f, p, sink := newTestFeed()

	msg := `{"event":"scroll","data":{"scrollX":0,"scrollY":480}}`
	require.NoError(t, f.handleAgentMessage([]byte(msg)))

	assert.Equal(t, 480.0, p.Snapshot().Viewport.ScrollY)
	require.Len(t, sink.events, 1)
	assert.Equal(t, ScrollEvent{ScrollY: 480}, sink.events[0])
}

func TestHandleAgentMessageVisibility(t *testing.T) {
	f, p, sink := newTestFeed()

	msg := `{"event":"visibility","data":{"hidden":true}}`
	require.NoError(t, f.handleAgentMessage([]byte(msg)))

	assert.True(t, p.Snapshot().DocumentHidden)
	require.Len(t, sink.events, 1)
	assert.Equal(t, VisibilityEvent{Hidden: true}, sink.events[0])
}

func TestHandleAgentMessageRejectsMalformed(t *testing.T) {
	f, _, sink := newTestFeed()

	assert.Error(t, f.handleAgentMessage([]byte(`not json`)))
	assert.Error(t, f.handleAgentMessage([]byte(`{"event":"teleport","data":{}}`)))
	assert.Error(t, f.handleAgentMessage([]byte(`{"event":"scroll","data":"nope"}`)))
	assert.Empty(t, sink.events)
}

func TestSendWithoutAgentIsDropped(t *testing.T) {
	f, _, _ := newTestFeed()

	// No connection tracked; commands must be silently dropped, not panic.
	f.InsertOverlay(OverlayNode{ID: "ov1"})
	f.Remove("ov1")
	f.SetHighlighting(true)
	assert.False(t, f.Connected())
}
