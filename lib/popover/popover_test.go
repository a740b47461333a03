package popover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onkernel/frame-inspector/lib/geometry"
	"github.com/onkernel/frame-inspector/lib/page"
)

type fakeMutator struct {
	overlays    []page.OverlayNode
	tooltips    []page.TooltipNode
	repositions map[string]page.Position
	removed     []string
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{repositions: map[string]page.Position{}}
}

func (m *fakeMutator) InsertOverlay(n page.OverlayNode)        { m.overlays = append(m.overlays, n) }
func (m *fakeMutator) InsertTooltip(n page.TooltipNode)        { m.tooltips = append(m.tooltips, n) }
func (m *fakeMutator) Reposition(id string, pos page.Position) { m.repositions[id] = pos }
func (m *fakeMutator) Remove(id string)                        { m.removed = append(m.removed, id) }
func (m *fakeMutator) ScrollIntoView(frameID string)           {}
func (m *fakeMutator) SetHighlighting(on bool)                 {}

func TestCreateOverlayConvertsToDocumentCoordinates(t *testing.T) {
	mut := newFakeMutator()
	f := NewFactory(mut)

	vp := geometry.Viewport{Width: 1280, Height: 720, ScrollX: 0, ScrollY: 400}
	id := f.CreateOverlay(page.Frame{ID: "f0", Rect: geometry.Rect{X: 100, Y: 50, Width: 300, Height: 250}}, vp)

	require.Len(t, mut.overlays, 1)
	assert.Equal(t, id, mut.overlays[0].ID)
	assert.Equal(t, 450.0, mut.overlays[0].Rect.Y)
	assert.Equal(t, 100.0, mut.overlays[0].Rect.X)
	assert.False(t, mut.overlays[0].Hidden)
}

func TestCreateOverlayMarksHiddenFrames(t *testing.T) {
	mut := newFakeMutator()
	f := NewFactory(mut)

	f.CreateOverlay(page.Frame{ID: "f0", Rect: geometry.Rect{X: -5, Y: -5, Width: 0, Height: 0}}, geometry.Viewport{Width: 1280, Height: 720})

	require.Len(t, mut.overlays, 1)
	assert.True(t, mut.overlays[0].Hidden)
}

func TestCreateTooltipRepositionFollowsAnchor(t *testing.T) {
	mut := newFakeMutator()
	f := NewFactory(mut)

	frame := page.Frame{ID: "f0", Rect: geometry.Rect{X: 300, Y: 200, Width: 400, Height: 300}}
	vp := geometry.Viewport{Width: 1280, Height: 720}
	counts := geometry.FrameCounts{NumberOfFrames: 1, NumberOfVisibleFrames: 1}

	id, repos := f.CreateTooltip("https://ads.example.com", counts, &frame, vp, false)
	require.Len(t, mut.tooltips, 1)
	assert.Equal(t, "https://ads.example.com", mut.tooltips[0].Origin)
	assert.Equal(t, counts, mut.tooltips[0].Counts)

	// After a 100px scroll the anchor's viewport rect moved up by 100.
	moved := frame
	moved.Rect.Y = 100
	repos(page.Snapshot{
		Frames:   []page.Frame{moved},
		Viewport: geometry.Viewport{Width: 1280, Height: 720, ScrollY: 100},
	})

	pos, ok := mut.repositions[id]
	require.True(t, ok)
	assert.Equal(t, 100.0+100-DefaultTooltipSize.Height, pos.Top)
}

func TestCreateTooltipRepositionDegradesWhenAnchorGone(t *testing.T) {
	mut := newFakeMutator()
	f := NewFactory(mut)

	frame := page.Frame{ID: "f0", Rect: geometry.Rect{X: 300, Y: 200, Width: 400, Height: 300}}
	id, repos := f.CreateTooltip("https://ads.example.com", geometry.FrameCounts{}, &frame, geometry.Viewport{Width: 1280, Height: 720}, false)

	repos(page.Snapshot{Viewport: geometry.Viewport{Width: 1280, Height: 720}})

	pos := mut.repositions[id]
	require.NotNil(t, pos.Left)
	assert.Equal(t, 1280.0-248-edgeMargin, *pos.Left)
	assert.Equal(t, float64(edgeMargin), pos.Top)
}

func TestCreateUnlocatableTooltip(t *testing.T) {
	mut := newFakeMutator()
	f := NewFactory(mut)

	id, _ := f.CreateUnlocatableTooltip("https://gone.example.com", geometry.Viewport{Width: 1280, Height: 720})

	require.Len(t, mut.tooltips, 1)
	assert.True(t, mut.tooltips[0].Unlocatable)
	require.NotNil(t, mut.tooltips[0].Position.Left)
	assert.Equal(t, 1280.0-248-edgeMargin, *mut.tooltips[0].Position.Left)

	f.Destroy(id)
	assert.Equal(t, []string{id}, mut.removed)
}

func TestFactoryIDsAreUnique(t *testing.T) {
	mut := newFakeMutator()
	f := NewFactory(mut)

	vp := geometry.Viewport{Width: 1280, Height: 720}
	a := f.CreateOverlay(page.Frame{ID: "f0", Rect: geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}}, vp)
	b := f.CreateOverlay(page.Frame{ID: "f1", Rect: geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}}, vp)
	assert.NotEqual(t, a, b)
}
