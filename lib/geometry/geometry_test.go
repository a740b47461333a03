package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vp = Viewport{Width: 1280, Height: 720}

func TestVisibleInViewport(t *testing.T) {
	testCases := []struct {
		name    string
		rect    Rect
		visible bool
	}{
		{"fully inside", Rect{X: 100, Y: 100, Width: 400, Height: 300}, true},
		{"partial intersection on right edge", Rect{X: 1200, Y: 100, Width: 400, Height: 300}, true},
		{"partial intersection on top edge", Rect{X: 100, Y: -150, Width: 400, Height: 300}, true},
		{"scrolled below the fold", Rect{X: 100, Y: 900, Width: 400, Height: 300}, false},
		{"entirely left of viewport", Rect{X: -500, Y: 100, Width: 400, Height: 300}, false},
		{"zero size at origin", Rect{X: 0, Y: 0, Width: 0, Height: 0}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.visible, VisibleInViewport(tc.rect, vp))
		})
	}
}

func TestFullyInViewport(t *testing.T) {
	assert.True(t, FullyInViewport(Rect{X: 0, Y: 0, Width: 1280, Height: 720}, vp))
	assert.True(t, FullyInViewport(Rect{X: 10, Y: 10, Width: 100, Height: 100}, vp))
	assert.False(t, FullyInViewport(Rect{X: -1, Y: 10, Width: 100, Height: 100}, vp))
	assert.False(t, FullyInViewport(Rect{X: 10, Y: 700, Width: 100, Height: 100}, vp))
}

func TestHidden(t *testing.T) {
	// Zero width and no intersection: deliberately hidden.
	assert.True(t, Hidden(Rect{X: -10, Y: -10, Width: 0, Height: 0}, vp))

	// Nonzero width but scrolled out of view: real frame, not hidden.
	assert.False(t, Hidden(Rect{X: 100, Y: 2000, Width: 400, Height: 300}, vp))

	// Zero width but still intersecting (degenerate rect inside viewport edge
	// coordinates) never intersects, so classification depends on width alone.
	assert.True(t, Hidden(Rect{X: 100, Y: 100, Width: 0, Height: 0}, vp))

	// Visible frame is never hidden.
	assert.False(t, Hidden(Rect{X: 100, Y: 100, Width: 400, Height: 300}, vp))
}

func TestConfirmedVisible(t *testing.T) {
	inView := Rect{X: 100, Y: 100, Width: 400, Height: 300}
	assert.True(t, ConfirmedVisible(inView, true, vp))
	assert.False(t, ConfirmedVisible(inView, false, vp))
	assert.False(t, ConfirmedVisible(Rect{X: 100, Y: 2000, Width: 400, Height: 300}, true, vp))
}

func TestCountFrames(t *testing.T) {
	rects := []Rect{
		{X: 100, Y: 100, Width: 400, Height: 300},  // visible
		{X: 1200, Y: 100, Width: 400, Height: 300}, // partial, still visible
		{X: 100, Y: 2000, Width: 400, Height: 300}, // off-screen, nonzero width
		{X: 0, Y: -50, Width: 0, Height: 0},        // hidden
	}

	counts := CountFrames(rects, vp)
	require.Equal(t, 4, counts.NumberOfFrames)
	assert.Equal(t, 2, counts.NumberOfVisibleFrames)
	assert.Equal(t, 1, counts.NumberOfHiddenFrames)
}

func TestCountFramesEmpty(t *testing.T) {
	counts := CountFrames(nil, vp)
	assert.Equal(t, FrameCounts{}, counts)
}
