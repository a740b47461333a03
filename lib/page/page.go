// Package page maintains a Go-side mirror of the host page: the iframe
// elements it contains, viewport dimensions, scroll offsets and document
// visibility. The mirror is fed by an agent script running inside the page
// (see feed.go) and consumed synchronously by the inspection controller.
package page

import (
	"net/url"
	"strings"
	"sync"

	"github.com/onkernel/frame-inspector/lib/geometry"
)

// Frame is a single embedded-document element located in the host page.
// Frames are ephemeral: the whole set is replaced on every agent snapshot and
// candidates are recomputed per inspection command, never persisted.
type Frame struct {
	ID           string        `json:"id"`
	Src          string        `json:"src"`
	Rect         geometry.Rect `json:"rect"`
	Intersecting bool          `json:"intersecting"`
}

// Origin returns the frame's resolved origin, with empty and about:blank
// sources normalized to "". Unparseable and relative sources also resolve to
// "" here; hover reporting applies stricter rules (see the inspector package).
func (f Frame) Origin() string {
	src := NormalizeSrc(f.Src)
	if src == "" {
		return ""
	}
	origin, err := OriginOf(src)
	if err != nil {
		return ""
	}
	return origin
}

// Snapshot is the complete mirrored page state at one point in time.
type Snapshot struct {
	Frames         []Frame           `json:"frames"`
	Viewport       geometry.Viewport `json:"viewport"`
	DocumentOrigin string            `json:"documentOrigin"`
	DocumentHidden bool              `json:"documentHidden"`
}

// FrameByID returns the frame with the given ID, or nil. Lookup is by
// identity only; callers never own the returned frame's lifecycle.
func (s Snapshot) FrameByID(id string) *Frame {
	if id == "" {
		return nil
	}
	for i := range s.Frames {
		if s.Frames[i].ID == id {
			return &s.Frames[i]
		}
	}
	return nil
}

// Page holds the current mirror. All writes come from the agent feed; reads
// come from the controller run loop and the status endpoint.
type Page struct {
	mu             sync.RWMutex
	snap           Snapshot
	seq            int64
	agentConnected bool
}

// NewPage returns an empty page mirror.
func NewPage() *Page {
	return &Page{}
}

// Apply replaces the mirrored state wholesale.
func (p *Page) Apply(snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = snap
	p.seq++
}

// SetScroll updates only the scroll offsets of the mirrored viewport.
func (p *Page) SetScroll(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.Viewport.ScrollX = x
	p.snap.Viewport.ScrollY = y
	p.seq++
}

// SetHidden updates the mirrored document visibility state.
func (p *Page) SetHidden(hidden bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.DocumentHidden = hidden
	p.seq++
}

// Snapshot returns a copy of the current mirror.
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := p.snap
	snap.Frames = append([]Frame(nil), p.snap.Frames...)
	return snap
}

// Seq returns the mirror revision, incremented on every agent update.
func (p *Page) Seq() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.seq
}

func (p *Page) setAgentConnected(connected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agentConnected = connected
	if !connected {
		p.snap = Snapshot{}
	}
}

// AgentConnected reports whether an agent is currently feeding the mirror.
func (p *Page) AgentConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.agentConnected
}

// NormalizeSrc treats empty and about:blank frame sources as absent.
func NormalizeSrc(src string) string {
	src = strings.TrimSpace(src)
	if src == "" || src == "about:blank" {
		return ""
	}
	return src
}

// OriginOf resolves the origin (scheme://host[:port]) of an absolute URL.
// URLs without a host (data:, about:, relative paths) resolve to "".
func OriginOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", nil
	}
	return u.Scheme + "://" + u.Host, nil
}
