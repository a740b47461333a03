package inspector

import (
	"github.com/onkernel/frame-inspector/lib/page"
	"github.com/onkernel/frame-inspector/lib/popover"
)

// scrollRegistry holds the ordered reposition callbacks for the currently
// rendered popover set. It is fully drained on every popover clear; an entry
// surviving a set replacement would keep repositioning a removed node.
type scrollRegistry struct {
	entries []popover.Reposition
}

func (r *scrollRegistry) add(fn popover.Reposition) {
	r.entries = append(r.entries, fn)
}

// invoke runs every callback against the given snapshot, in insertion order.
// Each callback is O(1), so scroll events stay cheap even at high frequency.
func (r *scrollRegistry) invoke(snap page.Snapshot) {
	for _, fn := range r.entries {
		fn(snap)
	}
}

func (r *scrollRegistry) drain() {
	r.entries = nil
}

func (r *scrollRegistry) len() int {
	return len(r.entries)
}
