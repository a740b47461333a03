package page

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// Agent script injected into the host page. It mirrors iframes, viewport and
// scroll state to the engine, forwards pointer/visibility events, and executes
// mutation commands (overlay/tooltip insertion, reposition, removal,
// scroll-into-view, highlight mode) sent back over the same socket.
const AgentScript = `
(function() {
  if (window.__frameInspectorAgent__) return;
  window.__frameInspectorAgent__ = true;

  var OVERLAY_CLASS = 'fi-frame-overlay';
  var TOOLTIP_CLASS = 'fi-frame-tooltip';
  var HIGHLIGHT_CLASS = 'fi-highlight-frames';
  var NOTCHES = ['notch-top-left', 'notch-top-right', 'notch-bottom-left', 'notch-bottom-right'];

  var ws = null;
  var idCounter = 0;
  var intersecting = {};
  var observer = new IntersectionObserver(function(entries) {
    entries.forEach(function(e) {
      if (e.target.dataset.fiId) intersecting[e.target.dataset.fiId] = e.isIntersecting;
    });
    throttledSnapshot();
  });

  function frames() {
    var out = [];
    document.querySelectorAll('iframe').forEach(function(el) {
      if (!el.dataset.fiId) {
        el.dataset.fiId = 'f' + (idCounter++);
        observer.observe(el);
      }
      var r = el.getBoundingClientRect();
      out.push({
        id: el.dataset.fiId,
        src: el.getAttribute('src') || '',
        rect: { x: r.x, y: r.y, width: r.width, height: r.height },
        intersecting: !!intersecting[el.dataset.fiId]
      });
    });
    return out;
  }

  function send(event, data) {
    if (!ws || ws.readyState !== WebSocket.OPEN) return;
    try { ws.send(JSON.stringify({ event: event, data: data })); } catch (e) {}
  }

  function snapshot() {
    send('snapshot', {
      frames: frames(),
      viewport: {
        width: window.innerWidth, height: window.innerHeight,
        scrollX: window.scrollX, scrollY: window.scrollY
      },
      documentOrigin: location.origin,
      documentHidden: document.hidden
    });
  }

  var timer = null;
  function throttledSnapshot() {
    if (timer) return;
    snapshot();
    timer = setTimeout(function() { timer = null; }, 150);
  }

  function pointerPayload(e) {
    var t = e.target;
    var frame = t && t.closest ? t.closest('iframe') : null;
    return {
      type: e.type,
      frameId: frame && frame.dataset.fiId ? frame.dataset.fiId : '',
      tooltip: !!(t && t.closest && t.closest('.' + TOOLTIP_CLASS)),
      hoverable: !!(t && t.closest && t.closest('[data-fi-hoverable]'))
    };
  }

  function nodeFor(id) { return document.querySelector('[data-fi-node="' + id + '"]'); }

  function exec(cmd) {
    switch (cmd.cmd) {
    case 'insertOverlay': {
      var el = document.createElement('div');
      el.className = OVERLAY_CLASS + (cmd.hidden ? ' fi-hidden-frame' : '');
      el.dataset.fiNode = cmd.id;
      el.style.cssText = 'position:absolute;pointer-events:none;z-index:2147483646;' +
        'left:' + cmd.rect.x + 'px;top:' + cmd.rect.y + 'px;' +
        'width:' + cmd.rect.width + 'px;height:' + cmd.rect.height + 'px;';
      document.body.appendChild(el);
      break;
    }
    case 'insertTooltip': {
      var tip = document.createElement('div');
      tip.className = TOOLTIP_CLASS;
      tip.dataset.fiNode = cmd.id;
      tip.textContent = cmd.unlocatable
        ? 'Frame not found: ' + cmd.origin
        : cmd.origin + ' (' + cmd.counts.numberOfVisibleFrames + '/' + cmd.counts.numberOfFrames + ' visible)';
      applyPosition(tip, cmd.position);
      document.body.appendChild(tip);
      break;
    }
    case 'reposition': {
      var n = nodeFor(cmd.id);
      if (n) applyPosition(n, cmd.position);
      break;
    }
    case 'remove': {
      var d = nodeFor(cmd.id);
      if (d && d.parentNode) d.parentNode.removeChild(d);
      break;
    }
    case 'scrollIntoView': {
      var f = document.querySelector('[data-fi-id="' + cmd.frameId + '"]');
      if (f) f.scrollIntoView({ behavior: 'instant', block: 'start', inline: 'start' });
      break;
    }
    case 'setHighlighting': {
      document.documentElement.classList.toggle(HIGHLIGHT_CLASS, !!cmd.on);
      break;
    }
    }
  }

  function applyPosition(el, pos) {
    el.style.position = 'absolute';
    el.style.zIndex = '2147483647';
    el.style.top = pos.top + 'px';
    el.style.left = pos.left != null ? pos.left + 'px' : 'auto';
    el.style.right = pos.right != null ? pos.right + 'px' : 'auto';
    el.style.maxWidth = pos.maxWidth != null ? pos.maxWidth + 'px' : 'none';
    NOTCHES.forEach(function(c) { el.classList.remove(c); });
    el.classList.add(pos.notch);
  }

  function connect() {
    var proto = location.protocol === 'https:' ? 'wss' : 'ws';
    var host = window.__frameInspectorHost__ || 'localhost:10007';
    ws = new WebSocket(proto + '://' + host + '/ws/page');
    ws.onopen = snapshot;
    ws.onmessage = function(msg) {
      try { exec(JSON.parse(msg.data)); } catch (e) {}
    };
    ws.onclose = function() { setTimeout(connect, 2000); };
  }
  connect();

  new MutationObserver(throttledSnapshot).observe(document.documentElement, {
    childList: true, subtree: true, attributes: true,
    attributeFilter: ['style', 'class', 'src', 'hidden']
  });
  window.addEventListener('resize', throttledSnapshot, { passive: true });
  window.addEventListener('scroll', function() {
    send('scroll', { scrollX: window.scrollX, scrollY: window.scrollY });
  }, { passive: true });

  ['mouseover', 'mouseout'].forEach(function(type) {
    document.addEventListener(type, function(e) { send('pointer', pointerPayload(e)); }, true);
  });
  ['mouseenter', 'mouseleave'].forEach(function(type) {
    document.documentElement.addEventListener(type, function(e) {
      send('pointer', { type: e.type });
    });
  });
  document.addEventListener('visibilitychange', function() {
    send('visibility', { hidden: document.hidden });
  });

  setInterval(snapshot, 500);
})();
`

// Feed accepts the in-page agent's WebSocket connection, decodes its events
// into the page mirror and the controller's event queue, and carries mutation
// commands back to the page. At most one agent is tracked; a new connection
// replaces any stale reference.
type Feed struct {
	log  *slog.Logger
	page *Page
	sink Sink

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewFeed creates a feed for the given page mirror.
func NewFeed(page *Page, log *slog.Logger) *Feed {
	return &Feed{log: log, page: page}
}

// SetSink wires the event sink. Must be called before the first agent
// connects.
func (f *Feed) SetSink(sink Sink) {
	f.sink = sink
}

// HandleWebSocket handles the agent WebSocket connection.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		f.log.Error("[page-feed] websocket accept failed", "err", err)
		return
	}

	f.mu.Lock()
	if f.conn != nil {
		f.conn.Close(websocket.StatusPolicyViolation, "replaced by new agent")
	}
	f.conn = conn
	f.mu.Unlock()
	f.page.setAgentConnected(true)
	f.log.Info("[page-feed] agent connected")

	defer func() {
		f.mu.Lock()
		if f.conn == conn {
			f.conn = nil
			f.page.setAgentConnected(false)
		}
		f.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		f.log.Info("[page-feed] agent disconnected")
	}()

	// r.Context() is cancelled when the handler returns, so reads use the
	// background context like the other socket handlers.
	for {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		if err := f.handleAgentMessage(data); err != nil {
			f.log.Warn("[page-feed] bad agent message", "err", err)
		}
	}
}

type agentEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (f *Feed) handleAgentMessage(data []byte) error {
	var env agentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	switch env.Event {
	case "snapshot":
		var snap Snapshot
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			return err
		}
		f.page.Apply(snap)
	case "pointer":
		var ev PointerEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return err
		}
		f.dispatch(ev)
	case "scroll":
		var ev ScrollEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return err
		}
		f.page.SetScroll(ev.ScrollX, ev.ScrollY)
		f.dispatch(ev)
	case "visibility":
		var ev VisibilityEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return err
		}
		f.page.SetHidden(ev.Hidden)
		f.dispatch(ev)
	default:
		return fmt.Errorf("unknown agent event %q", env.Event)
	}
	return nil
}

func (f *Feed) dispatch(ev any) {
	if f.sink != nil {
		f.sink.Dispatch(ev)
	}
}

// Connected reports whether an agent connection is currently tracked.
func (f *Feed) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn != nil
}

// ScriptHandler serves the agent script for injection into the host page.
func (f *Feed) ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte(AgentScript))
	})
}

// send marshals a mutation command and writes it to the agent. Commands
// against an absent agent are dropped with a debug log.
func (f *Feed) send(cmd map[string]any) {
	f.mu.Lock()
	conn := f.conn
	f.mu.Unlock()

	if conn == nil {
		f.log.Debug("[page-feed] dropping command, no agent", "cmd", cmd["cmd"])
		return
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		f.log.Error("[page-feed] failed to marshal command", "err", err)
		return
	}

	f.writeMu.Lock()
	err = conn.Write(context.Background(), websocket.MessageText, data)
	f.writeMu.Unlock()
	if err != nil {
		f.log.Debug("[page-feed] failed to send command", "err", err)
	}
}

// InsertOverlay implements Mutator.
func (f *Feed) InsertOverlay(n OverlayNode) {
	f.send(map[string]any{"cmd": "insertOverlay", "id": n.ID, "rect": n.Rect, "hidden": n.Hidden})
}

// InsertTooltip implements Mutator.
func (f *Feed) InsertTooltip(n TooltipNode) {
	f.send(map[string]any{
		"cmd": "insertTooltip", "id": n.ID, "origin": n.Origin,
		"counts": n.Counts, "unlocatable": n.Unlocatable, "position": n.Position,
	})
}

// Reposition implements Mutator.
func (f *Feed) Reposition(id string, pos Position) {
	f.send(map[string]any{"cmd": "reposition", "id": id, "position": pos})
}

// Remove implements Mutator.
func (f *Feed) Remove(id string) {
	f.send(map[string]any{"cmd": "remove", "id": id})
}

// ScrollIntoView implements Mutator.
func (f *Feed) ScrollIntoView(frameID string) {
	f.send(map[string]any{"cmd": "scrollIntoView", "frameId": frameID})
}

// SetHighlighting implements Mutator.
func (f *Feed) SetHighlighting(on bool) {
	f.send(map[string]any{"cmd": "setHighlighting", "on": on})
}
