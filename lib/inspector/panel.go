package inspector

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
)

// Hub accepts panel WebSocket connections and feeds decoded commands to the
// controller. Connections are accepted only when their name query parameter
// starts with the configured prefix; at most one session is tracked, and a
// new connection replaces any stale one.
type Hub struct {
	log    *slog.Logger
	prefix string
	ctrl   *Controller

	mu      sync.Mutex
	session *Session
}

// NewHub creates a panel hub for the given channel-name prefix.
func NewHub(prefix string, ctrl *Controller, log *slog.Logger) *Hub {
	return &Hub{log: log, prefix: prefix, ctrl: ctrl}
}

// HandleWebSocket handles a panel connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if !strings.HasPrefix(name, h.prefix) {
		h.log.Warn("[inspector] rejecting panel with unrecognized channel name", "name", name)
		http.Error(w, "unrecognized channel name", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Error("[inspector] panel websocket accept failed", "err", err)
		return
	}

	s := newSession(name, conn, h.log)
	h.mu.Lock()
	if h.session != nil {
		h.session.close(websocket.StatusPolicyViolation, "replaced by new panel")
	}
	h.session = s
	h.mu.Unlock()
	h.ctrl.Dispatch(sessionConnected{s: s})

	defer func() {
		h.mu.Lock()
		if h.session == s {
			h.session = nil
		}
		h.mu.Unlock()
		s.close(websocket.StatusNormalClosure, "")
		h.ctrl.Dispatch(sessionClosed{s: s})
	}()

	for {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		var cmd InspectionCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.log.Warn("[inspector] bad panel command", "session_id", s.ID, "err", err)
			continue
		}
		h.ctrl.Dispatch(commandEvent{s: s, cmd: cmd})
	}
}
