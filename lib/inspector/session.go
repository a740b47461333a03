package inspector

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const postTimeout = 5 * time.Second

// Session is the single tracked panel connection. Post failures are fatal to
// the current inspection; the controller aborts to Idle rather than retrying.
type Session struct {
	ID   string
	Name string

	log     *slog.Logger
	conn    *websocket.Conn
	writeMu sync.Mutex

	// post overrides the conn write when set; used by in-package tests.
	post func(OutboundMessage) error
}

func newSession(name string, conn *websocket.Conn, log *slog.Logger) *Session {
	return &Session{
		ID:   uuid.New().String(),
		Name: name,
		log:  log,
		conn: conn,
	}
}

// Post sends a hover report to the panel. An error means the channel is torn
// down; the caller must abort the current inspection.
func (s *Session) Post(msg OutboundMessage) error {
	if s.post != nil {
		return s.post(msg)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.Write(ctx, websocket.MessageText, data)
}

func (s *Session) close(status websocket.StatusCode, reason string) {
	if err := s.conn.Close(status, reason); err != nil {
		s.log.Debug("[inspector] panel close", "session_id", s.ID, "err", err)
	}
}
