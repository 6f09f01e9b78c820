package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"eduvid/internal/logging"
	"eduvid/internal/session"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsBatch      = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API binds to loopback by default and serves a local UI.
	CheckOrigin: func(*http.Request) bool { return true },
}

// eventMessage is one websocket frame. The first frame on a connection is a
// snapshot; every later frame carries one session event.
type eventMessage struct {
	Type     string            `json:"type"`
	Seq      uint64            `json:"seq,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Event    *session.Event    `json:"event,omitempty"`
}

// handleEvents streams session events over a websocket until the session ends
// or the client goes away. ?since=N resumes after a known sequence number.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w)
	if !ok {
		return
	}
	since, _ := strconv.ParseUint(r.URL.Query().Get("since"), 10, 64)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go readPump(conn, cancel)

	log := s.logger.With(logging.String(logging.FieldSessionID, sess.ID()))
	log.Debug("event stream opened", logging.String("remote", r.RemoteAddr))

	messages := make(chan eventMessage, wsBatch)
	go func() {
		defer close(messages)
		snap := sess.Snapshot()
		select {
		case messages <- eventMessage{Type: "snapshot", Snapshot: &snap}:
		case <-ctx.Done():
			return
		}
		events := sess.Events()
		for {
			entries, next, err := events.Fetch(ctx, since, wsBatch, true)
			for _, entry := range entries {
				ev := entry.Value
				select {
				case messages <- eventMessage{Type: "event", Seq: entry.Sequence, Event: &ev}:
				case <-ctx.Done():
					return
				}
			}
			since = next
			if err != nil {
				return
			}
			if len(entries) == 0 {
				// hub closed: the session has ended
				return
			}
		}
	}()

	writePump(conn, messages, cancel)
	log.Debug("event stream closed")
}

// readPump drains client frames so pongs and close frames are processed.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, messages <-chan eventMessage, cancel context.CancelFunc) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
	}()
	for {
		select {
		case msg, ok := <-messages:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
