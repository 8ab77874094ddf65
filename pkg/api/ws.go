package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same policy as the CORS headers: any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignalsWS streams every applied signal to a websocket client,
// starting with an "init" frame holding the current snapshot.
func (s *Server) HandleSignalsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, events := s.hub.Register()
	defer s.hub.Unregister(id)
	logger.Debugf("signal listener %d connected (%d active)", id, s.hub.Size())

	snapshot := s.store.State()
	if err := s.writeFrame(conn, StreamMessage{Type: "init", State: &snapshot}); err != nil {
		logger.Debugf("listener %d: writing init: %v", id, err)
		return
	}

	// Reads only serve to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			logger.Debugf("signal listener %d disconnected", id)
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.writeFrame(conn, StreamMessage{Type: "signal", Signal: &ev}); err != nil {
				logger.Debugf("listener %d: %v", id, err)
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
