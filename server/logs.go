package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/streamio/streamio/log"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

// LogMessage is one frame of the /api/logs feed.
type LogMessage struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// handleLogs streams log lines to a websocket client until it disconnects or the server shuts down.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	lines, cancel := log.Subscribe()
	defer cancel()

	// Inbound frames are discarded; reading surfaces the client's close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(LogMessage{Type: "log_entry", Payload: line}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			return
		case <-s.closing:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}
