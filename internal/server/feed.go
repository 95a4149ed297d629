package server

import (
	"net/http"
	"reflect"
	"time"

	"github.com/gorilla/websocket"

	log "log/slog"

	"huntboard/internal/combat"
)

var upgrader = websocket.Upgrader{
	// The board UI is served from another origin during development.
	CheckOrigin: func(*http.Request) bool { return true },
}

// FeedMessage is one frame on the assistant state feed.
type FeedMessage struct {
	Kind   string        `json:"kind"`
	Status combat.Status `json:"status"`
}

// combatFeed streams assistant state to the web UI: a frame on connect, then
// one whenever the snapshot changes, with a keepalive cadence in between.
func (s *Server) combatFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("feed upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	var last combat.Status

	send := func(st combat.Status) bool {
		if err := conn.WriteJSON(FeedMessage{Kind: "status", Status: st}); err != nil {
			return false
		}
		last = st
		return true
	}

	if !send(s.assistant.Status(false)) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			st := s.assistant.Status(false)
			if reflect.DeepEqual(st, last) {
				continue
			}
			if !send(st) {
				return
			}
		}
	}
}
