package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// The API binds to localhost; the feed carries no data, only
// invalidation pings, so origin checking buys nothing here.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type changeMessage struct {
	Type string `json:"type"`
}

// handleChanges streams a payload-free invalidation message for every
// mutation. Clients re-read whatever they need on receipt; the feed
// never says what changed.
func (h *handler) handleChanges(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("changes: upgrade: %v", err)
		return
	}
	defer conn.Close()

	signals, cancel := h.svc.Subscribe()
	defer cancel()

	// Drain client frames so close is detected; the feed is one-way.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// All writes happen on this loop, so no write serialization is
	// needed despite gorilla forbidding concurrent writers.
	for {
		select {
		case <-signals:
			if err := conn.WriteJSON(changeMessage{Type: "invalidate"}); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
