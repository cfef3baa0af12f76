package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"socialfeed/monitoring"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleEvents streams engine events (posts, comments, toggles) to the client
// until either side closes the connection.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	connection, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Error upgrading event stream connection: %v", err)
		return
	}
	defer connection.Close()

	eventCh, cancel := s.broadcaster.Subscribe()
	defer cancel()

	monitoring.WebsocketClients.Inc()
	defer monitoring.WebsocketClients.Dec()

	// Drain client frames so close frames are processed; unsubscribe when the
	// client goes away.
	go func() {
		defer cancel()
		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for event := range eventCh {
		if err := connection.WriteJSON(event); err != nil {
			return
		}
	}
}
