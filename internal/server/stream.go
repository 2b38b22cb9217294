package server

import (
	"log"
	"net/http"

	"github.com/pefman/naval-duel/internal/wire"
)

// GET /api/matches/{id}/ws?enc=json|msgpack
//
// Sends a snapshot on connect and then every round, status and finished
// event of the match. Incoming messages are ignored.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	room, err := s.room(r)
	if err != nil {
		writeError(w, err)
		return
	}
	enc, err := wire.ParseEncoding(r.URL.Query().Get("enc"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	sub := room.subscribe(conn, enc)
	go sub.writeLoop(room.ID)
	log.Printf("ws: subscriber joined room %s (%s)", room.ID, enc)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	room.unsubscribe(sub)
	log.Printf("ws: subscriber left room %s", room.ID)
}
