package server

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pefman/naval-duel/internal/engine"
	"github.com/pefman/naval-duel/internal/game"
	"github.com/pefman/naval-duel/internal/models"
	"github.com/pefman/naval-duel/internal/stats"
	"github.com/pefman/naval-duel/internal/wire"
)

// Room serializes access to one match and fans its events out to the
// websocket subscribers watching it.
type Room struct {
	ID     string
	Player string

	mu       sync.Mutex
	match    *game.Match
	subs     map[*subscriber]struct{}
	recorded bool
	updated  time.Time
}

type subscriber struct {
	conn *websocket.Conn
	enc  wire.Encoding
	send chan models.WsMsg
}

func newRoom(player string, m *game.Match) *Room {
	return &Room{
		ID:      m.ID,
		Player:  player,
		match:   m,
		subs:    make(map[*subscriber]struct{}),
		updated: time.Now(),
	}
}

// do runs fn with exclusive access to the match.
func (r *Room) do(fn func(m *game.Match) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = time.Now()
	return fn(r.match)
}

// broadcast queues msg for every subscriber. Callers hold r.mu so events
// keep match order. A subscriber that cannot keep up is dropped.
func (r *Room) broadcast(msg models.WsMsg) {
	for sub := range r.subs {
		select {
		case sub.send <- msg:
		default:
			log.Printf("room %s: subscriber too slow, dropping", r.ID)
			r.drop(sub)
		}
	}
}

// finish records the result once the match is over. Callers hold r.mu.
func (r *Room) finish() {
	st := r.match.Status()
	if !st.Finished || r.recorded {
		return
	}
	r.recorded = true
	res := stats.Result{
		Player:  r.Player,
		MatchID: r.ID,
		Won:     st.Winner == game.Human,
		Turns:   st.Turn,
	}
	for _, t := range r.match.History() {
		if t.Actor != game.Human {
			continue
		}
		switch t.Kind {
		case game.ActionShot:
			res.Shots++
			if t.Outcome == engine.Hit || t.Outcome == engine.Sunk {
				res.Hits++
			}
		case game.ActionAbility:
			res.Abilities++
		}
	}
	stats.SaveResult(res)
	log.Printf("room %s: finished, winner %s after %d turns", r.ID, st.Winner, st.Turn)
	r.broadcast(models.WsMsg{Type: "finished", Data: r.match.Snapshot()})
}

func (r *Room) subscribe(conn *websocket.Conn, enc wire.Encoding) *subscriber {
	sub := &subscriber{conn: conn, enc: enc, send: make(chan models.WsMsg, 16)}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub] = struct{}{}
	sub.send <- models.WsMsg{Type: "snapshot", Data: r.match.Snapshot()}
	return sub
}

func (r *Room) unsubscribe(sub *subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drop(sub)
}

// drop closes the subscriber's queue; its writer then closes the socket.
// Callers hold r.mu.
func (r *Room) drop(sub *subscriber) {
	if _, ok := r.subs[sub]; !ok {
		return
	}
	delete(r.subs, sub)
	close(sub.send)
}

func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sub := range r.subs {
		r.drop(sub)
	}
}

func (r *Room) idleSince(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updated.Before(cutoff)
}

func (r *Room) summary() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.match.Status()
	return map[string]interface{}{
		"id":          r.ID,
		"player":      r.Player,
		"stage":       st.Stage,
		"turn":        st.Turn,
		"winner":      st.Winner,
		"subscribers": len(r.subs),
		"updated":     r.updated.Unix(),
	}
}

// writeLoop drains the subscriber queue onto the socket.
func (sub *subscriber) writeLoop(roomID string) {
	defer sub.conn.Close()
	for msg := range sub.send {
		msgType, payload, err := wire.Encode(sub.enc, msg)
		if err != nil {
			log.Printf("ws: encode %s for room %s: %v", msg.Type, roomID, err)
			continue
		}
		sub.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := sub.conn.WriteMessage(msgType, payload); err != nil {
			log.Printf("ws: write error to room %s: %v", roomID, err)
			return
		}
	}
	sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
