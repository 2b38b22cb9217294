// Package server exposes matches over HTTP and streams their events over
// websockets. Each match pits one remote human against the computer.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/pefman/naval-duel/internal/engine"
	"github.com/pefman/naval-duel/internal/game"
	"github.com/pefman/naval-duel/internal/models"
)

var errUnknownMatch = errors.New("unknown match")

type Config struct {
	Catalog           models.Catalog
	PlacementAttempts int
	BuildVersion      string
	BuildTime         string
}

type Server struct {
	cfg      Config
	router   *mux.Router
	upgrader websocket.Upgrader

	roomsMu sync.RWMutex
	rooms   map[string]*Room
	seq     uint64
}

func New(cfg Config) *Server {
	if len(cfg.Catalog.Ships) == 0 {
		cfg.Catalog = models.DefaultCatalog()
	}
	if cfg.PlacementAttempts <= 0 {
		cfg.PlacementAttempts = engine.DefaultPlacementAttempts
	}
	if cfg.BuildVersion == "" {
		cfg.BuildVersion = "dev"
	}
	s := &Server{
		cfg:      cfg,
		rooms:    make(map[string]*Room),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	api.HandleFunc("/rules", s.handleRules).Methods(http.MethodGet)
	api.HandleFunc("/stats/today", handleFastestWinToday).Methods(http.MethodGet)
	api.HandleFunc("/stats/{player}", handlePlayerStats).Methods(http.MethodGet)
	api.HandleFunc("/debug/rooms", s.handleDebugRooms).Methods(http.MethodGet)

	api.HandleFunc("/matches", s.handleCreateMatch).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}", s.handleStatus).Methods(http.MethodGet)
	m := api.PathPrefix("/matches/{id}").Subrouter()
	m.HandleFunc("/ships", s.handlePlaceShip).Methods(http.MethodPost)
	m.HandleFunc("/ships/auto", s.handleAutoPlace).Methods(http.MethodPost)
	m.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	m.HandleFunc("/turns", s.handleTurn).Methods(http.MethodPost)
	m.HandleFunc("/boards/{side}", s.handleBoard).Methods(http.MethodGet)
	m.HandleFunc("/abilities", s.handleAbilities).Methods(http.MethodGet)
	m.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	m.HandleFunc("/ws", s.handleStream).Methods(http.MethodGet)
	s.router = r
}

// Handler returns the router wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler { return withCORS(s.router) }

func (s *Server) newMatch(seed *int64) *game.Match {
	var rng engine.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(*seed))
	}
	opts := []game.Option{
		game.WithID(fmt.Sprintf("match_%d_%d", time.Now().Unix(), atomic.AddUint64(&s.seq, 1))),
		game.WithCatalog(s.cfg.Catalog),
		game.WithPlacementAttempts(s.cfg.PlacementAttempts),
	}
	if rng != nil {
		opts = append(opts, game.WithRand(rng))
	}
	return game.NewMatch(opts...)
}

func (s *Server) room(r *http.Request) (*Room, error) {
	id := mux.Vars(r)["id"]
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, errUnknownMatch
	}
	return room, nil
}

// Janitor drops rooms idle for longer than ttl until stop is closed.
func (s *Server) Janitor(stop <-chan struct{}, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := s.sweep(time.Now().Add(-ttl)); n > 0 {
				log.Printf("janitor: dropped %d idle rooms", n)
			}
		}
	}
}

func (s *Server) sweep(cutoff time.Time) int {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	n := 0
	for id, room := range s.rooms {
		if room.idleSince(cutoff) {
			room.close()
			delete(s.rooms, id)
			n++
		}
	}
	return n
}

// ========================= Helpers =========================

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

// writeError maps engine and match errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, errUnknownMatch):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNotInSetup),
		errors.Is(err, game.ErrNotInProgress),
		errors.Is(err, game.ErrFinished),
		errors.Is(err, game.ErrNotReady),
		errors.Is(err, game.ErrNoTargets):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrPlacementExhausted):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request")
	}
	return nil
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.cfg.BuildVersion, "built": s.cfg.BuildTime})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Catalog)
}

func (s *Server) handleDebugRooms(w http.ResponseWriter, r *http.Request) {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	list := make([]map[string]interface{}, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, room.summary())
	}
	writeJSON(w, http.StatusOK, list)
}
