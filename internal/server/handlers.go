package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pefman/naval-duel/internal/game"
	"github.com/pefman/naval-duel/internal/models"
)

var errHiddenBoard = errors.New("computer board is hidden until the match is finished")

type createReq struct {
	Player string `json:"player"`
	Seed   *int64 `json:"seed,omitempty"`
}

type placeReq struct {
	Type int    `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Dir  string `json:"dir"`
}

type turnReq struct {
	Kind    game.ActionKind `json:"kind"`
	Ability int             `json:"ability"`
	Row     int             `json:"row"`
	Col     int             `json:"col"`
}

// POST /api/matches
func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	req.Player = strings.TrimSpace(req.Player)
	if req.Player == "" {
		req.Player = "Player"
	}

	m := s.newMatch(req.Seed)
	if err := m.AutoPlace(game.Computer); err != nil {
		log.Printf("room %s: computer placement failed: %v", m.ID, err)
		writeError(w, err)
		return
	}
	room := newRoom(req.Player, m)
	s.roomsMu.Lock()
	s.rooms[room.ID] = room
	s.roomsMu.Unlock()
	log.Printf("room %s: created for %s", room.ID, room.Player)

	var snap game.Snapshot
	room.do(func(m *game.Match) error {
		snap = m.Snapshot()
		return nil
	})
	writeJSON(w, http.StatusCreated, snap)
}

// GET /api/matches/{id}
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, func(m *game.Match) (interface{}, error) { return m.Snapshot(), nil })
}

// POST /api/matches/{id}/ships
func (s *Server) handlePlaceShip(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dir, err := models.ParseDirection(req.Dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(room *Room, m *game.Match) (interface{}, error) {
		if err := m.PlaceShip(game.Human, req.Type, models.Coord{Row: req.Row, Col: req.Col}, dir); err != nil {
			return nil, err
		}
		room.broadcast(models.WsMsg{Type: "status", Data: m.Status()})
		return m.Snapshot(), nil
	})
}

// POST /api/matches/{id}/ships/auto
func (s *Server) handleAutoPlace(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(room *Room, m *game.Match) (interface{}, error) {
		if err := m.AutoPlace(game.Human); err != nil {
			return nil, err
		}
		room.broadcast(models.WsMsg{Type: "status", Data: m.Status()})
		return m.Snapshot(), nil
	})
}

// POST /api/matches/{id}/start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(room *Room, m *game.Match) (interface{}, error) {
		if err := m.Start(); err != nil {
			return nil, err
		}
		log.Printf("room %s: battle started", room.ID)
		st := m.Status()
		room.broadcast(models.WsMsg{Type: "status", Data: st})
		return st, nil
	})
}

// POST /api/matches/{id}/turns
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnReq
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	action := game.Action{Kind: req.Kind, Ability: req.Ability, Target: models.Coord{Row: req.Row, Col: req.Col}}
	s.mutate(w, r, func(room *Room, m *game.Match) (interface{}, error) {
		round, err := m.Play(action)
		if err != nil {
			return nil, err
		}
		room.broadcast(models.WsMsg{Type: "round", Data: round})
		room.finish()
		return round, nil
	})
}

// GET /api/matches/{id}/boards/{side}?reveal=1
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	side, err := game.ParseSide(mux.Vars(r)["side"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reveal, _ := strconv.ParseBool(r.URL.Query().Get("reveal"))
	s.view(w, r, func(m *game.Match) (interface{}, error) {
		if reveal && side == game.Computer && m.Stage() != game.StageFinished {
			return nil, errHiddenBoard
		}
		rows, err := m.Board(side, reveal)
		if err != nil {
			return nil, err
		}
		return game.BoardView{Side: side, Reveal: reveal, Rows: rows}, nil
	})
}

// GET /api/matches/{id}/abilities
func (s *Server) handleAbilities(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, func(m *game.Match) (interface{}, error) { return m.Abilities(game.Human), nil })
}

// GET /api/matches/{id}/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, func(m *game.Match) (interface{}, error) {
		h := m.History()
		if h == nil {
			h = []game.TurnResult{}
		}
		return h, nil
	})
}

// view answers a read-only request against the match named in the path.
func (s *Server) view(w http.ResponseWriter, r *http.Request, fn func(m *game.Match) (interface{}, error)) {
	s.mutate(w, r, func(_ *Room, m *game.Match) (interface{}, error) { return fn(m) })
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(room *Room, m *game.Match) (interface{}, error)) {
	room, err := s.room(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var out interface{}
	err = room.do(func(m *game.Match) error {
		var err error
		out, err = fn(room, m)
		return err
	})
	if errors.Is(err, errHiddenBoard) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
