package main

import (
	"context"
	"log"
	"time"

	"github.com/pefman/naval-duel/internal/api"
	"github.com/pefman/naval-duel/internal/engine"
	"github.com/pefman/naval-duel/internal/game"
	"github.com/pefman/naval-duel/internal/models"
)

// session is one match seen from the human seat, either in process or
// through the match service.
type session interface {
	Rules() models.Catalog
	Snapshot() (game.Snapshot, error)
	PlaceShip(typeID int, origin models.Coord, dir models.Direction) error
	AutoPlace() error
	Start() error
	Play(a game.Action) (game.Round, error)
}

type localSession struct {
	m *game.Match
}

func newLocalSession(cat models.Catalog, rng engine.Rand) (*localSession, error) {
	opts := []game.Option{game.WithCatalog(cat)}
	if rng != nil {
		opts = append(opts, game.WithRand(rng))
	}
	m := game.NewMatch(opts...)
	if err := m.AutoPlace(game.Computer); err != nil {
		return nil, err
	}
	return &localSession{m: m}, nil
}

func (s *localSession) Rules() models.Catalog            { return s.m.Catalog() }
func (s *localSession) Snapshot() (game.Snapshot, error) { return s.m.Snapshot(), nil }
func (s *localSession) AutoPlace() error                 { return s.m.AutoPlace(game.Human) }
func (s *localSession) Start() error                     { return s.m.Start() }
func (s *localSession) Play(a game.Action) (game.Round, error) {
	return s.m.Play(a)
}
func (s *localSession) PlaceShip(typeID int, origin models.Coord, dir models.Direction) error {
	return s.m.PlaceShip(game.Human, typeID, origin, dir)
}

type remoteSession struct {
	c     *api.Client
	id    string
	rules models.Catalog
}

const remoteTimeout = 10 * time.Second

func newRemoteSession(c *api.Client, player string, seed *int64) (*remoteSession, error) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	cat, err := c.FetchRules(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := c.CreateMatch(ctx, player, seed)
	if err != nil {
		return nil, err
	}
	return &remoteSession{c: c, id: snap.Status.ID, rules: cat}, nil
}

// serverRules reads the match service rules for the instructions screen. It
// falls back to local when the service cannot be reached.
func serverRules(c *api.Client, local models.Catalog) func() models.Catalog {
	return func() models.Catalog {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		cat, err := c.FetchRules(ctx)
		if err != nil {
			log.Printf("[NAVAL] server rules unavailable, showing local rules: %v", err)
			return local
		}
		return cat
	}
}

func (s *remoteSession) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), remoteTimeout)
}

func (s *remoteSession) Rules() models.Catalog { return s.rules }

func (s *remoteSession) Snapshot() (game.Snapshot, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.c.Snapshot(ctx, s.id)
}

func (s *remoteSession) PlaceShip(typeID int, origin models.Coord, dir models.Direction) error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.c.PlaceShip(ctx, s.id, typeID, origin, dir)
	return err
}

func (s *remoteSession) AutoPlace() error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.c.AutoPlace(ctx, s.id)
	return err
}

func (s *remoteSession) Start() error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.c.Start(ctx, s.id)
	return err
}

func (s *remoteSession) Play(a game.Action) (game.Round, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.c.Play(ctx, s.id, a)
}
