// Package api is the HTTP and websocket client of the match service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pefman/naval-duel/internal/game"
	"github.com/pefman/naval-duel/internal/models"
	"github.com/pefman/naval-duel/internal/stats"
	"github.com/pefman/naval-duel/internal/wire"
)

var httpClient = &http.Client{Timeout: 8 * time.Second}

// Rules rarely change while a server runs.
var (
	rulesCache      = map[string]models.Catalog{}
	rulesCacheTime  = map[string]time.Time{}
	rulesCacheTTL   = 5 * time.Minute
	rulesCacheMutex sync.RWMutex
)

// Config holds API configuration
type Config struct {
	BaseURL string
}

type Client struct {
	config Config
}

func NewClient(baseURL string) *Client {
	return &Client{
		config: Config{BaseURL: strings.TrimRight(baseURL, "/")},
	}
}

// StatusError is a non-2xx answer of the service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Code)
	}
	return fmt.Sprintf("api status %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func matchPath(id string, parts ...string) string {
	return "/api/matches/" + url.PathEscape(id) + strings.Join(parts, "")
}

// FetchRules returns the catalog the server plays with.
func (c *Client) FetchRules(ctx context.Context) (models.Catalog, error) {
	rulesCacheMutex.RLock()
	cat, ok := rulesCache[c.config.BaseURL]
	fresh := time.Since(rulesCacheTime[c.config.BaseURL]) < rulesCacheTTL
	rulesCacheMutex.RUnlock()
	if ok && fresh {
		return cat, nil
	}
	if err := c.call(ctx, http.MethodGet, "/api/rules", nil, &cat); err != nil {
		return models.Catalog{}, err
	}
	rulesCacheMutex.Lock()
	rulesCache[c.config.BaseURL] = cat
	rulesCacheTime[c.config.BaseURL] = time.Now()
	rulesCacheMutex.Unlock()
	return cat, nil
}

// CreateMatch opens a match against the computer. A nil seed lets the server
// pick one.
func (c *Client) CreateMatch(ctx context.Context, player string, seed *int64) (game.Snapshot, error) {
	var snap game.Snapshot
	body := map[string]interface{}{"player": player}
	if seed != nil {
		body["seed"] = *seed
	}
	err := c.call(ctx, http.MethodPost, "/api/matches", body, &snap)
	return snap, err
}

func (c *Client) Snapshot(ctx context.Context, id string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := c.call(ctx, http.MethodGet, matchPath(id), nil, &snap)
	return snap, err
}

func (c *Client) PlaceShip(ctx context.Context, id string, typeID int, origin models.Coord, dir models.Direction) (game.Snapshot, error) {
	var snap game.Snapshot
	body := map[string]interface{}{"type": typeID, "row": origin.Row, "col": origin.Col, "dir": dir}
	err := c.call(ctx, http.MethodPost, matchPath(id, "/ships"), body, &snap)
	return snap, err
}

func (c *Client) AutoPlace(ctx context.Context, id string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := c.call(ctx, http.MethodPost, matchPath(id, "/ships/auto"), nil, &snap)
	return snap, err
}

func (c *Client) Start(ctx context.Context, id string) (game.Status, error) {
	var st game.Status
	err := c.call(ctx, http.MethodPost, matchPath(id, "/start"), nil, &st)
	return st, err
}

// Play submits one human action and returns the round it produced.
func (c *Client) Play(ctx context.Context, id string, a game.Action) (game.Round, error) {
	var round game.Round
	body := map[string]interface{}{"kind": a.Kind, "ability": a.Ability, "row": a.Target.Row, "col": a.Target.Col}
	err := c.call(ctx, http.MethodPost, matchPath(id, "/turns"), body, &round)
	return round, err
}

func (c *Client) Board(ctx context.Context, id string, side game.Side, reveal bool) (game.BoardView, error) {
	var view game.BoardView
	path := matchPath(id, "/boards/", string(side))
	if reveal {
		path += "?reveal=1"
	}
	err := c.call(ctx, http.MethodGet, path, nil, &view)
	return view, err
}

func (c *Client) Abilities(ctx context.Context, id string) ([]game.AbilityStatus, error) {
	var out []game.AbilityStatus
	err := c.call(ctx, http.MethodGet, matchPath(id, "/abilities"), nil, &out)
	return out, err
}

func (c *Client) History(ctx context.Context, id string) ([]game.TurnResult, error) {
	var out []game.TurnResult
	err := c.call(ctx, http.MethodGet, matchPath(id, "/history"), nil, &out)
	return out, err
}

func (c *Client) PlayerStats(ctx context.Context, player string) (stats.Record, error) {
	var rec stats.Record
	err := c.call(ctx, http.MethodGet, "/api/stats/"+url.PathEscape(player), nil, &rec)
	return rec, err
}

// ========================= Stream =========================

// Stream is a subscription to the events of one match.
type Stream struct {
	conn *websocket.Conn
}

// Subscribe opens the event stream of match id.
func (c *Client) Subscribe(ctx context.Context, id string, enc wire.Encoding) (*Stream, error) {
	u := c.config.BaseURL + matchPath(id, "/ws") + "?enc=" + url.QueryEscape(string(enc))
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, &StatusError{Code: resp.StatusCode, Message: err.Error()}
		}
		return nil, err
	}
	return &Stream{conn: conn}, nil
}

// Next blocks for the next frame.
func (s *Stream) Next() (wire.Frame, error) {
	msgType, payload, err := s.conn.ReadMessage()
	if err != nil {
		return wire.Frame{}, err
	}
	return wire.Decode(msgType, payload)
}

func (s *Stream) Close() error { return s.conn.Close() }
