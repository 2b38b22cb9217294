package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/pefman/naval-duel/internal/engine"
	"github.com/pefman/naval-duel/internal/models"
)

var (
	ErrNotReady      = errors.New("both fleets must be fully placed")
	ErrNotInSetup    = errors.New("match already started")
	ErrNotInProgress = errors.New("match not in progress")
	ErrFinished      = errors.New("match finished")
	ErrUnknownSide   = errors.New("unknown side")
	ErrUnknownAction = errors.New("unknown action")
	ErrNoTargets     = errors.New("no untargeted cells left")
)

var sides = [...]Side{Human, Computer}

type Option func(*Match)

func WithID(id string) Option { return func(m *Match) { m.ID = id } }

func WithCatalog(cat models.Catalog) Option { return func(m *Match) { m.catalog = cat } }

// WithRand sets the source for auto placement and computer targeting.
func WithRand(r engine.Rand) Option { return func(m *Match) { m.rng = r } }

// WithPlacementAttempts caps the per-ship draws of AutoPlace.
func WithPlacementAttempts(n int) Option { return func(m *Match) { m.attempts = n } }

// Match owns both boards, both ability inventories and the turn log. It is
// not safe for concurrent use; every method validates before mutating.
type Match struct {
	ID string

	catalog  models.Catalog
	rng      engine.Rand
	attempts int

	stage   Stage
	turn    int
	winner  Side
	boards  map[Side]*engine.Board
	inv     map[Side]*engine.Inventory
	history []TurnResult
}

func NewMatch(opts ...Option) *Match {
	m := &Match{
		ID:       fmt.Sprintf("match_%d", time.Now().UnixNano()),
		catalog:  models.DefaultCatalog(),
		attempts: engine.DefaultPlacementAttempts,
		stage:    StageSetup,
	}
	for _, o := range opts {
		o(m)
	}
	if m.rng == nil {
		m.rng = engine.NewRNG()
	}
	m.boards = map[Side]*engine.Board{}
	m.inv = map[Side]*engine.Inventory{}
	for _, s := range sides {
		m.boards[s] = engine.NewBoard(m.catalog)
		m.inv[s] = engine.NewInventory(m.catalog.Abilities)
	}
	return m
}

func (m *Match) Catalog() models.Catalog { return m.catalog }

func (m *Match) Stage() Stage { return m.stage }

func (m *Match) board(side Side) (*engine.Board, error) {
	b, ok := m.boards[side]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	return b, nil
}

// ----------------- Setup -----------------

// PlaceShip places one ship of catalog type typeID on side's board.
func (m *Match) PlaceShip(side Side, typeID int, origin models.Coord, dir models.Direction) error {
	if m.stage != StageSetup {
		return ErrNotInSetup
	}
	b, err := m.board(side)
	if err != nil {
		return err
	}
	t, ok := m.catalog.Ship(typeID)
	if !ok {
		return fmt.Errorf("%w: %d", engine.ErrUnknownShipType, typeID)
	}
	_, err = b.PlaceShip(t, origin, dir)
	return err
}

// AutoPlace randomly places every ship side has not placed yet.
func (m *Match) AutoPlace(side Side) error {
	if m.stage != StageSetup {
		return ErrNotInSetup
	}
	b, err := m.board(side)
	if err != nil {
		return err
	}
	return engine.AutoPlace(b, m.rng, m.attempts)
}

// Ready reports whether side has placed its whole fleet.
func (m *Match) Ready(side Side) bool {
	b, err := m.board(side)
	return err == nil && b.Fleet().Complete(m.catalog)
}

// Start moves the match from setup to in progress.
func (m *Match) Start() error {
	if m.stage != StageSetup {
		return ErrNotInSetup
	}
	for _, s := range sides {
		if !m.Ready(s) {
			f := m.boards[s].Fleet()
			return fmt.Errorf("%w: %s fleet has %d of %d ships", ErrNotReady, s, f.Len(), m.catalog.TotalShips())
		}
	}
	m.stage = StageInProgress
	return nil
}

// ----------------- Actions -----------------

func (m *Match) checkPlaying(side Side) error {
	switch m.stage {
	case StageFinished:
		return ErrFinished
	case StageInProgress:
	default:
		return ErrNotInProgress
	}
	if !side.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	return nil
}

// count stamps a successful action with its turn. Human actions advance the
// counter; the computer reply shares the turn it answers.
func (m *Match) count(res *TurnResult) {
	if res.Actor == Human {
		m.turn++
	}
	res.Turn = m.turn
	res.Counted = true
}

// Shoot fires side's shot at the opposing board. Out of bounds and repeated
// targets come back as outcomes, are not logged and do not consume a turn.
func (m *Match) Shoot(side Side, target models.Coord) (TurnResult, error) {
	if err := m.checkPlaying(side); err != nil {
		return TurnResult{}, err
	}
	defender := m.boards[side.Opponent()]
	shot := defender.ResolveShot(target)
	res := TurnResult{Actor: side, Kind: ActionShot, Target: target, Outcome: shot.Outcome}
	if shot.Ship != nil {
		res.Ship = shot.Ship.Type.Name
	}
	if !shot.Outcome.Resolved() {
		res.Logs = append(res.Logs, fmt.Sprintf("%s fires at %s -> %s, turn not counted", side, target, describe(shot.Outcome)))
		return res, nil
	}

	m.count(&res)
	line := fmt.Sprintf("Turn %d: %s fires at %s -> %s", res.Turn, side, target, describe(shot.Outcome))
	if res.Ship != "" {
		line += " " + res.Ship
	}
	res.Logs = append(res.Logs, line)
	if shot.Outcome == engine.Sunk {
		res.Logs = append(res.Logs, fmt.Sprintf("%s ships remaining: %d", side.Opponent(), defender.Fleet().Remaining()))
	}
	if defender.Fleet().Remaining() == 0 {
		m.stage = StageFinished
		m.winner = side
		res.Logs = append(res.Logs, fmt.Sprintf("All %s ships sunk. %s wins after %d turns", side.Opponent(), side, m.turn))
	}
	m.history = append(m.history, res)
	return res, nil
}

// UseAbility spends one use of an ability of side against the opposing
// board. Abilities only mark cells; they never hit or sink.
func (m *Match) UseAbility(side Side, abilityID int, center models.Coord) (TurnResult, error) {
	if err := m.checkPlaying(side); err != nil {
		return TurnResult{}, err
	}
	res := TurnResult{Actor: side, Kind: ActionAbility, Target: center}
	if a, ok := m.catalog.Ability(abilityID); ok {
		res.Ability = a.Name
	}
	inv := m.inv[side]
	marked, err := inv.Apply(abilityID, center, m.boards[side.Opponent()])
	if err != nil {
		res.Logs = append(res.Logs, fmt.Sprintf("%s ability %d at %s rejected: %v", side, abilityID, center, err))
		return res, err
	}
	res.Marked = marked
	m.count(&res)
	res.Logs = append(res.Logs, fmt.Sprintf("Turn %d: %s uses %s at %s, %d cells marked (%d uses left)",
		res.Turn, side, res.Ability, center, len(marked), inv.Remaining(abilityID)))
	m.history = append(m.history, res)
	return res, nil
}

// Play runs one loop iteration: the human action, then, unless the action
// was rejected or won the match, exactly one computer shot.
func (m *Match) Play(a Action) (Round, error) {
	var (
		res TurnResult
		err error
	)
	switch a.Kind {
	case ActionShot:
		res, err = m.Shoot(Human, a.Target)
	case ActionAbility:
		res, err = m.UseAbility(Human, a.Ability, a.Target)
	default:
		return Round{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	round := Round{Human: res}
	if err != nil || !res.Counted || m.stage == StageFinished {
		round.Status = m.Status()
		return round, err
	}
	reply, err := m.ComputerTurn()
	if err != nil {
		round.Status = m.Status()
		return round, err
	}
	round.Computer = &reply
	round.Status = m.Status()
	return round, nil
}

// ----------------- Views -----------------

func (m *Match) Status() Status {
	st := Status{
		ID:        m.ID,
		Turn:      m.turn,
		Stage:     m.stage,
		Remaining: map[Side]int{},
		Finished:  m.stage == StageFinished,
		Winner:    m.winner,
	}
	for _, s := range sides {
		st.Remaining[s] = m.boards[s].Fleet().Remaining()
	}
	return st
}

// Board renders side's grid. reveal shows ship positions; otherwise only
// hits, misses and ability markers are visible.
func (m *Match) Board(side Side, reveal bool) ([]string, error) {
	b, err := m.board(side)
	if err != nil {
		return nil, err
	}
	return b.Rows(reveal), nil
}

func (m *Match) Abilities(side Side) []AbilityStatus {
	inv, ok := m.inv[side]
	if !ok {
		return nil
	}
	out := make([]AbilityStatus, 0, len(inv.Defs()))
	for _, a := range inv.Defs() {
		out = append(out, AbilityStatus{Ability: a, Remaining: inv.Remaining(a.ID)})
	}
	return out
}

func (m *Match) Fleet(side Side) []ShipStatus {
	b, ok := m.boards[side]
	if !ok {
		return nil
	}
	var out []ShipStatus
	for _, s := range b.Fleet().Ships() {
		out = append(out, ShipStatus{
			ID: s.ID, Name: s.Type.Name, Symbol: s.Type.Symbol,
			Size: s.Type.Size, Hits: s.Hits(), Afloat: s.Afloat(),
		})
	}
	return out
}

func (m *Match) Snapshot() Snapshot {
	reveal := m.stage == StageFinished
	return Snapshot{
		Status:    m.Status(),
		Own:       BoardView{Side: Human, Reveal: true, Rows: m.boards[Human].Rows(true)},
		Enemy:     BoardView{Side: Computer, Reveal: reveal, Rows: m.boards[Computer].Rows(reveal)},
		Abilities: m.Abilities(Human),
		Fleet:     m.Fleet(Human),
	}
}

// History returns the successful actions in order.
func (m *Match) History() []TurnResult {
	return append([]TurnResult(nil), m.history...)
}

func describe(o engine.Outcome) string {
	switch o {
	case engine.OutOfBounds:
		return "out of bounds"
	case engine.AlreadyTargeted:
		return "already targeted"
	case engine.Miss:
		return "water"
	case engine.Hit:
		return "hit"
	case engine.Sunk:
		return "sunk"
	}
	return string(o)
}
