package game_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pefman/naval-duel/internal/engine"
	"github.com/pefman/naval-duel/internal/game"
	"github.com/pefman/naval-duel/internal/models"
)

func submarineCatalog() models.Catalog {
	cat := models.DefaultCatalog()
	cat.Ships = []models.ShipType{{ID: 0, Name: "Submarine", Symbol: "S", Size: 2, Count: 1}}
	return cat
}

// newDuel starts a match where both sides have a single submarine at (0,0)
// horizontal.
func newDuel(t *testing.T, seed int64) *game.Match {
	t.Helper()
	m := game.NewMatch(game.WithCatalog(submarineCatalog()), game.WithRand(rand.New(rand.NewSource(seed))))
	for _, side := range []game.Side{game.Human, game.Computer} {
		if err := m.PlaceShip(side, 0, models.Coord{Row: 0, Col: 0}, models.Horizontal); err != nil {
			t.Fatalf("place %s: %v", side, err)
		}
	}
	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return m
}

func shot(row, col int) game.Action {
	return game.Action{Kind: game.ActionShot, Target: models.Coord{Row: row, Col: col}}
}

func TestNewMatch_Setup(t *testing.T) {
	m := game.NewMatch(game.WithID("m1"))
	st := m.Status()
	if want, have := game.StageSetup, st.Stage; want != have {
		t.Errorf("stage: want=%s, have=%s", want, have)
	}
	if want, have := "m1", st.ID; want != have {
		t.Errorf("id: want=%s, have=%s", want, have)
	}
	for _, side := range []game.Side{game.Human, game.Computer} {
		if want, have := 0, st.Remaining[side]; want != have {
			t.Errorf("%s remaining: want=%d, have=%d", side, want, have)
		}
		rows, err := m.Board(side, true)
		if err != nil {
			t.Fatalf("board %s: %v", side, err)
		}
		for _, row := range rows {
			if want, have := "~~~~~~~~~~", row; want != have {
				t.Errorf("%s row: want=%q, have=%q", side, want, have)
			}
		}
	}
	if _, err := m.Board(game.Side("spectator"), false); !errors.Is(err, game.ErrUnknownSide) {
		t.Errorf("unknown side: want=%v, have=%v", game.ErrUnknownSide, err)
	}
}

func TestStart_RequiresBothFleets(t *testing.T) {
	m := game.NewMatch(game.WithRand(rand.New(rand.NewSource(1))))
	if err := m.Start(); !errors.Is(err, game.ErrNotReady) {
		t.Errorf("empty fleets: want=%v, have=%v", game.ErrNotReady, err)
	}
	if err := m.AutoPlace(game.Human); err != nil {
		t.Fatalf("auto place human: %v", err)
	}
	if want, have := 5, m.Status().Remaining[game.Human]; want != have {
		t.Errorf("human remaining after placement: want=%d, have=%d", want, have)
	}
	if err := m.Start(); !errors.Is(err, game.ErrNotReady) {
		t.Errorf("computer fleet missing: want=%v, have=%v", game.ErrNotReady, err)
	}
	if _, err := m.Shoot(game.Human, models.Coord{Row: 1, Col: 1}); !errors.Is(err, game.ErrNotInProgress) {
		t.Errorf("shot during setup: want=%v, have=%v", game.ErrNotInProgress, err)
	}

	if err := m.AutoPlace(game.Computer); err != nil {
		t.Fatalf("auto place computer: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if want, have := game.StageInProgress, m.Stage(); want != have {
		t.Errorf("stage: want=%s, have=%s", want, have)
	}
	if err := m.Start(); !errors.Is(err, game.ErrNotInSetup) {
		t.Errorf("second start: want=%v, have=%v", game.ErrNotInSetup, err)
	}
	if err := m.PlaceShip(game.Human, 0, models.Coord{Row: 0, Col: 0}, models.Horizontal); !errors.Is(err, game.ErrNotInSetup) {
		t.Errorf("placement after start: want=%v, have=%v", game.ErrNotInSetup, err)
	}
	if err := m.AutoPlace(game.Human); !errors.Is(err, game.ErrNotInSetup) {
		t.Errorf("auto placement after start: want=%v, have=%v", game.ErrNotInSetup, err)
	}
}

func TestPlaceShip_Errors(t *testing.T) {
	m := game.NewMatch()
	tests := []struct {
		name   string
		side   game.Side
		typeID int
		origin models.Coord
		dir    models.Direction
		want   error
	}{
		{"unknown side", game.Side("nobody"), 0, models.Coord{}, models.Horizontal, game.ErrUnknownSide},
		{"unknown type", game.Human, 9, models.Coord{}, models.Horizontal, engine.ErrUnknownShipType},
		{"off the grid", game.Human, 0, models.Coord{Row: 0, Col: 6}, models.Horizontal, engine.ErrOutOfBounds},
		{"bad direction", game.Human, 0, models.Coord{}, models.Direction("X"), engine.ErrInvalidDirection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.PlaceShip(tt.side, tt.typeID, tt.origin, tt.dir); !errors.Is(err, tt.want) {
				t.Errorf("unexpected error: want=%v, have=%v", tt.want, err)
			}
		})
	}
	if err := m.PlaceShip(game.Human, 3, models.Coord{Row: 9, Col: 0}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.PlaceShip(game.Human, 0, models.Coord{Row: 9, Col: 1}, models.Vertical); !errors.Is(err, engine.ErrOutOfBounds) {
		t.Errorf("unexpected error: want=%v, have=%v", engine.ErrOutOfBounds, err)
	}
	if err := m.PlaceShip(game.Human, 0, models.Coord{Row: 9, Col: 1}, models.Horizontal); !errors.Is(err, engine.ErrOverlap) {
		t.Errorf("unexpected error: want=%v, have=%v", engine.ErrOverlap, err)
	}
}

func TestPlay_InvalidShotsAreFreeRetries(t *testing.T) {
	m := newDuel(t, 1)
	humanBefore, _ := m.Board(game.Human, true)

	for _, a := range []game.Action{shot(-1, 0), shot(10, 5)} {
		round, err := m.Play(a)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want, have := engine.OutOfBounds, round.Human.Outcome; want != have {
			t.Errorf("outcome: want=%s, have=%s", want, have)
		}
		if round.Human.Counted || round.Computer != nil {
			t.Errorf("rejected shot counted or answered: %+v", round)
		}
	}

	if _, err := m.Play(shot(9, 9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	round, err := m.Play(shot(9, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, have := engine.AlreadyTargeted, round.Human.Outcome; want != have {
		t.Errorf("repeat: want=%s, have=%s", want, have)
	}
	if round.Computer != nil {
		t.Error("computer answered a rejected shot")
	}
	if want, have := 1, round.Status.Turn; want != have {
		t.Errorf("turn: want=%d, have=%d", want, have)
	}
	if want, have := 2, len(m.History()); want != have {
		t.Errorf("history: want=%d, have=%d", want, have)
	}
	humanAfter, _ := m.Board(game.Human, true)
	diff := 0
	for i := range humanAfter {
		for j := 0; j < len(humanAfter[i]); j++ {
			if humanAfter[i][j] != humanBefore[i][j] {
				diff++
			}
		}
	}
	if want, have := 1, diff; want != have {
		t.Errorf("computer shots on human board: want=%d, have=%d", want, have)
	}
}

func TestPlay_HitThenSunkEndsMatchBeforeComputer(t *testing.T) {
	m := newDuel(t, 2)

	round, err := m.Play(shot(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, have := engine.Hit, round.Human.Outcome; want != have {
		t.Errorf("first shot: want=%s, have=%s", want, have)
	}
	if want, have := 1, round.Status.Remaining[game.Computer]; want != have {
		t.Errorf("computer remaining: want=%d, have=%d", want, have)
	}
	if round.Computer == nil || !round.Computer.Counted {
		t.Fatalf("computer did not reply: %+v", round.Computer)
	}
	if round.Status.Finished {
		t.Fatal("match finished after one round")
	}

	round, err = m.Play(shot(0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, have := engine.Sunk, round.Human.Outcome; want != have {
		t.Errorf("second shot: want=%s, have=%s", want, have)
	}
	if want, have := "Submarine", round.Human.Ship; want != have {
		t.Errorf("sunk ship: want=%s, have=%s", want, have)
	}
	if round.Computer != nil {
		t.Error("computer acted after losing its fleet")
	}
	st := round.Status
	if !st.Finished || st.Stage != game.StageFinished {
		t.Errorf("status not finished: %+v", st)
	}
	if want, have := game.Human, st.Winner; want != have {
		t.Errorf("winner: want=%s, have=%s", want, have)
	}
	if want, have := 0, st.Remaining[game.Computer]; want != have {
		t.Errorf("computer remaining: want=%d, have=%d", want, have)
	}

	if _, err := m.Play(shot(5, 5)); !errors.Is(err, game.ErrFinished) {
		t.Errorf("play after finish: want=%v, have=%v", game.ErrFinished, err)
	}
	if _, err := m.ComputerTurn(); !errors.Is(err, game.ErrFinished) {
		t.Errorf("computer after finish: want=%v, have=%v", game.ErrFinished, err)
	}
}

func TestComputerTurn_SinksHumanFleet(t *testing.T) {
	m := newDuel(t, 3)
	if _, err := m.Shoot(game.Computer, models.Coord{Row: 0, Col: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := m.Shoot(game.Computer, models.Coord{Row: 0, Col: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, have := engine.Sunk, res.Outcome; want != have {
		t.Errorf("outcome: want=%s, have=%s", want, have)
	}
	if want, have := game.Computer, m.Status().Winner; want != have {
		t.Errorf("winner: want=%s, have=%s", want, have)
	}
}

func TestComputerTurn_NeverRepeatsATarget(t *testing.T) {
	cat := submarineCatalog()
	m := game.NewMatch(game.WithCatalog(cat), game.WithRand(rand.New(rand.NewSource(4))))
	if err := m.PlaceShip(game.Human, 0, models.Coord{Row: 9, Col: 8}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AutoPlace(game.Computer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[models.Coord]bool{}
	for !m.Status().Finished {
		res, err := m.ComputerTurn()
		if err != nil {
			t.Fatalf("turn %d: unexpected error: %v", len(seen), err)
		}
		if !res.Counted || !res.Outcome.Resolved() {
			t.Fatalf("uncounted computer shot: %+v", res)
		}
		if seen[res.Target] {
			t.Fatalf("target %s fired twice", res.Target)
		}
		seen[res.Target] = true
	}
	if want, have := game.Computer, m.Status().Winner; want != have {
		t.Errorf("winner: want=%s, have=%s", want, have)
	}
	if want, have := 0, m.Status().Turn; want != have {
		t.Errorf("computer shots advanced the turn counter: %d", have)
	}
}

func TestPlay_Abilities(t *testing.T) {
	m := newDuel(t, 5)
	radar := game.Action{Kind: game.ActionAbility, Ability: 1, Target: models.Coord{Row: 5, Col: 5}}

	round, err := m.Play(radar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !round.Human.Counted || round.Computer == nil {
		t.Fatalf("radar round incomplete: %+v", round)
	}
	if want, have := 25, len(round.Human.Marked); want != have {
		t.Errorf("marked: want=%d, have=%d", want, have)
	}
	if want, have := "Radar", round.Human.Ability; want != have {
		t.Errorf("ability: want=%s, have=%s", want, have)
	}
	rows, _ := m.Board(game.Computer, false)
	if want, have := "~~~RRRRR~~", rows[5]; want != have {
		t.Errorf("fog row 5: want=%q, have=%q", want, have)
	}

	turn := round.Status.Turn
	round, err = m.Play(radar)
	if !errors.Is(err, engine.ErrNoUsesRemaining) {
		t.Errorf("second radar: want=%v, have=%v", engine.ErrNoUsesRemaining, err)
	}
	if round.Computer != nil || round.Status.Turn != turn {
		t.Errorf("failed ability consumed a turn: %+v", round)
	}

	_, err = m.Play(game.Action{Kind: game.ActionAbility, Ability: 7, Target: models.Coord{Row: 1, Col: 1}})
	if !errors.Is(err, engine.ErrInvalidAbility) {
		t.Errorf("invalid ability: want=%v, have=%v", engine.ErrInvalidAbility, err)
	}
	_, err = m.Play(game.Action{Kind: "torpedo"})
	if !errors.Is(err, game.ErrUnknownAction) {
		t.Errorf("unknown action: want=%v, have=%v", game.ErrUnknownAction, err)
	}
	if want, have := turn, m.Status().Turn; want != have {
		t.Errorf("turn: want=%d, have=%d", want, have)
	}

	for _, a := range m.Abilities(game.Human) {
		want := a.Uses
		if a.Name == "Radar" {
			want = 0
		}
		if have := a.Remaining; want != have {
			t.Errorf("%s remaining: want=%d, have=%d", a.Name, want, have)
		}
	}
	for _, a := range m.Abilities(game.Computer) {
		if want, have := a.Uses, a.Remaining; want != have {
			t.Errorf("computer %s remaining: want=%d, have=%d", a.Name, want, have)
		}
	}
}

func TestFleet_ReportsHits(t *testing.T) {
	m := newDuel(t, 6)
	if _, err := m.Shoot(game.Human, models.Coord{Row: 0, Col: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fleet := m.Fleet(game.Computer)
	if want, have := 1, len(fleet); want != have {
		t.Fatalf("fleet: want=%d, have=%d", want, have)
	}
	if want, have := 1, fleet[0].Hits; want != have {
		t.Errorf("hits: want=%d, have=%d", want, have)
	}
	if !fleet[0].Afloat {
		t.Error("submarine sank after one hit")
	}
}

func TestSnapshot_FogUntilFinished(t *testing.T) {
	m := newDuel(t, 6)
	snap := m.Snapshot()
	if want, have := "SS~~~~~~~~", snap.Own.Rows[0]; want != have {
		t.Errorf("own row 0: want=%q, have=%q", want, have)
	}
	if snap.Enemy.Reveal {
		t.Error("enemy board revealed during play")
	}
	if want, have := "~~~~~~~~~~", snap.Enemy.Rows[0]; want != have {
		t.Errorf("enemy row 0: want=%q, have=%q", want, have)
	}
	if want, have := 3, len(snap.Abilities); want != have {
		t.Errorf("abilities: want=%d, have=%d", want, have)
	}

	for _, col := range []int{0, 1} {
		if _, err := m.Shoot(game.Human, models.Coord{Row: 0, Col: col}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	snap = m.Snapshot()
	if !snap.Status.Finished || !snap.Enemy.Reveal {
		t.Fatalf("finished snapshot: %+v", snap.Status)
	}
	if want, have := "XX~~~~~~~~", snap.Enemy.Rows[0]; want != have {
		t.Errorf("enemy row 0: want=%q, have=%q", want, have)
	}
}
