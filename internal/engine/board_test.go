package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pefman/naval-duel/internal/models"
)

func submarineOnly() models.Catalog {
	return models.Catalog{Ships: []models.ShipType{
		{ID: 0, Name: "Submarine", Symbol: "S", Size: 2, Count: 1},
	}}
}

// scanAfloat is the legacy sunk check: a ship is afloat while any cell of the
// grid still holds one of its unhit segments.
func scanAfloat(b *Board, id int) bool {
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c].State == CellShip && b.cells[r][c].Ship == id {
				return true
			}
		}
	}
	return false
}

func TestPlaceShip_WritesEverySegment(t *testing.T) {
	cat := models.DefaultCatalog()
	b := NewBoard(cat)

	placements := []struct {
		typeID int
		origin models.Coord
		dir    models.Direction
	}{
		{0, models.Coord{Row: 0, Col: 0}, models.Horizontal},
		{1, models.Coord{Row: 2, Col: 9}, models.Vertical},
		{2, models.Coord{Row: 9, Col: 0}, models.Horizontal},
		{2, models.Coord{Row: 5, Col: 5}, models.Vertical},
		{3, models.Coord{Row: 3, Col: 3}, models.Horizontal},
	}
	for _, p := range placements {
		typ, _ := cat.Ship(p.typeID)
		ship, err := b.PlaceShip(typ, p.origin, p.dir)
		if err != nil {
			t.Fatalf("place %s at %s %s: %v", typ.Name, p.origin, p.dir, err)
		}
		if want, have := typ.Size, len(ship.Cells); want != have {
			t.Errorf("%s: cells want=%d, have=%d", typ.Name, want, have)
		}
	}

	for _, ship := range b.Fleet().Ships() {
		count := 0
		for r := range b.cells {
			for c := range b.cells[r] {
				if b.cells[r][c].State == CellShip && b.cells[r][c].Ship == ship.ID {
					count++
				}
			}
		}
		if want, have := ship.Type.Size, count; want != have {
			t.Errorf("ship %d (%s): segments want=%d, have=%d", ship.ID, ship.Type.Name, want, have)
		}
	}
	if want, have := 5, b.Fleet().Remaining(); want != have {
		t.Errorf("ships remaining: want=%d, have=%d", want, have)
	}
}

func TestPlaceShip_RejectedLeavesGridUnchanged(t *testing.T) {
	cat := models.DefaultCatalog()
	b := NewBoard(cat)
	carrier, _ := cat.Ship(0)
	if _, err := b.PlaceShip(carrier, models.Coord{Row: 4, Col: 2}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cruiser, _ := cat.Ship(1)

	tests := []struct {
		name   string
		origin models.Coord
		dir    models.Direction
		want   error
	}{
		{"exits right edge", models.Coord{Row: 0, Col: 7}, models.Horizontal, ErrOutOfBounds},
		{"exits bottom edge", models.Coord{Row: 7, Col: 0}, models.Vertical, ErrOutOfBounds},
		{"negative origin", models.Coord{Row: -1, Col: 0}, models.Vertical, ErrOutOfBounds},
		{"origin past grid", models.Coord{Row: 10, Col: 0}, models.Horizontal, ErrOutOfBounds},
		{"crosses carrier", models.Coord{Row: 2, Col: 4}, models.Vertical, ErrOverlap},
		{"starts on carrier", models.Coord{Row: 4, Col: 6}, models.Horizontal, ErrOverlap},
		{"diagonal", models.Coord{Row: 0, Col: 0}, models.Direction("D"), ErrInvalidDirection},
		{"empty direction", models.Coord{Row: 0, Col: 0}, models.Direction(""), ErrInvalidDirection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := b.cells
			if b.IsValidPlacement(cruiser.Size, tt.origin, tt.dir) {
				t.Errorf("IsValidPlacement: want=false, have=true")
			}
			_, err := b.PlaceShip(cruiser, tt.origin, tt.dir)
			if !errors.Is(err, tt.want) {
				t.Errorf("unexpected error: want=%v, have=%v", tt.want, err)
			}
			if b.cells != before {
				t.Error("grid changed after rejected placement")
			}
			if want, have := 1, b.Fleet().Len(); want != have {
				t.Errorf("fleet size: want=%d, have=%d", want, have)
			}
		})
	}
}

func TestPlaceShip_CatalogLimits(t *testing.T) {
	cat := models.DefaultCatalog()
	b := NewBoard(cat)
	sub, _ := cat.Ship(3)
	if _, err := b.PlaceShip(sub, models.Coord{Row: 0, Col: 0}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.PlaceShip(sub, models.Coord{Row: 2, Col: 0}, models.Horizontal); !errors.Is(err, ErrShipTypeExhausted) {
		t.Errorf("second submarine: want=%v, have=%v", ErrShipTypeExhausted, err)
	}
	rogue := models.ShipType{ID: 7, Name: "Rogue", Symbol: "Z", Size: 2, Count: 1}
	if _, err := b.PlaceShip(rogue, models.Coord{Row: 4, Col: 0}, models.Horizontal); !errors.Is(err, ErrUnknownShipType) {
		t.Errorf("unknown type: want=%v, have=%v", ErrUnknownShipType, err)
	}
	if want, have := 0, b.Fleet().Remaining(); want != have {
		t.Errorf("incomplete fleet remaining: want=%d, have=%d", want, have)
	}
}

func TestResolveShot_HitThenSunk(t *testing.T) {
	cat := submarineOnly()
	b := NewBoard(cat)
	if _, err := b.PlaceShip(cat.Ships[0], models.Coord{Row: 0, Col: 0}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, have := 1, b.Fleet().Remaining(); want != have {
		t.Fatalf("remaining after placement: want=%d, have=%d", want, have)
	}

	shot := b.ResolveShot(models.Coord{Row: 0, Col: 0})
	if want, have := Hit, shot.Outcome; want != have {
		t.Errorf("first shot: want=%s, have=%s", want, have)
	}
	if want, have := 1, b.Fleet().Remaining(); want != have {
		t.Errorf("remaining after hit: want=%d, have=%d", want, have)
	}

	shot = b.ResolveShot(models.Coord{Row: 0, Col: 1})
	if want, have := Sunk, shot.Outcome; want != have {
		t.Errorf("second shot: want=%s, have=%s", want, have)
	}
	if shot.Ship == nil || shot.Ship.Type.Name != "Submarine" {
		t.Errorf("sunk ship: have=%+v", shot.Ship)
	}
	if want, have := 0, b.Fleet().Remaining(); want != have {
		t.Errorf("remaining after sink: want=%d, have=%d", want, have)
	}
}

func TestResolveShot_AlreadyTargeted(t *testing.T) {
	cat := submarineOnly()
	b := NewBoard(cat)
	if _, err := b.PlaceShip(cat.Ships[0], models.Coord{Row: 9, Col: 8}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, target := range []models.Coord{{Row: 9, Col: 9}, {Row: 0, Col: 0}} {
		first := b.ResolveShot(target)
		if !first.Outcome.Resolved() {
			t.Fatalf("first shot at %s: have=%s", target, first.Outcome)
		}
		before := b.cells
		remaining := b.Fleet().Remaining()
		for i := 0; i < 3; i++ {
			if want, have := AlreadyTargeted, b.ResolveShot(target).Outcome; want != have {
				t.Errorf("repeat shot at %s: want=%s, have=%s", target, want, have)
			}
		}
		if b.cells != before {
			t.Errorf("grid changed after repeat shot at %s", target)
		}
		if want, have := remaining, b.Fleet().Remaining(); want != have {
			t.Errorf("remaining changed: want=%d, have=%d", want, have)
		}
	}
}

func TestResolveShot_OutOfBounds(t *testing.T) {
	b := NewBoard(models.DefaultCatalog())
	if err := AutoPlace(b, rand.New(rand.NewSource(3)), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := b.cells
	for _, target := range []models.Coord{{Row: -1, Col: 0}, {Row: 10, Col: 5}, {Row: 0, Col: -1}, {Row: 3, Col: 10}} {
		if want, have := OutOfBounds, b.ResolveShot(target).Outcome; want != have {
			t.Errorf("shot at %s: want=%s, have=%s", target, want, have)
		}
	}
	if b.cells != before {
		t.Error("grid changed after out of bounds shots")
	}
}

func TestResolveShot_CounterAgreesWithScan(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		b := NewBoard(models.DefaultCatalog())
		if err := AutoPlace(b, rng, 0); err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}

		sunk := 0
		for _, i := range rng.Perm(models.BoardSize * models.BoardSize) {
			shot := b.ResolveShot(models.Coord{Row: i / models.BoardSize, Col: i % models.BoardSize})
			if shot.Outcome == Sunk {
				sunk++
			}
			for _, ship := range b.Fleet().Ships() {
				if want, have := scanAfloat(b, ship.ID), ship.Afloat(); want != have {
					t.Fatalf("seed %d ship %d: scan afloat=%v, counter afloat=%v", seed, ship.ID, want, have)
				}
			}
			if want, have := 5-sunk, b.Fleet().Remaining(); want != have {
				t.Fatalf("seed %d: remaining want=%d, have=%d", seed, want, have)
			}
		}
		if want, have := 5, sunk; want != have {
			t.Errorf("seed %d: sunk want=%d, have=%d", seed, want, have)
		}
	}
}

func TestResolveShot_SameTypeSinksIndependently(t *testing.T) {
	cat := models.DefaultCatalog()
	b := NewBoard(cat)
	destroyer, _ := cat.Ship(2)
	if _, err := b.PlaceShip(destroyer, models.Coord{Row: 0, Col: 0}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.PlaceShip(destroyer, models.Coord{Row: 1, Col: 0}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b.ResolveShot(models.Coord{Row: 0, Col: 0})
	b.ResolveShot(models.Coord{Row: 0, Col: 1})
	if want, have := Sunk, b.ResolveShot(models.Coord{Row: 0, Col: 2}).Outcome; want != have {
		t.Errorf("first destroyer: want=%s, have=%s", want, have)
	}
	if want, have := Hit, b.ResolveShot(models.Coord{Row: 1, Col: 0}).Outcome; want != have {
		t.Errorf("second destroyer: want=%s, have=%s", want, have)
	}
}

func TestRows_FogOfWar(t *testing.T) {
	cat := submarineOnly()
	cat.Abilities = []models.Ability{{ID: 0, Name: "Bomb", Symbol: "B", Radius: 0, Uses: 1}}
	b := NewBoard(cat)
	if _, err := b.PlaceShip(cat.Ships[0], models.Coord{Row: 0, Col: 0}, models.Horizontal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.ResolveShot(models.Coord{Row: 0, Col: 0})
	b.ResolveShot(models.Coord{Row: 5, Col: 5})
	b.Mark(models.Coord{Row: 9, Col: 9}, "B")

	fog := b.Rows(false)
	reveal := b.Rows(true)
	if want, have := "X~~~~~~~~~", fog[0]; want != have {
		t.Errorf("fog row 0: want=%q, have=%q", want, have)
	}
	if want, have := "XS~~~~~~~~", reveal[0]; want != have {
		t.Errorf("reveal row 0: want=%q, have=%q", want, have)
	}
	if want, have := "~~~~~O~~~~", fog[5]; want != have {
		t.Errorf("fog row 5: want=%q, have=%q", want, have)
	}
	if want, have := "~~~~~~~~~B", fog[9]; want != have {
		t.Errorf("fog row 9: want=%q, have=%q", want, have)
	}
}
