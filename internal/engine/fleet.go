package engine

import "github.com/pefman/naval-duel/internal/models"

// PlacedShip is a ship on a board. ID is unique within its fleet, so two
// ships of the same type sink independently.
type PlacedShip struct {
	ID    int             `json:"id"`
	Type  models.ShipType `json:"type"`
	Cells []models.Coord  `json:"cells"`
	hits  int
}

func (s PlacedShip) Hits() int { return s.hits }

// Afloat is true while at least one segment has not been hit.
func (s PlacedShip) Afloat() bool { return s.hits < len(s.Cells) }

func (s PlacedShip) snapshot() PlacedShip {
	s.Cells = append([]models.Coord(nil), s.Cells...)
	return s
}

// Fleet is the set of ships placed on a board.
type Fleet struct {
	ships     []*PlacedShip
	remaining int
}

// Remaining is the number of ships afloat. It stays zero until the fleet is
// complete and is then set to the catalog total in one step.
func (f *Fleet) Remaining() int { return f.remaining }

func (f *Fleet) Len() int { return len(f.ships) }

func (f *Fleet) Ships() []PlacedShip {
	out := make([]PlacedShip, len(f.ships))
	for i, s := range f.ships {
		out[i] = s.snapshot()
	}
	return out
}

func (f *Fleet) CountOf(typeID int) int {
	n := 0
	for _, s := range f.ships {
		if s.Type.ID == typeID {
			n++
		}
	}
	return n
}

// Missing lists one entry per ship instance of cat not yet placed, in
// catalog order.
func (f *Fleet) Missing(cat models.Catalog) []models.ShipType {
	var out []models.ShipType
	for _, t := range cat.Ships {
		for i := f.CountOf(t.ID); i < t.Count; i++ {
			out = append(out, t)
		}
	}
	return out
}

func (f *Fleet) Complete(cat models.Catalog) bool { return len(f.Missing(cat)) == 0 }

func (f *Fleet) commission(cat models.Catalog) {
	if f.Complete(cat) {
		f.remaining = cat.TotalShips()
	}
}

func (f Fleet) clone() Fleet {
	cp := Fleet{remaining: f.remaining, ships: make([]*PlacedShip, len(f.ships))}
	for i, s := range f.ships {
		snap := s.snapshot()
		cp.ships[i] = &snap
	}
	return cp
}
