package models

import (
	"errors"
	"fmt"
)

// Reserved display characters. Ship and ability symbols may not use them.
const (
	WaterSymbol = '~'
	HitSymbol   = 'X'
	MissSymbol  = 'O'
)

// ShipType is one ship definition of the catalog.
type ShipType struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Size   int    `json:"size"`
	Count  int    `json:"count"` // instances per fleet
}

// Ability is a limited-use area effect. Radius is a Chebyshev radius.
type Ability struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Radius int    `json:"radius"`
	Uses   int    `json:"uses"`
}

// Catalog bundles the static ship and ability definitions of a ruleset.
type Catalog struct {
	Ships     []ShipType `json:"ships"`
	Abilities []Ability  `json:"abilities"`
}

// DefaultCatalog returns the classic ruleset: five ships covering 17 cells
// and three abilities.
func DefaultCatalog() Catalog {
	return Catalog{
		Ships: []ShipType{
			{ID: 0, Name: "Aircraft Carrier", Symbol: "A", Size: 5, Count: 1},
			{ID: 1, Name: "Cruiser", Symbol: "C", Size: 4, Count: 1},
			{ID: 2, Name: "Destroyer", Symbol: "D", Size: 3, Count: 2},
			{ID: 3, Name: "Submarine", Symbol: "S", Size: 2, Count: 1},
		},
		Abilities: []Ability{
			{ID: 0, Name: "Bomb", Symbol: "B", Radius: 1, Uses: 2},
			{ID: 1, Name: "Radar", Symbol: "R", Radius: 2, Uses: 1},
			{ID: 2, Name: "Missile", Symbol: "M", Radius: 3, Uses: 1},
		},
	}
}

// TotalShips is the number of ships in a complete fleet.
func (c Catalog) TotalShips() int {
	n := 0
	for _, s := range c.Ships {
		n += s.Count
	}
	return n
}

// TotalCells is the number of board cells a complete fleet occupies.
func (c Catalog) TotalCells() int {
	n := 0
	for _, s := range c.Ships {
		n += s.Size * s.Count
	}
	return n
}

func (c Catalog) Ship(id int) (ShipType, bool) {
	if id < 0 || id >= len(c.Ships) {
		return ShipType{}, false
	}
	return c.Ships[id], true
}

func (c Catalog) Ability(id int) (Ability, bool) {
	if id < 0 || id >= len(c.Abilities) {
		return Ability{}, false
	}
	return c.Abilities[id], true
}

// Validate checks ids are positional, symbols are single unique non-reserved
// characters and a full fleet fits on the board.
func (c Catalog) Validate() error {
	if len(c.Ships) == 0 {
		return errors.New("catalog has no ships")
	}
	seen := map[string]string{}
	checkSymbol := func(owner, sym string) error {
		if len(sym) != 1 {
			return fmt.Errorf("%s: symbol %q must be a single character", owner, sym)
		}
		switch sym[0] {
		case WaterSymbol, HitSymbol, MissSymbol, ' ':
			return fmt.Errorf("%s: symbol %q is reserved", owner, sym)
		}
		if prev, ok := seen[sym]; ok {
			return fmt.Errorf("%s: symbol %q already used by %s", owner, sym, prev)
		}
		seen[sym] = owner
		return nil
	}
	for i, s := range c.Ships {
		if s.ID != i {
			return fmt.Errorf("ship %q: id %d, want %d", s.Name, s.ID, i)
		}
		if s.Size < 1 || s.Size > BoardSize {
			return fmt.Errorf("ship %q: size %d out of range 1..%d", s.Name, s.Size, BoardSize)
		}
		if s.Count < 1 || s.Count > BoardSize*BoardSize {
			return fmt.Errorf("ship %q: count %d out of range 1..%d", s.Name, s.Count, BoardSize*BoardSize)
		}
		if err := checkSymbol("ship "+s.Name, s.Symbol); err != nil {
			return err
		}
	}
	for i, a := range c.Abilities {
		if a.ID != i {
			return fmt.Errorf("ability %q: id %d, want %d", a.Name, a.ID, i)
		}
		if a.Radius < 0 || a.Radius > BoardSize {
			return fmt.Errorf("ability %q: radius %d out of range 0..%d", a.Name, a.Radius, BoardSize)
		}
		if a.Uses < 0 {
			return fmt.Errorf("ability %q: negative uses", a.Name)
		}
		if err := checkSymbol("ability "+a.Name, a.Symbol); err != nil {
			return err
		}
	}
	if cells := c.TotalCells(); cells > BoardSize*BoardSize {
		return fmt.Errorf("fleet needs %d cells, board has %d", cells, BoardSize*BoardSize)
	}
	return nil
}
