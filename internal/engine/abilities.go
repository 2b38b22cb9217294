package engine

import (
	"errors"
	"fmt"

	"github.com/pefman/naval-duel/internal/models"
)

var (
	ErrInvalidAbility  = errors.New("invalid ability")
	ErrNoUsesRemaining = errors.New("no uses remaining")
)

// Inventory tracks the remaining uses of each ability for one side.
type Inventory struct {
	defs      []models.Ability
	remaining []int
}

func NewInventory(defs []models.Ability) *Inventory {
	inv := &Inventory{defs: defs, remaining: make([]int, len(defs))}
	for i, a := range defs {
		inv.remaining[i] = a.Uses
	}
	return inv
}

// Remaining returns the uses left for id, or -1 for an unknown id.
func (inv *Inventory) Remaining(id int) int {
	if id < 0 || id >= len(inv.remaining) {
		return -1
	}
	return inv.remaining[id]
}

func (inv *Inventory) Defs() []models.Ability { return inv.defs }

// Apply spends one use of ability id and marks every unresolved cell of
// target within its Chebyshev radius of center. center may lie off the grid;
// only the in-bounds part of the area is marked, and the use is spent even
// when nothing is. It returns the cells marked. On error neither the counter
// nor the board changes.
func (inv *Inventory) Apply(id int, center models.Coord, target *Board) ([]models.Coord, error) {
	if id < 0 || id >= len(inv.defs) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAbility, id)
	}
	a := inv.defs[id]
	if inv.remaining[id] <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoUsesRemaining, a.Name)
	}
	inv.remaining[id]--

	var marked []models.Coord
	for r := max(center.Row-a.Radius, 0); r <= min(center.Row+a.Radius, models.BoardSize-1); r++ {
		for c := max(center.Col-a.Radius, 0); c <= min(center.Col+a.Radius, models.BoardSize-1); c++ {
			at := models.Coord{Row: r, Col: c}
			if target.Mark(at, a.Symbol) {
				marked = append(marked, at)
			}
		}
	}
	return marked, nil
}
