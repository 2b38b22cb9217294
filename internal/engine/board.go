package engine

import (
	"errors"
	"fmt"

	"github.com/pefman/naval-duel/internal/models"
)

var (
	ErrOutOfBounds        = errors.New("coordinates out of bounds")
	ErrOverlap            = errors.New("cell already occupied")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrInvalidSize        = errors.New("invalid ship size")
	ErrUnknownShipType    = errors.New("unknown ship type")
	ErrShipTypeExhausted  = errors.New("all ships of this type are placed")
	ErrPlacementExhausted = errors.New("no valid placement found")
)

type CellState int

const (
	CellEmpty CellState = iota
	CellShip
	CellHit
	CellMiss
)

func (s CellState) String() string {
	switch s {
	case CellEmpty:
		return "Empty"
	case CellShip:
		return "Ship"
	case CellHit:
		return "Hit"
	case CellMiss:
		return "Miss"
	default:
		return "Unknown"
	}
}

// Cell is one square of a board. Ship is meaningful only for CellShip and
// CellHit. Marker is an ability overlay kept apart from the resolution state,
// so marking a ship segment never loses which ship it belongs to.
type Cell struct {
	State  CellState
	Ship   int
	Marker string
}

func (c Cell) Resolved() bool { return c.State == CellHit || c.State == CellMiss }

// Marked reports whether an ability marker is visible on the cell.
func (c Cell) Marked() bool { return c.Marker != "" && !c.Resolved() }

// Outcome classifies a shot.
type Outcome string

const (
	OutOfBounds     Outcome = "out_of_bounds"
	AlreadyTargeted Outcome = "already_targeted"
	Miss            Outcome = "miss"
	Hit             Outcome = "hit"
	Sunk            Outcome = "sunk"
)

// Resolved is true for outcomes that changed the board.
func (o Outcome) Resolved() bool { return o == Miss || o == Hit || o == Sunk }

// Shot is the result of ResolveShot. Ship is a snapshot of the struck ship
// taken after the hit was applied, nil on anything but Hit and Sunk.
type Shot struct {
	Target  models.Coord
	Outcome Outcome
	Ship    *PlacedShip
}

// Board is one side's grid together with the fleet placed on it.
type Board struct {
	catalog models.Catalog
	cells   [models.BoardSize][models.BoardSize]Cell
	fleet   Fleet
}

func NewBoard(cat models.Catalog) *Board {
	return &Board{catalog: cat}
}

func (b *Board) Fleet() *Fleet { return &b.fleet }

// Cell returns the cell at c; ok is false outside the grid.
func (b *Board) Cell(c models.Coord) (cell Cell, ok bool) {
	if !c.InBounds() {
		return Cell{}, false
	}
	return b.cells[c.Row][c.Col], true
}

// Clone returns a deep copy.
func (b *Board) Clone() *Board {
	cp := *b
	cp.fleet = b.fleet.clone()
	return &cp
}

// run lists the cells a ship of the given size would occupy, or the reason it
// cannot go there.
func (b *Board) run(size int, origin models.Coord, dir models.Direction) ([]models.Coord, error) {
	if !dir.Valid() {
		return nil, ErrInvalidDirection
	}
	if size < 1 {
		return nil, ErrInvalidSize
	}
	dr, dc := dir.Step()
	end := models.Coord{Row: origin.Row + (size-1)*dr, Col: origin.Col + (size-1)*dc}
	if !origin.InBounds() || !end.InBounds() {
		return nil, ErrOutOfBounds
	}
	cells := make([]models.Coord, size)
	for i := range cells {
		c := models.Coord{Row: origin.Row + i*dr, Col: origin.Col + i*dc}
		if b.cells[c.Row][c.Col].State != CellEmpty {
			return nil, ErrOverlap
		}
		cells[i] = c
	}
	return cells, nil
}

// IsValidPlacement reports whether a ship of size cells fits at origin.
func (b *Board) IsValidPlacement(size int, origin models.Coord, dir models.Direction) bool {
	_, err := b.run(size, origin, dir)
	return err == nil
}

// PlaceShip validates and places one instance of t. The grid is only written
// once every check has passed. Placing the last ship of the catalog
// commissions the fleet.
func (b *Board) PlaceShip(t models.ShipType, origin models.Coord, dir models.Direction) (PlacedShip, error) {
	def, ok := b.catalog.Ship(t.ID)
	if !ok || def != t {
		return PlacedShip{}, fmt.Errorf("%w: %d", ErrUnknownShipType, t.ID)
	}
	if b.fleet.CountOf(t.ID) >= t.Count {
		return PlacedShip{}, fmt.Errorf("%w: %s", ErrShipTypeExhausted, t.Name)
	}
	cells, err := b.run(t.Size, origin, dir)
	if err != nil {
		return PlacedShip{}, err
	}
	ship := &PlacedShip{ID: len(b.fleet.ships), Type: t, Cells: cells}
	for _, c := range cells {
		b.cells[c.Row][c.Col] = Cell{State: CellShip, Ship: ship.ID}
	}
	b.fleet.ships = append(b.fleet.ships, ship)
	b.fleet.commission(b.catalog)
	return ship.snapshot(), nil
}

// ResolveShot fires at c. Precedence: bounds, already resolved, water, ship.
func (b *Board) ResolveShot(c models.Coord) Shot {
	shot := Shot{Target: c}
	if !c.InBounds() {
		shot.Outcome = OutOfBounds
		return shot
	}
	cell := &b.cells[c.Row][c.Col]
	switch cell.State {
	case CellHit, CellMiss:
		shot.Outcome = AlreadyTargeted
		return shot
	case CellEmpty:
		cell.State = CellMiss
		cell.Marker = ""
		shot.Outcome = Miss
		return shot
	}

	cell.State = CellHit
	cell.Marker = ""
	ship := b.fleet.ships[cell.Ship]
	ship.hits++
	shot.Outcome = Hit
	if !ship.Afloat() {
		if b.fleet.remaining > 0 {
			b.fleet.remaining--
		}
		shot.Outcome = Sunk
	}
	snap := ship.snapshot()
	shot.Ship = &snap
	return shot
}

// Mark sets an ability marker on c unless the cell is off the grid or
// already resolved.
func (b *Board) Mark(c models.Coord, symbol string) bool {
	if !c.InBounds() {
		return false
	}
	cell := &b.cells[c.Row][c.Col]
	if cell.Resolved() {
		return false
	}
	cell.Marker = symbol
	return true
}

// Untargeted counts cells that can still be shot at.
func (b *Board) Untargeted() int {
	n := 0
	for r := range b.cells {
		for c := range b.cells[r] {
			if !b.cells[r][c].Resolved() {
				n++
			}
		}
	}
	return n
}
